package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/asynchttp/packages/stats"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Results []JSONResult `json:"results"`
	Summary *JSONSummary `json:"summary,omitempty"`
	Errors  []string     `json:"errors,omitempty"`
	Time    string       `json:"time"`
}

// JSONResult represents a single request result
type JSONResult struct {
	ID         string            `json:"id,omitempty"`
	Method     string            `json:"method"`
	URL        string            `json:"url"`
	StatusCode int               `json:"statusCode,omitempty"`
	Response   string            `json:"response"`
	Error      string            `json:"error,omitempty"`
	Duration   float64           `json:"duration"`
	Selected   map[string]string `json:"selected,omitempty"`
}

// JSONSummary represents latency statistics over repeated requests
type JSONSummary struct {
	Total    int64            `json:"total"`
	Errors   int64            `json:"errors"`
	Outcomes map[string]int64 `json:"outcomes,omitempty"`
	P50      float64          `json:"p50"`
	P95      float64          `json:"p95"`
	P99      float64          `json:"p99"`
	Max      float64          `json:"max"`
}

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	writer  io.Writer
	results []JSONResult
	summary *JSONSummary
	errors  []string
	now     func() time.Time
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:  os.Stdout,
		results: make([]JSONResult, 0),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(r *Result) {
	res := JSONResult{
		ID:         r.ID,
		Method:     r.Method,
		URL:        r.URL,
		StatusCode: r.StatusCode(),
		Response:   r.Response,
		Duration:   float64(r.Duration.Milliseconds()),
		Selected:   r.Selected,
	}
	if r.Error != nil {
		res.Error = r.Error.Error()
	}
	f.results = append(f.results, res)
}

func (f *JSONFormatter) FormatSummary(s stats.Summary) {
	f.summary = &JSONSummary{
		Total:    s.Total,
		Errors:   s.Errors,
		Outcomes: s.Outcomes,
		P50:      durationMs(s.P50),
		P95:      durationMs(s.P95),
		P99:      durationMs(s.P99),
		Max:      durationMs(s.Max),
	}
}

func (f *JSONFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush() error {
	out := JSONOutput{
		Results: f.results,
		Summary: f.summary,
		Errors:  f.errors,
		Time:    f.now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
