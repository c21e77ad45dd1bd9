package output

import (
	"strings"
	"time"

	"github.com/abdul-hamid-achik/asynchttp/packages/stats"
)

// Result is one completed request as seen by the caller.
type Result struct {
	ID       string
	Method   string
	URL      string
	Request  string // serialized request, when known
	Response string // raw response text or error sentinel
	Error    error
	Duration time.Duration
	Selected map[string]string
}

// StatusCode reads the code from a "HTTP/1.x NNN ..." first line, or 0.
func (r *Result) StatusCode() int {
	if r.Error != nil || !strings.HasPrefix(r.Response, "HTTP/") {
		return 0
	}
	fields := strings.Fields(strings.SplitN(r.Response, "\r\n", 2)[0])
	if len(fields) < 2 || len(fields[1]) != 3 {
		return 0
	}
	code := 0
	for _, c := range fields[1] {
		if c < '0' || c > '9' {
			return 0
		}
		code = code*10 + int(c-'0')
	}
	return code
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *Result)
	FormatSummary(summary stats.Summary)
	FormatError(err error)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush() error
}
