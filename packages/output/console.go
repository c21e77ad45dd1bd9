package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/asynchttp/packages/stats"
	"github.com/fatih/color"
)

// truncate shortens s for display
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
	maxBody int
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// WithMaxBody truncates printed responses to n bytes; 0 prints everything
func WithMaxBody(n int) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.maxBody = n
	}
}

func (f *ConsoleFormatter) FormatResult(r *Result) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s %s\n", bold(r.Method), r.URL, cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))
	if f.verbose && r.ID != "" {
		fmt.Fprintf(f.writer, "  id: %s\n", r.ID)
	}
	if f.verbose && r.Request != "" {
		for _, line := range strings.Split(strings.TrimRight(r.Request, "\r\n"), "\r\n") {
			fmt.Fprintf(f.writer, "  > %s\n", line)
		}
	}

	if r.Error != nil {
		fmt.Fprintf(f.writer, "  %s %s\n", red("✗"), red(r.Response))
		if f.verbose {
			fmt.Fprintf(f.writer, "    %v\n", r.Error)
		}
		return
	}

	code := r.StatusCode()
	symbol := yellow("•")
	switch {
	case code >= 200 && code < 400:
		symbol = green("✓")
	case code >= 400:
		symbol = red("✗")
	}
	if code > 0 {
		fmt.Fprintf(f.writer, "  %s %d\n", symbol, code)
	}

	if len(r.Selected) > 0 {
		keys := make([]string, 0, len(r.Selected))
		for k := range r.Selected {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(f.writer, "  %s = %s\n", k, r.Selected[k])
		}
		return
	}

	fmt.Fprintf(f.writer, "\n%s\n", truncate(r.Response, f.maxBody))
}

func (f *ConsoleFormatter) FormatSummary(s stats.Summary) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n", bold("Summary"))
	fmt.Fprintf(f.writer, "Requests: %s", green(fmt.Sprintf("%d ok", s.Total-s.Errors)))
	if s.Errors > 0 {
		fmt.Fprintf(f.writer, ", %s", red(fmt.Sprintf("%d failed", s.Errors)))
	}
	fmt.Fprintf(f.writer, ", %d total\n", s.Total)
	if s.Total == 0 {
		return
	}
	fmt.Fprintf(f.writer, "Latency:  min %v  p50 %v  p95 %v  p99 %v  max %v\n", s.Min, s.P50, s.P95, s.P99, s.Max)

	if len(s.Outcomes) > 1 {
		keys := make([]string, 0, len(s.Outcomes))
		for k := range s.Outcomes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(f.writer, "  %-20s %d\n", k, s.Outcomes[k])
		}
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}
