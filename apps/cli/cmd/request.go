package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/asynchttp/packages/capture"
	"github.com/abdul-hamid-achik/asynchttp/packages/core/config"
	"github.com/abdul-hamid-achik/asynchttp/packages/core/env"
	"github.com/abdul-hamid-achik/asynchttp/packages/history"
	"github.com/abdul-hamid-achik/asynchttp/packages/http"
	"github.com/abdul-hamid-achik/asynchttp/packages/output"
	"github.com/abdul-hamid-achik/asynchttp/packages/payload"
	"github.com/abdul-hamid-achik/asynchttp/packages/stats"
	"github.com/abdul-hamid-achik/asynchttp/packages/transport"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

// WatchDebounceDelay is the debounce delay for body file watch events
const WatchDebounceDelay = 300 * time.Millisecond

// requestFlags are shared by get and post
type requestFlags struct {
	headers []string
	vars    []string
	selects []string
	repeat  int
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, `Request header as "Name: value" (repeatable)`)
	cmd.Flags().StringArrayVar(&f.vars, "var", nil, "Variable for {{name}} interpolation as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&f.selects, "select", nil, "gjson path to extract from a JSON response body (repeatable)")
	cmd.Flags().IntVar(&f.repeat, "repeat", 1, "Send the request N times and print latency percentiles")
}

// requestSpec is one request as typed on the command line
type requestSpec struct {
	method      string
	url         string
	contentType http.ContentType
	bodyArg     string
	body        string
	schema      string
}

// parseHeaderFlag splits "Name: value"
func parseHeaderFlag(raw string) (string, string, error) {
	name, value, ok := strings.Cut(raw, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid header %q, expected \"Name: value\"", raw)
	}
	return name, strings.TrimSpace(value), nil
}

// runner owns everything one CLI invocation needs to drive the engine
type runner struct {
	cfg       *config.Config
	log       *logrus.Logger
	resolver  *env.Resolver
	headers   *http.HeaderSet
	engine    *http.Engine
	formatter output.Formatter
	store     *history.Store
	selects   []string
	pollRate  rate.Limit
	timeout   time.Duration
	stdin     io.Reader
}

func newRunner(cmd *cobra.Command, flags *requestFlags) (*runner, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if flags.repeat < 1 {
		return nil, withExitCode(ExitUsageError, fmt.Errorf("--repeat must be at least 1"))
	}

	log := newLogger(cfg, cmd.ErrOrStderr())

	resolver := env.NewResolver()
	resolver.SetWarnFunc(log.Warnf)
	if cfg.EnvFile != "" {
		vars, err := env.LoadDotEnv(cfg.EnvFile)
		if err != nil {
			return nil, withExitCode(ExitConfigError, err)
		}
		resolver.SetVariables(vars)
	}
	for _, v := range flags.vars {
		name, value, ok := env.ParseAssignment(v)
		if !ok {
			return nil, withExitCode(ExitUsageError, fmt.Errorf("invalid --var %q, expected name=value", v))
		}
		resolver.SetVariable(name, value)
	}

	headers := http.NewHeaderSet()
	for _, name := range cfg.HeaderNames() {
		headers.Set(name, resolver.Resolve(cfg.Headers[name]))
	}
	for _, h := range flags.headers {
		name, value, err := parseHeaderFlag(h)
		if err != nil {
			return nil, withExitCode(ExitUsageError, err)
		}
		headers.Set(name, resolver.Resolve(value))
	}

	r := &runner{
		cfg:      cfg,
		log:      log,
		resolver: resolver,
		headers:  headers,
		selects:  flags.selects,
		pollRate: rate.Limit(cfg.PollRate),
		timeout:  time.Duration(cfg.Timeout) * time.Millisecond,
		stdin:    cmd.InOrStdin(),
	}
	r.formatter = newFormatter(cfg, cmd.OutOrStdout())

	if cfg.History != "" {
		store, err := history.Open(cfg.History)
		if err != nil {
			return nil, withExitCode(ExitConfigError, err)
		}
		r.store = store
	}
	return r, nil
}

func newFormatter(cfg *config.Config, w io.Writer) output.Formatter {
	switch strings.ToLower(cfg.Output) {
	case "json":
		return output.NewJSONFormatter(output.JSONWithWriter(w))
	default:
		return output.NewConsoleFormatter(
			output.WithWriter(w),
			output.WithVerbose(cfg.GetVerbose()),
			output.WithNoColor(cfg.GetNoColor()),
		)
	}
}

// attach binds a fresh engine to a socket owned by sys
func (r *runner) attach(sys *transport.Subsystem) {
	opts := []http.EngineOption{http.WithLogger(r.log)}
	if r.cfg.Port > 0 {
		opts = append(opts, http.WithPort(uint16(r.cfg.Port)))
	}
	r.engine = http.NewEngine(sys.NewSocket(), opts...)
	for _, h := range r.headers.Snapshot() {
		r.engine.SetHeader(h.Name, h.Value)
	}
}

func (r *runner) close() {
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.log.WithError(err).Warn("failed to close history database")
		}
	}
}

// send drives one request to completion and returns its result
func (r *runner) send(ctx context.Context, spec *requestSpec) *output.Result {
	var response string
	done := func(resp string) { response = resp }

	start := time.Now()
	if spec.method == http.MethodPost {
		r.engine.Post(spec.url, done, spec.contentType, spec.body)
	} else {
		r.engine.Get(spec.url, done)
	}

	id := uuid.NewString()
	if r.engine.State().InFlight() {
		id = r.engine.RequestID()

		if runErr := r.run(ctx); runErr != nil {
			r.log.WithError(runErr).WithField("request_id", id).Debug("request abandoned")
		}
	}

	result := &output.Result{
		ID:       id,
		Method:   spec.method,
		URL:      spec.url,
		Request:  r.serialize(spec),
		Response: response,
		Error:    r.engine.Err(),
		Duration: time.Since(start),
	}
	if result.Error == nil && len(r.selects) > 0 {
		result.Selected = capture.ExtractAll(response, r.selects)
	}
	r.record(ctx, result)
	return result
}

// run polls the engine, bounded by the configured overall timeout
func (r *runner) run(ctx context.Context) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return http.Run(ctx, r.engine, r.pollRate)
}

// serialize renders the bytes the engine puts on the wire, or "" when the URL is invalid
func (r *runner) serialize(spec *requestSpec) string {
	req, err := http.NewRequest(spec.method, spec.url, r.headers)
	if err != nil {
		return ""
	}
	if spec.method == http.MethodPost {
		req.SetBody(spec.contentType, spec.body)
	}
	return string(req.Bytes())
}

func (r *runner) record(ctx context.Context, result *output.Result) {
	if r.store == nil {
		return
	}
	entry := history.Entry{
		ID:       result.ID,
		Method:   result.Method,
		URL:      result.URL,
		Request:  result.Request,
		Response: result.Response,
		Duration: result.Duration,
	}
	if result.Error != nil {
		entry.Error = result.Error.Error()
	}
	// ctx may already be cancelled on interrupt; the exchange is still worth keeping
	if err := r.store.Record(context.WithoutCancel(ctx), entry); err != nil {
		r.log.WithError(err).Warn("failed to record history")
	}
}

// prepare resolves variables and loads the POST body
func (r *runner) prepare(spec *requestSpec) error {
	spec.url = r.resolver.Resolve(spec.url)
	if spec.method != http.MethodPost {
		return nil
	}

	body, err := payload.Load(spec.bodyArg, r.stdin)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	spec.body = r.resolver.Resolve(body)

	if spec.schema != "" {
		if err := payload.ValidateJSON(spec.body, spec.schema); err != nil {
			return withExitCode(ExitUsageError, err)
		}
	}
	return nil
}

// execute sends the request repeat times, reporting each result and a latency summary
func (r *runner) execute(ctx context.Context, spec *requestSpec, repeat int) error {
	rec := stats.NewRecorder()
	var failure error

	for i := 0; i < repeat; i++ {
		result := r.send(ctx, spec)
		rec.Record(result.Duration, outcomeOf(result), result.Error != nil)
		if result.Error != nil {
			failure = result.Error
		}

		if repeat == 1 || r.cfg.GetVerbose() || result.Error != nil {
			r.formatter.FormatResult(result)
		}
		if ctx.Err() != nil {
			break
		}
	}

	if repeat > 1 {
		r.formatter.FormatSummary(rec.Summary())
	}
	if flushable, ok := r.formatter.(output.Flushable); ok {
		if err := flushable.Flush(); err != nil {
			return withExitCode(ExitUsageError, err)
		}
	}

	if failure != nil {
		return withExitCode(exitCodeForRequest(failure), failure)
	}
	return nil
}

// outcomeOf buckets a result by status code or failure sentinel
func outcomeOf(result *output.Result) string {
	if result.Error != nil {
		return http.SentinelFor(result.Error)
	}
	if code := result.StatusCode(); code > 0 {
		return fmt.Sprintf("%d", code)
	}
	return "response"
}

// runRequest is the shared body of the get and post commands
func runRequest(cmd *cobra.Command, spec *requestSpec, flags *requestFlags, watch bool) error {
	r, err := newRunner(cmd, flags)
	if err != nil {
		return err
	}
	defer r.close()

	if err := r.prepare(spec); err != nil {
		return err
	}

	sys, err := transport.Init()
	if err != nil {
		return withExitCode(ExitNetworkError, fmt.Errorf("failed to initialize sockets: %w", err))
	}
	defer func() {
		if err := sys.Shutdown(); err != nil {
			r.log.WithError(err).Warn("socket shutdown")
		}
	}()
	r.attach(sys)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := r.execute(ctx, spec, flags.repeat)
	if !watch {
		return runErr
	}
	return r.watch(ctx, cmd.OutOrStdout(), spec, flags.repeat, runErr)
}

// watch re-sends the request every time its body file changes until ctx ends.
// It then returns the outcome of the most recent send, starting from last.
func (r *runner) watch(ctx context.Context, w io.Writer, spec *requestSpec, repeat int, last error) error {
	path := payload.FilePath(spec.bodyArg)
	if path == "" {
		return withExitCode(ExitUsageError, fmt.Errorf("--watch requires a body given as @file"))
	}
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory and filter by name
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	fmt.Fprintf(w, "\nWatching %s for changes... (press Ctrl+C to stop)\n", path)

	debounce := time.NewTimer(WatchDebounceDelay)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return last

		case event, ok := <-watcher.Events:
			if !ok {
				return last
			}
			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			debounce.Reset(WatchDebounceDelay)

		case <-debounce.C:
			fmt.Fprintf(w, "\nFile changed: %s\nRe-sending...\n\n", path)
			r.formatter = newFormatter(r.cfg, w)
			if err := r.prepare(spec); err != nil {
				r.formatter.FormatError(err)
				last = err
				continue
			}
			last = r.execute(ctx, spec, repeat)
			if last != nil {
				r.log.WithError(last).Debug("watched request failed")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return last
			}
			r.formatter.FormatError(fmt.Errorf("watcher error: %w", err))
		}
	}
}

// exitCodeForRequest maps an engine error to a process exit code
func exitCodeForRequest(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, http.ErrMalformedURL):
		return ExitInvalidURL
	case errors.Is(err, http.ErrNoData):
		return ExitNoData
	case errors.Is(err, http.ErrConnectionFailed), errors.Is(err, http.ErrCancelled):
		return ExitNetworkError
	default:
		return ExitUsageError
	}
}
