package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/asynchttp/packages/core/config"
	"github.com/abdul-hamid-achik/asynchttp/packages/http"
	"github.com/abdul-hamid-achik/asynchttp/packages/output"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaderFlag(t *testing.T) {
	name, value, err := parseHeaderFlag("Accept:  application/json ")
	require.NoError(t, err)
	assert.Equal(t, "Accept", name)
	assert.Equal(t, "application/json", value)

	name, value, err = parseHeaderFlag("X-Empty:")
	require.NoError(t, err)
	assert.Equal(t, "X-Empty", name)
	assert.Equal(t, "", value)

	_, _, err = parseHeaderFlag("no-colon")
	assert.Error(t, err)

	_, _, err = parseHeaderFlag(": value")
	assert.Error(t, err)
}

func TestExitCodeForRequest(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitSuccess},
		{fmt.Errorf("%w: %q", http.ErrMalformedURL, "example.com"), ExitInvalidURL},
		{fmt.Errorf("%w: refused", http.ErrConnectionFailed), ExitNetworkError},
		{http.ErrNoData, ExitNoData},
		{fmt.Errorf("%w: %w", http.ErrNoData, http.ErrTransportStall), ExitNoData},
		{http.ErrCancelled, ExitNetworkError},
		{errors.New("other"), ExitUsageError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCodeForRequest(tt.err), "%v", tt.err)
	}
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCodeFor(nil))
	assert.Equal(t, ExitConfigError, exitCodeFor(withExitCode(ExitConfigError, errors.New("bad"))))
	assert.Equal(t, ExitNoData, exitCodeFor(fmt.Errorf("wrapped: %w", withExitCode(ExitNoData, http.ErrNoData))))
	assert.Equal(t, ExitUsageError, exitCodeFor(errors.New("unknown flag")))
	assert.Nil(t, withExitCode(ExitNoData, nil))
}

func TestOutcomeOf(t *testing.T) {
	ok := &output.Result{Response: "HTTP/1.1 204 No Content\r\n\r\n", Duration: time.Millisecond}
	assert.Equal(t, "204", outcomeOf(ok))

	raw := &output.Result{Response: "garbage"}
	assert.Equal(t, "response", outcomeOf(raw))

	failed := &output.Result{Response: http.ResponseNoData, Error: http.ErrNoData}
	assert.Equal(t, http.ResponseNoData, outcomeOf(failed))
}

func TestGetCommand_InvalidURL(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"get", "example.com/index.html", "--no-color"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, http.ErrMalformedURL)
	assert.Equal(t, ExitInvalidURL, exitCodeFor(err))
	assert.Contains(t, out.String(), http.ResponseInvalidURL)
}

func newWatchRunner(t *testing.T, out io.Writer) *runner {
	t.Helper()
	cfg := config.DefaultConfig()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &runner{
		cfg:       cfg,
		log:       log,
		formatter: newFormatter(cfg, out),
	}
}

func TestWatch_ReturnsLastOutcomeOnStop(t *testing.T) {
	body := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(body, []byte(`{"a":1}`), 0o644))
	spec := &requestSpec{method: http.MethodPost, url: "http://localhost/", bodyArg: "@" + body}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	r := newWatchRunner(t, &out)

	failed := withExitCode(ExitNoData, http.ErrNoData)
	err := r.watch(ctx, &out, spec, 1, failed)
	require.Error(t, err)
	assert.Equal(t, ExitNoData, exitCodeFor(err))
	assert.Contains(t, out.String(), "Watching")

	assert.NoError(t, r.watch(ctx, &out, spec, 1, nil))
}

func TestWatch_RequiresBodyFile(t *testing.T) {
	var out bytes.Buffer
	r := newWatchRunner(t, &out)
	spec := &requestSpec{method: http.MethodPost, url: "http://localhost/", bodyArg: "a=b"}

	err := r.watch(context.Background(), &out, spec, 1, nil)
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCodeFor(err))
}
