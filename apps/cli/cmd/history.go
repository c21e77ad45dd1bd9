package cmd

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/asynchttp/packages/history"
	"github.com/abdul-hamid-achik/asynchttp/packages/output"
	"github.com/spf13/cobra"
)

var historyLimitFlag int

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show recorded exchanges",
	Long: `List the most recent exchanges from the history database, or show
one exchange in full when an id is given.`,
	Example: `  asynchttp history --history requests.db
  asynchttp history 3f0c6b7e-0d8e-4a43-9b0e-5f7a2f1c9a10 --history requests.db`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", 20, "Number of exchanges to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.History == "" {
		return withExitCode(ExitUsageError, fmt.Errorf("no history database configured, use --history"))
	}

	store, err := history.Open(cfg.History)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	defer store.Close()

	formatter := newFormatter(cfg, cmd.OutOrStdout())

	if len(args) == 1 {
		entry, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return withExitCode(ExitUsageError, err)
		}
		formatter.FormatResult(resultFromEntry(entry))
	} else {
		entries, err := store.Recent(cmd.Context(), historyLimitFlag)
		if err != nil {
			return withExitCode(ExitConfigError, err)
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No exchanges recorded.")
		}
		for i := range entries {
			formatter.FormatResult(resultFromEntry(&entries[i]))
		}
	}

	if flushable, ok := formatter.(output.Flushable); ok {
		return flushable.Flush()
	}
	return nil
}

func resultFromEntry(e *history.Entry) *output.Result {
	r := &output.Result{
		ID:       e.ID,
		Method:   e.Method,
		URL:      e.URL,
		Request:  e.Request,
		Response: e.Response,
		Duration: e.Duration,
	}
	if e.Error != "" {
		r.Error = errors.New(e.Error)
	}
	return r
}
