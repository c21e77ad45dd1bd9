package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/abdul-hamid-achik/asynchttp/packages/core/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag   string
	verboseFlag  bool
	noColorFlag  bool
	outputFlag   string
	historyFlag  string
	envFileFlag  string
	pollRateFlag float64
)

var rootCmd = &cobra.Command{
	Use:   "asynchttp",
	Short: "Raw HTTP/1.1 requests over a non-blocking socket.",
	Long: `asynchttp sends hand-built HTTP/1.1 requests over a non-blocking TCP
socket and prints the raw response. A response ends when the server goes
quiet for 50ms, or after 5s if nothing arrives at all.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", getEnvString("ASYNCHTTP_CONFIG", ""), "Path to config file (env: ASYNCHTTP_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("ASYNCHTTP_VERBOSE", false), "Verbose output and engine debug logs (env: ASYNCHTTP_VERBOSE)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", getEnvBool("ASYNCHTTP_NO_COLOR", false), "Disable colored output (env: ASYNCHTTP_NO_COLOR)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", getEnvString("ASYNCHTTP_OUTPUT", ""), "Output format: console, json (env: ASYNCHTTP_OUTPUT)")
	rootCmd.PersistentFlags().StringVar(&historyFlag, "history", getEnvString("ASYNCHTTP_HISTORY", ""), "SQLite file recording every exchange (env: ASYNCHTTP_HISTORY)")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", getEnvString("ASYNCHTTP_ENV_FILE", ""), "Path to .env file for {{variable}} interpolation (env: ASYNCHTTP_ENV_FILE)")
	rootCmd.PersistentFlags().Float64Var(&pollRateFlag, "poll-rate", getEnvFloat("ASYNCHTTP_POLL_RATE", 0), "Engine polls per second, 0 uses the config value (env: ASYNCHTTP_POLL_RATE)")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and applies persistent flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, withExitCode(ExitConfigError, fmt.Errorf("failed to load config: %w", err))
	}

	overrides := &config.Config{
		PollRate: pollRateFlag,
		History:  historyFlag,
		EnvFile:  envFileFlag,
		Output:   outputFlag,
	}
	if cmd.Flags().Changed("verbose") || verboseFlag {
		overrides.Verbose = config.BoolPtr(verboseFlag)
	}
	if cmd.Flags().Changed("no-color") || noColorFlag {
		overrides.NoColor = config.BoolPtr(noColorFlag)
	}

	cfg = cfg.Merge(overrides)
	if err := cfg.Validate(); err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}
	return cfg, nil
}

// newLogger builds the engine logger; debug output only with --verbose
func newLogger(cfg *config.Config, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors:    cfg.GetNoColor(),
		FullTimestamp:    true,
	})
	log.SetLevel(logrus.WarnLevel)
	if cfg.GetVerbose() {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
