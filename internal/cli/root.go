package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes mirror the worker convention: 0 success, worker exit codes
// pass through, 10 for tool-internal errors.
const (
	ExitOK            = 0
	ExitValidation    = 2
	ExitInternalError = 10
)

// GlobalOptions holds flags shared across all commands.
type GlobalOptions struct {
	ConfigPath string
	LogLevel   string
}

var globalOpts = &GlobalOptions{}

var rootCmd = &cobra.Command{
	Use:   "wifilab",
	Short: "Wi-Fi DUT test lab controller",
	Long: `wifilab drives Wi-Fi device-under-test runs: it validates the lab
configuration, computes which fields matter for a selected test case,
maintains scenario CSV files, and executes test cases in an isolated
worker process while streaming progress.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(globalOpts.LogLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalOpts.ConfigPath, "config", "config/config.yaml", "Path to the lab config file")
	rootCmd.PersistentFlags().StringVar(&globalOpts.LogLevel, "log-level", "warn", "Log level (error|warn|info|debug)")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newFieldsCmd())
	rootCmd.AddCommand(newScenarioCmd())
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// exitCodeError carries a specific process exit code up to Execute.
type exitCodeError struct {
	err  error
	code int
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }

func exitWithCode(err error, code int) error {
	return &exitCodeError{err: err, code: code}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if ec, ok := err.(*exitCodeError); ok {
			os.Exit(ec.code)
		}
		os.Exit(ExitInternalError)
	}
}
