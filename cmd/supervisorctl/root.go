package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/execution-hub/supervisor/internal/config"
	"github.com/execution-hub/supervisor/internal/dependency"
)

const version = "0.1.0"

var verbose bool

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "supervisorctl",
	Short: "Operate the supervisor dispatch engine",
	Long: "supervisorctl runs the supervisor engine in-process against the configured worker\n" +
		"catalogue. Configuration is read from the same environment as the server.",
	SilenceUsage: true,
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log engine activity to stderr")

	rootCmd.AddCommand(workersCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(submitCmd)
}

func newContainer() (*dependency.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	logger := zerolog.Nop()
	if verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(cfg.LogLevel).With().Timestamp().Logger()
	}
	return dependency.New(cfg, logger)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func repeatStr(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func truncStr(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
