// Command pswarm optimizes benchmark objectives with particle swarms.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagVerbose bool
	flagLogJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "pswarm",
	Short: "Particle swarm optimization over box-bounded domains",
	Long: `pswarm runs particle swarm optimization over box-bounded continuous
domains.  Scenario files describe the swarm and the objective; results go to
stdout and, optionally, to a sqlite run database for later analysis.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) { setupLogging() },
	SilenceUsage:     true,
	SilenceErrors:    true,
}

func setupLogging() {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if flagLogJSON {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "emit logs as JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
