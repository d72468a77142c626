package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	pswarm "github.com/rwcarlsen/gopswarm"
)

var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml>",
	Short: "Run the optimization described by a scenario file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := LoadScenario(args[0])
		if err != nil {
			return err
		}
		return runScenario(sc)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runScenario(sc *Scenario) error {
	fn, err := sc.Fn()
	if err != nil {
		return err
	}
	opts, cleanup, err := sc.Options()
	if err != nil {
		return err
	}
	defer cleanup()

	s, err := pswarm.New(sc.Particles, fn.Dims(), fn.Low, fn.Up,
		sc.Omega, sc.PhiP, sc.PhiG, sc.Iterations, opts...)
	if err != nil {
		return err
	}

	slog.Info("starting run",
		"function", fn.Name,
		"dims", fn.Dims(),
		"particles", sc.Particles,
		"iterations", sc.Iterations,
		"seed", sc.Seed,
		"workers", sc.Workers)
	if s.RunID() != "" {
		slog.Info("recording run", "db", sc.DB, "run", s.RunID())
	}

	cnt := &pswarm.Counter{Fn: fn.Eval}
	start := time.Now()
	pos, val := s.Optimize(cnt.Objective)
	slog.Info("run complete", "evals", cnt.N(), "elapsed", time.Since(start))

	fmt.Printf("best: %v\n", pswarm.NewPoint(pos, val))
	fmt.Printf("optimum: %v\n", fn.Optima[0])
	fmt.Printf("dist to optimum: %v\n", fn.Dist(pos))
	return nil
}
