package main

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/spf13/cobra"

	"github.com/rwcarlsen/gopswarm/bench"
)

var (
	benchParticles int
	benchIter      int
	benchTrials    int
	benchSeed      int64
	benchTol       float64
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Sweep the benchmark catalog and report success rates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBench()
	},
}

func init() {
	benchCmd.Flags().IntVar(&benchParticles, "particles", 0, "particles per swarm (0 scales with dimension)")
	benchCmd.Flags().IntVar(&benchIter, "maxiter", 1000, "iterations per trial")
	benchCmd.Flags().IntVar(&benchTrials, "trials", 10, "trials per function")
	benchCmd.Flags().Int64Var(&benchSeed, "seed", 7, "seed for the first trial; trial n adds n")
	benchCmd.Flags().Float64Var(&benchTol, "tol", 0.01, "relative success tolerance")
	rootCmd.AddCommand(benchCmd)
}

func runBench() error {
	if benchTrials < 1 {
		return fmt.Errorf("trials must be positive, got %v", benchTrials)
	}

	for _, fn := range bench.All() {
		nsuccess := 0
		neval := 0
		best := math.Inf(1)

		for n := 0; n < benchTrials; n++ {
			p, nev, err := bench.Optimize(fn, benchParticles, benchIter, benchSeed+int64(n))
			if err != nil {
				return err
			}

			neval += nev
			if p.Val < best {
				best = p.Val
			}
			if math.Abs(p.Val-fn.MinVal()) < fn.Thresh(benchTol) {
				nsuccess++
			}
			slog.Debug("trial complete", "function", fn.Name, "trial", n, "val", p.Val, "evals", nev)
		}

		fmt.Printf("%-16s %3v%% succeeded (best %v, optimum %v, %v evals)\n",
			fn.Name, nsuccess*100/benchTrials, best, fn.MinVal(), neval)
	}
	return nil
}
