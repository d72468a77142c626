// Package sample generates starting positions for swarms: plain uniform box
// sampling plus best-effort sampling under linear constraints.  The results
// plug straight into the swarm's InitialPositions option.
package sample

import (
	"math/rand"

	"github.com/petar/GoLLRB/llrb"
	"gonum.org/v1/gonum/mat"
)

// Rand is the package's fallback random number source, used whenever a
// caller passes a nil Rng.  Swap it for reproducibility across a whole
// program.
var Rand Rng = rand.New(rand.NewSource(1))

type Rng interface {
	Float64() float64
}

// Uniform generates n positions distributed uniformly inside the box
// described by low and up, one fresh slice per position.  A nil rng falls
// back to Rand.
func Uniform(rng Rng, n int, low, up []float64) [][]float64 {
	if len(low) != len(up) {
		panic("low and up vectors are not same length")
	}
	if rng == nil {
		rng = Rand
	}

	points := make([][]float64, n)
	for i := range points {
		pos := make([]float64, len(low))
		for j := range pos {
			pos[j] = low[j] + rng.Float64()*(up[j]-low[j])
		}
		points[i] = pos
	}
	return points
}

// item ranks an infeasible position by how badly it violates the stacked
// constraints.
type item struct {
	pos    []float64
	howbad float64
}

func (it item) Less(than llrb.Item) bool { return it.howbad < than.(item).howbad }

// Constrained tries to generate n positions inside the box bounds lb/ub that
// also satisfy the linear constraints "cl <= Ax <= cu".  It draws uniformly
// inside the box and keeps every feasible draw, queueing the least-violating
// rejects so the result can be topped up if maxiter draws don't produce n
// feasible positions.  It returns the positions, how many of them are
// infeasible, and the number of draws used.  A nil rng falls back to Rand.
func Constrained(rng Rng, n, maxiter int, lb, ub []float64, cl, A, cu *mat.Dense) (points [][]float64, nbad, iter int) {
	if rng == nil {
		rng = Rand
	}
	stackA, b, ranges := stackConstr(cl, A, cu)
	_, ndim := A.Dims()

	violators := llrb.New()
	points = make([][]float64, 0, n)
	for i := 0; i < maxiter; i++ {
		pos := make([]float64, ndim)
		for j := range pos {
			pos[j] = lb[j] + rng.Float64()*(ub[j]-lb[j])
		}

		howbad := violation(stackA, b, ranges, pos)
		if howbad == 0 {
			points = append(points, pos)
			if len(points) == n {
				return points, 0, i + 1
			}
			continue
		}

		violators.InsertNoReplace(item{pos, howbad})
		for violators.Len() > n-len(points) {
			violators.DeleteMax()
		}
	}

	nbad = n - len(points)
	for len(points) < n {
		points = append(points, violators.DeleteMin().(item).pos)
	}
	return points, nbad, maxiter
}

// violation sums the normalized amounts by which pos breaks each row of the
// stacked system "S x <= b".  Zero means feasible.
func violation(S, b *mat.Dense, ranges []float64, pos []float64) float64 {
	var ax mat.Dense
	ax.Mul(S, mat.NewDense(len(pos), 1, pos))

	m, _ := ax.Dims()
	tot := 0.0
	for i := 0; i < m; i++ {
		if diff := ax.At(i, 0) - b.At(i, 0); diff > 0 {
			tot += diff / ranges[i]
		}
	}
	return tot
}

// stackConstr rewrites the two-sided system "cl <= Ax <= cu" as a single
// one-sided system "S x <= b" by stacking A over -A.  ranges holds cu-cl per
// original row (repeated for both halves) for normalizing violation
// amounts; degenerate zero ranges are widened to 1 so a violated equality
// still registers.
func stackConstr(cl, A, cu *mat.Dense) (S, b *mat.Dense, ranges []float64) {
	m, n := A.Dims()
	S = mat.NewDense(2*m, n, nil)
	b = mat.NewDense(2*m, 1, nil)
	ranges = make([]float64, 2*m)

	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			S.Set(i, j, A.At(i, j))
			S.Set(m+i, j, -A.At(i, j))
		}
		b.Set(i, 0, cu.At(i, 0))
		b.Set(m+i, 0, -cl.At(i, 0))

		r := cu.At(i, 0) - cl.At(i, 0)
		if r == 0 {
			r = 1
		}
		ranges[i] = r
		ranges[m+i] = r
	}
	return S, b, ranges
}
