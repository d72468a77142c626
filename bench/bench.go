// Package bench provides benchmark objective functions for validating
// solvers, mostly drawn from
// http://en.wikipedia.org/wiki/Test_functions_for_optimization, plus a
// harness for running swarms against them.
package bench

import (
	"fmt"
	"math"

	pswarm "github.com/rwcarlsen/gopswarm"
)

var (
	sin  = math.Sin
	cos  = math.Cos
	abs  = math.Abs
	exp  = math.Exp
	sqrt = math.Sqrt
)

// Func is one benchmark entry: a named objective together with its box
// bounds and its known global minima.  Eval follows the swarm objective
// contract and returns +Inf outside the bounds.
type Func struct {
	Name string
	Low  []float64
	Up   []float64
	// Optima holds every known global minimizer; they all share the same
	// value.  Approximate literature values are recorded to the precision
	// commonly published.
	Optima []pswarm.Point
	Eval   pswarm.ObjectiveFunc
}

func (f Func) Dims() int { return len(f.Low) }

// MinVal returns the function's known global minimum value.
func (f Func) MinVal() float64 { return f.Optima[0].Val }

// Thresh converts the relative tolerance tol into an absolute closeness
// threshold: tol times the magnitude of the minimum, floored at 0.001 for
// minima at or near zero.
func (f Func) Thresh(tol float64) float64 {
	thresh := tol * abs(f.MinVal())
	if thresh < 0.001 {
		thresh = 0.001
	}
	return thresh
}

// Dist returns the euclidean distance from pos to the nearest known
// minimizer.
func (f Func) Dist(pos []float64) float64 {
	p := pswarm.NewPoint(pos, 0)
	least := math.Inf(1)
	for _, opt := range f.Optima {
		if d := pswarm.L2Dist(p, opt); d < least {
			least = d
		}
	}
	return least
}

// All returns the full catalog, with the dimension-parametrized entries at a
// few representative sizes.
func All() []Func {
	return []Func{
		Sphere(2),
		Sphere(10),
		Ackley(),
		CrossTray(),
		Eggholder(),
		HolderTable(),
		Schaffer2(),
		Styblinski(2),
		Styblinski(10),
		Rosenbrock(2),
		Rosenbrock(10),
	}
}

// ByName returns the catalog entry with the given name (as reported by
// Func.Name) from All.
func ByName(name string) (Func, error) {
	for _, fn := range All() {
		if fn.Name == name {
			return fn, nil
		}
	}
	return Func{}, fmt.Errorf("no benchmark function named %q", name)
}

// Sphere is the sum of squared coordinates on [-5.12, 5.12]^ndim, minimized
// at the origin with value zero.
func Sphere(ndim int) Func {
	low, up := fill(ndim, -5.12), fill(ndim, 5.12)
	return Func{
		Name:   fmt.Sprintf("Sphere_%vD", ndim),
		Low:    low,
		Up:     up,
		Optima: []pswarm.Point{pswarm.NewPoint(fill(ndim, 0), 0)},
		Eval: func(x []float64) float64 {
			if !inside(x, low, up) {
				return math.Inf(1)
			}
			tot := 0.0
			for _, v := range x {
				tot += v * v
			}
			return tot
		},
	}
}

// Quadratic is the shifted, weighted bowl
//
//	f(x) = sum_i w_i*(x_i - shift_i)^2 + offset
//
// on [-5, 5]^len(shift), minimized at shift with value offset.  Nil weights
// mean all ones.  The shift and weight slices are copied, so the returned
// Func is immune to later changes by the caller.
func Quadratic(shift, weights []float64, offset float64) Func {
	cshift := append([]float64{}, shift...)
	cw := weights
	if cw == nil {
		cw = fill(len(shift), 1)
	} else {
		cw = append([]float64{}, weights...)
	}

	low, up := fill(len(shift), -5), fill(len(shift), 5)
	return Func{
		Name:   fmt.Sprintf("Quadratic_%vD", len(shift)),
		Low:    low,
		Up:     up,
		Optima: []pswarm.Point{pswarm.NewPoint(cshift, offset)},
		Eval: func(x []float64) float64 {
			if !inside(x, low, up) {
				return math.Inf(1)
			}
			tot := offset
			for i, v := range x {
				d := v - cshift[i]
				tot += cw[i] * d * d
			}
			return tot
		},
	}
}

func Ackley() Func {
	low, up := fill(2, -5), fill(2, 5)
	return Func{
		Name:   "Ackley",
		Low:    low,
		Up:     up,
		Optima: []pswarm.Point{pswarm.NewPoint([]float64{0, 0}, 0)},
		Eval: func(v []float64) float64 {
			if !inside(v, low, up) {
				return math.Inf(1)
			}
			x, y := v[0], v[1]
			return -20*exp(-0.2*sqrt(0.5*(x*x+y*y))) -
				exp(0.5*(cos(2*math.Pi*x)+cos(2*math.Pi*y))) +
				20 + math.E
		},
	}
}

func CrossTray() Func {
	low, up := fill(2, -10), fill(2, 10)
	return Func{
		Name: "CrossTray",
		Low:  low,
		Up:   up,
		Optima: []pswarm.Point{
			pswarm.NewPoint([]float64{1.34941, -1.34941}, -2.06261),
			pswarm.NewPoint([]float64{1.34941, 1.34941}, -2.06261),
			pswarm.NewPoint([]float64{-1.34941, 1.34941}, -2.06261),
			pswarm.NewPoint([]float64{-1.34941, -1.34941}, -2.06261),
		},
		Eval: func(v []float64) float64 {
			if !inside(v, low, up) {
				return math.Inf(1)
			}
			x, y := v[0], v[1]
			return -.0001 * math.Pow(abs(sin(x)*sin(y)*exp(abs(100-sqrt(x*x+y*y)/math.Pi)))+1, 0.1)
		},
	}
}

func Eggholder() Func {
	low, up := fill(2, -512), fill(2, 512)
	return Func{
		Name:   "Eggholder",
		Low:    low,
		Up:     up,
		Optima: []pswarm.Point{pswarm.NewPoint([]float64{512, 404.2319}, -959.6407)},
		Eval: func(v []float64) float64 {
			if !inside(v, low, up) {
				return math.Inf(1)
			}
			x, y := v[0], v[1]
			return -(y+47)*sin(sqrt(abs(y+x/2+47))) - x*sin(sqrt(abs(x-(y+47))))
		},
	}
}

func HolderTable() Func {
	low, up := fill(2, -10), fill(2, 10)
	return Func{
		Name: "HolderTable",
		Low:  low,
		Up:   up,
		Optima: []pswarm.Point{
			pswarm.NewPoint([]float64{8.05502, 9.66459}, -19.2085),
			pswarm.NewPoint([]float64{-8.05502, 9.66459}, -19.2085),
			pswarm.NewPoint([]float64{8.05502, -9.66459}, -19.2085),
			pswarm.NewPoint([]float64{-8.05502, -9.66459}, -19.2085),
		},
		Eval: func(v []float64) float64 {
			if !inside(v, low, up) {
				return math.Inf(1)
			}
			x, y := v[0], v[1]
			return -abs(sin(x) * cos(y) * exp(abs(1-sqrt(x*x+y*y)/math.Pi)))
		},
	}
}

func Schaffer2() Func {
	low, up := fill(2, -100), fill(2, 100)
	return Func{
		Name:   "Schaffer2",
		Low:    low,
		Up:     up,
		Optima: []pswarm.Point{pswarm.NewPoint([]float64{0, 0}, 0)},
		Eval: func(v []float64) float64 {
			if !inside(v, low, up) {
				return math.Inf(1)
			}
			x, y := v[0], v[1]
			return 0.5 + (math.Pow(sin(x*x-y*y), 2)-0.5)/math.Pow(1+.0001*(x*x+y*y), 2)
		},
	}
}

func Styblinski(ndim int) Func {
	low, up := fill(ndim, -5), fill(ndim, 5)
	return Func{
		Name:   fmt.Sprintf("Styblinski_%vD", ndim),
		Low:    low,
		Up:     up,
		Optima: []pswarm.Point{pswarm.NewPoint(fill(ndim, -2.903534), -39.16599*float64(ndim))},
		Eval: func(x []float64) float64 {
			if !inside(x, low, up) {
				return math.Inf(1)
			}
			tot := 0.0
			for _, v := range x {
				tot += math.Pow(v, 4) - 16*math.Pow(v, 2) + 5*v
			}
			return tot / 2
		},
	}
}

func Rosenbrock(ndim int) Func {
	low, up := fill(ndim, -1000), fill(ndim, 1000)
	return Func{
		Name:   fmt.Sprintf("Rosenbrock_%vD", ndim),
		Low:    low,
		Up:     up,
		Optima: []pswarm.Point{pswarm.NewPoint(fill(ndim, 1), 0)},
		Eval: func(x []float64) float64 {
			if !inside(x, low, up) {
				return math.Inf(1)
			}
			tot := 0.0
			for i := 0; i < len(x)-1; i++ {
				tot += 100*math.Pow(x[i+1]-x[i]*x[i], 2) + math.Pow(x[i]-1, 2)
			}
			return tot
		},
	}
}

// Optimize runs a freshly seeded swarm over fn's domain with the classic
// constriction hyperparameters, returning the best point found and the
// number of objective evaluations.  npar <= 0 picks a particle count scaled
// to the dimension.
func Optimize(fn Func, npar, maxiter int, seed int64) (best pswarm.Point, neval int, err error) {
	if npar <= 0 {
		npar = 30 + fn.Dims()
	}

	s, err := pswarm.New(npar, fn.Dims(), fn.Low, fn.Up,
		pswarm.DefaultInertia, pswarm.DefaultCognition, pswarm.DefaultSocial,
		maxiter, pswarm.Seed(seed))
	if err != nil {
		return pswarm.Point{}, 0, err
	}

	cnt := &pswarm.Counter{Fn: fn.Eval}
	s.Optimize(cnt.Objective)
	return s.Best(), cnt.N(), nil
}

// InsideBounds reports whether p lies inside fn's box bounds.
func InsideBounds(p []float64, fn Func) bool { return inside(p, fn.Low, fn.Up) }

func inside(x, low, up []float64) bool {
	for i := range x {
		if x[i] < low[i] || x[i] > up[i] {
			return false
		}
	}
	return true
}

func fill(ndim int, v float64) []float64 {
	s := make([]float64, ndim)
	for i := range s {
		s[i] = v
	}
	return s
}
