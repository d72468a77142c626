package pswarm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// InvalidConfigErr marks swarm parameters that cannot describe a swarm:
// non-positive particle or dimension counts, a negative iteration count, or
// initial positions that don't match the swarm's shape.
var InvalidConfigErr = errors.New("invalid configuration")

// Rng is the source of uniform draws used by a swarm.  math/rand's *Rand
// satisfies it; anything returning values in [0, 1) will do.
type Rng interface {
	Float64() float64
}

// These params are calculated using a constriction factor originally
// described in:
//
//	Clerc and M.  "The swarm and the queen: towards a deterministic and
//	adaptive particle swarm optimization" Proc. 1999 Congress on
//	Evolutionary Computation, pp. 1951-1957
//
// The cognition and social parameters correspond to c1 and c2 values of 2.05
// that have been multiplied by their constriction coeffient - i.e.
// DefaultSocial = Constriction(2.05, 2.05)*2.05.  DefaultInertia is set equal
// to the constriction coefficient.
const (
	DefaultCognition = 1.496179765663133
	DefaultSocial    = 1.496179765663133
	DefaultInertia   = 0.7298437881283576
)

// Constriction calculates the constriction coefficient for the given c1 and
// c2 for the particle velocity equation:
//
//	v_next = k*(v_curr + c1*rand*(p_personal-x) + c2*rand*(p_glob-x))
//
//	or
//
//	v_next = w*v_curr + b1*rand*(p_personal-x) + b2*rand*(p_glob-x)
//
//	(with constriction coefficient multiplied through).
//
// c1+c2 should usually be greater than (but close to) 4.  'w = k' is often
// referred to as the inertia in the traditional swarm equation.
func Constriction(c1, c2 float64) float64 {
	phi := c1 + c2
	return 2 / math.Abs(2-phi-math.Sqrt(phi*phi-4*phi))
}

// scratch holds the per-move temporaries of the velocity update.  One move's
// buffers are dead as soon as Particle.Update copies the survivors out, so a
// single set is reused across every particle and every iteration.
type scratch struct {
	rp   []float64 // per-dimension cognitive draws
	rg   []float64 // per-dimension social draws
	vel  []float64 // candidate velocity
	pos  []float64 // candidate position
	diff []float64 // attraction working vector
	eval []float64 // copy handed to the objective
}

func newScratch(ndim int) scratch {
	return scratch{
		rp:   make([]float64, ndim),
		rg:   make([]float64, ndim),
		vel:  make([]float64, ndim),
		pos:  make([]float64, ndim),
		diff: make([]float64, ndim),
		eval: make([]float64, ndim),
	}
}

// Swarm drives a fixed population of particles through the classic
// inertia-weight update
//
//	v' = omega*v + phiP*rP.*(pbest-x) + phiG*rG.*(gbest-x)
//	x' = clamp(x + v')
//
// with rP and rG drawn fresh for every dimension of every particle on every
// iteration.  Particles are processed strictly in stored order and the
// swarm-wide best is updated the moment any particle improves on it, so
// later particles in the same iteration already chase the newer best.
// ParallelEval switches to generational updates instead.
type Swarm struct {
	particles []*Particle
	bounds    *Bounds
	omega     float64
	phiP      float64
	phiG      float64
	maxiter   int

	bestPos []float64
	bestVal float64

	rng     Rng
	scratch scratch

	// seeded reports whether the initial evaluation pass has run.  iter
	// counts completed iterations; the initial pass is not an iteration.
	seeded bool
	iter   int

	seedPos [][]float64
	workers int

	db    *sql.DB
	runID string
}

// An Option modifies a swarm at construction time.
type Option func(*Swarm)

// Seed makes the swarm draw all of its randomness, initial positions and the
// per-move rP/rG vectors alike, from a math/rand source seeded with seed.
// Two swarms built with the same configuration and seed walk identical
// trajectories over the same objective.  Without Seed or RNG every swarm
// uses a fixed default seed, so runs are repeatable out of the box.
func Seed(seed int64) Option {
	return func(s *Swarm) { s.rng = rand.New(rand.NewSource(seed)) }
}

// RNG supplies the swarm's uniform source directly, for callers that need a
// shared or non-standard generator.  A nil rng is ignored.
func RNG(rng Rng) Option {
	return func(s *Swarm) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// DB makes the swarm record every particle's state, every personal best,
// and the swarm-wide best to the given database after the initial
// evaluation pass (iteration 0) and after each iteration.  See the Tbl*
// constants for the schema.  Recording is observational only: it never
// alters the trajectory, and a write failure disables further recording
// rather than aborting the run.
func DB(db *sql.DB) Option {
	return func(s *Swarm) { s.db = db }
}

// InitialPositions seeds the swarm's particles from the given positions, one
// per particle in order, instead of uniform random draws.  Positions are
// copied and clamped into bounds on intake.  New fails with
// InvalidConfigErr when the count or a dimension doesn't match the swarm.
func InitialPositions(points [][]float64) Option {
	return func(s *Swarm) { s.seedPos = points }
}

// ParallelEval runs objective evaluations on up to n goroutines.  This
// switches the swarm to generational updates: every velocity update in an
// iteration reads the swarm-wide best as it stood when the iteration began,
// and best updates are reconciled in stored order after all evaluations
// return.  Trajectories therefore differ from the default in-order scheme,
// but remain reproducible under a fixed seed for pure objectives.  n < 2 is
// ignored.
func ParallelEval(n int) Option {
	return func(s *Swarm) {
		if n > 1 {
			s.workers = n
		}
	}
}

// New creates a swarm of n particles in the box described by low and up.
// Initial positions are drawn uniformly inside the box, initial velocities
// are zero, and every best starts at a +Inf sentinel until Optimize or Step
// runs the initial evaluation pass.  The returned swarm is ready to run;
// there is no partially-initialized state on error.
func New(n, ndim int, low, up []float64, omega, phiP, phiG float64, maxiter int, opts ...Option) (*Swarm, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: swarm needs at least 1 particle, got %v", InvalidConfigErr, n)
	} else if ndim <= 0 {
		return nil, fmt.Errorf("%w: swarm needs at least 1 dimension, got %v", InvalidConfigErr, ndim)
	} else if maxiter < 0 {
		return nil, fmt.Errorf("%w: negative iteration count %v", InvalidConfigErr, maxiter)
	}

	b, err := NewBounds(low, up)
	if err != nil {
		return nil, err
	}
	if b.Dims() != ndim {
		return nil, fmt.Errorf("%w: %v-dimensional bounds for a %v-dimensional swarm", InvalidBoundsErr, b.Dims(), ndim)
	}

	s := &Swarm{
		bounds:  b,
		omega:   omega,
		phiP:    phiP,
		phiG:    phiG,
		maxiter: maxiter,
		bestPos: make([]float64, ndim),
		bestVal: math.Inf(1),
		rng:     rand.New(rand.NewSource(0)),
		scratch: newScratch(ndim),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.seedPos != nil {
		if len(s.seedPos) != n {
			return nil, fmt.Errorf("%w: %v initial positions for %v particles", InvalidConfigErr, len(s.seedPos), n)
		}
		for i, pos := range s.seedPos {
			if len(pos) != ndim {
				return nil, fmt.Errorf("%w: initial position %v has %v dimensions, swarm has %v", InvalidConfigErr, i, len(pos), ndim)
			}
		}
	}

	zero := make([]float64, ndim)
	pos := make([]float64, ndim)
	for i := 0; i < n; i++ {
		if s.seedPos != nil {
			copy(pos, s.seedPos[i])
			s.bounds.Clamp(pos)
		} else {
			for j := range pos {
				pos[j] = s.bounds.low[j] + s.rng.Float64()*(s.bounds.up[j]-s.bounds.low[j])
			}
		}

		p := &Particle{id: i}
		p.Init(pos, zero)
		s.particles = append(s.particles, p)
	}

	if s.db != nil {
		if err := s.initdb(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Optimize runs the initial evaluation pass (if it hasn't run yet) followed
// by exactly the configured number of iterations and returns copies of the
// best position and value found.  With zero iterations the result is simply
// the best of the seeded positions.  Calling Optimize again continues from
// the current state for another full round of iterations.
func (s *Swarm) Optimize(obj ObjectiveFunc) ([]float64, float64) {
	pos, val, _ := s.OptimizeContext(context.Background(), obj)
	return pos, val
}

// OptimizeContext is Optimize with a cancellation hook.  ctx is consulted at
// iteration boundaries only; a single iteration always completes once
// started.  On cancellation the best found so far is returned along with
// ctx.Err(), and the swarm can be resumed by calling Optimize again.
func (s *Swarm) OptimizeContext(ctx context.Context, obj ObjectiveFunc) ([]float64, float64, error) {
	s.seedBests(obj)
	for n := 0; n < s.maxiter; n++ {
		if err := ctx.Err(); err != nil {
			best := s.Best()
			return best.Pos(), best.Val, err
		}
		s.Step(obj)
	}
	best := s.Best()
	return best.Pos(), best.Val, nil
}

// Step advances the swarm by one iteration, running the initial evaluation
// pass first if it hasn't run yet, and returns a snapshot of the swarm-wide
// best.  Optimize is Step in a loop; harnesses that want per-iteration
// progress call Step themselves.
func (s *Swarm) Step(obj ObjectiveFunc) Point {
	s.seedBests(obj)
	if s.workers > 1 {
		s.stepGenerational(obj)
	} else {
		s.stepSequential(obj)
	}
	s.iter++
	s.record(s.iter)
	return s.Best()
}

// Best returns a snapshot of the swarm-wide best.  Before the initial
// evaluation pass this is the zero position with a +Inf value.
func (s *Swarm) Best() Point { return NewPoint(s.bestPos, s.bestVal) }

// Iter returns the number of completed iterations.  The initial evaluation
// pass is not counted.
func (s *Swarm) Iter() int { return s.iter }

// seedBests runs the initial evaluation pass exactly once: every particle
// is evaluated at its seeded position and the +Inf sentinels are replaced by
// real personal and swarm-wide bests.
func (s *Swarm) seedBests(obj ObjectiveFunc) {
	if s.seeded {
		return
	}

	if s.workers > 1 {
		s.evalAll(obj)
		s.reconcileBests()
	} else {
		for _, p := range s.particles {
			copy(s.scratch.eval, p.pos)
			p.val = obj(s.scratch.eval)
			if p.val < p.bestVal {
				p.SetBest(p.pos, p.val)
			}
			if p.bestVal < s.bestVal {
				s.setBest(p.bestPos, p.bestVal)
			}
		}
	}

	s.seeded = true
	s.record(0)
}

// stepSequential is the default asynchronous scheme: particles move and are
// evaluated one at a time in stored order, and a swarm-wide best update is
// visible to every later particle in the same pass.
func (s *Swarm) stepSequential(obj ObjectiveFunc) {
	for _, p := range s.particles {
		s.move(p, s.bestPos)

		copy(s.scratch.eval, p.pos)
		p.val = obj(s.scratch.eval)

		if p.val < p.bestVal {
			p.SetBest(p.pos, p.val)
		}
		if p.bestVal < s.bestVal {
			s.setBest(p.bestPos, p.bestVal)
		}
	}
}

// stepGenerational is the ParallelEval scheme: all particles move against
// the iteration-start best, evaluations run concurrently, and best updates
// are applied afterwards in stored order.
func (s *Swarm) stepGenerational(obj ObjectiveFunc) {
	// No best update happens while moving, so s.bestPos still holds the
	// iteration-start best for every particle.
	for _, p := range s.particles {
		s.move(p, s.bestPos)
	}
	s.evalAll(obj)
	s.reconcileBests()
}

// move computes p's next velocity and position against gbest and commits
// them.  The new position is clamped into bounds; the velocity never is.
func (s *Swarm) move(p *Particle, gbest []float64) {
	sc := &s.scratch

	// rP and rG MUST be drawn uniquely for each dimension of p's velocity,
	// in this order: all of rP first, then all of rG.
	for i := range sc.rp {
		sc.rp[i] = s.rng.Float64()
	}
	for i := range sc.rg {
		sc.rg[i] = s.rng.Float64()
	}

	// v' = omega*v + phiP*rP.*(pbest-x) + phiG*rG.*(gbest-x)
	copy(sc.vel, p.vel)
	floats.Scale(s.omega, sc.vel)

	copy(sc.diff, p.bestPos)
	floats.Sub(sc.diff, p.pos)
	floats.Mul(sc.diff, sc.rp)
	floats.AddScaled(sc.vel, s.phiP, sc.diff)

	copy(sc.diff, gbest)
	floats.Sub(sc.diff, p.pos)
	floats.Mul(sc.diff, sc.rg)
	floats.AddScaled(sc.vel, s.phiG, sc.diff)

	// x' = clamp(x + v')
	copy(sc.pos, p.pos)
	floats.Add(sc.pos, sc.vel)
	s.bounds.Clamp(sc.pos)

	p.Update(sc.pos, sc.vel)
}

// evalAll evaluates every particle at its current position on the worker
// pool and stores the values.  Bests are untouched; reconcileBests applies
// them deterministically afterwards.
func (s *Swarm) evalAll(obj ObjectiveFunc) {
	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for _, p := range s.particles {
		g.Go(func() error {
			buf := append([]float64{}, p.pos...)
			p.val = obj(buf)
			return nil
		})
	}
	_ = g.Wait()
}

// reconcileBests folds the stored evaluation values into personal and
// swarm-wide bests in stored particle order.
func (s *Swarm) reconcileBests() {
	for _, p := range s.particles {
		if p.val < p.bestVal {
			p.SetBest(p.pos, p.val)
		}
		if p.bestVal < s.bestVal {
			s.setBest(p.bestPos, p.bestVal)
		}
	}
}

// setBest overwrites the swarm-wide best with copies of pos and val.  Like
// Particle.SetBest, the improvement comparison lives in the caller.
func (s *Swarm) setBest(pos []float64, val float64) {
	copy(s.bestPos, pos)
	s.bestVal = val
}
