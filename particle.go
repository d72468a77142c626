package pswarm

import "math"

// Particle is one candidate solution: a position inside the swarm's bounds,
// a velocity, and the best position this particle has ever evaluated.  All
// vector arguments are copied on the way in and the stored state is only
// handed out as copies, so a particle never aliases caller memory.
//
// A particle holds no comparison logic.  The swarm decides when a value is
// an improvement and then calls SetBest; the particle just stores what it is
// told.  Once a particle has joined a swarm the swarm is its only writer.
type Particle struct {
	id  int
	pos []float64
	vel []float64

	// val is the objective value from the latest evaluation.  It is
	// bookkeeping for observers and run recording, not part of the swarm's
	// decision state.
	val float64

	bestPos []float64
	bestVal float64
}

// Init seeds the particle with copies of pos and vel.  The personal best
// starts at pos with a +Inf sentinel value so that the first finite
// evaluation always counts as an improvement.
func (p *Particle) Init(pos, vel []float64) {
	p.pos = append([]float64{}, pos...)
	p.vel = append([]float64{}, vel...)
	p.bestPos = append([]float64{}, pos...)
	p.bestVal = math.Inf(1)
	p.val = math.Inf(1)
}

// Update overwrites the particle's position and velocity with copies of the
// given vectors.  It never touches the personal best and performs no bounds
// checks; the caller clamps pos before handing it over.
func (p *Particle) Update(pos, vel []float64) {
	copy(p.pos, pos)
	copy(p.vel, vel)
}

// SetBest unconditionally overwrites the personal best with copies of pos
// and val.  The caller decides whether val is an improvement; SetBest never
// compares.
func (p *Particle) SetBest(pos []float64, val float64) {
	copy(p.bestPos, pos)
	p.bestVal = val
}

// Pos returns a copy of the particle's current position.
func (p *Particle) Pos() []float64 { return append([]float64{}, p.pos...) }

// Vel returns a copy of the particle's current velocity.
func (p *Particle) Vel() []float64 { return append([]float64{}, p.vel...) }

// Best returns a snapshot of the particle's personal best.
func (p *Particle) Best() Point { return NewPoint(p.bestPos, p.bestVal) }

// Val returns the objective value from the particle's latest evaluation, or
// +Inf before the particle has ever been evaluated.
func (p *Particle) Val() float64 { return p.val }
