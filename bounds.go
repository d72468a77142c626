package pswarm

import (
	"errors"
	"fmt"
	"math"
)

// InvalidBoundsErr marks malformed search-domain bounds: empty or
// mismatched bound vectors, or a lower limit above its upper limit.
var InvalidBoundsErr = errors.New("invalid bounds")

// Bounds is a validated set of per-dimension box limits.  Swarm positions
// always live inside the box; velocities are never limited by it.
type Bounds struct {
	low []float64
	up  []float64
}

// NewBounds validates low and up and returns bounds holding copies of both,
// so later changes to the argument slices don't leak in.  Equal lower and
// upper limits are allowed and pin that dimension to a single value.
func NewBounds(low, up []float64) (*Bounds, error) {
	if len(low) == 0 || len(up) == 0 {
		return nil, fmt.Errorf("%w: empty bound vector", InvalidBoundsErr)
	} else if len(low) != len(up) {
		return nil, fmt.Errorf("%w: %v lower limits vs %v upper limits", InvalidBoundsErr, len(low), len(up))
	}
	for i := range low {
		if low[i] > up[i] {
			return nil, fmt.Errorf("%w: low[%v]=%v > up[%v]=%v", InvalidBoundsErr, i, low[i], i, up[i])
		}
	}

	b := &Bounds{
		low: make([]float64, len(low)),
		up:  make([]float64, len(up)),
	}
	copy(b.low, low)
	copy(b.up, up)
	return b, nil
}

func (b *Bounds) Dims() int { return len(b.low) }

// Low returns a copy of the lower limits.
func (b *Bounds) Low() []float64 {
	low := make([]float64, len(b.low))
	copy(low, b.low)
	return low
}

// Up returns a copy of the upper limits.
func (b *Bounds) Up() []float64 {
	up := make([]float64, len(b.up))
	copy(up, b.up)
	return up
}

// Clamp slides each coordinate of x to the nearest value inside the box, in
// place, and returns x.  x must have exactly Dims coordinates.
func (b *Bounds) Clamp(x []float64) []float64 {
	for i := range x {
		x[i] = math.Max(b.low[i], math.Min(b.up[i], x[i]))
	}
	return x
}

// In reports whether x lies inside the box.
func (b *Bounds) In(x []float64) bool {
	for i := range x {
		if x[i] < b.low[i] || x[i] > b.up[i] {
			return false
		}
	}
	return true
}
