package pswarm

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Point is a position-value pair recording one objective evaluation (or a
// best-so-far).  The position is copied on the way in and on the way out, so
// holders of a Point never share backing arrays with each other or with a
// swarm's working state.
type Point struct {
	pos []float64
	Val float64
}

func NewPoint(pos []float64, val float64) Point {
	cpos := make([]float64, len(pos))
	copy(cpos, pos)
	return Point{pos: cpos, Val: val}
}

// Pos returns a copy of the point's position.
func (p Point) Pos() []float64 {
	pos := make([]float64, len(p.pos))
	copy(pos, p.pos)
	return pos
}

// At returns the i'th coordinate of the point's position.
func (p Point) At(i int) float64 { return p.pos[i] }

func (p Point) Len() int { return len(p.pos) }

func (p Point) String() string { return fmt.Sprintf("f%v = %v", p.pos, p.Val) }

// L2Dist returns the euclidean distance between the positions of p1 and p2.
func L2Dist(p1, p2 Point) float64 { return floats.Distance(p1.pos, p2.pos, 2) }
