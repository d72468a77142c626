package pswarm

import (
	"crypto/sha1"
	"encoding/binary"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
)

// ObjectiveFunc maps a candidate position to a scalar objective value; lower
// is better.  Implementations must not retain or mutate the argument slice
// (the swarm hands over a scratch copy and reuses it) and should be pure if
// reproducible runs matter.  There is no error channel: a NaN or +Inf result
// loses every comparison, so a failed evaluation simply never becomes a
// best.
type ObjectiveFunc func(x []float64) float64

// Counter wraps an objective and counts evaluations.  Pass the Objective
// method as the swarm's objective:
//
//	cnt := &pswarm.Counter{Fn: fn}
//	pos, val := s.Optimize(cnt.Objective)
//
// The count is atomic, so one Counter can serve a swarm evaluating in
// parallel.
type Counter struct {
	Fn ObjectiveFunc
	n  atomic.Int64
}

func (c *Counter) Objective(x []float64) float64 {
	c.n.Add(1)
	return c.Fn(x)
}

// N returns the number of evaluations so far.
func (c *Counter) N() int { return int(c.n.Load()) }

// Cached memoizes objective evaluations keyed by the exact bit pattern of
// the position.  For cheap analytic objectives it is pure overhead, but for
// expensive simulations it pays off whenever the swarm revisits a position
// exactly, which clamping makes more common than it sounds: particles that
// overshoot the same boundary repeatedly land on identical corner points.
//
// Safe for concurrent use.  The wrapped objective runs outside the lock, so
// parallel evaluations of one never-seen position may compute it more than
// once; they store the same value.
type Cached struct {
	fn    ObjectiveFunc
	mu    sync.Mutex
	cache map[[sha1.Size]byte]float64
}

func NewCached(fn ObjectiveFunc) *Cached {
	return &Cached{fn: fn, cache: map[[sha1.Size]byte]float64{}}
}

func (c *Cached) Objective(x []float64) float64 {
	h := hashPos(x)
	c.mu.Lock()
	val, ok := c.cache[h]
	c.mu.Unlock()
	if ok {
		return val
	}

	val = c.fn(x)
	c.mu.Lock()
	c.cache[h] = val
	c.mu.Unlock()
	return val
}

// Misses returns the number of distinct positions evaluated so far, the
// calls that could not be served from the cache.
func (c *Cached) Misses() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// Traced wraps an objective and logs every evaluation at debug level with a
// running call count.  A nil Log uses slog's default logger.  Call numbers
// are assigned atomically, so tracing survives parallel evaluation.
type Traced struct {
	Fn  ObjectiveFunc
	Log *slog.Logger
	n   atomic.Int64
}

func (t *Traced) Objective(x []float64) float64 {
	val := t.Fn(x)
	call := t.n.Add(1)

	lg := t.Log
	if lg == nil {
		lg = slog.Default()
	}
	lg.Debug("objective evaluated", "call", call, "pos", x, "val", val)
	return val
}

func hashPos(x []float64) [sha1.Size]byte {
	data := make([]byte, 8*len(x))
	for i, v := range x {
		binary.BigEndian.PutUint64(data[i*8:], math.Float64bits(v))
	}
	return sha1.Sum(data)
}
