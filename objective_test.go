package pswarm

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"testing"
)

func TestCounter(t *testing.T) {
	cnt := &Counter{Fn: func(x []float64) float64 { return x[0] }}
	for i := 0; i < 5; i++ {
		cnt.Objective([]float64{float64(i)})
	}
	if cnt.N() != 5 {
		t.Errorf("count: want 5, got %v", cnt.N())
	}
}

func TestCounterParallelSwarm(t *testing.T) {
	cnt := &Counter{Fn: eggcrate}
	s, err := New(16, 2, []float64{-3, -3}, []float64{3, 3}, 0.5, 1.8, 1.8, 25,
		Seed(9), ParallelEval(8))
	if err != nil {
		t.Fatal(err)
	}
	s.Optimize(cnt.Objective)

	// the initial pass plus one evaluation per particle per iteration,
	// none lost to concurrent increments
	if want := 16 * 26; cnt.N() != want {
		t.Errorf("parallel evaluation count: want %v, got %v", want, cnt.N())
	}
}

func TestCached(t *testing.T) {
	cnt := &Counter{Fn: func(x []float64) float64 { return x[0] * x[0] }}
	c := NewCached(cnt.Objective)

	a := []float64{1.5, -2}
	b := []float64{1.5, 2}

	v1 := c.Objective(a)
	v2 := c.Objective(a)
	if v1 != v2 {
		t.Errorf("cache returned a different value on a repeat: %v then %v", v1, v2)
	}
	if cnt.N() != 1 {
		t.Errorf("cache re-evaluated an identical position: %v underlying calls", cnt.N())
	}

	c.Objective(b)
	if cnt.N() != 2 {
		t.Errorf("cache confused distinct positions: %v underlying calls", cnt.N())
	}
	if c.Misses() != 2 {
		t.Errorf("misses: want 2, got %v", c.Misses())
	}
}

func TestCachedParallelSwarm(t *testing.T) {
	cnt := &Counter{Fn: eggcrate}
	c := NewCached(cnt.Objective)

	const npar = 12
	s, err := New(npar, 2, []float64{-2, -2}, []float64{2, 2}, 0.5, 1.8, 1.8, 20,
		Seed(10), ParallelEval(4))
	if err != nil {
		t.Fatal(err)
	}
	s.Optimize(c.Objective)

	total := npar * 21
	misses := c.Misses()
	if misses < 1 || misses > total {
		t.Errorf("misses after %v evaluations: got %v", total, misses)
	}
	if n := cnt.N(); n < misses || n > total {
		t.Errorf("underlying calls: got %v for %v misses", n, misses)
	}
}

func TestTraced(t *testing.T) {
	var buf bytes.Buffer
	lg := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tr := &Traced{Fn: func(x []float64) float64 { return math.Abs(x[0]) }, Log: lg}
	tr.Objective([]float64{-3})
	tr.Objective([]float64{4})

	out := buf.String()
	if !strings.Contains(out, "objective evaluated") {
		t.Errorf("no evaluation records logged: %q", out)
	}
	if !strings.Contains(out, "call=2") {
		t.Errorf("missing running call count: %q", out)
	}
}

func TestTracedParallelSwarm(t *testing.T) {
	var buf bytes.Buffer
	lg := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tr := &Traced{Fn: eggcrate, Log: lg}

	const npar = 10
	s, err := New(npar, 2, []float64{-2, -2}, []float64{2, 2}, 0.5, 1.8, 1.8, 10,
		Seed(12), ParallelEval(4))
	if err != nil {
		t.Fatal(err)
	}
	s.Optimize(tr.Objective)

	// every call gets its own number, so the final one equals the total
	want := npar * 11
	out := buf.String()
	if got := strings.Count(out, "objective evaluated"); got != want {
		t.Errorf("want %v evaluation records, got %v", want, got)
	}
	if !strings.Contains(out, fmt.Sprintf("call=%v", want)) {
		t.Errorf("call numbers were lost: %v never appears", want)
	}
}
