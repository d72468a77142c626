package pswarm

import (
	"bytes"
	"database/sql"
	"log/slog"
	"math"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestRecording(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	const npar = 5
	const niter = 3

	s, err := New(npar, 2, []float64{-1, -1}, []float64{1, 1}, 0.5, 1.8, 1.8, niter,
		Seed(4), DB(db))
	if err != nil {
		t.Fatal(err)
	}
	if s.RunID() == "" {
		t.Fatal("recording swarm has no run id")
	}
	s.Optimize(bowl([]float64{0, 0}, 0))

	// iteration 0 plus one row set per iteration
	wantRows := npar * (niter + 1)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM "+TblParticles+" WHERE run = ?", s.RunID()).Scan(&count)
	if err != nil {
		t.Errorf("particles table query failed: %v", err)
	} else if count != wantRows {
		t.Errorf("particles table: want %v rows, got %v", wantRows, count)
	}

	err = db.QueryRow("SELECT COUNT(*) FROM "+TblParticlesBest+" WHERE run = ?", s.RunID()).Scan(&count)
	if err != nil {
		t.Errorf("particle best table query failed: %v", err)
	} else if count != wantRows {
		t.Errorf("particle best table: want %v rows, got %v", wantRows, count)
	}

	err = db.QueryRow("SELECT COUNT(*) FROM "+TblBest+" WHERE run = ?", s.RunID()).Scan(&count)
	if err != nil {
		t.Errorf("best table query failed: %v", err)
	} else if count != niter+1 {
		t.Errorf("best table: want %v rows, got %v", niter+1, count)
	}

	// the best table is monotone, so its minimum is the final best
	var minVal float64
	err = db.QueryRow("SELECT MIN(val) FROM "+TblBest+" WHERE run = ?", s.RunID()).Scan(&minVal)
	if err != nil {
		t.Errorf("best value query failed: %v", err)
	} else if minVal != s.Best().Val {
		t.Errorf("recorded best %v does not match the swarm's best %v", minVal, s.Best().Val)
	}
}

func TestRecordingSharedDb(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mk := func(seed int64) *Swarm {
		s, err := New(3, 2, []float64{-1, -1}, []float64{1, 1}, 0.5, 1.8, 1.8, 2,
			Seed(seed), DB(db))
		if err != nil {
			t.Fatal(err)
		}
		return s
	}

	s1 := mk(1)
	s2 := mk(2)
	if s1.RunID() == s2.RunID() {
		t.Fatal("two swarms share one run id")
	}
	s1.Optimize(eggcrate)
	s2.Optimize(eggcrate)

	var runs int
	if err := db.QueryRow("SELECT COUNT(DISTINCT run) FROM " + TblBest).Scan(&runs); err != nil {
		t.Fatal(err)
	}
	if runs != 2 {
		t.Errorf("want 2 recorded runs in the shared database, got %v", runs)
	}
}

func TestRecordingDisabledOnFailure(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}

	s, err := New(4, 2, []float64{-1, -1}, []float64{1, 1}, 0.5, 1.8, 1.8, 10,
		Seed(21), DB(db))
	if err != nil {
		t.Fatal(err)
	}
	// every write from here on fails
	db.Close()

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	pos, val := s.Optimize(bowl([]float64{0, 0}, 0))

	if math.IsInf(val, 1) || !s.bounds.In(pos) {
		t.Errorf("recording failure disturbed the run: best %v at %v", val, pos)
	}
	if s.Iter() != 10 {
		t.Errorf("recording failure cut the run short at %v iterations", s.Iter())
	}
	if s.db != nil {
		t.Errorf("recorder still armed after a write failure")
	}
	if !strings.Contains(buf.String(), "run recording failed") {
		t.Errorf("write failure was never logged: %q", buf.String())
	}
}
