package pswarm

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Recording schema: every table carries the run id (one UUID per swarm), the
// iteration number, and one x<i> REAL column per dimension.  Iteration 0 is
// the swarm's state right after the initial evaluation pass.
const (
	// TblParticles is the name of the sql database table that contains
	// positions and objective values for particles for each iteration.
	TblParticles = "swarmparticles"
	// TblParticlesBest is the name of the sql database table that contains
	// each particle's personal best position at each iteration.
	TblParticlesBest = "swarmparticlesbest"
	// TblBest is the name of the sql database table that contains the best
	// position for the entire swarm at each iteration.
	TblBest = "swarmbest"
)

// RunID returns the identifier recorded with every row of this swarm's run,
// or "" when recording is off.
func (s *Swarm) RunID() string { return s.runID }

func (s *Swarm) initdb() error {
	s.runID = uuid.NewString()

	stmts := []string{
		"CREATE TABLE IF NOT EXISTS " + TblParticles + " (run TEXT, iter INTEGER, particle INTEGER, val REAL" + s.xdbsql("define") + ");",
		"CREATE TABLE IF NOT EXISTS " + TblParticlesBest + " (run TEXT, iter INTEGER, particle INTEGER, best REAL" + s.xdbsql("define") + ");",
		"CREATE TABLE IF NOT EXISTS " + TblBest + " (run TEXT, iter INTEGER, val REAL" + s.xdbsql("define") + ");",
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("create recording tables: %w", err)
		}
	}
	return nil
}

func (s *Swarm) xdbsql(op string) string {
	str := ""
	for i := 0; i < s.bounds.Dims(); i++ {
		switch op {
		case "?":
			str += ",?"
		case "define":
			str += fmt.Sprintf(",x%v REAL", i)
		case "x":
			str += fmt.Sprintf(",x%v", i)
		default:
			panic("invalid db op " + op)
		}
	}
	return str
}

// record writes the swarm's state for iter.  Recording never alters the
// run: on a write failure the error is logged and the recorder shuts off.
func (s *Swarm) record(iter int) {
	if s.db == nil {
		return
	}
	if err := s.recordIter(iter); err != nil {
		slog.Error("run recording failed, recorder disabled", "run", s.runID, "iter", iter, "err", err)
		s.db = nil
	}
}

func (s *Swarm) recordIter(iter int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	s0 := "INSERT INTO " + TblParticles + " (run,iter,particle,val" + s.xdbsql("x") + ") VALUES (?,?,?,?" + s.xdbsql("?") + ");"
	s1 := "INSERT INTO " + TblParticlesBest + " (run,iter,particle,best" + s.xdbsql("x") + ") VALUES (?,?,?,?" + s.xdbsql("?") + ");"
	for _, p := range s.particles {
		args := []any{s.runID, iter, p.id, p.val}
		args = append(args, pos2iface(p.pos)...)
		if _, err := tx.Exec(s0, args...); err != nil {
			return err
		}

		args = []any{s.runID, iter, p.id, p.bestVal}
		args = append(args, pos2iface(p.bestPos)...)
		if _, err := tx.Exec(s1, args...); err != nil {
			return err
		}
	}

	s2 := "INSERT INTO " + TblBest + " (run,iter,val" + s.xdbsql("x") + ") VALUES (?,?,?" + s.xdbsql("?") + ");"
	args := []any{s.runID, iter, s.bestVal}
	args = append(args, pos2iface(s.bestPos)...)
	if _, err := tx.Exec(s2, args...); err != nil {
		return err
	}
	return tx.Commit()
}

func pos2iface(pos []float64) []any {
	iface := make([]any, 0, len(pos))
	for _, v := range pos {
		iface = append(iface, v)
	}
	return iface
}
