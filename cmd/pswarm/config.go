package main

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"

	pswarm "github.com/rwcarlsen/gopswarm"
	"github.com/rwcarlsen/gopswarm/bench"
)

// Scenario is the YAML description of one optimization run.
type Scenario struct {
	// Function names a catalog objective, case-insensitively and without
	// the dimension suffix: sphere, ackley, crosstray, eggholder,
	// holdertable, schaffer2, styblinski, rosenbrock.  Dims sizes the
	// dimension-parametrized ones and defaults to 2.
	Function string `yaml:"function"`
	Dims     int    `yaml:"dims"`

	// Quadratic describes a custom shifted bowl instead of a catalog
	// objective and takes precedence over Function.
	Quadratic *QuadraticSpec `yaml:"quadratic"`

	Particles  int     `yaml:"particles"`
	Iterations int     `yaml:"iterations"`
	Omega      float64 `yaml:"omega"`
	PhiP       float64 `yaml:"phi_p"`
	PhiG       float64 `yaml:"phi_g"`
	Seed       int64   `yaml:"seed"`

	// Workers > 1 evaluates the objective on that many goroutines, which
	// switches the swarm to generational updates.
	Workers int `yaml:"workers"`

	// DB is a sqlite file to record the run to; empty disables recording.
	DB string `yaml:"db"`
}

// QuadraticSpec mirrors the arguments of bench.Quadratic.
type QuadraticSpec struct {
	Shift   []float64 `yaml:"shift"`
	Weights []float64 `yaml:"weights"`
	Offset  float64   `yaml:"offset"`
}

// DefaultScenario returns the scenario a file's fields override: the 2-D
// sphere under the classic constriction hyperparameters.
func DefaultScenario() *Scenario {
	return &Scenario{
		Function:   "sphere",
		Dims:       2,
		Particles:  50,
		Iterations: 1000,
		Omega:      pswarm.DefaultInertia,
		PhiP:       pswarm.DefaultCognition,
		PhiG:       pswarm.DefaultSocial,
		Seed:       7,
	}
}

// LoadScenario reads, parses, and validates the scenario file at path.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}

	sc := DefaultScenario()
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("scenario file %s: %w", path, err)
	}
	return sc, nil
}

func (sc *Scenario) Validate() error {
	if sc.Particles <= 0 {
		return fmt.Errorf("particles must be positive, got %v", sc.Particles)
	}
	if sc.Iterations < 0 {
		return fmt.Errorf("iterations must be non-negative, got %v", sc.Iterations)
	}
	if sc.Quadratic == nil && sc.Function == "" {
		return fmt.Errorf("scenario needs a function name or a quadratic block")
	}
	if sc.Quadratic != nil {
		q := sc.Quadratic
		if len(q.Shift) == 0 {
			return fmt.Errorf("quadratic block needs a non-empty shift vector")
		}
		if q.Weights != nil && len(q.Weights) != len(q.Shift) {
			return fmt.Errorf("quadratic weights length %v does not match shift length %v", len(q.Weights), len(q.Shift))
		}
	}
	return nil
}

// Fn resolves the scenario's objective to a benchmark catalog entry.
func (sc *Scenario) Fn() (bench.Func, error) {
	if sc.Quadratic != nil {
		return bench.Quadratic(sc.Quadratic.Shift, sc.Quadratic.Weights, sc.Quadratic.Offset), nil
	}

	dims := sc.Dims
	if dims <= 0 {
		dims = 2
	}

	switch strings.ToLower(sc.Function) {
	case "sphere":
		return bench.Sphere(dims), nil
	case "ackley":
		return bench.Ackley(), nil
	case "crosstray":
		return bench.CrossTray(), nil
	case "eggholder":
		return bench.Eggholder(), nil
	case "holdertable":
		return bench.HolderTable(), nil
	case "schaffer2":
		return bench.Schaffer2(), nil
	case "styblinski":
		return bench.Styblinski(dims), nil
	case "rosenbrock":
		return bench.Rosenbrock(dims), nil
	}
	return bench.Func{}, fmt.Errorf("unknown function %q", sc.Function)
}

// Options converts the scenario's optional knobs into swarm options.  The
// returned cleanup closes the recording database (if any) and must run
// after the swarm is done.
func (sc *Scenario) Options() (opts []pswarm.Option, cleanup func(), err error) {
	opts = []pswarm.Option{pswarm.Seed(sc.Seed)}
	cleanup = func() {}

	if sc.Workers > 1 {
		opts = append(opts, pswarm.ParallelEval(sc.Workers))
	}
	if sc.DB != "" {
		db, err := sql.Open("sqlite3", sc.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open run database %s: %w", sc.DB, err)
		}
		opts = append(opts, pswarm.DB(db))
		cleanup = func() { db.Close() }
	}
	return opts, cleanup, nil
}
