package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const fixture = `{
	"N": 2, "Ncmd": 2,
	"po": [[0,0,1],[4,0,1]],
	"pf": [[4,0,1],[0,0,1]],
	"solver": "qpoases",
	"collision_method": "BVC",
	"d": 4, "num_segments": 2, "dim": 3, "deg_poly": 2, "t_segment": 1.0,
	"zeta_xy": 1, "tau_xy": 0.3, "zeta_z": 1, "tau_z": 0.3,
	"h": 0.2, "ts": 0.05, "k_hor": 10,
	"rmin": 0.5, "order": 2, "height_scaling": 2,
	"test": "default",
	"motion_type": "static",
	"simulation_duration": 10,
	"_use_predictive": true
}`

func TestLoad_RoundTripsFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	want := &Config{
		N: 2, Ncmd: 2,
		Po: [][3]float64{{0, 0, 1}, {4, 0, 1}},
		Pf: [][3]float64{{4, 0, 1}, {0, 0, 1}},
		Solver:          "qpoases",
		CollisionMethod: "BVC",
		D: 4, NumSegments: 2, Dim: 3, DegPoly: 2, TSegment: 1.0,
		ZetaXY: 1, TauXY: 0.3, ZetaZ: 1, TauZ: 0.3,
		H: 0.2, Ts: 0.05, KHor: 10,
		RMin: 0.5, Order: 2, HeightScaling: 2,
		Test:                    "default",
		MotionType:              "static",
		SimulationDuration:      10,
		UsePredictive:           true,
		ReallocationLogPath:     "reallocation_log.csv",
		OutputTrajectoriesPaths: []string{"trajectories.txt"},
		OutputGoalsPaths:        []string{"goals.txt"},
	}

	if diff := cmp.Diff(want, c); diff != "" {
		t.Fatalf("Load() round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_RejectsUnknownSolver(t *testing.T) {
	c := &Config{Solver: "osqp", Test: "default", MotionType: "static"}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "solver")
}

func TestValidate_RejectsUnknownCollisionMethod(t *testing.T) {
	c := &Config{Solver: "qpoases", CollisionMethod: "RRT", Test: "default", MotionType: "static"}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision_method")
}

func TestValidate_RejectsNcmdGreaterThanN(t *testing.T) {
	c := &Config{Solver: "qpoases", Test: "random", MotionType: "static", N: 1, Ncmd: 2}
	err := c.Validate()
	require.Error(t, err)
}

func TestWriteTrajectories_HeaderMatchesFormat(t *testing.T) {
	c := &Config{
		N: 1, Ncmd: 1,
		Po:   [][3]float64{{0, 0, 1}},
		Pf:   [][3]float64{{4, 0, 1}},
		PMin: [3]float64{-5, -5, 0},
		PMax: [3]float64{5, 5, 3},
	}
	traj := mat.NewDense(3, 2, []float64{0, 1, 0, 0, 0, 1})
	path := filepath.Join(t.TempDir(), "trajectories.txt")
	require.NoError(t, WriteTrajectories(path, c, []*mat.Dense{traj}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1 1 -5 -5 0 5 5 3")
}
