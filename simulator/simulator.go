// Package simulator implements the run loop (C8): it drives the
// replan/dynamics tick loop, injects the configured process noise,
// steps the Reallocator at its own cadence, records the full
// trajectory/goal history, and runs the collision/goal-reached audits
// spec.md §6 names as the run's final report.
//
// Grounded on
// _examples/original_source/cpp/src/simulator.cpp's Simulator::run
// (the outer replan/dynamics loop, addRandomNoise, collisionCheck,
// goalCheck), translated from Eigen in-place mutation to a Go struct
// that owns its own buffers and a rand.Rand it seeds explicitly rather
// than reaching for the process-global source (afb2001-CCOM_planner
// never seeds a shared RNG either — rrt/rrt.go and bitStar/bitStar.go
// each carry their own *rand.Rand field).
package simulator

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/Shreyas0812/online-dmpc/common"
	"github.com/Shreyas0812/online-dmpc/dynamics"
	"github.com/Shreyas0812/online-dmpc/generator"
	"github.com/Shreyas0812/online-dmpc/mpc"
	"github.com/Shreyas0812/online-dmpc/reallocation"
	"github.com/Shreyas0812/online-dmpc/util"
)

// Noise holds the per-axis Gaussian process-noise standard deviations
// spec.md §6 names (std_position, std_velocity); both default to 0,
// which disables noise injection entirely.
type Noise struct {
	StdPosition float64
	StdVelocity float64
}

// Audit is the report spec.md §6 asks every run to produce: whether
// any commanded pair ever violated the collision-check ellipsoid, and
// whether every commanded agent reached its final goal region by the
// end of the run.
type Audit struct {
	CollisionFree bool
	FirstCollisionAt float64 // seconds; 0 if CollisionFree
	AllGoalsReached bool
	GoalReachedAt   []float64 // per agent; math.Inf(1) if never reached
}

// CollisionCheck parameters (spec.md §6: collision_check_rmin,
// collision_check_order, collision_check_height_scaling) are kept
// distinct from the MPC's own planning geometry, matching the
// original's habit of auditing against a stricter ellipse than the one
// the planner optimizes against.
type CollisionCheck struct {
	Order         int
	RMin          float64
	HeightScaling float64
}

func (c CollisionCheck) distance(pi, pj [3]float64) float64 {
	q := float64(c.Order)
	cz := c.HeightScaling
	if cz <= 0 {
		cz = 1
	}
	var sum float64
	scale := [3]float64{1, 1, 1 / cz}
	for d := 0; d < 3; d++ {
		sum += math.Pow(scale[d]*(pi[d]-pj[d]), q)
	}
	return math.Pow(sum, 1/q)
}

// Simulator owns every piece of run-loop state for the Ncmd commanded
// agents: the dynamics models (one per agent), the current ground
// truth, the Generator, the optional Reallocator, and the recorded
// history buffers the final trajectory/goal files are built from.
// Uncommanded obstacle bodies carry no dynamics state (spec.md's
// Non-goals exclude dynamic obstacles) and never appear in Simulator;
// the Generator holds their fixed horizon and feeds it into every
// agent's collision block.
type Simulator struct {
	H  float64 // replan period
	Ts float64 // dynamics period

	Integrators []dynamics.DoubleIntegrator
	Gen         *generator.Generator
	Realloc     *reallocation.Manager // nil disables reallocation

	Noise Noise
	Audit CollisionCheck
	GoalToleranceDefault float64

	states []common.State3D
	rng    *rand.Rand

	trajectories []*mat.Dense // per agent, 3 x K_total
	goalHistory  []*mat.Dense // per agent, 3 x K_total
}

// New builds a Simulator for len(po) commanded agents starting at po.
// po must hold exactly the commanded positions (spec.md §6's `po`
// array truncated to its first Ncmd entries) — one per entry of
// integrators — never the full N-length array including uncommanded
// obstacles; those are threaded into gen separately.
func New(h, ts float64, integrators []dynamics.DoubleIntegrator, gen *generator.Generator, realloc *reallocation.Manager, noise Noise, audit CollisionCheck, goalTolerance float64, po [][3]float64, seed uint64) *Simulator {
	n := len(po)
	states := make([]common.State3D, n)
	for i, p := range po {
		states[i] = common.NewState3D(p, [3]float64{})
	}
	return &Simulator{
		H:                    h,
		Ts:                   ts,
		Integrators:          integrators,
		Gen:                  gen,
		Realloc:              realloc,
		Noise:                noise,
		Audit:                audit,
		GoalToleranceDefault: goalTolerance,
		states:               states,
		rng:                  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Run steps the simulation for duration seconds, recording history and
// returning the final audit. The replan period H is always an integer
// multiple of the dynamics period Ts (mirroring the original's
// count/max_count pattern), so the loop advances dynamics every Ts and
// calls the Generator only every H/Ts ticks.
func (s *Simulator) Run(duration float64) Audit {
	n := len(s.states)
	ticksPerReplan := int(math.Round(s.H / s.Ts))
	if ticksPerReplan < 1 {
		ticksPerReplan = 1
	}
	totalTicks := int(math.Round(duration / s.Ts))

	s.trajectories = make([]*mat.Dense, n)
	s.goalHistory = make([]*mat.Dense, n)
	for i := range s.trajectories {
		s.trajectories[i] = mat.NewDense(3, totalTicks+1, nil)
		s.goalHistory[i] = mat.NewDense(3, totalTicks+1, nil)
	}

	audit := Audit{CollisionFree: true, AllGoalsReached: true, GoalReachedAt: make([]float64, n)}
	for i := range audit.GoalReachedAt {
		audit.GoalReachedAt[i] = math.Inf(1)
	}

	var currentInputs [][][3]float64
	currentGoals := s.Gen.GoalsAt(0)
	s.recordTick(0, 0, currentGoals)
	s.auditGoals(0, currentGoals, &audit)
	s.auditCollisions(0, &audit)

	for tick := 0; tick < totalTicks; tick++ {
		t := float64(tick) * s.Ts

		if tick%ticksPerReplan == 0 {
			if s.Realloc != nil {
				s.runReallocation(t)
			}
			s.Gen.Tick(s.states, t)
			currentInputs = s.Gen.NextInputs()
			currentGoals = s.Gen.NextGoals()
			s.reportFallbacks(t)
		}

		step := (tick % ticksPerReplan)
		for i := 0; i < n; i++ {
			var u [3]float64
			if currentInputs != nil && step < len(currentInputs[i]) {
				u = currentInputs[i][step]
			}
			next := s.Integrators[i].Advance(s.states[i], u)
			s.states[i] = s.injectNoise(next)
		}

		tNext := t + s.Ts
		s.recordTick(tick+1, tNext, currentGoals)
		s.auditGoals(tNext, currentGoals, &audit)
		s.auditCollisions(tNext, &audit)
	}

	return audit
}

func (s *Simulator) runReallocation(t float64) {
	n := len(s.states)
	positions := make([][3]float64, n)
	for i, st := range s.states {
		positions[i] = st.PosArray()
	}
	goals := s.Gen.GoalsAt(t)
	changed, assignment := s.Realloc.Step(t, positions, s.Gen.PredictedHorizons(), goals)
	if changed {
		for i, goalID := range assignment {
			s.Gen.SetGoalPoint(i, goalID)
		}
		util.PrintVerbose("reallocation committed at t=", t)
	}
}

func (s *Simulator) reportFallbacks(t float64) {
	for i, status := range s.Gen.Statuses() {
		if status == mpc.Fallback {
			util.PrintVerbose("agent", i, "fell back to zero-acceleration at t=", t)
		}
	}
}

func (s *Simulator) injectNoise(state common.State3D) common.State3D {
	if s.Noise.StdPosition == 0 && s.Noise.StdVelocity == 0 {
		return state
	}
	p := state.PosArray()
	v := state.VelArray()
	for axis := 0; axis < 3; axis++ {
		p[axis] += s.Noise.StdPosition * s.gaussian()
		v[axis] += s.Noise.StdVelocity * s.gaussian()
	}
	return common.NewState3D(p, v)
}

func (s *Simulator) gaussian() float64 {
	return s.rng.NormFloat64()
}

func (s *Simulator) recordTick(col int, t float64, goals [][3]float64) {
	for i, st := range s.states {
		p := st.PosArray()
		s.trajectories[i].SetCol(col, p[:])
		if goals != nil && i < len(goals) {
			g := goals[i]
			s.goalHistory[i].SetCol(col, g[:])
		}
	}
}

func (s *Simulator) auditGoals(t float64, goals [][3]float64, audit *Audit) {
	if goals == nil {
		return
	}
	for i, st := range s.states {
		if !math.IsInf(audit.GoalReachedAt[i], 1) {
			continue
		}
		if st.DistanceTo(goals[i]) <= s.GoalToleranceDefault {
			audit.GoalReachedAt[i] = t
		}
	}
	for _, reached := range audit.GoalReachedAt {
		if math.IsInf(reached, 1) {
			audit.AllGoalsReached = false
			return
		}
	}
	audit.AllGoalsReached = true
}

func (s *Simulator) auditCollisions(t float64, audit *Audit) {
	n := len(s.states)
	for i := 0; i < n; i++ {
		pi := s.states[i].PosArray()
		for j := i + 1; j < n; j++ {
			pj := s.states[j].PosArray()
			if s.Audit.distance(pi, pj) < s.Audit.RMin {
				if audit.CollisionFree {
					audit.CollisionFree = false
					audit.FirstCollisionAt = t
				}
			}
		}
	}
}

// Trajectories returns the recorded per-agent position history, 3 x
// K_total, for file output (package config).
func (s *Simulator) Trajectories() []*mat.Dense {
	return s.trajectories
}

// GoalHistory returns the recorded per-agent goal-position history, 3
// x K_total, for file output (package config).
func (s *Simulator) GoalHistory() []*mat.Dense {
	return s.goalHistory
}

// GenerateRandomPoints draws n points inside [pMin,pMax] pairwise
// separated by at least minSeparation, for the "test: random" config
// mode (spec.md §7 kind 2). The original's generateRandomPoints
// retries each point in an unbounded `while(!pass)` loop; here every
// point gets at most maxAttemptsPerPoint tries before the whole call
// fails with an error instead of hanging when the box is too small
// for the requested separation and count.
func GenerateRandomPoints(n int, pMin, pMax [3]float64, minSeparation float64, maxAttemptsPerPoint int, rng *rand.Rand) ([][3]float64, error) {
	points := make([][3]float64, 0, n)
	for len(points) < n {
		placed := false
		for attempt := 0; attempt < maxAttemptsPerPoint; attempt++ {
			candidate := [3]float64{
				pMin[0] + rng.Float64()*(pMax[0]-pMin[0]),
				pMin[1] + rng.Float64()*(pMax[1]-pMin[1]),
				pMin[2] + rng.Float64()*(pMax[2]-pMin[2]),
			}
			if farEnoughFromAll(candidate, points, minSeparation) {
				points = append(points, candidate)
				placed = true
				break
			}
		}
		if !placed {
			return nil, fmt.Errorf("simulator: could not place point %d of %d within %d attempts (box too small for separation %.3f)", len(points)+1, n, maxAttemptsPerPoint, minSeparation)
		}
	}
	return points, nil
}

func farEnoughFromAll(candidate [3]float64, existing [][3]float64, minSeparation float64) bool {
	for _, p := range existing {
		dx, dy, dz := candidate[0]-p[0], candidate[1]-p[1], candidate[2]-p[2]
		if math.Sqrt(dx*dx+dy*dy+dz*dz) < minSeparation {
			return false
		}
	}
	return true
}
