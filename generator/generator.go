// Package generator implements the Generator (C6): it orchestrates one
// replan tick across every commanded agent, refreshes goal positions
// from their motion profiles, fans the Ncmd independent per-agent solves
// out across a worker pool joined before the tick returns (spec.md §5's
// barrier-synchronous fan-out), and exposes the assignment mutation hook
// the Reallocator uses to retarget agents between ticks. Uncommanded
// obstacle bodies never solve anything themselves; their fixed horizon
// is just appended to the snapshot every commanded agent's solve sees.
//
// Grounded on the teacher's rhrsaStar.AStar/Expand loop structure
// (afb2001-CCOM_planner/rhrsaStar/rhrsaStar.go), generalized from a
// single-threaded heap loop to a sync.WaitGroup-backed fan-out — the
// teacher never does concurrency itself, so the concurrency primitive is
// grounded on plain stdlib idiom rather than a pack example, which is
// the correct minimal choice per spec.md §5 ("no shared mutable caches
// across agents within a tick").
package generator

import (
	"sync"

	"github.com/Shreyas0812/online-dmpc/common"
	"github.com/Shreyas0812/online-dmpc/mpc"
)

// Generator owns the per-agent solvers and the current published
// horizons (spec.md §3's ownership rule).
type Generator struct {
	solvers    []*mpc.AgentSolver
	goals      []common.Goal // length Ncmd, indexed by goal id
	assignment common.Assignment // length Ncmd, assignment[i] = goal id agent i pursues

	horizons    []common.Horizon
	obstacles   []common.Horizon // static, never republished
	inputs      [][][3]float64
	goalPoints  [][3]float64
	statuses    []mpc.Status
	currentTime float64
}

// New builds a Generator from one AgentSolver per commanded agent, the
// goal pool they are initially assigned to identity (spec.md §3: "the
// Reallocator never leaves it partial"), and the fixed positions of
// the N-Ncmd uncommanded obstacle bodies spec.md §6's `po` array
// carries after the first Ncmd commanded entries. Obstacles never move
// (spec.md's Non-goals exclude dynamic obstacle avoidance), so their
// horizon is built once here and appended to every snapshot Tick hands
// the per-agent solvers.
func New(solvers []*mpc.AgentSolver, goals []common.Goal, obstaclePositions [][3]float64) *Generator {
	n := len(solvers)
	g := &Generator{
		solvers:    solvers,
		goals:      goals,
		assignment: common.Identity(n),
		horizons:   make([]common.Horizon, n),
		obstacles:  make([]common.Horizon, len(obstaclePositions)),
		inputs:     make([][][3]float64, n),
		goalPoints: make([][3]float64, n),
		statuses:   make([]mpc.Status, n),
	}
	for i, s := range solvers {
		g.horizons[i] = s.Horizon()
	}
	kHor := 0
	if n > 0 {
		kHor = solvers[0].Horizon().Steps()
	}
	for i, p := range obstaclePositions {
		g.obstacles[i] = common.NewStaticHorizon(p, kHor)
	}
	return g
}

// SetGoalPoint reassigns agent i to pursue goal index goalID, taking
// effect on the next replan tick (spec.md §4.6). The Reallocator is the
// only caller. Using the goal's index rather than a frozen position
// means a moving goal keeps being re-evaluated at its new assignee's
// tick, instead of freezing at the position it held when reallocation
// fired.
func (g *Generator) SetGoalPoint(agentID, goalID int) {
	g.assignment[agentID] = goalID
}

// Assignment returns the current committed assignment.
func (g *Generator) Assignment() common.Assignment {
	return g.assignment.Clone()
}

// GoalsAt evaluates every agent's currently-assigned goal position at
// time t without running a replan tick. Used by the simulator to seed
// its t=0 recording/audit before the first Tick call publishes
// anything through NextGoals.
func (g *Generator) GoalsAt(t float64) [][3]float64 {
	out := make([][3]float64, len(g.solvers))
	for i := range out {
		out[i] = g.goals[g.assignment[i]].At(t)
	}
	return out
}

// Tick runs one replan: refresh goal positions at currentTime, solve
// every agent's QP in parallel against the frozen previous-tick horizon
// snapshot, and publish the results as a single atomic swap once every
// goroutine has finished (spec.md §5).
func (g *Generator) Tick(states []common.State3D, currentTime float64) {
	g.currentTime = currentTime
	n := len(g.solvers)

	snapshot := make([]common.Horizon, n+len(g.obstacles))
	copy(snapshot, g.horizons)
	copy(snapshot[n:], g.obstacles)

	newGoalPoints := make([][3]float64, n)
	for i := 0; i < n; i++ {
		newGoalPoints[i] = g.goals[g.assignment[i]].At(currentTime)
	}

	newHorizons := make([]common.Horizon, n)
	newInputs := make([][][3]float64, n)
	newStatuses := make([]mpc.Status, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			inputs, status := g.solvers[i].Tick(states[i], newGoalPoints[i], snapshot)
			newInputs[i] = inputs
			newStatuses[i] = status
			newHorizons[i] = g.solvers[i].Horizon()
		}()
	}
	wg.Wait()

	g.horizons = newHorizons
	g.inputs = newInputs
	g.statuses = newStatuses
	g.goalPoints = newGoalPoints
}

// PredictedHorizons exposes the just-published per-agent horizons.
func (g *Generator) PredictedHorizons() []common.Horizon {
	return g.horizons
}

// NextInputs exposes the just-published per-agent commanded
// acceleration sequences, one [3]float64 per lookahead step.
func (g *Generator) NextInputs() [][][3]float64 {
	return g.inputs
}

// NextGoals exposes the goal position each agent is tracking this tick.
func (g *Generator) NextGoals() [][3]float64 {
	return g.goalPoints
}

// Statuses exposes each agent's solve status for this tick (spec.md §7
// kind 3: infeasible/NaN solves fall back but are reported, never
// silently swallowed).
func (g *Generator) Statuses() []mpc.Status {
	return g.statuses
}
