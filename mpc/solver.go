package mpc

import (
	"gonum.org/v1/gonum/mat"

	"github.com/Shreyas0812/online-dmpc/avoidance"
	"github.com/Shreyas0812/online-dmpc/bezier"
	"github.com/Shreyas0812/online-dmpc/common"
	"github.com/Shreyas0812/online-dmpc/geometry"
	"github.com/Shreyas0812/online-dmpc/qpsolver"
)

// Status reports how AgentSolver.Tick concluded (spec.md §4.5, §7 kind 3).
type Status int

const (
	// Solved means the QP returned a usable optimum.
	Solved Status = iota
	// Fallback means the QP was infeasible or produced a NaN/Inf
	// solution; the previous horizon was retained and zero acceleration
	// is commanded this tick.
	Fallback
)

// AgentSolver owns one agent's previous predicted horizon — the only
// state carried across replan ticks (spec.md §4.5) — and runs the
// assemble/solve/fallback/publish cycle every tick.
type AgentSolver struct {
	AgentID  int
	Basis    *bezier.Basis
	Avoider  avoidance.Avoider
	Ellipses []geometry.Ellipse
	Weights  Weights
	Limits   Limits

	horizon common.Horizon
}

// NewAgentSolver builds a solver seeded with a horizon held at the
// agent's initial position (spec.md §3: "after the first tick" the
// horizon becomes meaningful; before that, holding at p0 means the
// first tick's avoider sees a stationary neighbor at the true start).
func NewAgentSolver(agentID int, basis *bezier.Basis, avoider avoidance.Avoider, ellipses []geometry.Ellipse, w Weights, lim Limits, p0 [3]float64) *AgentSolver {
	h := common.NewStaticHorizon(p0, basis.KHor)
	return &AgentSolver{
		AgentID:  agentID,
		Basis:    basis,
		Avoider:  avoider,
		Ellipses: ellipses,
		Weights:  w,
		Limits:   lim,
		horizon:  h,
	}
}

// Horizon returns the agent's last published predicted horizon.
func (s *AgentSolver) Horizon() common.Horizon {
	return s.horizon
}

// Tick runs one replan: build the collision block from the frozen
// snapshot, assemble and solve the QP, and publish either the new
// horizon/inputs or the fallback (spec.md §4.5).
func (s *AgentSolver) Tick(state common.State3D, goalRef [3]float64, horizonSnapshot []common.Horizon) ([][3]float64, Status) {
	mode := ClassifyMode(s.AgentID, horizonSnapshot, s.Ellipses)
	collision := s.Avoider.BuildConstraint(s.AgentID, horizonSnapshot, s.Ellipses, s.Basis.PhiPos)

	problem := BuildQP(s.Basis, state, goalRef, mode, s.Weights, s.Limits, collision)
	result := qpsolver.Solve(problem)

	if result.Status != qpsolver.Optimal {
		return zeroInputs(s.Basis.KHor), Fallback
	}

	numVars := s.Basis.NumVars()
	x := mat.NewVecDense(numVars, result.X[:numVars])

	posFlat := mat.NewVecDense(s.Basis.Params.Dim*s.Basis.KHor, nil)
	posFlat.MulVec(s.Basis.PhiPos, x)
	accFlat := mat.NewVecDense(s.Basis.Params.Dim*s.Basis.KHor, nil)
	accFlat.MulVec(s.Basis.PhiAcc, x)

	newHorizon := common.NewHorizon(s.Basis.KHor)
	inputs := make([][3]float64, s.Basis.KHor)
	for k := 0; k < s.Basis.KHor; k++ {
		for axis := 0; axis < s.Basis.Params.Dim; axis++ {
			idx := s.Basis.Params.Dim*k + axis
			newHorizon.Positions.Set(axis, k, posFlat.AtVec(idx))
			inputs[k][axis] = accFlat.AtVec(idx)
		}
	}

	s.horizon = newHorizon
	return inputs, Solved
}

func zeroInputs(k int) [][3]float64 {
	return make([][3]float64, k)
}
