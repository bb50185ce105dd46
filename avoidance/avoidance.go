// Package avoidance builds the linearized collision half-planes consumed
// by the QP assembler (package mpc). It implements spec.md §4.4a/§4.4b:
// two interchangeable constraint builders sharing one linearization, one
// reactive (On-Demand) and one proactive (Buffered Voronoi Cells).
//
// Grounded on
// _examples/original_source/cpp/src/bvc_avoidance.cpp's
// buildBVCConstraintForAgent, generalized to share its body between both
// variants (they differ only in the gating threshold, per spec.md §4.4b's
// "switching policy" note: "Output format is identical so C3 is agnostic").
package avoidance

import (
	"gonum.org/v1/gonum/mat"

	"github.com/Shreyas0812/online-dmpc/common"
	"github.com/Shreyas0812/online-dmpc/geometry"
)

// BVCDilation is the proactive safety dilation factor (spec.md §4.4b: "α = 3").
const BVCDilation = 3.0

// Constraint is one agent's collision block: Ain*x <= Bin, one row per
// violating (or, for BVC, nearby) neighbor-timestep pair. SlackCoeff[r] is
// d_ij^(q-1) for row r — the QP assembler (package mpc) augments each row
// with a slack column of -SlackCoeff[r] (spec.md §4.3), rather than the
// avoider doing it itself, so the avoider stays agnostic of the QP's slack
// bookkeeping.
type Constraint struct {
	Ain        *mat.Dense
	Bin        []float64
	SlackCoeff []float64
}

// Empty reports whether this constraint contributes no rows (spec.md §8:
// "On-Demand with all pairs initially non-colliding: collision block is
// empty at tick 0").
func (c Constraint) Empty() bool {
	return len(c.Bin) == 0
}

// Rows returns the number of constraint rows.
func (c Constraint) Rows() int {
	return len(c.Bin)
}

// Avoider builds the collision constraint block for one agent given the
// frozen snapshot of every agent's predicted horizon from the previous
// replan tick. horizons[agentID] is the agent's own horizon; horizons
// includes both commanded agents and static uncommanded obstacles.
// phiPos maps the control-point vector to the 3*K stacked position
// vector (package bezier); its column count is the number of QP
// decision variables each returned row spans.
type Avoider interface {
	BuildConstraint(agentID int, horizons []common.Horizon, ellipses []geometry.Ellipse, phiPos *mat.Dense) Constraint
}

// buildHalfPlanes is the shared linearization shared by OnDemand and BVC:
// scan k outer, j inner (spec.md §9's cache-friendly iteration order),
// collecting one row per (agentID, j, k) triple whose ellipsoidal distance
// is below threshold.
func buildHalfPlanes(agentID int, horizons []common.Horizon, ellipses []geometry.Ellipse, phiPos *mat.Dense, threshold float64) Constraint {
	numVars := 0
	if phiPos != nil {
		_, numVars = phiPos.Dims()
	}
	k_hor := horizons[agentID].Steps()
	n := len(horizons)
	e := ellipses[agentID]

	var rows [][]float64 // each row: dense 3*k_hor gradient row (pre-Phi_pos multiply)
	var bins []float64
	var slacks []float64

	for k := 0; k < k_hor; k++ {
		piK := horizons[agentID].At(k)
		for j := 0; j < n; j++ {
			if j == agentID {
				continue
			}
			pjK := horizons[j].At(k)
			d := e.Distance(piK, pjK)
			if d >= threshold {
				continue
			}
			grad, dist, distPow := e.Linearize(piK, pjK)

			// diffRow is a 1 x (3*k_hor) vector with grad placed at the
			// block for timestep k; everywhere else is zero.
			diffRow := make([]float64, 3*k_hor)
			diffRow[3*k+0] = grad[0]
			diffRow[3*k+1] = grad[1]
			diffRow[3*k+2] = grad[2]
			rows = append(rows, diffRow)

			// b = -dist^(q-1)*(rmin - d) - grad . pi_k
			dot := grad[0]*piK[0] + grad[1]*piK[1] + grad[2]*piK[2]
			b := -distPow*(e.RMin-dist) - dot
			bins = append(bins, b)
			slacks = append(slacks, distPow)
		}
	}

	if len(rows) == 0 {
		return Constraint{}
	}

	// Ain = -diffRow * Phi_pos, one row per collected pair.
	diffMat := mat.NewDense(len(rows), 3*k_hor, nil)
	for r, row := range rows {
		diffMat.SetRow(r, row)
	}
	ain := mat.NewDense(len(rows), numVars, nil)
	ain.Mul(diffMat, phiPos)
	ain.Scale(-1, ain)

	return Constraint{Ain: ain, Bin: bins, SlackCoeff: slacks}
}
