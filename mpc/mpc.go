// Package mpc implements the per-replan QP assembly (C3) and the
// per-agent receding-horizon solve (C5). BuildQP is a stateless function
// that turns one agent's inputs into a qpsolver.Problem; AgentSolver is
// the stateful wrapper that owns the previous horizon as its
// linearization point and runs the assemble/solve/fallback/publish cycle
// every replan tick.
//
// Grounded on the teacher's search/vertex.go + search/edge.go split: an
// Edge computes its own cost lazily while a Vertex holds the
// accumulated state across the search. BuildQP plays the Edge role
// (stateless, computed fresh every call) and AgentSolver plays the
// Vertex role (caches the previous horizon as the only thing carried
// forward between ticks) — the same "accessor methods cache, builder
// functions don't mutate" split as Vertex.ApproxCost.
package mpc

import (
	"gonum.org/v1/gonum/mat"

	"github.com/Shreyas0812/online-dmpc/avoidance"
	"github.com/Shreyas0812/online-dmpc/bezier"
	"github.com/Shreyas0812/online-dmpc/common"
	"github.com/Shreyas0812/online-dmpc/geometry"
	"github.com/Shreyas0812/online-dmpc/qpsolver"
)

// Mode tags which cost-weight regime an agent is in this tick, selected
// by a scalar threshold on the minimum ellipsoidal distance to neighbors
// along the previous horizon (spec.md §4.3). There is no explicit
// threshold value in spec.md §6, so the thresholds are tied to the
// agent's own collision geometry: a distance under RMin is "repulsion",
// under BVCDilation*RMin is "obstacle-present", otherwise "free-flight"
// — the same dilation factor the BVC avoider already uses to define its
// proactive radius (package avoidance), so the mode boundary and the
// BVC safety radius agree rather than introducing an unrelated knob.
type Mode int

const (
	Free Mode = iota
	Obstacle
	Repel
)

// Weights holds the MPC tuning knobs of spec.md §6.
type Weights struct {
	SFree, SObs, SRepel    float64
	SpdF, SpdO, SpdR       float64
	LinColl, QuadColl      float64
	AccCost                float64
}

// Limits holds the box constraint bounds of spec.md §6.
type Limits struct {
	PMin, PMax [3]float64
	AMin, AMax [3]float64
}

func (w Weights) trackWeight(m Mode) float64 {
	switch m {
	case Obstacle:
		return w.SObs
	case Repel:
		return w.SRepel
	default:
		return w.SFree
	}
}

func (w Weights) smoothWeight(m Mode) float64 {
	switch m {
	case Obstacle:
		return w.SpdO
	case Repel:
		return w.SpdR
	default:
		return w.SpdF
	}
}

// ClassifyMode computes the scalar-threshold mode for agentID given the
// frozen previous-horizon snapshot of every agent and the collision
// ellipses (spec.md §4.3).
func ClassifyMode(agentID int, horizons []common.Horizon, ellipses []geometry.Ellipse) Mode {
	e := ellipses[agentID]
	minDist := -1.0
	k := horizons[agentID].Steps()
	for kk := 0; kk < k; kk++ {
		pi := horizons[agentID].At(kk)
		for j := range horizons {
			if j == agentID {
				continue
			}
			d := e.Distance(pi, horizons[j].At(kk))
			if minDist < 0 || d < minDist {
				minDist = d
			}
		}
	}
	switch {
	case minDist < 0:
		return Free
	case minDist < e.RMin:
		return Repel
	case minDist < avoidance.BVCDilation*e.RMin:
		return Obstacle
	default:
		return Free
	}
}

// BuildQP assembles the standard-form QP for one agent's replan tick
// per spec.md §4.3: tracking + smoothness + acceleration-energy cost,
// initial-condition and inter-segment continuity equalities, box
// inequalities on position/acceleration, and the slack-softened
// collision block handed in by the active avoider.
func BuildQP(basis *bezier.Basis, state common.State3D, goalRef [3]float64, mode Mode, w Weights, lim Limits, collision avoidance.Constraint) qpsolver.Problem {
	numVars := basis.NumVars()
	numSlack := collision.Rows()
	n := numVars + numSlack
	k := basis.KHor
	dim := basis.Params.Dim

	trackW := w.trackWeight(mode)
	smoothW := w.smoothWeight(mode) + w.AccCost

	h := mat.NewDense(n, n, nil)
	addScaled(h, basis.PhiPosGram, 2*trackW, numVars)
	addScaled(h, basis.QE, 2*smoothW, numVars)
	for i := 0; i < numSlack; i++ {
		h.Set(numVars+i, numVars+i, h.At(numVars+i, numVars+i)+2*w.QuadColl)
	}

	f := make([]float64, n)
	pRef := make([]float64, dim*k)
	for kk := 0; kk < k; kk++ {
		for axis := 0; axis < dim; axis++ {
			pRef[dim*kk+axis] = goalRef[axis]
		}
	}
	// f_track = -2*trackW * Phi_pos^T * pRef
	for i := 0; i < numVars; i++ {
		var sum float64
		for r := 0; r < dim*k; r++ {
			sum += basis.PhiPos.At(r, i) * pRef[r]
		}
		f[i] = -2 * trackW * sum
	}
	for i := 0; i < numSlack; i++ {
		f[numVars+i] = w.LinColl
	}

	aeq, beq := buildEquality(basis, state, numSlack)
	ain, bin := buildInequality(basis, lim, numSlack, collision)

	return qpsolver.Problem{H: h, F: f, Aeq: aeq, Beq: beq, Ain: ain, Bin: bin}
}

// addScaled adds scale*src into the top-left numVars x numVars block of
// dst (dst is sized n x n with n possibly larger than numVars, to make
// room for slack columns src doesn't have).
func addScaled(dst, src *mat.Dense, scale float64, numVars int) {
	if src == nil {
		return
	}
	for i := 0; i < numVars; i++ {
		for j := 0; j < numVars; j++ {
			dst.Set(i, j, dst.At(i, j)+scale*src.At(i, j))
		}
	}
}

func buildEquality(basis *bezier.Basis, state common.State3D, numSlack int) (*mat.Dense, []float64) {
	dim := basis.Params.Dim
	contAeq, contBeq := basis.ContinuityRows()
	contRows, _ := contAeq.Dims()

	numVars := basis.NumVars()
	n := numVars + numSlack
	numRows := contRows + 2*dim // + initial position & velocity rows

	aeq := mat.NewDense(numRows, n, nil)
	beq := make([]float64, numRows)

	pos0 := basis.BoundaryCoeffs(0, false, 0)
	vel0 := basis.BoundaryCoeffs(0, false, 1)
	p := state.PosArray()
	v := state.VelArray()
	for axis := 0; axis < dim; axis++ {
		for i := 0; i <= basis.Params.Degree; i++ {
			aeq.Set(axis, i*dim+axis, pos0[i])
			aeq.Set(dim+axis, i*dim+axis, vel0[i])
		}
		beq[axis] = p[axis]
		beq[dim+axis] = v[axis]
	}

	for r := 0; r < contRows; r++ {
		for c := 0; c < numVars; c++ {
			aeq.Set(2*dim+r, c, contAeq.At(r, c))
		}
		beq[2*dim+r] = contBeq[r]
	}

	return aeq, beq
}

func buildInequality(basis *bezier.Basis, lim Limits, numSlack int, collision avoidance.Constraint) (*mat.Dense, []float64) {
	numVars := basis.NumVars()
	n := numVars + numSlack
	k := basis.KHor
	dim := basis.Params.Dim

	var rows [][]float64
	var bin []float64

	appendBoxRows := func(phi *mat.Dense, lo, hi [3]float64) {
		for kk := 0; kk < k; kk++ {
			for axis := 0; axis < dim; axis++ {
				r := dim*kk + axis
				upper := make([]float64, n)
				lower := make([]float64, n)
				for c := 0; c < numVars; c++ {
					upper[c] = phi.At(r, c)
					lower[c] = -phi.At(r, c)
				}
				rows = append(rows, upper)
				bin = append(bin, hi[axis])
				rows = append(rows, lower)
				bin = append(bin, -lo[axis])
			}
		}
	}
	appendBoxRows(basis.PhiPos, lim.PMin, lim.PMax)
	appendBoxRows(basis.PhiAcc, lim.AMin, lim.AMax)

	for i := 0; i < collision.Rows(); i++ {
		row := make([]float64, n)
		for c := 0; c < numVars; c++ {
			row[c] = collision.Ain.At(i, c)
		}
		row[numVars+i] = -collision.SlackCoeff[i]
		rows = append(rows, row)
		bin = append(bin, collision.Bin[i])
	}

	for i := 0; i < numSlack; i++ {
		row := make([]float64, n)
		row[numVars+i] = -1
		rows = append(rows, row)
		bin = append(bin, 0)
	}

	ain := mat.NewDense(len(rows), n, nil)
	for r, row := range rows {
		ain.SetRow(r, row)
	}
	return ain, bin
}
