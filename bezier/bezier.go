// Package bezier implements the Bézier basis (C2): the fixed linear maps
// from a flattened control-point vector to sampled positions, velocities,
// and accelerations over the prediction horizon, plus the inter-segment
// continuity coefficients used to build the QP's equality block.
//
// No direct teacher analog exists (afb2001-CCOM_planner's path
// representation is a sampled Dubins path, not a polynomial basis); this
// package follows spec.md §4.2's mathematical contract directly, using
// the same "precompute once, reuse every tick" discipline the teacher
// applies to dubins.Path (computed once, sampled many times).
package bezier

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/combin"
)

// Params mirrors the Bézier keys of spec.md §6: degree d, number of
// segments, workspace dimensionality (always 3 in this module), the
// continuity degree enforced across segment joints, and the duration of
// a single segment.
type Params struct {
	Degree      int
	NumSegments int
	Dim         int
	DegPoly     int
	TSegment    float64
}

// Basis holds the static matrices built from Params plus a sampling
// schedule (K steps at period H).
type Basis struct {
	Params Params
	H      float64
	KHor   int

	// PhiPos, PhiVel, PhiAcc map the flattened control-point vector
	// (length Dim*(Degree+1)*NumSegments) to the stacked position/
	// velocity/acceleration vector (length Dim*KHor), row index
	// 3*k+axis for horizon step k.
	PhiPos, PhiVel, PhiAcc *mat.Dense

	// QE is Phi_acc^T Phi_acc, the energy weighting matrix penalizing
	// the acceleration-derivative norm (spec.md §4.2); reused by mpc's
	// cost assembly for both the mode-scaled smoothness term and the
	// acc_cost term (spec.md §4.3 names both, they act on the same
	// quadratic form with different scalar weights).
	QE *mat.Dense

	// PhiPosGram is Phi_pos^T Phi_pos, precomputed once since the
	// tracking cost's quadratic term is the same every tick (only its
	// scalar weight changes with mode).
	PhiPosGram *mat.Dense

	// segOfStep[k] and sOfStep[k] cache, for horizon step k, which
	// segment it falls in and its normalized local time in [0,1].
	segOfStep []int
	sOfStep   []float64
}

// NumVars returns the length of the flattened control-point vector.
func (b *Basis) NumVars() int {
	return b.Params.Dim * (b.Params.Degree + 1) * b.Params.NumSegments
}

// New precomputes a Basis for the given Bézier parameters, sampled every
// H seconds for KHor steps (the MPC prediction horizon).
func New(p Params, h float64, kHor int) *Basis {
	b := &Basis{Params: p, H: h, KHor: kHor}
	b.scheduleSteps()
	b.buildPhi()
	b.QE = mat.NewDense(b.NumVars(), b.NumVars(), nil)
	b.QE.Mul(b.PhiAcc.T(), b.PhiAcc)
	b.PhiPosGram = mat.NewDense(b.NumVars(), b.NumVars(), nil)
	b.PhiPosGram.Mul(b.PhiPos.T(), b.PhiPos)
	return b
}

func (b *Basis) scheduleSteps() {
	b.segOfStep = make([]int, b.KHor)
	b.sOfStep = make([]float64, b.KHor)
	last := b.Params.NumSegments - 1
	for k := 0; k < b.KHor; k++ {
		t := float64(k) * b.H
		seg := int(t / b.Params.TSegment)
		if seg > last {
			seg = last
		}
		s := (t - float64(seg)*b.Params.TSegment) / b.Params.TSegment
		if s > 1 {
			s = 1
		}
		if s < 0 {
			s = 0
		}
		b.segOfStep[k] = seg
		b.sOfStep[k] = s
	}
}

func (b *Basis) buildPhi() {
	d := b.Params.Degree
	dim := b.Params.Dim
	rows := dim * b.KHor
	cols := b.NumVars()

	b.PhiPos = mat.NewDense(rows, cols, nil)
	b.PhiVel = mat.NewDense(rows, cols, nil)
	b.PhiAcc = mat.NewDense(rows, cols, nil)

	for k := 0; k < b.KHor; k++ {
		seg := b.segOfStep[k]
		s := b.sOfStep[k]

		cPos := DerivativeCoeffs(d, 0, s, b.Params.TSegment)
		cVel := DerivativeCoeffs(d, 1, s, b.Params.TSegment)
		cAcc := DerivativeCoeffs(d, 2, s, b.Params.TSegment)

		for i := 0; i <= d; i++ {
			for axis := 0; axis < dim; axis++ {
				col := seg*(d+1)*dim + i*dim + axis
				row := dim*k + axis
				b.PhiPos.Set(row, col, cPos[i])
				b.PhiVel.Set(row, col, cVel[i])
				b.PhiAcc.Set(row, col, cAcc[i])
			}
		}
	}
}

// BoundaryCoeffs returns the length-(Degree+1) coefficient vector for the
// r-th time derivative of segment seg evaluated at its start (atEnd=false,
// s=0) or end (atEnd=true, s=1). Used by package mpc to assemble both the
// initial-condition rows (seg=0, s=0) and the inter-segment continuity
// rows (consecutive segments' s=1 / s=0 boundary).
func (b *Basis) BoundaryCoeffs(seg int, atEnd bool, r int) []float64 {
	s := 0.0
	if atEnd {
		s = 1.0
	}
	return DerivativeCoeffs(b.Params.Degree, r, s, b.Params.TSegment)
}

// ColumnOffset returns the starting flattened-vector column for segment
// seg's control points.
func (b *Basis) ColumnOffset(seg int) int {
	return seg * (b.Params.Degree + 1) * b.Params.Dim
}

// ContinuityRows builds the static equality block enforcing derivatives
// 0..DegPoly continuous across every pair of adjacent segments, for every
// axis. Returns (Aeq, beq) with beq all zero (continuity is homogeneous).
func (b *Basis) ContinuityRows() (*mat.Dense, []float64) {
	d := b.Params.Degree
	dim := b.Params.Dim
	numRows := (b.Params.NumSegments - 1) * (b.Params.DegPoly + 1) * dim
	aeq := mat.NewDense(numRows, b.NumVars(), nil)
	beq := make([]float64, numRows)

	row := 0
	for seg := 0; seg < b.Params.NumSegments-1; seg++ {
		for r := 0; r <= b.Params.DegPoly; r++ {
			left := b.BoundaryCoeffs(seg, true, r)
			right := b.BoundaryCoeffs(seg+1, false, r)
			for axis := 0; axis < dim; axis++ {
				for i := 0; i <= d; i++ {
					aeq.Set(row, b.ColumnOffset(seg)+i*dim+axis, left[i])
					aeq.Set(row, b.ColumnOffset(seg+1)+i*dim+axis, -right[i])
				}
				row++
			}
		}
	}
	return aeq, beq
}

// Bernstein returns the length-(d+1) vector of Bernstein basis values
// B_i^d(s) = C(d,i) s^i (1-s)^(d-i).
func Bernstein(d int, s float64) []float64 {
	out := make([]float64, d+1)
	for i := 0; i <= d; i++ {
		out[i] = float64(combin.Binomial(d, i)) * math.Pow(s, float64(i)) * math.Pow(1-s, float64(d-i))
	}
	return out
}

// DerivativeCoeffs returns, for a degree-d Bézier curve over local time
// s in [0,1] spanning real duration tseg, the length-(d+1) vector c such
// that the r-th time derivative of the curve equals sum_i c[i]*P_i for
// the curve's original control points P_0..P_d.
//
// Uses the closed-form r-th derivative of a Bézier curve,
//
//	P^(r)(s) = (d!/(d-r)!)/tseg^r * sum_{i=0}^{d-r} B_i^{d-r}(s) * Δ^r P_i
//
// with Δ^r P_i = sum_{j=0}^{r} (-1)^(r-j) C(r,j) P_{i+j}, expanded into a
// coefficient per original control point.
func DerivativeCoeffs(d, r int, s, tseg float64) []float64 {
	c := make([]float64, d+1)
	if r > d {
		return c // r-th derivative of a degree-d curve is identically zero
	}
	if r == 0 {
		return Bernstein(d, s)
	}

	factor := 1.0
	for k := 0; k < r; k++ {
		factor *= float64(d - k)
	}
	factor /= math.Pow(tseg, float64(r))

	basis := Bernstein(d-r, s)
	for i := 0; i <= d-r; i++ {
		for j := 0; j <= r; j++ {
			sign := 1.0
			if (r-j)%2 != 0 {
				sign = -1.0
			}
			c[i+j] += factor * basis[i] * sign * float64(combin.Binomial(r, j))
		}
	}
	return c
}
