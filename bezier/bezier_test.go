package bezier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBernstein_SumsToOne(t *testing.T) {
	for _, s := range []float64{0, 0.2, 0.5, 0.9, 1} {
		b := Bernstein(5, s)
		sum := 0.0
		for _, v := range b {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestDerivativeCoeffs_PositionAtEndpoints(t *testing.T) {
	// At s=0, position depends only on P_0; at s=1, only on P_d.
	c0 := DerivativeCoeffs(3, 0, 0, 1)
	require.Len(t, c0, 4)
	assert.InDelta(t, 1.0, c0[0], 1e-9)
	for i := 1; i < 4; i++ {
		assert.InDelta(t, 0.0, c0[i], 1e-9)
	}

	c1 := DerivativeCoeffs(3, 0, 1, 1)
	assert.InDelta(t, 1.0, c1[3], 1e-9)
}

func TestDerivativeCoeffs_VelocityAtStart(t *testing.T) {
	// dP/dt at s=0 for a degree-d curve over span tseg is d/tseg*(P_1-P_0).
	c := DerivativeCoeffs(3, 1, 0, 2.0)
	want := []float64{-1.5, 1.5, 0, 0}
	for i := range want {
		assert.InDelta(t, want[i], c[i], 1e-9)
	}
}

func TestBasis_PhiPosShapeCoversBothSegments(t *testing.T) {
	p := Params{Degree: 3, NumSegments: 2, Dim: 3, DegPoly: 2, TSegment: 1.0}
	b := New(p, 0.5, 5) // steps at t=0,0.5,1.0,1.5,2.0 -> covers both segments

	assert.Equal(t, 3*5, rowsOf(b.PhiPos))
	assert.Equal(t, b.NumVars(), colsOf(b.PhiPos))
}

func TestBasis_ContinuityRowsShape(t *testing.T) {
	p := Params{Degree: 4, NumSegments: 3, Dim: 3, DegPoly: 2, TSegment: 0.5}
	b := New(p, 0.1, 10)
	aeq, beq := b.ContinuityRows()
	wantRows := (p.NumSegments - 1) * (p.DegPoly + 1) * p.Dim
	r, c := aeq.Dims()
	assert.Equal(t, wantRows, r)
	assert.Equal(t, b.NumVars(), c)
	assert.Len(t, beq, wantRows)
	for _, v := range beq {
		assert.Equal(t, 0.0, v)
	}
}

func rowsOf(m interface{ Dims() (int, int) }) int { r, _ := m.Dims(); return r }
func colsOf(m interface{ Dims() (int, int) }) int { _, c := m.Dims(); return c }
