package qpsolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSolve_UnconstrainedMinimum(t *testing.T) {
	// minimize (x-3)^2 + (y-4)^2 == 1/2 x^T H x + f^T x with H=2I, f=(-6,-8)
	h := mat.NewDense(2, 2, []float64{2, 0, 0, 2})
	p := Problem{H: h, F: []float64{-6, -8}}
	res := Solve(p)
	require.Equal(t, Optimal, res.Status)
	assert.InDelta(t, 3.0, res.X[0], 1e-6)
	assert.InDelta(t, 4.0, res.X[1], 1e-6)
}

func TestSolve_EqualityConstraint(t *testing.T) {
	// minimize x^2+y^2 subject to x+y=2 -> x=y=1
	h := mat.NewDense(2, 2, []float64{2, 0, 0, 2})
	aeq := mat.NewDense(1, 2, []float64{1, 1})
	p := Problem{H: h, F: []float64{0, 0}, Aeq: aeq, Beq: []float64{2}}
	res := Solve(p)
	require.Equal(t, Optimal, res.Status)
	assert.InDelta(t, 1.0, res.X[0], 1e-6)
	assert.InDelta(t, 1.0, res.X[1], 1e-6)
}

func TestSolve_ActiveInequality(t *testing.T) {
	// minimize (x-3)^2 subject to x<=2 -> x=2 (binding).
	h := mat.NewDense(1, 1, []float64{2})
	ain := mat.NewDense(1, 1, []float64{1})
	p := Problem{H: h, F: []float64{-6}, Ain: ain, Bin: []float64{2}}
	res := Solve(p)
	require.Equal(t, Optimal, res.Status)
	assert.InDelta(t, 2.0, res.X[0], 1e-5)
}

func TestSolve_InactiveInequalityDoesNotPerturbOptimum(t *testing.T) {
	h := mat.NewDense(1, 1, []float64{2})
	ain := mat.NewDense(1, 1, []float64{1})
	p := Problem{H: h, F: []float64{-6}, Ain: ain, Bin: []float64{10}}
	res := Solve(p)
	require.Equal(t, Optimal, res.Status)
	assert.InDelta(t, 3.0, res.X[0], 1e-5)
}
