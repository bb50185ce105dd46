package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_IsotropicMatchesEuclidean(t *testing.T) {
	e := NewEllipse(2, 0.5, [3]float64{1, 1, 1})
	d := e.Distance([3]float64{0, 0, 0}, [3]float64{3, 4, 0})
	assert.InDelta(t, 5.0, d, 1e-9)
}

func TestDistance_AnisotropicStretchesVerticalAxis(t *testing.T) {
	e := NewEllipse(2, 0.5, [3]float64{1, 1, 2})
	horizontal := e.Distance([3]float64{0, 0, 0}, [3]float64{1, 0, 0})
	vertical := e.Distance([3]float64{0, 0, 0}, [3]float64{0, 0, 1})
	// c_z = 2 shrinks the apparent vertical separation, so the same
	// physical offset along z reads as a smaller ellipsoidal distance.
	assert.Less(t, vertical, horizontal)
}

func TestDistance_ZeroAtCoincidence(t *testing.T) {
	e := NewEllipse(2, 0.5, [3]float64{1, 1, 1.5})
	d := e.Distance([3]float64{1, 2, 3}, [3]float64{1, 2, 3})
	assert.InDelta(t, 0.0, d, 1e-12)
}

func TestLinearize_GradientMatchesFiniteDifference(t *testing.T) {
	e := NewEllipse(2, 0.5, [3]float64{1, 1, 1.3})
	pi := [3]float64{2, 1, 0.5}
	pj := [3]float64{0, 0, 0}

	grad, d, distPow := e.Linearize(pi, pj)
	assert.InDelta(t, e.Distance(pi, pj), d, 1e-12)
	assert.InDelta(t, math.Pow(d, float64(e.Order-1)), distPow, 1e-9)

	const h = 1e-6
	for axis := 0; axis < 3; axis++ {
		bumped := pi
		bumped[axis] += h
		dDist := (e.Distance(bumped, pj) - e.Distance(pi, pj)) / h
		// grad is d^(q-1) times the partial derivative of the q-norm
		// along this axis (the chain-rule factor the gradient form
		// bakes in); recover the partial and compare.
		partial := dDist
		expected := grad[axis] / distPow
		assert.InDelta(t, expected, partial, 1e-3)
	}
}

func TestViolates_TrueBelowThresholdFalseAbove(t *testing.T) {
	e := NewEllipse(2, 0.5, [3]float64{1, 1, 1})
	assert.True(t, e.Violates([3]float64{0, 0, 0}, [3]float64{0.3, 0, 0}, 0.5))
	assert.False(t, e.Violates([3]float64{0, 0, 0}, [3]float64{0.9, 0, 0}, 0.5))
}
