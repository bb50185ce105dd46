package avoidance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/Shreyas0812/online-dmpc/common"
	"github.com/Shreyas0812/online-dmpc/geometry"
)

func identityPhiPos(k int) *mat.Dense {
	n := 3 * k
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func horizonAt(p [3]float64, steps int) common.Horizon {
	h := common.NewHorizon(steps)
	for k := 0; k < steps; k++ {
		h.Positions.Set(0, k, p[0])
		h.Positions.Set(1, k, p[1])
		h.Positions.Set(2, k, p[2])
	}
	return h
}

func twoAgentEllipses(rmin float64) []geometry.Ellipse {
	e := geometry.NewEllipse(2, rmin, [3]float64{1, 1, 1})
	return []geometry.Ellipse{e, e}
}

func TestOnDemand_EmptyWhenFar(t *testing.T) {
	horizons := []common.Horizon{
		horizonAt([3]float64{0, 0, 0}, 3),
		horizonAt([3]float64{10, 0, 0}, 3),
	}
	c := NewOnDemand().BuildConstraint(0, horizons, twoAgentEllipses(0.5), identityPhiPos(3))
	assert.True(t, c.Empty(), "expected no rows when agents are far apart")
}

func TestOnDemand_ViolatesWhenClose(t *testing.T) {
	horizons := []common.Horizon{
		horizonAt([3]float64{0, 0, 0}, 3),
		horizonAt([3]float64{0.1, 0, 0}, 3),
	}
	c := NewOnDemand().BuildConstraint(0, horizons, twoAgentEllipses(0.5), identityPhiPos(3))
	require.False(t, c.Empty())
	assert.Equal(t, 3, c.Rows(), "expected one row per horizon step")
}

func TestBVC_WiderThanOnDemand(t *testing.T) {
	// agents 1m apart: on-demand (rmin=0.5) sees no violation, BVC (3*rmin=1.5) does.
	horizons := []common.Horizon{
		horizonAt([3]float64{0, 0, 0}, 2),
		horizonAt([3]float64{1.0, 0, 0}, 2),
	}
	ellipses := twoAgentEllipses(0.5)
	onDemand := NewOnDemand().BuildConstraint(0, horizons, ellipses, identityPhiPos(2))
	bvc := NewBVC().BuildConstraint(0, horizons, ellipses, identityPhiPos(2))
	assert.True(t, onDemand.Empty(), "on-demand should not trigger at 1m with rmin=0.5")
	assert.False(t, bvc.Empty(), "BVC should trigger at 1m with 3*rmin=1.5")
}

func TestAvoidance_SingleAgentNeverConstrained(t *testing.T) {
	horizons := []common.Horizon{horizonAt([3]float64{0, 0, 0}, 4)}
	ellipses := []geometry.Ellipse{geometry.NewEllipse(2, 0.5, [3]float64{1, 1, 1})}
	c := NewOnDemand().BuildConstraint(0, horizons, ellipses, identityPhiPos(4))
	assert.True(t, c.Empty(), "N=1 must never emit collision constraints")
}
