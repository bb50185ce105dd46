package avoidance

import (
	"gonum.org/v1/gonum/mat"

	"github.com/Shreyas0812/online-dmpc/common"
	"github.com/Shreyas0812/online-dmpc/geometry"
)

// OnDemand is the reactive avoider (C4a): it only emits a half-plane for
// pairs that are *currently* violating r_min along the previous horizon.
type OnDemand struct{}

// NewOnDemand constructs the reactive avoider.
func NewOnDemand() OnDemand {
	return OnDemand{}
}

// BuildConstraint implements Avoider.
func (OnDemand) BuildConstraint(agentID int, horizons []common.Horizon, ellipses []geometry.Ellipse, phiPos *mat.Dense) Constraint {
	threshold := ellipses[agentID].RMin
	return buildHalfPlanes(agentID, horizons, ellipses, phiPos, threshold)
}
