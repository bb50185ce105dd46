package avoidance

import (
	"gonum.org/v1/gonum/mat"

	"github.com/Shreyas0812/online-dmpc/common"
	"github.com/Shreyas0812/online-dmpc/geometry"
)

// BVC is the proactive avoider (C4b): it emits a half-plane for every
// pair within the dilated safety radius BVCDilation*RMin, approximating a
// Voronoi partition of space between neighbors.
type BVC struct{}

// NewBVC constructs the proactive avoider.
func NewBVC() BVC {
	return BVC{}
}

// BuildConstraint implements Avoider.
func (BVC) BuildConstraint(agentID int, horizons []common.Horizon, ellipses []geometry.Ellipse, phiPos *mat.Dense) Constraint {
	threshold := BVCDilation * ellipses[agentID].RMin
	return buildHalfPlanes(agentID, horizons, ellipses, phiPos, threshold)
}
