package dynamics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Shreyas0812/online-dmpc/common"
)

func TestAdvance_SteadyStateTracksCommand(t *testing.T) {
	d := New(0.005, Params{ZetaXY: 1, TauXY: 0.2, ZetaZ: 1, TauZ: 0.2})
	state := common.NewState3D([3]float64{0, 0, 0}, [3]float64{0, 0, 0})
	u := [3]float64{1, 0, 0}

	for i := 0; i < 2000; i++ {
		state = d.Advance(state, u)
	}

	assert.InDelta(t, 1.0, state.Pos.AtVec(0), 1e-2, "position should settle to commanded value (DC gain 1)")
	assert.InDelta(t, 0.0, state.Vel.AtVec(0), 1e-2, "velocity should settle to zero")
}

func TestAdvance_ZeroCommandHoldsAtOrigin(t *testing.T) {
	d := New(0.005, Params{ZetaXY: 1, TauXY: 0.2, ZetaZ: 1, TauZ: 0.2})
	state := common.NewState3D([3]float64{0, 0, 0}, [3]float64{0, 0, 0})
	next := d.Advance(state, [3]float64{0, 0, 0})
	assert.InDelta(t, 0.0, next.Pos.AtVec(0), 1e-9)
	assert.InDelta(t, 0.0, next.Vel.AtVec(0), 1e-9)
}

func TestAdvance_Deterministic(t *testing.T) {
	d := New(0.005, Params{ZetaXY: 1, TauXY: 0.2, ZetaZ: 1.2, TauZ: 0.3})
	state := common.NewState3D([3]float64{1, 2, 3}, [3]float64{0.1, -0.2, 0.3})
	u := [3]float64{0.5, -0.5, 0.1}

	a := d.Advance(state, u)
	b := d.Advance(state, u)
	assert.Equal(t, a.PosArray(), b.PosArray())
	assert.Equal(t, a.VelArray(), b.VelArray())
}
