package reallocation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shreyas0812/online-dmpc/common"
)

func newTestManager(t *testing.T, period float64, mode Mode) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reallocation_log.csv")
	m, err := New(period, mode, 1.0, 0.005, 2, path, false)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestManager_IdentityWhenDisabledPeriodNeverElapses(t *testing.T) {
	m := newTestManager(t, 1e9, Reactive)
	changed, assignment := m.Step(0, [][3]float64{{0, 0, 1}, {4, 0, 1}}, nil, [][3]float64{{4, 0, 1}, {0, 0, 1}})
	assert.False(t, changed)
	assert.Equal(t, common.Assignment{0, 1}, assignment)
}

func TestManager_AntipodalSwapReactive(t *testing.T) {
	m := newTestManager(t, 0.0, Reactive)
	agents := [][3]float64{{0, 0, 1}, {4, 0, 1}}
	goals := [][3]float64{{4, 0, 1}, {0, 0, 1}}

	changed, assignment := m.Step(0, agents, nil, goals)
	require.True(t, changed)
	assert.Equal(t, common.Assignment{1, 0}, assignment)
}

func TestManager_IdempotentAtSameTime(t *testing.T) {
	m := newTestManager(t, 0.0, Reactive)
	agents := [][3]float64{{0, 0, 1}, {4, 0, 1}}
	goals := [][3]float64{{4, 0, 1}, {0, 0, 1}}

	_, a1 := m.Step(0, agents, nil, goals)
	_, a2 := m.Step(0, agents, nil, goals)
	assert.True(t, a1.Equal(a2))
}

func TestManager_PredictiveUsesHorizonSample(t *testing.T) {
	m := newTestManager(t, 0.0, Predictive)
	h0 := common.NewHorizon(10)
	h1 := common.NewHorizon(10)
	for k := 0; k < 10; k++ {
		h0.Positions.SetCol(k, []float64{float64(k) * 0.1, 0, 1}) // drifting from x=0 toward x=0.9
		h1.Positions.SetCol(k, []float64{4 - float64(k)*0.1, 0, 1})
	}
	agents := [][3]float64{{0, 0, 1}, {4, 0, 1}}
	goals := [][3]float64{{4, 0, 1}, {0, 0, 1}}

	changed, assignment := m.Step(1.0, agents, []common.Horizon{h0, h1}, goals)
	require.True(t, changed)
	assert.Equal(t, common.Assignment{1, 0}, assignment)
}

func TestManager_UnchangedAssignmentDoesNotResetCooldown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	m, err := New(1.0, Reactive, 1.0, 0.005, 2, path, false)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	agents := [][3]float64{{0, 0, 1}, {4, 0, 1}}
	goals := [][3]float64{{0, 0, 1}, {4, 0, 1}} // already optimal: no swap will ever fire

	changed, _ := m.Step(1.0, agents, nil, goals)
	require.False(t, changed, "assignment is already optimal")

	// If the unchanged Step above had reset lastReallocationTime to 1.0,
	// the period-1.0 cooldown would still be armed at t=1.5 and this
	// second Step would be a no-op Idle check; it must instead re-run the
	// Hungarian solve because the cooldown never restarted.
	assert.True(t, m.ShouldReallocate(1.5))
}

func TestManager_FireAtStartSelectsFirstCheckTiming(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")

	delayed, err := New(2.0, Reactive, 1.0, 0.005, 2, path, false)
	require.NoError(t, err)
	t.Cleanup(func() { delayed.Close() })
	assert.False(t, delayed.ShouldReallocate(0), "default seeding holds the first check false until t=period, matching spec.md's worked examples")
	assert.True(t, delayed.ShouldReallocate(2.0))

	path2 := filepath.Join(t.TempDir(), "log2.csv")
	immediate, err := New(2.0, Reactive, 1.0, 0.005, 2, path2, true)
	require.NoError(t, err)
	t.Cleanup(func() { immediate.Close() })
	assert.True(t, immediate.ShouldReallocate(0), "fireAtStart seeds -period, letting the first check fire at t=0")
}

func TestManager_WritesCSVHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	m, err := New(0.0, Reactive, 1.0, 0.005, 2, path, false)
	require.NoError(t, err)

	m.Step(0, [][3]float64{{0, 0, 1}, {4, 0, 1}}, nil, [][3]float64{{4, 0, 1}, {0, 0, 1}})
	require.NoError(t, m.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "timestamp,reallocation_id,agent_id,old_goal,new_goal,distance,method")
	assert.Contains(t, content, "reactive")
}
