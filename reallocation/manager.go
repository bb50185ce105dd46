// Package reallocation implements the task Reallocator (C7): a
// periodic, optimal one-to-one agent↔goal rematch via the Hungarian
// algorithm, in either reactive (current-position) or predictive
// (horizon-sampled) cost mode. The Reallocator never touches agent
// state or horizons — it only decides a new Assignment and hands index
// changes to whoever owns the Generator (spec.md §9: "a pure Generator
// mutation").
//
// State machine and CSV logging grounded on
// _examples/original_source/cpp/src/task_reallocation.cpp's
// TaskReallocationManager (shouldReallocate/computeOptimalAssignment/
// computePredictiveAssignment/updateAssignment), translated from
// Eigen/std::ofstream to gonum-free plain Go slices and encoding/csv.
package reallocation

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"

	"github.com/google/uuid"

	"github.com/Shreyas0812/online-dmpc/common"
)

// Mode selects the cost matrix used for reallocation (spec.md §4.7).
type Mode int

const (
	Reactive Mode = iota
	Predictive
)

func (m Mode) String() string {
	if m == Predictive {
		return "predictive"
	}
	return "reactive"
}

// State names the reallocation state machine's phase within one Step
// call (spec.md §4.7: Idle → Sample → Solve → {unchanged→Idle,
// changed→Commit→Idle}). Every Step call runs the whole machine to
// completion synchronously — there is no cross-tick suspension — but
// the field is kept and updated so callers/tests can introspect which
// phase a Step last reached.
type State int

const (
	Idle State = iota
	Sampling
	Solving
	Committing
)

// Manager holds the last committed assignment and its own time cursor
// (spec.md §3's ownership rule: "the Reallocator holds only the last
// committed assignment and its own time cursor").
type Manager struct {
	Period            float64
	Mode              Mode
	PredictionHorizon float64
	Ts                float64

	lastReallocationTime float64
	reallocationCount    int
	lastEventID          uuid.UUID
	current              common.Assignment
	state                State

	logPath string
	logFile *os.File
	log     *csv.Writer
}

// New builds a Manager for n agents/goals. fireAtStart selects between the
// two seedings spec.md §9 found in the filtered source and asked to be
// resolved in config rather than guessed: task_reallocation.cpp seeds
// last_reallocation_time_(-reallocation_period), which makes the first
// ShouldReallocate(0) check true and so can fire a reallocation at t=0;
// task_reallocation.h's inline default seeds 0.0, which holds the first
// check false until t=Period — the behavior spec.md's own worked example
// ("a single reallocation at t ≈ T_r") actually describes. fireAtStart=true
// reproduces the .cpp seeding; fireAtStart=false (config key
// reallocation_fire_at_start, default false) reproduces the .h seeding and
// is what every worked example in spec.md assumes.
func New(period float64, mode Mode, predictionHorizon, ts float64, n int, logPath string, fireAtStart bool) (*Manager, error) {
	f, err := os.Create(logPath)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "reallocation_id", "agent_id", "old_goal", "new_goal", "distance", "method"}); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	lastReallocationTime := 0.0
	if fireAtStart {
		lastReallocationTime = -period
	}

	return &Manager{
		Period:                period,
		Mode:                  mode,
		PredictionHorizon:     predictionHorizon,
		Ts:                    ts,
		lastReallocationTime:  lastReallocationTime,
		current:               common.Identity(n),
		logPath:               logPath,
		logFile:               f,
		log:                   w,
	}, nil
}

// Close releases the underlying log file.
func (m *Manager) Close() error {
	m.log.Flush()
	return m.logFile.Close()
}

// Assignment returns the last committed assignment.
func (m *Manager) Assignment() common.Assignment {
	return m.current.Clone()
}

// ShouldReallocate reports whether period T_r has elapsed since the
// last committed reallocation (an unchanged solve does not restart the
// period).
func (m *Manager) ShouldReallocate(t float64) bool {
	return t-m.lastReallocationTime >= m.Period
}

// State returns the phase the most recent Step call reached.
func (m *Manager) State() State {
	return m.state
}

// LastEventID returns the UUID stamped on the most recent committed
// reallocation event (the zero UUID if none has committed yet).
func (m *Manager) LastEventID() uuid.UUID {
	return m.lastEventID
}

// ReallocationCount returns how many reallocation events have committed.
func (m *Manager) ReallocationCount() int {
	return m.reallocationCount
}

// Step runs the Idle→Sample→Solve→{Idle,Commit→Idle} machine once. It
// is a pure function of its inputs (spec.md §8: "calling the
// Reallocator twice in succession at the same time with the same
// inputs produces the same assignment") except for the internal
// bookkeeping (lastReallocationTime, reallocationCount, current) that
// models the one call that actually committed.
//
// agentPositions and goalPositions are the current positions; horizons
// is the frozen per-agent predicted-horizon snapshot, used only in
// Predictive mode.
func (m *Manager) Step(t float64, agentPositions [][3]float64, horizons []common.Horizon, goalPositions [][3]float64) (bool, common.Assignment) {
	if !m.ShouldReallocate(t) {
		m.state = Idle
		return false, m.Assignment()
	}

	m.state = Sampling
	cost := m.buildCostMatrix(agentPositions, horizons, goalPositions)

	m.state = Solving
	newAssignment, _ := HungarianAssign(cost)

	changed := !equalAssignment(m.current, newAssignment)
	if changed {
		m.state = Committing
		m.commit(t, newAssignment, agentPositions, goalPositions)
		m.lastReallocationTime = t
	}
	m.state = Idle

	return changed, m.Assignment()
}

func (m *Manager) buildCostMatrix(agentPositions [][3]float64, horizons []common.Horizon, goalPositions [][3]float64) [][]float64 {
	n := len(agentPositions)
	cost := make([][]float64, n)

	kStar := int(math.Round(m.PredictionHorizon / m.Ts))

	for i := 0; i < n; i++ {
		var from [3]float64
		if m.Mode == Predictive && i < len(horizons) {
			from = horizons[i].At(kStar) // At() already clamps to the last column.
		} else {
			from = agentPositions[i]
		}
		cost[i] = make([]float64, len(goalPositions))
		for j, g := range goalPositions {
			cost[i][j] = euclidean(from, g)
		}
	}
	return cost
}

func (m *Manager) commit(t float64, newAssignment []int, agentPositions, goalPositions [][3]float64) {
	m.reallocationCount++
	m.lastEventID = uuid.New() // exposed via LastEventID; the CSV's own reallocation_id column stays the numeric counter spec.md §6 names

	for i, newGoal := range newAssignment {
		oldGoal := m.current[i]
		if oldGoal == newGoal {
			continue
		}
		dist := euclidean(agentPositions[i], goalPositions[newGoal])
		m.log.Write([]string{
			fmt.Sprintf("%.6f", t),
			fmt.Sprintf("%d", m.reallocationCount),
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", oldGoal),
			fmt.Sprintf("%d", newGoal),
			fmt.Sprintf("%.6f", dist),
			m.Mode.String(),
		})
	}
	m.log.Flush()
	m.current = common.Assignment(newAssignment)
}

func equalAssignment(a common.Assignment, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func euclidean(a, b [3]float64) float64 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
