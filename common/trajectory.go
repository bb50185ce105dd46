package common

import "gonum.org/v1/gonum/mat"

// Horizon is a predicted window of K future positions for one agent,
// stored as a 3×K matrix (column k is the position at lookahead step k).
// It is produced fresh by every replan tick and is read-only once
// published — see spec.md §5 on snapshot semantics.
type Horizon struct {
	Positions *mat.Dense // 3 x K
}

// NewHorizon allocates a zeroed K-step horizon.
func NewHorizon(k int) Horizon {
	return Horizon{Positions: mat.NewDense(3, k, nil)}
}

// NewStaticHorizon builds a K-step horizon held at a single fixed
// position for every lookahead step — used to seed a freshly-built
// AgentSolver before its first tick and to represent an uncommanded
// obstacle, which never moves (spec.md's Non-goals exclude dynamic
// obstacles), across the whole run.
func NewStaticHorizon(p [3]float64, k int) Horizon {
	h := NewHorizon(k)
	for kk := 0; kk < k; kk++ {
		h.Positions.SetCol(kk, p[:])
	}
	return h
}

// Steps returns K, the horizon length.
func (h Horizon) Steps() int {
	if h.Positions == nil {
		return 0
	}
	_, k := h.Positions.Dims()
	return k
}

// At returns the predicted position at lookahead step k, clamped to the
// last column if k exceeds the horizon length (spec.md §8's supplemented
// predictive-reallocation clamp behavior, reused here for any caller
// indexing past the end).
func (h Horizon) At(k int) [3]float64 {
	steps := h.Steps()
	if steps == 0 {
		return [3]float64{}
	}
	if k >= steps {
		k = steps - 1
	}
	if k < 0 {
		k = 0
	}
	return [3]float64{h.Positions.At(0, k), h.Positions.At(1, k), h.Positions.At(2, k)}
}

// Assignment is a permutation π of [0, N) — π[i] is the goal index agent
// i currently pursues. The reallocation package is the only writer;
// every other package treats it as read-only.
type Assignment []int

// IsPermutation reports whether a is a bijection on [0, len(a)).
func (a Assignment) IsPermutation() bool {
	seen := make([]bool, len(a))
	for _, j := range a {
		if j < 0 || j >= len(a) || seen[j] {
			return false
		}
		seen[j] = true
	}
	return true
}

// Identity returns the identity permutation of length n.
func Identity(n int) Assignment {
	a := make(Assignment, n)
	for i := range a {
		a[i] = i
	}
	return a
}

// Clone returns a copy so callers can mutate without aliasing.
func (a Assignment) Clone() Assignment {
	b := make(Assignment, len(a))
	copy(b, a)
	return b
}

// Equal reports whether two assignments agree at every index.
func (a Assignment) Equal(b Assignment) bool {
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
