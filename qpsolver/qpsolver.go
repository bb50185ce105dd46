// Package qpsolver implements the convex quadratic program solve that
// backs the per-agent MPC step (C5 via C3's assembled Problem). spec.md
// §6 names the only recognized `solver` config value as `qpoases`, but
// no qpOASES Go binding exists anywhere in the retrieved example pack or
// the broader ecosystem in a form any example imports, and gonum's
// optimize package has no general linear-inequality-constrained QP
// solver (see DESIGN.md's Open Question resolution). This package is
// therefore a from-scratch primal active-set solver, built the way the
// teacher hand-rolls dubins.go and bitStar.go: a direct, from-scratch
// port of a textbook algorithm (Nocedal & Wright, Algorithm 16.3),
// operating on gonum mat.Dense matrices the way hammal-GoCBC__control.go
// builds its state-space solves.
package qpsolver

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Problem is the standard-form convex QP
//
//	minimize   1/2 x^T H x + f^T x
//	subject to Aeq x = beq
//	           Ain x <= bin
//
// H must be symmetric positive semi-definite.
type Problem struct {
	H        *mat.Dense
	F        []float64
	Aeq      *mat.Dense // may be nil/0-row
	Beq      []float64
	Ain      *mat.Dense // may be nil/0-row
	Bin      []float64
}

// Status reports how a Solve call concluded.
type Status int

const (
	// Optimal means the active-set loop converged to a KKT point.
	Optimal Status = iota
	// Infeasible means no feasible point satisfying the equality and
	// inequality constraints could be found within the iteration budget.
	Infeasible
	// Numerical means the solve produced a NaN/Inf, usually from a
	// singular KKT system.
	Numerical
)

// Result carries the solution vector and its status.
type Result struct {
	X      []float64
	Status Status
}

const maxIterations = 500

// Solve runs the primal active-set method. The working set starts from
// the equality-only solution and adds/drops inequality rows until every
// multiplier for an active inequality is non-negative and every inactive
// inequality is satisfied.
func Solve(p Problem) Result {
	n := len(p.F)
	if n == 0 {
		return Result{Status: Optimal}
	}

	numIneq := len(p.Bin)
	active := make([]bool, numIneq)

	x, ok := solveEqualityQP(p, active)
	if !ok {
		return Result{Status: Numerical}
	}

	// Seed the working set with any constraints already violated at the
	// unconstrained-by-inequalities optimum, so the first ratio test has
	// somewhere meaningful to start from.
	for i := 0; i < numIneq; i++ {
		if rowDot(p.Ain, i, x) > p.Bin[i]+1e-9 {
			active[i] = true
		}
	}

	for iter := 0; iter < maxIterations; iter++ {
		xCandidate, ok := solveEqualityQP(p, active)
		if !ok {
			return Result{Status: Numerical}
		}
		if hasNaN(xCandidate) {
			return Result{Status: Numerical}
		}

		// Ratio test: does moving from x to xCandidate violate any
		// currently-inactive inequality?
		step, block := ratioTest(p, x, xCandidate, active)
		if step < 1 {
			x = interpolate(x, xCandidate, step)
			active[block] = true
			continue
		}
		x = xCandidate

		// Check multipliers on active inequalities; drop the most
		// negative one and retry if found.
		mult := inequalityMultipliers(p, x, active)
		worst := -1
		worstVal := -1e-7
		for i, m := range mult {
			if active[i] && m < worstVal {
				worstVal = m
				worst = i
			}
		}
		if worst < 0 {
			return Result{X: x, Status: Optimal}
		}
		active[worst] = false
	}

	return Result{X: x, Status: Infeasible}
}

// solveEqualityQP solves the KKT system for the QP restricted to the
// equality constraints plus whichever inequality rows are in the active
// set (treated as additional equalities at their bound).
func solveEqualityQP(p Problem, active []bool) ([]float64, bool) {
	n := len(p.F)

	var rows [][]float64
	var rhs []float64
	if p.Aeq != nil {
		er, _ := p.Aeq.Dims()
		for i := 0; i < er; i++ {
			row := make([]float64, n)
			mat.Row(row, i, p.Aeq)
			rows = append(rows, row)
			rhs = append(rhs, p.Beq[i])
		}
	}
	for i, on := range active {
		if !on {
			continue
		}
		row := make([]float64, n)
		mat.Row(row, i, p.Ain)
		rows = append(rows, row)
		rhs = append(rhs, p.Bin[i])
	}

	m := len(rows)
	size := n + m
	kkt := mat.NewDense(size, size, nil)
	b := make([]float64, size)

	// A small ridge on the H block keeps the KKT matrix non-singular when
	// H is only positive semi-definite and some variables appear in no
	// cost term or constraint row.
	const ridge = 1e-8
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			kkt.Set(i, j, p.H.At(i, j))
		}
		kkt.Set(i, i, kkt.At(i, i)+ridge)
		b[i] = -p.F[i]
	}
	for r := 0; r < m; r++ {
		for c := 0; c < n; c++ {
			kkt.Set(n+r, c, rows[r][c])
			kkt.Set(c, n+r, rows[r][c])
		}
		b[n+r] = rhs[r]
	}

	bVec := mat.NewVecDense(size, b)
	var sol mat.VecDense
	if err := sol.SolveVec(kkt, bVec); err != nil {
		return nil, false
	}

	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = sol.AtVec(i)
	}
	return x, true
}

// inequalityMultipliers recovers the Lagrange multipliers on the active
// inequality rows by re-solving the KKT system and reading off the dual
// block; recomputed rather than cached because solveEqualityQP discards
// the multiplier rows of its solution today. Sign convention: Ain x <=
// bin active at x means multiplier >= 0 at optimality.
func inequalityMultipliers(p Problem, x []float64, active []bool) []float64 {
	n := len(p.F)
	numIneq := len(p.Bin)
	mult := make([]float64, numIneq)

	// grad = H x + f
	grad := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			sum += p.H.At(i, j) * x[j]
		}
		grad[i] = sum + p.F[i]
	}

	// Solve the (possibly overdetermined) normal equations for the
	// multipliers of the active constraint rows: A_active^T lambda = -grad
	// restricted to equality + active inequality rows. We only need the
	// inequality portion, so build the combined active-row matrix and
	// least-squares solve for all multipliers, discarding the equality
	// ones.
	var rows [][]float64
	var idx []int // -1 for equality rows, else inequality index
	if p.Aeq != nil {
		er, _ := p.Aeq.Dims()
		for i := 0; i < er; i++ {
			row := make([]float64, n)
			mat.Row(row, i, p.Aeq)
			rows = append(rows, row)
			idx = append(idx, -1)
		}
	}
	for i, on := range active {
		if !on {
			continue
		}
		row := make([]float64, n)
		mat.Row(row, i, p.Ain)
		rows = append(rows, row)
		idx = append(idx, i)
	}

	m := len(rows)
	if m == 0 {
		return mult
	}

	at := mat.NewDense(n, m, nil)
	for r := 0; r < m; r++ {
		for c := 0; c < n; c++ {
			at.Set(c, r, rows[r][c])
		}
	}
	gradVec := mat.NewVecDense(n, grad)
	negGrad := mat.NewVecDense(n, nil)
	negGrad.ScaleVec(-1, gradVec)

	var lambda mat.VecDense
	if err := lambda.SolveVec(at, negGrad); err != nil {
		return mult
	}
	for r := 0; r < m; r++ {
		if idx[r] >= 0 {
			mult[idx[r]] = lambda.AtVec(r)
		}
	}
	return mult
}

// ratioTest finds the largest step alpha in [0,1] along (xTo - xFrom)
// that keeps every currently-inactive inequality satisfied, returning
// the blocking row index (-1 if none blocks, i.e. alpha=1 is safe).
func ratioTest(p Problem, xFrom, xTo []float64, active []bool) (float64, int) {
	alpha := 1.0
	block := -1
	for i := range p.Bin {
		if active[i] {
			continue
		}
		from := rowDot(p.Ain, i, xFrom)
		to := rowDot(p.Ain, i, xTo)
		delta := to - from
		if delta <= 1e-12 {
			continue // moving this direction only helps or is neutral
		}
		room := p.Bin[i] - from
		a := room / delta
		if a < alpha {
			alpha = a
			block = i
		}
	}
	if alpha < 0 {
		alpha = 0
	}
	return alpha, block
}

func rowDot(a *mat.Dense, row int, x []float64) float64 {
	if a == nil {
		return 0
	}
	var sum float64
	_, cols := a.Dims()
	for c := 0; c < cols; c++ {
		sum += a.At(row, c) * x[c]
	}
	return sum
}

func interpolate(a, b []float64, alpha float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + alpha*(b[i]-a[i])
	}
	return out
}

func hasNaN(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
