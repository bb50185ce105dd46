// Package common holds the domain types shared by every other package in
// this module: agent state, goals, trajectories, and the agent-goal
// assignment permutation. It plays the same role the teacher's `common`
// package played for the single-agent Dubins planner, rebuilt for
// second-order point-mass agents moving through free ℝ³.
package common

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Dim is the dimensionality of the workspace. The module is built around
// ℝ³ throughout; this constant exists so the handful of places that need
// it (matrix shapes) don't repeat the literal.
const Dim = 3

// State3D is a single agent's position/velocity state. Pos and Vel are
// always length-3 vectors. Pos and Vel are pointers, so a plain copy of a
// State3D shares its backing arrays; use Clone for an independent copy.
type State3D struct {
	Pos *mat.VecDense
	Vel *mat.VecDense
}

// NewState3D builds a state from plain position/velocity triples.
func NewState3D(pos, vel [3]float64) State3D {
	return State3D{
		Pos: mat.NewVecDense(3, pos[:]),
		Vel: mat.NewVecDense(3, vel[:]),
	}
}

// Clone returns a deep copy so callers can mutate the result without
// aliasing the receiver's backing arrays.
func (s State3D) Clone() State3D {
	p := mat.NewVecDense(3, nil)
	v := mat.NewVecDense(3, nil)
	p.CopyVec(s.Pos)
	v.CopyVec(s.Vel)
	return State3D{Pos: p, Vel: v}
}

// PosArray returns the position as a plain array, for callers that don't
// want to deal with mat.Vector (file writers, avoider inner loops).
func (s State3D) PosArray() [3]float64 {
	return [3]float64{s.Pos.AtVec(0), s.Pos.AtVec(1), s.Pos.AtVec(2)}
}

// VelArray is the velocity analog of PosArray.
func (s State3D) VelArray() [3]float64 {
	return [3]float64{s.Vel.AtVec(0), s.Vel.AtVec(1), s.Vel.AtVec(2)}
}

func (s State3D) String() string {
	return fmt.Sprintf("p=(%.3f,%.3f,%.3f) v=(%.3f,%.3f,%.3f)",
		s.Pos.AtVec(0), s.Pos.AtVec(1), s.Pos.AtVec(2),
		s.Vel.AtVec(0), s.Vel.AtVec(1), s.Vel.AtVec(2))
}

// DistanceTo returns the plain Euclidean distance between two positions,
// used by the reallocator's reactive/predictive cost matrices (the
// ellipsoidal metric in package geometry is reserved for collision
// avoidance, not for goal-assignment cost).
func (s State3D) DistanceTo(p [3]float64) float64 {
	dx := s.Pos.AtVec(0) - p[0]
	dy := s.Pos.AtVec(1) - p[1]
	dz := s.Pos.AtVec(2) - p[2]
	return mat.Norm(mat.NewVecDense(3, []float64{dx, dy, dz}), 2)
}
