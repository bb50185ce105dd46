package common

import (
	"math"
	"testing"
)

func TestGoal_Static(t *testing.T) {
	g := NewStaticGoal([3]float64{1, 2, 3})
	p := g.At(100)
	if p != [3]float64{1, 2, 3} {
		t.Errorf("static goal moved: %v", p)
	}
}

func TestGoal_Translating(t *testing.T) {
	g := NewTranslatingGoal([3]float64{0, 0, 0}, [3]float64{0.5, 0, 0})
	p := g.At(2)
	want := [3]float64{1, 0, 0}
	if p != want {
		t.Errorf("expected %v, got %v", want, p)
	}
}

func TestGoal_Circular(t *testing.T) {
	g := NewCircularGoal([3]float64{0, 0, 1}, 2.0, math.Pi)
	p := g.At(1) // half revolution
	want := [3]float64{-2, 0, 1}
	for i := range want {
		if math.Abs(p[i]-want[i]) > 1e-9 {
			t.Errorf("expected %v, got %v", want, p)
			break
		}
	}
}

func TestAssignment_IsPermutation(t *testing.T) {
	valid := Assignment{2, 0, 1}
	if !valid.IsPermutation() {
		t.Error("expected valid permutation")
	}
	invalid := Assignment{0, 0, 1}
	if invalid.IsPermutation() {
		t.Error("expected invalid permutation to be rejected")
	}
}
