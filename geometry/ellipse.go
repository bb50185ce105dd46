// Package geometry implements the ellipsoidal separation metric shared by
// both collision-avoidance constraint builders (spec.md §3, §4.4a/§4.4b).
// It is grounded structurally on
// _examples/original_source/cpp/src/bvc_avoidance.cpp's Ellipse type, which
// is the one place the original C++ is the disambiguating reference: the
// spec states the gradient form but leaves its exact derivation implicit.
package geometry

import "math"

// Ellipse holds a precomputed anisotropic footprint: order q, minimum
// separation RMin, and the diagonal scaling E1 = diag(c)^-1 together with
// its elementwise square E2 (c = (1,1,c_z), c_z >= 1 per spec.md §3).
type Ellipse struct {
	Order int
	RMin  float64
	E1    [3]float64
	E2    [3]float64
}

// NewEllipse builds an Ellipse from its order, minimum separation, and
// anisotropy vector c.
func NewEllipse(order int, rmin float64, c [3]float64) Ellipse {
	e1 := [3]float64{1 / c[0], 1 / c[1], 1 / c[2]}
	e2 := [3]float64{e1[0] * e1[0], e1[1] * e1[1], e1[2] * e1[2]}
	return Ellipse{Order: order, RMin: rmin, E1: e1, E2: e2}
}

// Distance returns the ellipsoidal q-norm distance ‖E⁻¹(pi - pj)‖_q.
func (e Ellipse) Distance(pi, pj [3]float64) float64 {
	var sum float64
	q := float64(e.Order)
	for d := 0; d < 3; d++ {
		scaled := e.E1[d] * (pi[d] - pj[d])
		sum += math.Pow(scaled, q)
	}
	return math.Pow(sum, 1.0/q)
}

// Linearize computes the first-order Taylor expansion of the ellipsoidal
// separation constraint d(pi,pj) >= RMin about the point pair (pi, pj):
// the gradient g = (E⁻²(pi-pj))^(q-1) component-wise, the distance d, and
// d^(q-1). Both avoiders build their half-plane rows from these three
// values (spec.md §4.4a).
func (e Ellipse) Linearize(pi, pj [3]float64) (grad [3]float64, d float64, distPow float64) {
	d = e.Distance(pi, pj)
	exp := float64(e.Order - 1)
	for k := 0; k < 3; k++ {
		diffRaw := pi[k] - pj[k]
		grad[k] = math.Pow(e.E2[k]*diffRaw, exp)
	}
	distPow = math.Pow(d, exp)
	return
}

// Violates reports whether pi and pj are closer than threshold under this
// ellipse's metric.
func (e Ellipse) Violates(pi, pj [3]float64, threshold float64) bool {
	return e.Distance(pi, pj) < threshold
}
