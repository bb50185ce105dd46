// Package dynamics implements the per-agent simulation model (C1): a
// second-order position/velocity integrator with a per-axis critically
// damped actuator response between the commanded acceleration and the
// agent's actual motion. It is the "ground truth" model the simulator
// (package simulator) advances every dynamics tick; the MPC solver uses
// its own discretized prediction internally via package bezier/mpc, but
// both are parameterized by the same (zeta, tau) pairs.
//
// Grounded on the teacher's value-receiver state-advance style
// (common.State.Project in afb2001-CCOM_planner never mutates through
// hidden state) and on hammal-GoCBC__control.go's pattern of solving a
// continuous-time state-space model explicitly per call rather than
// keeping a stored ODE object.
package dynamics

import "github.com/Shreyas0812/online-dmpc/common"

// Params holds the per-axis actuator response parameters from spec.md
// §6: (zeta_xy, tau_xy) for the horizontal axes, (zeta_z, tau_z) for the
// vertical axis.
type Params struct {
	ZetaXY, TauXY float64
	ZetaZ, TauZ   float64
}

// substeps is the number of RK4 substeps used to integrate one dynamics
// tick. The ODE is stiff only for very small tau relative to Ts; this
// count keeps the integration accurate for the tau/Ts ratios spec.md's
// scenarios use without needing an adaptive step size.
const substeps = 8

// DoubleIntegrator advances an agent's State3D under a commanded
// acceleration. Advance is deterministic and time-invariant: the next
// state depends only on (state, u, Ts), never on call history.
type DoubleIntegrator struct {
	Ts     float64
	Params Params
}

// New builds a DoubleIntegrator with dynamics-tick period Ts.
func New(ts float64, p Params) DoubleIntegrator {
	return DoubleIntegrator{Ts: ts, Params: p}
}

// Advance steps state forward by Ts under commanded acceleration u,
// integrating the per-axis ODE
//
//	p' = v
//	v' = (u - p)/tau^2 - 2*zeta*v/tau
//
// which is a critically damped (zeta=1) second-order system from u to p
// with DC gain 1: at steady state (v=0) p settles to u. zeta/tau are
// (ZetaXY,TauXY) for axes 0,1 and (ZetaZ,TauZ) for axis 2.
func (d DoubleIntegrator) Advance(state common.State3D, u [3]float64) common.State3D {
	p := state.PosArray()
	v := state.VelArray()

	h := d.Ts / float64(substeps)
	for step := 0; step < substeps; step++ {
		p, v = d.rk4Step(p, v, u, h)
	}

	return common.NewState3D(p, v)
}

func (d DoubleIntegrator) zetaTau(axis int) (zeta, tau float64) {
	if axis == 2 {
		return d.Params.ZetaZ, d.Params.TauZ
	}
	return d.Params.ZetaXY, d.Params.TauXY
}

// deriv evaluates (p', v') at the given point.
func (d DoubleIntegrator) deriv(p, v, u [3]float64) (dp, dv [3]float64) {
	for axis := 0; axis < 3; axis++ {
		zeta, tau := d.zetaTau(axis)
		dp[axis] = v[axis]
		dv[axis] = (u[axis]-p[axis])/(tau*tau) - 2*zeta*v[axis]/tau
	}
	return
}

func (d DoubleIntegrator) rk4Step(p, v, u [3]float64, h float64) (np, nv [3]float64) {
	k1p, k1v := d.deriv(p, v, u)

	p2 := add(p, scale(k1p, h/2))
	v2 := add(v, scale(k1v, h/2))
	k2p, k2v := d.deriv(p2, v2, u)

	p3 := add(p, scale(k2p, h/2))
	v3 := add(v, scale(k2v, h/2))
	k3p, k3v := d.deriv(p3, v3, u)

	p4 := add(p, scale(k3p, h))
	v4 := add(v, scale(k3v, h))
	k4p, k4v := d.deriv(p4, v4, u)

	for axis := 0; axis < 3; axis++ {
		np[axis] = p[axis] + h/6*(k1p[axis]+2*k2p[axis]+2*k3p[axis]+k4p[axis])
		nv[axis] = v[axis] + h/6*(k1v[axis]+2*k2v[axis]+2*k3v[axis]+k4v[axis])
	}
	return
}

func add(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func scale(a [3]float64, s float64) [3]float64 {
	return [3]float64{a[0] * s, a[1] * s, a[2] * s}
}
