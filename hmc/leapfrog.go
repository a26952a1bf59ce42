package hmc

import (
	"gonum.org/v1/gonum/floats"
)

// point is one phase-space point of a trajectory with its cached
// density, gradient and total energy.
type point struct {
	q, p, grad []float64
	logp       float64
	energy     float64 // -logp + kinetic
}

// newPoint evaluates the target and potential at position q with
// momentum p.
func newPoint(t *Target, pot Potential, q, p []float64) point {
	pt := point{
		q:    append([]float64(nil), q...),
		p:    append([]float64(nil), p...),
		grad: make([]float64, len(q)),
		logp: t.Logp(q),
	}
	t.gradient(pt.grad, pt.q)
	pt.energy = -pt.logp + pot.Energy(pt.p)

	return pt
}

// leapfrog advances one symplectic integrator step of size eps:
// half momentum kick, full position drift, half momentum kick.
func leapfrog(t *Target, pot Potential, from point, eps float64) point {
	next := point{
		q:    append([]float64(nil), from.q...),
		p:    append([]float64(nil), from.p...),
		grad: make([]float64, len(from.q)),
	}

	floats.AddScaled(next.p, eps/2, from.grad)

	v := make([]float64, len(next.p))
	pot.Velocity(v, next.p)
	floats.AddScaled(next.q, eps, v)

	next.logp = t.Logp(next.q)
	t.gradient(next.grad, next.q)
	floats.AddScaled(next.p, eps/2, next.grad)

	next.energy = -next.logp + pot.Energy(next.p)

	return next
}
