// Package hmc provides the gradient-based samplers: fixed-path
// Hamiltonian Monte Carlo and the no-U-turn sampler (NUTS).
//
// Both explore a Target — a differentiable joint log-density over a
// flat position vector, usually built from a model.View with
// NewModelTarget — by simulating Hamiltonian dynamics with a leapfrog
// integrator against a Potential (the mass matrix). Gradients come
// from Target.Grad when supplied and from central finite differences
// otherwise.
//
// Step-size adaptation uses dual averaging toward a target acceptance
// statistic; StopTuning freezes the iterate-averaged step size.
// Trajectories whose energy error exceeds the divergence bound are cut
// short and counted, retrievable from NUTS.Divergences.
//
// Errors:
//   - ErrNilModel      - constructor received a nil model;
//   - ErrBadDim        - non-positive target dimension;
//   - ErrBadStepSize   - non-positive leapfrog step size;
//   - ErrBadPathLength - non-positive trajectory length;
//   - ErrBadMass       - mass matrix not positive definite.
package hmc
