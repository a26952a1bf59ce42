// Package step defines the step-method contract of the sampling engine
// and the random-walk family of implementations.
//
// A Method owns one or more stochastic variables and advances them one
// MCMC transition per Step call: propose, evaluate the affected
// log-probabilities (lazily, through the model's caches), then accept
// or reject. Recoverable conditions — above all a candidate landing on
// a zero-probability point — are resolved inside Step as an automatic
// rejection and never escape as errors.
//
// Competence ranking replaces inheritance-based dispatch: every
// implementation exposes a static competence function mapping a
// variable to a rank (Incompatible...Ideal), and the sampler's
// assignment pass picks the highest-ranked Candidate per variable.
//
// Implementations here:
//
//   - Metropolis       — symmetric random-walk proposals (Normal, Cauchy,
//     Laplace, Poisson) with the classic adaptive-scaling schedule;
//     rounds deltas for discrete variables.
//   - BinaryMetropolis — independent component flips with probability
//     1 - 0.5^scaling, for {0,1}-valued variables.
//   - Gibbs            — exact conditional sampling through a
//     user-supplied kernel; always accepts; never auto-assigned.
//
// Tuning lifecycle: the driver calls Tune at interval boundaries during
// burn-in; Tune reports whether it adjusted anything. StopTuning
// freezes the method permanently — subsequent Tune calls are no-ops, so
// the freeze is idempotent.
//
// Errors:
//
//	ErrNilModel     - constructor received a nil model.
//	ErrNoVariables  - method constructed over zero variables.
//	ErrNotBinary    - BinaryMetropolis over a non-binary variable.
//	ErrBadScaling   - non-positive initial proposal scaling.
//	ErrNilKernel    - Gibbs without a conditional kernel.
package step
