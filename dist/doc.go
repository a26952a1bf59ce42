// Package dist provides thin adapters between gonum's distuv
// distributions and the model package's density/variate contracts.
//
// Each constructor returns a (LogpFunc, RandomFunc) pair reading its
// parameters from fixed parent names (documented per constructor). The
// log-density of an array-valued node is the sum over its components —
// observed count or measurement arrays work out of the box. A value
// outside the distribution's support yields -Inf, the engine's
// first-class zero-probability signal.
//
// The catalogue here is deliberately small: the engine consumes any
// function satisfying the contracts, and these adapters exist so models
// and tests do not hand-roll standard densities.
package dist
