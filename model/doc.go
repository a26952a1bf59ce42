// Package model implements the dependency graph at the heart of monte:
// an arena of named nodes (stochastic, deterministic, potential) whose
// parent/child edges are kept consistent in both directions, and whose
// values and log-probabilities are recomputed lazily through small
// ring-buffer caches.
//
// Node kinds:
//
//   - Stochastic    — externally set value plus a log-density contributed
//     by a user-supplied LogpFunc; optionally an RandomFunc to draw a
//     value conditional on its parents. May be observed (fixed data).
//   - Deterministic — value is a pure function (EvalFunc) of its parents;
//     carries no density.
//   - Potential     — an extra log-probability factor over its parents;
//     carries no value.
//
// Construction is explicit: a Builder accepts declarative node specs
// (name, parents by reference, callables) and Build resolves edges,
// validates acyclicity and initial values, and returns a Model whose
// topology only changes through Rewire. There is no reflection and no
// ambient-namespace discovery.
//
// Lazy evaluation:
//
//	Every deterministic value, stochastic log-density and potential
//	log-density is memoized in a cache of depth CacheDepth (default 2),
//	searched newest-first. A cache entry matches only if every input is
//	bit-for-bit identical to the value recorded in the entry, so a hit
//	never calls the user function and has no side effects. Caches are
//	pull-based: mutating an ancestor does not eagerly invalidate
//	descendants; their next read simply misses.
//
// Zero probability:
//
//	A log-density of -Inf (or below the IEEE-754 double lower bound) is a
//	first-class signal, not an error: step methods treat it as an
//	automatic rejection. Only CheckLogp converts it into an error, for
//	the fatal pre-sampling validation path.
//
// Concurrency: a Model is single-threaded by design. No method may run
// concurrently with another mutation of the same graph.
//
// Errors:
//
//	ErrEmptyName          - node name is the empty string.
//	ErrDuplicateName      - two nodes share a name.
//	ErrUnknownNode        - operation referenced a non-existent node.
//	ErrUnknownParent      - a parent reference names no node.
//	ErrCycle              - the declared edges do not form a DAG.
//	ErrBadCacheDepth      - cache depth below 1.
//	ErrNilFunc            - a required callable is nil.
//	ErrNoInitialValue     - stochastic has neither a value nor a RandomFunc.
//	ErrObservedValue      - attempt to overwrite observed data.
//	ErrNoRandomFunc       - Draw on a stochastic without a RandomFunc.
//	ErrNotStochastic      - operation requires a stochastic node.
//	ErrNotContinuous      - vector view over a non-continuous variable.
//	ErrEmptyView          - vector view over zero variables.
//	ErrZeroProbability    - a node has no finite log-probability.
//	ErrGraphInconsistent  - parent/child back-references disagree (fatal).
package model
