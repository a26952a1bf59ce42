package model

import (
	"errors"
	"math"
	"math/rand"
)

// Sentinel errors for model construction and mutation.
var (
	// ErrEmptyName indicates a node spec with an empty name.
	ErrEmptyName = errors.New("model: node name is empty")

	// ErrDuplicateName indicates two node specs sharing one name.
	ErrDuplicateName = errors.New("model: duplicate node name")

	// ErrUnknownNode indicates an operation referenced a non-existent node.
	ErrUnknownNode = errors.New("model: unknown node")

	// ErrUnknownParent indicates a parent reference that names no node.
	ErrUnknownParent = errors.New("model: unknown parent")

	// ErrCycle indicates the declared parent edges do not form a DAG.
	ErrCycle = errors.New("model: dependency cycle")

	// ErrBadCacheDepth indicates a cache depth below 1.
	ErrBadCacheDepth = errors.New("model: cache depth must be >= 1")

	// ErrNilFunc indicates a required callable was nil.
	ErrNilFunc = errors.New("model: nil function")

	// ErrNoInitialValue indicates a stochastic with neither an initial
	// value nor a RandomFunc to draw one from.
	ErrNoInitialValue = errors.New("model: no initial value")

	// ErrObservedValue indicates an attempt to overwrite observed data.
	ErrObservedValue = errors.New("model: observed value cannot be set")

	// ErrNoRandomFunc indicates Draw on a stochastic without a RandomFunc.
	ErrNoRandomFunc = errors.New("model: no random function")

	// ErrNotStochastic indicates an operation that requires a stochastic node.
	ErrNotStochastic = errors.New("model: node is not stochastic")

	// ErrNotContinuous indicates a vector view over a discrete or binary variable.
	ErrNotContinuous = errors.New("model: variable is not continuous")

	// ErrEmptyView indicates a vector view over zero variables.
	ErrEmptyView = errors.New("model: empty view")

	// ErrDimensionMismatch indicates a vector of the wrong length.
	ErrDimensionMismatch = errors.New("model: dimension mismatch")

	// ErrZeroProbability indicates a node whose log-probability is not finite.
	ErrZeroProbability = errors.New("model: zero probability")

	// ErrGraphInconsistent indicates a parent/child back-reference mismatch.
	// This is an internal-invariant failure, never a recoverable condition.
	ErrGraphInconsistent = errors.New("model: graph inconsistent")
)

// NodeID indexes a node inside its Model's arena.
type NodeID int

// Kind discriminates the three node kinds.
type Kind uint8

const (
	// Stochastic nodes hold an externally set value and a log-density.
	Stochastic Kind = iota

	// Deterministic nodes compute their value from their parents.
	Deterministic

	// Potential nodes contribute a log-probability factor and hold no value.
	Potential
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Stochastic:
		return "stochastic"
	case Deterministic:
		return "deterministic"
	case Potential:
		return "potential"
	}

	return "unknown"
}

// Dtype classifies a stochastic variable's support for step-method
// competence ranking and proposal rounding.
type Dtype uint8

const (
	// Continuous variables take real values.
	Continuous Dtype = iota

	// Discrete variables take integer values (stored as whole float64s).
	Discrete

	// Binary variables take values in {0, 1}.
	Binary
)

// String implements fmt.Stringer.
func (d Dtype) String() string {
	switch d {
	case Continuous:
		return "continuous"
	case Discrete:
		return "discrete"
	case Binary:
		return "binary"
	}

	return "unknown"
}

// DefaultCacheDepth is the number of memoized computations each node keeps.
const DefaultCacheDepth = 2

// logpLowerBound is the sentinel floor below which a log-density is
// treated as "negative infinite" even when it is formally finite.
// The value is the most negative IEEE-754 double.
const logpLowerBound = -1.7976931348623157e308

// Value is a node's realized value: a scalar is a length-1 slice, an
// array-valued node uses longer slices. Values are treated as immutable
// once handed to the model; accessors return defensive copies.
type Value []float64

// Scalar wraps a float64 into a length-1 Value.
func Scalar(x float64) Value { return Value{x} }

// Scalar returns the single component of a length-1 Value.
// For longer values it returns the first component.
func (v Value) Scalar() float64 {
	if len(v) == 0 {
		return math.NaN()
	}

	return v[0]
}

// Clone returns an independent copy of v. Nil stays nil.
func (v Value) Clone() Value {
	if v == nil {
		return nil
	}
	out := make(Value, len(v))
	copy(out, v)

	return out
}

// Equal reports bit-for-bit equality of two values. Exact float64
// comparison is deliberate: it matches the lazy-cache hit semantics.
// NaN components never compare equal, so NaN defeats caching but never
// produces a stale hit.
func (v Value) Equal(w Value) bool {
	if len(v) != len(w) {
		return false
	}
	for i := range v {
		if v[i] != w[i] {
			return false
		}
	}

	return true
}

// ParentValues carries a node's current parent values keyed by
// parameter name, as handed to the user callables.
type ParentValues map[string]Value

// LogpFunc computes a natural-log density of value given parent values.
// It must be pure. Out-of-support values are reported by returning -Inf
// (or any number at or below the double lower bound), never by panicking.
type LogpFunc func(value Value, parents ParentValues) float64

// EvalFunc computes a deterministic node's value from its parents.
// It must be pure.
type EvalFunc func(parents ParentValues) Value

// RandomFunc draws a value for a stochastic node conditional on its
// parents, using the supplied deterministic stream.
type RandomFunc func(rng *rand.Rand, parents ParentValues) Value

// IsZeroProbability reports whether a log-density signals an impossible
// point: -Inf, NaN, or the near-infinite sentinel some densities return.
func IsZeroProbability(logp float64) bool {
	return math.IsNaN(logp) || logp <= logpLowerBound
}

// Parent binds a parameter name to either another node (referenced by
// its unique name) or a constant value.
type Parent struct {
	// Name is the parameter name the value is passed under, e.g. "mu".
	Name string

	// Node is the referenced node's name. Empty means Const is used.
	Node string

	// Const is the constant parameter value when Node is empty.
	Const Value
}

// Parents is an ordered parent mapping. Order is preserved: it defines
// the layout of lazy-cache snapshots.
type Parents []Parent

// NodeParent builds a Parent referencing another node by name.
func NodeParent(param, node string) Parent {
	return Parent{Name: param, Node: node}
}

// ConstParent builds a Parent carrying a constant value.
func ConstParent(param string, v Value) Parent {
	return Parent{Name: param, Const: v.Clone()}
}

// ConstScalar builds a Parent carrying a constant scalar.
func ConstScalar(param string, x float64) Parent {
	return Parent{Name: param, Const: Scalar(x)}
}
