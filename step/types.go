package step

import (
	"errors"
	"math/rand"

	"github.com/montemc/monte/model"
)

// Sentinel errors for step-method construction.
var (
	// ErrNilModel indicates a constructor received a nil model.
	ErrNilModel = errors.New("step: nil model")

	// ErrNoVariables indicates a method constructed over zero variables.
	ErrNoVariables = errors.New("step: no variables")

	// ErrNotBinary indicates BinaryMetropolis over a non-binary variable.
	ErrNotBinary = errors.New("step: variable is not binary")

	// ErrBadScaling indicates a non-positive initial proposal scaling.
	ErrBadScaling = errors.New("step: scaling must be positive")

	// ErrNilKernel indicates a Gibbs method without a conditional kernel.
	ErrNilKernel = errors.New("step: nil conditional kernel")
)

// Method is one MCMC transition kernel bound to a set of stochastics.
//
// Step performs a full propose/accept-or-reject transition. It returns
// an error only on contract misuse; zero-probability candidates and
// other recoverable conditions resolve internally as rejections.
//
// Tune applies one adaptation round and reports whether any internal
// parameter actually changed. StopTuning freezes adaptation; after it,
// Tune must be a no-op returning false.
type Method interface {
	Step() error
	Tune() bool
	StopTuning()
	Variables() []model.NodeID
}

// AcceptanceReporter is implemented by methods that track accept/reject
// totals, for driver diagnostics.
type AcceptanceReporter interface {
	Accepted() int
	Rejected() int
}

// Competence ranks how well a method suits a variable. The assignment
// pass picks the highest rank; Incompatible methods are never assigned.
type Competence int

const (
	// Incompatible means the method cannot update the variable.
	Incompatible Competence = iota

	// Compatible means the method works but nothing more.
	Compatible

	// Preferred means the method is a good fit.
	Preferred

	// Ideal means the method is the best-known fit.
	Ideal
)

// Candidate is one entry of the assignment pass: a static competence
// function plus a factory. Blocked candidates receive every variable
// they win in a single method instance; unblocked candidates are
// instantiated once per variable.
type Candidate struct {
	// Name labels the candidate in diagnostics.
	Name string

	// Blocked groups all won variables into one method.
	Blocked bool

	// Competence ranks the candidate for one variable.
	Competence func(m *model.Model, v model.NodeID) Competence

	// New builds the method over the won variables.
	New func(m *model.Model, vars []model.NodeID) (Method, error)
}

// methodRNG derives a private deterministic stream for a method from
// the model's base stream and the method's first variable.
func methodRNG(m *model.Model, v model.NodeID) *rand.Rand {
	return model.DeriveRNG(m.RNG(), uint64(v))
}
