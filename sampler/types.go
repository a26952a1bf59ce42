package sampler

import "errors"

// Sentinel errors for sampler construction and runs.
var (
	// ErrNilModel indicates New received a nil model.
	ErrNilModel = errors.New("sampler: nil model")

	// ErrNilMethod indicates UseMethod received a nil method.
	ErrNilMethod = errors.New("sampler: nil method")

	// ErrNoVariables indicates a model with nothing to sample.
	ErrNoVariables = errors.New("sampler: no unobserved stochastics")

	// ErrNoMethod indicates a variable no candidate can update.
	ErrNoMethod = errors.New("sampler: no competent method")

	// ErrBadIterations indicates iter/burn out of range.
	ErrBadIterations = errors.New("sampler: iterations must exceed burn-in")

	// ErrBadThin indicates a non-positive thinning interval.
	ErrBadThin = errors.New("sampler: thin must be positive")

	// ErrBadTuneInterval indicates a non-positive tuning interval.
	ErrBadTuneInterval = errors.New("sampler: tune interval must be positive")

	// ErrBadInitialValue indicates the model starts at zero probability.
	ErrBadInitialValue = errors.New("sampler: zero probability at initial value")

	// ErrBusy indicates Sample while a run is already in progress.
	ErrBusy = errors.New("sampler: run already in progress")

	// ErrHalted indicates a run stopped by Halt before completing.
	ErrHalted = errors.New("sampler: run halted")
)

// Status is the sampler's run state.
type Status int32

const (
	// Ready means no run is in progress.
	Ready Status = iota

	// Running means Sample is iterating.
	Running

	// Paused means the loop is parked until Resume or Halt.
	Paused

	// Halted means Halt was requested; the loop exits at the next check.
	Halted
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Halted:
		return "halted"
	default:
		return "unknown"
	}
}

// MethodStats is one step method's run diagnostics.
type MethodStats struct {
	// Variables names the stochastics the method updates.
	Variables []string

	// Accepted and Rejected count transitions, when the method reports
	// them.
	Accepted, Rejected int

	// Divergences counts divergent trajectories, for methods that
	// track them.
	Divergences int
}
