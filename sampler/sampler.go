package sampler

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/montemc/monte/hmc"
	"github.com/montemc/monte/model"
	"github.com/montemc/monte/step"
	"github.com/montemc/monte/trace"
)

// cleanIntervalsToStop is how many consecutive tuning rounds with no
// adjustment end adaptation early, before burn-in runs out.
const cleanIntervalsToStop = 5

// MCMC drives a set of step methods over a model, tuning during
// burn-in and recording post-burn samples into a trace backend.
//
// Sample blocks; Pause, Resume and Halt may be called from other
// goroutines and take effect at iteration boundaries.
type MCMC struct {
	m          *model.Model
	backend    trace.Backend
	candidates []step.Candidate
	tracked    []model.NodeID

	explicit []step.Method
	methods  []step.Method

	status atomic.Int32
}

// Option configures an MCMC driver at construction.
type Option func(*MCMC)

// WithBackend replaces the default in-memory trace backend.
func WithBackend(b trace.Backend) Option {
	return func(s *MCMC) { s.backend = b }
}

// WithCandidates replaces the default method-assignment candidates.
func WithCandidates(cs ...step.Candidate) Option {
	return func(s *MCMC) { s.candidates = cs }
}

// WithTracked restricts recording to the given nodes; the default
// records every unobserved stochastic and every deterministic.
func WithTracked(ids ...model.NodeID) Option {
	return func(s *MCMC) { s.tracked = ids }
}

// DefaultCandidates returns the assignment-pass order: flip sampling
// for binary variables, NUTS blocks for continuous ones, random-walk
// Metropolis for whatever remains.
func DefaultCandidates() []step.Candidate {
	return []step.Candidate{
		step.BinaryMetropolisCandidate(),
		hmc.NUTSCandidate(),
		step.MetropolisCandidate(),
	}
}

// New builds an MCMC driver over a model.
func New(m *model.Model, opts ...Option) (*MCMC, error) {
	if m == nil {
		return nil, fmt.Errorf("sampler.New: %w", ErrNilModel)
	}

	s := &MCMC{m: m}
	for _, opt := range opts {
		opt(s)
	}
	if s.backend == nil {
		s.backend = trace.NewRAM()
	}
	if s.candidates == nil {
		s.candidates = DefaultCandidates()
	}
	if s.tracked == nil {
		s.tracked = m.Unobserved()
		for id := model.NodeID(0); int(id) < m.Len(); id++ {
			if m.KindOf(id) == model.Deterministic {
				s.tracked = append(s.tracked, id)
			}
		}
	}

	return s, nil
}

// UseMethod fixes a method for its variables, overriding automatic
// assignment. Call before Sample.
func (s *MCMC) UseMethod(m step.Method) error {
	if m == nil {
		return fmt.Errorf("UseMethod: %w", ErrNilMethod)
	}
	s.explicit = append(s.explicit, m)

	return nil
}

// assign resolves one method per unobserved stochastic: explicit
// methods claim their variables first, then each remaining variable
// goes to its highest-competence candidate. Variables won by a Blocked
// candidate are grouped into a single method instance.
func (s *MCMC) assign() error {
	claimed := make(map[model.NodeID]bool)
	s.methods = append([]step.Method(nil), s.explicit...)
	for _, m := range s.explicit {
		for _, v := range m.Variables() {
			claimed[v] = true
		}
	}

	vars := s.m.Unobserved()
	if len(vars) == 0 && len(s.methods) == 0 {
		return fmt.Errorf("assign: %w", ErrNoVariables)
	}

	// blocked winners accumulate variables per candidate index.
	blocked := make(map[int][]model.NodeID)
	for _, v := range vars {
		if claimed[v] {
			continue
		}

		best, bestRank := -1, step.Incompatible
		for i, c := range s.candidates {
			if rank := c.Competence(s.m, v); rank > bestRank {
				best, bestRank = i, rank
			}
		}
		if best < 0 {
			return fmt.Errorf("assign: node %q: %w", s.m.Name(v), ErrNoMethod)
		}

		if s.candidates[best].Blocked {
			blocked[best] = append(blocked[best], v)

			continue
		}
		m, err := s.candidates[best].New(s.m, []model.NodeID{v})
		if err != nil {
			return fmt.Errorf("assign: %q for node %q: %w",
				s.candidates[best].Name, s.m.Name(v), err)
		}
		s.methods = append(s.methods, m)
	}

	// Candidate order keeps blocked construction deterministic.
	for i, c := range s.candidates {
		group, ok := blocked[i]
		if !ok {
			continue
		}
		m, err := c.New(s.m, group)
		if err != nil {
			return fmt.Errorf("assign: %q: %w", c.Name, err)
		}
		s.methods = append(s.methods, m)
	}

	return nil
}

// Sample runs iter iterations, discarding the first burn and
// recording every thin-th iteration after that. Step methods tune
// every tuneInterval iterations during burn-in; tuning stops at the
// end of burn-in, or earlier once no method has adjusted for five
// consecutive rounds.
func (s *MCMC) Sample(iter, burn, thin, tuneInterval int) error {
	if iter <= 0 || burn < 0 || burn >= iter {
		return fmt.Errorf("Sample: iter=%d burn=%d: %w", iter, burn, ErrBadIterations)
	}
	if thin < 1 {
		return fmt.Errorf("Sample: thin=%d: %w", thin, ErrBadThin)
	}
	if tuneInterval < 1 {
		return fmt.Errorf("Sample: tuneInterval=%d: %w", tuneInterval, ErrBadTuneInterval)
	}
	if !s.status.CompareAndSwap(int32(Ready), int32(Running)) {
		return fmt.Errorf("Sample: %w", ErrBusy)
	}
	defer s.status.Store(int32(Ready))

	if err := s.m.CheckLogp(); err != nil {
		return fmt.Errorf("Sample: %w: %v", ErrBadInitialValue, err)
	}
	if err := s.assign(); err != nil {
		return fmt.Errorf("Sample: %w", err)
	}

	expected := (iter - burn + thin - 1) / thin
	if err := s.backend.Initialize(s.m, s.tracked, expected); err != nil {
		return fmt.Errorf("Sample: %w", err)
	}

	tuning := true
	cleanRounds := 0
	for i := 0; i < iter; i++ {
		if halted := s.waitIfPaused(); halted {
			return fmt.Errorf("Sample: iteration %d: %w", i, ErrHalted)
		}

		for _, m := range s.methods {
			if err := m.Step(); err != nil {
				return fmt.Errorf("Sample: iteration %d: %w", i, err)
			}
		}

		if tuning && i > 0 && i%tuneInterval == 0 {
			adjusted := false
			for _, m := range s.methods {
				if m.Tune() {
					adjusted = true
				}
			}
			if adjusted {
				cleanRounds = 0
			} else {
				cleanRounds++
			}
			if i >= burn || cleanRounds >= cleanIntervalsToStop {
				s.stopTuning()
				tuning = false
			}
		}
		if tuning && i >= burn {
			s.stopTuning()
			tuning = false
		}

		if i >= burn && (i-burn)%thin == 0 {
			if err := s.backend.Tally(i); err != nil {
				return fmt.Errorf("Sample: iteration %d: %w", i, err)
			}
		}
	}

	if err := s.backend.Finalize(); err != nil {
		return fmt.Errorf("Sample: %w", err)
	}

	return nil
}

func (s *MCMC) stopTuning() {
	for _, m := range s.methods {
		m.StopTuning()
	}
}

// waitIfPaused parks the loop while paused and reports whether a halt
// arrived.
func (s *MCMC) waitIfPaused() bool {
	for {
		switch Status(s.status.Load()) {
		case Running:
			return false
		case Paused:
			time.Sleep(time.Millisecond)
		default:
			return true
		}
	}
}

// Pause parks a running sample loop at the next iteration boundary.
func (s *MCMC) Pause() { s.status.CompareAndSwap(int32(Running), int32(Paused)) }

// Resume releases a paused loop.
func (s *MCMC) Resume() { s.status.CompareAndSwap(int32(Paused), int32(Running)) }

// Halt stops a running or paused loop; its Sample call returns
// ErrHalted.
func (s *MCMC) Halt() {
	s.status.CompareAndSwap(int32(Running), int32(Halted))
	s.status.CompareAndSwap(int32(Paused), int32(Halted))
}

// Status returns the current run state.
func (s *MCMC) Status() Status { return Status(s.status.Load()) }

// Backend returns the trace backend samples are recorded into.
func (s *MCMC) Backend() trace.Backend { return s.backend }

// Stats reports per-method diagnostics from the most recent run.
func (s *MCMC) Stats() []MethodStats {
	out := make([]MethodStats, 0, len(s.methods))
	for _, m := range s.methods {
		st := MethodStats{}
		for _, v := range m.Variables() {
			st.Variables = append(st.Variables, s.m.Name(v))
		}
		if ar, ok := m.(step.AcceptanceReporter); ok {
			st.Accepted, st.Rejected = ar.Accepted(), ar.Rejected()
		}
		if d, ok := m.(interface{ Divergences() int }); ok {
			st.Divergences = d.Divergences()
		}
		out = append(out, st)
	}

	return out
}
