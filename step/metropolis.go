package step

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/montemc/monte/model"
)

// Metropolis performs symmetric random-walk Metropolis transitions for
// one stochastic variable (scalar or array valued).
//
// Each Step reads the variable's blanket log-probability (its own
// log-density plus those of its likelihood children), perturbs the
// value by scaled proposal deviates — rounded to integers for discrete
// variables — re-reads the blanket, and accepts with probability
// min(1, exp(Δlogp)). A candidate with no finite log-probability is
// rejected unconditionally and the previous value restored.
type Metropolis struct {
	m       *model.Model
	v       model.NodeID
	blanket []model.NodeID

	prop     Proposal
	scaling  float64
	discrete bool
	rng      *rand.Rand

	// interval counters reset by Tune; totals survive for diagnostics.
	accepted, rejected           int
	totalAccepted, totalRejected int
	frozen                       bool
}

// MetropolisOption configures a Metropolis method at construction.
type MetropolisOption func(*Metropolis)

// WithProposal replaces the default Normal proposal.
func WithProposal(p Proposal) MetropolisOption {
	return func(mt *Metropolis) { mt.prop = p }
}

// WithScaling sets the initial proposal scaling (default 1).
func WithScaling(s float64) MetropolisOption {
	return func(mt *Metropolis) { mt.scaling = s }
}

// WithRNG replaces the method's derived random stream.
func WithRNG(rng *rand.Rand) MetropolisOption {
	return func(mt *Metropolis) { mt.rng = rng }
}

// NewMetropolis builds a Metropolis method for one variable. The
// blanket — the set of log-probabilities a value change can affect —
// is resolved once here and reused every step.
func NewMetropolis(m *model.Model, v model.NodeID, opts ...MetropolisOption) (*Metropolis, error) {
	if m == nil {
		return nil, fmt.Errorf("NewMetropolis: %w", ErrNilModel)
	}

	mt := &Metropolis{
		m:        m,
		v:        v,
		blanket:  append([]model.NodeID{v}, m.LikelihoodChildren(v)...),
		scaling:  1,
		discrete: m.DtypeOf(v) != model.Continuous,
		rng:      methodRNG(m, v),
	}
	for _, opt := range opts {
		opt(mt)
	}
	if mt.prop == nil {
		mt.prop = NewNormalProposal(mt.rng)
	}
	if !(mt.scaling > 0) {
		return nil, fmt.Errorf("NewMetropolis: node %q: %w", m.Name(v), ErrBadScaling)
	}

	return mt, nil
}

// MetropolisCandidate returns the assignment-pass entry for Metropolis:
// Preferred for discrete variables, Compatible for everything else.
func MetropolisCandidate() Candidate {
	return Candidate{
		Name: "metropolis",
		Competence: func(m *model.Model, v model.NodeID) Competence {
			if m.DtypeOf(v) == model.Discrete {
				return Preferred
			}

			return Compatible
		},
		New: func(m *model.Model, vars []model.NodeID) (Method, error) {
			return NewMetropolis(m, vars[0])
		},
	}
}

// Variables implements Method.
func (mt *Metropolis) Variables() []model.NodeID { return []model.NodeID{mt.v} }

// blanketLogp sums the log-probabilities the variable can influence.
// Lazy caches make the second read of an unchanged node free.
func (mt *Metropolis) blanketLogp() float64 {
	var lp float64
	for _, id := range mt.blanket {
		l := mt.m.Logp(id)
		if model.IsZeroProbability(l) {
			return math.Inf(-1)
		}
		lp += l
	}

	return lp
}

// Step implements Method: one full Idle → Proposed → Accepted/Rejected
// transition. Never returns a non-nil error in normal operation.
func (mt *Metropolis) Step() error {
	logp0 := mt.blanketLogp()

	cur := mt.m.Value(mt.v)
	delta := make([]float64, len(cur))
	mt.prop.Sample(delta)

	cand := cur // Value returns a copy; mutate in place.
	for i := range cand {
		d := delta[i] * mt.scaling
		if mt.discrete {
			d = math.Round(d)
		}
		cand[i] += d
	}
	if err := mt.m.SetValue(mt.v, cand); err != nil {
		return fmt.Errorf("Metropolis.Step: %w", err)
	}

	logp1 := mt.blanketLogp()

	// Zero-probability candidates reject unconditionally; otherwise the
	// usual symmetric Metropolis ratio.
	if model.IsZeroProbability(logp1) || math.Log(mt.rng.Float64()) >= logp1-logp0 {
		mt.m.Revert(mt.v)
		mt.rejected++
		mt.totalRejected++

		return nil
	}

	mt.accepted++
	mt.totalAccepted++

	return nil
}

// Tune adjusts the proposal scaling from the acceptance rate over the
// interval since the previous Tune, then resets the interval counters.
// Returns whether the scaling actually changed. Frozen methods no-op.
func (mt *Metropolis) Tune() bool {
	if mt.frozen {
		return false
	}
	total := mt.accepted + mt.rejected
	if total == 0 {
		return false
	}
	rate := float64(mt.accepted) / float64(total)
	mt.accepted, mt.rejected = 0, 0

	next := tuneScaling(mt.scaling, rate)
	if next == mt.scaling {
		return false
	}
	mt.scaling = next

	return true
}

// StopTuning implements Method; the freeze is permanent and idempotent.
func (mt *Metropolis) StopTuning() { mt.frozen = true }

// Scaling returns the current proposal scaling factor.
func (mt *Metropolis) Scaling() float64 { return mt.scaling }

// Accepted implements AcceptanceReporter.
func (mt *Metropolis) Accepted() int { return mt.totalAccepted }

// Rejected implements AcceptanceReporter.
func (mt *Metropolis) Rejected() int { return mt.totalRejected }

// tuneScaling applies the classic acceptance-rate schedule:
//
//	Rate      Scaling adaptation
//	----      ------------------
//	<0.001         x 0.1
//	<0.05          x 0.5
//	<0.2           x 0.9
//	>0.5           x 1.1
//	>0.75          x 2
//	>0.95          x 10
//
// The thresholds and factors are empirical constants preserved exactly;
// convergence behavior depends on them.
func tuneScaling(scale, rate float64) float64 {
	switch {
	case rate < 0.001:
		return scale * 0.1
	case rate < 0.05:
		return scale * 0.5
	case rate < 0.2:
		return scale * 0.9
	case rate > 0.95:
		return scale * 10.0
	case rate > 0.75:
		return scale * 2.0
	case rate > 0.5:
		return scale * 1.1
	}

	return scale
}
