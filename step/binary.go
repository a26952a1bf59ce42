package step

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/montemc/monte/model"
)

// BinaryMetropolis is a Metropolis variant for {0,1}-valued variables:
// instead of adding deviates, it flips each component independently
// with probability 1 - 0.5^scaling, so tuning the scaling trades flip
// aggressiveness against acceptance.
type BinaryMetropolis struct {
	m       *model.Model
	v       model.NodeID
	blanket []model.NodeID

	scaling float64
	rng     *rand.Rand

	accepted, rejected           int
	totalAccepted, totalRejected int
	frozen                       bool
}

// NewBinaryMetropolis builds a flip sampler for one binary variable.
func NewBinaryMetropolis(m *model.Model, v model.NodeID) (*BinaryMetropolis, error) {
	if m == nil {
		return nil, fmt.Errorf("NewBinaryMetropolis: %w", ErrNilModel)
	}
	if m.DtypeOf(v) != model.Binary {
		return nil, fmt.Errorf("NewBinaryMetropolis: node %q: %w", m.Name(v), ErrNotBinary)
	}

	return &BinaryMetropolis{
		m:       m,
		v:       v,
		blanket: append([]model.NodeID{v}, m.LikelihoodChildren(v)...),
		scaling: 1,
		rng:     methodRNG(m, v),
	}, nil
}

// BinaryMetropolisCandidate returns the assignment-pass entry:
// Ideal for binary variables, Incompatible for everything else.
func BinaryMetropolisCandidate() Candidate {
	return Candidate{
		Name: "binary-metropolis",
		Competence: func(m *model.Model, v model.NodeID) Competence {
			if m.DtypeOf(v) == model.Binary {
				return Ideal
			}

			return Incompatible
		},
		New: func(m *model.Model, vars []model.NodeID) (Method, error) {
			return NewBinaryMetropolis(m, vars[0])
		},
	}
}

// Variables implements Method.
func (bm *BinaryMetropolis) Variables() []model.NodeID { return []model.NodeID{bm.v} }

func (bm *BinaryMetropolis) blanketLogp() float64 {
	var lp float64
	for _, id := range bm.blanket {
		l := bm.m.Logp(id)
		if model.IsZeroProbability(l) {
			return math.Inf(-1)
		}
		lp += l
	}

	return lp
}

// Step implements Method: flip components, then accept or reject.
func (bm *BinaryMetropolis) Step() error {
	logp0 := bm.blanketLogp()

	pFlip := 1 - math.Pow(0.5, bm.scaling)
	cand := bm.m.Value(bm.v)
	changed := false
	for i := range cand {
		if bm.rng.Float64() < pFlip {
			cand[i] = 1 - cand[i]
			changed = true
		}
	}
	if !changed {
		// Identity proposal: trivially accepted, counters untouched.
		return nil
	}
	if err := bm.m.SetValue(bm.v, cand); err != nil {
		return fmt.Errorf("BinaryMetropolis.Step: %w", err)
	}

	logp1 := bm.blanketLogp()
	if model.IsZeroProbability(logp1) || math.Log(bm.rng.Float64()) >= logp1-logp0 {
		bm.m.Revert(bm.v)
		bm.rejected++
		bm.totalRejected++

		return nil
	}

	bm.accepted++
	bm.totalAccepted++

	return nil
}

// Tune adjusts scaling by the same schedule as Metropolis.
func (bm *BinaryMetropolis) Tune() bool {
	if bm.frozen {
		return false
	}
	total := bm.accepted + bm.rejected
	if total == 0 {
		return false
	}
	rate := float64(bm.accepted) / float64(total)
	bm.accepted, bm.rejected = 0, 0

	next := tuneScaling(bm.scaling, rate)
	if next == bm.scaling {
		return false
	}
	bm.scaling = next

	return true
}

// StopTuning implements Method.
func (bm *BinaryMetropolis) StopTuning() { bm.frozen = true }

// Scaling returns the current flip scaling factor.
func (bm *BinaryMetropolis) Scaling() float64 { return bm.scaling }

// Accepted implements AcceptanceReporter.
func (bm *BinaryMetropolis) Accepted() int { return bm.totalAccepted }

// Rejected implements AcceptanceReporter.
func (bm *BinaryMetropolis) Rejected() int { return bm.totalRejected }
