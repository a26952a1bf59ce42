package step

import (
	"fmt"
	"math/rand"

	"github.com/montemc/monte/model"
)

// ConditionalKernel draws an exact sample from a variable's full
// conditional distribution given its current parent values. Supplying
// one is the caller's proof that the conditional is tractable; the
// engine cannot derive it.
type ConditionalKernel func(rng *rand.Rand, parents model.ParentValues) model.Value

// Gibbs updates one variable by exact conditional sampling: every Step
// draws from the kernel and accepts unconditionally. It is never
// auto-assigned — exact conditionals exist only where the caller says so.
type Gibbs struct {
	m      *model.Model
	v      model.NodeID
	kernel ConditionalKernel
	rng    *rand.Rand
	steps  int
}

// NewGibbs builds an exact-conditional sampler for one variable.
func NewGibbs(m *model.Model, v model.NodeID, kernel ConditionalKernel) (*Gibbs, error) {
	if m == nil {
		return nil, fmt.Errorf("NewGibbs: %w", ErrNilModel)
	}
	if kernel == nil {
		return nil, fmt.Errorf("NewGibbs: node %q: %w", m.Name(v), ErrNilKernel)
	}

	return &Gibbs{m: m, v: v, kernel: kernel, rng: methodRNG(m, v)}, nil
}

// Variables implements Method.
func (g *Gibbs) Variables() []model.NodeID { return []model.NodeID{g.v} }

// Step implements Method: draw from the conditional, always accept.
func (g *Gibbs) Step() error {
	v := g.kernel(g.rng, g.m.ParentValues(g.v))
	if err := g.m.SetValue(g.v, v); err != nil {
		return fmt.Errorf("Gibbs.Step: %w", err)
	}
	g.steps++

	return nil
}

// Tune implements Method; exact samplers have nothing to adapt.
func (g *Gibbs) Tune() bool { return false }

// StopTuning implements Method.
func (g *Gibbs) StopTuning() {}

// Accepted implements AcceptanceReporter; every Gibbs draw is accepted.
func (g *Gibbs) Accepted() int { return g.steps }

// Rejected implements AcceptanceReporter.
func (g *Gibbs) Rejected() int { return 0 }
