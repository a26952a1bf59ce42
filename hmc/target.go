package hmc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/montemc/monte/model"
)

// Target is the unconstrained differentiable density a gradient
// sampler explores: a joint log-probability over a flat position
// vector, plus its gradient.
//
// Grad fills dst with the gradient at q. A nil Grad falls back to
// central finite differences on Logp.
type Target struct {
	Dim  int
	Logp func(q []float64) float64
	Grad func(dst, q []float64)
}

// gradient evaluates Grad, or the finite-difference fallback, into dst.
func (t *Target) gradient(dst, q []float64) {
	if t.Grad != nil {
		t.Grad(dst, q)

		return
	}
	fd.Gradient(dst, t.Logp, q, nil)
}

// NewModelTarget adapts a model view into a Target. Logp evaluates the
// joint density of the whole model at the view's position, returning
// -Inf for zero-probability positions; the view is always reverted to
// the pre-call position so evaluation has no side effects.
func NewModelTarget(m *model.Model, view *model.View) (*Target, error) {
	if m == nil {
		return nil, fmt.Errorf("NewModelTarget: %w", ErrNilModel)
	}
	if view == nil || view.Dim() == 0 {
		return nil, fmt.Errorf("NewModelTarget: %w", ErrBadDim)
	}

	logp := func(q []float64) float64 {
		if err := view.Set(q); err != nil {
			return math.Inf(-1)
		}
		lp := m.LogpTotal()
		view.Revert()

		return lp
	}

	return &Target{Dim: view.Dim(), Logp: logp}, nil
}
