package hmc

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/montemc/monte/model"
	"github.com/montemc/monte/step"
)

// NUTS is the no-U-turn sampler: Hamiltonian trajectories whose length
// is chosen per step by doubling a binary tree of leapfrog states until
// the path turns back on itself or the energy error diverges. Step
// size adapts by dual averaging while tuning is on; there is nothing
// else to tune.
type NUTS struct {
	m    *model.Model
	vars []model.NodeID
	view *model.View

	target *Target
	pot    Potential
	rng    *rand.Rand

	eps      float64
	epsMark  float64
	maxDepth int
	adapter  *stepAdapter
	frozen   bool

	accepted, rejected int
	divergences        int
}

// NewNUTS builds a no-U-turn method over a block of unobserved
// continuous variables.
func NewNUTS(m *model.Model, vars []model.NodeID, opts ...Option) (*NUTS, error) {
	if m == nil {
		return nil, fmt.Errorf("NewNUTS: %w", ErrNilModel)
	}
	if len(vars) == 0 {
		return nil, fmt.Errorf("NewNUTS: %w", ErrBadDim)
	}

	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	if c.maxDepth < 1 {
		c.maxDepth = defaultMaxDepth
	}

	view, err := m.View(vars...)
	if err != nil {
		return nil, fmt.Errorf("NewNUTS: %w", err)
	}
	target, err := NewModelTarget(m, view)
	if err != nil {
		return nil, fmt.Errorf("NewNUTS: %w", err)
	}
	if c.pot == nil {
		if c.pot, err = NewDiagPotential(target.Dim, nil); err != nil {
			return nil, fmt.Errorf("NewNUTS: %w", err)
		}
	}
	if c.rng == nil {
		c.rng = model.DeriveRNG(m.RNG(), uint64(vars[0]))
	}

	eps := c.initialStep(target.Dim)
	if !(eps > 0) {
		return nil, fmt.Errorf("NewNUTS: %w", ErrBadStepSize)
	}

	return &NUTS{
		m:        m,
		vars:     append([]model.NodeID(nil), vars...),
		view:     view,
		target:   target,
		pot:      c.pot,
		rng:      c.rng,
		eps:      eps,
		epsMark:  eps,
		maxDepth: c.maxDepth,
		adapter:  newStepAdapter(eps, c.targetAccept),
	}, nil
}

// NUTSCandidate returns the assignment-pass entry for NUTS: Ideal for
// continuous variables, taken as one block.
func NUTSCandidate() step.Candidate {
	return step.Candidate{
		Name:    "nuts",
		Blocked: true,
		Competence: func(m *model.Model, v model.NodeID) step.Competence {
			if m.DtypeOf(v) == model.Continuous && !m.Observed(v) {
				return step.Ideal
			}

			return step.Incompatible
		},
		New: func(m *model.Model, vars []model.NodeID) (step.Method, error) {
			return NewNUTS(m, vars)
		},
	}
}

// Variables implements Method.
func (n *NUTS) Variables() []model.NodeID {
	return append([]model.NodeID(nil), n.vars...)
}

// tree is one subtree of the doubling procedure: its two endpoints in
// trajectory time, a proposal drawn uniformly from its valid states,
// and the bookkeeping the outer loop folds together.
type tree struct {
	minus, plus point
	proposal    point
	n           int
	s           bool
	alpha       float64
	nAlpha      int
	div         int
}

// Step implements Method: one trajectory grown by doubling.
func (n *NUTS) Step() error {
	start := newPoint(n.target, n.pot, n.view.Get(), n.pot.Sample(n.rng))

	// Slice variable u ~ Uniform(0, exp(-E0)), kept in log space
	// relative to the start energy.
	logu := math.Log(n.rng.Float64())

	minus, plus, proposal := start, start, start
	nValid := 1
	moved := false
	var alphaSum float64
	var nAlpha int

	for depth := 0; depth < n.maxDepth; depth++ {
		var sub tree
		if n.rng.Float64() < 0.5 {
			sub = n.buildTree(minus, logu, -1, depth, start.energy)
			minus = sub.minus
		} else {
			sub = n.buildTree(plus, logu, +1, depth, start.energy)
			plus = sub.plus
		}
		alphaSum += sub.alpha
		nAlpha += sub.nAlpha
		n.divergences += sub.div

		if !sub.s {
			break
		}
		if sub.n > 0 && n.rng.Float64() < math.Min(1, float64(sub.n)/float64(nValid)) {
			proposal = sub.proposal
			moved = true
		}
		nValid += sub.n
		if !n.noUturn(minus, plus) {
			break
		}
	}

	if moved {
		if err := n.view.Set(proposal.q); err != nil {
			return fmt.Errorf("NUTS.Step: %w", err)
		}
		n.accepted++
	} else {
		n.rejected++
	}

	if !n.frozen && nAlpha > 0 {
		n.eps = n.adapter.update(alphaSum / float64(nAlpha))
	}

	return nil
}

// buildTree grows a subtree of 2^depth leapfrog states in direction
// dir from the given endpoint.
func (n *NUTS) buildTree(from point, logu, dir float64, depth int, e0 float64) tree {
	if depth == 0 {
		pt := leapfrog(n.target, n.pot, from, dir*n.eps)
		dE := pt.energy - e0
		if math.IsNaN(dE) {
			dE = math.Inf(1)
		}

		tr := tree{
			minus:    pt,
			plus:     pt,
			proposal: pt,
			s:        logu+dE < deltaMax,
			alpha:    math.Min(1, math.Exp(-dE)),
			nAlpha:   1,
		}
		if logu+dE <= 0 {
			tr.n = 1
		}
		if !tr.s {
			tr.div = 1
		}

		return tr
	}

	t1 := n.buildTree(from, logu, dir, depth-1, e0)
	if !t1.s {
		return t1
	}

	var t2 tree
	if dir < 0 {
		t2 = n.buildTree(t1.minus, logu, dir, depth-1, e0)
		t1.minus = t2.minus
	} else {
		t2 = n.buildTree(t1.plus, logu, dir, depth-1, e0)
		t1.plus = t2.plus
	}

	if t2.n > 0 && n.rng.Float64() < float64(t2.n)/float64(t1.n+t2.n) {
		t1.proposal = t2.proposal
	}
	t1.n += t2.n
	t1.s = t2.s && n.noUturn(t1.minus, t1.plus)
	t1.alpha += t2.alpha
	t1.nAlpha += t2.nAlpha
	t1.div += t2.div

	return t1
}

// noUturn reports whether the trajectory spanning the two endpoints is
// still expanding in both directions.
func (n *NUTS) noUturn(minus, plus point) bool {
	span := make([]float64, len(plus.q))
	floats.SubTo(span, plus.q, minus.q)

	v := make([]float64, len(span))
	n.pot.Velocity(v, minus.p)
	if floats.Dot(span, v) < 0 {
		return false
	}
	n.pot.Velocity(v, plus.p)

	return floats.Dot(span, v) >= 0
}

// Tune implements Method: reports whether dual averaging moved the
// step size since the previous Tune.
func (n *NUTS) Tune() bool {
	if n.frozen || n.eps == n.epsMark {
		return false
	}
	n.epsMark = n.eps

	return true
}

// StopTuning implements Method: freezes the step size at the
// iterate-averaged value. Idempotent.
func (n *NUTS) StopTuning() {
	if n.frozen {
		return
	}
	n.frozen = true
	n.eps = n.adapter.frozen()
}

// StepSize returns the current leapfrog step size.
func (n *NUTS) StepSize() float64 { return n.eps }

// Divergences returns the cumulative count of divergent subtrees.
func (n *NUTS) Divergences() int { return n.divergences }

// Accepted implements AcceptanceReporter.
func (n *NUTS) Accepted() int { return n.accepted }

// Rejected implements AcceptanceReporter.
func (n *NUTS) Rejected() int { return n.rejected }
