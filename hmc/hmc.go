package hmc

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/montemc/monte/model"
	"github.com/montemc/monte/step"
)

// config collects the knobs shared by the gradient samplers.
type config struct {
	stepSize     float64 // 0 means auto: stepScale / dim^(1/4)
	stepScale    float64
	pathLength   float64
	maxDepth     int
	targetAccept float64
	pot          Potential
	rng          *rand.Rand
}

// Option configures a gradient sampler at construction.
type Option func(*config)

// WithStepSize fixes the initial leapfrog step size instead of the
// dimension-scaled default.
func WithStepSize(eps float64) Option { return func(c *config) { c.stepSize = eps } }

// WithPathLength sets the fixed HMC trajectory length (default 2).
func WithPathLength(l float64) Option { return func(c *config) { c.pathLength = l } }

// WithMaxDepth caps NUTS tree doubling (default 10).
func WithMaxDepth(d int) Option { return func(c *config) { c.maxDepth = d } }

// WithTargetAccept sets the step-size adaptation target (default 0.8).
func WithTargetAccept(a float64) Option { return func(c *config) { c.targetAccept = a } }

// WithPotential replaces the identity diagonal mass matrix.
func WithPotential(p Potential) Option { return func(c *config) { c.pot = p } }

// WithRNG replaces the sampler's derived random stream.
func WithRNG(rng *rand.Rand) Option { return func(c *config) { c.rng = rng } }

func defaultConfig() config {
	return config{
		stepScale:    defaultStepScale,
		pathLength:   defaultPathLength,
		maxDepth:     defaultMaxDepth,
		targetAccept: defaultTargetAccept,
	}
}

// initialStep resolves the starting step size for dimension dim.
func (c *config) initialStep(dim int) float64 {
	if c.stepSize > 0 {
		return c.stepSize
	}

	return c.stepScale / math.Pow(float64(dim), 0.25)
}

// HamiltonianMC updates a block of continuous variables with
// fixed-path-length Hamiltonian trajectories: sample a momentum, run
// the leapfrog integrator for pathLength/stepSize steps, and accept by
// the energy difference. Step size adapts by dual averaging while
// tuning is on.
type HamiltonianMC struct {
	m    *model.Model
	vars []model.NodeID
	view *model.View

	target *Target
	pot    Potential
	rng    *rand.Rand

	eps        float64
	epsMark    float64
	pathLength float64
	adapter    *stepAdapter
	frozen     bool

	accepted, rejected int
}

// NewHamiltonianMC builds an HMC method over a block of unobserved
// continuous variables.
func NewHamiltonianMC(m *model.Model, vars []model.NodeID, opts ...Option) (*HamiltonianMC, error) {
	if m == nil {
		return nil, fmt.Errorf("NewHamiltonianMC: %w", ErrNilModel)
	}
	if len(vars) == 0 {
		return nil, fmt.Errorf("NewHamiltonianMC: %w", ErrBadDim)
	}

	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	if !(c.pathLength > 0) {
		return nil, fmt.Errorf("NewHamiltonianMC: %w", ErrBadPathLength)
	}

	view, err := m.View(vars...)
	if err != nil {
		return nil, fmt.Errorf("NewHamiltonianMC: %w", err)
	}
	target, err := NewModelTarget(m, view)
	if err != nil {
		return nil, fmt.Errorf("NewHamiltonianMC: %w", err)
	}
	if c.pot == nil {
		if c.pot, err = NewDiagPotential(target.Dim, nil); err != nil {
			return nil, fmt.Errorf("NewHamiltonianMC: %w", err)
		}
	}
	if c.rng == nil {
		c.rng = model.DeriveRNG(m.RNG(), uint64(vars[0]))
	}

	eps := c.initialStep(target.Dim)
	if !(eps > 0) {
		return nil, fmt.Errorf("NewHamiltonianMC: %w", ErrBadStepSize)
	}

	return &HamiltonianMC{
		m:          m,
		vars:       append([]model.NodeID(nil), vars...),
		view:       view,
		target:     target,
		pot:        c.pot,
		rng:        c.rng,
		eps:        eps,
		epsMark:    eps,
		pathLength: c.pathLength,
		adapter:    newStepAdapter(eps, c.targetAccept),
	}, nil
}

// HamiltonianCandidate returns the assignment-pass entry for HMC:
// Preferred for continuous variables, taken as one block.
func HamiltonianCandidate() step.Candidate {
	return step.Candidate{
		Name:    "hamiltonian",
		Blocked: true,
		Competence: func(m *model.Model, v model.NodeID) step.Competence {
			if m.DtypeOf(v) == model.Continuous && !m.Observed(v) {
				return step.Preferred
			}

			return step.Incompatible
		},
		New: func(m *model.Model, vars []model.NodeID) (step.Method, error) {
			return NewHamiltonianMC(m, vars)
		},
	}
}

// Variables implements Method.
func (h *HamiltonianMC) Variables() []model.NodeID {
	return append([]model.NodeID(nil), h.vars...)
}

// Step implements Method: one full trajectory.
func (h *HamiltonianMC) Step() error {
	// Jittering the step size breaks resonance with the target's
	// length scales.
	eps := h.eps * (0.85 + 0.3*h.rng.Float64())
	steps := int(h.pathLength / h.eps)
	if steps < 1 {
		steps = 1
	}

	start := newPoint(h.target, h.pot, h.view.Get(), h.pot.Sample(h.rng))
	end := start
	for i := 0; i < steps; i++ {
		end = leapfrog(h.target, h.pot, end, eps)
	}

	// Negating the final momentum makes the proposal its own inverse.
	// Kinetic energy is even in p, so the acceptance ratio is unchanged.
	for i := range end.p {
		end.p[i] = -end.p[i]
	}

	alpha := acceptProb(start.energy - end.energy)
	if h.rng.Float64() < alpha {
		if err := h.view.Set(end.q); err != nil {
			return fmt.Errorf("HamiltonianMC.Step: %w", err)
		}
		h.accepted++
	} else {
		h.rejected++
	}

	if !h.frozen {
		h.eps = h.adapter.update(alpha)
	}

	return nil
}

// acceptProb maps an energy difference to min(1, exp(dE)), treating
// any non-finite trajectory as certain rejection.
func acceptProb(dE float64) float64 {
	if math.IsNaN(dE) || math.IsInf(dE, -1) {
		return 0
	}
	if dE >= 0 {
		return 1
	}

	return math.Exp(dE)
}

// Tune implements Method: reports whether dual averaging moved the
// step size since the previous Tune.
func (h *HamiltonianMC) Tune() bool {
	if h.frozen || h.eps == h.epsMark {
		return false
	}
	h.epsMark = h.eps

	return true
}

// StopTuning implements Method: freezes the step size at the
// iterate-averaged value. Idempotent.
func (h *HamiltonianMC) StopTuning() {
	if h.frozen {
		return
	}
	h.frozen = true
	h.eps = h.adapter.frozen()
}

// StepSize returns the current leapfrog step size.
func (h *HamiltonianMC) StepSize() float64 { return h.eps }

// Accepted implements AcceptanceReporter.
func (h *HamiltonianMC) Accepted() int { return h.accepted }

// Rejected implements AcceptanceReporter.
func (h *HamiltonianMC) Rejected() int { return h.rejected }
