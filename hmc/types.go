package hmc

import (
	"errors"
	"math"
)

// Sentinel errors for gradient-based sampler construction.
var (
	// ErrNilModel indicates a constructor received a nil model.
	ErrNilModel = errors.New("hmc: nil model")

	// ErrBadDim indicates a target with a non-positive dimension.
	ErrBadDim = errors.New("hmc: dimension must be positive")

	// ErrBadStepSize indicates a non-positive leapfrog step size.
	ErrBadStepSize = errors.New("hmc: step size must be positive")

	// ErrBadPathLength indicates a non-positive trajectory length.
	ErrBadPathLength = errors.New("hmc: path length must be positive")

	// ErrBadMass indicates a mass matrix that is not positive definite.
	ErrBadMass = errors.New("hmc: mass matrix is not positive definite")
)

// Empirical constants of the trajectory and adaptation machinery.
// Sampler behavior is calibrated to these exact values.
const (
	// deltaMax bounds the energy error before a trajectory counts as
	// divergent.
	deltaMax = 1000.0

	// defaultMaxDepth caps tree doubling in the no-U-turn sampler.
	defaultMaxDepth = 10

	// defaultTargetAccept is the dual-averaging acceptance target.
	defaultTargetAccept = 0.8

	// defaultPathLength is the fixed HMC trajectory length.
	defaultPathLength = 2.0

	// defaultStepScale seeds the initial step size as scale/dim^(1/4).
	defaultStepScale = 0.25

	// Dual-averaging schedule (Hoffman & Gelman 2014, section 3.2).
	adaptGamma = 0.05
	adaptT0    = 10.0
	adaptKappa = 0.75
)

// stepAdapter runs Nesterov dual averaging on the log step size,
// pulling the empirical acceptance statistic toward the target.
type stepAdapter struct {
	target  float64
	mu      float64
	logStep float64
	logBar  float64
	hBar    float64
	count   float64
}

// newStepAdapter seeds the adapter from an initial step size.
func newStepAdapter(step0, target float64) *stepAdapter {
	return &stepAdapter{
		target:  target,
		mu:      math.Log(10 * step0),
		logStep: math.Log(step0),
		logBar:  0,
	}
}

// update folds one trajectory's acceptance statistic into the running
// averages and returns the step size for the next trajectory.
func (a *stepAdapter) update(acceptStat float64) float64 {
	a.count++
	w := 1 / (a.count + adaptT0)
	a.hBar = (1-w)*a.hBar + w*(a.target-acceptStat)
	a.logStep = a.mu - math.Sqrt(a.count)/adaptGamma*a.hBar
	m := math.Pow(a.count, -adaptKappa)
	a.logBar = m*a.logStep + (1-m)*a.logBar

	return math.Exp(a.logStep)
}

// frozen returns the iterate-averaged step size to run with after
// adaptation stops.
func (a *stepAdapter) frozen() float64 {
	if a.count == 0 {
		return math.Exp(a.logStep)
	}

	return math.Exp(a.logBar)
}
