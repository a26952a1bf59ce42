package model_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montemc/monte/model"
)

// flatLogp is a density that accepts everything with logp 0.
func flatLogp(_ model.Value, _ model.ParentValues) float64 { return 0 }

// normalLogp is an unnormalized N(mu, 1) log-density reading parent "mu".
func normalLogp(v model.Value, p model.ParentValues) float64 {
	d := v.Scalar() - p["mu"].Scalar()

	return -0.5 * d * d
}

// TestBuilder_Validation exercises the fatal construction errors.
func TestBuilder_Validation(t *testing.T) {
	_, err := model.NewBuilder().
		Stochastic(model.StochasticSpec{Name: "", Logp: flatLogp, Value: model.Scalar(0)}).
		Build()
	assert.ErrorIs(t, err, model.ErrEmptyName, "empty name must fail")

	_, err = model.NewBuilder().
		Stochastic(model.StochasticSpec{Name: "a", Logp: flatLogp, Value: model.Scalar(0)}).
		Stochastic(model.StochasticSpec{Name: "a", Logp: flatLogp, Value: model.Scalar(0)}).
		Build()
	assert.ErrorIs(t, err, model.ErrDuplicateName, "duplicate name must fail")

	_, err = model.NewBuilder().
		Stochastic(model.StochasticSpec{Name: "a", Value: model.Scalar(0)}).
		Build()
	assert.ErrorIs(t, err, model.ErrNilFunc, "stochastic without Logp must fail")

	_, err = model.NewBuilder().
		Stochastic(model.StochasticSpec{Name: "a", Logp: flatLogp}).
		Build()
	assert.ErrorIs(t, err, model.ErrNoInitialValue, "no value and no Random must fail")

	_, err = model.NewBuilder().
		Stochastic(model.StochasticSpec{
			Name: "a", Logp: flatLogp, Value: model.Scalar(0),
			Parents: model.Parents{model.NodeParent("mu", "ghost")},
		}).
		Build()
	assert.ErrorIs(t, err, model.ErrUnknownParent, "dangling parent reference must fail")
}

// TestBuilder_CycleDetection ensures Build refuses non-DAG edge sets.
func TestBuilder_CycleDetection(t *testing.T) {
	_, err := model.NewBuilder().
		Stochastic(model.StochasticSpec{
			Name: "a", Logp: flatLogp, Value: model.Scalar(0),
			Parents: model.Parents{model.NodeParent("mu", "b")},
		}).
		Stochastic(model.StochasticSpec{
			Name: "b", Logp: flatLogp, Value: model.Scalar(0),
			Parents: model.Parents{model.NodeParent("mu", "a")},
		}).
		Build()
	assert.ErrorIs(t, err, model.ErrCycle, "a<->b must be rejected")
}

// TestBuilder_InitialDraw verifies initial values are drawn from Random
// in dependency order, deterministically for a fixed seed.
func TestBuilder_InitialDraw(t *testing.T) {
	draw := func(rng *rand.Rand, p model.ParentValues) model.Value {
		return model.Scalar(p["mu"].Scalar() + rng.Float64())
	}

	build := func() *model.Model {
		m, err := model.NewBuilder(model.WithSeed(7)).
			Stochastic(model.StochasticSpec{Name: "mu", Logp: flatLogp, Value: model.Scalar(10)}).
			Stochastic(model.StochasticSpec{
				Name: "x", Logp: normalLogp, Random: draw,
				Parents: model.Parents{model.NodeParent("mu", "mu")},
			}).
			Build()
		require.NoError(t, err)

		return m
	}

	m1, m2 := build(), build()
	x1, _ := m1.ByName("x")
	x2, _ := m2.ByName("x")
	assert.Equal(t, m1.Value(x1), m2.Value(x2), "same seed must give same initial draw")
	assert.GreaterOrEqual(t, m1.Value(x1).Scalar(), 10.0, "draw must have seen mu=10")
}

// TestModel_SetValueRevert covers the propose/reject value cycle and
// the observed-data guard.
func TestModel_SetValueRevert(t *testing.T) {
	m, err := model.NewBuilder().
		Stochastic(model.StochasticSpec{Name: "a", Logp: flatLogp, Value: model.Scalar(1)}).
		Stochastic(model.StochasticSpec{Name: "d", Logp: flatLogp, Value: model.Scalar(5), Observed: true}).
		Build()
	require.NoError(t, err)

	a, _ := m.ByName("a")
	d, _ := m.ByName("d")

	require.NoError(t, m.SetValue(a, model.Scalar(2)))
	assert.Equal(t, 2.0, m.Value(a).Scalar())

	m.Revert(a)
	assert.Equal(t, 1.0, m.Value(a).Scalar(), "Revert must restore the prior value")

	err = m.SetValue(d, model.Scalar(0))
	assert.ErrorIs(t, err, model.ErrObservedValue, "observed data must refuse SetValue")
}

// TestModel_DiscreteRounding ensures discrete and binary values stay integral.
func TestModel_DiscreteRounding(t *testing.T) {
	m, err := model.NewBuilder().
		Stochastic(model.StochasticSpec{Name: "k", Dtype: model.Discrete, Logp: flatLogp, Value: model.Scalar(3)}).
		Build()
	require.NoError(t, err)

	k, _ := m.ByName("k")
	require.NoError(t, m.SetValue(k, model.Scalar(4.4)))
	assert.Equal(t, 4.0, m.Value(k).Scalar(), "discrete values must round")
}

// TestModel_LogpTotalAndCheck verifies joint logp aggregation and the
// fatal zero-probability check.
func TestModel_LogpTotalAndCheck(t *testing.T) {
	halfLife := func(_ model.Value, p model.ParentValues) float64 {
		if p["x"].Scalar() < 0 {
			return math.Inf(-1)
		}

		return -1.5
	}

	m, err := model.NewBuilder().
		Stochastic(model.StochasticSpec{Name: "x", Logp: func(v model.Value, _ model.ParentValues) float64 {
			return -v.Scalar() * v.Scalar()
		}, Value: model.Scalar(2)}).
		Potential(model.PotentialSpec{
			Name:    "pot",
			Parents: model.Parents{model.NodeParent("x", "x")},
			Logp:    halfLife,
		}).
		Build()
	require.NoError(t, err)

	assert.InDelta(t, -4.0-1.5, m.LogpTotal(), 1e-12, "joint logp sums stochastics and potentials")
	require.NoError(t, m.CheckLogp())

	x, _ := m.ByName("x")
	require.NoError(t, m.SetValue(x, model.Scalar(-1)))
	assert.True(t, math.IsInf(m.LogpTotal(), -1), "impossible point makes the joint -Inf")
	assert.ErrorIs(t, m.CheckLogp(), model.ErrZeroProbability, "CheckLogp must name the violation")
}

// TestModel_Draw exercises RandomFunc redraws and their guards.
func TestModel_Draw(t *testing.T) {
	m, err := model.NewBuilder(model.WithSeed(3)).
		Stochastic(model.StochasticSpec{
			Name: "x", Logp: flatLogp,
			Random: func(rng *rand.Rand, _ model.ParentValues) model.Value {
				return model.Scalar(rng.NormFloat64())
			},
		}).
		Stochastic(model.StochasticSpec{Name: "fixed", Logp: flatLogp, Value: model.Scalar(1)}).
		Build()
	require.NoError(t, err)

	x, _ := m.ByName("x")
	before := m.Value(x)
	v, err := m.Draw(x)
	require.NoError(t, err)
	assert.Equal(t, v, m.Value(x), "Draw must store what it returns")
	assert.NotEqual(t, before, v, "a fresh draw should move the value")

	fixed, _ := m.ByName("fixed")
	_, err = m.Draw(fixed)
	assert.ErrorIs(t, err, model.ErrNoRandomFunc)
}

// TestModel_LikelihoodChildren checks the Markov-blanket walk: stochastic
// children reachable through deterministics only.
func TestModel_LikelihoodChildren(t *testing.T) {
	double := func(p model.ParentValues) model.Value {
		return model.Scalar(2 * p["x"].Scalar())
	}

	m, err := model.NewBuilder().
		Stochastic(model.StochasticSpec{Name: "theta", Logp: flatLogp, Value: model.Scalar(0)}).
		Deterministic(model.DeterministicSpec{
			Name:    "mid",
			Parents: model.Parents{model.NodeParent("x", "theta")},
			Eval:    double,
		}).
		Stochastic(model.StochasticSpec{
			Name: "y", Logp: normalLogp, Value: model.Scalar(0),
			Parents: model.Parents{model.NodeParent("mu", "mid")},
		}).
		Stochastic(model.StochasticSpec{
			Name: "z", Logp: normalLogp, Value: model.Scalar(0),
			Parents: model.Parents{model.NodeParent("mu", "y")},
		}).
		Build()
	require.NoError(t, err)

	theta, _ := m.ByName("theta")
	y, _ := m.ByName("y")

	got := m.LikelihoodChildren(theta)
	assert.Equal(t, []model.NodeID{y}, got,
		"blanket passes through deterministic mid, stops at stochastic y")
}
