package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montemc/monte/model"
)

// buildChain wires mu -> double(mu) -> x and returns the model plus
// call counters for the deterministic eval and the likelihood density.
func buildChain(t *testing.T) (m *model.Model, evals, logps *int) {
	t.Helper()
	evals, logps = new(int), new(int)

	mm, err := model.NewBuilder().
		Stochastic(model.StochasticSpec{Name: "mu", Logp: flatLogp, Value: model.Scalar(1)}).
		Deterministic(model.DeterministicSpec{
			Name:    "double",
			Parents: model.Parents{model.NodeParent("x", "mu")},
			Eval: func(p model.ParentValues) model.Value {
				*evals++

				return model.Scalar(2 * p["x"].Scalar())
			},
		}).
		Stochastic(model.StochasticSpec{
			Name:    "x",
			Parents: model.Parents{model.NodeParent("mu", "double")},
			Logp: func(v model.Value, p model.ParentValues) float64 {
				*logps++
				d := v.Scalar() - p["mu"].Scalar()

				return -0.5 * d * d
			},
			Value: model.Scalar(2),
		}).
		Build()
	require.NoError(t, err)

	return mm, evals, logps
}

// TestLazy_CacheHitSkipsUserFunc is the core cache-correctness property:
// two reads with unchanged parents must call the user function once.
func TestLazy_CacheHitSkipsUserFunc(t *testing.T) {
	m, evals, logps := buildChain(t)
	x, _ := m.ByName("x")
	double, _ := m.ByName("double")

	first := m.Logp(x)
	assert.Equal(t, 1, *evals, "first read computes the deterministic")
	assert.Equal(t, 1, *logps, "first read computes the density")

	second := m.Logp(x)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, *evals, "unchanged parents: eval must not run again")
	assert.Equal(t, 1, *logps, "unchanged parents: density must not run again")

	_ = m.Value(double)
	assert.Equal(t, 1, *evals, "value read rides the same cache")
}

// TestLazy_RecomputeOnParentChange verifies a mutation upstream forces
// exactly one recomputation downstream on the next read.
func TestLazy_RecomputeOnParentChange(t *testing.T) {
	m, evals, logps := buildChain(t)
	mu, _ := m.ByName("mu")
	x, _ := m.ByName("x")

	_ = m.Logp(x)
	require.NoError(t, m.SetValue(mu, model.Scalar(3)))

	lp := m.Logp(x)
	assert.Equal(t, 2, *evals, "changed ancestor: deterministic recomputes once")
	assert.Equal(t, 2, *logps, "changed ancestor: density recomputes once")
	assert.InDelta(t, -0.5*16, lp, 1e-12, "x=2 against mu'=6")

	_ = m.Logp(x)
	assert.Equal(t, 2, *evals, "steady state caches again")
}

// TestLazy_RejectionRehitsCache mimics a Metropolis propose/reject pair:
// with the default cache depth of 2, flipping a value back must re-hit
// the cache instead of recomputing.
func TestLazy_RejectionRehitsCache(t *testing.T) {
	m, evals, logps := buildChain(t)
	mu, _ := m.ByName("mu")
	x, _ := m.ByName("x")

	_ = m.Logp(x) // seed caches at mu=1
	require.NoError(t, m.SetValue(mu, model.Scalar(4)))
	_ = m.Logp(x) // candidate evaluation
	require.Equal(t, 2, *evals)
	require.Equal(t, 2, *logps)

	m.Revert(mu) // rejection
	_ = m.Logp(x)
	assert.Equal(t, 2, *evals, "restored parents must hit the depth-2 cache")
	assert.Equal(t, 2, *logps, "restored parents must hit the depth-2 cache")
}

// TestLazy_DepthEviction shows a depth-1 cache evicting the older entry,
// so the A->B->A value pattern recomputes on the flip back.
func TestLazy_DepthEviction(t *testing.T) {
	evals := 0
	m, err := model.NewBuilder().
		Stochastic(model.StochasticSpec{Name: "mu", Logp: flatLogp, Value: model.Scalar(1)}).
		Deterministic(model.DeterministicSpec{
			Name:       "f",
			CacheDepth: 1,
			Parents:    model.Parents{model.NodeParent("x", "mu")},
			Eval: func(p model.ParentValues) model.Value {
				evals++

				return model.Scalar(p["x"].Scalar() + 1)
			},
		}).
		Build()
	require.NoError(t, err)

	mu, _ := m.ByName("mu")
	f, _ := m.ByName("f")

	_ = m.Value(f)
	require.NoError(t, m.SetValue(mu, model.Scalar(2)))
	_ = m.Value(f)
	m.Revert(mu)
	_ = m.Value(f)
	assert.Equal(t, 3, evals, "depth-1 cache cannot remember two states")
}
