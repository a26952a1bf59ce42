package trace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montemc/monte/model"
	"github.com/montemc/monte/trace"
)

func flatLogp(_ model.Value, _ model.ParentValues) float64 { return 0 }

func counterModel(t *testing.T) (*model.Model, model.NodeID) {
	t.Helper()
	m, err := model.NewBuilder().
		Stochastic(model.StochasticSpec{
			Name:  "x",
			Logp:  flatLogp,
			Value: model.Scalar(0),
		}).
		Build()
	require.NoError(t, err)
	x, _ := m.ByName("x")

	return m, x
}

func TestRAM_LifecycleOrder(t *testing.T) {
	r := trace.NewRAM()

	require.ErrorIs(t, r.Tally(0), trace.ErrNotInitialized)
	require.ErrorIs(t, r.Finalize(), trace.ErrNotInitialized)
	_, err := r.Values("x", 0, 1, -1)
	require.ErrorIs(t, err, trace.ErrNotInitialized)
}

func TestRAM_RecordsSeries(t *testing.T) {
	m, x := counterModel(t)
	r := trace.NewRAM()
	require.NoError(t, r.Initialize(m, []model.NodeID{x}, 10))

	for i := 0; i < 10; i++ {
		require.NoError(t, m.SetValue(x, model.Scalar(float64(i))))
		require.NoError(t, r.Tally(i))
	}
	require.NoError(t, r.Finalize())

	vals, err := r.Values("x", 0, 1, -1)
	require.NoError(t, err)
	require.Len(t, vals, 10)
	assert.Equal(t, 0.0, vals[0].Scalar())
	assert.Equal(t, 9.0, vals[9].Scalar())

	_, err = r.Values("nope", 0, 1, -1)
	require.ErrorIs(t, err, trace.ErrUnknownVariable)
}

func TestRAM_BurnAndThin(t *testing.T) {
	m, x := counterModel(t)
	r := trace.NewRAM()
	require.NoError(t, r.Initialize(m, []model.NodeID{x}, 10))

	for i := 0; i < 10; i++ {
		require.NoError(t, m.SetValue(x, model.Scalar(float64(i))))
		require.NoError(t, r.Tally(i))
	}

	vals, err := r.Values("x", 4, 2, -1)
	require.NoError(t, err)
	require.Len(t, vals, 3)
	assert.Equal(t, 4.0, vals[0].Scalar())
	assert.Equal(t, 6.0, vals[1].Scalar())
	assert.Equal(t, 8.0, vals[2].Scalar())

	_, err = r.Values("x", 100, 1, -1)
	require.ErrorIs(t, err, trace.ErrEmptySlice)
}

func TestRAM_MultipleChains(t *testing.T) {
	m, x := counterModel(t)
	r := trace.NewRAM()

	for c := 0; c < 2; c++ {
		require.NoError(t, r.Initialize(m, []model.NodeID{x}, 3))
		for i := 0; i < 3; i++ {
			require.NoError(t, m.SetValue(x, model.Scalar(float64(10*c+i))))
			require.NoError(t, r.Tally(i))
		}
		require.NoError(t, r.Finalize())
	}
	assert.Equal(t, 2, r.Chains())

	first, err := r.Values("x", 0, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, first[0].Scalar())

	last, err := r.Values("x", 0, 1, -1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, last[0].Scalar())

	_, err = r.Values("x", 0, 1, 5)
	require.ErrorIs(t, err, trace.ErrBadChain)
}

func TestRAM_SnapshotsAreCopies(t *testing.T) {
	m, x := counterModel(t)
	r := trace.NewRAM()
	require.NoError(t, r.Initialize(m, []model.NodeID{x}, 1))

	require.NoError(t, m.SetValue(x, model.Scalar(1)))
	require.NoError(t, r.Tally(0))
	require.NoError(t, m.SetValue(x, model.Scalar(99)))

	vals, err := r.Values("x", 0, 1, -1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, vals[0].Scalar(), "later mutation must not leak into the record")

	vals[0][0] = -5
	again, err := r.Values("x", 0, 1, -1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, again[0].Scalar(), "caller mutation must not leak back")
}

func TestRAM_Summary(t *testing.T) {
	m, x := counterModel(t)
	r := trace.NewRAM()
	require.NoError(t, r.Initialize(m, []model.NodeID{x}, 5))

	for _, v := range []float64{1, 2, 3, 4, 5} {
		require.NoError(t, m.SetValue(x, model.Scalar(v)))
		require.NoError(t, r.Tally(0))
	}

	s, err := r.Summary("x", -1)
	require.NoError(t, err)
	assert.Equal(t, 5, s.N)
	assert.InDelta(t, 3.0, s.Mean[0], 1e-12)
	assert.InDelta(t, 1.5811, s.Std[0], 1e-4)
	assert.Equal(t, 1.0, s.Min[0])
	assert.Equal(t, 5.0, s.Max[0])
}
