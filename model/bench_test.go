package model_test

import (
	"testing"

	"github.com/montemc/monte/model"
)

// benchModel builds a prior -> deterministic -> likelihood chain.
func benchModel(b *testing.B) *model.Model {
	b.Helper()
	m, err := model.NewBuilder().
		Stochastic(model.StochasticSpec{Name: "mu", Logp: flatLogp, Value: model.Scalar(0)}).
		Deterministic(model.DeterministicSpec{
			Name:    "link",
			Parents: model.Parents{model.NodeParent("x", "mu")},
			Eval: func(p model.ParentValues) model.Value {
				return model.Scalar(2 * p["x"].Scalar())
			},
		}).
		Stochastic(model.StochasticSpec{
			Name:    "y",
			Parents: model.Parents{model.NodeParent("mu", "link")},
			Logp: func(v model.Value, p model.ParentValues) float64 {
				d := v.Scalar() - p["mu"].Scalar()

				return -0.5 * d * d
			},
			Value:    model.Scalar(1),
			Observed: true,
		}).
		Build()
	if err != nil {
		b.Fatal(err)
	}

	return m
}

// BenchmarkLogpTotal_CacheHit measures the steady-state read path.
func BenchmarkLogpTotal_CacheHit(b *testing.B) {
	m := benchModel(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.LogpTotal()
	}
}

// BenchmarkLogpTotal_Mutating measures the recompute path of a
// propose/evaluate cycle.
func BenchmarkLogpTotal_Mutating(b *testing.B) {
	m := benchModel(b)
	mu, _ := m.ByName("mu")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.SetValue(mu, model.Scalar(float64(i%7)))
		_ = m.LogpTotal()
	}
}
