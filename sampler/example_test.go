package sampler_test

import (
	"fmt"

	"github.com/montemc/monte/dist"
	"github.com/montemc/monte/model"
	"github.com/montemc/monte/sampler"
	"github.com/montemc/monte/trace"
)

// Example fits the Normal-Normal model mu ~ N(0,1), y|mu ~ N(mu,1)
// with one observation y=2 and reports the shape of the recorded
// trace.
func Example() {
	normLogp, normRand := dist.Normal(1)

	m, err := model.NewBuilder(model.WithSeed(1)).
		Stochastic(model.StochasticSpec{
			Name: "mu",
			Parents: model.Parents{
				model.ConstScalar("mu", 0),
				model.ConstScalar("sigma", 1),
			},
			Logp:   normLogp,
			Random: normRand,
			Value:  model.Scalar(0),
		}).
		Stochastic(model.StochasticSpec{
			Name: "y",
			Parents: model.Parents{
				model.NodeParent("mu", "mu"),
				model.ConstScalar("sigma", 1),
			},
			Logp:     normLogp,
			Value:    model.Scalar(2),
			Observed: true,
		}).
		Build()
	if err != nil {
		fmt.Println("build:", err)

		return
	}

	ram := trace.NewRAM()
	s, err := sampler.New(m, sampler.WithBackend(ram))
	if err != nil {
		fmt.Println("new:", err)

		return
	}
	if err := s.Sample(2000, 500, 1, 100); err != nil {
		fmt.Println("sample:", err)

		return
	}

	vals, err := ram.Values("mu", 0, 1, -1)
	if err != nil {
		fmt.Println("values:", err)

		return
	}
	fmt.Println("recorded:", len(vals))
	fmt.Println("status:", s.Status())

	// Output:
	// recorded: 1500
	// status: ready
}
