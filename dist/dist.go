package dist

import (
	"math"
	"math/rand"

	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/montemc/monte/model"
)

// scalar reads a named scalar parameter; a missing parent yields NaN,
// which propagates into a NaN log-density and is rejected downstream.
func scalar(p model.ParentValues, name string) float64 {
	v, ok := p[name]
	if !ok {
		return math.NaN()
	}

	return v.Scalar()
}

// src bridges the engine's deterministic math/rand stream into the
// x/exp/rand source type distuv samplers consume.
func src(rng *rand.Rand) exprand.Source {
	return exprand.NewSource(rng.Uint64())
}

// Normal builds the contract pair for N(mu, sigma) with parents
// "mu" and "sigma". dim is the variate length drawn by the RandomFunc.
func Normal(dim int) (model.LogpFunc, model.RandomFunc) {
	logp := func(v model.Value, p model.ParentValues) float64 {
		mu, sig := scalar(p, "mu"), scalar(p, "sigma")
		if !(sig > 0) {
			return math.Inf(-1)
		}
		d := distuv.Normal{Mu: mu, Sigma: sig}
		var lp float64
		for _, x := range v {
			lp += d.LogProb(x)
		}

		return lp
	}
	random := func(rng *rand.Rand, p model.ParentValues) model.Value {
		mu, sig := scalar(p, "mu"), scalar(p, "sigma")
		out := make(model.Value, dim)
		for i := range out {
			out[i] = mu + sig*rng.NormFloat64()
		}

		return out
	}

	return logp, random
}

// Exponential builds the contract pair for Exp(rate) with parent "rate".
func Exponential(dim int) (model.LogpFunc, model.RandomFunc) {
	logp := func(v model.Value, p model.ParentValues) float64 {
		rate := scalar(p, "rate")
		if !(rate > 0) {
			return math.Inf(-1)
		}
		d := distuv.Exponential{Rate: rate}
		var lp float64
		for _, x := range v {
			if x < 0 {
				return math.Inf(-1)
			}
			lp += d.LogProb(x)
		}

		return lp
	}
	random := func(rng *rand.Rand, p model.ParentValues) model.Value {
		rate := scalar(p, "rate")
		out := make(model.Value, dim)
		for i := range out {
			out[i] = rng.ExpFloat64() / rate
		}

		return out
	}

	return logp, random
}

// Uniform builds the contract pair for U(lower, upper) with parents
// "lower" and "upper".
func Uniform(dim int) (model.LogpFunc, model.RandomFunc) {
	logp := func(v model.Value, p model.ParentValues) float64 {
		lo, hi := scalar(p, "lower"), scalar(p, "upper")
		if !(hi > lo) {
			return math.Inf(-1)
		}
		d := distuv.Uniform{Min: lo, Max: hi}
		var lp float64
		for _, x := range v {
			lp += d.LogProb(x)
		}

		return lp
	}
	random := func(rng *rand.Rand, p model.ParentValues) model.Value {
		lo, hi := scalar(p, "lower"), scalar(p, "upper")
		out := make(model.Value, dim)
		for i := range out {
			out[i] = lo + (hi-lo)*rng.Float64()
		}

		return out
	}

	return logp, random
}

// DiscreteUniform builds the contract pair for the integer-uniform on
// [lower, upper] (inclusive) with parents "lower" and "upper".
func DiscreteUniform(dim int) (model.LogpFunc, model.RandomFunc) {
	logp := func(v model.Value, p model.ParentValues) float64 {
		lo, hi := scalar(p, "lower"), scalar(p, "upper")
		if !(hi >= lo) {
			return math.Inf(-1)
		}
		lp := -math.Log(hi-lo+1) * float64(len(v))
		for _, x := range v {
			if x < lo || x > hi || x != math.Trunc(x) {
				return math.Inf(-1)
			}
		}

		return lp
	}
	random := func(rng *rand.Rand, p model.ParentValues) model.Value {
		lo, hi := scalar(p, "lower"), scalar(p, "upper")
		n := int(hi-lo) + 1
		out := make(model.Value, dim)
		for i := range out {
			out[i] = lo + float64(rng.Intn(n))
		}

		return out
	}

	return logp, random
}

// Poisson builds the contract pair for Poisson(mu) with parent "mu".
func Poisson(dim int) (model.LogpFunc, model.RandomFunc) {
	logp := func(v model.Value, p model.ParentValues) float64 {
		mu := scalar(p, "mu")
		if !(mu > 0) {
			return math.Inf(-1)
		}
		d := distuv.Poisson{Lambda: mu}
		var lp float64
		for _, x := range v {
			if x < 0 || x != math.Trunc(x) {
				return math.Inf(-1)
			}
			lp += d.LogProb(x)
		}

		return lp
	}
	random := func(rng *rand.Rand, p model.ParentValues) model.Value {
		d := distuv.Poisson{Lambda: scalar(p, "mu"), Src: src(rng)}
		out := make(model.Value, dim)
		for i := range out {
			out[i] = d.Rand()
		}

		return out
	}

	return logp, random
}

// Bernoulli builds the contract pair for Bernoulli(p) with parent "p".
func Bernoulli(dim int) (model.LogpFunc, model.RandomFunc) {
	logp := func(v model.Value, p model.ParentValues) float64 {
		pr := scalar(p, "p")
		if !(pr >= 0 && pr <= 1) {
			return math.Inf(-1)
		}
		d := distuv.Bernoulli{P: pr}
		var lp float64
		for _, x := range v {
			if x != 0 && x != 1 {
				return math.Inf(-1)
			}
			lp += d.LogProb(x)
		}

		return lp
	}
	random := func(rng *rand.Rand, p model.ParentValues) model.Value {
		pr := scalar(p, "p")
		out := make(model.Value, dim)
		for i := range out {
			if rng.Float64() < pr {
				out[i] = 1
			}
		}

		return out
	}

	return logp, random
}
