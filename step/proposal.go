package step

import (
	"math/rand"

	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Proposal generates zero-centered, unit-scale deviates; the owning
// method multiplies them by its adaptive scaling factor. All proposals
// here are symmetric, which is what makes the Metropolis acceptance
// ratio a plain log-density difference.
type Proposal interface {
	// Sample fills dst with independent deviates.
	Sample(dst []float64)
}

// normalProposal draws standard normal deviates.
type normalProposal struct{ d distuv.Normal }

// NewNormalProposal builds the default random-walk proposal. The rng is
// consumed once to derive an independent distuv source.
func NewNormalProposal(rng *rand.Rand) Proposal {
	return &normalProposal{d: distuv.Normal{Mu: 0, Sigma: 1, Src: exprand.NewSource(rng.Uint64())}}
}

func (p *normalProposal) Sample(dst []float64) {
	for i := range dst {
		dst[i] = p.d.Rand()
	}
}

// cauchyProposal draws standard Cauchy deviates (Student-t with one
// degree of freedom): heavy tails for occasional long jumps.
type cauchyProposal struct{ d distuv.StudentsT }

// NewCauchyProposal builds a heavy-tailed proposal.
func NewCauchyProposal(rng *rand.Rand) Proposal {
	return &cauchyProposal{d: distuv.StudentsT{Mu: 0, Sigma: 1, Nu: 1, Src: exprand.NewSource(rng.Uint64())}}
}

func (p *cauchyProposal) Sample(dst []float64) {
	for i := range dst {
		dst[i] = p.d.Rand()
	}
}

// laplaceProposal draws double-exponential deviates.
type laplaceProposal struct{ d distuv.Laplace }

// NewLaplaceProposal builds a Laplace proposal.
func NewLaplaceProposal(rng *rand.Rand) Proposal {
	return &laplaceProposal{d: distuv.Laplace{Mu: 0, Scale: 1, Src: exprand.NewSource(rng.Uint64())}}
}

func (p *laplaceProposal) Sample(dst []float64) {
	for i := range dst {
		dst[i] = p.d.Rand()
	}
}

// poissonProposal draws centered Poisson deviates: integer-valued jumps
// for discrete variables by construction.
type poissonProposal struct {
	d   distuv.Poisson
	lam float64
}

// NewPoissonProposal builds a centered Poisson proposal with intensity lam.
func NewPoissonProposal(rng *rand.Rand, lam float64) Proposal {
	return &poissonProposal{
		d:   distuv.Poisson{Lambda: lam, Src: exprand.NewSource(rng.Uint64())},
		lam: lam,
	}
}

func (p *poissonProposal) Sample(dst []float64) {
	for i := range dst {
		dst[i] = p.d.Rand() - p.lam
	}
}
