package hmc

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Potential is the kinetic-energy term of the Hamiltonian: a mass
// matrix M presented through the three operations trajectories need.
type Potential interface {
	// Sample draws a momentum p ~ N(0, M).
	Sample(rng *rand.Rand) []float64

	// Velocity fills dst with M⁻¹ p.
	Velocity(dst, p []float64)

	// Energy returns pᵀ M⁻¹ p / 2.
	Energy(p []float64) float64
}

// diagPotential is a diagonal mass matrix, the usual default.
type diagPotential struct {
	mass []float64 // diagonal of M
	sqrt []float64 // precomputed sqrt of the diagonal
}

// NewDiagPotential builds a diagonal potential. A nil mass means the
// identity over dim components; otherwise every entry must be positive.
func NewDiagPotential(dim int, mass []float64) (Potential, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("NewDiagPotential: %w", ErrBadDim)
	}
	if mass == nil {
		mass = make([]float64, dim)
		for i := range mass {
			mass[i] = 1
		}
	}
	if len(mass) != dim {
		return nil, fmt.Errorf("NewDiagPotential: %d mass entries for dim %d: %w",
			len(mass), dim, ErrBadMass)
	}

	p := &diagPotential{
		mass: append([]float64(nil), mass...),
		sqrt: make([]float64, dim),
	}
	for i, m := range mass {
		if !(m > 0) {
			return nil, fmt.Errorf("NewDiagPotential: entry %d = %v: %w", i, m, ErrBadMass)
		}
		p.sqrt[i] = math.Sqrt(m)
	}

	return p, nil
}

func (d *diagPotential) Sample(rng *rand.Rand) []float64 {
	p := make([]float64, len(d.mass))
	for i := range p {
		p[i] = d.sqrt[i] * rng.NormFloat64()
	}

	return p
}

func (d *diagPotential) Velocity(dst, p []float64) {
	for i := range dst {
		dst[i] = p[i] / d.mass[i]
	}
}

func (d *diagPotential) Energy(p []float64) float64 {
	var e float64
	for i, pi := range p {
		e += pi * pi / d.mass[i]
	}

	return e / 2
}

// densePotential carries a full mass matrix through its Cholesky
// factorization M = LLᵀ.
type densePotential struct {
	dim  int
	chol mat.Cholesky
	low  mat.TriDense
}

// NewDensePotential builds a potential from a full symmetric
// positive-definite mass matrix.
func NewDensePotential(mass *mat.SymDense) (Potential, error) {
	if mass == nil || mass.SymmetricDim() == 0 {
		return nil, fmt.Errorf("NewDensePotential: %w", ErrBadDim)
	}

	p := &densePotential{dim: mass.SymmetricDim()}
	if !p.chol.Factorize(mass) {
		return nil, fmt.Errorf("NewDensePotential: %w", ErrBadMass)
	}
	p.chol.LTo(&p.low)

	return p, nil
}

func (d *densePotential) Sample(rng *rand.Rand) []float64 {
	z := mat.NewVecDense(d.dim, nil)
	for i := 0; i < d.dim; i++ {
		z.SetVec(i, rng.NormFloat64())
	}

	// p = L z has covariance LLᵀ = M.
	out := mat.NewVecDense(d.dim, nil)
	out.MulVec(&d.low, z)

	return out.RawVector().Data
}

func (d *densePotential) Velocity(dst, p []float64) {
	out := mat.NewVecDense(d.dim, dst)
	if err := d.chol.SolveVecTo(out, mat.NewVecDense(d.dim, p)); err != nil {
		// Factorize succeeded at construction, so the solve cannot
		// fail; a zero velocity keeps the trajectory finite regardless.
		for i := range dst {
			dst[i] = 0
		}
	}
}

func (d *densePotential) Energy(p []float64) float64 {
	v := make([]float64, d.dim)
	d.Velocity(v, p)

	var e float64
	for i := range p {
		e += p[i] * v[i]
	}

	return e / 2
}
