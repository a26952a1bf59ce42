package hmc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/montemc/monte/model"
)

func TestDensePotential_VelocitySolvesMass(t *testing.T) {
	mass := mat.NewSymDense(2, []float64{2, 0.5, 0.5, 1})
	pot, err := NewDensePotential(mass)
	require.NoError(t, err)

	p := []float64{1, -2}
	v := make([]float64, 2)
	pot.Velocity(v, p)

	// M v must reproduce p.
	back := mat.NewVecDense(2, nil)
	back.MulVec(mass, mat.NewVecDense(2, v))
	assert.InDelta(t, p[0], back.AtVec(0), 1e-10)
	assert.InDelta(t, p[1], back.AtVec(1), 1e-10)

	// Energy is p·v/2 by definition.
	assert.InDelta(t, (p[0]*v[0]+p[1]*v[1])/2, pot.Energy(p), 1e-10)
}

func TestDensePotential_SampleCovariance(t *testing.T) {
	mass := mat.NewSymDense(2, []float64{2, 0.8, 0.8, 1})
	pot, err := NewDensePotential(mass)
	require.NoError(t, err)

	rng := model.NewRNG(17)
	var c00, c01, c11 float64
	const draws = 30000
	for i := 0; i < draws; i++ {
		p := pot.Sample(rng)
		c00 += p[0] * p[0]
		c01 += p[0] * p[1]
		c11 += p[1] * p[1]
	}
	assert.InDelta(t, 2.0, c00/draws, 0.1, "momentum covariance must match the mass matrix")
	assert.InDelta(t, 0.8, c01/draws, 0.1)
	assert.InDelta(t, 1.0, c11/draws, 0.1)
}

// TestPotential_EnergyEvenInMomentum pins the symmetry the trajectory
// relies on when it negates the final momentum: flipping p must leave
// the kinetic energy, and so the acceptance ratio, unchanged.
func TestPotential_EnergyEvenInMomentum(t *testing.T) {
	diag, err := NewDiagPotential(3, []float64{2, 1, 0.5})
	require.NoError(t, err)
	dense, err := NewDensePotential(mat.NewSymDense(3, []float64{
		2, 0.3, 0.1,
		0.3, 1, 0.2,
		0.1, 0.2, 0.5,
	}))
	require.NoError(t, err)

	p := []float64{0.7, -1.3, 2.1}
	neg := []float64{-0.7, 1.3, -2.1}
	for _, pot := range []Potential{diag, dense} {
		assert.InDelta(t, pot.Energy(p), pot.Energy(neg), 1e-12)
	}
}

func TestDensePotential_RejectsIndefinite(t *testing.T) {
	mass := mat.NewSymDense(2, []float64{1, 2, 2, 1})

	_, err := NewDensePotential(mass)
	require.ErrorIs(t, err, ErrBadMass)
}
