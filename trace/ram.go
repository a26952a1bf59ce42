package trace

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/montemc/monte/model"
)

// chain is one sampling run's worth of recorded series.
type chain struct {
	series map[string][]model.Value
	iters  []int
}

// RAM keeps every tallied value in memory. Each Initialize opens a new
// chain, so repeated sampling runs against the same backend accumulate
// side by side.
type RAM struct {
	m       *model.Model
	tracked []model.NodeID
	chains  []*chain
}

// NewRAM builds an empty in-memory backend.
func NewRAM() *RAM { return &RAM{} }

// Initialize implements Backend: opens a fresh chain.
func (r *RAM) Initialize(m *model.Model, tracked []model.NodeID, expected int) error {
	if m == nil {
		return fmt.Errorf("RAM.Initialize: %w", ErrNotInitialized)
	}
	if expected < 0 {
		expected = 0
	}

	c := &chain{
		series: make(map[string][]model.Value, len(tracked)),
		iters:  make([]int, 0, expected),
	}
	for _, id := range tracked {
		c.series[m.Name(id)] = make([]model.Value, 0, expected)
	}

	r.m = m
	r.tracked = append([]model.NodeID(nil), tracked...)
	r.chains = append(r.chains, c)

	return nil
}

// Tally implements Backend: snapshots the tracked values.
func (r *RAM) Tally(iter int) error {
	if len(r.chains) == 0 {
		return fmt.Errorf("RAM.Tally: %w", ErrNotInitialized)
	}

	c := r.chains[len(r.chains)-1]
	for _, id := range r.tracked {
		name := r.m.Name(id)
		c.series[name] = append(c.series[name], r.m.Value(id))
	}
	c.iters = append(c.iters, iter)

	return nil
}

// Finalize implements Backend; the in-memory backend has nothing to
// flush.
func (r *RAM) Finalize() error {
	if len(r.chains) == 0 {
		return fmt.Errorf("RAM.Finalize: %w", ErrNotInitialized)
	}

	return nil
}

// Chains returns how many chains the backend holds.
func (r *RAM) Chains() int { return len(r.chains) }

// Len returns the number of samples recorded in a chain (-1 for the
// most recent).
func (r *RAM) Len(chainIdx int) (int, error) {
	c, err := r.chain(chainIdx)
	if err != nil {
		return 0, fmt.Errorf("RAM.Len: %w", err)
	}

	return len(c.iters), nil
}

// Values implements Backend: the recorded series for one variable with
// burn samples dropped from the front and every thin-th sample kept.
func (r *RAM) Values(name string, burn, thin, chainIdx int) ([]model.Value, error) {
	c, err := r.chain(chainIdx)
	if err != nil {
		return nil, fmt.Errorf("RAM.Values: %w", err)
	}
	series, ok := c.series[name]
	if !ok {
		return nil, fmt.Errorf("RAM.Values: %q: %w", name, ErrUnknownVariable)
	}
	if burn < 0 {
		burn = 0
	}
	if thin < 1 {
		thin = 1
	}
	if burn >= len(series) {
		return nil, fmt.Errorf("RAM.Values: %q: %w", name, ErrEmptySlice)
	}

	out := make([]model.Value, 0, (len(series)-burn+thin-1)/thin)
	for i := burn; i < len(series); i += thin {
		out = append(out, series[i].Clone())
	}

	return out, nil
}

// Stats summarizes one variable's series component-wise.
type Stats struct {
	N    int
	Mean []float64
	Std  []float64
	Min  []float64
	Max  []float64
}

// Summary computes component-wise moments and extrema over a chain's
// full series for one variable.
func (r *RAM) Summary(name string, chainIdx int) (Stats, error) {
	values, err := r.Values(name, 0, 1, chainIdx)
	if err != nil {
		return Stats{}, fmt.Errorf("RAM.Summary: %w", err)
	}

	dim := len(values[0])
	s := Stats{
		N:    len(values),
		Mean: make([]float64, dim),
		Std:  make([]float64, dim),
		Min:  make([]float64, dim),
		Max:  make([]float64, dim),
	}

	col := make([]float64, len(values))
	for d := 0; d < dim; d++ {
		s.Min[d], s.Max[d] = math.Inf(1), math.Inf(-1)
		for i, v := range values {
			col[i] = v[d]
			s.Min[d] = math.Min(s.Min[d], v[d])
			s.Max[d] = math.Max(s.Max[d], v[d])
		}
		s.Mean[d] = stat.Mean(col, nil)
		s.Std[d] = stat.StdDev(col, nil)
	}

	return s, nil
}

func (r *RAM) chain(idx int) (*chain, error) {
	if len(r.chains) == 0 {
		return nil, ErrNotInitialized
	}
	if idx == -1 {
		idx = len(r.chains) - 1
	}
	if idx < 0 || idx >= len(r.chains) {
		return nil, fmt.Errorf("chain %d of %d: %w", idx, len(r.chains), ErrBadChain)
	}

	return r.chains[idx], nil
}
