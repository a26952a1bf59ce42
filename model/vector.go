package model

import "fmt"

// View flattens a fixed set of continuous, unobserved stochastics into
// one real vector, the representation gradient-based samplers work in.
// Offsets are frozen at construction; values may change underneath.
type View struct {
	m       *Model
	ids     []NodeID
	offsets []int
	dim     int
}

// View builds a vector view over the given variables, in the given
// order. Every variable must be an unobserved, continuous stochastic.
//
// Errors: ErrEmptyView, ErrUnknownNode, ErrNotStochastic,
// ErrObservedValue, ErrNotContinuous.
func (m *Model) View(ids ...NodeID) (*View, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("View: %w", ErrEmptyView)
	}

	v := &View{m: m, ids: append([]NodeID(nil), ids...)}
	for _, id := range ids {
		if !m.valid(id) {
			return nil, fmt.Errorf("View: id %d: %w", id, ErrUnknownNode)
		}
		n := m.nodes[id]
		if n.kind != Stochastic {
			return nil, fmt.Errorf("View: node %q: %w", n.name, ErrNotStochastic)
		}
		if n.observed {
			return nil, fmt.Errorf("View: node %q: %w", n.name, ErrObservedValue)
		}
		if n.dtype != Continuous {
			return nil, fmt.Errorf("View: node %q: %w", n.name, ErrNotContinuous)
		}
		v.offsets = append(v.offsets, v.dim)
		v.dim += len(n.value)
	}

	return v, nil
}

// Dim returns the flattened vector length.
func (v *View) Dim() int { return v.dim }

// IDs returns the variables backing the view, in vector order.
func (v *View) IDs() []NodeID { return append([]NodeID(nil), v.ids...) }

// Get copies the current variable values into one concatenated vector.
func (v *View) Get() []float64 {
	q := make([]float64, v.dim)
	for i, id := range v.ids {
		copy(q[v.offsets[i]:], v.m.nodes[id].value)
	}

	return q
}

// Set scatters a concatenated vector back into the variables,
// remembering previous values for Revert.
func (v *View) Set(q []float64) error {
	if len(q) != v.dim {
		return fmt.Errorf("Set: got %d want %d: %w", len(q), v.dim, ErrDimensionMismatch)
	}
	for i, id := range v.ids {
		n := v.m.nodes[id]
		v.m.setValue(n, q[v.offsets[i]:v.offsets[i]+len(n.value)])
	}

	return nil
}

// Revert restores every variable in the view to its previous value.
func (v *View) Revert() {
	for _, id := range v.ids {
		v.m.Revert(id)
	}
}
