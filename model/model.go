package model

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Model owns the node arena for its lifetime. Nodes are created once by
// a Builder; values mutate for the life of a sampling run; topology only
// changes through Rewire.
//
// A Model is not safe for concurrent use.
type Model struct {
	nodes  []*node
	byName map[string]NodeID
	rng    *rand.Rand
}

// RNG returns the model's base random stream. Step methods should
// derive private substreams with DeriveRNG rather than sharing it.
func (m *Model) RNG() *rand.Rand { return m.rng }

// Len returns the number of nodes in the arena.
func (m *Model) Len() int { return len(m.nodes) }

// ByName resolves a node name to its ID.
func (m *Model) ByName(name string) (NodeID, bool) {
	id, ok := m.byName[name]

	return id, ok
}

// Name returns the unique name of a node.
func (m *Model) Name(id NodeID) string { return m.nodes[id].name }

// KindOf returns the node's kind.
func (m *Model) KindOf(id NodeID) Kind { return m.nodes[id].kind }

// DtypeOf returns a node's support classification. Deterministic and
// potential nodes report Continuous.
func (m *Model) DtypeOf(id NodeID) Dtype { return m.nodes[id].dtype }

// Observed reports whether a stochastic node is fixed data.
func (m *Model) Observed(id NodeID) bool { return m.nodes[id].observed }

// valid reports whether id indexes the arena.
func (m *Model) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(m.nodes)
}

// Value returns a copy of the node's current value. Deterministic nodes
// are evaluated lazily; potential nodes have no value and return nil.
func (m *Model) Value(id NodeID) Value {
	n := m.nodes[id]
	switch n.kind {
	case Stochastic:
		return n.value.Clone()
	case Deterministic:
		return m.deterministicValue(n).Clone()
	default:
		return nil
	}
}

// SetValue replaces a stochastic node's value, remembering the previous
// one for Revert. Discrete and binary values are rounded to integers.
// Observed nodes refuse mutation.
func (m *Model) SetValue(id NodeID, v Value) error {
	if !m.valid(id) {
		return fmt.Errorf("SetValue: id %d: %w", id, ErrUnknownNode)
	}
	n := m.nodes[id]
	if n.kind != Stochastic {
		return fmt.Errorf("SetValue: node %q: %w", n.name, ErrNotStochastic)
	}
	if n.observed {
		return fmt.Errorf("SetValue: node %q: %w", n.name, ErrObservedValue)
	}

	m.setValue(n, v)

	return nil
}

// setValue is the unchecked write path shared with Draw and views.
func (m *Model) setValue(n *node, v Value) {
	next := v.Clone()
	if n.dtype != Continuous {
		for i := range next {
			next[i] = math.Round(next[i])
		}
	}
	n.lastValue = n.value
	n.value = next
}

// Revert restores a stochastic node's previous value. One level deep:
// exactly what a Metropolis rejection needs.
func (m *Model) Revert(id NodeID) {
	n := m.nodes[id]
	if n.kind == Stochastic && n.lastValue != nil {
		n.value = n.lastValue
	}
}

// Logp returns the node's log-probability: the stochastic log-density of
// its current value, or the potential factor. Deterministic nodes
// contribute nothing. The result may be -Inf; see IsZeroProbability.
func (m *Model) Logp(id NodeID) float64 {
	n := m.nodes[id]
	switch n.kind {
	case Stochastic, Potential:
		return m.nodeLogp(n)
	default:
		return 0
	}
}

// LogpTotal sums the log-probabilities of every stochastic and
// potential node: the joint log-probability of the whole graph.
func (m *Model) LogpTotal() float64 {
	var total float64
	for _, n := range m.nodes {
		if n.kind == Deterministic {
			continue
		}
		lp := m.nodeLogp(n)
		if IsZeroProbability(lp) {
			return math.Inf(-1)
		}
		total += lp
	}

	return total
}

// CheckLogp verifies that every stochastic and potential node has a
// finite log-probability at the current point. On failure it returns an
// error naming the node and its parents — the fatal pre-sampling path.
func (m *Model) CheckLogp() error {
	for _, n := range m.nodes {
		if n.kind == Deterministic {
			continue
		}
		if lp := m.nodeLogp(n); IsZeroProbability(lp) {
			return fmt.Errorf("CheckLogp: node %q (parents %v) has logp %v: %w",
				n.name, m.parentNames(n), lp, ErrZeroProbability)
		}
	}

	return nil
}

// Draw samples a fresh value for a stochastic node from its RandomFunc,
// conditional on current parent values, stores it and returns a copy.
func (m *Model) Draw(id NodeID) (Value, error) {
	if !m.valid(id) {
		return nil, fmt.Errorf("Draw: id %d: %w", id, ErrUnknownNode)
	}
	n := m.nodes[id]
	if n.kind != Stochastic {
		return nil, fmt.Errorf("Draw: node %q: %w", n.name, ErrNotStochastic)
	}
	if n.observed {
		return nil, fmt.Errorf("Draw: node %q: %w", n.name, ErrObservedValue)
	}
	if n.randomFn == nil {
		return nil, fmt.Errorf("Draw: node %q: %w", n.name, ErrNoRandomFunc)
	}

	m.setValue(n, n.randomFn(m.rng, m.parentValues(n)))

	return n.value.Clone(), nil
}

// ParentValues returns the node's current parent values keyed by
// parameter name, evaluating deterministic parents lazily.
func (m *Model) ParentValues(id NodeID) ParentValues {
	return m.parentValues(m.nodes[id])
}

// ParentsOf returns the node's ordered parent mapping with node
// references by name, mirroring the Builder input shape.
func (m *Model) ParentsOf(id NodeID) Parents {
	n := m.nodes[id]
	out := make(Parents, 0, len(n.parents))
	for i := range n.parents {
		e := n.parents[i]
		if e.node != noNode {
			out = append(out, Parent{Name: e.param, Node: m.nodes[e.node].name})
		} else {
			out = append(out, Parent{Name: e.param, Const: e.konst.Clone()})
		}
	}

	return out
}

// ChildrenOf returns the node's children as a sorted ID slice.
func (m *Model) ChildrenOf(id NodeID) []NodeID {
	n := m.nodes[id]
	out := make([]NodeID, 0, len(n.children))
	for c := range n.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Stochastics returns every stochastic node, observed included, in ID order.
func (m *Model) Stochastics() []NodeID {
	var out []NodeID
	for _, n := range m.nodes {
		if n.kind == Stochastic {
			out = append(out, n.id)
		}
	}

	return out
}

// Unobserved returns the stochastic nodes a sampler may move, in ID order.
func (m *Model) Unobserved() []NodeID {
	var out []NodeID
	for _, n := range m.nodes {
		if n.kind == Stochastic && !n.observed {
			out = append(out, n.id)
		}
	}

	return out
}

// LikelihoodChildren returns the stochastic and potential descendants of
// id reachable without passing through another stochastic: the nodes
// whose log-probability responds to a change of id's value. Together
// with id itself this is the Markov-blanket contribution a Metropolis
// step must evaluate.
func (m *Model) LikelihoodChildren(id NodeID) []NodeID {
	seen := make(map[NodeID]struct{})
	var out []NodeID

	var walk func(NodeID)
	walk = func(from NodeID) {
		for c := range m.nodes[from].children {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			switch m.nodes[c].kind {
			case Stochastic, Potential:
				out = append(out, c)
			case Deterministic:
				walk(c)
			}
		}
	}
	walk(id)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// CheckConsistency verifies the two-way edge invariant: A lists B as a
// parent iff B's children contain A. A violation is a programming error
// inside this package and is reported as ErrGraphInconsistent.
func (m *Model) CheckConsistency() error {
	for _, n := range m.nodes {
		for p := range n.parentIDs() {
			if _, ok := m.nodes[p].children[n.id]; !ok {
				return fmt.Errorf("CheckConsistency: %q missing child %q: %w",
					m.nodes[p].name, n.name, ErrGraphInconsistent)
			}
		}
		for c := range n.children {
			if _, ok := m.nodes[c].parentIDs()[n.id]; !ok {
				return fmt.Errorf("CheckConsistency: %q lists child %q without back-edge: %w",
					n.name, m.nodes[c].name, ErrGraphInconsistent)
			}
		}
	}

	return nil
}

// parentNames lists parent references for error messages.
func (m *Model) parentNames(n *node) []string {
	out := make([]string, 0, len(n.parents))
	for i := range n.parents {
		if n.parents[i].node != noNode {
			out = append(out, n.parents[i].param+"="+m.nodes[n.parents[i].node].name)
		} else {
			out = append(out, n.parents[i].param+"=const")
		}
	}

	return out
}

// parentArgs snapshots the node's current inputs in declared order.
// Deterministic parents are pulled lazily; constants are returned as-is.
func (m *Model) parentArgs(n *node) []Value {
	args := make([]Value, len(n.parents))
	for i := range n.parents {
		e := n.parents[i]
		if e.node == noNode {
			args[i] = e.konst
			continue
		}
		p := m.nodes[e.node]
		if p.kind == Deterministic {
			args[i] = m.deterministicValue(p)
		} else {
			args[i] = p.value
		}
	}

	return args
}

// parentMap shapes an args snapshot into the user-facing keyed form.
func (m *Model) parentMap(n *node, args []Value) ParentValues {
	pv := make(ParentValues, len(args))
	for i := range n.parents {
		pv[n.parents[i].param] = args[i]
	}

	return pv
}

func (m *Model) parentValues(n *node) ParentValues {
	return m.parentMap(n, m.parentArgs(n))
}

// deterministicValue returns the node's value, recomputing only when
// some direct input differs from every cached snapshot.
func (m *Model) deterministicValue(n *node) Value {
	args := m.parentArgs(n)
	if e, ok := n.cache.lookup(args); ok {
		return e.value
	}

	v := n.evalFn(m.parentMap(n, args))
	n.cache.push(cacheEntry{args: snapshotClone(args), value: v.Clone()})

	return v
}

// nodeLogp returns the stochastic/potential log-probability, memoized on
// the node's own value (stochastics) plus its direct parent values.
func (m *Model) nodeLogp(n *node) float64 {
	args := m.parentArgs(n)
	if n.kind == Stochastic {
		args = append([]Value{n.value}, args...)
	}
	if e, ok := n.cache.lookup(args); ok {
		return e.logp
	}

	var lp float64
	if n.kind == Stochastic {
		lp = n.logpFn(n.value, m.parentMap(n, args[1:]))
	} else {
		lp = n.logpFn(nil, m.parentMap(n, args))
	}
	n.cache.push(cacheEntry{args: snapshotClone(args), logp: lp})

	return lp
}
