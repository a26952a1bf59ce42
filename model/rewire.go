package model

import "fmt"

// Rewire atomically replaces a node's parent mapping. Both directions of
// the edge set are updated together: the node is removed from an old
// parent's children only when no parameter in the new mapping still
// references that parent, added to every new parent's children, and its
// memoized computations are invalidated. A rewiring that would create a
// cycle fails with ErrCycle and leaves the graph untouched.
//
// Complexity: O(parents + ancestors) — the ancestor walk is the cycle check.
func (m *Model) Rewire(id NodeID, parents Parents) error {
	if !m.valid(id) {
		return fmt.Errorf("Rewire: id %d: %w", id, ErrUnknownNode)
	}
	n := m.nodes[id]

	edges, err := m.resolveParents(parents)
	if err != nil {
		return fmt.Errorf("Rewire: node %q: %w", n.name, err)
	}
	if m.reaches(edges, id) {
		return fmt.Errorf("Rewire: node %q: %w", n.name, ErrCycle)
	}

	oldIDs := n.parentIDs()
	n.parents = edges
	newIDs := n.parentIDs()

	for p := range oldIDs {
		if _, still := newIDs[p]; !still {
			delete(m.nodes[p].children, id)
		}
	}
	for p := range newIDs {
		m.nodes[p].children[id] = struct{}{}
	}

	n.cache.invalidate()

	return nil
}

// resolveParents turns a by-name parent mapping into arena edges.
func (m *Model) resolveParents(parents Parents) ([]edge, error) {
	edges := make([]edge, 0, len(parents))
	for _, p := range parents {
		if p.Node == "" {
			edges = append(edges, edge{param: p.Name, node: noNode, konst: p.Const.Clone()})
			continue
		}
		id, ok := m.byName[p.Node]
		if !ok {
			return nil, fmt.Errorf("parameter %q references %q: %w", p.Name, p.Node, ErrUnknownParent)
		}
		edges = append(edges, edge{param: p.Name, node: id})
	}

	return edges, nil
}

// reaches reports whether target is reachable from any node endpoint of
// edges by walking parent links upward. Used as the cycle check: a node
// may not become its own ancestor.
func (m *Model) reaches(edges []edge, target NodeID) bool {
	seen := make(map[NodeID]struct{})
	var stack []NodeID
	for i := range edges {
		if edges[i].node != noNode {
			stack = append(stack, edges[i].node)
		}
	}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == target {
			return true
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		for p := range m.nodes[id].parentIDs() {
			stack = append(stack, p)
		}
	}

	return false
}

// wire installs the node's edges into every parent's children set.
// Builder-time counterpart of Rewire's add side.
func (m *Model) wire(n *node) {
	for p := range n.parentIDs() {
		m.nodes[p].children[n.id] = struct{}{}
	}
}
