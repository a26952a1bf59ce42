package model

// noNode marks an edge endpoint that is a constant, not a node.
const noNode NodeID = -1

// edge is one resolved parent binding: a parameter name plus either a
// node index into the arena or an owned constant value.
type edge struct {
	param string
	node  NodeID // noNode when konst is used
	konst Value
}

// node is one arena slot. All graph state lives here; the Model methods
// are the only code that touches it.
type node struct {
	id    NodeID
	name  string
	kind  Kind
	dtype Dtype

	// parents is the ordered parameter list; children is the derived
	// inverse index. The two are kept consistent by wire/unwire.
	parents  []edge
	children map[NodeID]struct{}

	// value/lastValue exist for stochastics only. lastValue backs
	// Metropolis-style rejection restores.
	value     Value
	lastValue Value
	observed  bool

	logpFn   LogpFunc
	evalFn   EvalFunc
	randomFn RandomFunc

	cache ringCache
}

// parentIDs returns the set of distinct node-valued parents.
func (n *node) parentIDs() map[NodeID]struct{} {
	ids := make(map[NodeID]struct{}, len(n.parents))
	for i := range n.parents {
		if n.parents[i].node != noNode {
			ids[n.parents[i].node] = struct{}{}
		}
	}

	return ids
}
