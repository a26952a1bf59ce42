package model

import "fmt"

// Builder assembles a Model from declarative node specifications.
//
// Design contract (strict):
//   - Explicit registration only: the caller passes every node spec;
//     nothing is discovered by reflection or ambient scanning.
//   - Determinism: same specs, order and seed ⇒ identical models,
//     including initial values drawn from RandomFuncs.
//   - Safety: Build never panics; it returns sentinel errors wrapped
//     once with the offending node's name.
//
// Specs are applied in registration order; parents may reference nodes
// registered either before or after them — resolution happens in Build.
type Builder struct {
	specs []nodeSpec
	seed  int64
}

// nodeSpec is the uniform internal shape all three public specs reduce to.
type nodeSpec struct {
	name       string
	kind       Kind
	dtype      Dtype
	parents    Parents
	logpFn     LogpFunc
	evalFn     EvalFunc
	randomFn   RandomFunc
	value      Value
	observed   bool
	cacheDepth int
}

// BuilderOption configures a Builder before any spec is applied.
type BuilderOption func(*Builder)

// WithSeed fixes the model's base random stream. Seed 0 keeps the
// deterministic default.
func WithSeed(seed int64) BuilderOption {
	return func(b *Builder) { b.seed = seed }
}

// NewBuilder creates an empty Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// StochasticSpec declares a random variable.
type StochasticSpec struct {
	// Name uniquely identifies the node within the model.
	Name string

	// Dtype classifies the support (default Continuous).
	Dtype Dtype

	// Parents is the ordered parameter mapping.
	Parents Parents

	// Logp computes the log-density of a value given parent values. Required.
	Logp LogpFunc

	// Random draws a value conditional on parent values. Optional, but
	// required when Value is nil or Draw will be used.
	Random RandomFunc

	// Value is the initial value. Nil ⇒ drawn from Random at Build time.
	Value Value

	// Observed marks the node as fixed data; Value is then required.
	Observed bool

	// CacheDepth overrides DefaultCacheDepth when positive.
	CacheDepth int
}

// DeterministicSpec declares a node computed from its parents.
type DeterministicSpec struct {
	Name    string
	Parents Parents

	// Eval computes the value from parent values. Required.
	Eval EvalFunc

	// CacheDepth overrides DefaultCacheDepth when positive.
	CacheDepth int
}

// PotentialSpec declares an extra log-probability factor over its parents.
type PotentialSpec struct {
	Name    string
	Parents Parents

	// Logp computes the factor from parent values (the value argument is
	// always nil). Required.
	Logp LogpFunc

	// CacheDepth overrides DefaultCacheDepth when positive.
	CacheDepth int
}

// Stochastic registers a random-variable spec. Returns b for chaining.
func (b *Builder) Stochastic(s StochasticSpec) *Builder {
	b.specs = append(b.specs, nodeSpec{
		name:       s.Name,
		kind:       Stochastic,
		dtype:      s.Dtype,
		parents:    s.Parents,
		logpFn:     s.Logp,
		randomFn:   s.Random,
		value:      s.Value.Clone(),
		observed:   s.Observed,
		cacheDepth: s.CacheDepth,
	})

	return b
}

// Deterministic registers a computed-node spec. Returns b for chaining.
func (b *Builder) Deterministic(s DeterministicSpec) *Builder {
	b.specs = append(b.specs, nodeSpec{
		name:       s.Name,
		kind:       Deterministic,
		parents:    s.Parents,
		evalFn:     s.Eval,
		cacheDepth: s.CacheDepth,
	})

	return b
}

// Potential registers a log-probability-factor spec. Returns b for chaining.
func (b *Builder) Potential(s PotentialSpec) *Builder {
	b.specs = append(b.specs, nodeSpec{
		name:       s.Name,
		kind:       Potential,
		parents:    s.Parents,
		logpFn:     s.Logp,
		cacheDepth: s.CacheDepth,
	})

	return b
}

// Build validates every spec, resolves parent references, wires the
// two-way edge set, checks acyclicity, and fills initial values (drawing
// from RandomFuncs in dependency order). The returned Model owns all
// nodes; the Builder may be discarded.
//
// Errors: ErrEmptyName, ErrDuplicateName, ErrNilFunc, ErrBadCacheDepth,
// ErrUnknownParent, ErrCycle, ErrNoInitialValue — each wrapped with the
// node's name.
func (b *Builder) Build() (*Model, error) {
	m := &Model{
		byName: make(map[string]NodeID, len(b.specs)),
		rng:    NewRNG(b.seed),
	}

	// Pass 1: create arena slots and register names.
	for i := range b.specs {
		s := &b.specs[i]
		if err := validateSpec(s); err != nil {
			return nil, fmt.Errorf("Build: node %q: %w", s.name, err)
		}
		if _, dup := m.byName[s.name]; dup {
			return nil, fmt.Errorf("Build: node %q: %w", s.name, ErrDuplicateName)
		}

		depth := s.cacheDepth
		if depth == 0 {
			depth = DefaultCacheDepth
		}
		n := &node{
			id:       NodeID(len(m.nodes)),
			name:     s.name,
			kind:     s.kind,
			dtype:    s.dtype,
			children: make(map[NodeID]struct{}),
			observed: s.observed,
			logpFn:   s.logpFn,
			evalFn:   s.evalFn,
			randomFn: s.randomFn,
			cache:    newRingCache(depth),
		}
		m.nodes = append(m.nodes, n)
		m.byName[s.name] = n.id
	}

	// Pass 2: resolve parent references and wire children.
	for i, n := range m.nodes {
		edges, err := m.resolveParents(b.specs[i].parents)
		if err != nil {
			return nil, fmt.Errorf("Build: node %q: %w", n.name, err)
		}
		n.parents = edges
		m.wire(n)
	}

	order, err := m.topoOrder()
	if err != nil {
		return nil, fmt.Errorf("Build: %w", err)
	}

	// Pass 3: initial values in dependency order, so RandomFunc draws
	// see their parents' values.
	for _, id := range order {
		n := m.nodes[id]
		if n.kind != Stochastic {
			continue
		}
		s := &b.specs[id]
		switch {
		case s.value != nil:
			m.setValue(n, s.value)
		case n.randomFn != nil:
			m.setValue(n, n.randomFn(m.rng, m.parentValues(n)))
		default:
			return nil, fmt.Errorf("Build: node %q: %w", n.name, ErrNoInitialValue)
		}
	}

	return m, nil
}

// validateSpec enforces per-spec requirements before arena creation.
func validateSpec(s *nodeSpec) error {
	if s.name == "" {
		return ErrEmptyName
	}
	if s.cacheDepth < 0 {
		return ErrBadCacheDepth
	}
	switch s.kind {
	case Stochastic:
		if s.logpFn == nil {
			return fmt.Errorf("stochastic needs Logp: %w", ErrNilFunc)
		}
		if s.observed && s.value == nil {
			return fmt.Errorf("observed needs Value: %w", ErrNoInitialValue)
		}
	case Deterministic:
		if s.evalFn == nil {
			return fmt.Errorf("deterministic needs Eval: %w", ErrNilFunc)
		}
	case Potential:
		if s.logpFn == nil {
			return fmt.Errorf("potential needs Logp: %w", ErrNilFunc)
		}
	}

	return nil
}

// topoOrder returns node IDs parents-first (Kahn), or ErrCycle when the
// declared edges are not a DAG.
func (m *Model) topoOrder() ([]NodeID, error) {
	indeg := make([]int, len(m.nodes))
	for _, n := range m.nodes {
		indeg[n.id] = len(n.parentIDs())
	}

	var queue []NodeID
	for id := range indeg {
		if indeg[id] == 0 {
			queue = append(queue, NodeID(id))
		}
	}

	order := make([]NodeID, 0, len(m.nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for c := range m.nodes[id].children {
			indeg[c]--
			if indeg[c] == 0 {
				queue = append(queue, c)
			}
		}
	}
	if len(order) != len(m.nodes) {
		return nil, ErrCycle
	}

	return order, nil
}
