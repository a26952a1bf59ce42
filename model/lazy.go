package model

// This file implements the memoization layer: a fixed-depth ring cache
// per node, keyed by an exact snapshot of the node's inputs at the time
// of evaluation. Lookup is newest-first; push evicts the oldest entry.
//
// Matching is bit-for-bit float64 equality per component. A hit returns
// the stored result without calling the user function and without side
// effects, which is what makes Metropolis-style propose/reject cheap:
// flipping a value back to its previous state usually re-hits the cache.

// cacheEntry is one memoized computation: the input snapshot plus the
// result. Deterministic nodes fill value; stochastic and potential
// nodes fill logp.
type cacheEntry struct {
	args  []Value
	logp  float64
	value Value
}

// ringCache is a bounded, newest-first memo of the last depth
// computations of one node.
type ringCache struct {
	depth   int
	entries []cacheEntry
}

func newRingCache(depth int) ringCache {
	return ringCache{depth: depth, entries: make([]cacheEntry, 0, depth)}
}

// lookup scans newest-first for an entry whose snapshot matches args
// exactly. Complexity: O(depth · |args|).
func (c *ringCache) lookup(args []Value) (cacheEntry, bool) {
	for i := range c.entries {
		if snapshotEqual(c.entries[i].args, args) {
			return c.entries[i], true
		}
	}

	return cacheEntry{}, false
}

// push records a fresh computation as the newest entry, evicting the
// oldest when at capacity. The entry must own its snapshot: callers
// pass copies, never aliases into live node state.
func (c *ringCache) push(e cacheEntry) {
	if len(c.entries) == c.depth {
		c.entries = c.entries[:len(c.entries)-1]
	}
	c.entries = append([]cacheEntry{e}, c.entries...)
}

// invalidate drops every memoized computation, forcing the next read to
// recompute. Called on rewiring.
func (c *ringCache) invalidate() {
	c.entries = c.entries[:0]
}

// snapshotEqual reports exact equality of two input snapshots.
func snapshotEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}

	return true
}

// snapshotClone deep-copies an input snapshot so a cache entry survives
// later mutation of the values it was computed from.
func snapshotClone(args []Value) []Value {
	out := make([]Value, len(args))
	for i := range args {
		out[i] = args[i].Clone()
	}

	return out
}
