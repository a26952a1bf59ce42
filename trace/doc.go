// Package trace records sampled values during MCMC runs.
//
// A Backend receives one Initialize per sampling run (opening a new
// chain), a Tally per recorded iteration, and a Finalize at the end.
// RAM is the in-memory implementation; its Values method retrieves a
// recorded series with optional burn/thin applied, and Summary reduces
// a series to component-wise moments and extrema.
//
// Errors:
//   - ErrNotInitialized - Tally/Values before Initialize;
//   - ErrUnknownVariable - name no chain has recorded;
//   - ErrBadChain        - chain index out of range;
//   - ErrEmptySlice      - burn/thin selected zero samples.
package trace
