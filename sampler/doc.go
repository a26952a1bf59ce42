// Package sampler drives MCMC runs over a model: it assigns one step
// method per unobserved stochastic, iterates them, tunes during
// burn-in, and records post-burn samples into a trace backend.
//
// Assignment picks, for each variable, the highest-competence entry of
// the candidate list (DefaultCandidates unless overridden): binary
// flip sampling, then NUTS over all continuous variables as one block,
// then random-walk Metropolis. UseMethod pins a hand-built method to
// its variables before the pass runs.
//
// Sample blocks for the whole run. Pause, Resume and Halt are safe to
// call from other goroutines and take effect at iteration boundaries;
// a halted run returns ErrHalted.
//
// Errors:
//   - ErrNilModel        - New received a nil model;
//   - ErrNilMethod       - UseMethod received a nil method;
//   - ErrNoVariables     - model with nothing to sample;
//   - ErrNoMethod        - a variable no candidate can update;
//   - ErrBadIterations   - iter/burn out of range;
//   - ErrBadThin         - non-positive thinning interval;
//   - ErrBadTuneInterval - non-positive tuning interval;
//   - ErrBadInitialValue - zero probability at the initial value;
//   - ErrBusy            - Sample while a run is in progress;
//   - ErrHalted          - run stopped by Halt.
package sampler
