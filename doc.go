// Package monte is an in-memory engine for probabilistic graphical models
// and Markov-Chain Monte Carlo sampling.
//
// 🚀 What is monte?
//
//	A library that brings together:
//		• Model graphs: stochastic, deterministic and potential nodes wired
//		  into a DAG with two-way parent/child bookkeeping
//		• Lazy evaluation: ring-buffer caches that skip recomputation of
//		  values and log-probabilities when no input actually changed
//		• Step methods: Metropolis random-walk (with the classic adaptive
//		  scaling schedule), binary-flip Metropolis, exact-conditional Gibbs
//		• Gradient samplers: fixed-path Hamiltonian Monte Carlo and the
//		  No-U-Turn Sampler with dual-averaging step-size adaptation
//		• A sampling driver: competence-ranked step-method assignment,
//		  burn-in tuning, thinned tallying into pluggable trace backends
//
// ✨ Why choose monte?
//
//   - Deterministic – every random stream is seedable and derivable
//   - Rock-solid guarantees – sentinel errors, no panics in library paths
//   - Minimal magic – models are built by explicit registration, never by
//     reflection over the caller's namespace
//   - Extensible – bring your own densities, proposals and trace backends
//
// Under the hood, everything is organized under six subpackages:
//
//	model/   — node arena, parent/child edges, lazy caches, builder
//	dist/    — log-density/variate adapters over gonum's distuv
//	step/    — step-method contract, competence ranks, Metropolis family
//	hmc/     — leapfrog, mass-matrix potentials, HamiltonianMC, NUTS
//	trace/   — trace backend contract + the in-RAM reference backend
//	sampler/ — the end-to-end MCMC driver
//
// Quick sketch of a model:
//
//	    mu ──► x (observed)
//	    σ  ──►
//
//	one prior feeding one likelihood node; the sampler does the rest.
//
// Dive into the package docs for full examples, starting with
// model.Builder and sampler.New.
//
//	go get github.com/montemc/monte
package monte
