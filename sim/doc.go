// Package sim provides the core corpus-modeling engine: it compresses an
// observed symbol-transition count matrix into a compact Markov automaton
// and draws synthetic sequence corpora from it.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - automaton.go: BuildAutomaton and the immutable Automaton triple
//     (state transitions, emissions, initial distribution)
//   - simulator.go: Simulate, the seeded inverse-CDF corpus generator
//   - rng.go: deterministic seed derivation for Monte Carlo cycles
//
// # Architecture
//
// The sim package holds the model and generator; analysis lives in
// sub-packages:
//   - sim/metrics/: the fixed corpus statistic battery
//   - sim/validate/: Monte Carlo fidelity validation against a real corpus
//   - sim/topology/: spectral and graph analysis of the transition matrix
//
// Everything is a pure function of its inputs plus an explicitly passed
// *rand.Rand. There is no package-level mutable state, which is what makes
// the parallel Monte Carlo loop in sim/validate deterministic for any
// worker count.
package sim
