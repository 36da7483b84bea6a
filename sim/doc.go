// Package sim provides the balls-into-bins allocation engine.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - loadvector.go: per-bin load counters with running max load and total balls
//   - decision.go: the DecisionPolicy interface and its Two-Choice, g-Bounded,
//     g-Myopic and σ-Noisy implementations
//   - allocator.go: the sequential process (one ball per round, live loads)
//   - batched.go: the b-Batched process (b balls per round, frozen loads)
//
// # Architecture
//
// The engine is single-threaded and performs no I/O. Randomness is injected
// explicitly: every NextRound call receives a RandSource, and PartitionedRNG
// derives an isolated, reproducible stream per run from one master seed.
// Sub-packages build on the engine:
//   - sim/trace/: optional per-decision recording and summaries
//   - sim/experiment/: parameter sweeps, gap histograms and report rendering
//
// # Key Interfaces
//
//   - DecisionPolicy: pick one of two sampled bins given a read-only load view
//   - Allocator: advance a run by one round and observe max load, gap and loads
//   - RandSource: the randomness capability (*rand.Rand satisfies it)
package sim
