package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// RandSource is the randomness capability threaded through every operation
// that consumes entropy. *rand.Rand satisfies it.
//
// Implementations need not be safe for concurrent use; each simulated run
// owns a private RandSource.
type RandSource interface {
	// Intn returns a uniform integer in [0, n). Panics if n <= 0.
	Intn(n int) int
	// Float64 returns a uniform float in [0.0, 1.0).
	Float64() float64
	// NormFloat64 returns a standard normal sample (mean 0, stddev 1).
	NormFloat64() float64
}

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible experiment.
// Two experiments with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Names ===

// SubsystemRun returns the subsystem name for run N.
// Every run draws from its own stream so runs stay statistically independent
// and reproducible regardless of how many rounds earlier runs consumed.
func SubsystemRun(id int) string {
	return fmt.Sprintf("run_%d", id)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula: masterSeed XOR fnv1a64(subsystemName).
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// ForRun is shorthand for ForSubsystem(SubsystemRun(id)).
func (p *PartitionedRNG) ForRun(id int) *rand.Rand {
	return p.ForSubsystem(SubsystemRun(id))
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// Derive returns a child key for a labelled sweep point, so that every point
// of an experiment draws from its own family of streams.
func (k SimulationKey) Derive(label string) SimulationKey {
	return SimulationKey(int64(k) ^ fnv1a64(label))
}
