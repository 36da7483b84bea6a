// Package experiment drives the allocation engine across parameter sweeps
// and many independent runs, aggregating gaps into histograms and means.
//
// Each run gets a fresh allocator and a private random stream derived from
// the experiment seed, the sweep point and the run index, so any single point
// can be reproduced in isolation.
package experiment

import (
	"fmt"

	"github.com/inference-sim/allocsim/sim"
	"github.com/inference-sim/allocsim/sim/trace"
)

// DefaultBatchSizes are the batch sizes swept by the b-Batched experiment.
var DefaultBatchSizes = []int{5, 10, 50, 100, 500, 1_000, 5_000, 10_000, 50_000, 100_000, 500_000}

// DefaultBinCounts are the bin counts swept by the noisy-policy experiment.
var DefaultBinCounts = []int{10_000, 50_000, 100_000}

// BatchedConfig configures the b-Batched Two-Choice sweep.
type BatchedConfig struct {
	NumBins    int   `yaml:"num_bins"`
	Runs       int   `yaml:"runs"`
	BatchSizes []int `yaml:"batch_sizes"`
	Seed       int64 `yaml:"seed"`
	// Balls allocated per bin are SmallBatchFactor when b < NumBins and
	// LargeBatchFactor when b >= NumBins.
	SmallBatchFactor int              `yaml:"small_batch_factor"`
	LargeBatchFactor int              `yaml:"large_batch_factor"`
	Rounding         Rounding         `yaml:"rounding"`
	TraceLevel       trace.TraceLevel `yaml:"trace_level,omitempty"`
}

// DefaultBatchedConfig returns the configuration of the published b-Batched experiment.
func DefaultBatchedConfig() BatchedConfig {
	return BatchedConfig{
		NumBins:          10_000,
		Runs:             100,
		BatchSizes:       append([]int(nil), DefaultBatchSizes...),
		SmallBatchFactor: 50,
		LargeBatchFactor: 1_000,
		Rounding:         RoundCeil,
	}
}

// Validate checks ranges and names.
func (c BatchedConfig) Validate() error {
	if c.NumBins < 1 {
		return fmt.Errorf("num_bins must be at least 1, got %d", c.NumBins)
	}
	if c.Runs < 1 {
		return fmt.Errorf("runs must be at least 1, got %d", c.Runs)
	}
	if len(c.BatchSizes) == 0 {
		return fmt.Errorf("batch_sizes must not be empty")
	}
	for _, b := range c.BatchSizes {
		if b < 1 {
			return fmt.Errorf("batch size must be at least 1, got %d", b)
		}
	}
	if c.SmallBatchFactor < 1 || c.LargeBatchFactor < 1 {
		return fmt.Errorf("batch factors must be at least 1, got small=%d large=%d",
			c.SmallBatchFactor, c.LargeBatchFactor)
	}
	if !IsValidRounding(c.Rounding) {
		return fmt.Errorf("unknown rounding %q", string(c.Rounding))
	}
	if !trace.IsValidTraceLevel(string(c.TraceLevel)) {
		return fmt.Errorf("unknown trace level %q", string(c.TraceLevel))
	}
	return nil
}

// Rounds returns how many batches of size b one run allocates:
// factor·NumBins/b, at least 1.
func (c BatchedConfig) Rounds(b int) int {
	factor := c.SmallBatchFactor
	if b >= c.NumBins {
		factor = c.LargeBatchFactor
	}
	rounds := factor * c.NumBins / b
	if rounds < 1 {
		return 1
	}
	return rounds
}

// NoisyConfig configures the sweep of a noisy decision policy over its
// parameter.
type NoisyConfig struct {
	Policy      string           `yaml:"policy"`
	Params      []float64        `yaml:"params"`
	BinCounts   []int            `yaml:"bin_counts"`
	BallsPerBin int              `yaml:"balls_per_bin"`
	Runs        int              `yaml:"runs"`
	Seed        int64            `yaml:"seed"`
	Rounding    Rounding         `yaml:"rounding"`
	TraceLevel  trace.TraceLevel `yaml:"trace_level,omitempty"`
}

// DefaultNoisyConfig returns the configuration of the published noisy
// experiments for the given policy: parameters 1..20, m = 1000·n balls.
func DefaultNoisyConfig(policy string) NoisyConfig {
	return NoisyConfig{
		Policy:      policy,
		Params:      ParamRange(1, 20),
		BinCounts:   append([]int(nil), DefaultBinCounts...),
		BallsPerBin: 1_000,
		Runs:        100,
		Rounding:    RoundFloor,
	}
}

// Validate checks ranges and names, including every policy parameter.
func (c NoisyConfig) Validate() error {
	if !sim.IsValidDecisionPolicy(c.Policy) {
		return fmt.Errorf("unknown decision policy %q", c.Policy)
	}
	if len(c.Params) == 0 {
		return fmt.Errorf("params must not be empty")
	}
	for _, p := range c.Params {
		if _, err := sim.NewDecisionPolicy(c.Policy, p); err != nil {
			return err
		}
	}
	if len(c.BinCounts) == 0 {
		return fmt.Errorf("bin_counts must not be empty")
	}
	for _, n := range c.BinCounts {
		if n < 1 {
			return fmt.Errorf("bin count must be at least 1, got %d", n)
		}
	}
	if c.BallsPerBin < 1 {
		return fmt.Errorf("balls_per_bin must be at least 1, got %d", c.BallsPerBin)
	}
	if c.Runs < 1 {
		return fmt.Errorf("runs must be at least 1, got %d", c.Runs)
	}
	if !IsValidRounding(c.Rounding) {
		return fmt.Errorf("unknown rounding %q", string(c.Rounding))
	}
	if !trace.IsValidTraceLevel(string(c.TraceLevel)) {
		return fmt.Errorf("unknown trace level %q", string(c.TraceLevel))
	}
	return nil
}

// ParamRange returns the integers lo..hi inclusive as float parameters.
func ParamRange(lo, hi int) []float64 {
	if hi < lo {
		return nil
	}
	out := make([]float64, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		out = append(out, float64(v))
	}
	return out
}

// traceFor returns a capped decision trace for the first run of a sweep
// point when tracing is on, nil otherwise.
func traceFor(level trace.TraceLevel, run int) *trace.SimulationTrace {
	if level != trace.TraceLevelDecisions || run != 0 {
		return nil
	}
	return trace.NewSimulationTrace(trace.TraceConfig{Level: level, MaxDecisions: maxTracedDecisions})
}

// maxTracedDecisions bounds trace memory for long runs.
const maxTracedDecisions = 1_000_000
