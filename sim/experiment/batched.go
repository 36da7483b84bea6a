package experiment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/allocsim/sim"
	"github.com/inference-sim/allocsim/sim/trace"
)

// BatchedPoint holds the results for one batch size.
type BatchedPoint struct {
	BatchSize int `yaml:"batch_size"`
	Rounds    int `yaml:"rounds"`
	// OneChoice is the gap after the first batch. With every decision made
	// against an empty vector, the first batch is a One-Choice allocation of
	// b balls.
	OneChoice GapStats `yaml:"one_choice"`
	// TwoChoice is the gap after the last batch.
	TwoChoice GapStats            `yaml:"two_choice"`
	Trace     *trace.TraceSummary `yaml:"trace,omitempty"`
}

// RunBatched sweeps the b-Batched Two-Choice process over cfg.BatchSizes.
// The context is checked between runs.
func RunBatched(ctx context.Context, cfg BatchedConfig) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid batched config: %w", err)
	}
	key := sim.NewSimulationKey(cfg.Seed)
	report := &Report{Experiment: ExperimentBatched, Seed: cfg.Seed, Runs: cfg.Runs, Policy: sim.TwoChoice{}.Name()}

	for _, b := range cfg.BatchSizes {
		rounds := cfg.Rounds(b)
		logrus.Infof("batched: n=%d b=%d rounds=%d runs=%d", cfg.NumBins, b, rounds, cfg.Runs)
		rngs := sim.NewPartitionedRNG(key.Derive(fmt.Sprintf("batch_%d", b)))
		first := newGapCollector(cfg.Rounding)
		last := newGapCollector(cfg.Rounding)
		point := BatchedPoint{BatchSize: b, Rounds: rounds}

		for run := 0; run < cfg.Runs; run++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			alloc, err := sim.NewBatchedAllocator(cfg.NumBins, b)
			if err != nil {
				return nil, err
			}
			st := traceFor(cfg.TraceLevel, run)
			alloc.SetTrace(st)
			rng := rngs.ForRun(run)
			for round := 0; round < rounds; round++ {
				alloc.NextRound(rng)
				if round == 0 {
					first.add(alloc.Gap())
				}
			}
			last.add(alloc.Gap())
			if st != nil {
				point.Trace = trace.Summarize(st)
			}
			logrus.Debugf("batched: b=%d run=%d gap=%.3f max=%d", b, run, alloc.Gap(), alloc.MaxLoad())
		}

		point.OneChoice = first.stats()
		point.TwoChoice = last.stats()
		report.Batched = append(report.Batched, point)
	}
	return report, nil
}
