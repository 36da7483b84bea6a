package experiment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/allocsim/sim"
	"github.com/inference-sim/allocsim/sim/trace"
)

// NoisyPoint holds the results for one (bin count, parameter) pair.
type NoisyPoint struct {
	NumBins int                 `yaml:"num_bins"`
	Param   float64             `yaml:"param"`
	Balls   int64               `yaml:"balls"`
	Gaps    GapStats            `yaml:"gaps"`
	Trace   *trace.TraceSummary `yaml:"trace,omitempty"`
}

// RunNoisy sweeps cfg.Policy over cfg.Params for every bin count, running
// the sequential two-sample process for BallsPerBin·n balls per run.
// The context is checked between runs.
func RunNoisy(ctx context.Context, cfg NoisyConfig) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid noisy config: %w", err)
	}
	key := sim.NewSimulationKey(cfg.Seed)
	report := &Report{Experiment: ExperimentNoisy, Seed: cfg.Seed, Runs: cfg.Runs, Policy: cfg.Policy}

	for _, n := range cfg.BinCounts {
		m := int64(cfg.BallsPerBin) * int64(n)
		for _, param := range cfg.Params {
			policy, err := sim.NewDecisionPolicy(cfg.Policy, param)
			if err != nil {
				return nil, err
			}
			logrus.Infof("noisy: policy=%s param=%g n=%d m=%d runs=%d", cfg.Policy, param, n, m, cfg.Runs)
			rngs := sim.NewPartitionedRNG(key.Derive(fmt.Sprintf("n_%d/param_%g", n, param)))
			gaps := newGapCollector(cfg.Rounding)
			point := NoisyPoint{NumBins: n, Param: param, Balls: m}

			for run := 0; run < cfg.Runs; run++ {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				alloc, err := sim.NewSequentialAllocator(n, policy)
				if err != nil {
					return nil, err
				}
				st := traceFor(cfg.TraceLevel, run)
				alloc.SetTrace(st)
				rng := rngs.ForRun(run)
				for j := int64(0); j < m; j++ {
					alloc.NextRound(rng)
				}
				gaps.add(alloc.Gap())
				if st != nil {
					point.Trace = trace.Summarize(st)
				}
				logrus.Debugf("noisy: n=%d param=%g run=%d gap=%.3f", n, param, run, alloc.Gap())
			}

			point.Gaps = gaps.stats()
			report.Noisy = append(report.Noisy, point)
		}
	}
	return report, nil
}
