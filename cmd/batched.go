package cmd

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/allocsim/sim/experiment"
	"github.com/inference-sim/allocsim/sim/trace"
)

// batchedOptions holds the flags of the batched subcommand.
type batchedOptions struct {
	bins             int   // Number of bins
	batchSizes       []int // Batch sizes to sweep
	smallBatchFactor int   // Balls per bin when b < n
	largeBatchFactor int   // Balls per bin when b >= n
}

// newBatchedCmd runs the b-Batched Two-Choice sweep
func newBatchedCmd(root *rootOptions) *cobra.Command {
	opts := &batchedOptions{}
	cmd := &cobra.Command{
		Use:   "batched",
		Short: "Sweep the b-Batched Two-Choice process over batch sizes",
		Run: func(cmd *cobra.Command, args []string) {
			root.validate()
			cfg := buildBatchedConfig(root, opts)
			if err := cfg.Validate(); err != nil {
				logrus.Fatalf("Invalid batched configuration: %v", err)
			}

			logrus.Infof("Starting batched sweep: n=%d, batch sizes=%v, runs=%d, seed=%d",
				cfg.NumBins, cfg.BatchSizes, cfg.Runs, cfg.Seed)
			startTime := time.Now()

			report, err := experiment.RunBatched(cmd.Context(), cfg)
			if err != nil {
				logrus.Fatalf("Batched sweep failed: %v", err)
			}
			root.writeReport(cmd, report)

			logrus.Infof("Batched sweep complete in %v.", time.Since(startTime).Round(time.Millisecond))
		},
	}

	def := experiment.DefaultBatchedConfig()
	cmd.Flags().IntVar(&opts.bins, "bins", def.NumBins, "Number of bins")
	cmd.Flags().IntSliceVar(&opts.batchSizes, "batch-sizes", def.BatchSizes, "Comma-separated batch sizes to sweep")
	cmd.Flags().IntVar(&opts.smallBatchFactor, "small-batch-factor", def.SmallBatchFactor, "Balls per bin when the batch is smaller than the number of bins")
	cmd.Flags().IntVar(&opts.largeBatchFactor, "large-batch-factor", def.LargeBatchFactor, "Balls per bin when the batch is at least the number of bins")
	return cmd
}

// buildBatchedConfig assembles a BatchedConfig from CLI flags.
func buildBatchedConfig(root *rootOptions, opts *batchedOptions) experiment.BatchedConfig {
	cfg := experiment.DefaultBatchedConfig()
	cfg.NumBins = opts.bins
	cfg.BatchSizes = append([]int(nil), opts.batchSizes...)
	cfg.SmallBatchFactor = opts.smallBatchFactor
	cfg.LargeBatchFactor = opts.largeBatchFactor
	cfg.Runs = root.runs
	cfg.Seed = root.seed
	cfg.Rounding = root.applyRounding(cfg.Rounding)
	cfg.TraceLevel = trace.TraceLevel(root.traceLevel)
	return cfg
}
