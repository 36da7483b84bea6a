package cmd

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/allocsim/sim"
	"github.com/inference-sim/allocsim/sim/experiment"
	"github.com/inference-sim/allocsim/sim/trace"
)

// noisyOptions holds the flags of the noisy subcommand.
type noisyOptions struct {
	policy      string    // Decision policy name
	params      []float64 // Explicit parameter values; overrides --param-min/--param-max
	paramMin    int       // First integer parameter of the sweep
	paramMax    int       // Last integer parameter of the sweep
	binCounts   []int     // Bin counts to sweep
	ballsPerBin int       // Balls allocated per bin in each run (m/n)
}

// newNoisyCmd sweeps a noisy decision policy over its parameter
func newNoisyCmd(root *rootOptions) *cobra.Command {
	opts := &noisyOptions{}
	cmd := &cobra.Command{
		Use:   "noisy",
		Short: "Sweep a noisy Two-Choice policy (sigma-noisy, g-bounded, g-myopic) over its parameter",
		Run: func(cmd *cobra.Command, args []string) {
			root.validate()
			if !sim.IsValidDecisionPolicy(opts.policy) {
				logrus.Fatalf("Unknown --policy %q (valid: %v)", opts.policy, sim.DecisionPolicyNames())
			}
			cfg := buildNoisyConfig(root, opts)
			if err := cfg.Validate(); err != nil {
				logrus.Fatalf("Invalid noisy configuration: %v", err)
			}

			logrus.Infof("Starting noisy sweep: policy=%s, params=%v, bins=%v, m/n=%d, runs=%d, seed=%d",
				cfg.Policy, cfg.Params, cfg.BinCounts, cfg.BallsPerBin, cfg.Runs, cfg.Seed)
			startTime := time.Now()

			report, err := experiment.RunNoisy(cmd.Context(), cfg)
			if err != nil {
				logrus.Fatalf("Noisy sweep failed: %v", err)
			}
			root.writeReport(cmd, report)

			logrus.Infof("Noisy sweep complete in %v.", time.Since(startTime).Round(time.Millisecond))
		},
	}

	def := experiment.DefaultNoisyConfig("sigma-noisy")
	cmd.Flags().StringVar(&opts.policy, "policy", def.Policy, "Decision policy (sigma-noisy, g-bounded, g-myopic, two-choice, one-choice)")
	cmd.Flags().Float64SliceVar(&opts.params, "params", nil, "Comma-separated parameter values (overrides --param-min/--param-max)")
	cmd.Flags().IntVar(&opts.paramMin, "param-min", 1, "First integer parameter of the sweep")
	cmd.Flags().IntVar(&opts.paramMax, "param-max", 20, "Last integer parameter of the sweep")
	cmd.Flags().IntSliceVar(&opts.binCounts, "bins", def.BinCounts, "Comma-separated bin counts to sweep")
	cmd.Flags().IntVar(&opts.ballsPerBin, "balls-per-bin", def.BallsPerBin, "Balls allocated per bin in each run")
	return cmd
}

// buildNoisyConfig assembles a NoisyConfig from CLI flags.
func buildNoisyConfig(root *rootOptions, opts *noisyOptions) experiment.NoisyConfig {
	cfg := experiment.DefaultNoisyConfig(opts.policy)
	if len(opts.params) > 0 {
		cfg.Params = append([]float64(nil), opts.params...)
	} else {
		cfg.Params = experiment.ParamRange(opts.paramMin, opts.paramMax)
	}
	cfg.BinCounts = append([]int(nil), opts.binCounts...)
	cfg.BallsPerBin = opts.ballsPerBin
	cfg.Runs = root.runs
	cfg.Seed = root.seed
	cfg.Rounding = root.applyRounding(cfg.Rounding)
	cfg.TraceLevel = trace.TraceLevel(root.traceLevel)
	return cfg
}
