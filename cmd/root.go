package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/allocsim/sim"
	"github.com/inference-sim/allocsim/sim/experiment"
	"github.com/inference-sim/allocsim/sim/trace"
)

// rootOptions holds the flags shared by every experiment.
type rootOptions struct {
	seed       int64  // Master seed; every run derives its own stream from it
	runs       int    // Independent runs per sweep point
	logLevel   string // Log verbosity level
	format     string // Report format (text, latex, yaml)
	traceLevel string // Decision trace level (none, decisions)
	rounding   string // Gap rounding for histograms (ceil, floor); empty uses the experiment default
}

// newRootCmd builds the base command for the CLI with all subcommands attached.
// Every call returns an independent command tree with its own flag state.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "allocsim",
		Short: "Balls-into-bins allocation simulator for Two-Choice and its noisy variants",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, err := logrus.ParseLevel(opts.logLevel)
			if err != nil {
				logrus.Fatalf("Invalid log level: %s", opts.logLevel)
			}
			logrus.SetLevel(level)
			logrus.SetOutput(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().Int64Var(&opts.seed, "seed", 42, "Master seed for all runs")
	rootCmd.PersistentFlags().IntVar(&opts.runs, "runs", 100, "Independent runs per sweep point")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&opts.format, "format", string(experiment.FormatLaTeX), "Report format (text, latex, yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.traceLevel, "trace", string(trace.TraceLevelNone), "Decision trace level for the first run of each point (none, decisions)")
	rootCmd.PersistentFlags().StringVar(&opts.rounding, "rounding", "", "Gap rounding in histograms (ceil, floor); default depends on the experiment")

	rootCmd.AddCommand(newPoliciesCmd())
	rootCmd.AddCommand(newBatchedCmd(opts))
	rootCmd.AddCommand(newNoisyCmd(opts))
	return rootCmd
}

// newPoliciesCmd lists the available decision policies
func newPoliciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policies",
		Short: "List available decision policies",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range sim.DecisionPolicyNames() {
				param := sim.DecisionPolicyParam(name)
				if param == "" {
					param = "-"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s param=%s\n", name, param)
			}
		},
	}
}

// validate checks flags shared by every experiment.
func (o *rootOptions) validate() {
	if o.runs < 1 {
		logrus.Fatalf("--runs must be at least 1, got %d", o.runs)
	}
	if !experiment.IsValidFormat(o.format) {
		logrus.Fatalf("Unknown --format %q (valid: text, latex, yaml)", o.format)
	}
	if !trace.IsValidTraceLevel(o.traceLevel) {
		logrus.Fatalf("Unknown --trace %q (valid: none, decisions)", o.traceLevel)
	}
	if o.rounding != "" && !experiment.IsValidRounding(experiment.Rounding(o.rounding)) {
		logrus.Fatalf("Unknown --rounding %q (valid: ceil, floor)", o.rounding)
	}
}

// applyRounding overrides the experiment default when --rounding is set.
func (o *rootOptions) applyRounding(def experiment.Rounding) experiment.Rounding {
	if o.rounding == "" {
		return def
	}
	return experiment.Rounding(o.rounding)
}

// writeReport renders report to the command's output.
func (o *rootOptions) writeReport(cmd *cobra.Command, report *experiment.Report) {
	if err := experiment.Render(cmd.OutOrStdout(), experiment.Format(o.format), report); err != nil {
		logrus.Fatalf("Failed to write report: %v", err)
	}
}

// Execute runs the CLI root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
