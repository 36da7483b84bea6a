package experiment

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Experiment names.
const (
	ExperimentBatched = "batched"
	ExperimentNoisy   = "noisy"
)

// Report is the outcome of one sweep.
type Report struct {
	Experiment string         `yaml:"experiment"`
	Policy     string         `yaml:"policy"`
	Seed       int64          `yaml:"seed"`
	Runs       int            `yaml:"runs"`
	Batched    []BatchedPoint `yaml:"batched,omitempty"`
	Noisy      []NoisyPoint   `yaml:"noisy,omitempty"`
}

// Format selects a report rendering.
type Format string

const (
	// FormatText is a plain summary table.
	FormatText Format = "text"
	// FormatLaTeX prints histogram rows and plot coordinates ready to paste
	// into LaTeX tables and pgfplots figures.
	FormatLaTeX Format = "latex"
	// FormatYAML dumps the full report.
	FormatYAML Format = "yaml"
)

// validFormats is the set of recognized report formats.
var validFormats = map[Format]bool{FormatText: true, FormatLaTeX: true, FormatYAML: true}

// IsValidFormat returns true if the given string names a report format.
func IsValidFormat(f string) bool {
	return validFormats[Format(f)]
}

// Render writes report to w in the requested format.
func Render(w io.Writer, format Format, report *Report) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		return enc.Close()
	case FormatLaTeX:
		return renderLaTeX(w, report)
	case FormatText:
		return renderText(w, report)
	default:
		return fmt.Errorf("unknown report format %q", string(format))
	}
}

// errWriter keeps the first write error so rendering code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) histogram(h GapHistogram, runs int) {
	for _, k := range h.Keys() {
		ew.printf("\\textbf{%d} : %d\\%%\n", k, h.Percent(k, runs))
	}
}

func renderLaTeX(w io.Writer, r *Report) error {
	ew := &errWriter{w: w}
	switch r.Experiment {
	case ExperimentBatched:
		ew.printf("=== Gap distribution per batch size ===\n")
		for _, p := range r.Batched {
			ew.printf("Batch-size (b) : %d\n", p.BatchSize)
			ew.printf("Two-Choice:\n")
			ew.histogram(p.TwoChoice.Histogram, r.Runs)
			ew.printf("One-Choice:\n")
			ew.histogram(p.OneChoice.Histogram, r.Runs)
			ew.printf("\n")
		}
		ew.printf("=== Average gap vs batch size ===\n")
		ew.printf("One-Choice:\n")
		for _, p := range r.Batched {
			ew.printf("(%d, %.2f)\n", p.BatchSize, p.OneChoice.Mean)
		}
		ew.printf("Two-Choice:\n")
		for _, p := range r.Batched {
			ew.printf("(%d, %.2f)\n", p.BatchSize, p.TwoChoice.Mean)
		}
	case ExperimentNoisy:
		ew.printf("%s:\n", r.Policy)
		lastN := -1
		for _, p := range r.Noisy {
			if p.NumBins != lastN {
				ew.printf("n : %d\n\n", p.NumBins)
				lastN = p.NumBins
			}
			ew.printf("Value : %g\n", p.Param)
			ew.histogram(p.Gaps.Histogram, r.Runs)
		}
		ew.printf("=== Average gap vs parameter ===\n")
		lastN = -1
		for _, p := range r.Noisy {
			if p.NumBins != lastN {
				ew.printf("n : %d\n", p.NumBins)
				lastN = p.NumBins
			}
			ew.printf("(%g, %.2f)\n", p.Param, p.Gaps.Mean)
		}
	default:
		return fmt.Errorf("unknown experiment %q", r.Experiment)
	}
	return ew.err
}

func renderText(w io.Writer, r *Report) error {
	ew := &errWriter{w: w}
	ew.printf("=== %s experiment (policy=%s, seed=%d, runs=%d) ===\n", r.Experiment, r.Policy, r.Seed, r.Runs)
	switch r.Experiment {
	case ExperimentBatched:
		ew.printf("%10s %10s %14s %14s %14s %14s\n", "batch", "rounds", "1c-mean-gap", "1c-max-gap", "2c-mean-gap", "2c-max-gap")
		for _, p := range r.Batched {
			ew.printf("%10d %10d %14.3f %14d %14.3f %14d\n",
				p.BatchSize, p.Rounds, p.OneChoice.Mean, p.OneChoice.Max, p.TwoChoice.Mean, p.TwoChoice.Max)
		}
	case ExperimentNoisy:
		ew.printf("%10s %10s %14s %14s %14s %14s\n", "bins", "param", "mean-gap", "stddev", "max-gap", "raw-mean-gap")
		for _, p := range r.Noisy {
			ew.printf("%10d %10g %14.3f %14.3f %14d %14.3f\n",
				p.NumBins, p.Param, p.Gaps.Mean, p.Gaps.StdDev, p.Gaps.Max, p.Gaps.RawMean)
		}
	default:
		return fmt.Errorf("unknown experiment %q", r.Experiment)
	}
	return ew.err
}
