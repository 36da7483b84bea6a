package experiment

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/allocsim/sim/internal/testutil"
	"github.com/inference-sim/allocsim/sim/trace"
)

func smallBatchedConfig() BatchedConfig {
	cfg := DefaultBatchedConfig()
	cfg.NumBins = 8
	cfg.Runs = 6
	cfg.BatchSizes = []int{1, 4, 16}
	cfg.SmallBatchFactor = 5
	cfg.LargeBatchFactor = 10
	cfg.Seed = 42
	return cfg
}

func smallNoisyConfig(policy string, params ...float64) NoisyConfig {
	cfg := DefaultNoisyConfig(policy)
	cfg.Params = params
	cfg.BinCounts = []int{8, 16}
	cfg.BallsPerBin = 20
	cfg.Runs = 5
	cfg.Seed = 7
	return cfg
}

func histogramTotal(h GapHistogram) int {
	total := 0
	for _, c := range h {
		total += c
	}
	return total
}

func TestRunBatched_OnePointPerBatchSize(t *testing.T) {
	// GIVEN a small batched sweep
	cfg := smallBatchedConfig()

	// WHEN it runs
	report, err := RunBatched(context.Background(), cfg)
	require.NoError(t, err)

	// THEN every batch size has a point whose histograms cover all runs
	require.Len(t, report.Batched, 3)
	assert.Equal(t, ExperimentBatched, report.Experiment)
	assert.Equal(t, "two-choice", report.Policy)
	for i, p := range report.Batched {
		assert.Equal(t, cfg.BatchSizes[i], p.BatchSize)
		assert.Equal(t, cfg.Rounds(p.BatchSize), p.Rounds)
		assert.Equal(t, cfg.Runs, histogramTotal(p.TwoChoice.Histogram))
		assert.Equal(t, cfg.Runs, histogramTotal(p.OneChoice.Histogram))
		assert.GreaterOrEqual(t, p.TwoChoice.Mean, 0.0)
		assert.Nil(t, p.Trace, "tracing is off by default")
	}
}

func TestRunBatched_SameSeedSameReport(t *testing.T) {
	a, err := RunBatched(context.Background(), smallBatchedConfig())
	require.NoError(t, err)
	b, err := RunBatched(context.Background(), smallBatchedConfig())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestRunBatched_BatchOfOne_FirstRoundGapIsDeterministic(t *testing.T) {
	// GIVEN b = 1: after the first round one ball sits in one of 8 bins
	cfg := smallBatchedConfig()
	cfg.BatchSizes = []int{1}

	report, err := RunBatched(context.Background(), cfg)
	require.NoError(t, err)

	// THEN every run reports ceil(1 - 1/8) = 1 for the first round
	assert.Equal(t, GapHistogram{1: cfg.Runs}, report.Batched[0].OneChoice.Histogram)
	testutil.AssertFloat64Equal(t, "one-choice raw mean", 0.875, report.Batched[0].OneChoice.RawMean, 1e-12)
}

func TestRunBatched_TraceSummarisesFirstRun(t *testing.T) {
	cfg := smallBatchedConfig()
	cfg.BatchSizes = []int{4}
	cfg.TraceLevel = trace.TraceLevelDecisions

	report, err := RunBatched(context.Background(), cfg)
	require.NoError(t, err)

	summary := report.Batched[0].Trace
	require.NotNil(t, summary)
	assert.Equal(t, cfg.Rounds(4)*4, summary.TotalDecisions)
	assert.Equal(t, int64(0), summary.Dropped, "small runs fit under the trace cap")
	assert.Equal(t, 0, summary.HeavierChosen, "Two-Choice never picks the heavier frozen load")
}

func TestRunBatched_InvalidConfig(t *testing.T) {
	cfg := smallBatchedConfig()
	cfg.BatchSizes = []int{0}

	_, err := RunBatched(context.Background(), cfg)
	assert.Error(t, err)
}

func TestRunBatched_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunBatched(ctx, smallBatchedConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunNoisy_PointPerBinCountAndParam(t *testing.T) {
	cfg := smallNoisyConfig("g-myopic", 0, 2, 4)

	report, err := RunNoisy(context.Background(), cfg)
	require.NoError(t, err)

	// THEN points are ordered by bin count, then by parameter
	require.Len(t, report.Noisy, 6)
	assert.Equal(t, "g-myopic", report.Policy)
	assert.Equal(t, 8, report.Noisy[0].NumBins)
	assert.Equal(t, 4.0, report.Noisy[2].Param)
	assert.Equal(t, 16, report.Noisy[3].NumBins)
	for _, p := range report.Noisy {
		assert.Equal(t, int64(cfg.BallsPerBin*p.NumBins), p.Balls)
		assert.Equal(t, cfg.Runs, histogramTotal(p.Gaps.Histogram))
	}
}

func TestRunNoisy_ZeroSigmaMatchesTwoChoice(t *testing.T) {
	// GIVEN σ = 0 and plain Two-Choice with the same seed and labels
	noisy, err := RunNoisy(context.Background(), smallNoisyConfig("sigma-noisy", 0))
	require.NoError(t, err)
	plain, err := RunNoisy(context.Background(), smallNoisyConfig("two-choice", 0))
	require.NoError(t, err)

	// THEN the gap statistics are identical
	require.Len(t, noisy.Noisy, len(plain.Noisy))
	for i := range noisy.Noisy {
		assert.Equal(t, plain.Noisy[i].Gaps, noisy.Noisy[i].Gaps)
	}
}

func TestRunNoisy_InvalidParam(t *testing.T) {
	_, err := RunNoisy(context.Background(), smallNoisyConfig("g-bounded", 0.5))
	assert.Error(t, err)
}

func TestRender_LaTeXBatched(t *testing.T) {
	report := &Report{
		Experiment: ExperimentBatched, Runs: 4,
		Batched: []BatchedPoint{{
			BatchSize: 5,
			OneChoice: GapStats{Histogram: GapHistogram{3: 4}, Mean: 3},
			TwoChoice: GapStats{Histogram: GapHistogram{1: 1, 2: 3}, Mean: 1.75},
		}},
	}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatLaTeX, report))

	out := buf.String()
	assert.Contains(t, out, "Batch-size (b) : 5\nTwo-Choice:\n\\textbf{1} : 25\\%\n\\textbf{2} : 75\\%\nOne-Choice:\n\\textbf{3} : 100\\%\n")
	assert.Contains(t, out, "One-Choice:\n(5, 3.00)\nTwo-Choice:\n(5, 1.75)\n")
}

func TestRender_LaTeXNoisy(t *testing.T) {
	report := &Report{
		Experiment: ExperimentNoisy, Policy: "g-bounded", Runs: 2,
		Noisy: []NoisyPoint{
			{NumBins: 10, Param: 1, Gaps: GapStats{Histogram: GapHistogram{4: 2}, Mean: 4}},
			{NumBins: 10, Param: 2, Gaps: GapStats{Histogram: GapHistogram{5: 1, 6: 1}, Mean: 5.5}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatLaTeX, report))

	out := buf.String()
	assert.Contains(t, out, "g-bounded:\nn : 10\n\nValue : 1\n\\textbf{4} : 100\\%\nValue : 2\n\\textbf{5} : 50\\%\n\\textbf{6} : 50\\%\n")
	assert.Contains(t, out, "(2, 5.50)")
}

func TestRender_Text(t *testing.T) {
	report, err := RunNoisy(context.Background(), smallNoisyConfig("g-bounded", 1))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatText, report))
	assert.Contains(t, buf.String(), "=== noisy experiment (policy=g-bounded, seed=7, runs=5) ===")
	assert.Contains(t, buf.String(), "mean-gap")
}

func TestRender_YAML(t *testing.T) {
	report, err := RunBatched(context.Background(), smallBatchedConfig())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatYAML, report))

	var decoded Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, ExperimentBatched, decoded.Experiment)
	require.Len(t, decoded.Batched, 3)
	assert.Equal(t, report.Batched[2].TwoChoice.Histogram, decoded.Batched[2].TwoChoice.Histogram)
}

func TestRender_UnknownFormat(t *testing.T) {
	assert.Error(t, Render(&bytes.Buffer{}, Format("csv"), &Report{Experiment: ExperimentBatched}))
	assert.False(t, IsValidFormat("csv"))
	assert.True(t, IsValidFormat("latex"))
}
