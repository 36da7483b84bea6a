package experiment

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Rounding selects how a raw gap is turned into the integer reported in
// histograms. The engine always exposes the raw gap; rounding happens here.
type Rounding string

const (
	// RoundCeil reports ceil(gap).
	RoundCeil Rounding = "ceil"
	// RoundFloor reports floor(gap). Gaps are never negative, so this equals
	// truncation.
	RoundFloor Rounding = "floor"
)

// Apply rounds gap according to r.
func (r Rounding) Apply(gap float64) int64 {
	switch r {
	case RoundCeil:
		return int64(math.Ceil(gap))
	case RoundFloor:
		return int64(math.Floor(gap))
	default:
		panic(fmt.Sprintf("unknown rounding %q", string(r)))
	}
}

// IsValidRounding returns true if r is a recognized rounding mode.
func IsValidRounding(r Rounding) bool {
	return r == RoundCeil || r == RoundFloor
}

// GapHistogram counts runs by rounded gap.
type GapHistogram map[int64]int

// Keys returns the recorded gaps in increasing order.
func (h GapHistogram) Keys() []int64 {
	keys := make([]int64, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Percent returns the integer percentage of runs that ended with gap k.
func (h GapHistogram) Percent(k int64, runs int) int {
	if runs == 0 {
		return 0
	}
	return h[k] * 100 / runs
}

// GapStats summarises the gaps observed across the runs of one sweep point.
type GapStats struct {
	Histogram GapHistogram `yaml:"histogram"`
	// Mean and StdDev are over the rounded gaps, Max is the largest rounded gap.
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"stddev"`
	Max    int64   `yaml:"max"`
	// RawMean is the mean of the unrounded gaps.
	RawMean float64 `yaml:"raw_mean"`
	Runs    int     `yaml:"runs"`
}

// gapCollector accumulates gaps for one sweep point.
type gapCollector struct {
	rounding Rounding
	hist     GapHistogram
	rounded  []float64
	raw      []float64
}

func newGapCollector(r Rounding) *gapCollector {
	return &gapCollector{rounding: r, hist: make(GapHistogram)}
}

func (c *gapCollector) add(gap float64) {
	g := c.rounding.Apply(gap)
	c.hist[g]++
	c.rounded = append(c.rounded, float64(g))
	c.raw = append(c.raw, gap)
}

func (c *gapCollector) stats() GapStats {
	s := GapStats{Histogram: c.hist, Runs: len(c.rounded)}
	if len(c.rounded) == 0 {
		return s
	}
	s.Mean = stat.Mean(c.rounded, nil)
	s.RawMean = stat.Mean(c.raw, nil)
	if len(c.rounded) > 1 {
		s.StdDev = stat.StdDev(c.rounded, nil)
	}
	keys := c.hist.Keys()
	s.Max = keys[len(keys)-1]
	return s
}
