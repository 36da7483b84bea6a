package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions  int   // decisions retained in the trace
	Dropped         int64 // decisions past TraceConfig.MaxDecisions, not summarized
	LighterChosen   int   // chosen bin strictly lighter than the alternative
	HeavierChosen   int   // chosen bin strictly heavier than the alternative
	Ties            int   // two distinct bins with equal loads
	SelfPairs       int   // the same bin sampled twice
	MeanRegret      float64
	MaxRegret       int64
	UniqueBins      int
	BinDistribution map[int]int // bin index → balls allocated
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		BinDistribution: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Decisions)
	summary.Dropped = st.Dropped
	totalRegret := int64(0)
	for _, d := range st.Decisions {
		summary.BinDistribution[d.Chosen]++
		switch {
		case d.Sample1 == d.Sample2:
			summary.SelfPairs++
		case d.ChosenLoad() < d.OtherLoad():
			summary.LighterChosen++
		case d.ChosenLoad() > d.OtherLoad():
			summary.HeavierChosen++
		default:
			summary.Ties++
		}
		r := d.Regret()
		totalRegret += r
		if r > summary.MaxRegret {
			summary.MaxRegret = r
		}
	}
	if summary.TotalDecisions > 0 {
		summary.MeanRegret = float64(totalRegret) / float64(summary.TotalDecisions)
	}

	summary.UniqueBins = len(summary.BinDistribution)

	return summary
}
