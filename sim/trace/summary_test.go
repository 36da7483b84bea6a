package trace

import "testing"

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	if summary.TotalDecisions != 0 || summary.BinDistribution == nil {
		t.Errorf("unexpected summary for nil trace: %+v", summary)
	}
}

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.TotalDecisions != 0 {
		t.Errorf("expected 0 total decisions, got %d", summary.TotalDecisions)
	}
	if summary.UniqueBins != 0 {
		t.Errorf("expected 0 unique bins, got %d", summary.UniqueBins)
	}
	if summary.MeanRegret != 0 || summary.MaxRegret != 0 {
		t.Error("expected 0 regret values")
	}
	if len(summary.BinDistribution) != 0 {
		t.Error("expected empty bin distribution")
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with one decision of each kind
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})
	st.RecordDecision(DecisionRecord{Sample1: 0, Sample2: 1, Load1: 1, Load2: 3, Chosen: 0}) // lighter
	st.RecordDecision(DecisionRecord{Sample1: 0, Sample2: 1, Load1: 1, Load2: 3, Chosen: 1}) // heavier, regret 2
	st.RecordDecision(DecisionRecord{Sample1: 2, Sample2: 1, Load1: 0, Load2: 0, Chosen: 2}) // tie
	st.RecordDecision(DecisionRecord{Sample1: 2, Sample2: 2, Load1: 1, Load2: 1, Chosen: 2}) // self pair

	// WHEN summarized
	summary := Summarize(st)

	// THEN each category is counted once
	if summary.TotalDecisions != 4 {
		t.Errorf("expected 4 total decisions, got %d", summary.TotalDecisions)
	}
	if summary.LighterChosen != 1 || summary.HeavierChosen != 1 || summary.Ties != 1 || summary.SelfPairs != 1 {
		t.Errorf("unexpected category counts: %+v", summary)
	}
	if summary.MaxRegret != 2 {
		t.Errorf("expected max regret 2, got %d", summary.MaxRegret)
	}
	if summary.MeanRegret != 0.5 {
		t.Errorf("expected mean regret 0.5, got %f", summary.MeanRegret)
	}
	if summary.BinDistribution[2] != 2 || summary.UniqueBins != 3 {
		t.Errorf("unexpected bin distribution: %v", summary.BinDistribution)
	}
}

func TestSummarize_CappedTrace_ReportsDropped(t *testing.T) {
	// GIVEN a trace capped at 2 decisions that saw 5
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions, MaxDecisions: 2})
	for i := 0; i < 5; i++ {
		st.RecordDecision(DecisionRecord{Sample1: i, Sample2: i, Chosen: i})
	}

	// WHEN summarized
	summary := Summarize(st)

	// THEN only the retained decisions are counted and the overflow is reported
	if summary.TotalDecisions != 2 {
		t.Errorf("expected 2 total decisions, got %d", summary.TotalDecisions)
	}
	if summary.Dropped != 3 {
		t.Errorf("expected 3 dropped decisions, got %d", summary.Dropped)
	}
}
