// Package trace provides decision-trace recording for allocation analysis.
// This package has no dependencies on sim/ — it stores pure data types.
package trace

// DecisionRecord captures a single two-sample allocation decision.
// Load1 and Load2 are the loads the policy decided against: the live loads
// for sequential allocation, the frozen pre-batch loads for batched rounds.
type DecisionRecord struct {
	Round   int64
	Sample1 int
	Sample2 int
	Load1   int64
	Load2   int64
	Chosen  int
}

// ChosenLoad returns the load of the bin that received the ball.
func (r DecisionRecord) ChosenLoad() int64 {
	if r.Chosen == r.Sample1 {
		return r.Load1
	}
	return r.Load2
}

// OtherLoad returns the load of the sampled bin that did not receive the ball.
func (r DecisionRecord) OtherLoad() int64 {
	if r.Chosen == r.Sample1 {
		return r.Load2
	}
	return r.Load1
}

// Regret returns how much heavier the chosen bin was than the alternative;
// 0 if the lighter (or an equally loaded) bin was chosen.
func (r DecisionRecord) Regret() int64 {
	if d := r.ChosenLoad() - r.OtherLoad(); d > 0 {
		return d
	}
	return 0
}
