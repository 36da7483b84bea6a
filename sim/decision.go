package sim

import (
	"fmt"
	"math"
	"sort"
)

// DecisionPolicy chooses which of two sampled bins receives the next ball.
//
// Decide must return either i1 or i2; allocators treat any other result as a
// fatal invariant violation. loads is a read-only view of the load vector the
// decision is made against. Implementations hold only immutable parameters,
// so one instance may be shared by independent runs as long as each run
// passes its own RandSource.
type DecisionPolicy interface {
	Decide(loads []int64, i1, i2 int, rng RandSource) int
	// Name returns the registry name of the policy.
	Name() string
}

// TwoChoice allocates to the less loaded of the two samples.
// Ties go to the first sample.
type TwoChoice struct{}

// Decide implements DecisionPolicy for TwoChoice.
func (TwoChoice) Decide(loads []int64, i1, i2 int, _ RandSource) int {
	return lighter(loads[i1], loads[i2], i1, i2)
}

// Name implements DecisionPolicy for TwoChoice.
func (TwoChoice) Name() string { return "two-choice" }

// OneChoice always allocates to the first sample, ignoring load information.
// Baseline reported next to Two-Choice in batched sweeps.
type OneChoice struct{}

// Decide implements DecisionPolicy for OneChoice.
func (OneChoice) Decide(_ []int64, i1, _ int, _ RandSource) int { return i1 }

// Name implements DecisionPolicy for OneChoice.
func (OneChoice) Name() string { return "one-choice" }

// GBounded behaves as Two-Choice when the two loads differ by more than G and
// otherwise sends the ball to the more loaded bin (an adversary reversing
// every comparison it is allowed to).
// At exact ties the second sample receives the ball, the mirror of Two-Choice.
type GBounded struct {
	G int64
}

// Decide implements DecisionPolicy for GBounded.
func (p GBounded) Decide(loads []int64, i1, i2 int, _ RandSource) int {
	l1, l2 := loads[i1], loads[i2]
	if absDiff(l1, l2) > p.G {
		return lighter(l1, l2, i1, i2)
	}
	return lighter(l1, l2, i2, i1)
}

// Name implements DecisionPolicy for GBounded.
func (GBounded) Name() string { return "g-bounded" }

// GMyopic flips a fair coin between the two samples when their loads differ
// by at most G and behaves as Two-Choice otherwise.
type GMyopic struct {
	G int64
}

// Decide implements DecisionPolicy for GMyopic.
func (p GMyopic) Decide(loads []int64, i1, i2 int, rng RandSource) int {
	l1, l2 := loads[i1], loads[i2]
	if absDiff(l1, l2) <= p.G {
		if rng.Float64() < 0.5 {
			return i1
		}
		return i2
	}
	return lighter(l1, l2, i1, i2)
}

// Name implements DecisionPolicy for GMyopic.
func (GMyopic) Name() string { return "g-myopic" }

// SigmaNoisy compares load estimates corrupted by fresh N(0, Sigma²) noise.
// Each estimate is truncated toward zero to an integer before the Two-Choice
// comparison. Sigma == 0 draws no noise and reduces exactly to Two-Choice.
type SigmaNoisy struct {
	Sigma float64
}

// Decide implements DecisionPolicy for SigmaNoisy.
func (p SigmaNoisy) Decide(loads []int64, i1, i2 int, rng RandSource) int {
	if p.Sigma == 0 {
		return lighter(loads[i1], loads[i2], i1, i2)
	}
	e1 := int64(float64(loads[i1]) + rng.NormFloat64()*p.Sigma)
	e2 := int64(float64(loads[i2]) + rng.NormFloat64()*p.Sigma)
	return lighter(e1, e2, i1, i2)
}

// Name implements DecisionPolicy for SigmaNoisy.
func (SigmaNoisy) Name() string { return "sigma-noisy" }

// lighter returns first when l1 <= l2, otherwise second.
func lighter(l1, l2 int64, first, second int) int {
	if l1 <= l2 {
		return first
	}
	return second
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}

// validDecisionPolicies is the set of recognized decision policy names.
// The value names the parameter the policy consumes; empty means none.
var validDecisionPolicies = map[string]string{
	"two-choice":  "",
	"one-choice":  "",
	"g-bounded":   "g",
	"g-myopic":    "g",
	"sigma-noisy": "sigma",
}

// IsValidDecisionPolicy returns true if name is a recognized decision policy.
func IsValidDecisionPolicy(name string) bool {
	_, ok := validDecisionPolicies[name]
	return ok
}

// IsParameterizedPolicy returns true if the named policy consumes a parameter
// (g or sigma).
func IsParameterizedPolicy(name string) bool {
	return validDecisionPolicies[name] != ""
}

// DecisionPolicyParam returns the name of the parameter the policy consumes
// ("g" or "sigma"), or "" for unparameterized and unknown policies.
func DecisionPolicyParam(name string) string {
	return validDecisionPolicies[name]
}

// DecisionPolicyNames returns the recognized policy names, sorted.
func DecisionPolicyNames() []string {
	names := make([]string, 0, len(validDecisionPolicies))
	for name := range validDecisionPolicies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewDecisionPolicy creates a decision policy by name.
// param is g for g-bounded and g-myopic (must be a non-negative integer) and
// sigma for sigma-noisy (must be non-negative and finite). Unparameterized
// policies ignore param.
func NewDecisionPolicy(name string, param float64) (DecisionPolicy, error) {
	if !IsValidDecisionPolicy(name) {
		return nil, fmt.Errorf("unknown decision policy %q", name)
	}
	if IsParameterizedPolicy(name) {
		if math.IsNaN(param) || math.IsInf(param, 0) || param < 0 {
			return nil, fmt.Errorf("%s: parameter must be non-negative and finite, got %v", name, param)
		}
	}
	switch name {
	case "two-choice":
		return TwoChoice{}, nil
	case "one-choice":
		return OneChoice{}, nil
	case "g-bounded", "g-myopic":
		if param != math.Trunc(param) || param >= math.MaxInt64 {
			return nil, fmt.Errorf("%s: g must be an integer, got %v", name, param)
		}
		if name == "g-bounded" {
			return GBounded{G: int64(param)}, nil
		}
		return GMyopic{G: int64(param)}, nil
	case "sigma-noisy":
		return SigmaNoisy{Sigma: param}, nil
	default:
		panic(fmt.Sprintf("unhandled decision policy %q", name))
	}
}
