package sim

import (
	"fmt"

	"github.com/inference-sim/allocsim/sim/trace"
)

// Allocator advances one simulated run round by round.
// Implementations own their LoadVector exclusively; observers return copies.
type Allocator interface {
	// NextRound allocates one round's worth of balls, drawing samples from rng.
	NextRound(rng RandSource)
	// MaxLoad returns the current maximum bin load.
	MaxLoad() int64
	// Gap returns maxLoad minus the mean load, unrounded.
	Gap() float64
	// LoadVector returns a copy of the per-bin loads.
	LoadVector() []int64
	// TotalBalls returns the number of balls placed so far.
	TotalBalls() int64
	// BallsPerRound returns how many balls one NextRound call places.
	BallsPerRound() int
	// Rounds returns the number of completed rounds.
	Rounds() int64
}

// SequentialAllocator places exactly one ball per round, consulting its
// DecisionPolicy against the current load vector.
type SequentialAllocator struct {
	state  *LoadVector
	policy DecisionPolicy
	rounds int64
	trace  *trace.SimulationTrace
}

// NewSequentialAllocator creates a SequentialAllocator over numBins empty bins.
func NewSequentialAllocator(numBins int, policy DecisionPolicy) (*SequentialAllocator, error) {
	if policy == nil {
		return nil, ErrNilPolicy
	}
	state, err := NewLoadVector(numBins)
	if err != nil {
		return nil, err
	}
	return &SequentialAllocator{state: state, policy: policy}, nil
}

// SetTrace attaches a decision trace. A nil trace disables recording.
func (a *SequentialAllocator) SetTrace(st *trace.SimulationTrace) { a.trace = st }

// NextRound samples two bins uniformly with replacement and allocates one
// ball to the bin chosen by the policy.
func (a *SequentialAllocator) NextRound(rng RandSource) {
	n := a.state.NumBins()
	i1 := rng.Intn(n)
	i2 := rng.Intn(n)
	loads := a.state.view()
	idx := a.policy.Decide(loads, i1, i2, rng)
	mustBeSampled(a.policy, idx, i1, i2)
	if a.trace.Enabled() {
		a.trace.RecordDecision(trace.DecisionRecord{
			Round: a.rounds, Sample1: i1, Sample2: i2,
			Load1: loads[i1], Load2: loads[i2], Chosen: idx,
		})
	}
	a.state.RecordAllocation(idx, 1)
	a.rounds++
}

// Policy returns the decision policy in use.
func (a *SequentialAllocator) Policy() DecisionPolicy { return a.policy }

// MaxLoad implements Allocator.
func (a *SequentialAllocator) MaxLoad() int64 { return a.state.MaxLoad() }

// Gap implements Allocator.
func (a *SequentialAllocator) Gap() float64 { return a.state.Gap() }

// LoadVector implements Allocator.
func (a *SequentialAllocator) LoadVector() []int64 { return a.state.Snapshot() }

// TotalBalls implements Allocator.
func (a *SequentialAllocator) TotalBalls() int64 { return a.state.TotalBalls() }

// BallsPerRound implements Allocator.
func (a *SequentialAllocator) BallsPerRound() int { return 1 }

// Rounds implements Allocator.
func (a *SequentialAllocator) Rounds() int64 { return a.rounds }

// mustBeSampled panics when a policy picks a bin other than the two samples.
func mustBeSampled(p DecisionPolicy, idx, i1, i2 int) {
	if idx != i1 && idx != i2 {
		panic(fmt.Sprintf("decision policy %q returned bin %d, not one of the sampled bins (%d, %d)",
			p.Name(), idx, i1, i2))
	}
}
