package sim

import (
	"fmt"

	"github.com/inference-sim/allocsim/sim/trace"
)

// BatchedAllocator implements the b-Batched process: every round allocates
// batchSize balls, and all of the round's decisions are taken against the
// load vector as it stood when the batch began.
//
// Decisions write to a pending buffer; the commit phase folds the buffer into
// the load vector and zeroes it. The buffer is all zeros between rounds.
type BatchedAllocator struct {
	state     *LoadVector
	pending   []int64
	batchSize int
	policy    DecisionPolicy
	rounds    int64
	trace     *trace.SimulationTrace
}

// NewBatchedAllocator creates a Two-Choice BatchedAllocator over numBins
// empty bins.
func NewBatchedAllocator(numBins, batchSize int) (*BatchedAllocator, error) {
	return NewBatchedAllocatorWithPolicy(numBins, batchSize, TwoChoice{})
}

// NewBatchedAllocatorWithPolicy creates a BatchedAllocator whose decisions
// are taken by policy instead of plain Two-Choice.
func NewBatchedAllocatorWithPolicy(numBins, batchSize int, policy DecisionPolicy) (*BatchedAllocator, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("batched allocator with batch size %d: %w", batchSize, ErrZeroBatchSize)
	}
	if policy == nil {
		return nil, ErrNilPolicy
	}
	state, err := NewLoadVector(numBins)
	if err != nil {
		return nil, err
	}
	return &BatchedAllocator{
		state:     state,
		pending:   make([]int64, numBins),
		batchSize: batchSize,
		policy:    policy,
	}, nil
}

// SetTrace attaches a decision trace. A nil trace disables recording.
func (a *BatchedAllocator) SetTrace(st *trace.SimulationTrace) { a.trace = st }

// NextRound allocates one batch.
func (a *BatchedAllocator) NextRound(rng RandSource) {
	n := a.state.NumBins()
	// Decision phase: loads stays frozen, only pending is written.
	loads := a.state.view()
	for i := 0; i < a.batchSize; i++ {
		i1 := rng.Intn(n)
		i2 := rng.Intn(n)
		idx := a.policy.Decide(loads, i1, i2, rng)
		mustBeSampled(a.policy, idx, i1, i2)
		if a.trace.Enabled() {
			a.trace.RecordDecision(trace.DecisionRecord{
				Round: a.rounds, Sample1: i1, Sample2: i2,
				Load1: loads[i1], Load2: loads[i2], Chosen: idx,
			})
		}
		a.pending[idx]++
	}

	// Commit phase.
	for bin, count := range a.pending {
		if count == 0 {
			continue
		}
		a.state.RecordAllocation(bin, count)
		a.pending[bin] = 0
	}
	a.rounds++
}

// BatchSize returns the number of balls per batch.
func (a *BatchedAllocator) BatchSize() int { return a.batchSize }

// Policy returns the decision policy in use.
func (a *BatchedAllocator) Policy() DecisionPolicy { return a.policy }

// MaxLoad implements Allocator.
func (a *BatchedAllocator) MaxLoad() int64 { return a.state.MaxLoad() }

// Gap implements Allocator.
func (a *BatchedAllocator) Gap() float64 { return a.state.Gap() }

// LoadVector implements Allocator.
func (a *BatchedAllocator) LoadVector() []int64 { return a.state.Snapshot() }

// TotalBalls implements Allocator.
func (a *BatchedAllocator) TotalBalls() int64 { return a.state.TotalBalls() }

// BallsPerRound implements Allocator.
func (a *BatchedAllocator) BallsPerRound() int { return a.batchSize }

// Rounds implements Allocator.
func (a *BatchedAllocator) Rounds() int64 { return a.rounds }
