package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBins is returned when an allocator or load vector is built with fewer than one bin.
	ErrNoBins = errors.New("number of bins must be at least 1")
	// ErrZeroBatchSize is returned when a batched allocator is built with batch size < 1.
	ErrZeroBatchSize = errors.New("batch size must be at least 1")
	// ErrNilPolicy is returned when an allocator is built without a decision policy.
	ErrNilPolicy = errors.New("decision policy must not be nil")
)

// LoadVector holds the per-bin load counters of one simulated run together
// with its running aggregates.
//
// Counters are int64: a run tolerates up to math.MaxInt64 balls in total
// before overflow, far beyond any realistic experiment (10^5 bins × 10^3
// balls per bin is ~2^27).
//
// Invariants after every completed round:
//   - maxLoad == max(loads)
//   - sum(loads) == totalBalls
type LoadVector struct {
	loads      []int64
	maxLoad    int64
	totalBalls int64
}

// NewLoadVector creates an empty load vector with numBins bins.
func NewLoadVector(numBins int) (*LoadVector, error) {
	if numBins < 1 {
		return nil, fmt.Errorf("load vector with %d bins: %w", numBins, ErrNoBins)
	}
	return &LoadVector{loads: make([]int64, numBins)}, nil
}

// RecordAllocation places amount balls into bin.
// The caller guarantees 0 <= bin < NumBins().
func (lv *LoadVector) RecordAllocation(bin int, amount int64) {
	lv.loads[bin] += amount
	lv.totalBalls += amount
	if lv.loads[bin] > lv.maxLoad {
		lv.maxLoad = lv.loads[bin]
	}
}

// NumBins returns the number of bins.
func (lv *LoadVector) NumBins() int { return len(lv.loads) }

// Load returns the current load of bin.
func (lv *LoadVector) Load(bin int) int64 { return lv.loads[bin] }

// MaxLoad returns the maximum load over all bins.
func (lv *LoadVector) MaxLoad() int64 { return lv.maxLoad }

// TotalBalls returns the number of balls placed so far.
func (lv *LoadVector) TotalBalls() int64 { return lv.totalBalls }

// Mean returns the average load, totalBalls / numBins.
func (lv *LoadVector) Mean() float64 {
	return float64(lv.totalBalls) / float64(len(lv.loads))
}

// Gap returns maxLoad minus the mean load. The value is raw: any ceiling or
// truncation for reporting belongs to the caller.
func (lv *LoadVector) Gap() float64 {
	return float64(lv.maxLoad) - lv.Mean()
}

// Snapshot returns a copy of the load counters.
func (lv *LoadVector) Snapshot() []int64 {
	out := make([]int64, len(lv.loads))
	copy(out, lv.loads)
	return out
}

// view exposes the live counters to decision policies. Callers must not
// retain or mutate the slice.
func (lv *LoadVector) view() []int64 { return lv.loads }
