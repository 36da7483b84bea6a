// Package testutil provides shared test infrastructure for the allocation
// simulator: a scripted randomness source and assertion helpers used across
// sim/ and sim/experiment/ test packages.
package testutil

import (
	"math"
	"testing"
)

// ScriptedRand replays fixed values in order. It satisfies sim.RandSource
// and panics when a script runs dry, so a test drawing more randomness than
// it scripted fails loudly.
type ScriptedRand struct {
	Ints   []int     // consumed by Intn (each value must be < n)
	Floats []float64 // consumed by Float64
	Norms  []float64 // consumed by NormFloat64

	IntCalls, FloatCalls, NormCalls int
}

// NewPairs builds a ScriptedRand whose Intn stream yields the given sample
// pairs in order.
func NewPairs(pairs ...[2]int) *ScriptedRand {
	ints := make([]int, 0, 2*len(pairs))
	for _, p := range pairs {
		ints = append(ints, p[0], p[1])
	}
	return &ScriptedRand{Ints: ints}
}

// Intn returns the next scripted integer.
func (s *ScriptedRand) Intn(n int) int {
	if s.IntCalls >= len(s.Ints) {
		panic("ScriptedRand: Intn script exhausted")
	}
	v := s.Ints[s.IntCalls]
	s.IntCalls++
	if v < 0 || v >= n {
		panic("ScriptedRand: scripted value out of range")
	}
	return v
}

// Float64 returns the next scripted float.
func (s *ScriptedRand) Float64() float64 {
	if s.FloatCalls >= len(s.Floats) {
		panic("ScriptedRand: Float64 script exhausted")
	}
	v := s.Floats[s.FloatCalls]
	s.FloatCalls++
	return v
}

// NormFloat64 returns the next scripted normal sample.
func (s *ScriptedRand) NormFloat64() float64 {
	if s.NormCalls >= len(s.Norms) {
		panic("ScriptedRand: NormFloat64 script exhausted")
	}
	v := s.Norms[s.NormCalls]
	s.NormCalls++
	return v
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
