package gridsort

import (
	"math/bits"

	"github.com/pkg/errors"
)

// Strategy decides how shards are sorted and how many passes run.
type Strategy interface {
	Name() string
	// Validate checks an n x n matrix can be sorted by procs ranks.
	Validate(n, procs int) error
	SortRow(shard []int32, rank int)
	SortColumn(shard []int32)
	SortFinalRow(shard []int32)
	// Passes gives the number of passes when bounded, otherwise passes
	// repeat until the coordinator finds the matrix sorted.
	Passes(n int) (count int, bounded bool)
	// FinalRowPass reports whether one ascending row pass and a fatal
	// check follow the last pass.
	FinalRowPass() bool
}

var (
	_ Strategy = OddEven{}
	_ Strategy = Shear{}
)

// OddEven runs one transposition step per shard and call, and repeats passes
// until every diagonal is sorted. Any number of ranks dividing n works.
type OddEven struct{}

func (OddEven) Name() string {
	return "oetsort"
}

func (OddEven) Validate(n, procs int) error {
	if n <= 0 {
		return errors.Wrapf(ErrDimension, "got %d", n)
	}
	if procs <= 0 || n%procs != 0 {
		return errors.Wrapf(ErrNotDivisible, "dimension = %d, processes = %d", n, procs)
	}
	return nil
}

func (OddEven) SortRow(shard []int32, rank int) {
	TranspositionStep(shard, DirectionFor(rank))
}

func (OddEven) SortColumn(shard []int32) {
	TranspositionStep(shard, Ascending)
}

func (OddEven) SortFinalRow(shard []int32) {
	TranspositionStep(shard, Ascending)
}

func (OddEven) Passes(n int) (int, bool) {
	return 0, false
}

func (OddEven) FinalRowPass() bool {
	return false
}

// Shear fully sorts every shard it touches and runs ceil(log2 n) passes with
// one rank per row.
type Shear struct{}

func (Shear) Name() string {
	return "shearsort"
}

func (Shear) Validate(n, procs int) error {
	if n <= 0 {
		return errors.Wrapf(ErrDimension, "got %d", n)
	}
	if n != procs {
		return errors.Wrapf(ErrDimensionMismatch, "dimension = %d, processes = %d", n, procs)
	}
	return nil
}

func (Shear) SortRow(shard []int32, rank int) {
	BubbleSort(shard, DirectionFor(rank))
}

func (Shear) SortColumn(shard []int32) {
	BubbleSort(shard, Ascending)
}

func (Shear) SortFinalRow(shard []int32) {
	BubbleSort(shard, Ascending)
}

func (Shear) Passes(n int) (int, bool) {
	if n <= 1 {
		return 0, true
	}
	return bits.Len(uint(n - 1)), true
}

func (Shear) FinalRowPass() bool {
	return true
}

func sortShard(s Strategy, phase Phase, rank int, shard []int32) {
	switch phase {
	case PhaseRow:
		s.SortRow(shard, rank)
	case PhaseColumn:
		s.SortColumn(shard)
	case PhaseFinalRow:
		s.SortFinalRow(shard)
	}
}
