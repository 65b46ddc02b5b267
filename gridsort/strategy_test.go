package gridsort

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestOddEven_Validate(t *testing.T) {
	s := OddEven{}
	assert.NoError(t, s.Validate(24, 8))
	assert.NoError(t, s.Validate(5, 1))
	assert.Equal(t, ErrNotDivisible, errors.Cause(s.Validate(10, 3)))
	assert.Contains(t, s.Validate(10, 3).Error(), "dimension = 10, processes = 3")
	assert.Equal(t, ErrDimension, errors.Cause(s.Validate(0, 2)))
	assert.Equal(t, ErrDimension, errors.Cause(s.Validate(-4, 2)))
}

func TestShear_Validate(t *testing.T) {
	s := Shear{}
	assert.NoError(t, s.Validate(4, 4))
	assert.Equal(t, ErrDimensionMismatch, errors.Cause(s.Validate(8, 4)))
	assert.Equal(t, ErrDimension, errors.Cause(s.Validate(0, 0)))
}

func TestShear_Passes(t *testing.T) {
	for n, want := range map[int]int{1: 0, 2: 1, 3: 2, 4: 2, 5: 3, 8: 3, 16: 4, 17: 5, 32: 5} {
		got, bounded := Shear{}.Passes(n)
		assert.True(t, bounded)
		assert.Equal(t, want, got, "n = %d", n)
	}
	_, bounded := OddEven{}.Passes(8)
	assert.False(t, bounded)
}

func TestSortShard_columnsAlwaysAscending(t *testing.T) {
	for _, s := range []Strategy{OddEven{}, Shear{}} {
		for rank := 0; rank < 4; rank++ {
			col := []int32{4, 3, 2, 1}
			for i := 0; i < 4; i++ {
				sortShard(s, PhaseColumn, rank, col)
			}
			assert.Equal(t, []int32{1, 2, 3, 4}, col, "%s rank %d", s.Name(), rank)
		}
	}
}

func TestSortShard_rowDirectionFollowsRank(t *testing.T) {
	row := []int32{1, 2, 3, 4}
	sortShard(Shear{}, PhaseRow, 1, row)
	assert.Equal(t, []int32{4, 3, 2, 1}, row)
	sortShard(Shear{}, PhaseFinalRow, 1, row)
	assert.Equal(t, []int32{1, 2, 3, 4}, row)
	sortShard(Shear{}, PhaseRow, 2, row)
	assert.Equal(t, []int32{1, 2, 3, 4}, row)
}

func TestSortShard_deterministic(t *testing.T) {
	for _, s := range []Strategy{OddEven{}, Shear{}} {
		for _, phase := range []Phase{PhaseRow, PhaseColumn, PhaseFinalRow} {
			a := []int32{9, 3, 7, 1, 8, 2}
			b := append([]int32(nil), a...)
			sortShard(s, phase, 1, a)
			sortShard(s, phase, 1, b)
			assert.Equal(t, a, b, "%s %s", s.Name(), phase)
		}
	}
}
