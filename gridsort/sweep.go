package gridsort

import "golang.org/x/exp/constraints"

type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

// DirectionFor gives the row direction of a rank: even ranks sort ascending,
// odd ranks descending.
func DirectionFor(rank int) Direction {
	if rank%2 == 0 {
		return Ascending
	}
	return Descending
}

func compareExchange[T constraints.Ordered](s []T, i int, dir Direction) bool {
	if (dir == Ascending && s[i+1] < s[i]) || (dir == Descending && s[i+1] > s[i]) {
		s[i], s[i+1] = s[i+1], s[i]
		return true
	}
	return false
}

// OddSweep compare-exchanges the pairs (1,2), (3,4), ... and returns the
// number of swaps.
func OddSweep[T constraints.Ordered](s []T, dir Direction) int {
	swaps := 0
	for i := 1; i < len(s)-1; i += 2 {
		if compareExchange(s, i, dir) {
			swaps++
		}
	}
	return swaps
}

// EvenSweep compare-exchanges the pairs (0,1), (2,3), ...
func EvenSweep[T constraints.Ordered](s []T, dir Direction) int {
	swaps := 0
	for i := 0; i < len(s)-1; i += 2 {
		if compareExchange(s, i, dir) {
			swaps++
		}
	}
	return swaps
}

// TranspositionStep is one odd sweep followed by one even sweep.
func TranspositionStep[T constraints.Ordered](s []T, dir Direction) int {
	return OddSweep(s, dir) + EvenSweep(s, dir)
}

func BubbleSort[T constraints.Ordered](s []T, dir Direction) {
	for end := len(s) - 1; end > 0; end-- {
		swapped := false
		for i := 0; i < end; i++ {
			if compareExchange(s, i, dir) {
				swapped = true
			}
		}
		if !swapped {
			return
		}
	}
}
