package layout

import "sort"

// DefaultLadder returns the standard video sizes used to quantise output.
func DefaultLadder() []int {
	return []int{144, 240, 360, 480, 720, 1080, 1440, 2160}
}

// ladderFloor returns the largest ladder value not exceeding limit.
func ladderFloor(ladder []int, limit float64) (int, bool) {
	best, found := 0, false
	for _, v := range ladder {
		if float64(v) <= limit && v > best {
			best, found = v, true
		}
	}
	return best, found
}

// ladderFloorWhere returns the largest ladder value accepted by fits.
func ladderFloorWhere(ladder []int, fits func(int) bool) (int, bool) {
	best, found := 0, false
	for _, v := range ladder {
		if fits(v) && v > best {
			best, found = v, true
		}
	}
	return best, found
}

func sortedLadder(ladder []int) []int {
	if len(ladder) == 0 {
		return nil
	}
	out := append([]int(nil), ladder...)
	sort.Ints(out)
	return out
}

// isPowerOfTen reports whether n is 1, 10, 100, ...
func isPowerOfTen(n int) bool {
	if n <= 0 {
		return false
	}
	for n%10 == 0 {
		n /= 10
	}
	return n == 1
}
