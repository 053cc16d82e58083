package allan

import (
	"math/bits"
	"slices"
)

// averagingFactors returns the sorted, de-duplicated factors m (tau = m/rate)
// for a phase record of n points. Factors at or beyond n are discarded.
func averagingFactors(n int, policy TauPolicy) ([]int, error) {
	if n <= 0 {
		return nil, nil
	}

	var candidates []int
	switch policy {
	case TauAll:
		candidates = make([]int, 0, n)
		for m := 1; m <= n; m++ {
			candidates = append(candidates, m)
		}
	case TauOctave:
		// floor(log2(n))
		maxExp := bits.Len(uint(n)) - 1
		for k := 0; k <= maxExp; k++ {
			candidates = append(candidates, 1<<k)
		}
	case TauDecade:
		for scale := 1; scale <= n; scale *= 10 {
			candidates = append(candidates, scale, 2*scale, 4*scale)
		}
	default:
		return nil, ErrUnknownTauPolicy
	}

	factors := candidates[:0]
	for _, m := range candidates {
		if m > 0 && m < n {
			factors = append(factors, m)
		}
	}
	slices.Sort(factors)
	return slices.Compact(factors), nil
}
