package stats

import "slices"

// mean returns the arithmetic mean, or 0 for an empty sample.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// percentileSorted interpolates the p-quantile (p in [0,1]) of an already
// sorted, non-empty sample: position = p*(n-1), linear between neighbors.
func percentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	pos := p * float64(n-1)
	if pos < 0 {
		pos = 0
	}
	if pos > float64(n-1) {
		pos = float64(n - 1)
	}
	lo := int(pos)
	hi := lo + 1
	if hi > n-1 {
		hi = n - 1
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	slices.Sort(out)
	return out
}

// medianInts finds the median of a slice of counts.
func medianInts(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	temp := make([]int, len(values))
	copy(temp, values)
	slices.Sort(temp)

	n := len(temp)
	if n%2 == 1 {
		return float64(temp[n/2])
	}
	return float64(temp[n/2-1]+temp[n/2]) / 2.0
}
