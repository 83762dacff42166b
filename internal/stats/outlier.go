package stats

// IQRExclude drops values outside the IQR whiskers [Q1-1.5*IQR, Q3+1.5*IQR].
// Samples smaller than 4 are returned unchanged: there is not enough data
// to estimate spread. Relative order of the kept values is preserved.
func IQRExclude(values []float64) []float64 {
	if len(values) < 4 {
		return values
	}
	sorted := sortedCopy(values)
	q1 := percentileSorted(sorted, 0.25)
	q3 := percentileSorted(sorted, 0.75)
	iqr := q3 - q1
	low := q1 - 1.5*iqr
	high := q3 + 1.5*iqr

	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if v >= low && v <= high {
			kept = append(kept, v)
		}
	}
	return kept
}

// Winsorization constants for inter-feed intervals, in seconds. Intervals
// under two minutes are implausible and dropped rather than capped.
const (
	intervalHardFloor = 120.0
	winsorEpsilon     = 0.5
)

// AgeAwareUpperBound returns the plausible maximum inter-feed interval in
// seconds for an infant of the given age. Unknown age (nil) uses the widest
// bound.
func AgeAwareUpperBound(ageDays *int) float64 {
	if ageDays == nil {
		return 43200 // 12h
	}
	switch d := *ageDays; {
	case d < 28:
		return 21600 // 6h
	case d < 90:
		return 28800 // 8h
	case d < 182:
		return 36000 // 10h
	default:
		return 43200 // 12h
	}
}

// WinsorizeIntervals drops implausibly short intervals and caps implausibly
// long ones. Bounds come from the IQR whiskers clamped to the hard floor and
// the age-aware ceiling. Returns the retained values (capped ones replaced
// by the upper bound) and how many were capped; dropped values are not
// counted — callers derive total exclusions from len(in) - len(kept).
func WinsorizeIntervals(intervals []float64, ageDays *int) (kept []float64, capped int) {
	if len(intervals) == 0 {
		return nil, 0
	}
	sorted := sortedCopy(intervals)
	q1 := percentileSorted(sorted, 0.25)
	q3 := percentileSorted(sorted, 0.75)
	iqr := q3 - q1

	lowerBound := max(q1-1.5*iqr, intervalHardFloor)
	upperBound := min(q3+1.5*iqr, AgeAwareUpperBound(ageDays))

	if lowerBound > upperBound {
		// Degenerate bounds: nothing is trustworthy.
		return nil, len(intervals)
	}

	kept = make([]float64, 0, len(intervals))
	for _, v := range intervals {
		switch {
		case v < lowerBound-winsorEpsilon:
			// dropped, not capped
		case v > upperBound+winsorEpsilon:
			capped++
			kept = append(kept, upperBound)
		default:
			kept = append(kept, v)
		}
	}
	return kept, capped
}
