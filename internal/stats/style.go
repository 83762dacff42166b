package stats

import (
	"math"
	"sort"

	"feedlog-mcp/internal/feed"

	"github.com/google/uuid"
)

// ClassifiedFeed pairs a session with its style.
type ClassifiedFeed struct {
	Entry feed.Entry `json:"entry"`
	Style FeedStyle  `json:"style"`
}

// Classification tunables, in seconds where applicable.
const (
	styleMinSample      = 20
	styleTrimLower      = 0.05
	styleTrimUpper      = 0.95
	stylePercentile     = 0.25
	clusterGapFloor     = 120 * 60 // 120m
	clusterMinRun       = 3
	clusterMinSample    = 4
	snackDurationFloor  = 10 * 60 // 10m
	styleBoundaryEpsSec = 1.0
)

// ClassifyFeeds labels every session snack, cluster, or normal.
//
// Cutoffs are the trimmed 25th percentile of durations and of gaps when at
// least 20 samples exist; otherwise fixed floors apply (10 min duration,
// 120 min gap). Runs of 3+ sessions whose start-to-start gap stays within
// min(120 min, gap cutoff) form clusters; cluster membership wins over the
// other rules. Clustering is skipped entirely below 4 sessions.
func ClassifyFeeds(entries []feed.Entry) []ClassifiedFeed {
	if len(entries) == 0 {
		return nil
	}

	// Newest first.
	feeds := make([]feed.Entry, len(entries))
	copy(feeds, entries)
	sort.Slice(feeds, func(i, j int) bool { return feeds[i].Start.After(feeds[j].Start) })

	prevGaps := computePrevGaps(feeds)

	var durations, gapVals []float64
	for _, e := range feeds {
		if v, ok := unitOrEnvelopeDuration(e); ok {
			durations = append(durations, v)
		}
	}
	for _, g := range prevGaps {
		if g != nil {
			gapVals = append(gapVals, *g)
		}
	}

	snackDurCut := float64(snackDurationFloor)
	if len(durations) >= styleMinSample {
		snackDurCut = percentileTrimmed(durations, stylePercentile)
	}
	snackGapCut := float64(clusterGapFloor)
	if len(gapVals) >= styleMinSample {
		snackGapCut = percentileTrimmed(gapVals, stylePercentile)
	}
	clusterGapCut := math.Min(clusterGapFloor, snackGapCut)

	inCluster := clusterMembership(feeds, prevGaps, clusterGapCut)
	gapSamplesSufficient := len(gapVals) >= styleMinSample

	out := make([]ClassifiedFeed, len(feeds))
	for i, e := range feeds {
		out[i] = ClassifiedFeed{
			Entry: e,
			Style: classifyOne(feeds, i, prevGaps, inCluster[i], snackDurCut, snackGapCut, gapSamplesSufficient),
		}
	}
	return out
}

// StyleFor returns the style of a single session within its full history.
func StyleFor(entries []feed.Entry, id uuid.UUID) FeedStyle {
	for _, cf := range ClassifyFeeds(entries) {
		if cf.Entry.ID == id {
			return cf.Style
		}
	}
	return StyleNormal
}

// unitOrEnvelopeDuration resolves a session's duration for classification:
// unit sums when units exist, the envelope for unit-less completed sessions.
// Only an in-flight unit-less session has no usable duration.
func unitOrEnvelopeDuration(e feed.Entry) (float64, bool) {
	if len(e.Units) == 0 && !e.Completed() {
		return 0, false
	}
	return e.EffectiveDuration().Seconds(), true
}

// computePrevGaps returns, for each newest-first index i, the gap to the
// next-older session; nil for the oldest.
func computePrevGaps(feeds []feed.Entry) []*float64 {
	gaps := make([]*float64, len(feeds))
	for i := 0; i+1 < len(feeds); i++ {
		g := feeds[i].Start.Sub(feeds[i+1].Start).Seconds()
		gaps[i] = &g
	}
	return gaps
}

// clusterMembership marks runs of tightly spaced sessions. A run covers
// indexes i..j where each consecutive gap stays within maxGap; runs shorter
// than 3 sessions do not count.
func clusterMembership(feeds []feed.Entry, prevGaps []*float64, maxGap float64) map[int]bool {
	result := map[int]bool{}
	if len(feeds) < clusterMinSample {
		return result
	}

	runStart, runEnd := -1, -1
	commit := func() {
		if runStart >= 0 && runEnd-runStart+1 >= clusterMinRun {
			for i := runStart; i <= runEnd; i++ {
				result[i] = true
			}
		}
		runStart, runEnd = -1, -1
	}

	for i := 0; i+1 < len(feeds); i++ {
		tight := prevGaps[i] != nil && *prevGaps[i] <= maxGap
		if tight {
			if runStart < 0 {
				runStart = i
			}
			runEnd = i + 1
		} else {
			commit()
		}
	}
	commit()
	return result
}

func classifyOne(feeds []feed.Entry, i int, prevGaps []*float64, inCluster bool, snackDurCut, snackGapCut float64, gapSamplesSufficient bool) FeedStyle {
	if inCluster {
		return StyleCluster
	}

	dur, hasDur := unitOrEnvelopeDuration(feeds[i])

	if hasDur && dur < snackDurCut {
		return StyleSnack
	}
	// Boundary protection: a duration within one second of the cutoff is
	// normal, and the gap rule may not flip it.
	if hasDur && math.Abs(dur-snackDurCut) <= styleBoundaryEpsSec {
		return StyleNormal
	}

	if g := prevGaps[i]; g != nil && *g < snackGapCut {
		if gapSamplesSufficient {
			return StyleSnack
		}
		// Sparse gap data: only trust the gap rule when the next-older gap
		// itself clears the cutoff, so a tight cluster does not chain
		// false positives.
		nextOlderGap := math.Inf(1)
		if i+1 < len(prevGaps) && prevGaps[i+1] != nil {
			nextOlderGap = *prevGaps[i+1]
		}
		if nextOlderGap >= snackGapCut {
			return StyleSnack
		}
	}
	return StyleNormal
}

// percentileTrimmed takes the p-quantile after trimming the outer 5%/95%.
// Small samples fall back to the minimum value.
func percentileTrimmed(values []float64, p float64) float64 {
	if len(values) < 3 {
		if len(values) == 0 {
			return snackDurationFloor
		}
		return sortedCopy(values)[0]
	}
	sorted := sortedCopy(values)
	lo := int(float64(len(sorted)) * styleTrimLower)
	hi := int(float64(len(sorted)) * styleTrimUpper)
	if lo < 0 {
		lo = 0
	}
	if hi < lo+1 {
		hi = lo + 1
	}
	if hi > len(sorted) {
		hi = len(sorted)
	}
	clipped := sorted[lo:hi]
	if len(clipped) == 0 {
		return sorted[len(sorted)/4]
	}
	idx := int(math.Round(p * float64(len(clipped)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx > len(clipped)-1 {
		idx = len(clipped) - 1
	}
	return clipped[idx]
}
