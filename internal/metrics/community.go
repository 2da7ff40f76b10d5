package metrics

import (
	"time"

	"github.com/spiffcs/repohealth/internal/model"
)

// ComputeCommunity calculates contributor counts, the new-vs-returning split,
// and author concentration over a subset of items.
//
// A contributor is new to the window when their global first-seen instant
// falls at or after windowStart; the boundary is inclusive on the new side.
// Classification depends only on the first-seen index, never on activity
// inside the window. Items without a resolvable author id or creation instant
// are excluded from the sample.
func (c *Calculator) ComputeCommunity(items []model.Item, windowStart time.Time) CommunityMetrics {
	authorCounts := make(map[int64]int)
	newContribs := make(map[int64]struct{})
	returningContribs := make(map[int64]struct{})

	for _, it := range items {
		id, ok := it.AuthorID()
		if !ok {
			continue
		}
		if _, ok := it.Created(); !ok {
			continue
		}

		authorCounts[id]++

		if firstSeen, ok := c.firstSeen[id]; ok && !firstSeen.Before(windowStart) {
			newContribs[id] = struct{}{}
		} else {
			returningContribs[id] = struct{}{}
		}
	}

	totalActions := 0
	for _, n := range authorCounts {
		totalActions += n
	}
	ranked := rankCounts(authorCounts, topRankSize)
	top1, top2 := concentration(ranked, totalActions)

	returnRate := 0.0
	if len(authorCounts) > 0 {
		returnRate = float64(len(returningContribs)) / float64(len(authorCounts)) * 100
	}

	return CommunityMetrics{
		UniqueContributors:    len(authorCounts),
		NewContributors:       len(newContribs),
		ReturningContributors: len(returningContribs),
		ReturnRatePct:         returnRate,
		AuthorTop1Pct:         top1,
		AuthorTop2Pct:         top2,
		TopAuthorsByID:        ranked,
	}
}
