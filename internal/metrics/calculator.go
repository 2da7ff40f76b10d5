// Package metrics computes time-windowed engineering metrics over normalized
// pull-request and issue snapshots. Every computation is a pure function of
// its inputs and an explicit analysis instant; the package performs no I/O.
package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/spiffcs/repohealth/internal/model"
)

// topRankSize caps the ranked contributor sequences in the output document.
const topRankSize = 10

// Calculator computes metrics over one fetched dataset. The first-seen index
// is built once at construction and shared by every window computation.
type Calculator struct {
	prs      []model.Item
	issues   []model.Item
	allItems []model.Item

	firstSeen    map[int64]time.Time
	excludedBots map[string]struct{}
}

// NewCalculator builds a calculator over the full PR and issue corpus.
// excludedBots lists bot logins whose comments never count as a first
// response; matching is case-insensitive.
func NewCalculator(prs, issues []model.Item, excludedBots []string) *Calculator {
	all := make([]model.Item, 0, len(prs)+len(issues))
	all = append(all, prs...)
	all = append(all, issues...)

	bots := make(map[string]struct{}, len(excludedBots))
	for _, login := range excludedBots {
		bots[strings.ToLower(login)] = struct{}{}
	}

	c := &Calculator{
		prs:          prs,
		issues:       issues,
		allItems:     all,
		excludedBots: bots,
	}
	c.firstSeen = buildFirstSeen(all)
	return c
}

// FirstSeen returns the first-contribution instant for a contributor id.
func (c *Calculator) FirstSeen(id int64) (time.Time, bool) {
	t, ok := c.firstSeen[id]
	return t, ok
}

// buildFirstSeen maps each contributor id to the earliest creation instant of
// any item they authored. Items are sorted earliest-first (missing timestamps
// last), so a single scan records the true minimum per id. Items without a
// resolvable author id contribute to no contributor's history.
func buildFirstSeen(items []model.Item) map[int64]time.Time {
	sorted := make([]model.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, iok := sorted[i].Created()
		tj, jok := sorted[j].Created()
		if !iok {
			return false
		}
		if !jok {
			return true
		}
		return ti.Before(tj)
	})

	firstSeen := make(map[int64]time.Time)
	for _, it := range sorted {
		id, ok := it.AuthorID()
		if !ok {
			continue
		}
		created, ok := it.Created()
		if !ok {
			continue
		}
		if _, seen := firstSeen[id]; !seen {
			firstSeen[id] = created
		}
	}
	return firstSeen
}

// isExcludedBot reports whether a login belongs to the excluded bot set.
func (c *Calculator) isExcludedBot(login string) bool {
	_, ok := c.excludedBots[strings.ToLower(login)]
	return ok
}

// rankCounts converts a count map into a ranked sequence, highest count
// first. Ties break on ascending id so output is deterministic.
func rankCounts(counts map[int64]int, n int) []IDCount {
	ranked := make([]IDCount, 0, len(counts))
	for id, count := range counts {
		ranked = append(ranked, IDCount{ID: id, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].ID < ranked[j].ID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// concentration returns the top-1 and top-2 shares (0-100) of the total
// activity in counts. Both are 0 when there is no activity; with a single
// actor the top-2 share equals the top-1 share.
func concentration(ranked []IDCount, total int) (top1, top2 float64) {
	if total == 0 || len(ranked) == 0 {
		return 0, 0
	}
	top1 = float64(ranked[0].Count) / float64(total) * 100
	top2 = top1
	if len(ranked) > 1 {
		top2 = float64(ranked[0].Count+ranked[1].Count) / float64(total) * 100
	}
	return top1, top2
}
