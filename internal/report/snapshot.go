// Package report derives risk flags, stalled-action lists, and the combined
// final report from a fetched dataset, its metrics document, and its score.
// Every function takes the analysis instant explicitly.
package report

import (
	"sort"
	"time"

	"github.com/spiffcs/repohealth/internal/model"
)

// BacklogSnapshot captures counts and age distribution of the items open at
// fetch time, measured against the analysis instant.
type BacklogSnapshot struct {
	OpenPRs          int `json:"open_prs"`
	OpenIssues       int `json:"open_issues"`
	PRsOver365Days   int `json:"prs_over_365_days"`
	IssuesOver365    int `json:"issues_over_365_days"`
	IssuesOver730    int `json:"issues_over_730_days"`
	MedianPRAgeDays  int `json:"median_pr_age_days_est"`
	MedianIssueAge   int `json:"median_issue_age_days_est"`
}

// OpenItems filters items to those open at fetch time.
func OpenItems(items []model.Item) []model.Item {
	var open []model.Item
	for _, it := range items {
		if it.IsOpen() {
			open = append(open, it)
		}
	}
	return open
}

// ageDays is the whole-day age of an item at now; items without a creation
// instant report -1 and are skipped by callers.
func ageDays(it model.Item, now time.Time) int {
	created, ok := it.Created()
	if !ok {
		return -1
	}
	return int(now.Sub(created).Hours() / 24)
}

// Snapshot computes the backlog snapshot over the open PR and issue sets.
func Snapshot(openPRs, openIssues []model.Item, now time.Time) BacklogSnapshot {
	var prAges, issueAges []int

	for _, pr := range openPRs {
		if d := ageDays(pr, now); d >= 0 {
			prAges = append(prAges, d)
		}
	}
	for _, issue := range openIssues {
		if d := ageDays(issue, now); d >= 0 {
			issueAges = append(issueAges, d)
		}
	}

	snap := BacklogSnapshot{
		OpenPRs:    len(openPRs),
		OpenIssues: len(openIssues),
	}
	for _, d := range prAges {
		if d >= 365 {
			snap.PRsOver365Days++
		}
	}
	for _, d := range issueAges {
		if d >= 365 {
			snap.IssuesOver365++
		}
		if d >= 730 {
			snap.IssuesOver730++
		}
	}
	snap.MedianPRAgeDays = upperMedian(prAges)
	snap.MedianIssueAge = upperMedian(issueAges)
	return snap
}

// upperMedian is the estimate used in snapshot output: the middle element of
// the sorted ages (upper of the two middles for even counts), 0 when empty.
func upperMedian(ages []int) int {
	if len(ages) == 0 {
		return 0
	}
	sorted := make([]int, len(ages))
	copy(sorted, ages)
	sort.Ints(sorted)
	return sorted[len(sorted)/2]
}
