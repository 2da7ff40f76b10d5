package metrics

import (
	"time"

	"github.com/spiffcs/repohealth/internal/model"
	"github.com/spiffcs/repohealth/internal/timeutil"
)

// ComputeBacklog counts and ages the items still open as of asOf.
//
// A PR is open as of asOf when it was created at or before asOf and either
// was never merged or merged afterwards. A PR closed without merging is never
// excluded by this rule; that is a known limitation of the model, not a bug
// to fix silently. An issue is open as of asOf when it was created at or
// before asOf and its fetch-time state is not CLOSED; no state history is
// retained, so backlog figures for past instants are an approximation.
func (c *Calculator) ComputeBacklog(asOf time.Time) BacklogMetrics {
	var prAges []float64
	var issueAges []float64

	for _, pr := range c.prs {
		created, ok := pr.Created()
		if !ok || created.After(asOf) {
			continue
		}
		if merged, ok := pr.Merged(); ok && !merged.After(asOf) {
			continue
		}
		prAges = append(prAges, float64(wholeDays(asOf.Sub(created))))
	}

	for _, issue := range c.issues {
		created, ok := issue.Created()
		if !ok || created.After(asOf) {
			continue
		}
		if issue.State == model.StateClosed {
			continue
		}
		issueAges = append(issueAges, float64(wholeDays(asOf.Sub(created))))
	}

	return BacklogMetrics{
		OpenPRCount:            len(prAges),
		OpenIssueCount:         len(issueAges),
		MedianOpenPRAgeDays:    timeutil.Median(prAges),
		MedianOpenIssueAgeDays: timeutil.Median(issueAges),
	}
}

// wholeDays truncates a duration to whole days.
func wholeDays(d time.Duration) int {
	return int(d.Hours() / 24)
}
