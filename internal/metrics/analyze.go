package metrics

import (
	"sort"
	"time"

	"github.com/spiffcs/repohealth/internal/model"
	"github.com/spiffcs/repohealth/internal/timeutil"
)

// AnalyzeAll composes execution, community, and backlog metrics across three
// temporal framings: all-time, trailing rolling windows, and per calendar
// month. now is the analysis instant; it is threaded explicitly so the whole
// document is deterministic for a given dataset and instant.
func (c *Calculator) AnalyzeAll(now time.Time) (*Document, error) {
	doc := &Document{
		RollingWindows: make(map[string]WindowMetrics),
		Monthly:        make(map[string]WindowMetrics),
	}

	projectStart := c.projectStart(now)

	doc.AllTime = WindowMetrics{
		Execution: c.ComputeExecution(c.prs),
		Community: c.ComputeCommunity(c.allItems, projectStart),
	}

	for _, days := range RollingWindowDays {
		windowStart := now.AddDate(0, 0, -days)
		windowPRs := timeutil.FilterLastDays(c.prs, now, days)
		windowIssues := timeutil.FilterLastDays(c.issues, now, days)
		windowItems := append(append([]model.Item{}, windowPRs...), windowIssues...)

		backlog := c.ComputeBacklog(now)
		doc.RollingWindows[RollingWindowKey(days)] = WindowMetrics{
			Execution: c.ComputeExecution(windowPRs),
			Community: c.ComputeCommunity(windowItems, windowStart),
			Backlog:   &backlog,
		}
	}

	monthlyPRs := timeutil.GroupByMonth(c.prs)
	monthlyIssues := timeutil.GroupByMonth(c.issues)

	months := make(map[string]struct{})
	for m := range monthlyPRs {
		months[m] = struct{}{}
	}
	for m := range monthlyIssues {
		months[m] = struct{}{}
	}
	sortedMonths := make([]string, 0, len(months))
	for m := range months {
		sortedMonths = append(sortedMonths, m)
	}
	sort.Strings(sortedMonths)

	for _, month := range sortedMonths {
		monthPRs := monthlyPRs[month]
		monthIssues := monthlyIssues[month]
		monthItems := append(append([]model.Item{}, monthPRs...), monthIssues...)

		monthStart, err := timeutil.MonthStart(month)
		if err != nil {
			return nil, err
		}
		monthEnd, err := timeutil.MonthEnd(month)
		if err != nil {
			return nil, err
		}

		backlog := c.ComputeBacklog(monthEnd)
		doc.Monthly[month] = WindowMetrics{
			Execution: c.ComputeExecution(monthPRs),
			Community: c.ComputeCommunity(monthItems, monthStart),
			Backlog:   &backlog,
		}
	}

	return doc, nil
}

// projectStart is the earliest first-seen instant across the dataset, or now
// when the dataset has no attributable contributions.
func (c *Calculator) projectStart(now time.Time) time.Time {
	start := now
	first := true
	for _, t := range c.firstSeen {
		if first || t.Before(start) {
			start = t
			first = false
		}
	}
	return start
}
