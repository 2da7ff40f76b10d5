package report

import (
	"fmt"
	"time"

	"github.com/spiffcs/repohealth/internal/model"
)

// Risk thresholds. These are fixed constants of the report, not
// configuration.
const (
	// stalePRShare flags the backlog when this share of open PRs is over a
	// year old.
	stalePRShare = 0.35
	// staleIssueShare flags the backlog when this share of open issues is
	// over a year old.
	staleIssueShare = 0.6
	// staleTrackerIssueCount flags a tracker that likely reflects
	// historical intent rather than an active roadmap.
	staleTrackerIssueCount = 20

	archiveAgeDays  = 365
	closeAgeDays    = 730
	decisionMinDays = 180
	decisionMaxDays = 365
)

// RiskFlags derives human-readable risk flags from a backlog snapshot.
func RiskFlags(snap BacklogSnapshot) []string {
	var flags []string

	if snap.OpenPRs > 0 && float64(snap.PRsOver365Days)/float64(snap.OpenPRs) > stalePRShare {
		flags = append(flags, fmt.Sprintf("%d%% of open PRs are over 1 year old",
			100*snap.PRsOver365Days/snap.OpenPRs))
	}

	if snap.OpenIssues > 0 && float64(snap.IssuesOver365)/float64(snap.OpenIssues) > staleIssueShare {
		flags = append(flags, fmt.Sprintf("%d%% of open issues are over 1 year old",
			100*snap.IssuesOver365/snap.OpenIssues))
	}

	if snap.IssuesOver730 > 0 {
		flags = append(flags, fmt.Sprintf("%d%% of open issues are over 2 years old",
			100*snap.IssuesOver730/snap.OpenIssues))
	}

	if snap.OpenIssues > staleTrackerIssueCount {
		flags = append(flags, "High issue count suggests tracker reflects historical intent rather than active roadmap")
	}

	return flags
}

// StalledActions buckets open item numbers by the follow-up they are a
// candidate for: archival (PRs over a year), closure (issues over two
// years), or an explicit keep/close decision (180-365 days old).
func StalledActions(openPRs, openIssues []model.Item, now time.Time) map[string][]int {
	actions := map[string][]int{
		"archive_prs_over_365_days":             {},
		"close_issues_over_730_days":            {},
		"decision_required_prs_180_365_days":    {},
		"decision_required_issues_180_365_days": {},
	}

	for _, pr := range openPRs {
		d := ageDays(pr, now)
		if d < 0 {
			continue
		}
		if d > archiveAgeDays {
			actions["archive_prs_over_365_days"] = append(actions["archive_prs_over_365_days"], pr.Number)
		}
		if d > decisionMinDays && d <= decisionMaxDays {
			actions["decision_required_prs_180_365_days"] = append(actions["decision_required_prs_180_365_days"], pr.Number)
		}
	}

	for _, issue := range openIssues {
		d := ageDays(issue, now)
		if d < 0 {
			continue
		}
		if d > closeAgeDays {
			actions["close_issues_over_730_days"] = append(actions["close_issues_over_730_days"], issue.Number)
		}
		if d > decisionMinDays && d <= decisionMaxDays {
			actions["decision_required_issues_180_365_days"] = append(actions["decision_required_issues_180_365_days"], issue.Number)
		}
	}

	return actions
}
