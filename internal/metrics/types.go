package metrics

import (
	"fmt"
	"time"
)

// IDCount is a (contributor id, activity count) pair in a ranked sequence.
type IDCount struct {
	ID    int64 `json:"id"`
	Count int   `json:"count"`
}

// ExecutionMetrics summarizes delivery speed and review concentration for a
// subset of pull requests.
type ExecutionMetrics struct {
	MedianMergeDays          float64   `json:"median_merge_days"`
	MedianFirstResponseHours float64   `json:"median_first_response_hours"`
	ReviewTop1Pct            float64   `json:"review_top1_pct"`
	ReviewTop2Pct            float64   `json:"review_top2_pct"`
	TotalPRs                 int       `json:"total_prs"`
	TopReviewersByID         []IDCount `json:"top_reviewers_by_id"`
}

// CommunityMetrics summarizes contributor activity for a subset of items.
type CommunityMetrics struct {
	UniqueContributors    int       `json:"unique_contributors"`
	NewContributors       int       `json:"new_contributors"`
	ReturningContributors int       `json:"returning_contributors"`
	ReturnRatePct         float64   `json:"return_rate_pct"`
	AuthorTop1Pct         float64   `json:"author_top1_pct"`
	AuthorTop2Pct         float64   `json:"author_top2_pct"`
	TopAuthorsByID        []IDCount `json:"top_authors_by_id"`
}

// BacklogMetrics summarizes items still open as of a point in time.
type BacklogMetrics struct {
	OpenPRCount            int     `json:"open_pr_count"`
	OpenIssueCount         int     `json:"open_issue_count"`
	MedianOpenPRAgeDays    float64 `json:"median_open_pr_age_days"`
	MedianOpenIssueAgeDays float64 `json:"median_open_issue_age_days"`
}

// WindowMetrics holds the per-window metric groups. Backlog is present for
// rolling windows (as of the analysis instant) and calendar months (as of
// month end), absent for the all-time window.
type WindowMetrics struct {
	Execution ExecutionMetrics `json:"execution"`
	Community CommunityMetrics `json:"community"`
	Backlog   *BacklogMetrics  `json:"backlog,omitempty"`
}

// Document is the full nested metrics document produced by AnalyzeAll.
type Document struct {
	AllTime        WindowMetrics            `json:"all_time"`
	RollingWindows map[string]WindowMetrics `json:"rolling_windows"`
	Monthly        map[string]WindowMetrics `json:"monthly"`

	// Score is populated when a score report is saved back into the
	// document for historical tracking.
	Score             any        `json:"score,omitempty"`
	ScoreCalculatedAt *time.Time `json:"score_calculated_at,omitempty"`
}

// RollingWindowDays are the trailing windows AnalyzeAll computes, longest
// first. The 90-day window doubles as the scorer's backlog source.
var RollingWindowDays = []int{365, 180, 90}

// RollingWindowKey returns the document key for a trailing window.
func RollingWindowKey(days int) string {
	return fmt.Sprintf("last_%d_days", days)
}
