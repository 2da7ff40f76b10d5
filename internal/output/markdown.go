package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spiffcs/repohealth/internal/report"
)

// stalledBucketOrder fixes the section order for the stalled-action buckets.
var stalledBucketOrder = []struct {
	key   string
	title string
}{
	{"archive_prs_over_365_days", "Archive: PRs open over 1 year"},
	{"close_issues_over_730_days", "Close: issues open over 2 years"},
	{"decision_required_prs_180_365_days", "Decision required: PRs open 6-12 months"},
	{"decision_required_issues_180_365_days", "Decision required: issues open 6-12 months"},
}

// WriteMarkdown renders the summary report as Markdown, compact enough to
// paste into an LLM prompt as context.
func WriteMarkdown(w io.Writer, summary *report.Summary) {
	fmt.Fprintln(w, "# Repository Health Summary")
	fmt.Fprintf(w, "\n*Generated: %s*\n\n", summary.GeneratedAt.UTC().Format("2006-01-02 15:04"))

	fmt.Fprintf(w, "## Overall Score: %.2f/100\n\n", summary.Score.OverallScore)
	fmt.Fprintf(w, "| Category | Score | Weight |\n")
	fmt.Fprintf(w, "|----------|-------|--------|\n")
	fmt.Fprintf(w, "| Execution | %.2f | %.0f%% |\n", summary.Score.SubScores.Execution, summary.Score.Weights.Execution*100)
	fmt.Fprintf(w, "| Community | %.2f | %.0f%% |\n", summary.Score.SubScores.Community, summary.Score.Weights.Community*100)
	fmt.Fprintf(w, "| Backlog | %.2f | %.0f%% |\n\n", summary.Score.SubScores.Backlog, summary.Score.Weights.Backlog*100)

	writeBreakdown(w, "Execution", summary.Score.Breakdown.Execution)
	writeBreakdown(w, "Community", summary.Score.Breakdown.Community)
	writeBreakdown(w, "Backlog", summary.Score.Breakdown.Backlog)

	snap := summary.BacklogSnapshot
	fmt.Fprintln(w, "## Backlog Snapshot")
	fmt.Fprintf(w, "\n- Open PRs: %d (median age %d days, %d over 1 year)\n",
		snap.OpenPRs, snap.MedianPRAgeDays, snap.PRsOver365Days)
	fmt.Fprintf(w, "- Open issues: %d (median age %d days, %d over 1 year, %d over 2 years)\n\n",
		snap.OpenIssues, snap.MedianIssueAge, snap.IssuesOver365, snap.IssuesOver730)

	fmt.Fprintln(w, "## Risk Flags")
	fmt.Fprintln(w)
	if len(summary.RiskFlags) == 0 {
		fmt.Fprintln(w, "No risk flags raised.")
	} else {
		for _, flag := range summary.RiskFlags {
			fmt.Fprintf(w, "- ⚠️ %s\n", flag)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Stalled Actions")
	fmt.Fprintln(w)
	any := false
	for _, bucket := range stalledBucketOrder {
		numbers := summary.StalledActions[bucket.key]
		if len(numbers) == 0 {
			continue
		}
		any = true
		fmt.Fprintf(w, "### %s (%d)\n\n%s\n\n", bucket.title, len(numbers), formatNumbers(numbers))
	}
	if !any {
		fmt.Fprintln(w, "Nothing stalled past the action thresholds.")
	}
}

// writeBreakdown prints one sub-score breakdown table with stable key order.
func writeBreakdown(w io.Writer, title string, components map[string]float64) {
	if len(components) == 0 {
		return
	}

	keys := make([]string, 0, len(components))
	for k := range components {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "### %s breakdown\n\n", title)
	fmt.Fprintf(w, "| Component | Score |\n")
	fmt.Fprintf(w, "|-----------|-------|\n")
	for _, k := range keys {
		fmt.Fprintf(w, "| %s | %.2f |\n", strings.ReplaceAll(k, "_", " "), components[k])
	}
	fmt.Fprintln(w)
}

// formatNumbers renders item numbers as a comma-separated list of #refs.
func formatNumbers(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = fmt.Sprintf("#%d", n)
	}
	return strings.Join(parts, ", ")
}
