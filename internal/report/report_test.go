package report

import (
	"reflect"
	"testing"
	"time"

	"github.com/spiffcs/repohealth/internal/model"
	"github.com/spiffcs/repohealth/internal/score"
)

func ts(t *testing.T, s string) *time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", s, err)
	}
	v = v.UTC()
	return &v
}

// openItem builds an open item with the given whole-day age at now.
func openItem(number int, ageDays int, now time.Time) model.Item {
	created := now.AddDate(0, 0, -ageDays)
	return model.Item{Number: number, State: model.StateOpen, CreatedAt: &created}
}

func TestOpenItems(t *testing.T) {
	items := []model.Item{
		{Number: 1, State: model.StateOpen},
		{Number: 2, State: model.StateClosed},
		{Number: 3, State: model.StateMerged},
		{Number: 4, State: model.StateOpen},
	}

	open := OpenItems(items)
	if len(open) != 2 || open[0].Number != 1 || open[1].Number != 4 {
		t.Errorf("OpenItems() = %+v, want items 1 and 4", open)
	}
}

func TestSnapshot(t *testing.T) {
	now := *ts(t, "2024-06-15T00:00:00Z")

	openPRs := []model.Item{
		openItem(1, 10, now),
		openItem(2, 365, now), // boundary: exactly a year counts as over
		openItem(3, 400, now),
	}
	openIssues := []model.Item{
		openItem(10, 100, now),
		openItem(11, 500, now),
		openItem(12, 730, now), // boundary: exactly two years counts
		openItem(13, 800, now),
	}

	snap := Snapshot(openPRs, openIssues, now)

	if snap.OpenPRs != 3 || snap.OpenIssues != 4 {
		t.Errorf("counts = (%d, %d), want (3, 4)", snap.OpenPRs, snap.OpenIssues)
	}
	if snap.PRsOver365Days != 2 {
		t.Errorf("PRsOver365Days = %d, want 2", snap.PRsOver365Days)
	}
	if snap.IssuesOver365 != 3 {
		t.Errorf("IssuesOver365 = %d, want 3", snap.IssuesOver365)
	}
	if snap.IssuesOver730 != 2 {
		t.Errorf("IssuesOver730 = %d, want 2", snap.IssuesOver730)
	}
	if snap.MedianPRAgeDays != 365 {
		t.Errorf("MedianPRAgeDays = %d, want 365", snap.MedianPRAgeDays)
	}
	// Even count takes the upper of the two middles: [100 500 730 800] -> 730.
	if snap.MedianIssueAge != 730 {
		t.Errorf("MedianIssueAge = %d, want 730", snap.MedianIssueAge)
	}
}

func TestSnapshotEmpty(t *testing.T) {
	snap := Snapshot(nil, nil, *ts(t, "2024-06-15T00:00:00Z"))
	if snap != (BacklogSnapshot{}) {
		t.Errorf("Snapshot(nil, nil) = %+v, want zero value", snap)
	}
}

func TestRiskFlags(t *testing.T) {
	tests := []struct {
		name string
		snap BacklogSnapshot
		want []string
	}{
		{
			name: "healthy backlog raises nothing",
			snap: BacklogSnapshot{OpenPRs: 10, OpenIssues: 10, PRsOver365Days: 1, IssuesOver365: 2},
			want: nil,
		},
		{
			name: "stale PR share with truncated percentage",
			snap: BacklogSnapshot{OpenPRs: 5, PRsOver365Days: 2},
			want: []string{"40% of open PRs are over 1 year old"},
		},
		{
			name: "share exactly at threshold does not fire",
			snap: BacklogSnapshot{OpenPRs: 20, PRsOver365Days: 7}, // 35%
			want: nil,
		},
		{
			name: "stale issue share",
			snap: BacklogSnapshot{OpenIssues: 10, IssuesOver365: 7},
			want: []string{"70% of open issues are over 1 year old"},
		},
		{
			name: "any two-year-old issue fires",
			snap: BacklogSnapshot{OpenIssues: 10, IssuesOver365: 1, IssuesOver730: 1},
			want: []string{"10% of open issues are over 2 years old"},
		},
		{
			name: "large tracker",
			snap: BacklogSnapshot{OpenIssues: 21},
			want: []string{"High issue count suggests tracker reflects historical intent rather than active roadmap"},
		},
		{
			name: "tracker exactly at threshold does not fire",
			snap: BacklogSnapshot{OpenIssues: 20},
			want: nil,
		},
		{
			name: "multiple flags stack in order",
			snap: BacklogSnapshot{OpenPRs: 4, PRsOver365Days: 2, OpenIssues: 25, IssuesOver365: 20, IssuesOver730: 5},
			want: []string{
				"50% of open PRs are over 1 year old",
				"80% of open issues are over 1 year old",
				"20% of open issues are over 2 years old",
				"High issue count suggests tracker reflects historical intent rather than active roadmap",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RiskFlags(tt.snap)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RiskFlags() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStalledActions(t *testing.T) {
	now := *ts(t, "2024-06-15T00:00:00Z")

	openPRs := []model.Item{
		openItem(1, 50, now),  // fresh
		openItem(2, 180, now), // boundary: not yet in decision band
		openItem(3, 181, now), // decision band
		openItem(4, 365, now), // boundary: decision band, not archive
		openItem(5, 366, now), // archive
	}
	openIssues := []model.Item{
		openItem(10, 200, now), // decision band
		openItem(11, 730, now), // boundary: not yet closable
		openItem(12, 731, now), // close
	}

	actions := StalledActions(openPRs, openIssues, now)

	tests := []struct {
		bucket string
		want   []int
	}{
		{"archive_prs_over_365_days", []int{5}},
		{"decision_required_prs_180_365_days", []int{3, 4}},
		{"close_issues_over_730_days", []int{12}},
		{"decision_required_issues_180_365_days", []int{10}},
	}

	for _, tt := range tests {
		t.Run(tt.bucket, func(t *testing.T) {
			if !reflect.DeepEqual(actions[tt.bucket], tt.want) {
				t.Errorf("%s = %v, want %v", tt.bucket, actions[tt.bucket], tt.want)
			}
		})
	}
}

func TestStalledActionsBucketsAlwaysPresent(t *testing.T) {
	actions := StalledActions(nil, nil, *ts(t, "2024-06-15T00:00:00Z"))

	for _, bucket := range []string{
		"archive_prs_over_365_days",
		"close_issues_over_730_days",
		"decision_required_prs_180_365_days",
		"decision_required_issues_180_365_days",
	} {
		numbers, ok := actions[bucket]
		if !ok {
			t.Errorf("bucket %q missing", bucket)
			continue
		}
		if numbers == nil || len(numbers) != 0 {
			t.Errorf("bucket %q = %v, want empty non-nil slice", bucket, numbers)
		}
	}
}

func TestBuilderReports(t *testing.T) {
	now := *ts(t, "2024-06-15T00:00:00Z")

	prs := []model.Item{
		{
			Number: 1, State: model.StateMerged,
			CreatedAt: ts(t, "2024-05-01T00:00:00Z"), MergedAt: ts(t, "2024-05-03T00:00:00Z"),
			Author: &model.Identity{Login: "alice", ID: ptr(int64(1))},
			Reviews: []model.Review{
				{Author: &model.Identity{Login: "bob", ID: ptr(int64(2))}, SubmittedAt: ts(t, "2024-05-02T00:00:00Z")},
			},
		},
		openItem(2, 400, now),
	}
	issues := []model.Item{
		openItem(10, 800, now),
	}

	scorer, err := score.NewScorer(score.DefaultWeights(), nil)
	if err != nil {
		t.Fatalf("NewScorer() returned error: %v", err)
	}
	builder := NewBuilder(prs, issues, nil, scorer)

	t.Run("final report embeds metrics and score", func(t *testing.T) {
		final, err := builder.BuildFinal(now)
		if err != nil {
			t.Fatalf("BuildFinal() returned error: %v", err)
		}
		if !final.GeneratedAt.Equal(now) {
			t.Errorf("GeneratedAt = %v, want %v", final.GeneratedAt, now)
		}
		if final.Metrics == nil || final.Metrics.Score == nil {
			t.Fatal("final report missing metrics document or embedded score")
		}
		if final.BacklogSnapshot.OpenPRs != 1 {
			t.Errorf("BacklogSnapshot.OpenPRs = %d, want 1", final.BacklogSnapshot.OpenPRs)
		}
		if len(final.StalledActions["archive_prs_over_365_days"]) != 1 {
			t.Errorf("archive bucket = %v, want PR #2", final.StalledActions["archive_prs_over_365_days"])
		}
	})

	t.Run("summary carries the same risk analysis without metrics", func(t *testing.T) {
		summary, err := builder.BuildSummary(now)
		if err != nil {
			t.Fatalf("BuildSummary() returned error: %v", err)
		}
		final, err := builder.BuildFinal(now)
		if err != nil {
			t.Fatalf("BuildFinal() returned error: %v", err)
		}
		if !reflect.DeepEqual(summary.BacklogSnapshot, final.BacklogSnapshot) {
			t.Errorf("summary snapshot %+v differs from final %+v", summary.BacklogSnapshot, final.BacklogSnapshot)
		}
		if !reflect.DeepEqual(summary.RiskFlags, final.RiskFlags) {
			t.Errorf("summary flags %v differ from final %v", summary.RiskFlags, final.RiskFlags)
		}
		if summary.Score.OverallScore < 0 || summary.Score.OverallScore > 100 {
			t.Errorf("OverallScore = %v, want within [0,100]", summary.Score.OverallScore)
		}
	})
}

func ptr[T any](v T) *T { return &v }
