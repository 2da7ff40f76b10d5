package metrics

import (
	"testing"

	"github.com/spiffcs/repohealth/internal/model"
)

func TestComputeBacklogPRs(t *testing.T) {
	asOf := *ts(t, "2024-06-15T00:00:00Z")

	tests := []struct {
		name     string
		pr       model.Item
		wantOpen bool
	}{
		{
			name:     "never merged counts open",
			pr:       model.Item{Number: 1, State: model.StateOpen, CreatedAt: ts(t, "2024-06-01T00:00:00Z")},
			wantOpen: true,
		},
		{
			name: "merged before asOf is closed",
			pr: model.Item{Number: 2, State: model.StateMerged,
				CreatedAt: ts(t, "2024-06-01T00:00:00Z"), MergedAt: ts(t, "2024-06-10T00:00:00Z")},
			wantOpen: false,
		},
		{
			name: "merged after asOf was still open then",
			pr: model.Item{Number: 3, State: model.StateMerged,
				CreatedAt: ts(t, "2024-06-01T00:00:00Z"), MergedAt: ts(t, "2024-06-20T00:00:00Z")},
			wantOpen: true,
		},
		{
			name:     "created after asOf did not exist yet",
			pr:       model.Item{Number: 4, State: model.StateOpen, CreatedAt: ts(t, "2024-06-20T00:00:00Z")},
			wantOpen: false,
		},
		{
			// Merge time is the only close signal the model keeps for PRs, so
			// a PR closed without merging stays in the historical backlog.
			name: "closed without merging still counts open",
			pr: model.Item{Number: 5, State: model.StateClosed,
				CreatedAt: ts(t, "2024-06-01T00:00:00Z"), ClosedAt: ts(t, "2024-06-05T00:00:00Z")},
			wantOpen: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewCalculator([]model.Item{tt.pr}, nil, nil)
			m := calc.ComputeBacklog(asOf)

			wantCount := 0
			if tt.wantOpen {
				wantCount = 1
			}
			if m.OpenPRCount != wantCount {
				t.Errorf("OpenPRCount = %d, want %d", m.OpenPRCount, wantCount)
			}
		})
	}
}

func TestComputeBacklogIssues(t *testing.T) {
	asOf := *ts(t, "2024-06-15T00:00:00Z")

	issues := []model.Item{
		{Number: 1, State: model.StateOpen, CreatedAt: ts(t, "2024-06-01T00:00:00Z")},
		{Number: 2, State: model.StateClosed, CreatedAt: ts(t, "2024-06-01T00:00:00Z")},
		{Number: 3, State: model.StateOpen, CreatedAt: ts(t, "2024-06-20T00:00:00Z")},
	}

	calc := NewCalculator(nil, issues, nil)
	m := calc.ComputeBacklog(asOf)

	if m.OpenIssueCount != 1 {
		t.Errorf("OpenIssueCount = %d, want 1", m.OpenIssueCount)
	}
}

func TestComputeBacklogAges(t *testing.T) {
	asOf := *ts(t, "2024-06-15T00:00:00Z")

	prs := []model.Item{
		{Number: 1, State: model.StateOpen, CreatedAt: ts(t, "2024-06-05T00:00:00Z")}, // 10 days
		{Number: 2, State: model.StateOpen, CreatedAt: ts(t, "2024-05-16T00:00:00Z")}, // 30 days
		{Number: 3, State: model.StateOpen, CreatedAt: ts(t, "2024-06-14T12:00:00Z")}, // 0 whole days
	}

	calc := NewCalculator(prs, nil, nil)
	m := calc.ComputeBacklog(asOf)

	if m.OpenPRCount != 3 {
		t.Fatalf("OpenPRCount = %d, want 3", m.OpenPRCount)
	}
	if m.MedianOpenPRAgeDays != 10 {
		t.Errorf("MedianOpenPRAgeDays = %v, want 10", m.MedianOpenPRAgeDays)
	}
}

func TestComputeBacklogEmpty(t *testing.T) {
	calc := NewCalculator(nil, nil, nil)
	m := calc.ComputeBacklog(*ts(t, "2024-06-15T00:00:00Z"))

	if m.OpenPRCount != 0 || m.OpenIssueCount != 0 || m.MedianOpenPRAgeDays != 0 || m.MedianOpenIssueAgeDays != 0 {
		t.Errorf("empty backlog = %+v, want zeros", m)
	}
}
