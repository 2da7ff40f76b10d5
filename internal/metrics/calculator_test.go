package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/spiffcs/repohealth/internal/model"
)

// Test fixture helpers shared by the package's tests.

func ts(t *testing.T, s string) *time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", s, err)
	}
	v = v.UTC()
	return &v
}

func user(login string, id int64) *model.Identity {
	return &model.Identity{Login: login, ID: &id}
}

func ghost() *model.Identity {
	return &model.Identity{Login: "ghost"}
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestFirstSeen(t *testing.T) {
	prs := []model.Item{
		{Number: 1, CreatedAt: ts(t, "2024-03-01T00:00:00Z"), Author: user("alice", 1)},
		{Number: 2, CreatedAt: ts(t, "2024-01-01T00:00:00Z"), Author: user("alice", 1)},
	}
	issues := []model.Item{
		{Number: 10, CreatedAt: ts(t, "2024-02-01T00:00:00Z"), Author: user("bob", 2)},
		{Number: 11, Author: user("carol", 3)},                 // no creation time
		{Number: 12, CreatedAt: ts(t, "2024-04-01T00:00:00Z")}, // no author
	}

	calc := NewCalculator(prs, issues, nil)

	t.Run("earliest item wins regardless of input order", func(t *testing.T) {
		got, ok := calc.FirstSeen(1)
		if !ok || !got.Equal(*ts(t, "2024-01-01T00:00:00Z")) {
			t.Errorf("FirstSeen(1) = %v, %v; want 2024-01-01", got, ok)
		}
	})

	t.Run("issues contribute to the index", func(t *testing.T) {
		got, ok := calc.FirstSeen(2)
		if !ok || !got.Equal(*ts(t, "2024-02-01T00:00:00Z")) {
			t.Errorf("FirstSeen(2) = %v, %v; want 2024-02-01", got, ok)
		}
	})

	t.Run("items without timestamps or authors are skipped", func(t *testing.T) {
		if _, ok := calc.FirstSeen(3); ok {
			t.Error("FirstSeen(3) = true, want false for author with no dated items")
		}
	})
}

func TestRankCounts(t *testing.T) {
	counts := map[int64]int{5: 3, 2: 7, 9: 3, 1: 1}

	ranked := rankCounts(counts, 10)

	want := []IDCount{{ID: 2, Count: 7}, {ID: 5, Count: 3}, {ID: 9, Count: 3}, {ID: 1, Count: 1}}
	if len(ranked) != len(want) {
		t.Fatalf("rankCounts() returned %d entries, want %d", len(ranked), len(want))
	}
	for i := range want {
		if ranked[i] != want[i] {
			t.Errorf("rankCounts()[%d] = %+v, want %+v", i, ranked[i], want[i])
		}
	}
}

func TestRankCountsCap(t *testing.T) {
	counts := make(map[int64]int)
	for i := int64(1); i <= 15; i++ {
		counts[i] = int(i)
	}

	ranked := rankCounts(counts, 10)
	if len(ranked) != 10 {
		t.Errorf("rankCounts() returned %d entries, want cap of 10", len(ranked))
	}
	if ranked[0].ID != 15 {
		t.Errorf("rankCounts()[0].ID = %d, want 15", ranked[0].ID)
	}
}

func TestConcentration(t *testing.T) {
	tests := []struct {
		name     string
		ranked   []IDCount
		total    int
		wantTop1 float64
		wantTop2 float64
	}{
		{"no activity", nil, 0, 0, 0},
		{"single actor top2 equals top1", []IDCount{{ID: 1, Count: 4}}, 4, 100, 100},
		{"two actors", []IDCount{{ID: 1, Count: 2}, {ID: 2, Count: 1}}, 3, 200.0 / 3, 100},
		{"three actors", []IDCount{{ID: 1, Count: 5}, {ID: 2, Count: 3}, {ID: 3, Count: 2}}, 10, 50, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top1, top2 := concentration(tt.ranked, tt.total)
			if !approx(top1, tt.wantTop1) || !approx(top2, tt.wantTop2) {
				t.Errorf("concentration() = (%v, %v), want (%v, %v)", top1, top2, tt.wantTop1, tt.wantTop2)
			}
		})
	}
}
