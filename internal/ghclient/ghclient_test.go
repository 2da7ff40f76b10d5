package ghclient

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/spiffcs/repohealth/internal/model"
)

func sptr(s string) *string { return &s }

func iptr(v int64) *int64 { return &v }

func TestRawActorIdentity(t *testing.T) {
	tests := []struct {
		name      string
		actor     *rawActor
		wantLogin string
		wantID    bool
	}{
		{"resolvable user", &rawActor{Login: "alice", DatabaseID: iptr(1)}, "alice", true},
		{"app without database id", &rawActor{Login: "some-app"}, "some-app", false},
		{"null actor maps to ghost", nil, "ghost", false},
		{"empty login maps to ghost", &rawActor{}, "ghost", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.actor.identity()
			if id.Login != tt.wantLogin {
				t.Errorf("identity().Login = %q, want %q", id.Login, tt.wantLogin)
			}
			if _, ok := id.UserID(); ok != tt.wantID {
				t.Errorf("identity() has id = %v, want %v", ok, tt.wantID)
			}
		})
	}
}

func TestNormalizePR(t *testing.T) {
	var raw rawPR
	payload := `{
		"number": 7,
		"title": "add retry logic",
		"state": "MERGED",
		"createdAt": "2024-05-01T00:00:00Z",
		"mergedAt": "2024-05-03T12:00:00Z",
		"author": {"login": "alice", "databaseId": 1},
		"mergedBy": {"login": "bob", "databaseId": 2},
		"labels": {"edges": [{"node": {"name": "bug"}}]},
		"reviews": {"edges": [
			{"node": {"author": {"login": "carol", "databaseId": 3}, "submittedAt": "2024-05-02T00:00:00Z", "state": "APPROVED"}}
		]}
	}`
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}

	item, err := normalizePR(raw)
	if err != nil {
		t.Fatalf("normalizePR() returned error: %v", err)
	}

	if item.Number != 7 || item.State != model.StateMerged {
		t.Errorf("item = %+v, want number 7 state MERGED", item)
	}
	if merged, ok := item.Merged(); !ok || !merged.Equal(time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("Merged() = %v, %v; want 2024-05-03T12:00:00Z", merged, ok)
	}
	if id, ok := item.AuthorID(); !ok || id != 1 {
		t.Errorf("AuthorID() = %d, %v; want 1", id, ok)
	}
	if item.MergedBy == nil || item.MergedBy.Login != "bob" {
		t.Errorf("MergedBy = %+v, want bob", item.MergedBy)
	}
	if len(item.Labels) != 1 || item.Labels[0] != "bug" {
		t.Errorf("Labels = %v, want [bug]", item.Labels)
	}
	if len(item.Reviews) != 1 || item.Reviews[0].State != "APPROVED" {
		t.Errorf("Reviews = %+v, want one approved review", item.Reviews)
	}
}

func TestNormalizePRRejectsBadTimestamps(t *testing.T) {
	raw := rawPR{Number: 7, CreatedAt: "yesterday"}
	if _, err := normalizePR(raw); err == nil {
		t.Error("normalizePR() with bad createdAt expected error, got nil")
	}

	raw = rawPR{Number: 7, CreatedAt: "2024-05-01T00:00:00Z", MergedAt: sptr("bad")}
	if _, err := normalizePR(raw); err == nil {
		t.Error("normalizePR() with bad mergedAt expected error, got nil")
	}
}

func TestNormalizeIssue(t *testing.T) {
	var raw rawIssue
	payload := `{
		"number": 12,
		"title": "crash on startup",
		"state": "OPEN",
		"createdAt": "2024-04-01T00:00:00Z",
		"author": null,
		"comments": {"edges": [
			{"node": {"author": null, "createdAt": "2024-04-02T00:00:00Z"}}
		]}
	}`
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}

	item, err := normalizeIssue(raw)
	if err != nil {
		t.Fatalf("normalizeIssue() returned error: %v", err)
	}

	if item.Author == nil || item.Author.Login != "ghost" {
		t.Errorf("Author = %+v, want ghost identity for deleted account", item.Author)
	}
	if len(item.Comments) != 1 {
		t.Fatalf("Comments = %d, want 1 (ghost comments are kept)", len(item.Comments))
	}
	if item.Comments[0].Author.Login != "ghost" {
		t.Errorf("comment author = %+v, want ghost", item.Comments[0].Author)
	}
}

func TestPastCutoff(t *testing.T) {
	at := func(s string) *time.Time {
		v, err := time.Parse(time.RFC3339, s)
		if err != nil {
			t.Fatalf("bad timestamp %q: %v", s, err)
		}
		return &v
	}
	cutoff := *at("2024-01-01T00:00:00Z")

	tests := []struct {
		name  string
		items []model.Item
		since time.Time
		want  bool
	}{
		{"zero cutoff never stops", []model.Item{{CreatedAt: at("2020-01-01T00:00:00Z")}}, time.Time{}, false},
		{"no items yet", nil, cutoff, false},
		{"newest-first tail still in range", []model.Item{{CreatedAt: at("2024-06-01T00:00:00Z")}}, cutoff, false},
		{"tail past cutoff", []model.Item{{CreatedAt: at("2023-06-01T00:00:00Z")}}, cutoff, true},
		{"tail exactly at cutoff", []model.Item{{CreatedAt: at("2024-01-01T00:00:00Z")}}, cutoff, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pastCutoff(tt.items, tt.since); got != tt.want {
				t.Errorf("pastCutoff() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterSince(t *testing.T) {
	at := func(s string) *time.Time {
		v, _ := time.Parse(time.RFC3339, s)
		return &v
	}
	items := []model.Item{
		{Number: 1, CreatedAt: at("2024-06-01T00:00:00Z")},
		{Number: 2, CreatedAt: at("2023-06-01T00:00:00Z")},
		{Number: 3, CreatedAt: at("2024-01-01T00:00:00Z")},
	}
	cutoff, _ := time.Parse(time.RFC3339, "2024-01-01T00:00:00Z")

	got := filterSince(items, cutoff)
	if len(got) != 2 || got[0].Number != 1 || got[1].Number != 3 {
		t.Errorf("filterSince() = %+v, want items 1 and 3", got)
	}

	if got := filterSince(items, time.Time{}); len(got) != 3 {
		t.Errorf("filterSince(zero) kept %d items, want all 3", len(got))
	}
}

// roundTripFunc adapts a function into an http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestRateLimitTransport(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		headers     map[string]string
		wantLimited bool
	}{
		{"ok passes through", http.StatusOK, nil, false},
		{"plain 403 passes through", http.StatusForbidden, map[string]string{"X-RateLimit-Remaining": "50"}, false},
		{"403 with exhausted quota", http.StatusForbidden, map[string]string{"X-RateLimit-Remaining": "0"}, true},
		{"429 always limited", http.StatusTooManyRequests, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &rateLimitTransport{base: roundTripFunc(func(req *http.Request) (*http.Response, error) {
				resp := &http.Response{
					StatusCode: tt.status,
					Header:     make(http.Header),
					Body:       http.NoBody,
				}
				for k, v := range tt.headers {
					resp.Header.Set(k, v)
				}
				return resp, nil
			})}

			req, _ := http.NewRequest(http.MethodGet, "https://api.github.com/graphql", nil)
			_, err := transport.RoundTrip(req)

			if tt.wantLimited && !errors.Is(err, ErrRateLimited) {
				t.Errorf("RoundTrip() error = %v, want ErrRateLimited", err)
			}
			if !tt.wantLimited && err != nil {
				t.Errorf("RoundTrip() unexpected error: %v", err)
			}
		})
	}
}

func TestParseRateLimitHeaders(t *testing.T) {
	resp := &http.Response{Header: make(http.Header)}
	resp.Header.Set("X-RateLimit-Remaining", "4200")
	resp.Header.Set("X-RateLimit-Reset", "1718452800")

	remaining, resetAt := parseRateLimitHeaders(resp)
	if remaining != 4200 {
		t.Errorf("remaining = %d, want 4200", remaining)
	}
	if resetAt.Unix() != 1718452800 {
		t.Errorf("resetAt = %v, want unix 1718452800", resetAt)
	}

	empty := &http.Response{Header: make(http.Header)}
	remaining, _ = parseRateLimitHeaders(empty)
	if remaining != -1 {
		t.Errorf("remaining with no headers = %d, want -1", remaining)
	}
}
