package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spiffcs/repohealth/internal/model"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := New(dir)

	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	merged := created.AddDate(0, 0, 2)
	id := int64(42)

	prs := []model.Item{
		{
			Number: 1, Title: "add feature", State: model.StateMerged,
			CreatedAt: &created, MergedAt: &merged,
			Author: &model.Identity{Login: "alice", ID: &id},
			Labels: []string{"enhancement"},
		},
	}
	issues := []model.Item{
		{Number: 10, Title: "bug report", State: model.StateOpen, CreatedAt: &created},
	}

	if err := s.Save(prs, issues); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	gotPRs, gotIssues, err := s.Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if len(gotPRs) != 1 || len(gotIssues) != 1 {
		t.Fatalf("Load() = %d PRs, %d issues; want 1 each", len(gotPRs), len(gotIssues))
	}
	pr := gotPRs[0]
	if pr.Number != 1 || pr.State != model.StateMerged {
		t.Errorf("PR round trip lost fields: %+v", pr)
	}
	if pr.CreatedAt == nil || !pr.CreatedAt.Equal(created) {
		t.Errorf("PR CreatedAt = %v, want %v", pr.CreatedAt, created)
	}
	if pr.Author == nil || pr.Author.Login != "alice" || pr.Author.ID == nil || *pr.Author.ID != 42 {
		t.Errorf("PR author round trip lost identity: %+v", pr.Author)
	}
}

func TestLoadMissingFiles(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "empty"))
	if _, _, err := s.Load(); err == nil {
		t.Error("Load() on missing files expected error, got nil")
	}
}

func TestLoadRejectsMalformedData(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	if err := os.WriteFile(s.PRsPath(), []byte(`[{"number": "not a number"}]`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.IssuesPath(), []byte(`[]`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := s.Load(); err == nil {
		t.Error("Load() on malformed data expected error, got nil")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	if err := s.Save(nil, nil); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")

	in := map[string]any{"overall_score": 72.5}
	if err := WriteDocument(path, in); err != nil {
		t.Fatalf("WriteDocument() returned error: %v", err)
	}

	var out map[string]any
	if err := ReadDocument(path, &out); err != nil {
		t.Fatalf("ReadDocument() returned error: %v", err)
	}
	if out["overall_score"] != 72.5 {
		t.Errorf("round trip = %v, want 72.5", out["overall_score"])
	}
}
