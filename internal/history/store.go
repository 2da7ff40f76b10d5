// Package history persists per-run score snapshots as JSON Lines so score
// drift is visible across runs.
package history

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spiffcs/repohealth/internal/log"
	"github.com/spiffcs/repohealth/internal/score"
)

// maxRecords is the maximum number of snapshots retained in the store.
const maxRecords = 1000

// Snapshot captures the score of a single analysis run.
type Snapshot struct {
	Timestamp      time.Time `json:"ts"`
	Repository     string    `json:"repo"`
	OverallScore   float64   `json:"overall"`
	ExecutionScore float64   `json:"execution"`
	CommunityScore float64   `json:"community"`
	BacklogScore   float64   `json:"backlog"`
	OpenPRs        int       `json:"openPrs"`
	OpenIssues     int       `json:"openIssues"`
	RiskFlagCount  int       `json:"riskFlags"`
}

// NewSnapshot builds a snapshot from a score report, stamped with the current
// time.
func NewSnapshot(repository string, report score.Report, openPRs, openIssues, riskFlags int) Snapshot {
	return Snapshot{
		Timestamp:      time.Now().UTC(),
		Repository:     repository,
		OverallScore:   report.OverallScore,
		ExecutionScore: report.SubScores.Execution,
		CommunityScore: report.SubScores.Community,
		BacklogScore:   report.SubScores.Backlog,
		OpenPRs:        openPRs,
		OpenIssues:     openIssues,
		RiskFlagCount:  riskFlags,
	}
}

// Store manages persistence of score snapshots as JSON Lines.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a history store at ~/.cache/repohealth/history.jsonl.
func NewStore() (*Store, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(cacheDir, "repohealth")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Store{
		path: filepath.Join(dir, "history.jsonl"),
	}, nil
}

// NewStoreWithPath creates a store at the given path (for testing).
func NewStoreWithPath(path string) *Store {
	return &Store{path: path}
}

// Append adds a snapshot and prunes to the last maxRecords entries.
func (s *Store) Append(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		log.Debug("could not read history, starting fresh", "error", err)
		records = nil
	}

	records = append(records, snap)

	if len(records) > maxRecords {
		records = records[len(records)-maxRecords:]
	}

	return s.writeAll(records)
}

// Recent returns the last n snapshots (or fewer if not enough exist).
func (s *Store) Recent(n int) []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil
	}

	if len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}

// readAll reads all snapshots from disk.
func (s *Store) readAll() ([]Snapshot, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var records []Snapshot
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(line, &snap); err != nil {
			continue // skip malformed lines
		}
		records = append(records, snap)
	}
	return records, scanner.Err()
}

// writeAll writes all snapshots to disk atomically.
func (s *Store) writeAll(records []Snapshot) error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, s.path)
}
