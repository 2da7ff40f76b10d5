// Package store persists the normalized raw dataset between the fetch and
// analysis stages as JSON files in a data directory.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spiffcs/repohealth/internal/model"
)

const (
	prsFile    = "prs_raw.json"
	issuesFile = "issues_raw.json"
)

// Store reads and writes the raw dataset for one repository.
type Store struct {
	dir string
}

// New creates a store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// PRsPath returns the path of the raw pull-request file.
func (s *Store) PRsPath() string {
	return filepath.Join(s.dir, prsFile)
}

// IssuesPath returns the path of the raw issue file.
func (s *Store) IssuesPath() string {
	return filepath.Join(s.dir, issuesFile)
}

// Save writes both raw datasets, creating the data directory if needed.
func (s *Store) Save(prs, issues []model.Item) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", s.dir, err)
	}
	if err := writeJSON(s.PRsPath(), prs); err != nil {
		return err
	}
	return writeJSON(s.IssuesPath(), issues)
}

// Load reads both raw datasets. Decoding fails loudly on malformed
// timestamps; silent coercion would corrupt window membership downstream.
func (s *Store) Load() (prs, issues []model.Item, err error) {
	if err := readJSON(s.PRsPath(), &prs); err != nil {
		return nil, nil, err
	}
	if err := readJSON(s.IssuesPath(), &issues); err != nil {
		return nil, nil, err
	}
	return prs, issues, nil
}

// writeJSON writes v to path atomically via a temp file rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename %s: %w", tmp, err)
	}
	return nil
}

// readJSON decodes path into v.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// WriteDocument writes any report document as indented JSON to path.
func WriteDocument(path string, v any) error {
	return writeJSON(path, v)
}

// ReadDocument decodes a report document from path into v.
func ReadDocument(path string, v any) error {
	return readJSON(path, v)
}
