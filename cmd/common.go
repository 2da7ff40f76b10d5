package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spiffcs/repohealth/config"
	"github.com/spiffcs/repohealth/internal/report"
	"github.com/spiffcs/repohealth/internal/score"
	"github.com/spiffcs/repohealth/internal/store"
	"github.com/spiffcs/repohealth/internal/timeutil"
)

// Generated data file names inside the data directory.
const (
	metricsFile = "health_metrics.json"
	finalFile   = "final_report.json"
	summaryFile = "summary_report.json"
)

// resolveNow parses the --now flag, defaulting to the current UTC instant.
// Pinning now makes reruns over the same dataset byte-for-byte reproducible.
func resolveNow(opts *Options) (time.Time, error) {
	if opts.Now == "" {
		return time.Now().UTC(), nil
	}
	now, err := timeutil.ParseInstant(opts.Now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now value: %w", err)
	}
	return now, nil
}

// resolveDataDir prefers the --data-dir flag over the configured directory.
func resolveDataDir(cfg *config.Config, opts *Options) string {
	if opts.DataDir != "" {
		return opts.DataDir
	}
	return cfg.GetDataDir()
}

// buildScorer constructs a scorer from the merged config's weights and targets.
func buildScorer(cfg *config.Config) (*score.Scorer, error) {
	scorer, err := score.NewScorer(cfg.GetWeights(), cfg.GetTargets())
	if err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	return scorer, nil
}

// loadBuilder loads the raw dataset from the data directory and wires it into
// a report builder using the merged config.
func loadBuilder(cfg *config.Config, opts *Options) (*report.Builder, string, error) {
	dataDir := resolveDataDir(cfg, opts)

	prs, issues, err := store.New(dataDir).Load()
	if err != nil {
		return nil, "", fmt.Errorf("loading raw data from %s (run 'repohealth fetch' first): %w", dataDir, err)
	}

	scorer, err := buildScorer(cfg)
	if err != nil {
		return nil, "", err
	}

	return report.NewBuilder(prs, issues, cfg.GetExcludeBots(), scorer), dataDir, nil
}

// dataPath joins a generated file name onto the data directory.
func dataPath(dataDir, name string) string {
	return filepath.Join(dataDir, name)
}
