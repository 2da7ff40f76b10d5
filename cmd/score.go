package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spiffcs/repohealth/config"
	"github.com/spiffcs/repohealth/internal/metrics"
	"github.com/spiffcs/repohealth/internal/output"
	"github.com/spiffcs/repohealth/internal/store"
)

// NewCmdScore creates the score command.
func NewCmdScore(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score the generated metrics document",
		Long: `Reads the generated metrics document and computes the weighted 0-100
health score with its per-category breakdown.

With --save, the score is embedded back into the metrics document.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(opts)
		},
	}

	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "Directory for generated data files (default from config)")
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "table", "Output format (table, json)")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "Write the score back into the metrics document")

	return cmd
}

func runScore(opts *Options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	scorer, err := buildScorer(cfg)
	if err != nil {
		return err
	}

	dataDir := resolveDataDir(cfg, opts)
	path := dataPath(dataDir, metricsFile)

	var doc metrics.Document
	if err := store.ReadDocument(path, &doc); err != nil {
		return fmt.Errorf("reading metrics document from %s (run 'repohealth generate' first): %w", path, err)
	}

	report := scorer.Score(&doc)

	switch opts.Format {
	case "json":
		if err := output.WriteJSON(os.Stdout, report); err != nil {
			return err
		}
	default:
		output.ScoreTable(os.Stdout, report)
	}

	if opts.Save {
		calculatedAt := time.Now().UTC()
		doc.Score = report
		doc.ScoreCalculatedAt = &calculatedAt
		if err := store.WriteDocument(path, &doc); err != nil {
			return fmt.Errorf("saving scored metrics document: %w", err)
		}
		fmt.Printf("Score saved to %s\n", path)
	}

	return nil
}
