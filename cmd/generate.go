package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spiffcs/repohealth/config"
	"github.com/spiffcs/repohealth/internal/log"
	"github.com/spiffcs/repohealth/internal/metrics"
	"github.com/spiffcs/repohealth/internal/store"
)

// NewCmdGenerate creates the generate command.
func NewCmdGenerate(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the metrics document from fetched data",
		Long: `Computes execution, community, and backlog metrics from the fetched raw
data: all-time, rolling 365/180/90-day windows, and per-month buckets.
Writes the metrics document to the data directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(opts)
		},
	}

	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "Directory for raw and generated data files (default from config)")
	cmd.Flags().StringVar(&opts.Now, "now", "", "Analysis instant in RFC 3339 (default: current time)")

	return cmd
}

func runGenerate(opts *Options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	now, err := resolveNow(opts)
	if err != nil {
		return err
	}

	dataDir := resolveDataDir(cfg, opts)
	prs, issues, err := store.New(dataDir).Load()
	if err != nil {
		return fmt.Errorf("loading raw data from %s (run 'repohealth fetch' first): %w", dataDir, err)
	}

	calc := metrics.NewCalculator(prs, issues, cfg.GetExcludeBots())
	doc, err := calc.AnalyzeAll(now)
	if err != nil {
		return err
	}

	path := dataPath(dataDir, metricsFile)
	if err := store.WriteDocument(path, doc); err != nil {
		return fmt.Errorf("writing metrics document: %w", err)
	}

	log.Debug("metrics generated", "months", len(doc.Monthly), "windows", len(doc.RollingWindows))
	fmt.Printf("Metrics for %d pull requests and %d issues written to %s\n", len(prs), len(issues), path)
	return nil
}
