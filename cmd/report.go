package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spiffcs/repohealth/config"
	"github.com/spiffcs/repohealth/internal/history"
	"github.com/spiffcs/repohealth/internal/log"
	"github.com/spiffcs/repohealth/internal/score"
	"github.com/spiffcs/repohealth/internal/store"
)

// NewCmdReport creates the report command.
func NewCmdReport(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the comprehensive final report",
		Long: `Builds the comprehensive final report from the fetched raw data: the full
metrics document with its score, the backlog snapshot, risk flags, and
stalled-action buckets. Writes the report to the data directory and records
the score in the local history.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "owner", "", "Repository owner, used to label score history")
	cmd.Flags().StringVar(&opts.Repo, "repo", "", "Repository name, used to label score history")
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "Directory for raw and generated data files (default from config)")
	cmd.Flags().StringVar(&opts.Now, "now", "", "Analysis instant in RFC 3339 (default: current time)")

	return cmd
}

func runReport(opts *Options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	now, err := resolveNow(opts)
	if err != nil {
		return err
	}

	builder, dataDir, err := loadBuilder(cfg, opts)
	if err != nil {
		return err
	}

	final, err := builder.BuildFinal(now)
	if err != nil {
		return err
	}

	path := dataPath(dataDir, finalFile)
	if err := store.WriteDocument(path, final); err != nil {
		return fmt.Errorf("writing final report: %w", err)
	}
	fmt.Printf("Final report written to %s\n", path)

	recordHistory(opts, final.Metrics.Score, final.BacklogSnapshot.OpenPRs,
		final.BacklogSnapshot.OpenIssues, len(final.RiskFlags))
	return nil
}

// recordHistory appends the score to the local history file. History is a
// convenience, so failures only warn.
func recordHistory(opts *Options, scoreValue any, openPRs, openIssues, riskFlags int) {
	report, ok := scoreValue.(score.Report)
	if !ok {
		return
	}

	hist, err := history.NewStore()
	if err != nil {
		log.Warn("score history unavailable", "error", err)
		return
	}

	repository := "unknown"
	if opts.Owner != "" && opts.Repo != "" {
		repository = opts.Owner + "/" + opts.Repo
	}

	if err := hist.Append(history.NewSnapshot(repository, report, openPRs, openIssues, riskFlags)); err != nil {
		log.Warn("failed to record score history", "error", err)
	}
}
