package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spiffcs/repohealth/config"
	"github.com/spiffcs/repohealth/internal/output"
	"github.com/spiffcs/repohealth/internal/store"
)

// NewCmdSummary creates the summary command.
func NewCmdSummary(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Generate the lean summary report",
		Long: `Builds the lean summary report: score, backlog snapshot, risk flags, and
stalled-action buckets without the full metrics document. Compact enough to
paste into an LLM prompt as repository context.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummary(opts)
		},
	}

	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "Directory for raw and generated data files (default from config)")
	cmd.Flags().StringVar(&opts.Now, "now", "", "Analysis instant in RFC 3339 (default: current time)")
	cmd.Flags().BoolVar(&opts.Markdown, "markdown", false, "Render the summary as Markdown instead of JSON")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "Also write the summary JSON to the data directory")

	return cmd
}

func runSummary(opts *Options) error {
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

	summary, err := builder.BuildSummary(now)
	if err != nil {
		return err
	}

	if opts.Markdown {
		output.WriteMarkdown(os.Stdout, summary)
	} else if err := output.WriteJSON(os.Stdout, summary); err != nil {
		return err
	}

	if opts.Save {
		path := dataPath(dataDir, summaryFile)
		if err := store.WriteDocument(path, summary); err != nil {
			return fmt.Errorf("writing summary report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Summary written to %s\n", path)
	}

	return nil
}
