package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spiffcs/repohealth/internal/history"
	"github.com/spiffcs/repohealth/internal/output"
)

// NewCmdHistory creates the history command.
func NewCmdHistory(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent score history",
		Long:  `Display recent score snapshots recorded by 'repohealth report', oldest first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "Number of snapshots to show")
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "table", "Output format (table, json)")

	return cmd
}

func runHistory(opts *Options) error {
	hist, err := history.NewStore()
	if err != nil {
		return err
	}

	snapshots := hist.Recent(opts.Limit)

	if opts.Format == "json" {
		return output.WriteJSON(os.Stdout, snapshots)
	}
	output.HistoryTable(os.Stdout, snapshots)
	return nil
}
