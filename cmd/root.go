package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spiffcs/repohealth/internal/log"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "repohealth",
		Short: "GitHub repository health analyzer",
		Long: `A CLI tool that ingests a repository's pull request and issue history,
computes execution, community, and backlog metrics over several time
windows, and scores the repository's health on a 0-100 scale.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Initialize(opts.Verbosity, os.Stderr)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")

	// Register subcommands
	rootCmd.AddCommand(NewCmdFetch(opts))
	rootCmd.AddCommand(NewCmdGenerate(opts))
	rootCmd.AddCommand(NewCmdScore(opts))
	rootCmd.AddCommand(NewCmdReport(opts))
	rootCmd.AddCommand(NewCmdSummary(opts))
	rootCmd.AddCommand(NewCmdHistory(opts))
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdRateLimit())
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}
