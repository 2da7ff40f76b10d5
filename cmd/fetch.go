package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/spiffcs/repohealth/config"
	"github.com/spiffcs/repohealth/internal/ghclient"
	"github.com/spiffcs/repohealth/internal/log"
	"github.com/spiffcs/repohealth/internal/model"
	"github.com/spiffcs/repohealth/internal/store"
)

// NewCmdFetch creates the fetch command.
func NewCmdFetch(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch pull request and issue history from GitHub",
		Long: `Fetches the repository's pull request and issue history via the GitHub
GraphQL API, newest first, and saves the normalized raw data to the data
directory for later analysis.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "owner", "", "Repository owner (required)")
	cmd.Flags().StringVar(&opts.Repo, "repo", "", "Repository name (required)")
	cmd.Flags().StringVarP(&opts.Since, "since", "s", "", "Only fetch items created on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "Directory for raw data files (default from config)")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}

func runFetch(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	token := cfg.GetGitHubToken()
	if token == "" {
		return fmt.Errorf("GitHub token not configured. Set the GITHUB_TOKEN environment variable")
	}

	var since time.Time
	if opts.Since != "" {
		since, err = time.ParseInLocation("2006-01-02", opts.Since, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid --since value %q, expected YYYY-MM-DD: %w", opts.Since, err)
		}
	}

	client, err := ghclient.NewClient(ctx, token)
	if err != nil {
		return err
	}

	user, err := client.AuthenticatedUser(ctx)
	if err != nil {
		return fmt.Errorf("authentication check failed: %w", err)
	}
	log.Info("authenticated", "user", user)

	start := time.Now()
	var prs, issues []model.Item

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prs, err = client.FetchPullRequests(gctx, opts.Owner, opts.Repo, since)
		return err
	})
	g.Go(func() error {
		var err error
		issues, err = client.FetchIssues(gctx, opts.Owner, opts.Repo, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	dataDir := resolveDataDir(cfg, opts)
	st := store.New(dataDir)
	if err := st.Save(prs, issues); err != nil {
		return fmt.Errorf("saving raw data: %w", err)
	}

	log.Debug("fetch complete", "elapsed", time.Since(start).Round(time.Millisecond))
	fmt.Printf("Fetched %d pull requests and %d issues from %s/%s\n", len(prs), len(issues), opts.Owner, opts.Repo)
	fmt.Printf("Raw data written to %s and %s\n", st.PRsPath(), st.IssuesPath())
	return nil
}
