package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"deployfreq/internal/deploys"
	"deployfreq/internal/frequency"
	"deployfreq/internal/vcs"

	"github.com/spf13/cobra"
)

const (
	defaultReportDays = 5
	timestampLayout   = "2006-01-02 15:04:05"
)

var (
	reportDays  int
	githubToken string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print deploys per day",
	Long: `Print the deploys of the target job for each day of the window, today first.

With a GitHub token the commit headline of each revision is appended.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().IntVarP(&reportDays, "days", "d", defaultReportDays, "Number of days to report, today included")
	reportCmd.Flags().StringVar(&githubToken, "github-token", os.Getenv("GITHUB_TOKEN"), "GitHub token for commit headlines")
}

// headlineFunc returns the commit headline of a revision
type headlineFunc func(ctx context.Context, revision string) (string, error)

func runReport(cmd *cobra.Command, args []string) error {
	env, err := setupEnvironment()
	if err != nil {
		return err
	}

	target, err := env.Registry.Get(targetName)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	buckets, err := frequency.NewAggregator(env.Resolver, target).Aggregate(ctx, reportDays)
	if err != nil {
		return fmt.Errorf("failed to aggregate deploys: %w", err)
	}

	return writeReport(ctx, cmd.OutOrStdout(), buckets, annotator(target, env.Logger), env.Logger)
}

// annotator returns a headline lookup when a GitHub token is set and the
// target lives on GitHub
func annotator(target deploys.Target, logger *slog.Logger) headlineFunc {
	client := vcs.NewGitHubClient(githubToken)
	if client == nil {
		return nil
	}

	owner, repo, ok := vcs.RepoFromSlugs(target.OrgSlug, target.ProjectSlug)
	if !ok {
		logger.Warn("Target is not a GitHub project, skipping commit headlines", "org", target.OrgSlug)
		return nil
	}

	return vcs.NewAnnotator(client, owner, repo).Headline
}

// writeReport prints each day label followed by its deploys
func writeReport(ctx context.Context, w io.Writer, buckets *frequency.DayBuckets, headline headlineFunc, logger *slog.Logger) error {
	if _, err := fmt.Fprintln(w, "deploys per day"); err != nil {
		return err
	}

	for _, label := range buckets.Labels() {
		if _, err := fmt.Fprintf(w, "Day: %s\n", label); err != nil {
			return err
		}

		for _, d := range buckets.Deploys(label) {
			line := fmt.Sprintf("- %s (%s)", d.Revision, d.OccurredAt.Format(timestampLayout))
			if headline != nil {
				text, err := headline(ctx, d.Revision)
				if err != nil {
					logger.Warn("Commit lookup failed", "revision", d.Revision, "error", err)
				} else if text != "" {
					line += " " + text
				}
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}

	return nil
}
