package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/musicpal/internal/formatter"
	"github.com/desertthunder/musicpal/internal/models"
	"github.com/desertthunder/musicpal/internal/repositories"
	"github.com/desertthunder/musicpal/internal/shared"
	"github.com/desertthunder/musicpal/internal/tasks"
	"github.com/desertthunder/musicpal/internal/ui"
	"github.com/urfave/cli/v3"
)

type summaryOpts struct {
	tasks.SummaryOpts
	outputDir string
	asJSON    bool
}

// Summarize writes the genre summary of a user's playlists to <output_dir>/<user>.txt and records it.
func (r *Runner) Summarize(ctx context.Context, cmd *cli.Command) error {
	userID := cmd.StringArg("user")
	if userID == "" {
		userID = os.Getenv("SPOTIFY_USERNAME")
	}
	if userID == "" {
		return fmt.Errorf("%w: user is required (argument or SPOTIFY_USERNAME)", shared.ErrMissingArgument)
	}

	opts := r.summaryOpts()
	if w := cmd.Int("workers"); w > 0 {
		opts.Workers = w
	}
	if cmd.Bool("fail-fast") {
		opts.FailFast = true
	}
	if dir := cmd.String("output-dir"); dir != "" {
		opts.outputDir = dir
	}
	opts.asJSON = cmd.Bool("json")

	return r.withReauth(ctx, func() error {
		return r.runTask(ctx, r.summarizeTask(userID, opts))
	})
}

func (r *Runner) summaryOpts() summaryOpts {
	return summaryOpts{
		SummaryOpts: tasks.SummaryOpts{
			Workers:  r.config.Summary.Workers,
			FailFast: r.config.Summary.FailFast,
		},
		outputDir: r.config.Summary.OutputDir,
	}
}

func (r *Runner) summarizeTask(userID string, opts summaryOpts) ui.Task {
	return func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (string, error) {
		catalog, err := r.ensureCatalog(ctx)
		if err != nil {
			return "", err
		}

		engine := tasks.NewSummaryEngine(catalog, opts.SummaryOpts, shared.WithLogger(r.logger, "task", "summarize"))
		result, err := engine.Summarize(ctx, userID, progress)
		if err != nil {
			return "", err
		}

		text := result.Text()
		path, err := formatter.WriteSummary(opts.outputDir, userID, text)
		if err != nil {
			return "", err
		}
		r.logger.Info("summary written", "path", path, "playlists", len(result.Reports), "failed", result.Failed)

		if err := r.recordSummary(result, text); err != nil {
			r.logger.Warn("failed to record summary", "error", err)
		}

		if opts.asJSON {
			data, err := formatter.SummaryToJSON(result)
			if err != nil {
				return "", err
			}
			return string(data) + "\n", nil
		}

		return fmt.Sprintf("%s✓ Summary written to %s\n", text, path), nil
	}
}

// recordSummary stores the summary when a database has been set up.
func (r *Runner) recordSummary(result *tasks.SummaryResult, text string) error {
	db, err := r.database()
	if err != nil || db == nil {
		return err
	}

	summary := models.NewSummary(result.UserID, text, len(result.Reports), result.Failed)
	return repositories.NewSummaryRepository(db).Create(summary)
}
