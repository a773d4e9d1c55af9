package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/musicpal/internal/formatter"
	"github.com/desertthunder/musicpal/internal/models"
	"github.com/desertthunder/musicpal/internal/repositories"
	"github.com/desertthunder/musicpal/internal/shared"
	"github.com/desertthunder/musicpal/internal/tasks"
	"github.com/desertthunder/musicpal/internal/ui"
	"github.com/urfave/cli/v3"
)

const defaultInteractionsPath = "data/user_song_interaction_data.csv"

type gatherOpts struct {
	tasks.GatherOpts
	userID string
	output string
	saveDB bool
}

// Gather collects the user's recently played, saved and playlist tracks into a CSV of interactions.
func (r *Runner) Gather(ctx context.Context, cmd *cli.Command) error {
	opts := gatherOpts{
		GatherOpts: tasks.GatherOpts{
			Workers:      cmd.Int("workers"),
			SkipPlaylist: cmd.Bool("skip-playlists"),
		},
		userID: cmd.String("user"),
		output: cmd.String("output"),
		saveDB: cmd.Bool("save-db"),
	}
	if opts.output == "" {
		opts.output = defaultInteractionsPath
	}

	return r.withReauth(ctx, func() error {
		return r.runTask(ctx, r.gatherTask(opts))
	})
}

func (r *Runner) gatherTask(opts gatherOpts) ui.Task {
	return func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (string, error) {
		player, err := r.ensurePlayer(ctx)
		if err != nil {
			return "", err
		}
		catalog, err := r.ensureCatalog(ctx)
		if err != nil {
			return "", err
		}

		engine := tasks.NewGatherEngine(player, catalog, opts.GatherOpts, shared.WithLogger(r.logger, "task", "gather"))
		rows, err := engine.Gather(ctx, opts.userID, progress)
		if err != nil {
			return "", err
		}

		if err := formatter.WriteInteractionsCSV(rows, opts.output); err != nil {
			return "", err
		}

		var b strings.Builder
		fmt.Fprintf(&b, "✓ Gathered %d interactions (%s)\n", len(rows), kindCounts(rows))
		fmt.Fprintf(&b, "✓ Written to %s\n", opts.output)

		if opts.saveDB {
			n, err := r.storeInteractions(rows)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "✓ Stored %d interactions in the database\n", n)
		}
		return b.String(), nil
	}
}

func (r *Runner) storeInteractions(rows []tasks.Interaction) (int, error) {
	db, err := r.requireDatabase()
	if err != nil {
		return 0, err
	}

	items := make([]*models.Interaction, len(rows))
	for i, row := range rows {
		items[i] = models.NewInteraction(row.UserID, row.SongID, string(row.Kind))
	}
	if err := repositories.NewInteractionRepository(db).CreateMany(items); err != nil {
		return 0, err
	}
	return len(items), nil
}

func kindCounts(rows []tasks.Interaction) string {
	counts := map[tasks.InteractionKind]int{}
	for _, row := range rows {
		counts[row.Kind]++
	}

	parts := make([]string, 0, 3)
	for _, kind := range []tasks.InteractionKind{tasks.RecentlyPlayed, tasks.Saved, tasks.InPlaylist} {
		parts = append(parts, fmt.Sprintf("%s: %d", kind, counts[kind]))
	}
	return strings.Join(parts, ", ")
}
