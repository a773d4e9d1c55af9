package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/desertthunder/musicpal/internal/models"
	"github.com/desertthunder/musicpal/internal/repositories"
	"github.com/desertthunder/musicpal/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistorySummaries lists stored summaries, or prints the latest one for a user.
func (r *Runner) HistorySummaries(ctx context.Context, cmd *cli.Command) error {
	db, err := r.requireDatabase()
	if err != nil {
		return err
	}
	repo := repositories.NewSummaryRepository(db)
	userID := cmd.String("user")

	if cmd.Bool("latest") {
		if userID == "" {
			return fmt.Errorf("%w: --latest requires --user", shared.ErrMissingArgument)
		}
		s, err := repo.Latest(userID)
		if err != nil {
			return err
		}
		return r.writePlain("%s", s.Body())
	}

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if userID != "" {
		criteria["user_id"] = userID
	}

	summaries, err := repo.List(criteria)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		return r.writePlain("No summaries stored\n")
	}

	return r.writeSummaryTable(summaries)
}

func (r *Runner) writeSummaryTable(summaries []*models.Summary) error {
	w := tabwriter.NewWriter(r.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSER\tPLAYLISTS\tFAILED\tCREATED")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", s.ID(), s.UserID(), s.PlaylistCount(), s.FailedCount(), s.CreatedAt().Format(time.DateTime))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// HistoryInteractions prints stored interaction counts by kind for a user.
func (r *Runner) HistoryInteractions(ctx context.Context, cmd *cli.Command) error {
	db, err := r.requireDatabase()
	if err != nil {
		return err
	}

	userID := cmd.String("user")
	counts, err := repositories.NewInteractionRepository(db).CountByKind(userID)
	if err != nil {
		return err
	}

	r.writePlain("Interactions for %s:\n", userID)
	for _, kind := range []string{models.KindRecentlyPlayed, models.KindSaved, models.KindPlaylist} {
		r.writePlain("  %-16s %d\n", kind, counts[kind])
	}
	return nil
}
