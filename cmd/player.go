package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/musicpal/internal/services"
	"github.com/desertthunder/musicpal/internal/shared"
	"github.com/desertthunder/musicpal/internal/tasks"
	"github.com/desertthunder/musicpal/internal/ui"
	"github.com/urfave/cli/v3"
)

type trackJSON struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []string `json:"artists"`
}

type recommendationJSON struct {
	Seed   *trackJSON  `json:"seed,omitempty"`
	Tracks []trackJSON `json:"tracks"`
}

func toTrackJSON(t services.Track) trackJSON {
	return trackJSON{ID: t.ID, Name: t.Name, Artists: t.Artists}
}

// Recommend prints songs recommended from --song, or from the currently playing track.
func (r *Runner) Recommend(ctx context.Context, cmd *cli.Command) error {
	song := cmd.String("song")
	limit := cmd.Int("limit")

	if cmd.Bool("json") {
		return r.withReauth(ctx, func() error {
			current, tracks, err := r.recommend(ctx, song, limit, nil)
			if err != nil {
				return err
			}
			out := recommendationJSON{Tracks: make([]trackJSON, len(tracks))}
			if current != nil {
				seed := toTrackJSON(*current)
				out.Seed = &seed
			}
			for i, t := range tracks {
				out.Tracks[i] = toTrackJSON(t)
			}
			return r.writeJSON(out, true)
		})
	}

	return r.withReauth(ctx, func() error {
		return r.runTask(ctx, r.recommendTask(song, limit))
	})
}

// recommend returns the seed track (nil when a song was given) and its recommendations.
func (r *Runner) recommend(ctx context.Context, song string, limit int, progress chan<- tasks.ProgressUpdate) (*services.Track, []services.Track, error) {
	player, err := r.ensurePlayer(ctx)
	if err != nil {
		return nil, nil, err
	}

	rec := tasks.NewRecommender(player, limit, shared.WithLogger(r.logger, "task", "recommend"))
	if song != "" {
		tracks, err := rec.RecommendForSong(ctx, song, progress)
		return nil, tracks, err
	}
	return rec.RecommendFromCurrent(ctx, progress)
}

func (r *Runner) recommendTask(song string, limit int) ui.Task {
	return func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (string, error) {
		current, tracks, err := r.recommend(ctx, song, limit, progress)
		if err != nil {
			return "", err
		}

		var b strings.Builder
		if current != nil {
			fmt.Fprintf(&b, "%s\n\n", tasks.DescribeTrack(*current))
		}
		b.WriteString("Recommended songs:\n")
		writeTrackList(&b, tracks)
		return b.String(), nil
	}
}

// QueueAdd adds a song to the playback queue of the active device.
func (r *Runner) QueueAdd(ctx context.Context, cmd *cli.Command) error {
	song := cmd.StringArg("song")
	if song == "" {
		return fmt.Errorf("%w: song is required", shared.ErrMissingArgument)
	}

	return r.withReauth(ctx, func() error {
		return r.runTask(ctx, r.queueTask(song))
	})
}

func (r *Runner) queueTask(song string) ui.Task {
	return func(ctx context.Context, _ chan<- tasks.ProgressUpdate) (string, error) {
		player, err := r.ensurePlayer(ctx)
		if err != nil {
			return "", err
		}

		if err := tasks.NewQueueManager(player, shared.WithLogger(r.logger, "task", "queue")).Add(ctx, song); err != nil {
			return "", err
		}
		return fmt.Sprintf("✓ Added %s to the queue\n", tasks.TrackID(song)), nil
	}
}

// PlaylistGenerate builds a playlist for a mood and optionally saves it to the account.
func (r *Runner) PlaylistGenerate(ctx context.Context, cmd *cli.Command) error {
	mood := cmd.StringArg("mood")
	if mood == "" {
		return fmt.Errorf("%w: mood is required (one of %s)", shared.ErrMissingArgument, strings.Join(tasks.Moods(), ", "))
	}

	opts := tasks.GenerateOpts{
		Limit: cmd.Int("limit"),
		Save:  cmd.Bool("save"),
		Name:  cmd.String("name"),
	}

	return r.withReauth(ctx, func() error {
		return r.runTask(ctx, r.generateTask(mood, opts))
	})
}

func (r *Runner) generateTask(mood string, opts tasks.GenerateOpts) ui.Task {
	return func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (string, error) {
		player, err := r.ensurePlayer(ctx)
		if err != nil {
			return "", err
		}

		gen := tasks.NewPlaylistGenerator(player, shared.WithLogger(r.logger, "task", "generate"))
		result, err := gen.Generate(ctx, mood, opts, progress)
		if err != nil {
			return "", err
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Playlist for mood %q (%d tracks):\n", result.Mood.Name, len(result.Tracks))
		writeTrackList(&b, result.Tracks)
		if result.Playlist != nil {
			fmt.Fprintf(&b, "\n✓ Saved as %s (%s)\n", result.Playlist.Name, result.Playlist.ID)
		}
		return b.String(), nil
	}
}

// PlaylistMoods lists the supported moods.
func (r *Runner) PlaylistMoods(ctx context.Context, cmd *cli.Command) error {
	for _, name := range tasks.Moods() {
		m, _ := tasks.LookupMood(name)
		r.writePlain("%-10s %s\n", m.Name, strings.Join(m.Genres, ", "))
	}
	return nil
}

func writeTrackList(b *strings.Builder, tracks []services.Track) {
	for i, t := range tracks {
		if artist := t.Artist(); artist != "" {
			fmt.Fprintf(b, "%d. %s - %s\n", i+1, t.Name, artist)
		} else {
			fmt.Fprintf(b, "%d. %s\n", i+1, t.Name)
		}
	}
}
