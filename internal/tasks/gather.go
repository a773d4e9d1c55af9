package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicpal/internal/services"
	"github.com/desertthunder/musicpal/internal/shared"
	"golang.org/x/sync/errgroup"
)

// InteractionKind is how a user interacted with a song.
type InteractionKind string

const (
	RecentlyPlayed InteractionKind = "recently_played"
	Saved          InteractionKind = "saved"
	InPlaylist     InteractionKind = "playlist"
)

// Interaction is one user/song pair.
type Interaction struct {
	UserID string
	SongID string
	Kind   InteractionKind
}

// GatherOpts configures [GatherEngine.Gather].
type GatherOpts struct {
	Workers      int // Concurrent playlist fetches (default: 5)
	RecentLimit  int // Recently played tracks to read (default: 50)
	SkipPlaylist bool
}

// GatherEngine collects interaction data from the user's history, library and playlists.
type GatherEngine struct {
	player  services.Player
	catalog services.Catalog
	opts    GatherOpts
	logger  *log.Logger
}

func NewGatherEngine(player services.Player, catalog services.Catalog, opts GatherOpts, logger *log.Logger) *GatherEngine {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &GatherEngine{player: player, catalog: catalog, opts: opts, logger: logger}
}

// Gather returns recently played tracks, then saved tracks, then each playlist's tracks in listing order.
//
// userID labels the rows and selects whose playlists are read; an empty userID resolves to the current user.
// Any failed request aborts the gather.
func (e *GatherEngine) Gather(ctx context.Context, userID string, progress chan<- ProgressUpdate) ([]Interaction, error) {
	if e.player == nil || e.catalog == nil {
		return nil, fmt.Errorf("%w: gather requires a player and a catalog", shared.ErrServiceUnavailable)
	}

	if userID == "" {
		user, err := e.player.CurrentUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve current user: %w", err)
		}
		userID = user.ID
	}

	recent, err := e.player.RecentlyPlayed(ctx, e.opts.RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recently played: %w", err)
	}
	sendProgress(ctx, progress, gatherUpdate(FetchHistory, 1, 1, len(recent)))

	saved, err := e.player.SavedTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch saved tracks: %w", err)
	}
	sendProgress(ctx, progress, gatherUpdate(FetchLiked, 1, 1, len(saved)))

	rows := make([]Interaction, 0, len(recent)+len(saved))
	rows = appendInteractions(rows, userID, RecentlyPlayed, recent)
	rows = appendInteractions(rows, userID, Saved, saved)

	if e.opts.SkipPlaylist {
		return rows, nil
	}

	playlists, err := e.catalog.UserPlaylists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	perPlaylist, err := e.playlistTracks(ctx, playlists, progress)
	if err != nil {
		return nil, err
	}
	for _, tracks := range perPlaylist {
		rows = appendInteractions(rows, userID, InPlaylist, tracks)
	}

	e.logger.Info("gathered interactions", "user", userID, "rows", len(rows), "playlists", len(playlists))
	return rows, nil
}

// playlistTracks fetches every playlist with at most Workers requests in flight, keeping listing order.
func (e *GatherEngine) playlistTracks(ctx context.Context, playlists []services.Playlist, progress chan<- ProgressUpdate) ([][]services.Track, error) {
	out := make([][]services.Track, len(playlists))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	// Workers never block on the progress reader: counts land in a buffer sized for
	// every playlist, and one collector numbers and forwards them.
	counts := make(chan int, len(playlists))
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		done := 0
		for n := range counts {
			done++
			sendProgress(ctx, progress, gatherUpdate(FetchPlaylistTracks, done, len(playlists), n))
		}
	}()

	for i, pl := range playlists {
		g.Go(func() error {
			tracks, err := e.catalog.PlaylistTracks(gctx, pl.ID)
			if err != nil {
				return fmt.Errorf("failed to fetch tracks for %q: %w", pl.Name, err)
			}
			out[i] = tracks
			counts <- len(tracks)
			return nil
		})
	}

	err := g.Wait()
	close(counts)
	<-collected
	if err != nil {
		return nil, err
	}
	return out, nil
}

func appendInteractions(rows []Interaction, userID string, kind InteractionKind, tracks []services.Track) []Interaction {
	for _, t := range tracks {
		if t.ID == "" {
			continue
		}
		rows = append(rows, Interaction{UserID: userID, SongID: t.ID, Kind: kind})
	}
	return rows
}
