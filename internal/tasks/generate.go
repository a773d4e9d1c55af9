package tasks

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicpal/internal/services"
	"github.com/desertthunder/musicpal/internal/shared"
)

// Mood maps a free-text mood to recommendation seeds.
type Mood struct {
	Name    string
	Genres  []string
	Targets services.Targets
}

var moods = map[string]Mood{
	"happy":     {"happy", []string{"pop", "happy", "dance"}, services.Targets{Valence: 0.9, Energy: 0.7}},
	"sad":       {"sad", []string{"sad", "acoustic", "piano"}, services.Targets{Valence: 0.15, Energy: 0.3}},
	"energetic": {"energetic", []string{"work-out", "edm", "rock"}, services.Targets{Valence: 0.6, Energy: 0.95}},
	"chill":     {"chill", []string{"chill", "ambient", "lo-fi"}, services.Targets{Valence: 0.5, Energy: 0.25}},
	"focus":     {"focus", []string{"study", "classical", "ambient"}, services.Targets{Valence: 0.4, Energy: 0.2}},
	"party":     {"party", []string{"party", "dance", "hip-hop"}, services.Targets{Valence: 0.8, Energy: 0.9, Danceability: 0.9}},
	"romantic":  {"romantic", []string{"romance", "r-n-b", "soul"}, services.Targets{Valence: 0.65, Energy: 0.4}},
	"angry":     {"angry", []string{"metal", "punk", "hard-rock"}, services.Targets{Valence: 0.2, Energy: 0.95}},
}

// Moods lists the supported mood names in alphabetical order.
func Moods() []string {
	names := make([]string, 0, len(moods))
	for name := range moods {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LookupMood resolves a mood case-insensitively.
func LookupMood(name string) (Mood, error) {
	m, ok := moods[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Mood{}, fmt.Errorf("%w: %q (choose one of %s)", shared.ErrUnknownMood, name, strings.Join(Moods(), ", "))
	}
	return m, nil
}

// GenerateOpts configures [PlaylistGenerator.Generate].
type GenerateOpts struct {
	Limit  int    // Tracks to request (default: 20)
	Save   bool   // Create a private playlist with the tracks
	Name   string // Playlist name when saving (default: "<Mood> Mix")
	UserID string // Owner when saving (default: the current user)
}

// GeneratedPlaylist is the outcome of a mood playlist generation.
type GeneratedPlaylist struct {
	Mood     Mood
	Tracks   []services.Track
	Playlist *services.Playlist // nil unless saved
}

// PlaylistGenerator builds playlists from a mood.
type PlaylistGenerator struct {
	player services.Player
	logger *log.Logger
}

func NewPlaylistGenerator(player services.Player, logger *log.Logger) *PlaylistGenerator {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &PlaylistGenerator{player: player, logger: logger}
}

// Generate fetches recommendations for mood and optionally saves them as a playlist.
func (g *PlaylistGenerator) Generate(ctx context.Context, mood string, opts GenerateOpts, progress chan<- ProgressUpdate) (*GeneratedPlaylist, error) {
	if g.player == nil {
		return nil, fmt.Errorf("%w: player not initialized", shared.ErrServiceUnavailable)
	}

	m, err := LookupMood(mood)
	if err != nil {
		return nil, err
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	sendProgress(ctx, progress, recommendationsUpdate(0, m.Name))
	tracks, err := g.player.Recommendations(ctx, services.Seeds{Genres: m.Genres}, m.Targets, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recommendations for %s: %w", m.Name, err)
	}
	sendProgress(ctx, progress, recommendationsUpdate(1, m.Name))

	result := &GeneratedPlaylist{Mood: m, Tracks: tracks}
	if !opts.Save {
		return result, nil
	}

	userID := opts.UserID
	if userID == "" {
		user, err := g.player.CurrentUser(ctx)
		if err != nil {
			return result, fmt.Errorf("failed to resolve current user: %w", err)
		}
		userID = user.ID
	}

	name := opts.Name
	if name == "" {
		name = strings.ToUpper(m.Name[:1]) + m.Name[1:] + " Mix"
	}

	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}

	pl, err := g.player.CreatePlaylist(ctx, userID, name, fmt.Sprintf("A %s playlist by musicpal", m.Name), ids)
	if err != nil {
		return result, fmt.Errorf("failed to create playlist: %w", err)
	}
	sendProgress(ctx, progress, createPlaylistUpdate(pl.Name, len(ids)))

	g.logger.Info("generated playlist", "mood", m.Name, "playlist", pl.ID, "tracks", len(ids))
	result.Playlist = pl
	return result, nil
}
