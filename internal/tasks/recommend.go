package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicpal/internal/services"
	"github.com/desertthunder/musicpal/internal/shared"
)

const defaultRecommendations = 10

// Recommender suggests tracks seeded by a single song.
type Recommender struct {
	player services.Player
	limit  int
	logger *log.Logger
}

// NewRecommender creates a [Recommender]. limit defaults to 10.
func NewRecommender(player services.Player, limit int, logger *log.Logger) *Recommender {
	if limit <= 0 {
		limit = defaultRecommendations
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Recommender{player: player, limit: limit, logger: logger}
}

// RecommendForSong returns recommended tracks seeded by songID.
func (r *Recommender) RecommendForSong(ctx context.Context, songID string, progress chan<- ProgressUpdate) ([]services.Track, error) {
	if r.player == nil {
		return nil, fmt.Errorf("%w: player not initialized", shared.ErrServiceUnavailable)
	}

	songID = TrackID(songID)
	if songID == "" {
		return nil, fmt.Errorf("%w: song id", shared.ErrMissingArgument)
	}

	sendProgress(ctx, progress, recommendationsUpdate(0, songID))
	tracks, err := r.player.Recommendations(ctx, services.Seeds{TrackIDs: []string{songID}}, services.Targets{}, r.limit)
	if err != nil {
		return nil, err
	}
	sendProgress(ctx, progress, recommendationsUpdate(1, songID))

	r.logger.Debug("recommendations", "seed", songID, "count", len(tracks))
	return tracks, nil
}

// RecommendFromCurrent seeds recommendations with the currently playing track.
// Returns [shared.ErrNothingPlaying] when the user has no active playback.
func (r *Recommender) RecommendFromCurrent(ctx context.Context, progress chan<- ProgressUpdate) (*services.Track, []services.Track, error) {
	if r.player == nil {
		return nil, nil, fmt.Errorf("%w: player not initialized", shared.ErrServiceUnavailable)
	}

	current, err := r.player.CurrentlyPlaying(ctx)
	if err != nil {
		return nil, nil, err
	}

	tracks, err := r.RecommendForSong(ctx, current.ID, progress)
	if err != nil {
		return current, nil, err
	}
	return current, tracks, nil
}

// DescribeCurrent formats the currently playing track as "Currently Playing: <name> by <artists>".
func (r *Recommender) DescribeCurrent(ctx context.Context) (string, error) {
	if r.player == nil {
		return "", fmt.Errorf("%w: player not initialized", shared.ErrServiceUnavailable)
	}

	current, err := r.player.CurrentlyPlaying(ctx)
	if err != nil {
		return "", err
	}
	return DescribeTrack(*current), nil
}

// DescribeTrack formats a track as "Currently Playing: <name> by <artists>".
func DescribeTrack(t services.Track) string {
	if len(t.Artists) == 0 {
		return "Currently Playing: " + t.Name
	}
	return fmt.Sprintf("Currently Playing: %s by %s", t.Name, strings.Join(t.Artists, ", "))
}

// TrackNames returns the name of every track, in order.
func TrackNames(tracks []services.Track) []string {
	names := make([]string, len(tracks))
	for i, t := range tracks {
		names[i] = t.Name
	}
	return names
}
