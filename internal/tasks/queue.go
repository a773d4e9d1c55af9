package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicpal/internal/services"
	"github.com/desertthunder/musicpal/internal/shared"
)

// QueueManager adds tracks to the user's playback queue.
type QueueManager struct {
	player services.Player
	logger *log.Logger
}

func NewQueueManager(player services.Player, logger *log.Logger) *QueueManager {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &QueueManager{player: player, logger: logger}
}

// Add queues songID. A "spotify:track:" URI or an open.spotify.com link is reduced to its id.
func (q *QueueManager) Add(ctx context.Context, songID string) error {
	if q.player == nil {
		return fmt.Errorf("%w: player not initialized", shared.ErrServiceUnavailable)
	}

	id := TrackID(songID)
	if id == "" {
		return fmt.Errorf("%w: song id", shared.ErrMissingArgument)
	}

	if err := q.player.Queue(ctx, id); err != nil {
		return fmt.Errorf("failed to queue %s: %w", id, err)
	}
	q.logger.Info("added to queue", "id", id)
	return nil
}

// TrackID extracts a bare track id from an id, a track URI or a share link.
func TrackID(s string) string {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "spotify:track:"); ok {
		return rest
	}
	if _, rest, ok := strings.Cut(s, "open.spotify.com/track/"); ok {
		id, _, _ := strings.Cut(rest, "?")
		return strings.TrimSuffix(id, "/")
	}
	return s
}
