// package models defines the persisted data model for musicpal
package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/musicpal/internal/shared"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Persisted records are immutable, so there is no Update.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Summary is a rendered playlist genre summary.
type Summary struct {
	id            string
	userID        string
	playlistCount int
	failedCount   int
	body          string
	createdAt     time.Time
}

// NewSummary creates an unsaved [Summary].
func NewSummary(userID, body string, playlistCount, failedCount int) *Summary {
	return &Summary{
		userID:        userID,
		body:          body,
		playlistCount: playlistCount,
		failedCount:   failedCount,
		createdAt:     time.Now().UTC(),
	}
}

// RestoreSummary rebuilds a [Summary] read from storage.
func RestoreSummary(id, userID, body string, playlistCount, failedCount int, createdAt time.Time) *Summary {
	return &Summary{id, userID, playlistCount, failedCount, body, createdAt}
}

func (s *Summary) ID() string           { return s.id }
func (s *Summary) SetID(id string)      { s.id = id }
func (s *Summary) UserID() string       { return s.userID }
func (s *Summary) PlaylistCount() int   { return s.playlistCount }
func (s *Summary) FailedCount() int     { return s.failedCount }
func (s *Summary) Body() string         { return s.body }
func (s *Summary) CreatedAt() time.Time { return s.createdAt }

func (s *Summary) Validate() error {
	if s.userID == "" {
		return fmt.Errorf("%w: summary user id is required", shared.ErrInvalidArgument)
	}
	if s.body == "" {
		return fmt.Errorf("%w: summary body is required", shared.ErrInvalidArgument)
	}
	if s.failedCount > s.playlistCount {
		return fmt.Errorf("%w: %d failures out of %d playlists", shared.ErrInvalidArgument, s.failedCount, s.playlistCount)
	}
	return nil
}

// Interaction kinds, matching the interactions.kind check constraint.
const (
	KindRecentlyPlayed = "recently_played"
	KindSaved          = "saved"
	KindPlaylist       = "playlist"
)

// Interaction records that a user played, saved or listed a song.
type Interaction struct {
	id        string
	userID    string
	songID    string
	kind      string
	createdAt time.Time
}

// NewInteraction creates an unsaved [Interaction].
func NewInteraction(userID, songID, kind string) *Interaction {
	return &Interaction{userID: userID, songID: songID, kind: kind, createdAt: time.Now().UTC()}
}

// RestoreInteraction rebuilds an [Interaction] read from storage.
func RestoreInteraction(id, userID, songID, kind string, createdAt time.Time) *Interaction {
	return &Interaction{id, userID, songID, kind, createdAt}
}

func (i *Interaction) ID() string           { return i.id }
func (i *Interaction) SetID(id string)      { i.id = id }
func (i *Interaction) UserID() string       { return i.userID }
func (i *Interaction) SongID() string       { return i.songID }
func (i *Interaction) Kind() string         { return i.kind }
func (i *Interaction) CreatedAt() time.Time { return i.createdAt }

func (i *Interaction) Validate() error {
	if i.userID == "" || i.songID == "" {
		return fmt.Errorf("%w: interaction requires a user and a song", shared.ErrInvalidArgument)
	}
	switch i.kind {
	case KindRecentlyPlayed, KindSaved, KindPlaylist:
		return nil
	default:
		return fmt.Errorf("%w: unknown interaction kind %q", shared.ErrInvalidArgument, i.kind)
	}
}
