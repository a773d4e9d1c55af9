package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicpal/internal/shared"
	"github.com/zmb3/spotify/v2"
)

const (
	maxSeeds      = 5
	maxAddBatch   = 100
	maxRecentSize = 50
)

// Player is the user-scoped surface used by the recommender, queue and playlist generator.
type Player interface {
	CurrentUser(ctx context.Context) (*User, error)
	CurrentlyPlaying(ctx context.Context) (*Track, error)
	Recommendations(ctx context.Context, seeds Seeds, targets Targets, limit int) ([]Track, error)
	Queue(ctx context.Context, trackID string) error
	RecentlyPlayed(ctx context.Context, limit int) ([]Track, error)
	SavedTracks(ctx context.Context) ([]Track, error)
	CreatePlaylist(ctx context.Context, userID, name, description string, trackIDs []string) (*Playlist, error)
}

// Seeds are the inputs of a recommendation request. At most five seeds are sent, tracks first.
type Seeds struct {
	TrackIDs  []string
	ArtistIDs []string
	Genres    []string
}

func (s Seeds) empty() bool {
	return len(s.TrackIDs)+len(s.ArtistIDs)+len(s.Genres) == 0
}

// Targets are tunable track attributes in [0, 1]. Zero values are not sent.
type Targets struct {
	Valence      float64
	Energy       float64
	Danceability float64
}

// PlayerService implements [Player] with github.com/zmb3/spotify/v2.
type PlayerService struct {
	client *spotify.Client
	logger *log.Logger
}

// NewPlayerService wraps an authenticated HTTP client. baseURL may be empty for the public API.
func NewPlayerService(httpClient *http.Client, baseURL string, logger *log.Logger) *PlayerService {
	opts := []spotify.ClientOption{spotify.WithRetry(true)}
	if baseURL != "" {
		opts = append(opts, spotify.WithBaseURL(baseURL+"/"))
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &PlayerService{client: spotify.New(httpClient, opts...), logger: logger}
}

// Player builds a [PlayerService] that shares this service's credential.
func (s *SpotifyService) Player() (*PlayerService, error) {
	if s.token == nil {
		return nil, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}
	return NewPlayerService(s.httpClient, s.baseURL, s.logger), nil
}

// CurrentUser returns the authenticated user.
func (p *PlayerService) CurrentUser(ctx context.Context) (*User, error) {
	u, err := p.client.CurrentUser(ctx)
	if err != nil {
		return nil, wrapPlayerError("current user", err)
	}
	return &User{ID: u.ID, DisplayName: u.DisplayName}, nil
}

// CurrentlyPlaying returns the track on the user's active device, or [shared.ErrNothingPlaying].
func (p *PlayerService) CurrentlyPlaying(ctx context.Context) (*Track, error) {
	cp, err := p.client.PlayerCurrentlyPlaying(ctx)
	if err != nil {
		return nil, wrapPlayerError("currently playing", err)
	}
	if cp == nil || cp.Item == nil || cp.Item.ID == "" {
		return nil, shared.ErrNothingPlaying
	}
	t := fromSimpleTrack(cp.Item.SimpleTrack)
	return &t, nil
}

// Recommendations returns up to limit tracks for seeds tuned toward targets.
func (p *PlayerService) Recommendations(ctx context.Context, seeds Seeds, targets Targets, limit int) ([]Track, error) {
	if seeds.empty() {
		return nil, fmt.Errorf("%w: at least one seed is required", shared.ErrMissingArgument)
	}

	attrs := spotify.NewTrackAttributes()
	if targets.Valence > 0 {
		attrs = attrs.TargetValence(targets.Valence)
	}
	if targets.Energy > 0 {
		attrs = attrs.TargetEnergy(targets.Energy)
	}
	if targets.Danceability > 0 {
		attrs = attrs.TargetDanceability(targets.Danceability)
	}

	recs, err := p.client.GetRecommendations(ctx, toSeeds(seeds), attrs, spotify.Limit(limit))
	if err != nil {
		return nil, wrapPlayerError("recommendations", err)
	}
	if len(recs.Tracks) == 0 {
		return nil, shared.ErrNoRecommendations
	}

	tracks := make([]Track, 0, len(recs.Tracks))
	for _, st := range recs.Tracks {
		tracks = append(tracks, fromSimpleTrack(st))
	}
	return tracks, nil
}

// Queue appends a track to the user's playback queue.
func (p *PlayerService) Queue(ctx context.Context, trackID string) error {
	if trackID == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}
	if err := p.client.QueueSong(ctx, spotify.ID(trackID)); err != nil {
		return wrapPlayerError("queue", err)
	}
	p.logger.Debug("queued track", "id", trackID)
	return nil
}

// RecentlyPlayed returns up to limit recently played tracks, newest first. The API caps limit at 50.
func (p *PlayerService) RecentlyPlayed(ctx context.Context, limit int) ([]Track, error) {
	if limit <= 0 || limit > maxRecentSize {
		limit = maxRecentSize
	}

	items, err := p.client.PlayerRecentlyPlayedOpt(ctx, &spotify.RecentlyPlayedOptions{Limit: spotify.Numeric(limit)})
	if err != nil {
		return nil, wrapPlayerError("recently played", err)
	}

	tracks := make([]Track, 0, len(items))
	for _, item := range items {
		tracks = append(tracks, fromSimpleTrack(item.Track))
	}
	return tracks, nil
}

// SavedTracks returns the whole library of saved tracks, walking every page.
func (p *PlayerService) SavedTracks(ctx context.Context) ([]Track, error) {
	page, err := p.client.CurrentUsersTracks(ctx, spotify.Limit(pageLimit))
	if err != nil {
		return nil, wrapPlayerError("saved tracks", err)
	}

	var tracks []Track
	for {
		for _, st := range page.Tracks {
			tracks = append(tracks, fromSimpleTrack(st.SimpleTrack))
		}

		err = p.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, wrapPlayerError("saved tracks", err)
		}
	}
	return tracks, nil
}

// CreatePlaylist creates a private playlist for userID and fills it with trackIDs in batches of 100.
func (p *PlayerService) CreatePlaylist(ctx context.Context, userID, name, description string, trackIDs []string) (*Playlist, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	pl, err := p.client.CreatePlaylistForUser(ctx, userID, name, description, false, false)
	if err != nil {
		return nil, wrapPlayerError("create playlist", err)
	}

	ids := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = spotify.ID(id)
	}

	for start := 0; start < len(ids); start += maxAddBatch {
		end := min(start+maxAddBatch, len(ids))
		if _, err := p.client.AddTracksToPlaylist(ctx, pl.ID, ids[start:end]...); err != nil {
			return nil, wrapPlayerError("add tracks", err)
		}
	}

	p.logger.Info("created playlist", "id", pl.ID, "name", name, "tracks", len(ids))
	return &Playlist{ID: pl.ID.String(), Name: pl.Name, Description: description, Owner: userID, TrackCount: len(ids)}, nil
}

func toSeeds(s Seeds) spotify.Seeds {
	var out spotify.Seeds
	n := 0
	for _, id := range s.TrackIDs {
		if n == maxSeeds {
			return out
		}
		out.Tracks = append(out.Tracks, spotify.ID(id))
		n++
	}
	for _, id := range s.ArtistIDs {
		if n == maxSeeds {
			return out
		}
		out.Artists = append(out.Artists, spotify.ID(id))
		n++
	}
	for _, g := range s.Genres {
		if n == maxSeeds {
			return out
		}
		out.Genres = append(out.Genres, g)
		n++
	}
	return out
}

func fromSimpleTrack(st spotify.SimpleTrack) Track {
	t := Track{ID: st.ID.String(), Name: st.Name}
	for _, a := range st.Artists {
		if a.ID == "" {
			continue
		}
		t.ArtistIDs = append(t.ArtistIDs, a.ID.String())
		t.Artists = append(t.Artists, a.Name)
	}
	return t
}

// wrapPlayerError maps zmb3 errors onto the shared sentinels.
func wrapPlayerError(op string, err error) error {
	var se spotify.Error
	if errors.As(err, &se) {
		if se.Status == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s: %v", shared.ErrTokenExpired, op, err)
		}
		return fmt.Errorf("%w: %s: status %d: %s", shared.ErrAPIRequest, op, se.Status, se.Message)
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, op, err)
}
