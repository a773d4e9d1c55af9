package services

import (
	"context"

	"golang.org/x/oauth2"
)

// Catalog is the read surface the playlist summarizer depends on.
type Catalog interface {
	// UserPlaylists returns every playlist of the user, following pagination to the end.
	UserPlaylists(ctx context.Context, userID string) ([]Playlist, error)

	// PlaylistTracks returns every track in the playlist, following pagination to the end.
	PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error)

	// ArtistGenres returns the raw genre tags of an artist. The slice may be empty.
	ArtistGenres(ctx context.Context, artistID string) ([]string, error)
}

// OAuthService is implemented by services that support the authorization code flow.
type OAuthService interface {
	GetAuthURL(state string) string
	GetOAuthConfig() *oauth2.Config
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}

// Playlist is a playlist stub as listed for a user.
type Playlist struct {
	ID          string
	Name        string
	Description string
	Owner       string
	TrackCount  int
	Public      bool
}

// Track is a fetched track. ArtistIDs keeps the order the API returned.
type Track struct {
	ID        string
	Name      string
	ArtistIDs []string
	Artists   []string
}

// Artist returns the first artist name, or "" when the track has none.
func (t Track) Artist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// User identifies a Spotify account.
type User struct {
	ID          string
	DisplayName string
}
