// Spotify Web API implementation of [Catalog]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicpal/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	defaultRedirectURI = "http://127.0.0.1:3000/callback"
	defaultTimeout     = 30 * time.Second
	pageLimit          = 50
)

// Scopes requested by the authorization code flow.
var Scopes = []string{
	"user-read-private",
	"user-read-email",
	"playlist-read-private",
	"playlist-read-collaborative",
	"playlist-modify-private",
	"user-library-read",
	"user-read-recently-played",
	"user-read-currently-playing",
	"user-read-playback-state",
	"user-modify-playback-state",
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Country     string `json:"country"`
	Product     string `json:"product"` // premium, free, etc.
}

// SpotifyArtist represents a Spotify artist. Genres is only populated by the artist endpoint.
type SpotifyArtist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
	IsLocal bool            `json:"is_local"`
	Type    string          `json:"type"` // track or episode
}

// Owner is the owner of a playlist.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type simplePlaylistTracks struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Owner       Owner                `json:"owner"`
	Public      bool                 `json:"public"`
	Tracks      simplePlaylistTracks `json:"tracks"`
}

// SpotifyPlaylistTrack represents a track within a playlist context. Track is null for removed items.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// page is one page of a paginated response. Next is null on the last page.
type page[T any] struct {
	Items    []T     `json:"items"`
	Total    int     `json:"total"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// Option configures a [SpotifyService].
type Option func(*SpotifyService)

// WithBaseURL points the service at another API root, without a trailing slash.
func WithBaseURL(u string) Option {
	return func(s *SpotifyService) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithTokenURL overrides the token endpoint used by the client credentials and code exchange flows.
func WithTokenURL(u string) Option {
	return func(s *SpotifyService) { s.config.Endpoint.TokenURL = u }
}

// WithHTTPClient sets the base client that carries authenticated requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *SpotifyService) { s.baseClient = c }
}

// WithTimeout bounds each request. Zero or less disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *SpotifyService) { s.timeout = d }
}

// WithRateLimit paces requests to rps per second. Zero or less means unlimited.
func WithRateLimit(rps float64) Option {
	return func(s *SpotifyService) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		burst := max(int(rps), 1)
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(s *SpotifyService) {
		if l != nil {
			s.logger = l
		}
	}
}

// SpotifyService implements [Catalog] and [OAuthService] for the Spotify Web API.
// Uses [oauth2] for authentication and plain bearer requests for catalog reads.
type SpotifyService struct {
	config      *oauth2.Config
	token       *oauth2.Token
	baseClient  *http.Client
	httpClient  *http.Client
	baseURL     string
	timeout     time.Duration
	limiter     *rate.Limiter
	logger      *log.Logger
	credentials map[string]string
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string, opts ...Option) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = defaultRedirectURI
	}

	s := &SpotifyService{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyAuthURL,
				TokenURL: spotifyTokenURL,
			},
		},
		baseClient:  http.DefaultClient,
		baseURL:     spotifyBaseURL,
		timeout:     defaultTimeout,
		logger:      shared.DiscardLogger(),
		credentials: credentials,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.httpClient = s.baseClient
	return s, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// oauthContext makes the oauth2 package use the configured base client.
func (s *SpotifyService) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.baseClient)
}

// Authenticate performs OAuth2 authentication with Spotify. Expects either an "access_token" or "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		token := &oauth2.Token{AccessToken: accessToken, RefreshToken: credentials["refresh_token"]}
		return s.OAuthenticate(ctx, token)
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(s.oauthContext(ctx), authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// OAuthenticate installs a token obtained elsewhere, such as the OAuth callback server or the config file.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidCredentials)
	}
	s.token = token
	// Background so the refreshing transport outlives the caller's context.
	s.httpClient = s.config.Client(s.oauthContext(context.WithoutCancel(ctx)), token)
	return nil
}

// AuthenticateClient obtains an app-only token with the client credentials flow.
// The token reads public playlists and artists; user-scoped player endpoints reject it.
func (s *SpotifyService) AuthenticateClient(ctx context.Context) error {
	cc := &clientcredentials.Config{
		ClientID:     s.config.ClientID,
		ClientSecret: s.config.ClientSecret,
		TokenURL:     s.config.Endpoint.TokenURL,
	}

	octx := s.oauthContext(context.WithoutCancel(ctx))
	token, err := cc.Token(s.oauthContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: client credentials: %v", shared.ErrAuthFailed, err)
	}

	s.token = token
	s.httpClient = oauth2.NewClient(octx, cc.TokenSource(octx))
	return nil
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the OAuth2 configuration.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// Token returns the current token, or nil before authentication.
func (s *SpotifyService) Token() *oauth2.Token {
	return s.token
}

// HTTPClient returns the authenticated client. It carries the token on every request.
func (s *SpotifyService) HTTPClient() *http.Client {
	return s.httpClient
}

// BaseURL returns the API root requests are issued against.
func (s *SpotifyService) BaseURL() string {
	return s.baseURL
}

// resolve turns an endpoint into an absolute URL. Absolute URLs, such as a page's next link, must stay on the
// API host, since the request carries the bearer token.
func (s *SpotifyService) resolve(target string) (string, error) {
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		return s.baseURL + target, nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", decodeError(target, 0, err)
	}
	base, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base URL: %v", shared.ErrAPIRequest, err)
	}
	if u.Scheme != base.Scheme || u.Host != base.Host {
		return "", decodeError(target, 0, fmt.Errorf("link points outside %s", base.Host))
	}
	return target, nil
}

// doRequest performs an authenticated HTTP request to the Spotify API and decodes the JSON body into result.
func (s *SpotifyService) doRequest(ctx context.Context, method, target string, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	apiURL, err := s.resolve(target)
	if err != nil {
		return err
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return transportError(apiURL, err, false)
		}
	}

	reqCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, method, apiURL, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", shared.ErrAPIRequest, err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Debug("request failed", "method", method, "url", apiURL, "error", err)

		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return &FetchError{Resource: apiURL, Err: err, kinds: []error{shared.ErrAPIRequest, shared.ErrTokenExpired}}
		}
		timedOut := errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil
		return transportError(apiURL, err, timedOut)
	}
	defer resp.Body.Close()

	s.logger.Debug("request", "method", method, "url", apiURL, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(apiURL, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return transportError(apiURL, err, true)
			}
			return decodeError(apiURL, resp.StatusCode, err)
		}
	}

	return nil
}

// collect follows next links from first until the API reports no further page.
func collect[T any](ctx context.Context, s *SpotifyService, first string) ([]T, error) {
	var items []T
	next := first
	for next != "" {
		var p page[T]
		if err := s.doRequest(ctx, http.MethodGet, next, &p); err != nil {
			return nil, err
		}
		items = append(items, p.Items...)

		next = ""
		if p.Next != nil {
			next = *p.Next
		}
	}
	return items, nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserPlaylists retrieves every playlist of userID, following pagination.
func (s *SpotifyService) UserPlaylists(ctx context.Context, userID string) ([]Playlist, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id", shared.ErrMissingArgument)
	}

	endpoint := fmt.Sprintf("/users/%s/playlists?limit=%d", url.PathEscape(userID), pageLimit)
	items, err := collect[SpotifySimplePlaylist](ctx, s, endpoint)
	if err != nil {
		return nil, err
	}

	playlists := make([]Playlist, 0, len(items))
	for _, sp := range items {
		playlists = append(playlists, Playlist{
			ID:          sp.ID,
			Name:        sp.Name,
			Description: sp.Description,
			Owner:       sp.Owner.ID,
			TrackCount:  sp.Tracks.Total,
			Public:      sp.Public,
		})
	}
	return playlists, nil
}

// PlaylistTracks retrieves every track of playlistID, following pagination.
// Removed items, local files and episodes carry no usable track id and are skipped.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d", url.PathEscape(playlistID), pageLimit)
	items, err := collect[SpotifyPlaylistTrack](ctx, s, endpoint)
	if err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, len(items))
	for _, item := range items {
		if item.Track == nil || item.Track.ID == "" || item.Track.Type == "episode" {
			continue
		}
		tracks = append(tracks, toTrack(*item.Track))
	}
	return tracks, nil
}

// ArtistGenres retrieves the genre tags of a single artist.
func (s *SpotifyService) ArtistGenres(ctx context.Context, artistID string) ([]string, error) {
	if artistID == "" {
		return nil, fmt.Errorf("%w: artist id", shared.ErrMissingArgument)
	}

	var artist SpotifyArtist
	if err := s.doRequest(ctx, http.MethodGet, "/artists/"+url.PathEscape(artistID), &artist); err != nil {
		return nil, err
	}
	return artist.Genres, nil
}

func toTrack(st SpotifyTrack) Track {
	t := Track{ID: st.ID, Name: st.Name}
	for _, a := range st.Artists {
		if a.ID == "" {
			continue
		}
		t.ArtistIDs = append(t.ArtistIDs, a.ID)
		t.Artists = append(t.Artists, a.Name)
	}
	return t
}
