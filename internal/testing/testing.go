// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/musicpal/internal/services"
	"github.com/desertthunder/musicpal/internal/shared"
)

// MockCatalog is a test double for [services.Catalog].
//
// PlaylistTracks sleeps for Delay and records how many calls overlap.
type MockCatalog struct {
	Playlists    []services.Playlist
	Tracks       map[string][]services.Track // by playlist id
	Genres       map[string][]string         // by artist id
	PlaylistsErr error
	TracksErr    map[string]error // by playlist id
	GenresErr    map[string]error // by artist id
	Delay        time.Duration
	DelayFor     map[string]time.Duration // by playlist id, overrides Delay

	mu          sync.Mutex
	inFlight    int
	maxInFlight int
	calls       map[string]int
}

func (m *MockCatalog) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

func (m *MockCatalog) UserPlaylists(ctx context.Context, userID string) ([]services.Playlist, error) {
	m.record("UserPlaylists")
	if m.PlaylistsErr != nil {
		return nil, m.PlaylistsErr
	}
	return m.Playlists, nil
}

func (m *MockCatalog) PlaylistTracks(ctx context.Context, playlistID string) ([]services.Track, error) {
	m.record("PlaylistTracks")

	m.mu.Lock()
	m.inFlight++
	m.maxInFlight = max(m.maxInFlight, m.inFlight)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	delay := m.Delay
	if d, ok := m.DelayFor[playlistID]; ok {
		delay = d
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := m.TracksErr[playlistID]; err != nil {
		return nil, err
	}
	return m.Tracks[playlistID], nil
}

func (m *MockCatalog) ArtistGenres(ctx context.Context, artistID string) ([]string, error) {
	m.record("ArtistGenres")
	if err := m.GenresErr[artistID]; err != nil {
		return nil, err
	}
	return m.Genres[artistID], nil
}

// MaxInFlight is the highest number of overlapping PlaylistTracks calls observed.
func (m *MockCatalog) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

// Calls returns how many times method was invoked.
func (m *MockCatalog) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// CreatedPlaylist records a [MockPlayer.CreatePlaylist] call.
type CreatedPlaylist struct {
	UserID      string
	Name        string
	Description string
	TrackIDs    []string
}

// MockPlayer is a test double for [services.Player]. Errs is keyed by method name.
type MockPlayer struct {
	User    *services.User
	Current *services.Track
	Recs    []services.Track
	Recent  []services.Track
	Saved   []services.Track
	Errs    map[string]error

	mu          sync.Mutex
	Queued      []string
	Created     []CreatedPlaylist
	LastSeeds   services.Seeds
	LastTargets services.Targets
	LastLimit   int
}

func (m *MockPlayer) CurrentUser(ctx context.Context) (*services.User, error) {
	if err := m.Errs["CurrentUser"]; err != nil {
		return nil, err
	}
	if m.User == nil {
		return &services.User{ID: "mock_user", DisplayName: "Mock User"}, nil
	}
	return m.User, nil
}

func (m *MockPlayer) CurrentlyPlaying(ctx context.Context) (*services.Track, error) {
	if err := m.Errs["CurrentlyPlaying"]; err != nil {
		return nil, err
	}
	if m.Current == nil {
		return nil, shared.ErrNothingPlaying
	}
	return m.Current, nil
}

func (m *MockPlayer) Recommendations(ctx context.Context, seeds services.Seeds, targets services.Targets, limit int) ([]services.Track, error) {
	m.mu.Lock()
	m.LastSeeds, m.LastTargets, m.LastLimit = seeds, targets, limit
	m.mu.Unlock()

	if err := m.Errs["Recommendations"]; err != nil {
		return nil, err
	}
	return m.Recs, nil
}

func (m *MockPlayer) Queue(ctx context.Context, trackID string) error {
	if err := m.Errs["Queue"]; err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queued = append(m.Queued, trackID)
	return nil
}

func (m *MockPlayer) RecentlyPlayed(ctx context.Context, limit int) ([]services.Track, error) {
	if err := m.Errs["RecentlyPlayed"]; err != nil {
		return nil, err
	}
	return m.Recent, nil
}

func (m *MockPlayer) SavedTracks(ctx context.Context) ([]services.Track, error) {
	if err := m.Errs["SavedTracks"]; err != nil {
		return nil, err
	}
	return m.Saved, nil
}

func (m *MockPlayer) CreatePlaylist(ctx context.Context, userID, name, description string, trackIDs []string) (*services.Playlist, error) {
	if err := m.Errs["CreatePlaylist"]; err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = append(m.Created, CreatedPlaylist{userID, name, description, trackIDs})
	return &services.Playlist{ID: "created_playlist", Name: name, Owner: userID, TrackCount: len(trackIDs)}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
