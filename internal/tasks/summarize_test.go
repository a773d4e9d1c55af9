package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/musicpal/internal/genres"
	"github.com/desertthunder/musicpal/internal/services"
	"github.com/desertthunder/musicpal/internal/shared"
	tu "github.com/desertthunder/musicpal/internal/testing"
)

// collectProgress drains progress until it is closed and returns every update received.
func collectProgress(progress <-chan ProgressUpdate) <-chan []ProgressUpdate {
	out := make(chan []ProgressUpdate, 1)
	go func() {
		var updates []ProgressUpdate
		for u := range progress {
			updates = append(updates, u)
		}
		out <- updates
	}()
	return out
}

func TestFormatReport(t *testing.T) {
	t.Run("Shares", func(t *testing.T) {
		got := FormatReport(PlaylistReport{
			Playlist: services.Playlist{Name: "Mix"},
			Shares:   []genres.Share{{Category: genres.Pop, Percent: 75}, {Category: genres.Rock, Percent: 25}},
		})
		want := "Playlist: Mix\nPop: 75.00%\nRock: 25.00%\n\n"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("Two Decimals", func(t *testing.T) {
		got := FormatReport(PlaylistReport{
			Playlist: services.Playlist{Name: "Thirds"},
			Shares:   []genres.Share{{Category: genres.Jazz, Percent: 100.0 / 3}},
		})
		if !strings.Contains(got, "Jazz: 33.33%\n") {
			t.Errorf("expected two decimals, got %q", got)
		}
	})

	t.Run("Error", func(t *testing.T) {
		got := FormatReport(PlaylistReport{
			Playlist: services.Playlist{Name: "Broken"},
			Err:      errors.New("boom"),
		})
		want := "Playlist: Broken\nError: boom\n\n"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})
}

func TestSummarizePlaylist(t *testing.T) {
	t.Run("Counts Every Tag", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			Tracks: map[string][]services.Track{
				"p1": {
					{ID: "t1", ArtistIDs: []string{"a1", "a2"}},
					{ID: "t2", ArtistIDs: []string{"a1"}},
				},
			},
			Genres: map[string][]string{
				"a1": {"pop"},
				"a2": {"dance pop", "rock"},
			},
		}

		engine := NewSummaryEngine(catalog, SummaryOpts{}, nil)
		rep, err := engine.SummarizePlaylist(context.Background(), services.Playlist{ID: "p1", Name: "One"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if rep.Tags != 4 {
			t.Errorf("expected 4 tags, got %d", rep.Tags)
		}
		if got := FormatReport(rep); got != "Playlist: One\nPop: 75.00%\nRock: 25.00%\n\n" {
			t.Errorf("unexpected block %q", got)
		}
		if catalog.Calls("ArtistGenres") != 3 {
			t.Errorf("expected one lookup per artist per track, got %d", catalog.Calls("ArtistGenres"))
		}
	})

	t.Run("No Genres Sentinel", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			Tracks: map[string][]services.Track{"p1": {{ID: "t1", ArtistIDs: []string{"a1"}}}},
			Genres: map[string][]string{"a1": {}},
		}

		rep, err := NewSummaryEngine(catalog, SummaryOpts{}, nil).
			SummarizePlaylist(context.Background(), services.Playlist{ID: "p1", Name: "Quiet"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := FormatReport(rep); got != "Playlist: Quiet\nNo genres found: 100.00%\n\n" {
			t.Errorf("unexpected block %q", got)
		}
	})

	t.Run("Artist Failure", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			Tracks:    map[string][]services.Track{"p1": {{ID: "t1", ArtistIDs: []string{"a1"}}}},
			GenresErr: map[string]error{"a1": shared.ErrAPIRequest},
		}

		_, err := NewSummaryEngine(catalog, SummaryOpts{}, nil).
			SummarizePlaylist(context.Background(), services.Playlist{ID: "p1"})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestSummarize(t *testing.T) {
	t.Run("End To End", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			Playlists: []services.Playlist{{ID: "A", Name: "Alpha"}, {ID: "B", Name: "Beta"}},
			Tracks: map[string][]services.Track{
				"A": {{ID: "t1", ArtistIDs: []string{"a1"}}},
			},
			Genres: map[string][]string{"a1": {"rock"}},
		}

		result, err := NewSummaryEngine(catalog, SummaryOpts{}, nil).Summarize(context.Background(), "alice", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		text := result.Text()
		if !strings.HasPrefix(text, "Summary for user alice:\n\n") {
			t.Errorf("expected header, got %q", text)
		}
		if !strings.Contains(text, "Playlist: Alpha\nRock: 100.00%\n\n") {
			t.Errorf("expected Alpha block, got %q", text)
		}
		if !strings.Contains(text, "Playlist: Beta\nNo genres found: 100.00%\n\n") {
			t.Errorf("expected Beta block, got %q", text)
		}
		if len(result.Reports) != 2 || result.Failed != 0 {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("No Playlists", func(t *testing.T) {
		result, err := NewSummaryEngine(&tu.MockCatalog{}, SummaryOpts{}, nil).Summarize(context.Background(), "empty", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Text() != "Summary for user empty:\n\n" {
			t.Errorf("expected header only, got %q", result.Text())
		}
	})

	t.Run("Concurrency Bound And Progress", func(t *testing.T) {
		catalog := &tu.MockCatalog{Delay: 20 * time.Millisecond}
		for i := range 12 {
			catalog.Playlists = append(catalog.Playlists, services.Playlist{ID: fmt.Sprintf("p%d", i), Name: fmt.Sprintf("P%d", i)})
		}

		progress := make(chan ProgressUpdate)
		updates := collectProgress(progress)

		result, err := NewSummaryEngine(catalog, SummaryOpts{Workers: 5}, nil).Summarize(context.Background(), "alice", progress)
		close(progress)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if got := catalog.MaxInFlight(); got > 5 {
			t.Errorf("expected at most 5 concurrent tasks, observed %d", got)
		}
		if got := catalog.MaxInFlight(); got < 2 {
			t.Errorf("expected tasks to overlap, observed %d", got)
		}
		if len(result.Reports) != 12 {
			t.Errorf("expected 12 reports, got %d", len(result.Reports))
		}

		var steps []int
		for _, u := range <-updates {
			if u.Phase != SummarizePlaylists {
				continue
			}
			if u.Total != 12 {
				t.Errorf("expected total 12, got %d", u.Total)
			}
			steps = append(steps, u.Step)
		}

		if len(steps) != 12 {
			t.Fatalf("expected 12 summarize updates, got %d", len(steps))
		}
		for i, s := range steps {
			if s != i+1 {
				t.Errorf("expected step %d, got %d", i+1, s)
			}
		}
	})

	t.Run("Completion Order", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			Playlists: []services.Playlist{{ID: "slow", Name: "Slow"}, {ID: "fast", Name: "Fast"}},
			DelayFor: map[string]time.Duration{
				"slow": 100 * time.Millisecond,
				"fast": 0,
			},
		}

		result, err := NewSummaryEngine(catalog, SummaryOpts{Workers: 2}, nil).Summarize(context.Background(), "alice", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Reports[0].Playlist.Name != "Fast" {
			t.Errorf("expected the fast playlist first, got %s", result.Reports[0].Playlist.Name)
		}
	})

	t.Run("Isolates Failures", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			Playlists: []services.Playlist{{ID: "ok", Name: "Fine"}, {ID: "bad", Name: "Broken"}},
			TracksErr: map[string]error{"bad": fmt.Errorf("%w: status 500", shared.ErrAPIRequest)},
		}

		result, err := NewSummaryEngine(catalog, SummaryOpts{}, nil).Summarize(context.Background(), "alice", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Failed != 1 {
			t.Errorf("expected 1 failure, got %d", result.Failed)
		}

		text := result.Text()
		if !strings.Contains(text, "Playlist: Broken\nError: ") {
			t.Errorf("expected an error block, got %q", text)
		}
		if !strings.Contains(text, "Playlist: Fine\nNo genres found: 100.00%") {
			t.Errorf("expected the healthy playlist to be summarized, got %q", text)
		}
	})

	t.Run("Fail Fast", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			Playlists: []services.Playlist{{ID: "ok", Name: "Fine"}, {ID: "bad", Name: "Broken"}},
			TracksErr: map[string]error{"bad": shared.ErrMalformedResponse},
		}

		result, err := NewSummaryEngine(catalog, SummaryOpts{FailFast: true}, nil).Summarize(context.Background(), "alice", nil)
		if result != nil {
			t.Error("expected no partial summary")
		}
		if !errors.Is(err, shared.ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})

	t.Run("Playlist Listing Fails", func(t *testing.T) {
		catalog := &tu.MockCatalog{PlaylistsErr: shared.ErrTokenExpired}

		_, err := NewSummaryEngine(catalog, SummaryOpts{}, nil).Summarize(context.Background(), "alice", nil)
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("Validation", func(t *testing.T) {
		if _, err := NewSummaryEngine(nil, SummaryOpts{}, nil).Summarize(context.Background(), "alice", nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
		if _, err := NewSummaryEngine(&tu.MockCatalog{}, SummaryOpts{}, nil).Summarize(context.Background(), "", nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Canceled", func(t *testing.T) {
		catalog := &tu.MockCatalog{Delay: time.Second}
		for i := range 3 {
			catalog.Playlists = append(catalog.Playlists, services.Playlist{ID: fmt.Sprintf("p%d", i)})
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := NewSummaryEngine(catalog, SummaryOpts{}, nil).Summarize(ctx, "alice", nil)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})
}
