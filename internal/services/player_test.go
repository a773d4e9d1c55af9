package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/musicpal/internal/shared"
)

func newTestPlayer(t *testing.T, handler http.HandlerFunc) *PlayerService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv := newTestService(t, server)
	player, err := srv.Player()
	if err != nil {
		t.Fatalf("failed to build player: %v", err)
	}
	return player
}

func TestPlayerService(t *testing.T) {
	t.Run("Requires Authentication", func(t *testing.T) {
		srv, _ := NewSpotifyService(testCredentials)
		if _, err := srv.Player(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("CurrentUser", func(t *testing.T) {
		player := newTestPlayer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			writeJSON(w, map[string]any{"id": "alice", "display_name": "Alice"})
		})

		user, err := player.CurrentUser(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.ID != "alice" {
			t.Errorf("expected alice, got %s", user.ID)
		}
	})

	t.Run("CurrentlyPlaying", func(t *testing.T) {
		t.Run("Playing", func(t *testing.T) {
			player := newTestPlayer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/me/player/currently-playing" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				fmt.Fprint(w, `{"is_playing": true, "item": {"id": "t1", "name": "Song", "artists": [{"id": "a1", "name": "Band"}]}}`)
			})

			track, err := player.CurrentlyPlaying(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if track.ID != "t1" || track.Artist() != "Band" {
				t.Errorf("unexpected track %+v", track)
			}
		})

		t.Run("Nothing Playing", func(t *testing.T) {
			player := newTestPlayer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})

			_, err := player.CurrentlyPlaying(context.Background())
			if !errors.Is(err, shared.ErrNothingPlaying) {
				t.Errorf("expected ErrNothingPlaying, got %v", err)
			}
		})
	})

	t.Run("Recommendations", func(t *testing.T) {
		t.Run("Sends Seeds And Targets", func(t *testing.T) {
			player := newTestPlayer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/recommendations" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				q := r.URL.Query()
				if q.Get("seed_tracks") != "t1" {
					t.Errorf("expected seed_tracks t1, got %q", q.Get("seed_tracks"))
				}
				if q.Get("seed_genres") != "pop,dance" {
					t.Errorf("expected seed_genres pop,dance, got %q", q.Get("seed_genres"))
				}
				if q.Get("limit") != "10" {
					t.Errorf("expected limit 10, got %q", q.Get("limit"))
				}
				if q.Get("target_valence") == "" {
					t.Error("expected target_valence to be sent")
				}
				if q.Get("target_energy") != "" {
					t.Error("expected zero energy to be omitted")
				}
				fmt.Fprint(w, `{"tracks": [{"id": "r1", "name": "Rec One", "artists": [{"id": "a9", "name": "Nine"}]}, {"id": "r2", "name": "Rec Two", "artists": []}]}`)
			})

			tracks, err := player.Recommendations(context.Background(),
				Seeds{TrackIDs: []string{"t1"}, Genres: []string{"pop", "dance"}},
				Targets{Valence: 0.8}, 10)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 2 || tracks[0].Name != "Rec One" {
				t.Errorf("unexpected tracks %+v", tracks)
			}
		})

		t.Run("No Seeds", func(t *testing.T) {
			player := newTestPlayer(t, func(w http.ResponseWriter, r *http.Request) {
				t.Error("no request expected")
			})
			_, err := player.Recommendations(context.Background(), Seeds{}, Targets{}, 10)
			if !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})

		t.Run("Empty Result", func(t *testing.T) {
			player := newTestPlayer(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"tracks": []}`)
			})
			_, err := player.Recommendations(context.Background(), Seeds{Genres: []string{"jazz"}}, Targets{}, 5)
			if !errors.Is(err, shared.ErrNoRecommendations) {
				t.Errorf("expected ErrNoRecommendations, got %v", err)
			}
		})
	})

	t.Run("Queue", func(t *testing.T) {
		var gotURI string
		player := newTestPlayer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/me/player/queue" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			gotURI = r.URL.Query().Get("uri")
			w.WriteHeader(http.StatusNoContent)
		})

		if err := player.Queue(context.Background(), "t42"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotURI != "spotify:track:t42" {
			t.Errorf("expected track uri, got %q", gotURI)
		}

		if err := player.Queue(context.Background(), ""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Queue Unauthorized", func(t *testing.T) {
		player := newTestPlayer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error": {"status": 401, "message": "The access token expired"}}`)
		})

		err := player.Queue(context.Background(), "t1")
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("RecentlyPlayed", func(t *testing.T) {
		player := newTestPlayer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me/player/recently-played" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("limit") != "50" {
				t.Errorf("expected limit capped at 50, got %s", r.URL.Query().Get("limit"))
			}
			fmt.Fprint(w, `{"items": [{"track": {"id": "t1", "name": "One", "artists": []}}, {"track": {"id": "t2", "name": "Two", "artists": []}}]}`)
		})

		tracks, err := player.RecentlyPlayed(context.Background(), 500)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 2 || tracks[1].ID != "t2" {
			t.Errorf("unexpected tracks %+v", tracks)
		}
	})

	t.Run("SavedTracks", func(t *testing.T) {
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me/tracks" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("offset") == "1" {
				fmt.Fprint(w, `{"items": [{"track": {"id": "s2", "name": "Two", "artists": []}}], "next": null}`)
				return
			}
			fmt.Fprintf(w, `{"items": [{"track": {"id": "s1", "name": "One", "artists": []}}], "next": %q}`, server.URL+"/me/tracks?offset=1")
		}))
		defer server.Close()

		player, err := newTestService(t, server).Player()
		if err != nil {
			t.Fatalf("failed to build player: %v", err)
		}

		tracks, err := player.SavedTracks(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 2 || tracks[0].ID != "s1" || tracks[1].ID != "s2" {
			t.Errorf("unexpected tracks %+v", tracks)
		}
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		var added []string
		player := newTestPlayer(t, func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/users/alice/playlists":
				w.WriteHeader(http.StatusCreated)
				fmt.Fprint(w, `{"id": "newpl", "name": "Happy Mix"}`)
			case r.Method == http.MethodPost && r.URL.Path == "/playlists/newpl/tracks":
				added = append(added, r.URL.Path)
				w.WriteHeader(http.StatusCreated)
				fmt.Fprint(w, `{"snapshot_id": "snap"}`)
			default:
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
		})

		ids := make([]string, 150)
		for i := range ids {
			ids[i] = fmt.Sprintf("t%d", i)
		}

		pl, err := player.CreatePlaylist(context.Background(), "alice", "Happy Mix", "made by musicpal", ids)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if pl.ID != "newpl" || pl.TrackCount != 150 {
			t.Errorf("unexpected playlist %+v", pl)
		}
		if len(added) != 2 {
			t.Errorf("expected 2 batches, got %d", len(added))
		}
	})

	t.Run("CreatePlaylist Requires Name", func(t *testing.T) {
		player := newTestPlayer(t, func(w http.ResponseWriter, r *http.Request) {})
		_, err := player.CreatePlaylist(context.Background(), "alice", "", "", nil)
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestToSeeds(t *testing.T) {
	seeds := toSeeds(Seeds{
		TrackIDs:  []string{"t1", "t2"},
		ArtistIDs: []string{"a1", "a2"},
		Genres:    []string{"pop", "rock"},
	})

	total := len(seeds.Tracks) + len(seeds.Artists) + len(seeds.Genres)
	if total != maxSeeds {
		t.Errorf("expected %d seeds, got %d", maxSeeds, total)
	}
	if len(seeds.Genres) != 1 || seeds.Genres[0] != "pop" {
		t.Errorf("expected genres truncated to [pop], got %v", seeds.Genres)
	}
	if !strings.HasPrefix(string(seeds.Tracks[0]), "t") {
		t.Errorf("expected tracks first, got %v", seeds.Tracks)
	}
}
