package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/musicpal/internal/genres"
	"github.com/desertthunder/musicpal/internal/services"
	"github.com/desertthunder/musicpal/internal/tasks"
	th "github.com/desertthunder/musicpal/internal/testing"
)

func TestWriteSummary(t *testing.T) {
	t.Run("Creates Directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "output")
		text := "Summary for user alice:\n\nPlaylist: A\nRock: 100.00%\n\n"

		path, err := WriteSummary(dir, "alice", text)
		if err != nil {
			t.Fatalf("WriteSummary failed: %v", err)
		}

		th.AssertDirExists(t, dir)
		if path != filepath.Join(dir, "alice.txt") {
			t.Errorf("unexpected path %s", path)
		}
		if got := th.MustReadFile(t, path); got != text {
			t.Errorf("expected %q, got %q", text, got)
		}
	})

	t.Run("Overwrites", func(t *testing.T) {
		dir := t.TempDir()
		if _, err := WriteSummary(dir, "bob", "first"); err != nil {
			t.Fatalf("WriteSummary failed: %v", err)
		}
		path, err := WriteSummary(dir, "bob", "second")
		if err != nil {
			t.Fatalf("WriteSummary failed: %v", err)
		}
		if got := th.MustReadFile(t, path); got != "second" {
			t.Errorf("expected overwrite, got %q", got)
		}
	})
}

func TestSummaryPath(t *testing.T) {
	tests := []struct {
		user string
		want string
	}{
		{"alice", "out/alice.txt"},
		{"../etc/passwd", "out/.._etc_passwd.txt"},
		{"", "out/_.txt"},
		{"..", "out/_.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			if got := SummaryPath("out", tt.user); got != filepath.FromSlash(tt.want) {
				t.Errorf("SummaryPath(%q) = %s, want %s", tt.user, got, tt.want)
			}
		})
	}
}

func TestSummaryToJSON(t *testing.T) {
	result := &tasks.SummaryResult{
		UserID: "alice",
		Failed: 1,
		Reports: []tasks.PlaylistReport{
			{
				Playlist: services.Playlist{ID: "p1", Name: "One"},
				Shares:   []genres.Share{{Category: genres.Pop, Percent: 75}, {Category: genres.Rock, Percent: 25}},
				Tags:     4,
			},
			{Playlist: services.Playlist{ID: "p2", Name: "Two"}, Err: errors.New("boom")},
		},
	}

	data, err := SummaryToJSON(result)
	if err != nil {
		t.Fatalf("SummaryToJSON failed: %v", err)
	}

	var decoded summaryJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Playlists != 2 || decoded.Failed != 1 {
		t.Errorf("unexpected counts %+v", decoded)
	}
	if decoded.Reports[0].Shares[0].Category != "Pop" || decoded.Reports[0].Shares[0].Percent != 75 {
		t.Errorf("unexpected first share %+v", decoded.Reports[0].Shares[0])
	}
	if decoded.Reports[1].Error != "boom" {
		t.Errorf("expected error to be carried, got %q", decoded.Reports[1].Error)
	}
}

func TestInteractionsCSV(t *testing.T) {
	rows := []tasks.Interaction{
		{UserID: "alice", SongID: "s1", Kind: tasks.RecentlyPlayed},
		{UserID: "alice", SongID: "s2", Kind: tasks.Saved},
		{UserID: "alice", SongID: "s3", Kind: tasks.InPlaylist},
	}

	t.Run("InteractionsToCSV", func(t *testing.T) {
		data, err := InteractionsToCSV(rows)
		if err != nil {
			t.Fatalf("InteractionsToCSV failed: %v", err)
		}

		want := "user_id,song_id,interaction\nalice,s1,recently_played\nalice,s2,saved\nalice,s3,playlist\n"
		if string(data) != want {
			t.Errorf("expected %q, got %q", want, string(data))
		}
	})

	t.Run("Header Only", func(t *testing.T) {
		data, err := InteractionsToCSV(nil)
		if err != nil {
			t.Fatalf("InteractionsToCSV failed: %v", err)
		}
		if strings.TrimSpace(string(data)) != "user_id,song_id,interaction" {
			t.Errorf("expected header only, got %q", string(data))
		}
	})

	t.Run("WriteInteractionsCSV", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data", "user_song_interaction_data.csv")
		if err := WriteInteractionsCSV(rows, path); err != nil {
			t.Fatalf("WriteInteractionsCSV failed: %v", err)
		}

		th.AssertFileExists(t, path)
		if lines := strings.Count(th.MustReadFile(t, path), "\n"); lines != 4 {
			t.Errorf("expected 4 lines, got %d", lines)
		}
	})
}
