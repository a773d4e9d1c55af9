package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/musicpal/internal/models"
	"github.com/desertthunder/musicpal/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestSummaryRepository(t *testing.T) {
	t.Run("Create And Get", func(t *testing.T) {
		repo := NewSummaryRepository(setupTestDB(t))
		s := models.NewSummary("alice", "Summary for user alice:\n\n", 2, 1)

		if err := repo.Create(s); err != nil {
			t.Fatalf("failed to create summary: %v", err)
		}
		if s.ID() == "" {
			t.Fatal("summary ID should be set after creation")
		}

		got, err := repo.Get(s.ID())
		if err != nil {
			t.Fatalf("failed to get summary: %v", err)
		}
		if got.UserID() != "alice" || got.Body() != s.Body() {
			t.Errorf("unexpected summary %+v", got)
		}
		if got.PlaylistCount() != 2 || got.FailedCount() != 1 {
			t.Errorf("expected counts 2/1, got %d/%d", got.PlaylistCount(), got.FailedCount())
		}
	})

	t.Run("Validation", func(t *testing.T) {
		repo := NewSummaryRepository(setupTestDB(t))

		tests := []struct {
			name    string
			summary *models.Summary
		}{
			{"Missing User", models.NewSummary("", "body", 1, 0)},
			{"Missing Body", models.NewSummary("alice", "", 1, 0)},
			{"Too Many Failures", models.NewSummary("alice", "body", 1, 2)},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if err := repo.Create(tt.summary); !errors.Is(err, shared.ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
			})
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		_, err := NewSummaryRepository(setupTestDB(t)).Get("missing")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListByUser Newest First", func(t *testing.T) {
		repo := NewSummaryRepository(setupTestDB(t))
		base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

		for i, user := range []string{"alice", "bob", "alice"} {
			s := models.RestoreSummary("", user, "body "+user, 1, 0, base.Add(time.Duration(i)*time.Hour))
			if err := repo.Create(s); err != nil {
				t.Fatalf("failed to create summary: %v", err)
			}
		}

		list, err := repo.ListByUser("alice")
		if err != nil {
			t.Fatalf("failed to list summaries: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("expected 2 summaries, got %d", len(list))
		}
		if !list[0].CreatedAt().After(list[1].CreatedAt()) {
			t.Errorf("expected newest first, got %v then %v", list[0].CreatedAt(), list[1].CreatedAt())
		}

		latest, err := repo.Latest("alice")
		if err != nil {
			t.Fatalf("failed to get latest: %v", err)
		}
		if latest.ID() != list[0].ID() {
			t.Errorf("expected latest to match first listed")
		}

		limited, err := repo.List(map[string]any{"limit": 1})
		if err != nil {
			t.Fatalf("failed to list summaries: %v", err)
		}
		if len(limited) != 1 {
			t.Errorf("expected limit to apply, got %d", len(limited))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewSummaryRepository(setupTestDB(t))
		s := models.NewSummary("alice", "body", 0, 0)
		if err := repo.Create(s); err != nil {
			t.Fatalf("failed to create summary: %v", err)
		}

		if err := repo.Delete(s.ID()); err != nil {
			t.Fatalf("failed to delete summary: %v", err)
		}
		if err := repo.Delete(s.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestInteractionRepository(t *testing.T) {
	rows := func() []*models.Interaction {
		return []*models.Interaction{
			models.NewInteraction("alice", "s1", models.KindRecentlyPlayed),
			models.NewInteraction("alice", "s2", models.KindSaved),
			models.NewInteraction("alice", "s3", models.KindPlaylist),
			models.NewInteraction("alice", "s1", models.KindPlaylist),
			models.NewInteraction("bob", "s9", models.KindSaved),
		}
	}

	t.Run("CreateMany", func(t *testing.T) {
		repo := NewInteractionRepository(setupTestDB(t))
		items := rows()

		if err := repo.CreateMany(items); err != nil {
			t.Fatalf("failed to create interactions: %v", err)
		}
		for _, i := range items {
			if i.ID() == "" {
				t.Fatal("interaction ID should be set after creation")
			}
		}

		got, err := repo.ListByUser("alice")
		if err != nil {
			t.Fatalf("failed to list interactions: %v", err)
		}
		if len(got) != 4 {
			t.Fatalf("expected 4 interactions, got %d", len(got))
		}
		for n, want := range []string{"s1", "s2", "s3", "s1"} {
			if got[n].SongID() != want {
				t.Errorf("row %d: expected %s, got %s", n, want, got[n].SongID())
			}
		}

		one, err := repo.Get(items[1].ID())
		if err != nil {
			t.Fatalf("failed to get interaction: %v", err)
		}
		if one.Kind() != models.KindSaved {
			t.Errorf("expected saved, got %s", one.Kind())
		}
	})

	t.Run("CreateMany Is Atomic", func(t *testing.T) {
		repo := NewInteractionRepository(setupTestDB(t))
		items := append(rows(), models.NewInteraction("alice", "s4", "skipped"))

		if err := repo.CreateMany(items); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}

		got, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list interactions: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected nothing written, got %d rows", len(got))
		}
	})

	t.Run("CountByKind", func(t *testing.T) {
		repo := NewInteractionRepository(setupTestDB(t))
		if err := repo.CreateMany(rows()); err != nil {
			t.Fatalf("failed to create interactions: %v", err)
		}

		counts, err := repo.CountByKind("alice")
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if counts[models.KindPlaylist] != 2 || counts[models.KindSaved] != 1 || counts[models.KindRecentlyPlayed] != 1 {
			t.Errorf("unexpected counts %v", counts)
		}
	})

	t.Run("List By Kind", func(t *testing.T) {
		repo := NewInteractionRepository(setupTestDB(t))
		if err := repo.CreateMany(rows()); err != nil {
			t.Fatalf("failed to create interactions: %v", err)
		}

		saved, err := repo.List(map[string]any{"kind": models.KindSaved})
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(saved) != 2 {
			t.Errorf("expected 2 saved rows across users, got %d", len(saved))
		}
	})

	t.Run("DeleteByUser", func(t *testing.T) {
		repo := NewInteractionRepository(setupTestDB(t))
		if err := repo.CreateMany(rows()); err != nil {
			t.Fatalf("failed to create interactions: %v", err)
		}

		n, err := repo.DeleteByUser("alice")
		if err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if n != 4 {
			t.Errorf("expected 4 rows removed, got %d", n)
		}

		if err := repo.Delete("missing"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
