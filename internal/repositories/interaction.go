package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/musicpal/internal/models"
	"github.com/desertthunder/musicpal/internal/shared"
)

const interactionColumns = "id, user_id, song_id, kind, created_at"

// InteractionRepository implements models.Repository[*models.Interaction] for gathered user/song rows.
type InteractionRepository struct {
	db *sql.DB
}

// NewInteractionRepository creates a new InteractionRepository with the given database connection
func NewInteractionRepository(db *sql.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// Create inserts a single [models.Interaction]
func (r *InteractionRepository) Create(i *models.Interaction) error {
	return r.CreateMany([]*models.Interaction{i})
}

// CreateMany inserts every interaction in one transaction. Nothing is written if any row is invalid.
func (r *InteractionRepository) CreateMany(items []*models.Interaction) error {
	for _, i := range items {
		if err := i.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO interactions (id, user_id, song_id, kind, created_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]string, len(items))
	for n, i := range items {
		ids[n] = shared.GenerateID()
		if _, err := stmt.Exec(ids[n], i.UserID(), i.SongID(), i.Kind(), i.CreatedAt()); err != nil {
			return fmt.Errorf("failed to insert interaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit interactions: %w", err)
	}

	for n, i := range items {
		i.SetID(ids[n])
	}
	return nil
}

// Get retrieves an interaction by ID
func (r *InteractionRepository) Get(id string) (*models.Interaction, error) {
	row := r.db.QueryRow("SELECT "+interactionColumns+" FROM interactions WHERE id = ?", id)
	i, err := scanInteraction(row)
	if err != nil {
		return nil, notFound(err, "interaction", id)
	}
	return i, nil
}

// Delete removes an interaction by ID
func (r *InteractionRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM interactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete interaction: %w", err)
	}
	return expectAffected(result, "interaction", id)
}

// DeleteByUser removes every interaction of userID and returns how many were removed
func (r *InteractionRepository) DeleteByUser(userID string) (int64, error) {
	result, err := r.db.Exec("DELETE FROM interactions WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete interactions: %w", err)
	}
	return result.RowsAffected()
}

// List retrieves interactions in insertion order. Supported criteria: "user_id", "kind" (string) and "limit" (int).
func (r *InteractionRepository) List(criteria map[string]any) ([]*models.Interaction, error) {
	clause, args := where(criteria, "user_id", "kind")
	query := "SELECT " + interactionColumns + " FROM interactions" + clause + " ORDER BY rowid ASC" + limit(criteria)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	var items []*models.Interaction
	for rows.Next() {
		i, err := scanInteraction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		items = append(items, i)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

// ListByUser retrieves every interaction of userID in insertion order
func (r *InteractionRepository) ListByUser(userID string) ([]*models.Interaction, error) {
	return r.List(map[string]any{"user_id": userID})
}

// CountByKind returns the number of interactions of userID per kind
func (r *InteractionRepository) CountByKind(userID string) (map[string]int, error) {
	rows, err := r.db.Query("SELECT kind, COUNT(*) FROM interactions WHERE user_id = ? GROUP BY kind", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count interactions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

func scanInteraction(row scanner) (*models.Interaction, error) {
	var (
		id        string
		userID    string
		songID    string
		kind      string
		createdAt time.Time
	)

	if err := row.Scan(&id, &userID, &songID, &kind, &createdAt); err != nil {
		return nil, err
	}
	return models.RestoreInteraction(id, userID, songID, kind, createdAt), nil
}
