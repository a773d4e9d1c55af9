package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/musicpal/internal/models"
	"github.com/desertthunder/musicpal/internal/shared"
)

const summaryColumns = "id, user_id, playlist_count, failed_count, body, created_at"

// SummaryRepository implements models.Repository[*models.Summary].
type SummaryRepository struct {
	db *sql.DB
}

// NewSummaryRepository creates a new SummaryRepository with the given database connection
func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Create inserts a [models.Summary] with a generated ID
func (r *SummaryRepository) Create(s *models.Summary) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO summaries (id, user_id, playlist_count, failed_count, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query, id, s.UserID(), s.PlaylistCount(), s.FailedCount(), s.Body(), s.CreatedAt()); err != nil {
		return fmt.Errorf("failed to insert summary: %w", err)
	}

	s.SetID(id)
	return nil
}

// Get retrieves a summary by ID
func (r *SummaryRepository) Get(id string) (*models.Summary, error) {
	row := r.db.QueryRow("SELECT "+summaryColumns+" FROM summaries WHERE id = ?", id)
	s, err := scanSummary(row)
	if err != nil {
		return nil, notFound(err, "summary", id)
	}
	return s, nil
}

// Latest returns the most recent summary for userID
func (r *SummaryRepository) Latest(userID string) (*models.Summary, error) {
	row := r.db.QueryRow("SELECT "+summaryColumns+" FROM summaries WHERE user_id = ? ORDER BY created_at DESC LIMIT 1", userID)
	s, err := scanSummary(row)
	if err != nil {
		return nil, notFound(err, "summary for user", userID)
	}
	return s, nil
}

// Delete removes a summary by ID
func (r *SummaryRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM summaries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete summary: %w", err)
	}
	return expectAffected(result, "summary", id)
}

// List retrieves summaries newest first. Supported criteria: "user_id" (string) and "limit" (int).
func (r *SummaryRepository) List(criteria map[string]any) ([]*models.Summary, error) {
	clause, args := where(criteria, "user_id")
	query := "SELECT " + summaryColumns + " FROM summaries" + clause + " ORDER BY created_at DESC" + limit(criteria)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*models.Summary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return summaries, nil
}

// ListByUser retrieves every summary of userID, newest first
func (r *SummaryRepository) ListByUser(userID string) ([]*models.Summary, error) {
	return r.List(map[string]any{"user_id": userID})
}

func scanSummary(row scanner) (*models.Summary, error) {
	var (
		id            string
		userID        string
		playlistCount int
		failedCount   int
		body          string
		createdAt     time.Time
	)

	if err := row.Scan(&id, &userID, &playlistCount, &failedCount, &body, &createdAt); err != nil {
		return nil, err
	}
	return models.RestoreSummary(id, userID, body, playlistCount, failedCount, createdAt), nil
}
