package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/musicpal/internal/shared"
)

// scanner is satisfied by [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// notFound maps [sql.ErrNoRows] onto [shared.ErrNotFound].
func notFound(err error, entity, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, entity, id)
	}
	return fmt.Errorf("failed to scan %s: %w", entity, err)
}

// expectAffected fails with [shared.ErrNotFound] when result touched no rows.
func expectAffected(result sql.Result, entity, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, entity, id)
	}
	return nil
}

// where builds a conjunction of equality filters for the string-valued criteria in keys, in key order.
func where(criteria map[string]any, keys ...string) (string, []any) {
	var clauses []string
	var args []any
	for _, k := range keys {
		if v, ok := criteria[k].(string); ok && v != "" {
			clauses = append(clauses, k+" = ?")
			args = append(args, v)
		}
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// limit returns a LIMIT clause for a positive int "limit" criterion.
func limit(criteria map[string]any) string {
	if n, ok := criteria["limit"].(int); ok && n > 0 {
		return fmt.Sprintf(" LIMIT %d", n)
	}
	return ""
}
