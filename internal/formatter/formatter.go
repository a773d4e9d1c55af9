// package formatter writes summaries and gathered interaction data to disk (plain text, JSON, CSV)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/musicpal/internal/shared"
	"github.com/desertthunder/musicpal/internal/tasks"
)

// InteractionHeaders are the columns of the interaction CSV.
var InteractionHeaders = []string{"user_id", "song_id", "interaction"}

// SummaryPath returns <dir>/<userID>.txt. Path separators in userID are replaced so the file stays in dir.
func SummaryPath(dir, userID string) string {
	name := strings.NewReplacer("/", "_", `\`, "_").Replace(userID)
	if name == "" || name == "." || name == ".." {
		name = "_"
	}
	return filepath.Join(dir, name+".txt")
}

// WriteSummary writes text to <dir>/<userID>.txt, creating dir as needed, and returns the path written.
func WriteSummary(dir, userID, text string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := SummaryPath(dir, userID)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}
	return path, nil
}

type shareJSON struct {
	Category string  `json:"category"`
	Percent  float64 `json:"percent"`
}

type reportJSON struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Tags   int         `json:"tags"`
	Shares []shareJSON `json:"shares,omitempty"`
	Error  string      `json:"error,omitempty"`
}

type summaryJSON struct {
	UserID    string       `json:"user_id"`
	Playlists int          `json:"playlists"`
	Failed    int          `json:"failed"`
	Reports   []reportJSON `json:"reports"`
}

// SummaryToJSON renders a summary result as indented JSON, keeping report order.
func SummaryToJSON(r *tasks.SummaryResult) ([]byte, error) {
	out := summaryJSON{UserID: r.UserID, Playlists: len(r.Reports), Failed: r.Failed, Reports: make([]reportJSON, 0, len(r.Reports))}
	for _, rep := range r.Reports {
		rj := reportJSON{ID: rep.Playlist.ID, Name: rep.Playlist.Name, Tags: rep.Tags}
		if rep.Err != nil {
			rj.Error = rep.Err.Error()
		}
		for _, s := range rep.Shares {
			rj.Shares = append(rj.Shares, shareJSON{Category: string(s.Category), Percent: s.Percent})
		}
		out.Reports = append(out.Reports, rj)
	}

	data, err := shared.MarshalJSON(out, true)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	return data, nil
}

// InteractionsToCSV converts interaction rows to CSV with columns: user_id, song_id, interaction
func InteractionsToCSV(rows []tasks.Interaction) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(InteractionHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range rows {
		if err := writer.Write([]string{r.UserID, r.SongID, string(r.Kind)}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteInteractionsCSV writes rows to path, creating parent directories as needed.
func WriteInteractionsCSV(rows []tasks.Interaction, path string) error {
	data, err := InteractionsToCSV(rows)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}
