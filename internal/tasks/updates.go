package tasks

import (
	"context"
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Done reports whether the update completes its phase.
func (u ProgressUpdate) Done() bool {
	return u.Total > 0 && u.Step >= u.Total
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylists Phase = iota
	SummarizePlaylists
	FetchRecommendations
	QueueTrack
	CreatePlaylist
	FetchHistory
	FetchLiked
	FetchPlaylistTracks
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylists:
		return "fetch_playlists"
	case SummarizePlaylists:
		return "summarize_playlists"
	case FetchRecommendations:
		return "fetch_recommendations"
	case QueueTrack:
		return "queue_track"
	case CreatePlaylist:
		return "create_playlist"
	case FetchHistory:
		return "fetch_history"
	case FetchLiked:
		return "fetch_liked"
	case FetchPlaylistTracks:
		return "fetch_playlist_tracks"
	default:
		return ""
	}
}

// sendProgress delivers update, blocking until the receiver takes it or ctx ends.
//
// Every completed unit is reported exactly once, so callers that pass a channel must drain it.
func sendProgress(ctx context.Context, progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	case <-ctx.Done():
	}
}

func fetchPlaylistsUpdate(userID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlists for %s...", userID),
	}
}

func foundPlaylistsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d playlists", total),
		Data:    total,
	}
}

func playlistSummarizedUpdate(step, total int, r PlaylistReport) ProgressUpdate {
	msg := fmt.Sprintf("Summarized %s", r.Playlist.Name)
	if r.Err != nil {
		msg = fmt.Sprintf("Failed %s: %v", r.Playlist.Name, r.Err)
	}
	return ProgressUpdate{
		Phase:   SummarizePlaylists,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    r,
	}
}

func recommendationsUpdate(step int, seed string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchRecommendations,
		Step:    step,
		Total:   1,
		Message: fmt.Sprintf("Fetching recommendations for %s...", seed),
	}
}

func createPlaylistUpdate(name string, tracks int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (%d tracks)", name, tracks),
	}
}

func gatherUpdate(phase Phase, step, total, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Collected %d tracks (%s)", count, phase),
		Data:    count,
	}
}
