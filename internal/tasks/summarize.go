package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicpal/internal/genres"
	"github.com/desertthunder/musicpal/internal/services"
	"github.com/desertthunder/musicpal/internal/shared"
	"github.com/getsentry/sentry-go"
)

const defaultWorkers = 5

// SummaryOpts contains configuration for playlist summaries.
type SummaryOpts struct {
	Workers  int  // Concurrent playlist tasks (default: 5)
	FailFast bool // Abort on the first failed playlist instead of reporting it inline
}

// PlaylistReport is the genre breakdown of one playlist.
type PlaylistReport struct {
	Playlist services.Playlist
	Shares   []genres.Share
	Tags     int   // genre tags counted, repeats included
	Err      error // set when the playlist could not be summarized
}

// FormatReport renders a report block: the playlist name, one line per category and a trailing blank line.
func FormatReport(r PlaylistReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Playlist: %s\n", r.Playlist.Name)
	if r.Err != nil {
		fmt.Fprintf(&b, "Error: %v\n", r.Err)
	} else {
		for _, s := range r.Shares {
			fmt.Fprintf(&b, "%s: %.2f%%\n", s.Category, s.Percent)
		}
	}
	b.WriteString("\n")
	return b.String()
}

// SummaryResult holds every playlist report in the order the tasks completed.
type SummaryResult struct {
	UserID  string
	Reports []PlaylistReport
	Failed  int
}

// Header returns the summary's opening line followed by a blank line.
func (r *SummaryResult) Header() string {
	return fmt.Sprintf("Summary for user %s:\n\n", r.UserID)
}

// Text renders the full summary.
func (r *SummaryResult) Text() string {
	var b strings.Builder
	b.WriteString(r.Header())
	for _, rep := range r.Reports {
		b.WriteString(FormatReport(rep))
	}
	return b.String()
}

// SummaryEngine summarizes the genre composition of a user's playlists.
type SummaryEngine struct {
	catalog services.Catalog
	opts    SummaryOpts
	logger  *log.Logger
}

// NewSummaryEngine creates a [SummaryEngine]. A nil logger discards output.
func NewSummaryEngine(catalog services.Catalog, opts SummaryOpts, logger *log.Logger) *SummaryEngine {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &SummaryEngine{catalog: catalog, opts: opts, logger: logger}
}

// SummarizePlaylist fetches the playlist's tracks, resolves every artist's genres one at a time and tallies them.
func (e *SummaryEngine) SummarizePlaylist(ctx context.Context, pl services.Playlist) (PlaylistReport, error) {
	report := PlaylistReport{Playlist: pl}

	tracks, err := e.catalog.PlaylistTracks(ctx, pl.ID)
	if err != nil {
		return report, fmt.Errorf("failed to fetch tracks: %w", err)
	}

	var tally genres.Tally
	for _, track := range tracks {
		for _, artistID := range track.ArtistIDs {
			tags, err := e.catalog.ArtistGenres(ctx, artistID)
			if err != nil {
				return report, fmt.Errorf("failed to resolve genres for artist %s: %w", artistID, err)
			}
			tally.AddAll(tags)
		}
	}

	report.Shares = tally.Percentages()
	report.Tags = tally.Total()
	return report, nil
}

// Summarize lists the user's playlists and summarizes them on a fixed pool of workers.
//
// Reports are collected as tasks complete. One [SummarizePlaylists] update is sent per completed playlist, with
// Step running from 1 to the playlist count. A failed playlist is reported inline unless FailFast is set, in which
// case the first failure cancels the remaining work and is returned.
func (e *SummaryEngine) Summarize(ctx context.Context, userID string, progress chan<- ProgressUpdate) (*SummaryResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id", shared.ErrMissingArgument)
	}

	span := sentry.StartSpan(ctx, "summarize", sentry.WithDescription(userID))
	defer span.Finish()
	ctx = span.Context()

	sendProgress(ctx, progress, fetchPlaylistsUpdate(userID))

	playlists, err := e.catalog.UserPlaylists(ctx, userID)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	total := len(playlists)
	sendProgress(ctx, progress, foundPlaylistsUpdate(total))
	e.logger.Info("summarizing playlists", "user", userID, "playlists", total, "workers", e.opts.Workers)

	result := &SummaryResult{UserID: userID, Reports: make([]PlaylistReport, 0, total)}
	if total == 0 {
		return result, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan services.Playlist, total)
	for _, pl := range playlists {
		jobs <- pl
	}
	close(jobs)

	results := make(chan PlaylistReport, total)

	var wg sync.WaitGroup
	for range min(e.opts.Workers, total) {
		wg.Add(1)
		go e.summaryWorker(ctx, &wg, jobs, results)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	completed := 0
	for rep := range results {
		if firstErr != nil {
			continue
		}

		if rep.Err != nil {
			result.Failed++
			e.logger.Warn("playlist failed", "playlist", rep.Playlist.Name, "error", rep.Err)
			if e.opts.FailFast {
				firstErr = fmt.Errorf("playlist %q: %w", rep.Playlist.Name, rep.Err)
				cancel()
				continue
			}
		}

		completed++
		result.Reports = append(result.Reports, rep)
		sendProgress(ctx, progress, playlistSummarizedUpdate(completed, total, rep))
	}

	if firstErr != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		span.Status = sentry.SpanStatusCanceled
		return nil, err
	}

	span.Status = sentry.SpanStatusOK
	return result, nil
}

// summaryWorker summarizes playlists from the jobs channel until it is drained or ctx ends.
func (e *SummaryEngine) summaryWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan services.Playlist,
	results chan<- PlaylistReport,
) {
	defer wg.Done()

	for pl := range jobs {
		if ctx.Err() != nil {
			return
		}

		span := sentry.StartSpan(ctx, "summarize.playlist", sentry.WithDescription(pl.Name))
		rep, err := e.SummarizePlaylist(span.Context(), pl)
		if err != nil {
			rep.Err = err
			span.Status = sentry.SpanStatusInternalError
			if ctx.Err() == nil {
				sentry.CaptureException(err)
			}
		}
		span.Finish()

		results <- rep
	}
}
