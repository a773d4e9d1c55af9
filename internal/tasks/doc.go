// Package tasks implements musicpal's operations on top of the services layer, with real-time progress reporting.
//
// # Playlist Summaries
//
// [SummaryEngine.Summarize] is the core pipeline:
//
//  1. List every playlist of the user ([services.Catalog.UserPlaylists])
//  2. Summarize each playlist on a fixed pool of workers (5 by default)
//     - Fetch the playlist's tracks
//     - Resolve the genres of every artist of every track, one request at a time
//     - Tally the tags into [genres.Category] percentages of the total tag count
//  3. Collect the reports in completion order behind a "Summary for user <id>:" header
//
// A playlist that fails is reported inline as an "Error:" line. [SummaryOpts.FailFast] aborts the whole summary
// on the first failure instead.
//
// # Player Operations
//
//   - [Recommender] : recommendations seeded by a song or the currently playing track
//   - [QueueManager] : add a track to the playback queue
//   - [PlaylistGenerator] : mood-seeded recommendations, optionally saved as a private playlist
//   - [GatherEngine] : user/song interaction rows from history, library and playlists
//
// # Progress Reporting
//
// Operations accept an optional send-only channel of [ProgressUpdate]. Sends block until received or the context
// ends, so a caller that passes a channel must keep draining it. Pass nil to disable reporting.
package tasks
