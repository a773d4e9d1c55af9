// Package repositories implements SQLite persistence for musicpal's entities.
//
// Key Implementations:
//   - [SummaryRepository] : rendered playlist summaries, listed newest first per user
//   - [InteractionRepository] : gathered user/song interactions, written in bulk inside one transaction
//
// Lookups of missing records fail with [shared.ErrNotFound]. The schema is created by [shared.RunMigrations].
package repositories
