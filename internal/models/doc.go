// Package models defines the entities musicpal persists.
//
//   - [Summary] : a rendered playlist genre summary with its playlist and failure counts
//   - [Interaction] : one user/song pair gathered from history, library or playlists
//
// Entities are created with NewX, receive their ID from the repository on Create and are never updated.
// The Repository[T] interface defines the data access operations shared by every repository.
package models
