// Package services wraps the Spotify Web API for musicpal.
//
// # Catalog reads
//
// [SpotifyService] issues bearer-authenticated GET requests against the API base URL and implements [Catalog]:
// listing a user's playlists, listing a playlist's tracks and resolving an artist's genres. Paginated endpoints
// are followed through their "next" URL until the API returns null, and results are fully materialized before
// they are returned. Every request runs under a per-request timeout and may be paced with a [rate.Limiter].
//
// # Authentication
//
// A credential is acquired once and shared by reference:
//   - "access_token": a stored user token
//   - "auth_code": exchanged through the authorization code flow ([OAuthService])
//   - client credentials: [SpotifyService.AuthenticateClient], enough for public playlists and artists
//
// The [oauth2.Client] refreshes expired tokens when a refresh token is present.
//
// # Player
//
// [PlayerService] is built on github.com/zmb3/spotify/v2 and covers the user-scoped surface: the currently playing
// track, recommendations, the playback queue, recently played and saved tracks, and playlist creation.
//
// # Error Handling
//
// Failed requests return a [*FetchError] which matches, through [errors.Is]:
//   - [shared.ErrAPIRequest] : transport failure or non-2xx status
//   - [shared.ErrTimeout] : the per-request timeout fired
//   - [shared.ErrTokenExpired] : 401, reauthorization needed
//   - [shared.ErrMalformedResponse] : body could not be decoded
//
// Calls made before authenticating return [shared.ErrNotAuthenticated].
package services
