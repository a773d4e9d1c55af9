// Package server runs the local HTTP endpoint that completes the Spotify authorization code flow.
//
// # Router Infrastructure
//
// [BasicRouter] implements [Router] on [http.ServeMux]. Method-specific routes use method-qualified mux patterns.
// [Middleware] is applied with the first added outermost; [Logging] and [Recover] are provided.
//
// # OAuth Callback
//
// [OAuthHandler] validates the state parameter, exchanges the authorization code for a token and publishes a single
// [OAuthResult]. Later callbacks are rejected.
//
// [CallbackServer] hosts the handler on the configured address (127.0.0.1:3000 by default) while the user
// authorizes in the browser, then shuts down once a result arrives or the wait times out.
package server
