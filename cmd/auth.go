package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/musicpal/internal/server"
	"github.com/desertthunder/musicpal/internal/services"
	"github.com/desertthunder/musicpal/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

var authTimeout = 2 * time.Minute

// AuthLogin performs the OAuth2 authorization code flow and stores the token in the config file.
//
// Starts a local HTTP server, opens the browser for user authorization, and exchanges the code for tokens.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.login(ctx, "authorization"); err != nil {
		return err
	}

	r.writePlain("You can now use: musicpal recommend\n")
	return nil
}

// AuthStatus reports the user behind the stored token.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	var user *services.User
	err := r.withReauth(ctx, func() error {
		player, err := r.ensurePlayer(ctx)
		if err != nil {
			return err
		}
		user, err = player.CurrentUser(ctx)
		return err
	})
	if err != nil {
		return err
	}

	r.writePlain("✓ Authenticated with Spotify\n")
	if user.DisplayName != "" {
		r.writePlain("User: %s (%s)\n", user.DisplayName, user.ID)
	} else {
		r.writePlain("User: %s\n", user.ID)
	}

	if token := r.config.Credentials.Spotify.Token(); token != nil && !token.Expiry.IsZero() {
		r.writePlain("Token expiry: %s\n", token.Expiry.Format(time.RFC3339))
	}
	return nil
}

// login runs the browser flow, saves the token and switches the service to it.
func (r *Runner) login(ctx context.Context, prefix string) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	token, err := r.doOAuth(ctx, r.spotify, prefix)
	if err != nil {
		return err
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}

	if err := r.spotify.OAuthenticate(ctx, token); err != nil {
		return fmt.Errorf("failed to authenticate with new tokens: %w", err)
	}
	r.userAuth = true
	r.catalog = r.spotify
	r.player = nil

	r.writePlainln("✓ %s successful", capitalize(prefix))
	if r.configPath != "" {
		r.writePlain("✓ Tokens saved to %s\n", r.configPath)
	}
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local callback server.
func (r *Runner) doOAuth(ctx context.Context, oauthSrv services.OAuthService, prefix string) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	handler := server.NewOAuthHandler(oauthSrv.GetOAuthConfig(), state)
	callback := server.NewCallbackServer(handler, shared.WithLogger(r.logger, "component", "oauth"))

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	if err := callback.Start(addr); err != nil {
		return nil, err
	}

	authURL := oauthSrv.GetAuthURL(state)
	r.writePlain("→ Opening browser for Spotify %s...\n", prefix)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", authTimeout)

	token, err := callback.Wait(ctx, authTimeout)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	return token, nil
}

// saveTokens stores token in the config and writes it to the config path when one is set.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrMissingConfig)
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if r.configPath == "" {
		return nil
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// ensureCatalog returns a catalog ready for reads. A stored user token is preferred; without one the app-only
// client credentials grant is used, which is enough for public playlists and artists.
func (r *Runner) ensureCatalog(ctx context.Context) (services.Catalog, error) {
	if r.spotify == nil {
		if r.catalog == nil {
			return nil, fmt.Errorf("%w: Spotify client_id and client_secret must be configured", shared.ErrServiceUnavailable)
		}
		return r.catalog, nil
	}

	if r.spotify.Token() == nil {
		if token := r.config.Credentials.Spotify.Token(); token != nil {
			if err := r.spotify.OAuthenticate(ctx, token); err != nil {
				return nil, err
			}
			r.userAuth = true
		} else {
			r.logger.Debug("no stored token, using client credentials")
			if err := r.spotify.AuthenticateClient(ctx); err != nil {
				return nil, err
			}
		}
	}

	if r.catalog == nil {
		r.catalog = r.spotify
	}
	return r.catalog, nil
}

// ensurePlayer returns a player for user-scoped endpoints, which need a token from `auth login`.
func (r *Runner) ensurePlayer(ctx context.Context) (services.Player, error) {
	if r.player != nil {
		return r.player, nil
	}
	if r.spotify == nil {
		return nil, fmt.Errorf("%w: Spotify client_id and client_secret must be configured", shared.ErrServiceUnavailable)
	}

	if !r.userAuth {
		token := r.config.Credentials.Spotify.Token()
		if token == nil {
			return nil, fmt.Errorf("%w: run `musicpal auth login` first", shared.ErrNotAuthenticated)
		}
		if err := r.spotify.OAuthenticate(ctx, token); err != nil {
			return nil, err
		}
		r.userAuth = true
		if r.catalog == nil {
			r.catalog = r.spotify
		}
	}

	player, err := r.spotify.Player()
	if err != nil {
		return nil, err
	}
	r.player = player
	return player, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
