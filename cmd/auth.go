package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"aniq/internal/server"
	"aniq/internal/services"
	"aniq/internal/shared"
)

// AniList OAuth2 endpoints
const (
	anilistAuthURL  = "https://anilist.co/api/v2/oauth/authorize"
	anilistTokenURL = "https://anilist.co/api/v2/oauth/token"
)

// loginTimeout bounds how long the callback server waits for the browser.
const loginTimeout = 3 * time.Minute

// AuthLogin runs the OAuth2 authorization-code flow against AniList and
// persists the resulting token to the config file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.AniList
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: set credentials.anilist.client_id and client_secret in config.toml", shared.ErrMissingCredentials)
	}

	redirect := creds.RedirectURI
	if redirect == "" {
		redirect = "http://localhost:8484/callback"
	}
	parsed, err := url.Parse(redirect)
	if err != nil {
		return fmt.Errorf("%w: bad redirect_uri: %v", shared.ErrInvalidConfig, err)
	}

	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  redirect,
		Endpoint: oauth2.Endpoint{
			AuthURL:  anilistAuthURL,
			TokenURL: anilistTokenURL,
		},
	}

	state := shared.GenerateID()
	handler := server.NewOAuthHandler(conf, state)
	authURL := conf.AuthCodeURL(state)

	r.writePlain("Opening browser for AniList authorization...\n")
	r.writePlain("If it does not open, visit:\n%s\n", authURL)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser: %v", err)
	}

	token, err := server.WaitForCallback(ctx, parsed.Host, handler, loginTimeout)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if client, ok := r.anilist.(*services.AniListClient); ok {
		client.SetToken(token.AccessToken)
	}

	if err := r.saveToken(token.AccessToken); err != nil {
		return err
	}

	r.logger.Info("authentication successful")
	return r.writePlain("✓ Authentication successful\n")
}

// AuthStatus checks whether the stored token is valid by running the Viewer query.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	name, err := r.anilist.Viewer(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return r.writePlain("✗ Not authenticated: %v\nRun `aniq auth login` first.\n", err)
		}
		return err
	}

	return r.writePlain("✓ Authenticated as %s\n", name)
}
