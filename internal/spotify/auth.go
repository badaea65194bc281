// Package spotify wraps the Web API client with the policies the rest
// of the tool relies on: credential loading, request pacing, transient
// retry, and error classification into the shared sentinel errors.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/franz/tune2spot/internal/util"
)

// Credentials holds the application and user secrets. RefreshToken is
// only needed for playlist mutation; search works with the app
// credentials alone.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// LoadCredentials reads credentials from the environment, after loading
// a .env file if one is present in the working directory.
func LoadCredentials() (Credentials, error) {
	_ = godotenv.Load()

	c := Credentials{
		ClientID:     os.Getenv("SPOTIFY_ID"),
		ClientSecret: os.Getenv("SPOTIFY_SECRET"),
		RefreshToken: os.Getenv("SPOTIFY_REFRESH_TOKEN"),
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return Credentials{}, fmt.Errorf("%w: SPOTIFY_ID and SPOTIFY_SECRET must be set", util.ErrInvalidConfig)
	}
	return c, nil
}

// searchHTTPClient authenticates with the client-credentials flow,
// which is sufficient for catalog search.
func searchHTTPClient(ctx context.Context, c Credentials) *http.Client {
	config := &clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return config.Client(ctx)
}

// userHTTPClient authenticates as the user via a refresh token, which
// playlist mutation requires.
func userHTTPClient(ctx context.Context, c Credentials) (*http.Client, error) {
	if c.RefreshToken == "" {
		return nil, fmt.Errorf("%w: SPOTIFY_REFRESH_TOKEN must be set for playlist operations", util.ErrInvalidConfig)
	}
	auth := spotifyauth.New(
		spotifyauth.WithClientID(c.ClientID),
		spotifyauth.WithClientSecret(c.ClientSecret),
		spotifyauth.WithScopes(
			spotifyauth.ScopePlaylistReadPrivate,
			spotifyauth.ScopePlaylistModifyPrivate,
			spotifyauth.ScopePlaylistModifyPublic,
		),
	)
	token := &oauth2.Token{RefreshToken: c.RefreshToken}
	return auth.Client(ctx, token), nil
}

// NewSearchClient builds a client capable of catalog search only.
func NewSearchClient(ctx context.Context, c Credentials) *Client {
	return newClient(spotifyapi.New(searchHTTPClient(ctx, c)))
}

// NewUserClient builds a client capable of search and playlist
// mutation.
func NewUserClient(ctx context.Context, c Credentials) (*Client, error) {
	httpClient, err := userHTTPClient(ctx, c)
	if err != nil {
		return nil, err
	}
	return newClient(spotifyapi.New(httpClient)), nil
}
