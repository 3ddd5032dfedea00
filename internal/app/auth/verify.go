package auth

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// SpotifyVerifier validates a token against the Spotify Web API by fetching
// the current user's profile.
type SpotifyVerifier struct {
	clientID     string
	clientSecret string
}

// NewSpotifyVerifier creates a verifier for the configured OAuth client.
func NewSpotifyVerifier(clientID, clientSecret string) *SpotifyVerifier {
	return &SpotifyVerifier{clientID: clientID, clientSecret: clientSecret}
}

// Verify implements Verifier.
func (v *SpotifyVerifier) Verify(ctx context.Context, token *oauth2.Token) error {
	opts := []spotifyauth.AuthenticatorOption{
		spotifyauth.WithClientID(v.clientID),
	}
	if v.clientSecret != "" {
		opts = append(opts, spotifyauth.WithClientSecret(v.clientSecret))
	}
	authenticator := spotifyauth.New(opts...)

	client := spotify.New(authenticator.Client(ctx, token))
	if _, err := client.CurrentUser(ctx); err != nil {
		return errors.Wrap(err, "credential validation failed")
	}
	return nil
}
