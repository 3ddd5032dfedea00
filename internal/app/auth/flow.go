package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// oauthScopes is the fixed scope set bound into every authorization URL.
var oauthScopes = []string{
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopeStreaming,
	spotifyauth.ScopeUserFollowModify,
	spotifyauth.ScopeUserFollowRead,
	spotifyauth.ScopeUserLibraryModify,
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopeUserModifyPlaybackState,
	spotifyauth.ScopeUserReadCurrentlyPlaying,
	spotifyauth.ScopeUserReadPlaybackState,
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadRecentlyPlayed,
	spotifyauth.ScopeUserTopRead,
}

type exchangeResult struct {
	token *oauth2.Token
	err   error
}

// runFlow executes one interactive OAuth attempt: bind the redirect
// listener, open the authorization URL, wait for exactly one redirect and
// exchange the code for a token. withSecret selects the Authorization-Code
// flow; otherwise PKCE is used.
func (a *Acquirer) runFlow(ctx context.Context, withSecret bool) (*oauth2.Token, error) {
	ln, err := a.listen()
	if err != nil {
		// No free local port is an unrecoverable configuration error.
		return nil, errors.Wrap(err, "failed to bind OAuth redirect listener")
	}
	defer ln.Close()

	conf := &oauth2.Config{
		ClientID:    a.clientID,
		RedirectURL: redirectURIFor(ln),
		Scopes:      oauthScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyauth.AuthURL,
			TokenURL: spotifyauth.TokenURL,
		},
	}

	var authOpts, exchangeOpts []oauth2.AuthCodeOption
	if withSecret {
		conf.ClientSecret = a.clientSecret
	} else {
		verifier := oauth2.GenerateVerifier()
		authOpts = append(authOpts, oauth2.S256ChallengeOption(verifier))
		exchangeOpts = append(exchangeOpts, oauth2.VerifierOption(verifier))
	}

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	authURL := conf.AuthCodeURL(state, authOpts...)
	fmt.Fprintf(a.console, "Browse to: %s\n\n", authURL)
	if err := a.openBrowser(authURL); err != nil {
		zlog.Warn().Msgf("failed to open browser: %v", err)
	}

	code, err := awaitRedirect(ln)
	if err != nil {
		return nil, err
	}
	zlog.Debug().Msg("received authorization code")

	// The exchange's blocking network call runs on its own goroutine and is
	// recombined over a one-shot channel, so whichever thread triggered
	// acquisition never performs the call itself.
	resultCh := make(chan exchangeResult, 1)
	a.runner.Go("token-exchange", func() {
		token, err := conf.Exchange(ctx, code, exchangeOpts...)
		resultCh <- exchangeResult{token: token, err: err}
	})

	result := <-resultCh
	if result.err != nil {
		return nil, errors.Wrap(result.err, "token exchange failed")
	}
	return result.token, nil
}

// randomState generates the CSRF state parameter.
func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to generate state parameter")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
