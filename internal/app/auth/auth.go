// Package auth implements credential acquisition: a local token cache backed
// by two interactive OAuth flows (PKCE and Authorization-Code) over an
// ephemeral loopback listener.
package auth

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"

	zlog "github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/strumapp/strum/internal/infra/tasks"
)

// Credentials is the bearer token bundle used by the rest of the client. It
// is replaced wholesale on refresh, never mutated in place.
type Credentials struct {
	Token *oauth2.Token
}

// Verifier validates tentative credentials against the backing service. A
// cached token can pass the presence check and still be revoked; only a
// round trip proves it.
type Verifier interface {
	Verify(ctx context.Context, token *oauth2.Token) error
}

// Options configures an Acquirer. Cache, Verifier and Runner are required;
// the rest default to the production implementations.
type Options struct {
	ClientID     string
	ClientSecret string

	Cache    *Cache
	Verifier Verifier
	Runner   *tasks.Runner

	// Console receives interactive login prompts and errors. Acquisition
	// happens before the UI claims the terminal. Defaults to stderr.
	Console io.Writer
	// OpenBrowser opens the authorization URL. Defaults to the platform
	// opener.
	OpenBrowser func(url string) error
	// Listen binds the redirect listener. Defaults to an ephemeral port on
	// 127.0.0.1.
	Listen func() (net.Listener, error)
}

// Acquirer obtains credentials, blocking until it succeeds or hits an
// unrecoverable configuration error.
type Acquirer struct {
	clientID     string
	clientSecret string
	cache        *Cache
	verifier     Verifier
	runner       *tasks.Runner
	console      io.Writer
	openBrowser  func(url string) error
	listen       func() (net.Listener, error)
}

// New creates an Acquirer from options.
func New(opts Options) *Acquirer {
	a := &Acquirer{
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		cache:        opts.Cache,
		verifier:     opts.Verifier,
		runner:       opts.Runner,
		console:      opts.Console,
		openBrowser:  opts.OpenBrowser,
		listen:       opts.Listen,
	}
	if a.console == nil {
		a.console = os.Stderr
	}
	if a.openBrowser == nil {
		a.openBrowser = openBrowser
	}
	if a.listen == nil {
		a.listen = defaultListen
	}
	return a
}

// Acquire returns valid credentials. Cached credentials are used when they
// verify against the service; otherwise the interactive login runs, and the
// verify-then-login loop repeats until verification succeeds. Login failures
// themselves (bind failure, malformed redirect, exchange failure) surface to
// the caller.
func (a *Acquirer) Acquire(ctx context.Context) (*Credentials, error) {
	token, err := a.cache.Load()
	if err != nil {
		zlog.Warn().Msgf("ignoring unreadable credential cache: %v", err)
		token = nil
	}

	if token != nil {
		zlog.Info().Msg("using cached credentials")
	} else {
		zlog.Info().Msg("attempting login via OAuth2")
		token, err = a.promptLogin(ctx, nil)
		if err != nil {
			return nil, err
		}
	}

	// A stale cache passes the presence check but may be revoked; validate
	// and re-prompt until the service accepts the token.
	for {
		verifyErr := a.verifier.Verify(ctx, token)
		if verifyErr == nil {
			break
		}
		token, err = a.promptLogin(ctx, verifyErr)
		if err != nil {
			return nil, err
		}
	}

	if err := a.cache.Save(token); err != nil {
		zlog.Warn().Msgf("failed to cache credentials: %v", err)
	}

	return &Credentials{Token: token}, nil
}

// promptLogin reports the previous failure on the startup console and runs
// one interactive login attempt.
func (a *Acquirer) promptLogin(ctx context.Context, cause error) (*oauth2.Token, error) {
	if cause != nil {
		fmt.Fprintf(a.console, "Connection error: %v\n", cause)
	}

	fmt.Fprintf(a.console, "To login you need to perform OAuth2 authorization using your web browser\n\n")

	if a.clientSecret != "" {
		zlog.Info().Msg("using Authorization Code flow with client secret")
		return a.runFlow(ctx, true)
	}
	zlog.Info().Msg("using PKCE flow (no client secret)")
	return a.runFlow(ctx, false)
}
