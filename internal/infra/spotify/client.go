// Package spotify provides the Spotify Web API client and the remote
// playback worker built on top of it.
package spotify

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/strumapp/strum/internal/domain/track"
)

// Client is a Spotify API client.
type Client struct {
	api        *spotify.Client
	maxRetries int
	retryDelay time.Duration
}

// New creates a client from an already-acquired token. The underlying HTTP
// client refreshes the token automatically.
func New(ctx context.Context, clientID, clientSecret string, token *oauth2.Token) (*Client, error) {
	if clientID == "" {
		return nil, errors.New("spotify client ID is required")
	}
	if token == nil {
		return nil, errors.New("spotify token is required")
	}

	opts := []spotifyauth.AuthenticatorOption{
		spotifyauth.WithClientID(clientID),
	}
	if clientSecret != "" {
		opts = append(opts, spotifyauth.WithClientSecret(clientSecret))
	}
	auth := spotifyauth.New(opts...)

	return &Client{
		api:        spotify.New(auth.Client(ctx, token)),
		maxRetries: 3,
		retryDelay: time.Second,
	}, nil
}

// GetTrack retrieves track information by ID, URL, or URI.
func (c *Client) GetTrack(ctx context.Context, trackID string) (*track.Track, error) {
	id := ExtractTrackID(trackID)

	var result *spotify.FullTrack
	err := c.retry(func() error {
		t, err := c.api.GetTrack(ctx, spotify.ID(id))
		if err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get track")
	}

	return convertTrack(result), nil
}

// Devices lists the playback devices visible to the account.
func (c *Client) Devices(ctx context.Context) ([]spotify.PlayerDevice, error) {
	var devices []spotify.PlayerDevice
	err := c.retry(func() error {
		d, err := c.api.PlayerDevices(ctx)
		if err != nil {
			return err
		}
		devices = d
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list playback devices")
	}
	return devices, nil
}

// convertTrack converts a Spotify FullTrack to the domain Track.
func convertTrack(t *spotify.FullTrack) *track.Track {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	return &track.Track{
		ID:       string(t.ID),
		URI:      string(t.URI),
		Name:     t.Name,
		Artists:  artists,
		Album:    t.Album.Name,
		Duration: time.Duration(t.Duration) * time.Millisecond,
	}
}

// retry retries an operation with linear backoff.
func (c *Client) retry(fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			time.Sleep(c.retryDelay * time.Duration(i+1))
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable checks if an error is retryable. Rate limit and server errors
// are; everything else is not.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}

// ExtractTrackID extracts the track ID from a Spotify track URL or URI. Bare
// IDs pass through unchanged.
func ExtractTrackID(input string) string {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "spotify:track:") {
		return strings.TrimPrefix(input, "spotify:track:")
	}

	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/track/") {
		parts := strings.Split(input, "/track/")
		if len(parts) >= 2 {
			id := strings.Split(parts[len(parts)-1], "?")[0]
			id = strings.TrimRight(id, "/")
			return id
		}
	}

	return input
}
