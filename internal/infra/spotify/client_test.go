package spotify

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestExtractTrackID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Spotify URI",
			input: "spotify:track:4iV5W9uYEdYUVa79Axb7Rh",
			want:  "4iV5W9uYEdYUVa79Axb7Rh",
		},
		{
			name:  "Open URL",
			input: "https://open.spotify.com/track/4iV5W9uYEdYUVa79Axb7Rh",
			want:  "4iV5W9uYEdYUVa79Axb7Rh",
		},
		{
			name:  "URL with query parameters",
			input: "https://open.spotify.com/track/4iV5W9uYEdYUVa79Axb7Rh?si=xyz",
			want:  "4iV5W9uYEdYUVa79Axb7Rh",
		},
		{
			name:  "Intl URL",
			input: "https://open.spotify.com/intl-ja/track/4iV5W9uYEdYUVa79Axb7Rh",
			want:  "4iV5W9uYEdYUVa79Axb7Rh",
		},
		{
			name:  "Bare ID passes through",
			input: "4iV5W9uYEdYUVa79Axb7Rh",
			want:  "4iV5W9uYEdYUVa79Axb7Rh",
		},
		{
			name:  "Whitespace trimmed",
			input: "  spotify:track:abc  ",
			want:  "abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTrackID(tt.input))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "Nil", err: nil, want: false},
		{name: "Rate limit", err: errors.New("rate limit exceeded"), want: true},
		{name: "429", err: errors.New("HTTP 429"), want: true},
		{name: "Server error", err: errors.New("HTTP 503 Service Unavailable"), want: true},
		{name: "Bad request", err: errors.New("HTTP 400 Bad Request"), want: false},
		{name: "Not found", err: errors.New("HTTP 404"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}

func TestClientRetry(t *testing.T) {
	c := &Client{maxRetries: 3, retryDelay: 0}

	// Retryable errors are attempted until success.
	calls := 0
	err := c.retry(func() error {
		calls++
		if calls < 3 {
			return errors.New("HTTP 503")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	// Non-retryable errors fail fast.
	calls = 0
	err = c.retry(func() error {
		calls++
		return errors.New("HTTP 400")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)

	// Exhausting retries surfaces the last error.
	calls = 0
	err = c.retry(func() error {
		calls++
		return errors.New("HTTP 503")
	})
	assert.ErrorContains(t, err, "max retries exceeded")
	assert.Equal(t, 3, calls)
}
