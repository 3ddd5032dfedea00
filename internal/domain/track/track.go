// Package track provides the Track domain entity.
package track

import (
	"strings"
	"time"
)

// Track represents a playable track entity.
// Contains only information retrieved from the Spotify API.
type Track struct {
	ID       string        // Spotify Track ID
	URI      string        // Spotify URI (spotify:track:<id>)
	Name     string        // Track name
	Artists  []string      // Artist names
	Album    string        // Album name
	Duration time.Duration // Track duration
}

// ArtistLine returns the artists joined for display and status publication.
func (t *Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// Equal reports whether two tracks refer to the same recording.
func (t *Track) Equal(other *Track) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.ID == other.ID
}
