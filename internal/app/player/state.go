// Package player defines the playback lifecycle surface shared between the
// run loop, the command manager and the playback worker.
package player

// State represents the playback lifecycle state. Transitions originate only
// from the playback worker.
type State int

const (
	StateStopped       State = iota // No track loaded
	StatePaused                     // Track loaded, not advancing
	StatePlaying                    // Track is playing
	StateFinishedTrack              // Track reached its natural end
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	case StateFinishedTrack:
		return "finished_track"
	default:
		return "unknown"
	}
}

// ParseState parses a persisted state string. Unknown values map to
// StateStopped so a corrupt state file cannot auto-start playback.
func ParseState(s string) State {
	switch s {
	case "playing":
		return StatePlaying
	case "paused":
		return StatePaused
	default:
		return StateStopped
	}
}
