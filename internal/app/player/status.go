package player

import (
	"sync"
	"time"
)

// Status tracks the current playback state and elapsed position. It is
// updated from player state events on the run-loop goroutine and read by the
// command manager and the device hot-swap procedure.
type Status struct {
	mu sync.Mutex

	state        State
	playingSince time.Time
	elapsed      time.Duration // accumulated position before playingSince
}

// NewStatus creates a stopped status.
func NewStatus() *Status {
	return &Status{state: StateStopped}
}

// Update applies a state transition reported by the playback worker.
func (s *Status) Update(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	switch state {
	case StatePlaying:
		if s.state != StatePlaying {
			s.playingSince = now
		}
	case StatePaused:
		if s.state == StatePlaying {
			s.elapsed += now.Sub(s.playingSince)
		}
	case StateStopped, StateFinishedTrack:
		s.elapsed = 0
	}
	s.state = state
}

// SetPosition overrides the tracked position, e.g. after a load or seek.
func (s *Status) SetPosition(pos time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.elapsed = pos
	s.playingSince = time.Now()
}

// State returns the current playback state.
func (s *Status) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Progress returns the current position within the loaded track.
func (s *Status) Progress() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StatePlaying {
		return s.elapsed + time.Since(s.playingSince)
	}
	return s.elapsed
}

// Snapshot returns state and progress atomically, for the device hot-swap
// procedure which needs a consistent view of both.
func (s *Status) Snapshot() (State, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	progress := s.elapsed
	if s.state == StatePlaying {
		progress += time.Since(s.playingSince)
	}
	return s.state, progress
}
