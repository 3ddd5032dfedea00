// Package queue provides the playback order: the list of upcoming tracks,
// the history of played ones, and advancement between them.
package queue

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/strumapp/strum/internal/app/events"
	"github.com/strumapp/strum/internal/app/player"
	"github.com/strumapp/strum/internal/domain/track"
)

// Errors
var (
	ErrEmpty     = errors.New("queue is empty")
	ErrNoHistory = errors.New("no previously played track")
)

// Queue owns playback order. Advancing loads the next track into the worker
// through the handle; the worker reports resulting state transitions back
// through the hub.
type Queue struct {
	mu sync.Mutex

	upcoming []track.Track
	played   []track.Track
	current  *track.Track

	worker *player.Handle
	status *player.Status
}

// New creates an empty queue bound to the worker handle.
func New(worker *player.Handle, status *player.Status) *Queue {
	return &Queue{worker: worker, status: status}
}

// Append adds tracks to the end of the queue.
func (q *Queue) Append(tracks ...track.Track) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.upcoming = append(q.upcoming, tracks...)
}

// Current returns the currently loaded track, if any.
func (q *Queue) Current() (*track.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.current == nil {
		return nil, false
	}
	t := *q.current
	return &t, true
}

// Len returns the number of upcoming tracks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.upcoming)
}

// Advance moves to the next queued track and loads it into the worker,
// playing. manual distinguishes a user skip from natural end-of-track; a
// natural advance on an empty queue just stops.
func (q *Queue) Advance(manual bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.upcoming) == 0 {
		q.current = nil
		q.status.Update(player.StateStopped)
		if manual {
			return ErrEmpty
		}
		zlog.Debug().Msg("queue exhausted, playback stopped")
		return nil
	}

	next := q.upcoming[0]
	q.upcoming = q.upcoming[1:]
	if q.current != nil {
		q.played = append(q.played, *q.current)
	}
	q.current = &next

	if err := q.worker.Load(next, true, 0); err != nil {
		return errors.Wrapf(err, "failed to load %q", next.Name)
	}
	q.status.SetPosition(0)
	return nil
}

// Restore installs a previously played track as the current item, loaded
// paused at position. Used at startup; playback never starts without an
// explicit user action.
func (q *Queue) Restore(t track.Track, position time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.current = &t
	if err := q.worker.Load(t, false, position); err != nil {
		q.current = nil
		return errors.Wrapf(err, "failed to restore %q", t.Name)
	}
	q.status.Update(player.StatePaused)
	q.status.SetPosition(position)
	return nil
}

// Previous moves back to the most recently played track.
func (q *Queue) Previous() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.played) == 0 {
		return ErrNoHistory
	}

	prev := q.played[len(q.played)-1]
	q.played = q.played[:len(q.played)-1]
	if q.current != nil {
		q.upcoming = append([]track.Track{*q.current}, q.upcoming...)
	}
	q.current = &prev

	if err := q.worker.Load(prev, true, 0); err != nil {
		return errors.Wrapf(err, "failed to load %q", prev.Name)
	}
	q.status.SetPosition(0)
	return nil
}

// HandleSignal processes a queue maintenance signal raised outside the run
// loop.
func (q *Queue) HandleSignal(sig events.QueueSignal) {
	switch sig {
	case events.SignalPreloadNext:
		q.mu.Lock()
		var next *track.Track
		if len(q.upcoming) > 0 {
			t := q.upcoming[0]
			next = &t
		}
		q.mu.Unlock()
		if next == nil {
			return
		}
		zlog.Debug().Msgf("preloading %q", next.Name)
		if err := q.worker.Preload(*next); err != nil {
			zlog.Debug().Msgf("preload of %q failed: %v", next.Name, err)
		}
	case events.SignalReloadCurrent:
		cur, ok := q.Current()
		if !ok {
			return
		}
		pos := q.status.Progress()
		if err := q.worker.Load(*cur, q.status.State() == player.StatePlaying, pos); err != nil {
			zlog.Error().Msgf("failed to reload current track: %v", err)
		}
	default:
		zlog.Warn().Msgf("unhandled queue signal: %s", sig)
	}
}
