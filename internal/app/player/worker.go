package player

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/strumapp/strum/internal/domain/track"
)

// ErrNoWorker is returned when an operation is attempted without an active
// playback worker.
var ErrNoWorker = errors.New("no active playback worker")

// Worker is the opaque playback engine handle. A worker is bound to one
// audio output device for its whole lifetime; changing devices means tearing
// the worker down and creating a new one.
type Worker interface {
	// Load loads a track at the given position, optionally starting playback.
	Load(t track.Track, startPlaying bool, position time.Duration) error
	Pause() error
	Resume() error
	Seek(position time.Duration) error
	Stop() error
	// Close tears the worker down. The worker must not be used afterwards.
	Close() error
}

// Preloader is implemented by workers that can stage the upcoming track
// ahead of time for a gapless transition.
type Preloader interface {
	Preload(t track.Track) error
}

// Factory creates a worker bound to the named audio output device. An empty
// device name selects the system default output.
type Factory func(device string) (Worker, error)

// Handle holds the single active worker. At most one worker exists at a
// time; Swap is only called from the run-loop goroutine.
type Handle struct {
	mu sync.Mutex
	w  Worker
}

// NewHandle creates a handle, optionally seeded with an initial worker.
func NewHandle(w Worker) *Handle {
	return &Handle{w: w}
}

// Swap installs a new worker and returns the previous one (may be nil).
func (h *Handle) Swap(w Worker) Worker {
	h.mu.Lock()
	defer h.mu.Unlock()

	old := h.w
	h.w = w
	return old
}

// Get returns the active worker, or nil if none is installed.
func (h *Handle) Get() Worker {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.w
}

// Load forwards to the active worker.
func (h *Handle) Load(t track.Track, startPlaying bool, position time.Duration) error {
	w := h.Get()
	if w == nil {
		return ErrNoWorker
	}
	return w.Load(t, startPlaying, position)
}

// Pause forwards to the active worker.
func (h *Handle) Pause() error {
	w := h.Get()
	if w == nil {
		return ErrNoWorker
	}
	return w.Pause()
}

// Resume forwards to the active worker.
func (h *Handle) Resume() error {
	w := h.Get()
	if w == nil {
		return ErrNoWorker
	}
	return w.Resume()
}

// Seek forwards to the active worker.
func (h *Handle) Seek(position time.Duration) error {
	w := h.Get()
	if w == nil {
		return ErrNoWorker
	}
	return w.Seek(position)
}

// Stop forwards to the active worker.
func (h *Handle) Stop() error {
	w := h.Get()
	if w == nil {
		return ErrNoWorker
	}
	return w.Stop()
}

// Preload forwards to the active worker if it supports preloading; workers
// without preload support make it a no-op.
func (h *Handle) Preload(t track.Track) error {
	w := h.Get()
	if w == nil {
		return ErrNoWorker
	}
	p, ok := w.(Preloader)
	if !ok {
		return nil
	}
	return p.Preload(t)
}
