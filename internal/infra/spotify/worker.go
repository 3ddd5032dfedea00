package spotify

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/zmb3/spotify/v2"

	"github.com/strumapp/strum/internal/app/events"
	"github.com/strumapp/strum/internal/app/player"
	"github.com/strumapp/strum/internal/domain/track"
	"github.com/strumapp/strum/internal/infra/tasks"
)

const (
	// watchInterval is how often the worker polls remote playback state to
	// detect end-of-track.
	watchInterval = time.Second

	// endSlack is how close to the track duration the remote position must
	// be for a playback stop to count as track completion.
	endSlack = 1500 * time.Millisecond

	// preloadWindow is how far before the end of the playing track the
	// worker asks for the next one to be staged.
	preloadWindow = 10 * time.Second

	// maxWatchErrors is how many consecutive poll failures the watcher
	// tolerates before declaring the session dead.
	maxWatchErrors = 5
)

// Worker drives playback on a Spotify Connect device. It is bound to one
// device for its whole lifetime; device changes create a new worker.
type Worker struct {
	client *Client
	hub    *events.Hub
	runner *tasks.Runner

	deviceID   *spotify.ID // nil selects the currently active device
	deviceName string

	mu            sync.Mutex
	current       *track.Track
	playing       bool
	preloadPosted bool

	watchOnce sync.Once
	closeOnce sync.Once
	done      chan struct{}
}

// NewFactory returns a player.Factory producing workers bound to named
// Spotify Connect devices.
func NewFactory(client *Client, hub *events.Hub, runner *tasks.Runner) player.Factory {
	return func(device string) (player.Worker, error) {
		return NewWorker(context.Background(), client, hub, runner, device)
	}
}

// NewWorker creates a worker bound to the named device. An empty name binds
// to whichever device is currently active.
func NewWorker(ctx context.Context, client *Client, hub *events.Hub, runner *tasks.Runner, device string) (*Worker, error) {
	w := &Worker{
		client:     client,
		hub:        hub,
		runner:     runner,
		deviceName: device,
		done:       make(chan struct{}),
	}

	if device != "" {
		devices, err := client.Devices(ctx)
		if err != nil {
			return nil, err
		}

		var target *spotify.PlayerDevice
		for i := range devices {
			if devices[i].Name == device {
				target = &devices[i]
				break
			}
		}
		if target == nil {
			return nil, errors.Newf("output device %q not found", device)
		}

		w.deviceID = &target.ID
		if !target.Active {
			if err := client.api.TransferPlayback(ctx, target.ID, false); err != nil {
				return nil, errors.Wrapf(err, "failed to transfer playback to %q", device)
			}
		}
	}

	return w, nil
}

func (w *Worker) playOpts() *spotify.PlayOptions {
	return &spotify.PlayOptions{DeviceID: w.deviceID}
}

// Load starts the track at position. The Connect API has no load-paused
// primitive, so a paused load plays and immediately pauses.
func (w *Worker) Load(t track.Track, startPlaying bool, position time.Duration) error {
	ctx := context.Background()

	opt := w.playOpts()
	opt.URIs = []spotify.URI{spotify.URI(t.URI)}
	opt.PositionMs = spotify.Numeric(position.Milliseconds())

	err := w.client.retry(func() error {
		return w.client.api.PlayOpt(ctx, opt)
	})
	if err != nil {
		return errors.Wrapf(err, "failed to load %q", t.Name)
	}

	if !startPlaying {
		if err := w.client.api.PauseOpt(ctx, w.playOpts()); err != nil {
			return errors.Wrapf(err, "failed to pause %q after load", t.Name)
		}
	}

	w.mu.Lock()
	w.current = &t
	w.playing = startPlaying
	w.preloadPosted = false
	w.mu.Unlock()

	w.watchOnce.Do(func() {
		w.runner.Go("playback-watch", w.watch)
	})

	state := player.StatePaused
	if startPlaying {
		state = player.StatePlaying
	}
	w.hub.Post(events.PlayerStateChanged{State: state})
	return nil
}

// Pause suspends playback.
func (w *Worker) Pause() error {
	if err := w.client.api.PauseOpt(context.Background(), w.playOpts()); err != nil {
		return errors.Wrap(err, "failed to pause playback")
	}

	w.mu.Lock()
	w.playing = false
	w.mu.Unlock()

	w.hub.Post(events.PlayerStateChanged{State: player.StatePaused})
	return nil
}

// Resume continues playback of the loaded track.
func (w *Worker) Resume() error {
	if err := w.client.api.PlayOpt(context.Background(), w.playOpts()); err != nil {
		return errors.Wrap(err, "failed to resume playback")
	}

	w.mu.Lock()
	w.playing = true
	w.mu.Unlock()

	w.hub.Post(events.PlayerStateChanged{State: player.StatePlaying})
	return nil
}

// Preload stages the track in the remote device's play queue so the
// transition from the current track is gapless.
func (w *Worker) Preload(t track.Track) error {
	id := spotify.ID(ExtractTrackID(t.URI))
	if err := w.client.api.QueueSongOpt(context.Background(), id, w.playOpts()); err != nil {
		return errors.Wrapf(err, "failed to preload %q", t.Name)
	}
	return nil
}

// Seek moves the playback position within the loaded track.
func (w *Worker) Seek(position time.Duration) error {
	err := w.client.api.SeekOpt(context.Background(), int(position.Milliseconds()), w.playOpts())
	if err != nil {
		return errors.Wrap(err, "failed to seek")
	}
	return nil
}

// Stop halts playback and unloads the track.
func (w *Worker) Stop() error {
	if err := w.client.api.PauseOpt(context.Background(), w.playOpts()); err != nil {
		return errors.Wrap(err, "failed to stop playback")
	}

	w.mu.Lock()
	w.current = nil
	w.playing = false
	w.mu.Unlock()

	w.hub.Post(events.PlayerStateChanged{State: player.StateStopped})
	return nil
}

// Close tears the worker down. Playback is paused best-effort; the watcher
// goroutine exits on its next tick.
func (w *Worker) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)

		w.mu.Lock()
		playing := w.playing
		w.mu.Unlock()

		if playing {
			if err := w.client.api.PauseOpt(context.Background(), w.playOpts()); err != nil {
				zlog.Warn().Msgf("failed to pause %s during worker teardown: %v", w.describe(), err)
			}
		}
	})
	return nil
}

func (w *Worker) describe() string {
	if w.deviceName == "" {
		return "default device"
	}
	return w.deviceName
}

// watch polls remote playback state and posts end-of-track and session-death
// events. It runs until the worker is closed.
func (w *Worker) watch() {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	errCount := 0
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
		}

		ps, err := w.client.api.PlayerState(context.Background())
		if err != nil {
			errCount++
			zlog.Debug().Msgf("playback state poll failed (%d/%d): %v", errCount, maxWatchErrors, err)
			if errCount >= maxWatchErrors {
				zlog.Warn().Msgf("lost contact with %s", w.describe())
				w.hub.Post(events.SessionDied{})
				return
			}
			continue
		}
		errCount = 0

		w.mu.Lock()
		cur := w.current
		wasPlaying := w.playing
		preloadPosted := w.preloadPosted
		w.mu.Unlock()

		if cur == nil || !wasPlaying {
			continue
		}

		progress := time.Duration(ps.Progress) * time.Millisecond
		if ps.Playing {
			// Approaching the end of the playing track: ask for the next
			// one to be staged, once per load.
			if !preloadPosted && cur.Duration > 0 && cur.Duration-progress <= preloadWindow {
				w.mu.Lock()
				w.preloadPosted = true
				w.mu.Unlock()
				w.hub.Post(events.QueueChanged{Signal: events.SignalPreloadNext})
			}
			continue
		}

		// The remote stopped on its own. Near the end of the loaded track,
		// or rewound to zero, this is track completion.
		if ps.Item == nil || progress == 0 || cur.Duration-progress <= endSlack {
			w.mu.Lock()
			w.playing = false
			w.mu.Unlock()
			w.hub.Post(events.PlayerStateChanged{State: player.StateFinishedTrack})
		}
	}
}
