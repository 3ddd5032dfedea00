// Package commands provides the command manager: the registry mapping parsed
// commands onto queue, worker and UI mutations.
package commands

import (
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/strumapp/strum/internal/app/command"
	"github.com/strumapp/strum/internal/app/player"
	"github.com/strumapp/strum/internal/domain/track"
	"github.com/strumapp/strum/internal/infra/config"
)

// UI is the surface the manager can terminate. Quit must be idempotent.
type UI interface {
	Quit()
}

// Queue is the playback-order collaborator.
type Queue interface {
	Current() (*track.Track, bool)
	Advance(manual bool) error
	Previous() error
}

// Manager dispatches commands. It runs on the run-loop goroutine only.
type Manager struct {
	ui     UI
	queue  Queue
	worker *player.Handle
	status *player.Status
	state  *config.State

	handlers map[string]func(args []string) error
}

// New creates a manager and registers all command handlers.
func New(ui UI, queue Queue, worker *player.Handle, status *player.Status, state *config.State) *Manager {
	m := &Manager{
		ui:     ui,
		queue:  queue,
		worker: worker,
		status: status,
		state:  state,
	}
	m.handlers = map[string]func(args []string) error{
		"play":      m.play,
		"pause":     m.pause,
		"playpause": m.playPause,
		"stop":      m.stop,
		"next":      m.next,
		"previous":  m.previous,
		"seek":      m.seek,
		"quit":      m.quit,
	}
	return m
}

// Handle dispatches one command. State transitions resulting from worker
// operations are reported back through the event hub by the worker itself.
func (m *Manager) Handle(c command.Command) error {
	handler, ok := m.handlers[c.Name]
	if !ok {
		return errors.Newf("no handler for command %q", c.Name)
	}
	return handler(c.Args)
}

func (m *Manager) play([]string) error {
	switch m.status.State() {
	case player.StatePlaying:
		return nil
	case player.StatePaused:
		return m.worker.Resume()
	default:
		return m.queue.Advance(true)
	}
}

func (m *Manager) pause([]string) error {
	if m.status.State() != player.StatePlaying {
		return nil
	}
	return m.worker.Pause()
}

func (m *Manager) playPause(args []string) error {
	if m.status.State() == player.StatePlaying {
		return m.pause(args)
	}
	return m.play(args)
}

func (m *Manager) stop([]string) error {
	return m.worker.Stop()
}

func (m *Manager) next([]string) error {
	return m.queue.Advance(true)
}

func (m *Manager) previous([]string) error {
	return m.queue.Previous()
}

func (m *Manager) seek(args []string) error {
	if len(args) != 1 {
		return errors.New("seek requires a position in milliseconds")
	}
	ms, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || ms < 0 {
		return errors.Newf("invalid seek position %q", args[0])
	}

	pos := time.Duration(ms) * time.Millisecond
	if err := m.worker.Seek(pos); err != nil {
		return err
	}
	m.status.SetPosition(pos)
	return nil
}

// quit persists the playback snapshot and stops the UI. Safe to dispatch
// repeatedly; the first call wins.
func (m *Manager) quit([]string) error {
	state, progress := m.status.Snapshot()
	var uri string
	if cur, ok := m.queue.Current(); ok {
		uri = cur.URI
	}
	if err := m.state.SetPlayback(state.String(), uri, progress.Milliseconds()); err != nil {
		zlog.Warn().Msgf("failed to persist playback state: %v", err)
	}
	m.ui.Quit()
	return nil
}
