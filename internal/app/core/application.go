// Package core provides the application run loop: the single goroutine that
// steps the UI, polls process signals and drains the event hub, dispatching
// every event to its collaborator.
package core

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/strumapp/strum/internal/app/command"
	"github.com/strumapp/strum/internal/app/events"
	"github.com/strumapp/strum/internal/app/player"
	"github.com/strumapp/strum/internal/domain/track"
	"github.com/strumapp/strum/internal/infra/config"
)

// settleDelay is how long the loop waits after issuing pause before tearing
// the worker down during a device swap. The old worker may still be
// mid-transition when the pause returns.
const settleDelay = 100 * time.Millisecond

// UIDriver is the terminal surface. Step performs one render-and-input
// iteration and may block briefly, never indefinitely; Wake interrupts a
// blocking Step; Quit is idempotent.
type UIDriver interface {
	Step()
	IsRunning() bool
	Wake()
	Quit()
}

// CommandManager consumes parsed commands and mutates UI and state.
type CommandManager interface {
	Handle(c command.Command) error
}

// Queue owns playback order.
type Queue interface {
	Current() (*track.Track, bool)
	Advance(manual bool) error
	HandleSignal(sig events.QueueSignal)
}

// Publisher receives playback status for IPC subscribers. A nil publisher is
// valid: absence of a subscriber is not an error.
type Publisher interface {
	Publish(state player.State, current *track.Track)
}

// Options wires an Application.
type Options struct {
	UI        UIDriver
	Hub       *events.Hub
	Commands  CommandManager
	Queue     Queue
	Worker    *player.Handle
	Factory   player.Factory
	Status    *player.Status
	Publisher Publisher
	State     *config.State

	// SettleDelay overrides the pause settle delay; zero selects the
	// default.
	SettleDelay time.Duration
}

// Application is the run loop owner. All fields are confined to the run-loop
// goroutine except the hub and the signal channel.
type Application struct {
	ui        UIDriver
	hub       *events.Hub
	commands  CommandManager
	queue     Queue
	worker    *player.Handle
	factory   player.Factory
	status    *player.Status
	publisher Publisher
	state     *config.State

	signals     chan os.Signal
	settleDelay time.Duration
	sleep       func(time.Duration)
}

// New creates the application and registers the termination-class signals.
// Signals are polled cooperatively once per UI step; nothing runs in signal
// context.
func New(opts Options) *Application {
	delay := opts.SettleDelay
	if delay == 0 {
		delay = settleDelay
	}

	a := &Application{
		ui:          opts.UI,
		hub:         opts.Hub,
		commands:    opts.Commands,
		queue:       opts.Queue,
		worker:      opts.Worker,
		factory:     opts.Factory,
		status:      opts.Status,
		publisher:   opts.Publisher,
		state:       opts.State,
		signals:     make(chan os.Signal, 8),
		settleDelay: delay,
		sleep:       time.Sleep,
	}
	signal.Notify(a.signals, syscall.SIGTERM, syscall.SIGHUP)
	return a
}

// Run drives the loop until a quit command terminates the UI. Dispatch
// failures for individual events never abort the loop. The signal
// registration made in New is released when the loop ends.
func (a *Application) Run() {
	defer signal.Stop(a.signals)

	for a.ui.IsRunning() {
		a.step()
	}
	zlog.Info().Msg("run loop terminated")
}

// step performs one loop iteration: UI step, signal poll, full drain.
func (a *Application) step() {
	a.ui.Step()

	// Termination signals synthesize a quit ahead of any queued events so
	// shutdown is prompt.
	for sig := a.pollSignal(); sig != nil; sig = a.pollSignal() {
		zlog.Info().Msgf("caught %v, cleaning up and closing", sig)
		a.dispatch(command.Quit())
	}

	for _, ev := range a.hub.Drain() {
		a.handleEvent(ev)
	}
}

func (a *Application) pollSignal() os.Signal {
	select {
	case sig := <-a.signals:
		return sig
	default:
		return nil
	}
}

func (a *Application) handleEvent(ev events.Event) {
	switch e := ev.(type) {
	case events.PlayerStateChanged:
		zlog.Trace().Msgf("player state event: %s", e.State)
		a.status.Update(e.State)

		current, _ := a.queue.Current()
		if a.publisher != nil {
			a.publisher.Publish(e.State, current)
		}

		if e.State == player.StateFinishedTrack {
			if err := a.queue.Advance(false); err != nil {
				zlog.Error().Msgf("failed to advance queue: %v", err)
			}
		}

	case events.QueueChanged:
		a.queue.HandleSignal(e.Signal)

	case events.SessionDied:
		zlog.Warn().Msg("playback session died, restarting worker")
		if err := a.restartWorker(a.state.GetDevice()); err != nil {
			zlog.Error().Msgf("failed to restart playback worker: %v", err)
			a.dispatch(command.Quit())
		}

	case events.ExternalCommand:
		cmds, err := command.Parse(e.Input)
		if err != nil {
			zlog.Error().Msgf("parsing error: %v", err)
			return
		}
		for _, cmd := range cmds {
			zlog.Info().Msgf("executing command from IPC: %s", cmd)
			a.dispatch(cmd)
		}

	case events.OutputDeviceChanged:
		a.swapDevice(e.Device)
	}
}

// dispatch hands a command to the manager; failures are logged, never fatal.
func (a *Application) dispatch(cmd command.Command) {
	if err := a.commands.Handle(cmd); err != nil {
		zlog.Error().Msgf("command %q failed: %v", cmd.Name, err)
	}
}

// restartWorker tears the current worker down and creates a fresh one bound
// to device. The handle is owned by the run-loop goroutine at this point; no
// concurrent restart can occur.
func (a *Application) restartWorker(device string) error {
	next, err := a.factory(device)
	if err != nil {
		return err
	}

	if old := a.worker.Swap(next); old != nil {
		if err := old.Close(); err != nil {
			zlog.Warn().Msgf("failed to close previous worker: %v", err)
		}
	}
	return nil
}
