package core

import (
	zlog "github.com/rs/zerolog/log"

	"github.com/strumapp/strum/internal/app/player"
)

// swapDevice executes the output-device hot-swap: snapshot playback, pause,
// persist the new device, recreate the worker and reload the track at its
// old position, paused. Resuming is an explicit user action.
func (a *Application) swapDevice(device string) {
	zlog.Info().Msgf("handling audio device change to: %s", deviceDisplay(device))

	state, position := a.status.Snapshot()
	wasPlaying := state == player.StatePlaying
	trackActive := wasPlaying || state == player.StatePaused
	current, hasCurrent := a.queue.Current()

	if wasPlaying {
		zlog.Info().Msg("pausing playback for device change")
		if err := a.worker.Pause(); err != nil {
			zlog.Warn().Msgf("pause before device swap failed: %v", err)
		}
		// The old worker may still be mid-transition right after pause
		// returns; give it a moment before teardown.
		a.sleep(a.settleDelay)
	}

	// Persist the device before restarting so a crash mid-restart still
	// boots into the correct device.
	if err := a.state.SetDevice(device); err != nil {
		zlog.Error().Msgf("failed to persist device selection: %v", err)
	}

	if err := a.restartWorker(device); err != nil {
		zlog.Error().Msgf("failed to start worker on %s, leaving playback stopped: %v",
			deviceDisplay(device), err)
		a.status.Update(player.StateStopped)
		return
	}

	if hasCurrent && trackActive {
		zlog.Info().Msgf("reloading %q at %v after device change", current.Name, position)
		if err := a.worker.Load(*current, false, position); err != nil {
			zlog.Error().Msgf("failed to reload track after device change: %v", err)
			a.status.Update(player.StateStopped)
			return
		}
		a.status.Update(player.StatePaused)
		a.status.SetPosition(position)
	}
}

func deviceDisplay(device string) string {
	if device == "" {
		return "default"
	}
	return device
}
