// Package events provides the event hub merging all background sources into
// the single stream consumed by the run loop.
package events

import "github.com/strumapp/strum/internal/app/player"

// Event is the union of everything background sources can report to the run
// loop.
type Event interface {
	isEvent()
}

// PlayerStateChanged reports a playback lifecycle transition from the
// playback worker.
type PlayerStateChanged struct {
	State player.State
}

// QueueChanged asks the run loop to forward a queue maintenance signal.
type QueueChanged struct {
	Signal QueueSignal
}

// SessionDied reports that the playback worker's backing session terminated
// unexpectedly.
type SessionDied struct{}

// ExternalCommand carries one raw text line received over the IPC channel.
type ExternalCommand struct {
	Input string
}

// OutputDeviceChanged reports that the system's active audio output changed.
// An empty Device means the system default output.
type OutputDeviceChanged struct {
	Device string
}

func (PlayerStateChanged) isEvent()  {}
func (QueueChanged) isEvent()        {}
func (SessionDied) isEvent()         {}
func (ExternalCommand) isEvent()     {}
func (OutputDeviceChanged) isEvent() {}

// QueueSignal is a queue maintenance request raised outside the run loop.
type QueueSignal int

const (
	// SignalPreloadNext asks the queue to preload the upcoming item into the
	// worker so track transitions are gapless.
	SignalPreloadNext QueueSignal = iota
	// SignalReloadCurrent asks the queue to reload its current item, e.g.
	// after its metadata was refreshed.
	SignalReloadCurrent
)

// String returns the string representation of the signal.
func (s QueueSignal) String() string {
	switch s {
	case SignalPreloadNext:
		return "preload_next"
	case SignalReloadCurrent:
		return "reload_current"
	default:
		return "unknown"
	}
}
