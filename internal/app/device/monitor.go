// Package device provides the output-device monitor: a background poller
// that reports changes of the system's active audio output as events.
package device

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/strumapp/strum/internal/app/events"
	"github.com/strumapp/strum/internal/infra/tasks"
)

// Monitor watches the active audio output. Implementations post an
// OutputDeviceChanged event whenever the observed device name differs from
// the last observation. The monitor runs for the process lifetime.
type Monitor interface {
	Start(ctx context.Context) error
}

// Prober reads the current default output device name. An empty name means
// the system default could not be resolved and is treated as "default".
type Prober interface {
	DefaultOutputDevice() (string, error)
}

// Settings is the free-form monitor configuration decoded from the config
// map.
type Settings struct {
	IntervalMs int    `mapstructure:"interval_ms"`
	Command    string `mapstructure:"command"`
}

// ParseSettings decodes the settings map, applying defaults.
func ParseSettings(raw map[string]any) (Settings, error) {
	s := Settings{IntervalMs: 500}
	if raw != nil {
		if err := mapstructure.Decode(raw, &s); err != nil {
			return s, errors.Wrap(err, "failed to decode monitor settings")
		}
	}
	if s.IntervalMs <= 0 {
		s.IntervalMs = 500
	}
	return s, nil
}

// poller is the generic polling monitor over any Prober.
type poller struct {
	prober   Prober
	hub      *events.Hub
	runner   *tasks.Runner
	interval time.Duration
}

// NewPoller creates a monitor that polls prober on a fixed interval and
// posts changes to the hub.
func NewPoller(prober Prober, hub *events.Hub, runner *tasks.Runner, interval time.Duration) Monitor {
	return &poller{prober: prober, hub: hub, runner: runner, interval: interval}
}

// Start implements Monitor. The poll loop has no external cancellation; ctx
// is consulted so tests can stop it, but in production it is the background
// context and the loop lives as long as the process.
func (p *poller) Start(ctx context.Context) error {
	last, err := p.prober.DefaultOutputDevice()
	if err != nil {
		zlog.Warn().Msgf("could not read initial audio device, monitoring anyway: %v", err)
		last = ""
	} else {
		zlog.Info().Msgf("initial audio device: %s", displayName(last))
	}

	p.runner.Go("device-monitor", func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			current, err := p.prober.DefaultOutputDevice()
			if err != nil {
				zlog.Debug().Msgf("audio device probe failed: %v", err)
				continue
			}

			if current != last {
				zlog.Info().Msgf("audio output device changed from %s to %s",
					displayName(last), displayName(current))
				p.hub.Post(events.OutputDeviceChanged{Device: current})
				last = current
			}
		}
	})

	return nil
}

// nopMonitor is used on platforms without output-device detection.
type nopMonitor struct{}

// NewNop returns the no-op monitor.
func NewNop() Monitor {
	return nopMonitor{}
}

// Start implements Monitor.
func (nopMonitor) Start(context.Context) error {
	return nil
}

func displayName(device string) string {
	if device == "" {
		return "default"
	}
	return device
}
