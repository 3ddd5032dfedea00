package device

import (
	"encoding/json"
	"os/exec"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/strumapp/strum/internal/app/events"
	"github.com/strumapp/strum/internal/infra/tasks"
)

// NewSystemMonitor builds the monitor for the current platform: a
// system_profiler-backed poller on macOS, the no-op monitor everywhere else.
// The choice is made here, at composition time, so the core never branches
// on the platform.
func NewSystemMonitor(hub *events.Hub, runner *tasks.Runner, raw map[string]any) (Monitor, error) {
	settings, err := ParseSettings(raw)
	if err != nil {
		return nil, err
	}

	if runtime.GOOS != "darwin" {
		zlog.Debug().Msg("output-device detection not supported on this platform")
		return NewNop(), nil
	}

	command := settings.Command
	if command == "" {
		command = "system_profiler"
	}

	prober := &coreAudioProber{command: command}
	interval := time.Duration(settings.IntervalMs) * time.Millisecond
	return NewPoller(prober, hub, runner, interval), nil
}

// coreAudioProber resolves the default output device via system_profiler,
// which is more reliable than talking to CoreAudio directly.
type coreAudioProber struct {
	command string
}

// audioReport mirrors the SPAudioDataType JSON shape.
type audioReport struct {
	SPAudioDataType []struct {
		Items []audioDevice `json:"_items"`
	} `json:"SPAudioDataType"`
}

type audioDevice struct {
	Name          string `json:"_name"`
	DefaultOutput string `json:"coreaudio_default_audio_output_device"`
}

// DefaultOutputDevice implements Prober.
func (p *coreAudioProber) DefaultOutputDevice() (string, error) {
	out, err := exec.Command(p.command, "SPAudioDataType", "-json").Output()
	if err != nil {
		return "", errors.Wrap(err, "system_profiler failed")
	}
	return parseAudioReport(out)
}

// parseAudioReport extracts the default output device name from the
// system_profiler JSON. No default-marked device yields an empty name.
func parseAudioReport(data []byte) (string, error) {
	var report audioReport
	if err := json.Unmarshal(data, &report); err != nil {
		return "", errors.Wrap(err, "failed to parse audio report")
	}

	for _, group := range report.SPAudioDataType {
		for _, dev := range group.Items {
			if dev.DefaultOutput == "spaudio_yes" {
				return dev.Name, nil
			}
		}
	}
	return "", nil
}
