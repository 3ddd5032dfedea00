package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// State is the mutable runtime state persisted between runs: the selected
// output device and the last playback position. It is written eagerly on
// device change so a crash mid-restart still boots into the correct device.
type State struct {
	mu   sync.Mutex
	path string

	Device          string `yaml:"device,omitempty"`
	PlaybackState   string `yaml:"playback_state,omitempty"`
	TrackURI        string `yaml:"track_uri,omitempty"`
	TrackProgressMs int64  `yaml:"track_progress_ms,omitempty"`
}

// LoadState loads the persisted state from path. A missing file yields an
// empty state bound to the same path.
func LoadState(path string) (*State, error) {
	st := &State{path: path}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, st); err != nil {
			return nil, errors.Wrap(err, "failed to parse state file")
		}
	case os.IsNotExist(err):
		// First run.
	default:
		return nil, errors.Wrap(err, "failed to read state file")
	}

	return st, nil
}

// DefaultStatePath returns the state file location under the user config
// directory.
func DefaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to locate user config directory")
	}
	return filepath.Join(dir, "strum", "state.yaml"), nil
}

// Save writes the state to its backing file.
func (s *State) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *State) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "failed to create state directory")
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "failed to marshal state")
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write state file")
	}
	return nil
}

// SetDevice records the new output device and persists it immediately.
func (s *State) SetDevice(device string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Device = device
	return s.saveLocked()
}

// GetDevice returns the persisted output device name.
func (s *State) GetDevice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Device
}

// SetPlayback records the playback snapshot and persists it. trackURI may be
// empty when nothing is loaded.
func (s *State) SetPlayback(state string, trackURI string, progressMs int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.PlaybackState = state
	s.TrackURI = trackURI
	s.TrackProgressMs = progressMs
	return s.saveLocked()
}
