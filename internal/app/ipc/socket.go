// Package ipc provides the inter-process control channel: a line-based unix
// socket that turns received text into events and publishes playback status
// to connected subscribers.
package ipc

import (
	"bufio"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/strumapp/strum/internal/app/events"
	"github.com/strumapp/strum/internal/app/player"
	"github.com/strumapp/strum/internal/domain/track"
)

// statusLine is the JSON document published to subscribers on every player
// state change.
type statusLine struct {
	State  string `json:"state"`
	Track  string `json:"track,omitempty"`
	Artist string `json:"artist,omitempty"`
}

// Runner starts named background goroutines; satisfied by tasks.Runner.
type Runner interface {
	Go(name string, fn func())
}

// Socket is the IPC endpoint. Every received line is posted to the hub as an
// ExternalCommand event; Publish broadcasts the current status to all
// connected clients. The absence of any subscriber is not an error.
type Socket struct {
	listener net.Listener
	hub      *events.Hub

	mu    sync.Mutex
	conns map[string]net.Conn
}

// Listen binds the socket at path and starts accepting connections. A stale
// socket file from a previous run is removed first.
func Listen(path string, hub *events.Hub, runner Runner) (*Socket, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "failed to create socket directory")
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to remove stale socket")
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to bind IPC socket")
	}

	s := &Socket{
		listener: ln,
		hub:      hub,
		conns:    make(map[string]net.Conn),
	}

	runner.Go("ipc-accept", func() { s.acceptLoop(runner) })

	zlog.Info().Msgf("IPC socket listening at %s", path)
	return s, nil
}

func (s *Socket) acceptLoop(runner Runner) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Listener closed; stop accepting.
			return
		}

		id := uuid.New().String()
		s.mu.Lock()
		s.conns[id] = conn
		s.mu.Unlock()

		runner.Go("ipc-read", func() { s.readLoop(id, conn) })
	}
}

// readLoop posts each received line to the hub until the client disconnects.
func (s *Socket) readLoop(id string, conn net.Conn) {
	defer s.drop(id)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		s.hub.Post(events.ExternalCommand{Input: scanner.Text()})
	}
	if err := scanner.Err(); err != nil {
		zlog.Debug().Msgf("IPC client %s read error: %v", id, err)
	}
}

// Publish broadcasts the player state and current queue item to every
// subscriber. Clients that fail to receive are dropped.
func (s *Socket) Publish(state player.State, current *track.Track) {
	line := statusLine{State: state.String()}
	if current != nil {
		line.Track = current.Name
		line.Artist = current.ArtistLine()
	}

	payload, err := json.Marshal(line)
	if err != nil {
		zlog.Error().Msgf("failed to marshal status line: %v", err)
		return
	}
	payload = append(payload, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, conn := range s.conns {
		if _, err := conn.Write(payload); err != nil {
			zlog.Debug().Msgf("dropping IPC client %s: %v", id, err)
			_ = conn.Close()
			delete(s.conns, id)
		}
	}
}

// Close shuts the listener and all client connections down.
func (s *Socket) Close() error {
	err := s.listener.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, conn := range s.conns {
		_ = conn.Close()
		delete(s.conns, id)
	}
	return err
}

func (s *Socket) drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conn, ok := s.conns[id]; ok {
		_ = conn.Close()
		delete(s.conns, id)
	}
}
