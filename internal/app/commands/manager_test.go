package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strumapp/strum/internal/app/command"
	"github.com/strumapp/strum/internal/app/player"
	"github.com/strumapp/strum/internal/domain/track"
	"github.com/strumapp/strum/internal/infra/config"
)

type fakeUI struct {
	quits int
}

func (u *fakeUI) Quit() { u.quits++ }

type fakeQueue struct {
	current  *track.Track
	advances []bool
	backs    int
}

func (q *fakeQueue) Current() (*track.Track, bool) {
	if q.current == nil {
		return nil, false
	}
	return q.current, true
}
func (q *fakeQueue) Advance(manual bool) error {
	q.advances = append(q.advances, manual)
	return nil
}
func (q *fakeQueue) Previous() error {
	q.backs++
	return nil
}

type fakeWorker struct {
	paused  int
	resumed int
	stopped int
	seeks   []time.Duration
}

func (w *fakeWorker) Load(track.Track, bool, time.Duration) error { return nil }
func (w *fakeWorker) Pause() error                                { w.paused++; return nil }
func (w *fakeWorker) Resume() error                               { w.resumed++; return nil }
func (w *fakeWorker) Seek(pos time.Duration) error {
	w.seeks = append(w.seeks, pos)
	return nil
}
func (w *fakeWorker) Stop() error  { w.stopped++; return nil }
func (w *fakeWorker) Close() error { return nil }

type fixture struct {
	ui      *fakeUI
	queue   *fakeQueue
	worker  *fakeWorker
	status  *player.Status
	state   *config.State
	manager *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	state, err := config.LoadState(filepath.Join(t.TempDir(), "state.yaml"))
	require.NoError(t, err)

	f := &fixture{
		ui:     &fakeUI{},
		queue:  &fakeQueue{},
		worker: &fakeWorker{},
		status: player.NewStatus(),
		state:  state,
	}
	f.manager = New(f.ui, f.queue, player.NewHandle(f.worker), f.status, f.state)
	return f
}

func (f *fixture) handle(t *testing.T, name string, args ...string) {
	t.Helper()
	require.NoError(t, f.manager.Handle(command.Command{Name: name, Args: args}))
}

func TestManager_UnknownCommand(t *testing.T) {
	f := newFixture(t)
	err := f.manager.Handle(command.Command{Name: "teleport"})
	assert.ErrorContains(t, err, "no handler")
}

func TestManager_Play(t *testing.T) {
	f := newFixture(t)

	// Stopped: play advances the queue.
	f.handle(t, "play")
	assert.Equal(t, []bool{true}, f.queue.advances)

	// Paused: play resumes.
	f.status.Update(player.StatePaused)
	f.handle(t, "play")
	assert.Equal(t, 1, f.worker.resumed)

	// Playing: play is a no-op.
	f.status.Update(player.StatePlaying)
	f.handle(t, "play")
	assert.Equal(t, 1, f.worker.resumed)
	assert.Equal(t, []bool{true}, f.queue.advances)
}

func TestManager_Pause(t *testing.T) {
	f := newFixture(t)

	// Pause while not playing is a no-op.
	f.handle(t, "pause")
	assert.Equal(t, 0, f.worker.paused)

	f.status.Update(player.StatePlaying)
	f.handle(t, "pause")
	assert.Equal(t, 1, f.worker.paused)
}

func TestManager_PlayPause(t *testing.T) {
	f := newFixture(t)

	f.status.Update(player.StatePlaying)
	f.handle(t, "playpause")
	assert.Equal(t, 1, f.worker.paused)

	f.status.Update(player.StatePaused)
	f.handle(t, "playpause")
	assert.Equal(t, 1, f.worker.resumed)
}

func TestManager_NextPreviousStop(t *testing.T) {
	f := newFixture(t)

	f.handle(t, "next")
	assert.Equal(t, []bool{true}, f.queue.advances)

	f.handle(t, "previous")
	assert.Equal(t, 1, f.queue.backs)

	f.handle(t, "stop")
	assert.Equal(t, 1, f.worker.stopped)
}

func TestManager_Seek(t *testing.T) {
	f := newFixture(t)

	f.handle(t, "seek", "30000")
	assert.Equal(t, []time.Duration{30 * time.Second}, f.worker.seeks)
	assert.Equal(t, 30*time.Second, f.status.Progress())

	assert.Error(t, f.manager.Handle(command.Command{Name: "seek"}))
	assert.Error(t, f.manager.Handle(command.Command{Name: "seek", Args: []string{"soon"}}))
	assert.Error(t, f.manager.Handle(command.Command{Name: "seek", Args: []string{"-5"}}))
}

func TestManager_QuitPersistsAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.queue.current = &track.Track{URI: "spotify:track:abc", Name: "Song"}
	f.status.Update(player.StatePaused)
	f.status.SetPosition(12 * time.Second)

	f.handle(t, "quit")
	f.handle(t, "quit")

	assert.Equal(t, 2, f.ui.quits) // Quit itself must tolerate repeats
	assert.Equal(t, "paused", f.state.PlaybackState)
	assert.Equal(t, "spotify:track:abc", f.state.TrackURI)
	assert.Equal(t, int64(12000), f.state.TrackProgressMs)
}
