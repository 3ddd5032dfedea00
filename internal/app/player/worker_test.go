package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strumapp/strum/internal/domain/track"
)

type recordingWorker struct {
	loaded  []string
	paused  int
	resumed int
	stopped int
	closed  int
	seeks   []time.Duration
}

func (w *recordingWorker) Load(t track.Track, _ bool, _ time.Duration) error {
	w.loaded = append(w.loaded, t.Name)
	return nil
}
func (w *recordingWorker) Pause() error  { w.paused++; return nil }
func (w *recordingWorker) Resume() error { w.resumed++; return nil }
func (w *recordingWorker) Seek(pos time.Duration) error {
	w.seeks = append(w.seeks, pos)
	return nil
}
func (w *recordingWorker) Stop() error  { w.stopped++; return nil }
func (w *recordingWorker) Close() error { w.closed++; return nil }

func TestHandle_NoWorker(t *testing.T) {
	h := NewHandle(nil)

	assert.ErrorIs(t, h.Load(track.Track{}, true, 0), ErrNoWorker)
	assert.ErrorIs(t, h.Pause(), ErrNoWorker)
	assert.ErrorIs(t, h.Resume(), ErrNoWorker)
	assert.ErrorIs(t, h.Seek(0), ErrNoWorker)
	assert.ErrorIs(t, h.Stop(), ErrNoWorker)
}

func TestHandle_Forwarding(t *testing.T) {
	w := &recordingWorker{}
	h := NewHandle(w)

	require.NoError(t, h.Load(track.Track{Name: "A"}, true, 0))
	require.NoError(t, h.Pause())
	require.NoError(t, h.Resume())
	require.NoError(t, h.Seek(3*time.Second))
	require.NoError(t, h.Stop())

	assert.Equal(t, []string{"A"}, w.loaded)
	assert.Equal(t, 1, w.paused)
	assert.Equal(t, 1, w.resumed)
	assert.Equal(t, []time.Duration{3 * time.Second}, w.seeks)
	assert.Equal(t, 1, w.stopped)
}

type preloadingWorker struct {
	recordingWorker
	preloads []string
}

func (w *preloadingWorker) Preload(t track.Track) error {
	w.preloads = append(w.preloads, t.Name)
	return nil
}

func TestHandle_Preload(t *testing.T) {
	w := &preloadingWorker{}
	h := NewHandle(w)

	require.NoError(t, h.Preload(track.Track{Name: "Next"}))
	assert.Equal(t, []string{"Next"}, w.preloads)
}

func TestHandle_PreloadUnsupportedWorker(t *testing.T) {
	// A worker without preload support turns Preload into a no-op.
	h := NewHandle(&recordingWorker{})
	assert.NoError(t, h.Preload(track.Track{Name: "Next"}))
}

func TestHandle_PreloadNoWorker(t *testing.T) {
	h := NewHandle(nil)
	assert.ErrorIs(t, h.Preload(track.Track{}), ErrNoWorker)
}

func TestHandle_Swap(t *testing.T) {
	first := &recordingWorker{}
	second := &recordingWorker{}
	h := NewHandle(first)

	old := h.Swap(second)
	assert.Same(t, first, old)
	assert.Same(t, second, h.Get())

	require.NoError(t, h.Pause())
	assert.Equal(t, 0, first.paused)
	assert.Equal(t, 1, second.paused)
}
