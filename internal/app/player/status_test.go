package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  State
	}{
		{name: "Playing", input: "playing", want: StatePlaying},
		{name: "Paused", input: "paused", want: StatePaused},
		{name: "Stopped", input: "stopped", want: StateStopped},
		{name: "Unknown maps to stopped", input: "garbage", want: StateStopped},
		{name: "Empty maps to stopped", input: "", want: StateStopped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseState(tt.input))
		})
	}
}

func TestStatus_Transitions(t *testing.T) {
	s := NewStatus()
	assert.Equal(t, StateStopped, s.State())

	s.Update(StatePlaying)
	assert.Equal(t, StatePlaying, s.State())

	s.Update(StatePaused)
	assert.Equal(t, StatePaused, s.State())

	s.Update(StateStopped)
	assert.Equal(t, StateStopped, s.State())
	assert.Equal(t, time.Duration(0), s.Progress())
}

func TestStatus_ProgressWhilePaused(t *testing.T) {
	s := NewStatus()
	s.Update(StatePaused)
	s.SetPosition(30 * time.Second)

	// Paused progress does not advance.
	assert.Equal(t, 30*time.Second, s.Progress())
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 30*time.Second, s.Progress())
}

func TestStatus_ProgressWhilePlaying(t *testing.T) {
	s := NewStatus()
	s.Update(StatePlaying)
	s.SetPosition(10 * time.Second)

	time.Sleep(20 * time.Millisecond)
	progress := s.Progress()
	assert.GreaterOrEqual(t, progress, 10*time.Second+20*time.Millisecond)
	assert.Less(t, progress, 11*time.Second)
}

func TestStatus_PauseAccumulates(t *testing.T) {
	s := NewStatus()
	s.Update(StatePlaying)
	s.SetPosition(5 * time.Second)

	time.Sleep(15 * time.Millisecond)
	s.Update(StatePaused)

	frozen := s.Progress()
	assert.GreaterOrEqual(t, frozen, 5*time.Second+15*time.Millisecond)

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, frozen, s.Progress())
}

func TestStatus_Snapshot(t *testing.T) {
	s := NewStatus()
	s.Update(StatePlaying)
	s.SetPosition(30 * time.Second)

	state, progress := s.Snapshot()
	assert.Equal(t, StatePlaying, state)
	assert.InDelta(t, float64(30*time.Second), float64(progress), float64(time.Second))
}

func TestStatus_FinishedResetsPosition(t *testing.T) {
	s := NewStatus()
	s.Update(StatePlaying)
	s.SetPosition(time.Minute)

	s.Update(StateFinishedTrack)
	assert.Equal(t, StateFinishedTrack, s.State())
	assert.Equal(t, time.Duration(0), s.Progress())
}
