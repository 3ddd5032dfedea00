package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDriver_WakeInterruptsStep(t *testing.T) {
	d := NewDriver()
	d.stepTimeout = time.Minute // make a timeout-driven return obvious

	done := make(chan struct{})
	go func() {
		d.Step()
		close(done)
	}()

	d.Wake()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Step did not return after Wake")
	}
}

func TestDriver_WakeIsNonBlocking(t *testing.T) {
	d := NewDriver()
	// Repeated wake-ups with no Step in flight coalesce instead of blocking.
	for i := 0; i < 10; i++ {
		d.Wake()
	}
}

func TestDriver_StepTimesOut(t *testing.T) {
	d := NewDriver()
	d.stepTimeout = time.Millisecond

	start := time.Now()
	d.Step()
	assert.Less(t, time.Since(start), time.Second)
}

func TestDriver_QuitIsIdempotent(t *testing.T) {
	d := NewDriver()
	assert.True(t, d.IsRunning())

	d.Quit()
	d.Quit()
	assert.False(t, d.IsRunning())

	// Step returns immediately once quit.
	start := time.Now()
	d.Step()
	assert.Less(t, time.Since(start), time.Second)
}
