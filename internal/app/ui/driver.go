// Package ui provides the default UI driver: a headless step pump that
// blocks briefly between iterations and reacts to wake and quit requests.
// Rendering frontends embed the core by supplying their own core.UIDriver;
// this driver keeps the loop semantics without owning any widgets.
package ui

import (
	"sync"
	"time"
)

// defaultStepTimeout bounds how long one Step may block waiting for input or
// a wake-up.
const defaultStepTimeout = 50 * time.Millisecond

// Driver implements core.UIDriver.
type Driver struct {
	wake        chan struct{}
	quit        chan struct{}
	quitOnce    sync.Once
	stepTimeout time.Duration
}

// NewDriver creates a running driver.
func NewDriver() *Driver {
	return &Driver{
		wake:        make(chan struct{}, 1),
		quit:        make(chan struct{}),
		stepTimeout: defaultStepTimeout,
	}
}

// Step blocks until woken, quit, or the step timeout elapses. It never
// blocks indefinitely.
func (d *Driver) Step() {
	timer := time.NewTimer(d.stepTimeout)
	defer timer.Stop()

	select {
	case <-d.wake:
	case <-d.quit:
	case <-timer.C:
	}
}

// Wake interrupts a blocking Step. Callable from any goroutine; coalesces
// with a pending wake-up.
func (d *Driver) Wake() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// IsRunning reports whether Quit has been requested.
func (d *Driver) IsRunning() bool {
	select {
	case <-d.quit:
		return false
	default:
		return true
	}
}

// Quit stops the driver. Idempotent.
func (d *Driver) Quit() {
	d.quitOnce.Do(func() { close(d.quit) })
}
