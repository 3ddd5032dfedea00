// Package tasks provides the background task runner handed to every
// component that spawns goroutines. It replaces a process-global runtime
// singleton with an explicitly injected handle.
package tasks

import (
	"sync"

	zlog "github.com/rs/zerolog/log"
)

// Runner tracks named background goroutines.
type Runner struct {
	wg sync.WaitGroup
}

// NewRunner creates an empty runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Go runs fn on its own goroutine. A panic in fn is logged instead of taking
// the process down; background sources must not be able to kill the run
// loop.
func (r *Runner) Go(name string, fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				zlog.Error().Msgf("background task %s panicked: %v", name, rec)
			}
		}()
		fn()
	}()
}

// Wait blocks until every started task has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}
