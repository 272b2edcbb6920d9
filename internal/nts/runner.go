package nts

import "sync"

// Runner schedules background work such as remote writes.
type Runner interface {
	Go(fn func())
	Wait()
}

// AsyncRunner runs each function on its own goroutine.
type AsyncRunner struct {
	wg sync.WaitGroup
}

func NewAsyncRunner() *AsyncRunner { return &AsyncRunner{} }

func (r *AsyncRunner) Go(fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn()
	}()
}

// Wait blocks until every scheduled function has returned.
func (r *AsyncRunner) Wait() { r.wg.Wait() }

// SyncRunner runs functions inline. Use in tests for deterministic ordering.
type SyncRunner struct{}

func (SyncRunner) Go(fn func()) { fn() }
func (SyncRunner) Wait()        {}
