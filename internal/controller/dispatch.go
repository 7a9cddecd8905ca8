// Package controller holds the UI-facing state of the application and
// orchestrates store calls on its behalf.
//
// Each controller exposes its state as observable values. The presentation
// layer reads them, subscribes to them and calls the controller methods;
// it never talks to a store directly for anything a controller owns.
//
// Store calls made by one controller run one at a time, in the order they
// were issued, on a background goroutine. Methods documented as blocking
// wait for their own call to finish; the others return at once and Wait
// can be used to catch up.
//
// SUBSCRIBERS AND DEADLOCKS:
// State changes made by a store call are published from that background
// goroutine, so subscribers run inside the job. A subscriber must not call
// a blocking method (Refresh, Submit, Save) of the same controller
// directly: that method waits for a job queued behind the one currently
// running it. Hand the call to a new goroutine instead.
package controller

import "sync"

// dispatcher runs jobs on background goroutines, strictly one after the
// other in submission order.
//
// Jobs form a chain: each waits for the done channel of the job before it.
// The tail of the chain closing therefore means every earlier job has run.
type dispatcher struct {
	mu   sync.Mutex
	last chan struct{}
}

// Go queues fn and returns a channel closed once fn has run.
func (d *dispatcher) Go(fn func()) <-chan struct{} {
	d.mu.Lock()
	prev := d.last
	done := make(chan struct{})
	d.last = done
	d.mu.Unlock()

	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		fn()
	}()
	return done
}

// Do queues fn and blocks until it has run. Calling Do from inside a job
// of the same dispatcher deadlocks.
func (d *dispatcher) Do(fn func()) {
	<-d.Go(fn)
}

// Wait blocks until every job queued so far has run. Jobs queued while it
// waits are not waited for. It is safe to call from any goroutine.
func (d *dispatcher) Wait() {
	d.mu.Lock()
	tail := d.last
	d.mu.Unlock()

	if tail != nil {
		<-tail
	}
}
