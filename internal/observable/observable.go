// Package observable provides a value holder that pushes every change to
// its subscribers. Controllers expose their state through it and the
// presentation layer binds to it.
package observable

import (
	"cmp"
	"slices"
	"sync"

	"github.com/rs/xid"
)

// Value holds a T and notifies subscribers whenever it is set.
//
// Subscribers run synchronously on the goroutine that called Set, after
// the internal lock is released, in the order they subscribed. A
// subscriber may call Get or Set on the same Value.
type Value[T any] struct {
	mu   sync.RWMutex
	v    T
	seq  uint64
	subs map[xid.ID]subscriber[T]
}

// subscriber pairs a callback with the order it was registered in. xid
// alone sorts by time only to the second and its counter wraps.
type subscriber[T any] struct {
	seq uint64
	fn  func(T)
}

// New returns a Value holding initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{
		v:    initial,
		subs: make(map[xid.ID]subscriber[T]),
	}
}

// Get returns the current value.
func (o *Value[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.v
}

// Set stores v and notifies every subscriber with it.
func (o *Value[T]) Set(v T) {
	o.mu.Lock()
	o.v = v
	subs := o.snapshot()
	o.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Update applies fn to the current value under the lock, stores the
// result and notifies subscribers. It returns the stored value.
func (o *Value[T]) Update(fn func(T) T) T {
	o.mu.Lock()
	o.v = fn(o.v)
	v := o.v
	subs := o.snapshot()
	o.mu.Unlock()

	for _, s := range subs {
		s(v)
	}
	return v
}

// Subscription identifies one registered callback.
type Subscription struct {
	id     xid.ID
	cancel func()
}

// ID is unique per subscription.
func (s *Subscription) ID() string { return s.id.String() }

// Cancel stops further notifications. Calling it twice is harmless.
func (s *Subscription) Cancel() { s.cancel() }

// Subscribe registers fn for future changes. The current value is not
// replayed; call Get for it.
//
// fn runs on whichever goroutine changed the value. For controller state
// that is the controller's background job, so fn must not call back into
// a blocking method of the same controller (Refresh, Submit, Save); that
// deadlocks. Start a goroutine for such calls.
func (o *Value[T]) Subscribe(fn func(T)) *Subscription {
	id := xid.New()

	o.mu.Lock()
	o.seq++
	o.subs[id] = subscriber[T]{seq: o.seq, fn: fn}
	o.mu.Unlock()

	var once sync.Once
	return &Subscription{
		id: id,
		cancel: func() {
			once.Do(func() {
				o.mu.Lock()
				delete(o.subs, id)
				o.mu.Unlock()
			})
		},
	}
}

// Subscribers reports how many callbacks are registered.
func (o *Value[T]) Subscribers() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.subs)
}

// snapshot returns the callbacks in subscription order. It must be called
// with o.mu held.
func (o *Value[T]) snapshot() []func(T) {
	subs := make([]subscriber[T], 0, len(o.subs))
	for _, s := range o.subs {
		subs = append(subs, s)
	}
	slices.SortFunc(subs, func(a, b subscriber[T]) int { return cmp.Compare(a.seq, b.seq) })

	fns := make([]func(T), len(subs))
	for i, s := range subs {
		fns[i] = s.fn
	}
	return fns
}
