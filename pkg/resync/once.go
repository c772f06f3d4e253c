// Package resync provides a sync.Once that can be reset,
// mainly to recreate singletons between unit tests.
package resync

import "sync"

type Once struct {
	mu   sync.Mutex
	done bool
}

// Do behaves like sync.Once.Do.
func (o *Once) Do(f func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done {
		return
	}
	o.done = true
	f()
}

// Reset makes the next call to Do run its function again.
func (o *Once) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.done = false
}
