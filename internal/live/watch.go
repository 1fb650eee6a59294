package live

import (
	"context"
	"sync"
)

// CancelFunc detaches a subscription. It is idempotent; after the first call
// returns, no further callback invocations happen. It must not be called
// from inside the callback itself.
type CancelFunc func()

// Watch establishes a live subscription on a topic. The load function
// produces the full current ordered snapshot; the callback receives it on
// the initial load and again after every change signal.
//
// On a load or transport failure the callback fires once with an empty
// snapshot and the subscription stops; retrying is the caller's concern.
// Callers should hold at most one active watch per (identity, collection)
// and cancel it when navigating away.
func Watch[T any](ctx context.Context, notifier Notifier, topic string,
	load func(context.Context) ([]T, error), callback func([]T)) CancelFunc {

	changes, unsubscribe := notifier.Subscribe(topic)

	var mu sync.Mutex
	stopped := false

	// deliver invokes the callback unless the watch has been cancelled.
	// The lock is held across the callback so a concurrent cancel cannot
	// slip a final invocation through.
	deliver := func(snapshot []T) bool {
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return false
		}
		if snapshot == nil {
			snapshot = []T{}
		}
		callback(snapshot)
		return true
	}

	stop := func() {
		mu.Lock()
		stopped = true
		mu.Unlock()
		unsubscribe()
	}

	go func() {
		// The initial load counts as a change.
		snapshot, err := load(ctx)
		if err != nil {
			deliver(nil)
			stop()
			return
		}
		if !deliver(snapshot) {
			return
		}

		for {
			select {
			case <-ctx.Done():
				stop()
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				snapshot, err := load(ctx)
				if err != nil {
					deliver(nil)
					stop()
					return
				}
				if !deliver(snapshot) {
					return
				}
			}
		}
	}()

	return stop
}
