package live

import (
	"context"
	"sync"
)

// Notifier delivers change signals for topics. Signals carry no payload:
// a watcher that receives one re-reads the full snapshot from the store.
// Delivery is at-least-once; coalescing consecutive signals is allowed.
type Notifier interface {
	// Publish signals that the topic's collection changed.
	Publish(ctx context.Context, topic string) error

	// Subscribe returns a channel that receives a signal per change, and a
	// cancel function. After cancel returns, the channel is closed.
	Subscribe(topic string) (<-chan struct{}, func())
}

// MemoryNotifier is an in-process Notifier for single-node deployments and
// tests.
type MemoryNotifier struct {
	mu     sync.Mutex
	subs   map[string]map[int]chan struct{}
	nextID int
}

// NewMemoryNotifier creates an in-process notifier
func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{subs: make(map[string]map[int]chan struct{})}
}

// Publish signals every subscriber of the topic. Subscriber channels hold
// one pending signal; a signal arriving while one is pending is coalesced.
func (n *MemoryNotifier) Publish(ctx context.Context, topic string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs[topic] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscriber channel for the topic
func (n *MemoryNotifier) Subscribe(topic string) (<-chan struct{}, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan struct{}, 1)
	id := n.nextID
	n.nextID++

	if n.subs[topic] == nil {
		n.subs[topic] = make(map[int]chan struct{})
	}
	n.subs[topic][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs[topic], id)
			if len(n.subs[topic]) == 0 {
				delete(n.subs, topic)
			}
			close(ch)
		})
	}

	return ch, cancel
}
