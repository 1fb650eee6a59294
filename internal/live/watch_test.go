package live

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// stubLoader serves a swappable snapshot, or an error.
type stubLoader struct {
	mu       sync.Mutex
	snapshot []string
	err      error
}

func (l *stubLoader) set(snapshot []string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshot = snapshot
	l.err = err
}

func (l *stubLoader) load(ctx context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	return l.snapshot, nil
}

func collectSnapshots() (func([]string), <-chan []string) {
	ch := make(chan []string, 16)
	return func(s []string) { ch <- s }, ch
}

func waitSnapshot(t *testing.T, ch <-chan []string) []string {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func assertNoSnapshot(t *testing.T, ch <-chan []string) {
	t.Helper()
	select {
	case s := <-ch:
		t.Fatalf("unexpected snapshot delivered: %v", s)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatchDeliversInitialSnapshot(t *testing.T) {
	notifier := NewMemoryNotifier()
	loader := &stubLoader{snapshot: []string{"first", "second"}}
	callback, snapshots := collectSnapshots()

	cancel := Watch(context.Background(), notifier, "ns/users/p1/feedback", loader.load, callback)
	defer cancel()

	got := waitSnapshot(t, snapshots)
	if len(got) != 2 || got[0] != "first" {
		t.Errorf("initial snapshot = %v, want [first second]", got)
	}
}

func TestWatchReloadsOnPublish(t *testing.T) {
	notifier := NewMemoryNotifier()
	loader := &stubLoader{snapshot: []string{"old"}}
	callback, snapshots := collectSnapshots()
	topic := "ns/users/p1/pronunciationHistory"

	cancel := Watch(context.Background(), notifier, topic, loader.load, callback)
	defer cancel()

	waitSnapshot(t, snapshots)

	loader.set([]string{"new", "old"}, nil)
	if err := notifier.Publish(context.Background(), topic); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	got := waitSnapshot(t, snapshots)
	if len(got) != 2 || got[0] != "new" {
		t.Errorf("snapshot after change = %v, want [new old]", got)
	}
}

func TestWatchCancelStopsCallbacks(t *testing.T) {
	notifier := NewMemoryNotifier()
	loader := &stubLoader{snapshot: []string{"only"}}
	callback, snapshots := collectSnapshots()
	topic := "ns/users/p1/assignedExercises"

	cancel := Watch(context.Background(), notifier, topic, loader.load, callback)
	waitSnapshot(t, snapshots)

	cancel()
	// Cancel is idempotent.
	cancel()

	notifier.Publish(context.Background(), topic)
	assertNoSnapshot(t, snapshots)
}

func TestWatchLoadErrorDeliversEmptyOnce(t *testing.T) {
	notifier := NewMemoryNotifier()
	loader := &stubLoader{err: errors.New("store unavailable")}
	callback, snapshots := collectSnapshots()
	topic := "ns/users/p1/feedback"

	cancel := Watch(context.Background(), notifier, topic, loader.load, callback)
	defer cancel()

	got := waitSnapshot(t, snapshots)
	if got == nil {
		t.Fatal("error snapshot is nil, want empty slice")
	}
	if len(got) != 0 {
		t.Errorf("error snapshot = %v, want empty", got)
	}

	// The subscription stopped; recovery and further changes are invisible.
	loader.set([]string{"recovered"}, nil)
	notifier.Publish(context.Background(), topic)
	assertNoSnapshot(t, snapshots)
}

func TestWatchErrorAfterInitialSnapshot(t *testing.T) {
	notifier := NewMemoryNotifier()
	loader := &stubLoader{snapshot: []string{"fine"}}
	callback, snapshots := collectSnapshots()
	topic := "ns/users/p2/feedback"

	cancel := Watch(context.Background(), notifier, topic, loader.load, callback)
	defer cancel()

	waitSnapshot(t, snapshots)

	loader.set(nil, errors.New("transport error"))
	notifier.Publish(context.Background(), topic)

	got := waitSnapshot(t, snapshots)
	if len(got) != 0 {
		t.Errorf("snapshot after transport error = %v, want empty", got)
	}

	notifier.Publish(context.Background(), topic)
	assertNoSnapshot(t, snapshots)
}

func TestWatchContextCancellation(t *testing.T) {
	notifier := NewMemoryNotifier()
	loader := &stubLoader{snapshot: []string{"x"}}
	callback, snapshots := collectSnapshots()
	topic := "ns/users/p3/feedback"

	ctx, cancelCtx := context.WithCancel(context.Background())
	cancel := Watch(ctx, notifier, topic, loader.load, callback)
	defer cancel()

	waitSnapshot(t, snapshots)

	cancelCtx()
	// Give the watch goroutine a moment to observe the cancellation.
	time.Sleep(50 * time.Millisecond)

	notifier.Publish(context.Background(), topic)
	assertNoSnapshot(t, snapshots)
}

func TestMemoryNotifierFanout(t *testing.T) {
	notifier := NewMemoryNotifier()
	topic := "ns/users/p1/feedback"

	ch1, cancel1 := notifier.Subscribe(topic)
	ch2, cancel2 := notifier.Subscribe(topic)
	defer cancel1()
	defer cancel2()

	if err := notifier.Publish(context.Background(), topic); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	for i, ch := range []<-chan struct{}{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d did not receive signal", i+1)
		}
	}
}

func TestMemoryNotifierCancelClosesChannel(t *testing.T) {
	notifier := NewMemoryNotifier()

	ch, cancel := notifier.Subscribe("ns/users/p1/feedback")
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("received signal on cancelled subscription")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestTopicPaths(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "user collection",
			got:  UserTopic("speech-therapy-app", "p1", CollectionHistory),
			want: "speech-therapy-app/users/p1/pronunciationHistory",
		},
		{
			name: "directory",
			got:  DirectoryTopic("speech-therapy-app"),
			want: "speech-therapy-app/public/data/patients",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("topic = %q, want %q", tt.got, tt.want)
			}
		})
	}
}
