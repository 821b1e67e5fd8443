package realtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"
)

type captureSender struct {
	mu     sync.Mutex
	events []string
	got    chan struct{}
}

func newCaptureSender() *captureSender {
	return &captureSender{got: make(chan struct{}, 64)}
}

func (s *captureSender) SendToProfile(_ uuid.UUID, event string, _ interface{}) {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	s.got <- struct{}{}
}

func (s *captureSender) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.got:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for push %d", i+1)
		}
	}
}

func TestRefresher_PushesOnStartAndTick(t *testing.T) {
	var calls atomic.Int32
	snapshot := func(context.Context, uuid.UUID) (interface{}, error) {
		calls.Add(1)
		return map[string]int{"n": 1}, nil
	}
	sender := newCaptureSender()
	r := NewRefresher(uuid.New(), snapshot, sender, 20*time.Millisecond, zaptest.NewLogger(t))

	r.Start()
	r.Start() // second start is a no-op
	sender.wait(t, 3)
	r.Stop()

	if r.Running() {
		t.Fatal("refresher still running after Stop")
	}
	after := calls.Load()
	time.Sleep(60 * time.Millisecond)
	if calls.Load() != after {
		t.Errorf("snapshot called after Stop: %d -> %d", after, calls.Load())
	}
	sender.mu.Lock()
	defer sender.mu.Unlock()
	for _, e := range sender.events {
		if e != EventSnapshot {
			t.Errorf("event = %q, want %q", e, EventSnapshot)
		}
	}
}

func TestRefresher_RestartAfterStop(t *testing.T) {
	sender := newCaptureSender()
	snapshot := func(context.Context, uuid.UUID) (interface{}, error) { return nil, nil }
	r := NewRefresher(uuid.New(), snapshot, sender, time.Hour, zaptest.NewLogger(t))

	r.Start()
	sender.wait(t, 1)
	r.Stop()
	r.Start()
	sender.wait(t, 1)
	r.Stop()
	r.Stop() // idempotent
}

func TestRefresher_NudgePushesBeforeTick(t *testing.T) {
	sender := newCaptureSender()
	snapshot := func(context.Context, uuid.UUID) (interface{}, error) { return "x", nil }
	r := NewRefresher(uuid.New(), snapshot, sender, time.Hour, zaptest.NewLogger(t))
	r.Start()
	defer r.Stop()

	sender.wait(t, 1)
	r.Nudge()
	sender.wait(t, 1)
}

func TestRefresher_SnapshotErrorSkipsPush(t *testing.T) {
	var calls atomic.Int32
	snapshot := func(context.Context, uuid.UUID) (interface{}, error) {
		calls.Add(1)
		return nil, errors.New("db down")
	}
	sender := newCaptureSender()
	r := NewRefresher(uuid.New(), snapshot, sender, 10*time.Millisecond, zaptest.NewLogger(t))
	r.Start()
	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	r.Stop()

	if calls.Load() < 3 {
		t.Fatalf("snapshot calls = %d, want the loop to keep ticking after errors", calls.Load())
	}
	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.events) != 0 {
		t.Errorf("pushed %d events on failing snapshots", len(sender.events))
	}
}

func TestRefresherRegistry_FollowsPresence(t *testing.T) {
	sender := newCaptureSender()
	snapshot := func(context.Context, uuid.UUID) (interface{}, error) { return nil, nil }
	reg := NewRefresherRegistry(snapshot, sender, time.Hour, zaptest.NewLogger(t))
	hub := NewHub(zaptest.NewLogger(t), nil, nil)
	reg.SetCounter(hub.Connections)
	hub.SetPresenceHandler(reg.OnPresence)
	hub.SetRefreshHandler(reg.Nudge)

	profile := uuid.New()
	first := &Client{ID: "a", ProfileID: profile, send: make(chan WSMessage, 8)}
	second := &Client{ID: "b", ProfileID: profile, send: make(chan WSMessage, 8)}

	hub.Register(first)
	hub.Register(second)
	if reg.Running() != 1 {
		t.Fatalf("running = %d after two sockets, want 1", reg.Running())
	}
	sender.wait(t, 1)

	hub.requestRefresh(profile)
	sender.wait(t, 1)

	hub.Unregister(first)
	if reg.Running() != 1 {
		t.Fatalf("running = %d with one socket left, want 1", reg.Running())
	}
	hub.Unregister(second)
	if reg.Running() != 0 {
		t.Fatalf("running = %d after last socket closed, want 0", reg.Running())
	}
	hub.Unregister(second) // double unregister is ignored
	reg.StopAll()
}

func TestRefresherRegistry_LatePresenceUsesLiveCount(t *testing.T) {
	sender := newCaptureSender()
	snapshot := func(context.Context, uuid.UUID) (interface{}, error) { return nil, nil }
	reg := NewRefresherRegistry(snapshot, sender, time.Hour, zaptest.NewLogger(t))
	hub := NewHub(zaptest.NewLogger(t), nil, nil)
	reg.SetCounter(hub.Connections)
	hub.SetPresenceHandler(reg.OnPresence)
	defer reg.StopAll()

	profile := uuid.New()
	old := &Client{ID: "old", ProfileID: profile, send: make(chan WSMessage, 8)}
	hub.Register(old)
	hub.Unregister(old)
	hub.Register(&Client{ID: "new", ProfileID: profile, send: make(chan WSMessage, 8)})
	if reg.Running() != 1 {
		t.Fatalf("running = %d with one socket open, want 1", reg.Running())
	}

	// the old socket's close callback arrives after the new socket registered
	reg.OnPresence(profile, 0)
	if reg.Running() != 1 {
		t.Errorf("running = %d after a stale close, want 1", reg.Running())
	}

	// an open callback for a profile whose sockets are all gone
	gone := uuid.New()
	reg.OnPresence(gone, 1)
	if reg.Running() != 1 {
		t.Errorf("running = %d after a stale open, want 1", reg.Running())
	}
}
