package realtime

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"
)

type fakeRedis struct {
	published []string
	handlers  map[uuid.UUID]func(string, []byte)
	cancelled int
	err       error
}

func (f *fakeRedis) PublishProfileEvent(profileID uuid.UUID, event string, payload []byte) error {
	f.published = append(f.published, event)
	if f.err != nil {
		return f.err
	}
	if h := f.handlers[profileID]; h != nil {
		h(event, payload)
	}
	return nil
}

func (f *fakeRedis) SubscribeProfile(profileID uuid.UUID, handler func(string, []byte)) (func(), error) {
	if f.handlers == nil {
		f.handlers = map[uuid.UUID]func(string, []byte){}
	}
	f.handlers[profileID] = handler
	return func() {
		f.cancelled++
		delete(f.handlers, profileID)
	}, nil
}

func drain(c *Client) []WSMessage {
	var out []WSMessage
	for {
		select {
		case m := <-c.send:
			out = append(out, m)
		default:
			return out
		}
	}
}

func TestHub_SendToProfileReachesOnlyThatProfile(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t), nil, nil)
	me, other := uuid.New(), uuid.New()
	a := &Client{ID: "a", ProfileID: me, send: make(chan WSMessage, 4)}
	b := &Client{ID: "b", ProfileID: me, send: make(chan WSMessage, 4)}
	c := &Client{ID: "c", ProfileID: other, send: make(chan WSMessage, 4)}
	hub.Register(a)
	hub.Register(b)
	hub.Register(c)

	hub.PublishToProfile(me, "notification", map[string]string{"title": "hi"})

	for _, cl := range []*Client{a, b} {
		msgs := drain(cl)
		if len(msgs) != 1 || msgs[0].Event != "notification" {
			t.Fatalf("client %s got %+v", cl.ID, msgs)
		}
		var body map[string]string
		if err := json.Unmarshal(msgs[0].Data, &body); err != nil || body["title"] != "hi" {
			t.Errorf("payload = %s, %v", msgs[0].Data, err)
		}
	}
	if msgs := drain(c); len(msgs) != 0 {
		t.Errorf("other profile got %+v", msgs)
	}
	if hub.Connections(me) != 2 || hub.Connections(other) != 1 {
		t.Errorf("connections = %d/%d", hub.Connections(me), hub.Connections(other))
	}
}

func TestHub_RedisDeliversOnce(t *testing.T) {
	rds := &fakeRedis{}
	hub := NewHub(zaptest.NewLogger(t), rds, rds)
	me := uuid.New()
	a := &Client{ID: "a", ProfileID: me, send: make(chan WSMessage, 4)}
	hub.Register(a)

	hub.PublishToProfile(me, "notification", "x")

	if msgs := drain(a); len(msgs) != 1 {
		t.Fatalf("got %d messages, want exactly 1", len(msgs))
	}
	hub.Unregister(a)
	if rds.cancelled != 1 {
		t.Errorf("subscription cancelled %d times, want 1", rds.cancelled)
	}
}

func TestHub_RedisPublishFailureIsSwallowed(t *testing.T) {
	rds := &fakeRedis{err: errors.New("redis down")}
	hub := NewHub(zaptest.NewLogger(t), rds, nil)
	hub.PublishToProfile(uuid.New(), "notification", "x")
	if len(rds.published) != 1 {
		t.Errorf("published = %v", rds.published)
	}
}

func TestProfileChannel(t *testing.T) {
	id := uuid.MustParse("7d6c3c4e-2b1f-4c38-9a0e-5f8f5b8f2a01")
	if got := ProfileChannel(id); got != "networking:profile:7d6c3c4e-2b1f-4c38-9a0e-5f8f5b8f2a01" {
		t.Errorf("ProfileChannel = %q", got)
	}
}
