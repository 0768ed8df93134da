package ws

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"gridrush/internal/events"
)

func testClient(id string) *Client {
	return &Client{ID: id, Send: make(chan []byte, 16)}
}

func TestRegisterAndSend(t *testing.T) {
	h := NewHub(zap.NewNop())

	c1 := testClient("c1")
	h.Register(c1)

	h.Send("c1", events.Event{Type: "connected", Payload: events.Connected{ConnectionID: "c1"}})

	select {
	case data := <-c1.Send:
		var got events.Event
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Type != "connected" {
			t.Errorf("Type = %q, want %q", got.Type, "connected")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("c1 did not receive the event")
	}
}

func TestSendMany(t *testing.T) {
	h := NewHub(zap.NewNop())

	c1 := testClient("c1")
	c2 := testClient("c2")
	c3 := testClient("c3")
	h.Register(c1)
	h.Register(c2)
	h.Register(c3)

	h.SendMany([]string{"c2", "c3"}, events.Event{Type: "turn_changed"})

	for _, c := range []*Client{c2, c3} {
		select {
		case <-c.Send:
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("%s did not receive the event", c.ID)
		}
	}

	select {
	case <-c1.Send:
		t.Fatal("c1 should not receive an event it was not addressed")
	default:
	}
}

func TestSend_UnknownConnection(t *testing.T) {
	h := NewHub(zap.NewNop())
	// Must not panic or block.
	h.Send("ghost", events.Event{Type: "error"})
}

func TestSend_FullBufferDrops(t *testing.T) {
	h := NewHub(zap.NewNop())

	c := &Client{ID: "c1", Send: make(chan []byte, 1)}
	h.Register(c)

	done := make(chan struct{})
	go func() {
		h.Send("c1", events.Event{Type: "a"})
		h.Send("c1", events.Event{Type: "b"}) // buffer full, dropped
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Send blocked on a full client buffer")
	}
}

func TestUnregister(t *testing.T) {
	h := NewHub(zap.NewNop())

	c := testClient("c1")
	h.Register(c)
	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.Len())
	}

	h.Unregister("c1")
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}

	if _, open := <-c.Send; open {
		t.Error("Send channel should be closed after Unregister")
	}

	// Unregistering twice is a no-op.
	h.Unregister("c1")
}
