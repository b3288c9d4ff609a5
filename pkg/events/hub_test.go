package events

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	h.Publish(EstimationCompleted, EstimationCompletedEvent{Nodes: 2, Sensors: 3, Ts: 42})

	select {
	case ev := <-ch:
		if ev.Name != EstimationCompleted {
			t.Errorf("event name = %q", ev.Name)
		}
		payload, err := DecodeAs[EstimationCompletedEvent](ev)
		if err != nil {
			t.Fatal(err)
		}
		if payload.Nodes != 2 || payload.Sensors != 3 || payload.Ts != 42 {
			t.Errorf("payload = %+v", payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}

	h.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Unsubscribe")
	}
}

func TestPublishDropsWhenSlow(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	// Fill the buffer past capacity; Publish must never block.
	for i := 0; i < 100; i++ {
		h.Publish(EstimationCompleted, EstimationCompletedEvent{Ts: int64(i)})
	}

	if got := len(ch); got != cap(ch) {
		t.Errorf("buffered events = %d, want %d", got, cap(ch))
	}
}

func TestNilHub(t *testing.T) {
	var h *Hub
	// Publishing on a nil hub is a no-op, not a panic.
	h.Publish(EstimationCompleted, nil)
}
