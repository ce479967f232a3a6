package notify

import (
	"testing"
	"time"
)

func TestHubDelivers(t *testing.T) {
	h := NewHub(4)
	a, cancelA := h.Subscribe()
	b, cancelB := h.Subscribe()
	defer cancelA()
	defer cancelB()

	h.Publish(Change{Key: "home-finances-accounts", Origin: "p1"})

	for _, ch := range []<-chan Change{a, b} {
		select {
		case c := <-ch:
			if c.Key != "home-finances-accounts" {
				t.Fatalf("unexpected key %q", c.Key)
			}
		case <-time.After(time.Second):
			t.Fatal("change not delivered")
		}
	}
}

func TestHubCancelClosesChannel(t *testing.T) {
	h := NewHub(1)
	ch, cancel := h.Subscribe()
	cancel()
	cancel() // idempotent
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel")
	}
	if h.Subscribers() != 0 {
		t.Fatalf("expected no subscribers, got %d", h.Subscribers())
	}
	h.Publish(Change{Key: "k"}) // must not panic
}

func TestHubDropsForSlowSubscribers(t *testing.T) {
	h := NewHub(1)
	ch, cancel := h.Subscribe()
	defer cancel()
	h.Publish(Change{Key: "first"})
	h.Publish(Change{Key: "second"})
	if c := <-ch; c.Key != "first" {
		t.Fatalf("expected first, got %q", c.Key)
	}
	select {
	case c := <-ch:
		t.Fatalf("expected drop, got %q", c.Key)
	default:
	}
}
