package live

import (
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for delivery")
		return nil
	}
}

func TestPublishReachesSubscribers(t *testing.T) {
	h := NewHub(8, 0)

	got := make(chan []byte, 1)
	sub := h.Subscribe("t1", func(p []byte) { got <- p })
	defer sub.Cancel()

	h.Publish("t1", map[string]string{"hello": "world"})

	p := waitFor(t, got)
	if string(p) != `{"hello":"world"}` {
		t.Fatalf("unexpected payload: %s", p)
	}
}

func TestPublishIsTopicScoped(t *testing.T) {
	h := NewHub(8, 0)

	got := make(chan []byte, 1)
	sub := h.Subscribe("t1", func(p []byte) { got <- p })
	defer sub.Cancel()

	h.Publish("t2", "other")

	select {
	case p := <-got:
		t.Fatalf("received event for foreign topic: %s", p)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCancelStopsCallbacks(t *testing.T) {
	h := NewHub(8, 0)

	var calls int64
	sub := h.Subscribe("t1", func([]byte) { atomic.AddInt64(&calls, 1) })

	h.Publish("t1", 1)
	// let the dispatch goroutine drain
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt64(&calls) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("first publish never delivered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	sub.Cancel()
	before := atomic.LoadInt64(&calls)

	h.Publish("t1", 2)
	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt64(&calls); got != before {
		t.Fatalf("callback ran after Cancel returned: %d -> %d", before, got)
	}
	if n := h.Subscribers("t1"); n != 0 {
		t.Fatalf("expected 0 subscribers; got %d", n)
	}
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	h := NewHub(1, 0)

	block := make(chan struct{})
	sub := h.Subscribe("t1", func([]byte) { <-block })
	defer func() {
		close(block)
		sub.Cancel()
	}()

	// first delivery occupies the callback, second fills the buffer, the
	// rest overflow until the hub gives up on the subscriber
	for i := 0; i < 10; i++ {
		h.Publish("t1", i)
	}

	deadline := time.Now().Add(2 * time.Second)
	for h.Subscribers("t1") != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("slow subscriber was never dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestOversizePayloadIsDiscarded(t *testing.T) {
	h := NewHub(8, 16)

	got := make(chan []byte, 1)
	sub := h.Subscribe("t1", func(p []byte) { got <- p })
	defer sub.Cancel()

	h.Publish("t1", map[string]string{"k": "this payload is larger than sixteen bytes"})

	select {
	case p := <-got:
		t.Fatalf("oversize payload was delivered: %s", p)
	case <-time.After(100 * time.Millisecond):
	}
}
