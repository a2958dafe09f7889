// Package live implements the in-process push channels backing real-time
// delivery: one topic per conversation (message inserts) and one per
// identity (notification inserts, unread invalidation). Delivery is
// at-least-once from the subscriber's point of view; consumers dedup by
// record id.
package live

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/logger"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/telemetry"
)

// Topic name constructors. Keeping them here means every publisher and
// subscriber agrees on the wire-level topic strings.
func MessagesTopic(conversationID string) string { return "messages:" + conversationID }
func NotificationsTopic(identity string) string  { return "notifications:" + identity }
func UnreadTopic(identity string) string         { return "unread:" + identity }

const defaultBuffer = 64

// Hub routes published payloads to topic subscribers. Each subscription has
// its own buffered queue and dispatch goroutine, so one slow consumer never
// blocks a publisher or its siblings; a consumer that overflows its buffer
// is dropped instead.
type Hub struct {
	mu         sync.RWMutex
	topics     map[string]map[*Subscription]struct{}
	buffer     int
	maxPayload int64
}

// NewHub creates a hub. buffer <= 0 selects the default per-subscription
// buffer; maxPayload <= 0 disables the payload bound.
func NewHub(buffer int, maxPayload int64) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		topics:     make(map[string]map[*Subscription]struct{}),
		buffer:     buffer,
		maxPayload: maxPayload,
	}
}

// Subscription is a live listener on one topic. Cancel is leak-free and
// synchronous: once it returns, the callback will not run again.
type Subscription struct {
	hub   *Hub
	topic string
	fn    func(payload []byte)
	ch    chan []byte
	done  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

// Subscribe registers fn for every payload published on topic. fn runs on
// the subscription's own goroutine, in publish order; it must hand off
// long-running work rather than block the queue.
func (h *Hub) Subscribe(topic string, fn func(payload []byte)) *Subscription {
	s := &Subscription{
		hub:   h,
		topic: topic,
		fn:    fn,
		ch:    make(chan []byte, h.buffer),
		done:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.loop()

	h.mu.Lock()
	subs := h.topics[topic]
	if subs == nil {
		subs = make(map[*Subscription]struct{})
		h.topics[topic] = subs
	}
	subs[s] = struct{}{}
	h.mu.Unlock()

	telemetry.LiveSubscribers.Inc()
	logger.Log.Debug("live_subscribed", zap.String("topic", topic))
	return s
}

func (s *Subscription) loop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case p := <-s.ch:
			s.fn(p)
		}
	}
}

// Cancel removes the subscription and waits for any in-flight callback to
// finish. Calling Cancel from inside the callback would deadlock; bridges
// cancel from their read loop instead. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.hub.unsubscribe(s)
	s.signal()
	s.wg.Wait()
}

// signal stops the dispatch goroutine without waiting. Used by the drop
// path, which cannot block inside Publish.
func (s *Subscription) signal() {
	s.once.Do(func() { close(s.done) })
}

func (h *Hub) unsubscribe(s *Subscription) {
	h.mu.Lock()
	if subs, ok := h.topics[s.topic]; ok {
		if _, present := subs[s]; present {
			delete(subs, s)
			if len(subs) == 0 {
				delete(h.topics, s.topic)
			}
			telemetry.LiveSubscribers.Dec()
		}
	}
	h.mu.Unlock()
}

// Publish marshals v and fans it out to every subscriber of topic.
// Subscribers whose buffers are full are dropped; persisted state is the
// source of truth, so a dropped client refetches on reconnect.
func (h *Hub) Publish(topic string, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		logger.Log.Error("live_publish_marshal_failed", zap.String("topic", topic), zap.Error(err))
		return
	}
	if h.maxPayload > 0 && int64(len(payload)) > h.maxPayload {
		logger.Log.Warn("live_publish_oversize", zap.String("topic", topic), zap.Int("bytes", len(payload)))
		return
	}

	h.mu.RLock()
	var victims []*Subscription
	for s := range h.topics[topic] {
		select {
		case s.ch <- payload:
		default:
			victims = append(victims, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range victims {
		h.unsubscribe(s)
		s.signal()
		logger.Log.Warn("live_subscriber_dropped", zap.String("topic", topic))
	}
}

// Subscribers returns the current subscriber count for a topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
