// Package reconcile merges three message timelines into one visible
// history: optimistic local placeholders, send results, and at-least-once
// subscription deliveries. The merge is idempotent by durable id, so a
// message is visible exactly once no matter how many paths deliver it.
package reconcile

import (
	"sync"
	"time"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/models"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/utils"
)

// State of one visible entry.
type State string

const (
	// Pending entries exist only locally, under a caller-chosen temp id.
	Pending State = "pending"
	// Confirmed entries carry a durable id.
	Confirmed State = "confirmed"
	// Failed entries keep their content for retry but leave the visible
	// list.
	Failed State = "failed"
)

// matchWindow bounds how far apart a pending placeholder and an observed
// durable message may be in time and still be treated as the same send.
const matchWindow = 2 * time.Minute

type entry struct {
	state State
	msg   models.Message
}

// History is one conversation's reconciled message list.
type History struct {
	mu      sync.Mutex
	order   []*entry
	byID    map[string]*entry // durable id -> confirmed entry
	pending map[string]*entry // temp id -> pending/failed entry
}

func NewHistory() *History {
	return &History{
		byID:    make(map[string]*entry),
		pending: make(map[string]*entry),
	}
}

// AddPending records an optimistic placeholder under tempID and returns it
// as it will be rendered. The placeholder occupies its slot in the visible
// list until confirmed, failed, or matched by an observed delivery.
func (h *History) AddPending(tempID, sender, content, kind string) models.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := models.Message{
		ID:        tempID,
		Sender:    sender,
		Content:   content,
		Kind:      kind,
		CreatedTS: utils.NowNano(),
	}
	e := &entry{state: Pending, msg: m}
	h.order = append(h.order, e)
	h.pending[tempID] = e
	return m
}

// Confirm replaces the placeholder with the durable message returned by
// send. The swap happens in place, exactly once: the temp id disappears
// and the durable id takes its slot. Confirming an unknown temp id after
// the subscription already matched the send is a no-op.
func (h *History) Confirm(tempID string, m models.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, seen := h.byID[m.ID]; seen {
		// subscription got here first; drop the placeholder if it lingers
		h.dropPendingLocked(tempID)
		return
	}
	if e, ok := h.pending[tempID]; ok {
		delete(h.pending, tempID)
		e.state = Confirmed
		e.msg = m
		h.byID[m.ID] = e
		return
	}
	// no placeholder (caller skipped optimistic render); append
	e := &entry{state: Confirmed, msg: m}
	h.order = append(h.order, e)
	h.byID[m.ID] = e
}

// Fail marks the placeholder failed. It leaves the visible list but its
// content is retained; Retryable hands it back for a retry.
func (h *History) Fail(tempID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if e, ok := h.pending[tempID]; ok {
		e.state = Failed
	}
}

// Retryable returns the failed placeholder's content, if any.
func (h *History) Retryable(tempID string) (content string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if e, present := h.pending[tempID]; present && e.state == Failed {
		return e.msg.Content, true
	}
	return "", false
}

// Observe merges a subscription delivery. A durable id already present is
// a duplicate and is discarded; a delivery matching a pending placeholder
// (same sender and content, close enough in time) confirms it in place;
// anything else appends. Returns true when the visible list changed.
func (h *History) Observe(m models.Message) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, seen := h.byID[m.ID]; seen {
		return false
	}
	for tempID, e := range h.pending {
		if e.state != Pending || e.msg.Sender != m.Sender || e.msg.Content != m.Content {
			continue
		}
		delta := m.CreatedTS - e.msg.CreatedTS
		if delta < 0 {
			delta = -delta
		}
		if time.Duration(delta) > matchWindow {
			continue
		}
		delete(h.pending, tempID)
		e.state = Confirmed
		e.msg = m
		h.byID[m.ID] = e
		return true
	}
	e := &entry{state: Confirmed, msg: m}
	h.order = append(h.order, e)
	h.byID[m.ID] = e
	return true
}

// Messages returns the visible list: pending placeholders and confirmed
// messages in arrival order, failed entries excluded.
func (h *History) Messages() []models.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]models.Message, 0, len(h.order))
	for _, e := range h.order {
		if e.state == Failed {
			continue
		}
		out = append(out, e.msg)
	}
	return out
}

func (h *History) dropPendingLocked(tempID string) {
	e, ok := h.pending[tempID]
	if !ok {
		return
	}
	delete(h.pending, tempID)
	for i, oe := range h.order {
		if oe == e {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}
