// Package unread derives unread counts from stored records. Counts are
// recomputed on every call; there is no persisted counter that could drift
// from the rows it summarizes.
package unread

import (
	"strings"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/store"
)

// Counts is one user's unread snapshot.
type Counts struct {
	Conversations map[string]int `json:"conversations"`
	Messages      int            `json:"messages"`
	Notifications int            `json:"notifications"`
	Total         int            `json:"total"`
}

// Aggregator answers unread queries against the store.
type Aggregator struct{}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// ForConversation counts unread messages addressed to identity in one
// conversation.
func (a *Aggregator) ForConversation(conversationID, identity string) (int, error) {
	return store.CountUnreadMessages(conversationID, strings.ToLower(identity))
}

// TotalMessages sums unread messages for identity across every
// conversation they participate in.
func (a *Aggregator) TotalMessages(identity string) (int, error) {
	identity = strings.ToLower(identity)
	convs, err := store.ListConversationsFor(identity)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, c := range convs {
		n, err := store.CountUnreadMessages(c.ID, identity)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// Notifications counts identity's unread notifications.
func (a *Aggregator) Notifications(identity string) (int, error) {
	return store.CountUnreadNotifications(strings.ToLower(identity))
}

// Total is messages plus notifications.
func (a *Aggregator) Total(identity string) (int, error) {
	m, err := a.TotalMessages(identity)
	if err != nil {
		return 0, err
	}
	n, err := a.Notifications(identity)
	if err != nil {
		return 0, err
	}
	return m + n, nil
}

// Snapshot computes the full unread view served by the API and pushed by
// the Refresher.
func (a *Aggregator) Snapshot(identity string) (Counts, error) {
	identity = strings.ToLower(identity)
	out := Counts{Conversations: map[string]int{}}
	convs, err := store.ListConversationsFor(identity)
	if err != nil {
		return out, err
	}
	for _, c := range convs {
		n, err := store.CountUnreadMessages(c.ID, identity)
		if err != nil {
			return out, err
		}
		if n > 0 {
			out.Conversations[c.ID] = n
		}
		out.Messages += n
	}
	out.Notifications, err = store.CountUnreadNotifications(identity)
	if err != nil {
		return out, err
	}
	out.Total = out.Messages + out.Notifications
	return out, nil
}
