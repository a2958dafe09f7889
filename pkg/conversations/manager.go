// Package conversations resolves conversation identity: one record per
// unordered participant pair, regardless of which side initiates.
package conversations

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/logger"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/models"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/store"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/unread"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/utils"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/validation"
)

// Manager resolves and creates conversations. The mutex serializes
// create and summary-update read-modify-write cycles; lookups go straight
// to the store.
type Manager struct {
	mu    sync.Mutex
	agg   *unread.Aggregator
	nowNs func() int64
}

func NewManager(agg *unread.Aggregator) *Manager {
	return &Manager{agg: agg, nowNs: utils.NowNano}
}

// CanonicalPair lowercases both identities and orders them
// lexicographically, so (A,B) and (B,A) map to the same pair.
func CanonicalPair(a, b string) (low, high string) {
	p := []string{strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))}
	sort.Strings(p)
	return p[0], p[1]
}

// GetOrCreate returns the conversation for the unordered pair, creating it
// on first contact. Concurrent first-contact callers race on the mutex;
// the loser observes the winner's record. A missing conversation is never
// an error.
func (m *Manager) GetOrCreate(idA, idB string) (models.Conversation, error) {
	low, high := CanonicalPair(idA, idB)
	if err := validation.ValidateIdentity(low); err != nil {
		return models.Conversation{}, err
	}
	if err := validation.ValidateIdentity(high); err != nil {
		return models.Conversation{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, err := store.GetConversationByPair(low, high)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.Conversation{}, err
	}

	now := m.nowNs()
	c = models.Conversation{
		ID:              utils.GenID(),
		ParticipantLow:  low,
		ParticipantHigh: high,
		LastMessageTS:   now,
		CreatedTS:       now,
	}
	if err := store.SaveConversation(c); err != nil {
		return models.Conversation{}, err
	}
	logger.Log.Info("conversation_created", zap.String("id", c.ID), zap.String("low", low), zap.String("high", high))
	return c, nil
}

// Get returns a conversation by id.
func (m *Manager) Get(id string) (models.Conversation, error) {
	return store.GetConversation(id)
}

// UpdateSummary refreshes the denormalized last-message fields after a
// send. The timestamp guard keeps a delayed writer from clobbering a newer
// summary; summary and message list may still disagree briefly, which the
// next send repairs.
func (m *Manager) UpdateSummary(conversationID, lastMessage string, ts int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, err := store.GetConversation(conversationID)
	if err != nil {
		return err
	}
	if ts < c.LastMessageTS && c.LastMessage != "" {
		return nil
	}
	c.LastMessage = lastMessage
	c.LastMessageTS = ts
	return store.SaveConversation(c)
}

// ListForUser returns identity's conversations newest-activity first, each
// annotated with the other participant and the caller's unread count.
func (m *Manager) ListForUser(identity string) ([]models.ConversationSummary, error) {
	identity = strings.ToLower(strings.TrimSpace(identity))
	if err := validation.ValidateIdentity(identity); err != nil {
		return nil, err
	}
	convs, err := store.ListConversationsFor(identity)
	if err != nil {
		return nil, err
	}
	sort.Slice(convs, func(i, j int) bool { return convs[i].LastMessageTS > convs[j].LastMessageTS })

	now := time.Now().UTC()
	out := make([]models.ConversationSummary, 0, len(convs))
	for _, c := range convs {
		n, err := m.agg.ForConversation(c.ID, identity)
		if err != nil {
			return nil, err
		}
		out = append(out, models.ConversationSummary{
			Conversation:   c,
			Participant:    c.Other(identity),
			Unread:         n,
			LastMessageAgo: utils.RelativeTime(time.Unix(0, c.LastMessageTS).UTC(), now),
		})
	}
	return out, nil
}
