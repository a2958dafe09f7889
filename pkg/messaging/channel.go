// Package messaging sends messages into conversations, persists them and
// relays them over per-conversation live channels.
package messaging

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/conversations"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/live"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/logger"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/models"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/notify"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/store"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/telemetry"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/utils"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/validation"
)

// Channel is the message send/subscribe/read-state service.
type Channel struct {
	convs  *conversations.Manager
	hub    *live.Hub
	fanout *notify.Fanout
}

func NewChannel(convs *conversations.Manager, hub *live.Hub, fanout *notify.Fanout) *Channel {
	return &Channel{convs: convs, hub: hub, fanout: fanout}
}

// Send resolves the conversation, persists the message, refreshes the
// conversation summary and publishes the insert. The message insert and
// the summary update are two sequential writes, not a transaction: if the
// second fails the summary is stale until the next send repairs it, which
// is accepted rather than engineered away.
func (c *Channel) Send(sender, recipient, content, kind string) (models.Message, error) {
	sender = strings.ToLower(strings.TrimSpace(sender))
	recipient = strings.ToLower(strings.TrimSpace(recipient))
	if kind == "" {
		kind = models.KindText
	}

	// validate before touching the store so a rejected send cannot mint an
	// empty conversation
	if err := validation.ValidateSend(sender, recipient, content, kind); err != nil {
		return models.Message{}, err
	}

	conv, err := c.convs.GetOrCreate(sender, recipient)
	if err != nil {
		return models.Message{}, err
	}

	m := models.Message{
		ID:           utils.GenID(),
		Conversation: conv.ID,
		Sender:       sender,
		Recipient:    recipient,
		Content:      content,
		Kind:         kind,
		CreatedTS:    utils.NowNano(),
	}
	if err := store.SaveMessage(m); err != nil {
		return models.Message{}, err
	}

	if err := c.convs.UpdateSummary(conv.ID, content, m.CreatedTS); err != nil {
		// stale summary self-heals on the next send
		logger.Log.Warn("conversation_summary_update_failed", zap.String("conversation", conv.ID), zap.Error(err))
	}

	c.hub.Publish(live.MessagesTopic(conv.ID), m)
	c.hub.Publish(live.UnreadTopic(recipient), struct {
		Kind string `json:"kind"`
		ID   string `json:"id"`
	}{Kind: "message", ID: m.ID})

	if recipient != sender {
		c.fanout.Chat(recipient, sender)
	}

	telemetry.MessagesSent.Inc()
	logger.Log.Info("message_sent", zap.String("conversation", conv.ID), zap.String("id", m.ID))
	return m, nil
}

// Subscribe delivers every message inserted into the conversation,
// including the subscriber's own sends from other sessions. At-least-once;
// consumers dedup by id before appending to visible history.
func (c *Channel) Subscribe(conversationID string, fn func(models.Message)) *live.Subscription {
	return c.hub.Subscribe(live.MessagesTopic(conversationID), func(payload []byte) {
		var m models.Message
		if err := json.Unmarshal(payload, &m); err != nil {
			logger.Log.Error("message_decode_failed", zap.Error(err))
			return
		}
		fn(m)
	})
}

// MarkRead flips every unread message addressed to reader in the
// conversation. Flipping nothing is a no-op, not an error; nothing is
// ever un-read.
func (c *Channel) MarkRead(conversationID, reader string) (int, error) {
	reader = strings.ToLower(strings.TrimSpace(reader))
	if err := validation.ValidateIdentity(reader); err != nil {
		return 0, err
	}
	flipped, err := store.MarkMessagesRead(conversationID, reader)
	if err != nil {
		return flipped, err
	}
	if flipped > 0 {
		c.hub.Publish(live.UnreadTopic(reader), struct {
			Kind string `json:"kind"`
		}{Kind: "messages_read"})
	}
	return flipped, nil
}

// History returns the conversation's messages in insertion order; limit
// keeps the newest n.
func (c *Channel) History(conversationID string, limit int) ([]models.Message, error) {
	if limit > 0 {
		return store.ListMessages(conversationID, limit)
	}
	return store.ListMessages(conversationID)
}
