package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/logger"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/models"
)

// Message key space:
//
//	msg:<convID>:<ts20>-<seq6>  -> Message JSON (insertion order)
//	msgid:<msgID>               -> message key
//
// Messages are append-only; the only in-place mutation is the read flip,
// which is monotonic (false to true) and therefore safe to race.

func msgPrefix(convID string) string {
	return "msg:" + convID + ":"
}

func msgIDKey(id string) string {
	return "msgid:" + id
}

// SaveMessage appends a message to its conversation and indexes it by id.
func SaveMessage(m models.Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	key := msgPrefix(m.Conversation) + keyTail(m.CreatedTS)
	if err := set(key, data); err != nil {
		logger.Log.Error("save_message_failed", zap.String("conversation", m.Conversation), zap.String("key", key), zap.Error(err))
		return err
	}
	if err := set(msgIDKey(m.ID), []byte(key)); err != nil {
		logger.Log.Error("save_message_index_failed", zap.String("id", m.ID), zap.Error(err))
		return err
	}
	logger.Log.Debug("message_saved", zap.String("conversation", m.Conversation), zap.String("id", m.ID))
	return nil
}

// ListMessages returns all messages for a conversation in insertion order.
// An optional limit keeps only the newest n.
func ListMessages(convID string, limit ...int) ([]models.Message, error) {
	if err := ready(); err != nil {
		return nil, err
	}
	prefix := []byte(msgPrefix(convID))
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Message
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			logger.Log.Error("list_messages_bad_record", zap.ByteString("key", iter.Key()), zap.Error(err))
			continue
		}
		out = append(out, m)
	}
	if len(limit) > 0 && limit[0] >= 0 && limit[0] < len(out) {
		out = out[len(out)-limit[0]:]
	}
	return out, nil
}

// GetMessage looks a message up by id.
func GetMessage(id string) (models.Message, error) {
	var m models.Message
	key, err := get(msgIDKey(id))
	if err != nil {
		return m, err
	}
	v, err := get(string(key))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(v, &m); err != nil {
		return m, fmt.Errorf("invalid stored message: %w", err)
	}
	return m, nil
}

// MarkMessagesRead flips Read to true on every unread message in the
// conversation addressed to reader, and returns how many were flipped.
// Already-read messages are never touched; the transition is one-way.
func MarkMessagesRead(convID, reader string) (int, error) {
	if err := ready(); err != nil {
		return 0, err
	}
	prefix := []byte(msgPrefix(convID))
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return 0, err
	}
	defer iter.Close()
	flipped := 0
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			continue
		}
		if m.Recipient != reader || m.Read {
			continue
		}
		m.Read = true
		data, err := json.Marshal(m)
		if err != nil {
			return flipped, fmt.Errorf("failed to marshal message: %w", err)
		}
		key := append([]byte(nil), iter.Key()...)
		if err := set(string(key), data); err != nil {
			return flipped, err
		}
		flipped++
	}
	if flipped > 0 {
		logger.Log.Info("messages_marked_read", zap.String("conversation", convID), zap.String("reader", reader), zap.Int("count", flipped))
	}
	return flipped, nil
}

// CountUnreadMessages counts messages in the conversation addressed to
// identity that are still unread.
func CountUnreadMessages(convID, identity string) (int, error) {
	msgs, err := ListMessages(convID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range msgs {
		if m.Recipient == identity && !m.Read {
			n++
		}
	}
	return n, nil
}
