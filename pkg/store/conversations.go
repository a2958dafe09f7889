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

// Conversation key space:
//
//	convpair:<low>|<high>  -> Conversation JSON
//	convid:<id>            -> pair key
//
// The pair key is the uniqueness constraint: one record per unordered
// participant pair, whichever caller writes first.

func convPairKey(low, high string) string {
	return fmt.Sprintf("convpair:%s|%s", low, high)
}

func convIDKey(id string) string {
	return "convid:" + id
}

// SaveConversation writes a conversation under its canonical pair key and
// maintains the id index. It is used both for first creation and for
// summary updates after a send.
func SaveConversation(c models.Conversation) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}
	key := convPairKey(c.ParticipantLow, c.ParticipantHigh)
	if err := set(key, data); err != nil {
		logger.Log.Error("save_conversation_failed", zap.String("key", key), zap.Error(err))
		return err
	}
	if err := set(convIDKey(c.ID), []byte(key)); err != nil {
		logger.Log.Error("save_conversation_index_failed", zap.String("id", c.ID), zap.Error(err))
		return err
	}
	return nil
}

// GetConversationByPair looks a conversation up by its canonically ordered
// participant pair.
func GetConversationByPair(low, high string) (models.Conversation, error) {
	var c models.Conversation
	v, err := get(convPairKey(low, high))
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(v, &c); err != nil {
		return c, fmt.Errorf("invalid stored conversation: %w", err)
	}
	return c, nil
}

// GetConversation looks a conversation up by id.
func GetConversation(id string) (models.Conversation, error) {
	var c models.Conversation
	pairKey, err := get(convIDKey(id))
	if err != nil {
		return c, err
	}
	v, err := get(string(pairKey))
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(v, &c); err != nil {
		return c, fmt.Errorf("invalid stored conversation: %w", err)
	}
	return c, nil
}

// ListConversationsFor returns every conversation identity participates in,
// in unspecified order; callers sort by recency.
func ListConversationsFor(identity string) ([]models.Conversation, error) {
	if err := ready(); err != nil {
		return nil, err
	}
	prefix := []byte("convpair:")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Conversation
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var c models.Conversation
		if err := json.Unmarshal(iter.Value(), &c); err != nil {
			logger.Log.Error("list_conversations_bad_record", zap.ByteString("key", iter.Key()), zap.Error(err))
			continue
		}
		if c.Has(identity) {
			out = append(out, c)
		}
	}
	return out, nil
}
