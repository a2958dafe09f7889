package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/models"
)

// Reaction key space:
//
//	react:<target_type>:<target_id>:<actor>  -> Reaction JSON
//
// The key itself is the (actor, target_type, target_id) uniqueness
// constraint: writing the same tuple twice overwrites a single record, and
// existence of the key encodes "liked".

func reactKey(targetType, targetID, actor string) string {
	return fmt.Sprintf("react:%s:%s:%s", targetType, targetID, actor)
}

func reactTargetPrefix(targetType, targetID string) string {
	return fmt.Sprintf("react:%s:%s:", targetType, targetID)
}

// SaveReaction inserts (or idempotently re-inserts) a reaction.
func SaveReaction(r models.Reaction) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal reaction: %w", err)
	}
	return set(reactKey(r.TargetType, r.TargetID, r.Actor), data)
}

// GetReaction returns the reaction for the tuple, or ErrNotFound.
func GetReaction(actor, targetType, targetID string) (models.Reaction, error) {
	var r models.Reaction
	v, err := get(reactKey(targetType, targetID, actor))
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(v, &r); err != nil {
		return r, fmt.Errorf("invalid stored reaction: %w", err)
	}
	return r, nil
}

// DeleteReaction removes the reaction for the tuple if present.
func DeleteReaction(actor, targetType, targetID string) error {
	return del(reactKey(targetType, targetID, actor))
}

// CountReactions counts reactions on a target.
func CountReactions(targetType, targetID string) (int, error) {
	if err := ready(); err != nil {
		return 0, err
	}
	prefix := []byte(reactTargetPrefix(targetType, targetID))
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return 0, err
	}
	defer iter.Close()
	n := 0
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		n++
	}
	return n, nil
}
