// Package reactions keeps the like ledger: existence-based reaction
// records whose toggle is an involution.
package reactions

import (
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/logger"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/models"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/notify"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/store"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/telemetry"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/utils"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/validation"
)

// ToggleResult reports the state after a toggle.
type ToggleResult struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

// Ledger toggles and queries reactions. The mutex serializes the
// check-then-act in Toggle so two racing toggles of the same tuple land as
// two state changes, not a duplicate insert.
type Ledger struct {
	mu     sync.Mutex
	fanout *notify.Fanout
}

func NewLedger(fanout *notify.Fanout) *Ledger {
	return &Ledger{fanout: fanout}
}

// Toggle flips the (actor, targetType, targetID) reaction: present becomes
// absent, absent becomes present. Either way the returned count is the
// recomputed total for the target. When the toggle lands a like and the
// owner is someone else, the owner gets a like notification; notification
// failure never rolls the toggle back.
func (l *Ledger) Toggle(actor, targetType, targetID, targetOwner string) (ToggleResult, error) {
	actor = strings.ToLower(strings.TrimSpace(actor))
	r := models.Reaction{
		ID:         utils.GenID(),
		Actor:      actor,
		TargetType: targetType,
		TargetID:   targetID,
		CreatedTS:  utils.NowNano(),
	}
	if err := validation.ValidateReaction(r); err != nil {
		return ToggleResult{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var liked bool
	_, err := store.GetReaction(actor, targetType, targetID)
	switch {
	case err == nil:
		if err := store.DeleteReaction(actor, targetType, targetID); err != nil {
			return ToggleResult{}, err
		}
		liked = false
	case errors.Is(err, store.ErrNotFound):
		if err := store.SaveReaction(r); err != nil {
			return ToggleResult{}, err
		}
		liked = true
	default:
		return ToggleResult{}, err
	}

	count, err := store.CountReactions(targetType, targetID)
	if err != nil {
		return ToggleResult{}, err
	}

	if liked {
		telemetry.ReactionsToggled.WithLabelValues("liked").Inc()
		l.fanout.Like(targetOwner, actor, targetType, targetID)
	} else {
		telemetry.ReactionsToggled.WithLabelValues("unliked").Inc()
	}
	logger.Log.Debug("reaction_toggled", zap.String("actor", actor), zap.String("target_type", targetType), zap.String("target_id", targetID), zap.Bool("liked", liked), zap.Int("count", count))
	return ToggleResult{Liked: liked, Count: count}, nil
}

// HasLiked reports whether actor currently likes the target. Pure query.
func (l *Ledger) HasLiked(actor, targetType, targetID string) (bool, error) {
	actor = strings.ToLower(strings.TrimSpace(actor))
	_, err := store.GetReaction(actor, targetType, targetID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Count returns the target's current reaction total. Pure query.
func (l *Ledger) Count(targetType, targetID string) (int, error) {
	return store.CountReactions(targetType, targetID)
}
