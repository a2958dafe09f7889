// Package notify turns domain actions into notification records and pushes
// them to the recipient's live channel. Emission is best-effort: a failed
// notification is logged and dropped, never propagated back to the action
// that triggered it.
package notify

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/live"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/logger"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/models"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/store"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/telemetry"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/utils"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/validation"
)

// Options carries the optional typed fields of a notification. Each
// constructor fills only what its type needs.
type Options struct {
	From    string
	AssetID string
	PostID  string
}

// Fanout persists notifications and publishes them to per-identity topics.
type Fanout struct {
	hub *live.Hub
}

func NewFanout(hub *live.Hub) *Fanout {
	return &Fanout{hub: hub}
}

// Emit validates, persists and pushes a notification. The error matters to
// direct callers (the marketplace emit endpoint); domain-event constructors
// below swallow it.
func (f *Fanout) Emit(recipient, typ, title, message string, opts Options) (models.Notification, error) {
	n := models.Notification{
		ID:        utils.GenID(),
		Recipient: strings.ToLower(strings.TrimSpace(recipient)),
		Type:      typ,
		Title:     title,
		Message:   message,
		From:      strings.ToLower(opts.From),
		AssetID:   opts.AssetID,
		PostID:    opts.PostID,
		CreatedTS: utils.NowNano(),
	}
	if err := validation.ValidateNotification(n); err != nil {
		return models.Notification{}, err
	}
	if err := store.SaveNotification(n); err != nil {
		return models.Notification{}, err
	}
	f.hub.Publish(live.NotificationsTopic(n.Recipient), n)
	f.hub.Publish(live.UnreadTopic(n.Recipient), invalidation{Kind: "notification", ID: n.ID})
	telemetry.NotificationsEmitted.WithLabelValues(n.Type).Inc()
	logger.Log.Info("notification_emitted", zap.String("id", n.ID), zap.String("recipient", n.Recipient), zap.String("type", n.Type))
	return n, nil
}

// invalidation is the payload published on unread topics; consumers only
// care that something changed.
type invalidation struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
}

// fireAndForget emits and swallows the error, per the best-effort contract.
func (f *Fanout) fireAndForget(recipient, typ, title, message string, opts Options) {
	if _, err := f.Emit(recipient, typ, title, message, opts); err != nil {
		telemetry.NotificationEmitFailures.Inc()
		logger.Log.Error("notify_emit_failed", zap.String("recipient", recipient), zap.String("type", typ), zap.Error(err))
	}
}

// Like notifies targetOwner that actor liked their target. Self-likes are
// suppressed.
func (f *Fanout) Like(targetOwner, actor, targetType, targetID string) {
	targetOwner = strings.ToLower(targetOwner)
	actor = strings.ToLower(actor)
	if targetOwner == "" || targetOwner == actor {
		return
	}
	opts := Options{From: actor}
	switch targetType {
	case models.TargetAsset:
		opts.AssetID = targetID
	case models.TargetPost:
		opts.PostID = targetID
	}
	f.fireAndForget(targetOwner, models.NotifyLike, "New Like",
		fmt.Sprintf("%s liked your %s", actor, targetType), opts)
}

// Chat notifies recipient of a new message from sender. Self-sends are
// suppressed.
func (f *Fanout) Chat(recipient, sender string) {
	recipient = strings.ToLower(recipient)
	sender = strings.ToLower(sender)
	if recipient == sender {
		return
	}
	f.fireAndForget(recipient, models.NotifyChat, "New Message",
		fmt.Sprintf("%s sent you a message", sender), Options{From: sender})
}

// Buy notifies a buyer that their purchase completed.
func (f *Fanout) Buy(buyer, assetID string) {
	f.fireAndForget(buyer, models.NotifyBuy, "Purchase Complete",
		fmt.Sprintf("You bought asset %s", assetID), Options{AssetID: assetID})
}

// Sell notifies a seller that their asset sold.
func (f *Fanout) Sell(seller, assetID string) {
	f.fireAndForget(seller, models.NotifySell, "Item Sold",
		fmt.Sprintf("Your asset %s was sold", assetID), Options{AssetID: assetID})
}

// PostCreated confirms to an author that their post is live.
func (f *Fanout) PostCreated(author, postID string) {
	f.fireAndForget(author, models.NotifyPostCreated, "Post Published",
		fmt.Sprintf("Your post %s is live", postID), Options{PostID: postID})
}

// NFTListed confirms to an owner that their listing is active.
func (f *Fanout) NFTListed(owner, assetID string) {
	f.fireAndForget(owner, models.NotifyNFTListed, "NFT Listed",
		fmt.Sprintf("Your NFT %s is now listed", assetID), Options{AssetID: assetID})
}

// Subscribe delivers every new notification for identity. Delivery is
// at-least-once; consumers dedup by id.
func (f *Fanout) Subscribe(identity string, fn func(models.Notification)) *live.Subscription {
	identity = strings.ToLower(identity)
	return f.hub.Subscribe(live.NotificationsTopic(identity), func(payload []byte) {
		var n models.Notification
		if err := json.Unmarshal(payload, &n); err != nil {
			logger.Log.Error("notification_decode_failed", zap.Error(err))
			return
		}
		fn(n)
	})
}

// MarkRead flips one notification to read and invalidates the recipient's
// unread counts. Already-read is a no-op.
func (f *Fanout) MarkRead(id string) error {
	n, err := store.GetNotification(id)
	if err != nil {
		return err
	}
	if err := store.MarkNotificationRead(id); err != nil {
		return err
	}
	f.hub.Publish(live.UnreadTopic(n.Recipient), invalidation{Kind: "notification_read", ID: id})
	return nil
}

// MarkAllRead flips every unread notification for identity. Idempotent.
func (f *Fanout) MarkAllRead(identity string) (int, error) {
	identity = strings.ToLower(identity)
	flipped, err := store.MarkAllNotificationsRead(identity)
	if err != nil {
		return flipped, err
	}
	if flipped > 0 {
		f.hub.Publish(live.UnreadTopic(identity), invalidation{Kind: "notification_read_all"})
	}
	return flipped, nil
}

// Delete hard-deletes a notification for its recipient.
func (f *Fanout) Delete(id string) error {
	n, err := store.GetNotification(id)
	if err != nil {
		return err
	}
	if err := store.DeleteNotification(id); err != nil {
		return err
	}
	f.hub.Publish(live.UnreadTopic(n.Recipient), invalidation{Kind: "notification_deleted", ID: id})
	return nil
}

// List returns identity's notifications, newest first.
func (f *Fanout) List(identity string, limit int) ([]models.Notification, error) {
	identity = strings.ToLower(identity)
	if limit > 0 {
		return store.ListNotifications(identity, limit)
	}
	return store.ListNotifications(identity)
}
