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

// Notification key space:
//
//	notif:<recipient>:<ts20>-<seq6>  -> Notification JSON
//	notifid:<id>                     -> notification key
//
// Notifications support the read flip (one-way) and, unlike messages, hard
// deletion by their recipient.

func notifPrefix(recipient string) string {
	return "notif:" + recipient + ":"
}

func notifIDKey(id string) string {
	return "notifid:" + id
}

// SaveNotification appends a notification for its recipient and indexes it
// by id.
func SaveNotification(n models.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	key := notifPrefix(n.Recipient) + keyTail(n.CreatedTS)
	if err := set(key, data); err != nil {
		logger.Log.Error("save_notification_failed", zap.String("recipient", n.Recipient), zap.Error(err))
		return err
	}
	if err := set(notifIDKey(n.ID), []byte(key)); err != nil {
		logger.Log.Error("save_notification_index_failed", zap.String("id", n.ID), zap.Error(err))
		return err
	}
	return nil
}

// ListNotifications returns the recipient's notifications, newest first.
// An optional limit keeps only the newest n.
func ListNotifications(recipient string, limit ...int) ([]models.Notification, error) {
	if err := ready(); err != nil {
		return nil, err
	}
	prefix := []byte(notifPrefix(recipient))
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Notification
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var n models.Notification
		if err := json.Unmarshal(iter.Value(), &n); err != nil {
			logger.Log.Error("list_notifications_bad_record", zap.ByteString("key", iter.Key()), zap.Error(err))
			continue
		}
		out = append(out, n)
	}
	// stored oldest first; reverse for newest-first presentation
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if len(limit) > 0 && limit[0] >= 0 && limit[0] < len(out) {
		out = out[:limit[0]]
	}
	return out, nil
}

// GetNotification looks a notification up by id.
func GetNotification(id string) (models.Notification, error) {
	var n models.Notification
	key, err := get(notifIDKey(id))
	if err != nil {
		return n, err
	}
	v, err := get(string(key))
	if err != nil {
		return n, err
	}
	if err := json.Unmarshal(v, &n); err != nil {
		return n, fmt.Errorf("invalid stored notification: %w", err)
	}
	return n, nil
}

// MarkNotificationRead flips a single notification to read. Flipping an
// already-read notification is a no-op, not an error.
func MarkNotificationRead(id string) error {
	key, err := get(notifIDKey(id))
	if err != nil {
		return err
	}
	v, err := get(string(key))
	if err != nil {
		return err
	}
	var n models.Notification
	if err := json.Unmarshal(v, &n); err != nil {
		return fmt.Errorf("invalid stored notification: %w", err)
	}
	if n.Read {
		return nil
	}
	n.Read = true
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	return set(string(key), data)
}

// MarkAllNotificationsRead flips every unread notification for the
// recipient and returns how many were flipped. Idempotent.
func MarkAllNotificationsRead(recipient string) (int, error) {
	if err := ready(); err != nil {
		return 0, err
	}
	prefix := []byte(notifPrefix(recipient))
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
		var n models.Notification
		if err := json.Unmarshal(iter.Value(), &n); err != nil {
			continue
		}
		if n.Read {
			continue
		}
		n.Read = true
		data, err := json.Marshal(n)
		if err != nil {
			return flipped, fmt.Errorf("failed to marshal notification: %w", err)
		}
		key := append([]byte(nil), iter.Key()...)
		if err := set(string(key), data); err != nil {
			return flipped, err
		}
		flipped++
	}
	if flipped > 0 {
		logger.Log.Info("notifications_marked_read", zap.String("recipient", recipient), zap.Int("count", flipped))
	}
	return flipped, nil
}

// DeleteNotification hard-deletes a notification and its id index.
func DeleteNotification(id string) error {
	key, err := get(notifIDKey(id))
	if err != nil {
		return err
	}
	if err := del(string(key)); err != nil {
		return err
	}
	if err := del(notifIDKey(id)); err != nil {
		return err
	}
	logger.Log.Debug("notification_deleted", zap.String("id", id))
	return nil
}

// CountUnreadNotifications counts the recipient's unread notifications.
func CountUnreadNotifications(recipient string) (int, error) {
	ns, err := ListNotifications(recipient)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, nn := range ns {
		if !nn.Read {
			n++
		}
	}
	return n, nil
}

// ListReadNotificationsBefore returns ids of read notifications for any
// recipient created before cutoff (nanoseconds), up to limit. Used by the
// retention runner; unread notifications are never returned.
func ListReadNotificationsBefore(cutoff int64, limit int) ([]string, error) {
	if err := ready(); err != nil {
		return nil, err
	}
	prefix := []byte("notif:")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []string
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var n models.Notification
		if err := json.Unmarshal(iter.Value(), &n); err != nil {
			continue
		}
		if n.Read && n.CreatedTS < cutoff {
			out = append(out, n.ID)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}
