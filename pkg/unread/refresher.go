package unread

import (
	"strings"

	"go.uber.org/zap"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/live"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/logger"
)

// Refresher recomputes a user's unread snapshot whenever an invalidation
// event lands on their unread topic (message insert, notification insert,
// read flips) and hands it to the callback. This is the push-based
// replacement for client-side polling.
type Refresher struct {
	sub *live.Subscription
}

// Watch subscribes to identity's invalidation topic. fn receives a fresh
// snapshot per event, on the subscription's dispatch goroutine.
func (a *Aggregator) Watch(hub *live.Hub, identity string, fn func(Counts)) *Refresher {
	identity = strings.ToLower(identity)
	sub := hub.Subscribe(live.UnreadTopic(identity), func([]byte) {
		counts, err := a.Snapshot(identity)
		if err != nil {
			logger.Log.Error("unread_refresh_failed", zap.String("identity", identity), zap.Error(err))
			return
		}
		fn(counts)
	})
	return &Refresher{sub: sub}
}

// Close cancels the underlying subscription; no callback runs after it
// returns.
func (r *Refresher) Close() {
	r.sub.Cancel()
}
