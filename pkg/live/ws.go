package live

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/logger"
)

const defaultWriteTimeout = 10 * time.Second

// NewUpgrader builds a websocket upgrader that only accepts the configured
// origins. An empty list accepts everything (local development).
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	if len(allowedOrigins) == 0 {
		return websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	}
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return allowed[r.Header.Get("Origin")]
		},
	}
}

// ServeTopic upgrades the request and relays every payload published on
// topic to the client until it disconnects. The read loop exists only to
// observe keepalives and the close handshake; inbound frames are ignored.
func ServeTopic(h *Hub, topic string, upgrader websocket.Upgrader, writeTimeout time.Duration, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn("ws_upgrade_failed", zap.String("topic", topic), zap.Error(err))
		return
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	sub := h.Subscribe(topic, func(payload []byte) {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if werr := conn.WriteMessage(websocket.TextMessage, payload); werr != nil {
			// closing the conn makes the read loop below exit and cancel
			_ = conn.Close()
		}
	})

	logger.Log.Debug("ws_connected", zap.String("topic", topic), zap.String("remote", r.RemoteAddr))
	for {
		if _, _, rerr := conn.ReadMessage(); rerr != nil {
			break
		}
	}
	sub.Cancel()
	_ = conn.Close()
	logger.Log.Debug("ws_disconnected", zap.String("topic", topic), zap.String("remote", r.RemoteAddr))
}
