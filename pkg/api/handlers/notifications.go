package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/auth"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/models"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/notify"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/store"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/utils"
)

// RegisterNotifications registers notification routes on the provided router.
func RegisterNotifications(r *mux.Router, fanout *notify.Fanout) {
	r.HandleFunc("/notifications", listNotifications(fanout)).Methods(http.MethodGet)
	r.HandleFunc("/notifications", emitNotification(fanout)).Methods(http.MethodPost)
	r.HandleFunc("/notifications/read-all", markAllNotificationsRead(fanout)).Methods(http.MethodPost)
	r.HandleFunc("/notifications/{id}/read", markNotificationRead(fanout)).Methods(http.MethodPost)
	r.HandleFunc("/notifications/{id}", deleteNotification(fanout)).Methods(http.MethodDelete)
}

// listNotifications handles GET /notifications?limit=<n>, newest first.
func listNotifications(fanout *notify.Fanout) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, status, msg := auth.ResolveIdentity(r)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		limit := 0
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				utils.JSONError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = n
		}
		out, err := fanout.List(identity, limit)
		if err != nil {
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, struct {
			Notifications []models.Notification `json:"notifications"`
		}{Notifications: out})
	}
}

type emitRequest struct {
	Recipient  string `json:"recipient"`
	Type       string `json:"type"`
	From       string `json:"from_identity"`
	AssetID    string `json:"related_asset_id"`
	PostID     string `json:"related_post_id"`
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
}

// emitNotification handles POST /notifications. Only backend callers may
// emit; this is how marketplace services report trades, listings and
// published posts. Delivery is fire-and-forget, so the handler answers
// 202 once the event is accepted.
func emitNotification(fanout *notify.Fanout) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Role-Name") != "backend" {
			utils.JSONError(w, http.StatusForbidden, "forbidden")
			return
		}
		var req emitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		switch req.Type {
		case models.NotifyLike:
			fanout.Like(req.Recipient, req.From, req.TargetType, req.TargetID)
		case models.NotifyChat:
			fanout.Chat(req.Recipient, req.From)
		case models.NotifyBuy:
			fanout.Buy(req.Recipient, req.AssetID)
		case models.NotifySell:
			fanout.Sell(req.Recipient, req.AssetID)
		case models.NotifyPostCreated:
			fanout.PostCreated(req.Recipient, req.PostID)
		case models.NotifyNFTListed:
			fanout.NFTListed(req.Recipient, req.AssetID)
		default:
			utils.JSONError(w, http.StatusBadRequest, "unknown notification type")
			return
		}
		_ = utils.JSONWrite(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	}
}

// markNotificationRead handles POST /notifications/{id}/read. Marking an
// already-read notification again is a no-op.
func markNotificationRead(fanout *notify.Fanout) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, status, msg := auth.ResolveIdentity(r)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		id := mux.Vars(r)["id"]
		if !ownsNotification(w, id, identity) {
			return
		}
		if err := fanout.MarkRead(id); err != nil {
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// markAllNotificationsRead handles POST /notifications/read-all and
// reports how many notifications actually flipped.
func markAllNotificationsRead(fanout *notify.Fanout) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, status, msg := auth.ResolveIdentity(r)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		flipped, err := fanout.MarkAllRead(identity)
		if err != nil {
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, struct {
			Marked int `json:"marked"`
		}{Marked: flipped})
	}
}

// deleteNotification handles DELETE /notifications/{id}.
func deleteNotification(fanout *notify.Fanout) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, status, msg := auth.ResolveIdentity(r)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		id := mux.Vars(r)["id"]
		if !ownsNotification(w, id, identity) {
			return
		}
		if err := fanout.Delete(id); err != nil {
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func ownsNotification(w http.ResponseWriter, id, identity string) bool {
	n, err := store.GetNotification(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.JSONError(w, http.StatusNotFound, "not found")
		} else {
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
		}
		return false
	}
	if n.Recipient != identity {
		utils.JSONError(w, http.StatusNotFound, "not found")
		return false
	}
	return true
}
