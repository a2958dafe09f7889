package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/auth"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/conversations"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/live"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/store"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/utils"
)

// RegisterWS registers the websocket subscription routes on the provided
// router. Each socket carries one topic; clients open one socket per feed.
func RegisterWS(r *mux.Router, hub *live.Hub, convs *conversations.Manager, upgrader websocket.Upgrader, writeTimeout time.Duration) {
	r.HandleFunc("/ws/messages/{id}", wsMessages(hub, convs, upgrader, writeTimeout)).Methods(http.MethodGet)
	r.HandleFunc("/ws/notifications", wsIdentityTopic(hub, upgrader, writeTimeout, live.NotificationsTopic)).Methods(http.MethodGet)
	r.HandleFunc("/ws/unread", wsIdentityTopic(hub, upgrader, writeTimeout, live.UnreadTopic)).Methods(http.MethodGet)
}

// wsMessages streams new messages in one conversation. The caller must be
// a participant; non-participants get a 404 before the upgrade.
func wsMessages(hub *live.Hub, convs *conversations.Manager, upgrader websocket.Upgrader, writeTimeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, status, msg := auth.ResolveIdentity(r)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		conv, err := convs.Get(mux.Vars(r)["id"])
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.JSONError(w, http.StatusNotFound, "not found")
			} else {
				utils.JSONError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		if !conv.Has(identity) {
			utils.JSONError(w, http.StatusNotFound, "not found")
			return
		}
		live.ServeTopic(hub, live.MessagesTopic(conv.ID), upgrader, writeTimeout, w, r)
	}
}

// wsIdentityTopic streams an identity-scoped feed (notifications or unread
// invalidations) for the resolved caller.
func wsIdentityTopic(hub *live.Hub, upgrader websocket.Upgrader, writeTimeout time.Duration, topic func(string) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, status, msg := auth.ResolveIdentity(r)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		live.ServeTopic(hub, topic(identity), upgrader, writeTimeout, w, r)
	}
}
