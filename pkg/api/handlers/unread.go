package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/auth"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/unread"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/utils"
)

// RegisterUnread registers the unread snapshot route on the provided router.
func RegisterUnread(r *mux.Router, agg *unread.Aggregator) {
	r.HandleFunc("/unread", unreadSnapshot(agg)).Methods(http.MethodGet)
}

// unreadSnapshot handles GET /unread: the caller's per-conversation,
// message-total and notification unread counts in one response. Counts are
// recomputed from stored read flags on every call.
func unreadSnapshot(agg *unread.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, status, msg := auth.ResolveIdentity(r)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		counts, err := agg.Snapshot(identity)
		if err != nil {
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, counts)
	}
}
