package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/auth"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/reactions"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/utils"
)

// RegisterReactions registers reaction routes on the provided router.
func RegisterReactions(r *mux.Router, ledger *reactions.Ledger) {
	r.HandleFunc("/reactions/toggle", toggleReaction(ledger)).Methods(http.MethodPost)
	r.HandleFunc("/reactions/count", countReactions(ledger)).Methods(http.MethodGet)
	r.HandleFunc("/reactions/liked", hasLiked(ledger)).Methods(http.MethodGet)
}

type toggleRequest struct {
	TargetType  string `json:"target_type"`
	TargetID    string `json:"target_id"`
	TargetOwner string `json:"target_owner"`
}

// toggleReaction handles POST /reactions/toggle. The same call likes an
// unliked target and unlikes a liked one; the response reports the state
// after the call plus the target's total like count.
func toggleReaction(ledger *reactions.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, status, msg := auth.ResolveIdentity(r)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		var req toggleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		res, err := ledger.Toggle(actor, req.TargetType, req.TargetID, req.TargetOwner)
		if err != nil {
			utils.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, res)
	}
}

// countReactions handles GET /reactions/count?target_type=<t>&target_id=<id>.
func countReactions(ledger *reactions.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		typ := r.URL.Query().Get("target_type")
		id := r.URL.Query().Get("target_id")
		n, err := ledger.Count(typ, id)
		if err != nil {
			utils.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, struct {
			Count int `json:"count"`
		}{Count: n})
	}
}

// hasLiked handles GET /reactions/liked?target_type=<t>&target_id=<id> for
// the caller's identity.
func hasLiked(ledger *reactions.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, status, msg := auth.ResolveIdentity(r)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		typ := r.URL.Query().Get("target_type")
		id := r.URL.Query().Get("target_id")
		liked, err := ledger.HasLiked(actor, typ, id)
		if err != nil {
			utils.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, struct {
			Liked bool `json:"liked"`
		}{Liked: liked})
	}
}
