package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/auth"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/messaging"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/store"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/utils"
)

// RegisterMessages registers message send routes on the provided router.
func RegisterMessages(r *mux.Router, ch *messaging.Channel) {
	r.HandleFunc("/messages", sendMessage(ch)).Methods(http.MethodPost)
}

type sendMessageRequest struct {
	Recipient string `json:"recipient"`
	Content   string `json:"content"`
	Kind      string `json:"kind"`
}

// sendMessage handles POST /messages. The sender is the caller's identity;
// a conversation with the recipient is created on first contact.
func sendMessage(ch *messaging.Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sender, status, msg := auth.ResolveIdentity(r)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		m, err := ch.Send(sender, req.Recipient, req.Content, req.Kind)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.JSONError(w, http.StatusNotFound, "not found")
				return
			}
			utils.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		_ = utils.JSONWrite(w, http.StatusCreated, m)
	}
}
