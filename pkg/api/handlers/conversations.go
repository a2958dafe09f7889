package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/auth"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/conversations"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/messaging"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/models"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/store"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/utils"
)

// RegisterConversations registers conversation routes on the provided router.
func RegisterConversations(r *mux.Router, convs *conversations.Manager, ch *messaging.Channel) {
	r.HandleFunc("/conversations", listConversations(convs)).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{id}", getConversation(convs)).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{id}/messages", listConversationMessages(convs, ch)).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{id}/read", markConversationRead(convs, ch)).Methods(http.MethodPost)
}

// listConversations handles GET /conversations: every conversation the
// caller participates in, most recent activity first, each annotated with
// the other participant and the caller's unread count.
func listConversations(convs *conversations.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, status, msg := auth.ResolveIdentity(r)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		out, err := convs.ListForUser(identity)
		if err != nil {
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, struct {
			Conversations []models.ConversationSummary `json:"conversations"`
		}{Conversations: out})
	}
}

// getConversation handles GET /conversations/{id}. Non-participants get a
// 404 rather than a 403 so conversation ids leak nothing.
func getConversation(convs *conversations.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, status, msg := auth.ResolveIdentity(r)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		conv, ok := requireParticipant(w, convs, mux.Vars(r)["id"], identity)
		if !ok {
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, conv)
	}
}

// listConversationMessages handles GET /conversations/{id}/messages with
// an optional ?limit=<n> returning the newest n messages in order.
func listConversationMessages(convs *conversations.Manager, ch *messaging.Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, status, msg := auth.ResolveIdentity(r)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		conv, ok := requireParticipant(w, convs, mux.Vars(r)["id"], identity)
		if !ok {
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
		msgs, err := ch.History(conv.ID, limit)
		if err != nil {
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, struct {
			Conversation string           `json:"conversation_id"`
			Messages     []models.Message `json:"messages"`
		}{Conversation: conv.ID, Messages: msgs})
	}
}

// markConversationRead handles POST /conversations/{id}/read: flips every
// message addressed to the caller to read and reports how many flipped.
func markConversationRead(convs *conversations.Manager, ch *messaging.Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, status, msg := auth.ResolveIdentity(r)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		conv, ok := requireParticipant(w, convs, mux.Vars(r)["id"], identity)
		if !ok {
			return
		}
		flipped, err := ch.MarkRead(conv.ID, identity)
		if err != nil {
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, struct {
			Marked int `json:"marked"`
		}{Marked: flipped})
	}
}

func requireParticipant(w http.ResponseWriter, convs *conversations.Manager, id, identity string) (models.Conversation, bool) {
	conv, err := convs.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.JSONError(w, http.StatusNotFound, "not found")
		} else {
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
		}
		return models.Conversation{}, false
	}
	if !conv.Has(identity) {
		utils.JSONError(w, http.StatusNotFound, "not found")
		return models.Conversation{}, false
	}
	return conv, true
}
