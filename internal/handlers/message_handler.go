package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/findit/backend/internal/middleware"
	"github.com/findit/backend/internal/models"
	"github.com/findit/backend/internal/services"
)

type MessageHandler struct {
	messages services.MessageStore
	users    services.UserStore
}

func NewMessageHandler(messages services.MessageStore, users services.UserStore) *MessageHandler {
	return &MessageHandler{messages: messages, users: users}
}

// Send stores a message. A repeated clientMessageId returns the stored
// message instead of creating a duplicate, so mobile retries are safe.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		respondValidation(w, errors)
		return
	}

	senderID := middleware.GetUserID(r.Context())
	if senderID == "" {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if req.ClientMessageID != "" {
		if existing, err := h.messages.GetByClientID(r.Context(), req.ClientMessageID); err == nil {
			writeJSON(w, http.StatusOK, existing)
			return
		}
	}

	msg := &models.Message{
		SenderID:        senderID,
		ReceiverID:      req.ReceiverID,
		Text:            req.Text,
		ClientMessageID: req.ClientMessageID,
		MatchID:         req.MatchID,
	}
	if err := h.messages.Create(r.Context(), msg); err != nil {
		log.Printf("[messages] send: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// Conversations lists the user's exchanges collapsed to one entry per
// partner, newest first.
func (h *MessageHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	msgs, err := h.messages.ListByUser(r.Context(), userID)
	if err != nil {
		log.Printf("[messages] list for user %s: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}

	// Messages arrive newest first, so the first sighting of a partner is
	// the latest exchange.
	seen := make(map[string]bool)
	conversations := make([]*models.Conversation, 0)
	for _, msg := range msgs {
		partnerID := msg.SenderID
		if partnerID == userID {
			partnerID = msg.ReceiverID
		}
		if seen[partnerID] {
			continue
		}
		seen[partnerID] = true

		name := partnerID
		if partner, err := h.users.GetByID(r.Context(), partnerID); err == nil {
			name = partner.Name
		}
		conversations = append(conversations, &models.Conversation{
			ID:          partnerID,
			Name:        name,
			LastMessage: msg.Text,
			Time:        msg.CreatedAt,
			Unread:      !msg.Read && msg.ReceiverID == userID,
		})
	}
	writeJSON(w, http.StatusOK, conversations)
}

// Thread returns the full exchange with one partner and marks the
// partner's messages read.
func (h *MessageHandler) Thread(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	partnerID := chi.URLParam(r, "partnerId")

	msgs, err := h.messages.ListBetween(r.Context(), userID, partnerID)
	if err != nil {
		log.Printf("[messages] thread %s/%s: %v", userID, partnerID, err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}

	if err := h.messages.MarkReadBetween(r.Context(), partnerID, userID); err != nil {
		log.Printf("[messages] mark read %s/%s: %v", partnerID, userID, err)
	}

	writeJSON(w, http.StatusOK, msgs)
}
