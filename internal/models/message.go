package models

import (
	"time"
)

type Message struct {
	ID         string `json:"_id"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Text       string `json:"text"`
	Read       bool   `json:"read"`

	// Client-generated id used to drop duplicate deliveries.
	ClientMessageID string    `json:"clientMessageId,omitempty"`
	MatchID         string    `json:"matchId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type SendMessageRequest struct {
	ReceiverID      string `json:"receiverId"`
	Text            string `json:"text"`
	ClientMessageID string `json:"clientMessageId"`
	MatchID         string `json:"matchId"`
}

func (r *SendMessageRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.ReceiverID == "" {
		errors["receiverId"] = "Receiver ID is required"
	}
	if r.Text == "" {
		errors["text"] = "Message text is required"
	}

	return errors
}

// Conversation summarizes the latest exchange with one partner.
type Conversation struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	LastMessage string    `json:"lastMessage"`
	Time        time.Time `json:"time"`
	Unread      bool      `json:"unread"`
}
