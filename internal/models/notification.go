package models

import (
	"time"
)

type NotificationType string

const (
	NotificationMatchFound      NotificationType = "match_found"
	NotificationMatchUpdate     NotificationType = "match_update"
	NotificationMessageReceived NotificationType = "message_received"
	NotificationSystem          NotificationType = "system"
	NotificationLostItemReport  NotificationType = "lost_item_report"
	NotificationLostItemRepost  NotificationType = "lost_item_repost"
	NotificationItemReturned    NotificationType = "item_returned"
)

// Notification is a persisted per-user event record. Display fields are a
// point-in-time snapshot taken at creation so the notification stays
// meaningful after the referenced item is deleted or returned.
type Notification struct {
	ID      string           `json:"_id"`
	UserID  string           `json:"userId"`
	Type    NotificationType `json:"type"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Read    bool             `json:"read"`

	LostItemID  string `json:"lostItemId,omitempty"`
	FoundItemID string `json:"foundItemId,omitempty"`
	MatchID     string `json:"matchId,omitempty"`

	// Match snapshot.
	LostItemName         string     `json:"lostItemName,omitempty"`
	LostItemDescription  string     `json:"lostItemDescription,omitempty"`
	LostLocation         string     `json:"lostLocation,omitempty"`
	LostDate             string     `json:"lostDate,omitempty"`
	LostTime             string     `json:"lostTime,omitempty"`
	LostCategory         string     `json:"lostCategory,omitempty"`
	FoundItemName        string     `json:"foundItemName,omitempty"`
	FoundItemDescription string     `json:"foundItemDescription,omitempty"`
	FoundLocation        string     `json:"foundLocation,omitempty"`
	FoundDate            string     `json:"foundDate,omitempty"`
	FoundTime            string     `json:"foundTime,omitempty"`
	FoundCategory        string     `json:"foundCategory,omitempty"`
	MatchDate            *time.Time `json:"matchDate,omitempty"`
	SimilarityScore      *float64   `json:"similarityScore,omitempty"`

	// General display snapshot.
	ItemName string `json:"itemName,omitempty"`
	Location string `json:"location,omitempty"`
	Date     string `json:"date,omitempty"`
	Time     string `json:"time,omitempty"`
	Category string `json:"category,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}
