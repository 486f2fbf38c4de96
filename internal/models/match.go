package models

import (
	"time"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchMatched   MatchStatus = "matched"
	MatchDeclined  MatchStatus = "declined"
	MatchReturned  MatchStatus = "returned"
	MatchClaimed   MatchStatus = "claimed"
	MatchUnclaimed MatchStatus = "unclaimed"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchPending, MatchMatched, MatchDeclined, MatchReturned, MatchClaimed, MatchUnclaimed:
		return true
	}
	return false
}

// Match links exactly one lost item with one found item. At most one match
// exists per (lost item, found item) pair; the store enforces this.
type Match struct {
	ID              string      `json:"_id"`
	LostItemID      string      `json:"lostItemId"`
	FoundItemID     string      `json:"foundItemId"`
	LostUserID      string      `json:"lostUserId"`
	FoundUserID     string      `json:"foundUserId"`
	SimilarityScore float64     `json:"similarityScore"`
	Status          MatchStatus `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// CanTransitionTo reports whether status may become next. Pending is the
// initial state only; users flip between the other statuses freely (a
// declined match may later be confirmed, claimed or returned).
func (m *Match) CanTransitionTo(next MatchStatus) bool {
	return next.Valid() && next != MatchPending
}

// OtherParty returns the user on the opposite side of the match from
// requesterID. When the requester is neither party, the lost-side user is
// notified, mirroring how status updates from third parties behave.
func (m *Match) OtherParty(requesterID string) string {
	if m.LostUserID == requesterID {
		return m.FoundUserID
	}
	return m.LostUserID
}

// MatchDetail is a match with its referenced items and user summaries
// resolved for display.
type MatchDetail struct {
	Match
	LostItem  *LostItem    `json:"lostItem,omitempty"`
	FoundItem *FoundItem   `json:"foundItem,omitempty"`
	LostUser  *UserSummary `json:"lostUser,omitempty"`
	FoundUser *UserSummary `json:"foundUser,omitempty"`
}

type UpdateMatchStatusRequest struct {
	Status MatchStatus `json:"status"`
}

func (r *UpdateMatchStatusRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Status == "" {
		errors["status"] = "Status is required"
	} else if !r.Status.Valid() || r.Status == MatchPending {
		errors["status"] = "Invalid status value"
	}

	return errors
}

type RecordMatchRequest struct {
	LostItemID           string  `json:"lostItemId"`
	FoundItemID          string  `json:"foundItemId"`
	SimilarityScore      float64 `json:"similarityScore"`
	LostItemDescription  string  `json:"lostItemDescription"`
	FoundItemDescription string  `json:"foundItemDescription"`
	CreateNotifications  bool    `json:"createNotifications"`
}

func (r *RecordMatchRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.LostItemID == "" {
		errors["lostItemId"] = "Lost item ID is required"
	}
	if r.FoundItemID == "" {
		errors["foundItemId"] = "Found item ID is required"
	}

	return errors
}

// FaceSearchResult is a lost-person report that the face oracle verified
// against a query image. These are query-time results, never persisted.
type FaceSearchResult struct {
	*LostItem
	MatchConfidence float64 `json:"matchConfidence"`
}

type FaceSearchRequest struct {
	Image    string `json:"image"`
	Category string `json:"category"`
}

func (r *FaceSearchRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Image == "" {
		errors["image"] = "Image is required"
	}
	if r.Category == "" {
		errors["category"] = "Category is required"
	} else if r.Category != CategoryLostPerson {
		errors["category"] = "Invalid category for face matching"
	}

	return errors
}
