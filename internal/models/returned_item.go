package models

import (
	"time"
)

const (
	ItemTypeLost  = "LostItem"
	ItemTypeFound = "FoundItem"
)

// ReturnedItem is the archive record created when an item is marked
// returned. It carries a full snapshot of the original item; once it exists
// the original item is deleted and this is the sole surviving record.
type ReturnedItem struct {
	ID           string      `json:"_id"`
	ItemID       string      `json:"itemId"`
	ItemType     string      `json:"itemType"`
	OriginalItem interface{} `json:"originalItem"`
	ReturnedAt   time.Time   `json:"returnedAt"`
	ReturnedBy   string      `json:"returnedBy"`
	ReturnNotes  string      `json:"returnNotes,omitempty"`

	// Denormalized display fields.
	ItemName string `json:"itemName"`
	Category string `json:"category"`
	Location string `json:"location"`
	Date     string `json:"date"`
	Photo    []byte `json:"photo,omitempty"`
}

type ReturnItemRequest struct {
	ItemID      string `json:"itemId"`
	ItemType    string `json:"itemType"` // "lost" or "found"
	ReturnNotes string `json:"returnNotes"`
}

func (r *ReturnItemRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.ItemID == "" {
		errors["itemId"] = "Item ID is required"
	}
	if r.ItemType == "" {
		errors["itemType"] = "Item type is required"
	} else if r.ItemType != "lost" && r.ItemType != "found" {
		errors["itemType"] = `Invalid item type. Must be either "lost" or "found"`
	}

	return errors
}
