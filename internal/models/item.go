package models

import (
	"time"
)

// Item categories. Found reports support a narrower set: people and bags are
// only ever reported as lost.
var LostCategories = []string{
	"Electronics",
	"Accessories",
	"Clothing",
	"Documents",
	"Lost Person",
	"Bags",
	"Others",
}

var FoundCategories = []string{
	"Electronics",
	"Accessories",
	"Clothing",
	"Documents",
	"Others",
}

const CategoryLostPerson = "Lost Person"

func validCategory(category string, allowed []string) bool {
	for _, c := range allowed {
		if c == category {
			return true
		}
	}
	return false
}

type Coordinates struct {
	Latitude  *float64 `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty" bson:"longitude,omitempty"`
}

type LostItem struct {
	ID          string      `json:"_id"`
	UserID      string      `json:"userId,omitempty"`
	ItemName    string      `json:"itemName,omitempty"`
	Contact     string      `json:"contact"`
	Location    string      `json:"location"`
	Category    string      `json:"category"`
	Time        string      `json:"time"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Coordinates Coordinates `json:"coordinates"`

	Photo            []byte `json:"photo,omitempty"`
	PhotoContentType string `json:"photoContentType,omitempty"`

	// Category-specific attributes.
	Brand            string `json:"brand,omitempty"`
	Model            string `json:"model,omitempty"`
	Color            string `json:"color,omitempty"`
	Material         string `json:"material,omitempty"`
	Size             string `json:"size,omitempty"`
	DocumentType     string `json:"documentType,omitempty"`
	IssuingAuthority string `json:"issuingAuthority,omitempty"`
	NameOnDocument   string `json:"nameOnDocument,omitempty"`

	Attributes map[string]string `json:"attributes,omitempty"`

	// The one detail only the true owner would know.
	UniquePoint string `json:"uniquePoint"`

	HasReward         bool    `json:"hasReward"`
	RewardAmount      float64 `json:"rewardAmount"`
	RewardCurrency    string  `json:"rewardCurrency"`
	RewardDescription string  `json:"rewardDescription,omitempty"`

	CreatedAt  time.Time  `json:"createdAt"`
	RepostedAt *time.Time `json:"repostedAt"`
}

type FoundItem struct {
	ID          string      `json:"_id"`
	UserID      string      `json:"userId,omitempty"`
	ItemName    string      `json:"itemName,omitempty"`
	Contact     string      `json:"contact"`
	Location    string      `json:"location"`
	Category    string      `json:"category"`
	Time        string      `json:"time"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Coordinates Coordinates `json:"coordinates"`

	Photo            []byte `json:"photo,omitempty"`
	PhotoContentType string `json:"photoContentType,omitempty"`

	Brand            string `json:"brand,omitempty"`
	Model            string `json:"model,omitempty"`
	Color            string `json:"color,omitempty"`
	SerialNumber     string `json:"serialNumber,omitempty"`
	Material         string `json:"material,omitempty"`
	Size             string `json:"size,omitempty"`
	DocumentType     string `json:"documentType,omitempty"`
	IssuingAuthority string `json:"issuingAuthority,omitempty"`
	NameOnDocument   string `json:"nameOnDocument,omitempty"`

	Attributes map[string]string `json:"attributes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// DisplayName is what notifications and match summaries call the item.
func (i *LostItem) DisplayName() string {
	return displayName(i.ItemName, i.Description)
}

func (i *FoundItem) DisplayName() string {
	return displayName(i.ItemName, i.Description)
}

func displayName(name, description string) string {
	if name != "" {
		return name
	}
	// Truncate on rune boundaries so the snapshot stays valid UTF-8.
	runes := []rune(description)
	if len(runes) > 30 {
		return string(runes[:30])
	}
	return description
}

type ReportFoundRequest struct {
	Contact     string   `json:"contact"`
	Location    string   `json:"location"`
	Time        string   `json:"time"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	ItemName    string   `json:"itemName"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	UserID      string   `json:"userId"`

	Photo            []byte `json:"photo,omitempty"`
	PhotoContentType string `json:"photoContentType,omitempty"`
}

func (r *ReportFoundRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Contact == "" {
		errors["contact"] = "Contact is required"
	}
	if r.Location == "" {
		errors["location"] = "Location is required"
	}
	if r.Time == "" {
		errors["time"] = "Time is required"
	}
	if r.Date == "" {
		errors["date"] = "Date is required"
	}
	if r.Description == "" {
		errors["description"] = "Description is required"
	}
	if r.Category == "" {
		errors["category"] = "Category is required"
	} else if !validCategory(r.Category, FoundCategories) {
		errors["category"] = "Invalid category for a found item"
	}

	return errors
}

type ReportLostRequest struct {
	Contact     string   `json:"contact"`
	Location    string   `json:"location"`
	Time        string   `json:"time"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	ItemName    string   `json:"itemName"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	UserID      string   `json:"userId"`

	UniquePoint string `json:"uniquePoint"`

	HasReward         bool    `json:"hasReward"`
	RewardAmount      float64 `json:"rewardAmount"`
	RewardCurrency    string  `json:"rewardCurrency"`
	RewardDescription string  `json:"rewardDescription"`

	Photo            []byte `json:"photo,omitempty"`
	PhotoContentType string `json:"photoContentType,omitempty"`
}

func (r *ReportLostRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Contact == "" {
		errors["contact"] = "Contact is required"
	}
	if r.Location == "" {
		errors["location"] = "Location is required"
	}
	if r.Time == "" {
		errors["time"] = "Time is required"
	}
	if r.Date == "" {
		errors["date"] = "Date is required"
	}
	if r.Description == "" {
		errors["description"] = "Description is required"
	}
	if r.Category == "" {
		errors["category"] = "Category is required"
	} else if !validCategory(r.Category, LostCategories) {
		errors["category"] = "Invalid category for a lost item"
	}
	if r.UniquePoint == "" {
		errors["uniquePoint"] = "Unique point is required"
	}
	if r.HasReward && r.RewardAmount < 0 {
		errors["rewardAmount"] = "Reward amount cannot be negative"
	}

	return errors
}
