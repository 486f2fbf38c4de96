package models

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestReportLostRequestValidate(t *testing.T) {
	req := ReportLostRequest{}
	errs := req.Validate()
	for _, field := range []string{"contact", "location", "time", "date", "description", "category", "uniquePoint"} {
		assert.Contains(t, errs, field)
	}

	req = ReportLostRequest{
		Contact:     "555-0100",
		Location:    "Park",
		Time:        "10:00",
		Date:        "2026-08-01",
		Description: "black umbrella",
		Category:    "Others",
		UniquePoint: "bent handle",
	}
	assert.Empty(t, req.Validate())

	req.Category = "Groceries"
	errs = req.Validate()
	assert.Contains(t, errs, "category")

	req.Category = "Lost Person"
	assert.Empty(t, req.Validate(), "people can only be reported lost, not found")
}

func TestReportFoundRequestRejectsLostOnlyCategories(t *testing.T) {
	req := ReportFoundRequest{
		Contact:     "555-0100",
		Location:    "Park",
		Time:        "10:00",
		Date:        "2026-08-01",
		Description: "a bag",
		Category:    "Bags",
	}
	errs := req.Validate()
	assert.Contains(t, errs, "category")

	req.Category = "Electronics"
	assert.Empty(t, req.Validate())
}

func TestRegisterRequestValidate(t *testing.T) {
	req := RegisterRequest{Name: "Ada", Email: "not-an-email", Mobile: "555", Password: "pw"}
	errs := req.Validate()
	assert.Contains(t, errs, "email")

	req.Email = "ada@example.com"
	assert.Empty(t, req.Validate())
}

func TestUpdateMatchStatusRequestValidate(t *testing.T) {
	assert.Contains(t, (&UpdateMatchStatusRequest{}).Validate(), "status")
	assert.Contains(t, (&UpdateMatchStatusRequest{Status: "bogus"}).Validate(), "status")
	assert.Contains(t, (&UpdateMatchStatusRequest{Status: MatchPending}).Validate(), "status")
	assert.Empty(t, (&UpdateMatchStatusRequest{Status: MatchDeclined}).Validate())
}

func TestMatchStateMachine(t *testing.T) {
	m := &Match{Status: MatchDeclined}
	assert.True(t, m.CanTransitionTo(MatchMatched), "a declined match may be reconsidered")
	assert.True(t, m.CanTransitionTo(MatchReturned))
	assert.False(t, m.CanTransitionTo(MatchPending), "pending is the initial state only")
	assert.False(t, m.CanTransitionTo("bogus"))
}

func TestMatchOtherParty(t *testing.T) {
	m := &Match{LostUserID: "owner", FoundUserID: "finder"}
	assert.Equal(t, "finder", m.OtherParty("owner"))
	assert.Equal(t, "owner", m.OtherParty("finder"))
	assert.Equal(t, "owner", m.OtherParty("someone-else"))
}

func TestDisplayNameTruncatesLongDescriptions(t *testing.T) {
	item := LostItem{Description: strings.Repeat("x", 100)}
	assert.Len(t, item.DisplayName(), 30)

	item.ItemName = "Wallet"
	assert.Equal(t, "Wallet", item.DisplayName())
}

func TestDisplayNameTruncatesOnRuneBoundaries(t *testing.T) {
	item := LostItem{Description: strings.Repeat("ä", 40)}
	name := item.DisplayName()
	assert.True(t, utf8.ValidString(name))
	assert.Equal(t, 30, utf8.RuneCountInString(name))
	assert.Equal(t, strings.Repeat("ä", 30), name)
}

func TestFaceSearchRequestValidate(t *testing.T) {
	req := FaceSearchRequest{Image: "data", Category: "Electronics"}
	assert.Contains(t, req.Validate(), "category")

	req.Category = CategoryLostPerson
	assert.Empty(t, req.Validate())
}
