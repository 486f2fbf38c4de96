package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findit/backend/internal/middleware"
	"github.com/findit/backend/internal/models"
	"github.com/findit/backend/internal/services"
)

type matchFixture struct {
	router  *chi.Mux
	items   *services.MemoryItemStore
	matches *services.MemoryMatchStore
	users   *services.MemoryUserStore
	engine  *services.MatchEngine
}

type fixedScore float64

func (s fixedScore) Score(context.Context, string, string) (float64, error) {
	return float64(s), nil
}

func newMatchFixture(t *testing.T) *matchFixture {
	t.Helper()

	items := services.NewMemoryItemStore()
	matches := services.NewMemoryMatchStore()
	users := services.NewMemoryUserStore()
	engine := services.NewMatchEngine(
		items, matches,
		services.NewMemoryNotificationStore(),
		users,
		services.NewMemoryReturnedItemStore(),
		fixedScore(0.9), nil, 0.3,
	)

	itemHandler := NewItemHandler(items, engine, 5)
	matchHandler := NewMatchHandler(engine)

	r := chi.NewRouter()
	r.Get("/lostitem/{id}", itemHandler.GetLostItem)
	r.Get("/founditem/{id}", itemHandler.GetFoundItem)
	r.Get("/match/{matchId}", matchHandler.GetMatch)
	r.Put("/update-match-status/{matchId}", matchHandler.UpdateMatchStatus)
	r.Post("/api/record-match", matchHandler.RecordMatch)
	r.Get("/api/view-matches", matchHandler.ViewMatches)

	return &matchFixture{router: r, items: items, matches: matches, users: users, engine: engine}
}

func (f *matchFixture) do(t *testing.T, method, path string, body interface{}, userID string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestGetLostItemRejectsMalformedID(t *testing.T) {
	f := newMatchFixture(t)

	rec := f.do(t, http.MethodGet, "/lostitem/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid item ID format")
}

func TestGetLostItemNotFound(t *testing.T) {
	f := newMatchFixture(t)

	rec := f.do(t, http.MethodGet, "/lostitem/0b6cdb4a-6a57-4df3-a3b1-f1f9a7f5f9c1", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordMatchConflictAnswersWithExistingID(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(t)

	owner := &models.User{Name: "owner", Email: "o@example.com"}
	require.NoError(t, f.users.Create(ctx, owner))
	lost := &models.LostItem{UserID: owner.ID, Category: "Electronics", Description: "laptop",
		Contact: "1", Location: "lab", Date: "2026-08-01", Time: "10:00", UniquePoint: "sticker"}
	require.NoError(t, f.items.CreateLost(ctx, lost))
	found := &models.FoundItem{UserID: owner.ID, Category: "Electronics", Description: "a laptop",
		Contact: "2", Location: "hall", Date: "2026-08-02", Time: "11:00"}
	require.NoError(t, f.items.CreateFound(ctx, found))

	body := map[string]interface{}{
		"lostItemId":      lost.ID,
		"foundItemId":     found.ID,
		"similarityScore": 0.7,
	}

	rec := f.do(t, http.MethodPost, "/api/record-match", body, owner.ID)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Match models.Match `json:"match"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = f.do(t, http.MethodPost, "/api/record-match", body, owner.ID)
	require.Equal(t, http.StatusConflict, rec.Code)

	var conflict map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
	assert.Equal(t, created.Match.ID, conflict["matchId"])
}

func TestUpdateMatchStatusRejectsPendingTarget(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(t)

	match := &models.Match{LostItemID: "l", FoundItemID: "f", LostUserID: "u1", FoundUserID: "u2"}
	require.NoError(t, f.matches.Create(ctx, match))

	rec := f.do(t, http.MethodPut, "/update-match-status/"+match.ID,
		map[string]string{"status": "pending"}, "u1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, "/update-match-status/"+match.ID,
		map[string]string{"status": "matched"}, "u1")
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := f.matches.GetByID(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchMatched, stored.Status)
}

func TestViewMatchesRequiresUser(t *testing.T) {
	f := newMatchFixture(t)

	rec := f.do(t, http.MethodGet, "/api/view-matches", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestViewMatchesPagination(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(t)

	for i := 0; i < 3; i++ {
		match := &models.Match{
			LostItemID:  "l" + string(rune('a'+i)),
			FoundItemID: "f" + string(rune('a'+i)),
			LostUserID:  "owner",
			FoundUserID: "finder",
		}
		require.NoError(t, f.matches.Create(ctx, match))
	}

	rec := f.do(t, http.MethodGet, "/api/view-matches?userId=owner&page=1&limit=2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Matches []json.RawMessage `json:"matches"`
		Total   int64             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Matches, 2)
	assert.EqualValues(t, 3, resp.Total)
}
