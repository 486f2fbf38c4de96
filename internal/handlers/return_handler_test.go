package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findit/backend/internal/middleware"
	"github.com/findit/backend/internal/models"
	"github.com/findit/backend/internal/services"
)

func bearerToken(t *testing.T, secret, userID string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestReturnedItemRoutesRequireAuth(t *testing.T) {
	ctx := context.Background()
	returned := services.NewMemoryReturnedItemStore()
	require.NoError(t, returned.Create(ctx, &models.ReturnedItem{
		ItemID:   "item-1",
		ItemType: models.ItemTypeLost,
		OriginalItem: &models.LostItem{
			UserID:      "owner-1",
			Description: "gold ring with initials",
		},
		ReturnedBy:  "owner-1",
		ReturnNotes: "handed over at the front desk",
		ItemName:    "Ring",
	}))

	h := NewReturnHandler(nil, returned)
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth("secret"))
		r.Get("/returned-items", h.ListReturned)
		r.Get("/user-returned-items/{userId}", h.ListForUser)
	})

	// The archive carries owner snapshots and return notes, so both read
	// routes reject anonymous callers.
	for _, path := range []string{"/returned-items", "/user-returned-items/owner-1"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	req := httptest.NewRequest(http.MethodGet, "/returned-items", nil)
	req.Header.Set("Authorization", bearerToken(t, "secret", "owner-1"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []*models.ReturnedItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "item-1", items[0].ItemID)

	req = httptest.NewRequest(http.MethodGet, "/user-returned-items/owner-1", nil)
	req.Header.Set("Authorization", bearerToken(t, "secret", "owner-1"))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	items = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
}
