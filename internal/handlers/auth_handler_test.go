package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findit/backend/internal/ratelimit"
	"github.com/findit/backend/internal/services"
)

func newAuthRouter(t *testing.T, limiter *ratelimit.KeyedLimiter) (*chi.Mux, *services.MemoryUserStore) {
	t.Helper()

	users := services.NewMemoryUserStore()
	h := NewAuthHandler(users, limiter, "test-secret", time.Hour)

	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Get("/profile/{userId}", h.GetProfile)
	r.Get("/search-users", h.SearchUsers)
	return r, users
}

func postJSON(t *testing.T, r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRegisterAndLogin(t *testing.T) {
	r, _ := newAuthRouter(t, nil)

	payload := map[string]string{
		"name":     "Ada",
		"email":    "ada@example.com",
		"mobile":   "555-0100",
		"password": "hunter2",
	}
	rec := postJSON(t, r, "/register", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	var registered map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	assert.NotEmpty(t, registered["token"])

	// Same email again is a conflict.
	rec = postJSON(t, r, "/register", payload)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = postJSON(t, r, "/login", map[string]string{"email": "ada@example.com", "password": "hunter2"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, r, "/login", map[string]string{"email": "ada@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidationListsFields(t *testing.T) {
	r, _ := newAuthRouter(t, nil)

	rec := postJSON(t, r, "/register", map[string]string{"email": "bad"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Status string            `json:"status"`
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Errors, "name")
	assert.Contains(t, resp.Errors, "email")
	assert.Contains(t, resp.Errors, "password")
}

func TestLoginRateLimited(t *testing.T) {
	limiter := ratelimit.NewKeyedLimiter(2, time.Hour)
	defer limiter.Close()
	r, _ := newAuthRouter(t, limiter)

	body := map[string]string{"email": "nobody@example.com", "password": "pw"}
	for i := 0; i < 2; i++ {
		rec := postJSON(t, r, "/login", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := postJSON(t, r, "/login", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestGetProfileHidesPasswordHash(t *testing.T) {
	r, users := newAuthRouter(t, nil)

	rec := postJSON(t, r, "/register", map[string]string{
		"name": "Bob", "email": "bob@example.com", "mobile": "555", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	ids, err := users.ListIDs(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	require.NoError(t, err)
	require.Len(t, ids, 1)

	req := httptest.NewRequest(http.MethodGet, "/profile/"+ids[0], nil)
	out := httptest.NewRecorder()
	r.ServeHTTP(out, req)
	require.Equal(t, http.StatusOK, out.Code)
	assert.NotContains(t, out.Body.String(), "passwordHash")
	assert.NotContains(t, out.Body.String(), "pw")
}

func TestSearchUsers(t *testing.T) {
	r, _ := newAuthRouter(t, nil)

	for _, u := range []map[string]string{
		{"name": "Carol", "email": "carol@example.com", "mobile": "1", "password": "pw"},
		{"name": "Dan", "email": "dan@example.com", "mobile": "2", "password": "pw"},
	} {
		rec := postJSON(t, r, "/register", u)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/search-users?query=car", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var results []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Carol", results[0]["name"])
}
