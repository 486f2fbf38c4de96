package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/findit/backend/internal/middleware"
	"github.com/findit/backend/internal/models"
	"github.com/findit/backend/internal/ratelimit"
	"github.com/findit/backend/internal/services"
)

type AuthHandler struct {
	users         services.UserStore
	loginLimiter  *ratelimit.KeyedLimiter
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthHandler(users services.UserStore, loginLimiter *ratelimit.KeyedLimiter, jwtSecret string, jwtExpiration time.Duration) *AuthHandler {
	return &AuthHandler{
		users:         users,
		loginLimiter:  loginLimiter,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		respondValidation(w, errors)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user := &models.User{
		Name:             req.Name,
		Email:            req.Email,
		Mobile:           req.Mobile,
		PasswordHash:     string(hash),
		ProfileImage:     req.ProfileImage,
		ProfileImageType: req.ProfileImageType,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		if err == services.ErrEmailExists {
			respondError(w, http.StatusConflict, "Email already registered")
			return
		}
		log.Printf("[auth] register: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := h.generateToken(user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "success",
		"token":  token,
		"user":   user,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.loginLimiter != nil && !h.loginLimiter.Allow(clientIP(r)) {
		respondError(w, http.StatusTooManyRequests, "Too many login attempts, please try again later")
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		respondValidation(w, errors)
		return
	}

	user, err := h.authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if err == services.ErrUserNotFound || err == services.ErrInvalidPassword {
			respondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		log.Printf("[auth] login: %v", err)
		respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	token, err := h.generateToken(user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"token":  token,
		"user":   user,
	})
}

// authenticate resolves the user and checks the password, collapsing both
// failure modes into sentinels so the caller can answer uniformly.
func (h *AuthHandler) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := h.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, services.ErrInvalidPassword
	}
	return user, nil
}

func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if auth := middleware.GetUserID(r.Context()); auth != "" && auth != userID {
		respondError(w, http.StatusForbidden, "Cannot update another user's profile")
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Mobile != "" {
		user.Mobile = req.Mobile
	}
	if req.ProfileImage != "" {
		user.ProfileImage = req.ProfileImage
		user.ProfileImageType = req.ProfileImageType
	}

	if err := h.users.Update(r.Context(), user); err != nil {
		log.Printf("[auth] update profile %s: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeJSON(w, http.StatusOK, []*models.UserSummary{})
		return
	}

	users, err := h.users.Search(r.Context(), query)
	if err != nil {
		log.Printf("[auth] search users: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to search users")
		return
	}

	summaries := make([]*models.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *AuthHandler) generateToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(h.jwtExpiration).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
