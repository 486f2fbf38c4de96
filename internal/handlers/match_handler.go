package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/findit/backend/internal/middleware"
	"github.com/findit/backend/internal/models"
	"github.com/findit/backend/internal/services"
)

type MatchHandler struct {
	engine *services.MatchEngine
}

func NewMatchHandler(engine *services.MatchEngine) *MatchHandler {
	return &MatchHandler{engine: engine}
}

func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "matchId")
	if uuid.Validate(id) != nil {
		respondError(w, http.StatusBadRequest, "Invalid match ID format")
		return
	}

	detail, err := h.engine.GetMatchDetail(r.Context(), id)
	if err != nil {
		if err == services.ErrMatchNotFound {
			respondError(w, http.StatusNotFound, "Match not found")
			return
		}
		log.Printf("[matches] get match %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch match")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *MatchHandler) UpdateMatchStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "matchId")
	if uuid.Validate(id) != nil {
		respondError(w, http.StatusBadRequest, "Invalid match ID format")
		return
	}

	var req models.UpdateMatchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		respondValidation(w, errors)
		return
	}

	actingUserID := middleware.GetUserID(r.Context())
	match, err := h.engine.UpdateMatchStatus(r.Context(), id, req.Status, actingUserID)
	if err != nil {
		switch err {
		case services.ErrMatchNotFound:
			respondError(w, http.StatusNotFound, "Match not found")
		case services.ErrInvalidTransition:
			respondError(w, http.StatusBadRequest, "Invalid status transition")
		default:
			log.Printf("[matches] update status for %s: %v", id, err)
			respondError(w, http.StatusInternalServerError, "Failed to update match status")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Match status updated",
		"match":   match,
	})
}

// ViewMatches pages the requester's matches, both sides resolved for
// display. A userId query param overrides the token identity so a dashboard
// admin can inspect another user's matches.
func (h *MatchHandler) ViewMatches(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = middleware.GetUserID(r.Context())
	}
	if userID == "" {
		respondError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(r, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	details, total, err := h.engine.ListUserMatches(r.Context(), userID, page, limit)
	if err != nil {
		log.Printf("[matches] list for user %s: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch matches")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"matches": details,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// RecordMatch persists a manually confirmed pairing. A duplicate pair is a
// conflict, answered with the existing match id.
func (h *MatchHandler) RecordMatch(w http.ResponseWriter, r *http.Request) {
	var req models.RecordMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		respondValidation(w, errors)
		return
	}

	actingUserID := middleware.GetUserID(r.Context())
	match, err := h.engine.RecordMatch(r.Context(), &req, actingUserID)
	if err != nil {
		switch err {
		case services.ErrMatchExists:
			conflict := map[string]interface{}{
				"status":  "error",
				"message": "A match already exists between these items",
			}
			if match != nil {
				conflict["matchId"] = match.ID
			}
			writeJSON(w, http.StatusConflict, conflict)
		case services.ErrLostItemNotFound:
			respondError(w, http.StatusNotFound, "Lost item not found")
		case services.ErrFoundItemNotFound:
			respondError(w, http.StatusNotFound, "Found item not found")
		default:
			log.Printf("[matches] record match: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to record match")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Match recorded successfully",
		"match":   match,
	})
}

// FaceSearch ranks lost-person reports against a query photo. Results are
// computed per request and never persisted.
func (h *MatchHandler) FaceSearch(w http.ResponseWriter, r *http.Request) {
	var req models.FaceSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		respondValidation(w, errors)
		return
	}

	results, err := h.engine.SearchLostPersons(r.Context(), req.Image)
	if err != nil {
		log.Printf("[matches] face search: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to search lost persons")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"results": results,
	})
}
