package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/findit/backend/internal/middleware"
	"github.com/findit/backend/internal/models"
	"github.com/findit/backend/internal/services"
)

type ReturnHandler struct {
	engine   *services.MatchEngine
	returned services.ReturnedItemStore
}

func NewReturnHandler(engine *services.MatchEngine, returned services.ReturnedItemStore) *ReturnHandler {
	return &ReturnHandler{engine: engine, returned: returned}
}

// ReturnItem archives the item and deletes the original.
func (h *ReturnHandler) ReturnItem(w http.ResponseWriter, r *http.Request) {
	var req models.ReturnItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		respondValidation(w, errors)
		return
	}

	actingUserID := middleware.GetUserID(r.Context())
	returned, err := h.engine.ReturnItem(r.Context(), &req, actingUserID)
	if err != nil {
		switch err {
		case services.ErrLostItemNotFound:
			respondError(w, http.StatusNotFound, "Lost item not found")
		case services.ErrFoundItemNotFound:
			respondError(w, http.StatusNotFound, "Found item not found")
		default:
			log.Printf("[returns] return item %s: %v", req.ItemID, err)
			respondError(w, http.StatusInternalServerError, "Failed to return item")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "success",
		"message":      "Item marked as returned",
		"returnedItem": returned,
	})
}

func (h *ReturnHandler) ListReturned(w http.ResponseWriter, r *http.Request) {
	items, err := h.returned.List(r.Context())
	if err != nil {
		log.Printf("[returns] list: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch returned items")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ReturnHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	items, err := h.returned.ListByOwner(r.Context(), userID)
	if err != nil {
		log.Printf("[returns] list for user %s: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch returned items")
		return
	}
	writeJSON(w, http.StatusOK, items)
}
