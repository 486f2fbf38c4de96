package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/findit/backend/internal/middleware"
	"github.com/findit/backend/internal/models"
	"github.com/findit/backend/internal/services"
)

var errInvalidForm = errors.New("Invalid form data")

type ItemHandler struct {
	items          services.ItemStore
	engine         *services.MatchEngine
	maxUploadBytes int64
}

func NewItemHandler(items services.ItemStore, engine *services.MatchEngine, maxUploadMB int64) *ItemHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 5
	}
	return &ItemHandler{
		items:          items,
		engine:         engine,
		maxUploadBytes: maxUploadMB << 20,
	}
}

// ReportFound stores a found report and answers immediately; candidate
// discovery against the lost pool runs in the background.
func (h *ItemHandler) ReportFound(w http.ResponseWriter, r *http.Request) {
	var req models.ReportFoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		respondValidation(w, errors)
		return
	}

	actingUserID := middleware.GetUserID(r.Context())
	userID := req.UserID
	if userID == "" {
		userID = actingUserID
	}

	item := &models.FoundItem{
		UserID:           userID,
		ItemName:         req.ItemName,
		Contact:          req.Contact,
		Location:         req.Location,
		Category:         req.Category,
		Time:             req.Time,
		Date:             req.Date,
		Description:      req.Description,
		Coordinates:      models.Coordinates{Latitude: req.Latitude, Longitude: req.Longitude},
		Photo:            req.Photo,
		PhotoContentType: req.PhotoContentType,
	}
	if err := h.items.CreateFound(r.Context(), item); err != nil {
		log.Printf("[items] create found item: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to save found item")
		return
	}

	h.engine.MatchFoundItemAsync(item, actingUserID)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Found item reported successfully",
		"item":    item,
	})
}

// ReportLost accepts either multipart form data (the mobile client uploads
// the photo inline) or plain JSON. The report is broadcast to all other
// users in the background.
func (h *ItemHandler) ReportLost(w http.ResponseWriter, r *http.Request) {
	var req models.ReportLostRequest

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := h.parseLostMultipart(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	if errors := req.Validate(); len(errors) > 0 {
		respondValidation(w, errors)
		return
	}

	actingUserID := middleware.GetUserID(r.Context())
	userID := req.UserID
	if userID == "" {
		userID = actingUserID
	}

	item := &models.LostItem{
		UserID:            userID,
		ItemName:          req.ItemName,
		Contact:           req.Contact,
		Location:          req.Location,
		Category:          req.Category,
		Time:              req.Time,
		Date:              req.Date,
		Description:       req.Description,
		Coordinates:       models.Coordinates{Latitude: req.Latitude, Longitude: req.Longitude},
		Photo:             req.Photo,
		PhotoContentType:  req.PhotoContentType,
		UniquePoint:       req.UniquePoint,
		HasReward:         req.HasReward,
		RewardAmount:      req.RewardAmount,
		RewardCurrency:    req.RewardCurrency,
		RewardDescription: req.RewardDescription,
	}
	if err := h.items.CreateLost(r.Context(), item); err != nil {
		log.Printf("[items] create lost item: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to save lost item")
		return
	}

	h.engine.BroadcastLostReportAsync(item, userID)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Lost item reported successfully",
		"item":    item,
	})
}

func (h *ItemHandler) parseLostMultipart(r *http.Request, req *models.ReportLostRequest) error {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return errInvalidForm
	}

	req.Contact = r.FormValue("contact")
	req.Location = r.FormValue("location")
	req.Time = r.FormValue("time")
	req.Date = r.FormValue("date")
	req.Description = r.FormValue("description")
	req.Category = r.FormValue("category")
	req.ItemName = r.FormValue("itemName")
	req.UserID = r.FormValue("userId")
	req.UniquePoint = r.FormValue("uniquePoint")
	req.RewardCurrency = r.FormValue("rewardCurrency")
	req.RewardDescription = r.FormValue("rewardDescription")

	if v := r.FormValue("latitude"); v != "" {
		if lat, err := strconv.ParseFloat(v, 64); err == nil {
			req.Latitude = &lat
		}
	}
	if v := r.FormValue("longitude"); v != "" {
		if lng, err := strconv.ParseFloat(v, 64); err == nil {
			req.Longitude = &lng
		}
	}
	if v := r.FormValue("hasReward"); v == "true" || v == "1" {
		req.HasReward = true
	}
	if v := r.FormValue("rewardAmount"); v != "" {
		if amount, err := strconv.ParseFloat(v, 64); err == nil {
			req.RewardAmount = amount
		}
	}

	file, header, err := r.FormFile("photo")
	if err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(io.LimitReader(file, h.maxUploadBytes))
		if readErr != nil {
			return errInvalidForm
		}
		req.Photo = data
		req.PhotoContentType = header.Header.Get("Content-Type")
	}

	return nil
}

func (h *ItemHandler) GetLostItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if uuid.Validate(id) != nil {
		respondError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	item, err := h.items.GetLost(r.Context(), id)
	if err != nil {
		if err == services.ErrLostItemNotFound {
			respondError(w, http.StatusNotFound, "Lost item not found")
			return
		}
		log.Printf("[items] get lost item %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch lost item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) GetFoundItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if uuid.Validate(id) != nil {
		respondError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	item, err := h.items.GetFound(r.Context(), id)
	if err != nil {
		if err == services.ErrFoundItemNotFound {
			respondError(w, http.StatusNotFound, "Found item not found")
			return
		}
		log.Printf("[items] get found item %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch found item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// RepostLostItem stamps the report as reposted and reruns discovery against
// the found pool in the background.
func (h *ItemHandler) RepostLostItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if uuid.Validate(id) != nil {
		respondError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	actingUserID := middleware.GetUserID(r.Context())
	item, err := h.engine.RepostLostItem(r.Context(), id, actingUserID)
	if err != nil {
		if err == services.ErrLostItemNotFound {
			respondError(w, http.StatusNotFound, "Lost item not found")
			return
		}
		log.Printf("[items] repost lost item %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "Failed to repost lost item")
		return
	}

	h.engine.RepostFanoutAsync(item, actingUserID)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Item reposted successfully",
		"item":    item,
	})
}
