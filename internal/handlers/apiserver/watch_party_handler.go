package apiserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"cinematch/internal/middleware"
	"cinematch/internal/models"
	"cinematch/internal/services"
)

// WatchPartyHandler handles watch party viewing and series progress.
type WatchPartyHandler struct {
	partyService services.WatchPartyService
}

// NewWatchPartyHandler creates a new WatchPartyHandler.
func NewWatchPartyHandler(partyService services.WatchPartyService) *WatchPartyHandler {
	return &WatchPartyHandler{partyService: partyService}
}

// UpdateProgressRequest is the body for PUT /watch-parties/{partyID}/progress.
type UpdateProgressRequest struct {
	Season  int `json:"season"`
	Episode int `json:"episode"`
}

// ListParties handles GET /watch-parties.
func (h *WatchPartyHandler) ListParties(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	parties, err := h.partyService.ListParties(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing watch parties for user %d: %v", userID, err)
		writeJSONError(w, "failed to list watch parties", http.StatusInternalServerError)
		return
	}
	if parties == nil {
		parties = []models.WatchParty{}
	}
	writeJSONResponse(w, http.StatusOK, parties)
}

// GetParty handles GET /watch-parties/{partyID}.
func (h *WatchPartyHandler) GetParty(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	partyID, ok := pathID(r, "partyID")
	if !ok {
		writeJSONError(w, "invalid watch party ID", http.StatusBadRequest)
		return
	}

	detail, err := h.partyService.GetParty(r.Context(), userID, partyID)
	if err != nil {
		writePartyError(w, err, "failed to fetch watch party")
		return
	}
	writeJSONResponse(w, http.StatusOK, detail)
}

// UpdateProgress handles PUT /watch-parties/{partyID}/progress.
func (h *WatchPartyHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	partyID, ok := pathID(r, "partyID")
	if !ok {
		writeJSONError(w, "invalid watch party ID", http.StatusBadRequest)
		return
	}

	var req UpdateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	progress, err := h.partyService.UpdateProgress(r.Context(), userID, partyID, req.Season, req.Episode)
	if err != nil {
		if errors.Is(err, services.ErrProgressNotTV) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		} else {
			writePartyError(w, err, "failed to update progress")
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, progress)
}

// writePartyError maps the watch party sentinel errors to status codes.
func writePartyError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrPartyNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrNotParticipant):
		writeJSONError(w, err.Error(), http.StatusForbidden)
	default:
		log.Printf("%s: %v", fallback, err)
		writeJSONError(w, fallback, http.StatusInternalServerError)
	}
}
