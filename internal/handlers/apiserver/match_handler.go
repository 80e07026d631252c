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

// MatchHandler handles wishlist match discovery and confirmation.
type MatchHandler struct {
	matchService services.MatchService
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// MatchesResponse wraps the match list for GET /matches.
type MatchesResponse struct {
	Matches []*models.Match `json:"matches"`
}

// CreateMatchRequest is the body for POST /matches.
type CreateMatchRequest struct {
	TMDBID     int              `json:"tmdb_id"`
	MediaType  models.MediaType `json:"media_type"`
	Title      string           `json:"title,omitempty"`
	PosterPath string           `json:"poster_path,omitempty"`
	FriendIDs  []uint           `json:"friend_ids"`
}

// CreateMatchResponse wraps the created party for POST /matches.
type CreateMatchResponse struct {
	WatchParty *models.WatchParty `json:"watch_party"`
}

// RespondRequest is the body for POST /matches/{partyID}/respond.
type RespondRequest struct {
	Action string `json:"action"` // accept or decline
}

// FindMatches handles GET /matches.
func (h *MatchHandler) FindMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	matches, err := h.matchService.FindMatches(r.Context(), userID)
	if err != nil {
		log.Printf("Error finding matches for user %d: %v", userID, err)
		writeJSONError(w, "failed to find matches", http.StatusInternalServerError)
		return
	}
	if matches == nil {
		matches = []*models.Match{}
	}
	writeJSONResponse(w, http.StatusOK, MatchesResponse{Matches: matches})
}

// CreateMatch handles POST /matches.
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.TMDBID <= 0 {
		writeJSONError(w, "missing tmdb_id", http.StatusBadRequest)
		return
	}

	party, err := h.matchService.CreateMatch(r.Context(), userID, req.TMDBID, req.MediaType, req.Title, req.PosterPath, req.FriendIDs)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidMediaType), errors.Is(err, services.ErrNoInvitees), errors.Is(err, services.ErrItemNotInWishlist):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrUserNotFound):
			writeJSONError(w, "one or more invited users do not exist", http.StatusBadRequest)
		case errors.Is(err, services.ErrMatchAlreadyExists):
			writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			log.Printf("Error creating match for user %d (tmdb %d): %v", userID, req.TMDBID, err)
			writeJSONError(w, "failed to create match", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusCreated, CreateMatchResponse{WatchParty: party})
}

// Respond handles POST /matches/{partyID}/respond.
func (h *MatchHandler) Respond(w http.ResponseWriter, r *http.Request) {
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

	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var accept bool
	switch req.Action {
	case "accept":
		accept = true
	case "decline":
		accept = false
	default:
		writeJSONError(w, services.ErrInvalidRespond.Error(), http.StatusBadRequest)
		return
	}

	party, err := h.matchService.Respond(r.Context(), userID, partyID, accept)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPartyNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrNotParticipant):
			writeJSONError(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, services.ErrAlreadyResponded):
			writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			log.Printf("Error responding to party %d by user %d: %v", partyID, userID, err)
			writeJSONError(w, "failed to respond", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, party)
}
