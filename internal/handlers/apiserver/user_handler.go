package apiserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"cinematch/internal/middleware"
	"cinematch/internal/models"
	"cinematch/internal/services"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// UserHandler exposes profile and user search endpoints.
type UserHandler struct {
	userService services.UserService
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateProfileRequest is the body for PUT /users/me.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Bio         string `json:"bio,omitempty"`
}

// GetMe handles GET /users/me.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.userService.GetUserProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, "user not found", http.StatusNotFound)
		} else {
			log.Printf("Error fetching profile for user %d: %v", userID, err)
			writeJSONError(w, "failed to fetch profile", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}

// GetUserProfile handles GET /users/{userID}.
func (h *UserHandler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	targetID, ok := pathID(r, "userID")
	if !ok {
		writeJSONError(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	user, err := h.userService.GetUserProfile(r.Context(), targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, "user not found", http.StatusNotFound)
		} else {
			log.Printf("Error fetching profile for user %d: %v", targetID, err)
			writeJSONError(w, "failed to fetch profile", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /users/me.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user, err := h.userService.UpdateUserProfile(r.Context(), userID, req.DisplayName, req.AvatarURL, req.Bio)
	if err != nil {
		log.Printf("Error updating profile for user %d: %v", userID, err)
		writeJSONError(w, "failed to update profile", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}

// SearchUsers handles GET /users/search?q=...
func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSONError(w, "missing search query parameter q", http.StatusBadRequest)
		return
	}

	results, err := h.userService.SearchUsers(r.Context(), query, userID)
	if err != nil {
		log.Printf("Error searching users for %q: %v", query, err)
		writeJSONError(w, "search failed", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []models.UserSearchResult{}
	}
	writeJSONResponse(w, http.StatusOK, results)
}

// pathID extracts and parses a numeric path variable.
func pathID(r *http.Request, name string) (uint, bool) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
