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

// ListHandler handles HTTP requests for lists and list items.
type ListHandler struct {
	listService services.ListService
}

// NewListHandler creates a new ListHandler.
func NewListHandler(listService services.ListService) *ListHandler {
	return &ListHandler{listService: listService}
}

// CreateListRequest is the body for POST /lists.
type CreateListRequest struct {
	Type     models.ListType `json:"type"`
	Name     string          `json:"name,omitempty"`
	IsPublic bool            `json:"is_public,omitempty"`
}

// UpdateListRequest is the body for PUT /lists/{listID}. Absent fields are
// left unchanged.
type UpdateListRequest struct {
	Name     *string `json:"name,omitempty"`
	IsPublic *bool   `json:"is_public,omitempty"`
}

// AddItemRequest is the body for POST /lists/{listID}/items.
type AddItemRequest struct {
	TMDBID      int              `json:"tmdb_id"`
	MediaType   models.MediaType `json:"media_type"`
	Title       string           `json:"title,omitempty"`
	PosterPath  string           `json:"poster_path,omitempty"`
	Overview    string           `json:"overview,omitempty"`
	ReleaseDate string           `json:"release_date,omitempty"`
	Rating      float64          `json:"rating,omitempty"`
	Note        string           `json:"note,omitempty"`
}

// CreateList handles POST /lists.
func (h *ListHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	list, err := h.listService.CreateList(r.Context(), userID, req.Type, req.Name, req.IsPublic)
	if err != nil {
		if errors.Is(err, services.ErrInvalidListType) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		} else {
			log.Printf("Error creating list for user %d: %v", userID, err)
			writeJSONError(w, "failed to create list", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusCreated, list)
}

// GetList handles GET /lists/{listID}.
func (h *ListHandler) GetList(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	listID, ok := pathID(r, "listID")
	if !ok {
		writeJSONError(w, "invalid list ID", http.StatusBadRequest)
		return
	}

	list, err := h.listService.GetList(r.Context(), userID, listID)
	if err != nil {
		writeListError(w, err, "failed to fetch list")
		return
	}
	writeJSONResponse(w, http.StatusOK, list)
}

// GetPublicList handles the unauthenticated GET /lists/{listID}. Requester
// zero is the anonymous reader; only public lists pass the visibility check.
func (h *ListHandler) GetPublicList(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(r, "listID")
	if !ok {
		writeJSONError(w, "invalid list ID", http.StatusBadRequest)
		return
	}

	list, err := h.listService.GetList(r.Context(), 0, listID)
	if err != nil {
		writeListError(w, err, "failed to fetch list")
		return
	}
	writeJSONResponse(w, http.StatusOK, list)
}

// GetMyLists handles GET /lists.
func (h *ListHandler) GetMyLists(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	lists, err := h.listService.GetUserLists(r.Context(), userID, userID)
	if err != nil {
		log.Printf("Error fetching lists for user %d: %v", userID, err)
		writeJSONError(w, "failed to fetch lists", http.StatusInternalServerError)
		return
	}
	if lists == nil {
		lists = []models.List{}
	}
	writeJSONResponse(w, http.StatusOK, lists)
}

// GetUserLists handles GET /users/{userID}/lists, filtered by visibility.
func (h *ListHandler) GetUserLists(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ownerID, ok := pathID(r, "userID")
	if !ok {
		writeJSONError(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	lists, err := h.listService.GetUserLists(r.Context(), requesterID, ownerID)
	if err != nil {
		log.Printf("Error fetching lists of user %d for user %d: %v", ownerID, requesterID, err)
		writeJSONError(w, "failed to fetch lists", http.StatusInternalServerError)
		return
	}
	if lists == nil {
		lists = []models.List{}
	}
	writeJSONResponse(w, http.StatusOK, lists)
}

// UpdateList handles PUT /lists/{listID}.
func (h *ListHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	listID, ok := pathID(r, "listID")
	if !ok {
		writeJSONError(w, "invalid list ID", http.StatusBadRequest)
		return
	}

	var req UpdateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	list, err := h.listService.UpdateList(r.Context(), userID, listID, req.Name, req.IsPublic)
	if err != nil {
		writeListError(w, err, "failed to update list")
		return
	}
	writeJSONResponse(w, http.StatusOK, list)
}

// DeleteList handles DELETE /lists/{listID}.
func (h *ListHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	listID, ok := pathID(r, "listID")
	if !ok {
		writeJSONError(w, "invalid list ID", http.StatusBadRequest)
		return
	}

	if err := h.listService.DeleteList(r.Context(), userID, listID); err != nil {
		writeListError(w, err, "failed to delete list")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "list deleted"})
}

// AddItem handles POST /lists/{listID}/items.
func (h *ListHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	listID, ok := pathID(r, "listID")
	if !ok {
		writeJSONError(w, "invalid list ID", http.StatusBadRequest)
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	item := &models.ListItem{
		TMDBID:      req.TMDBID,
		MediaType:   req.MediaType,
		Title:       req.Title,
		PosterPath:  req.PosterPath,
		Overview:    req.Overview,
		ReleaseDate: req.ReleaseDate,
		Rating:      req.Rating,
		Note:        req.Note,
	}
	created, err := h.listService.AddItem(r.Context(), userID, listID, item)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidMediaType):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrItemAlreadyInList):
			writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			writeListError(w, err, "failed to add item")
		}
		return
	}
	writeJSONResponse(w, http.StatusCreated, created)
}

// RemoveItem handles DELETE /lists/{listID}/items/{itemID}.
func (h *ListHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	listID, ok := pathID(r, "listID")
	if !ok {
		writeJSONError(w, "invalid list ID", http.StatusBadRequest)
		return
	}
	itemID, ok := pathID(r, "itemID")
	if !ok {
		writeJSONError(w, "invalid item ID", http.StatusBadRequest)
		return
	}

	if err := h.listService.RemoveItem(r.Context(), userID, listID, itemID); err != nil {
		if errors.Is(err, services.ErrListItemNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			writeListError(w, err, "failed to remove item")
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "item removed"})
}

// GetWishlist handles GET /users/{userID}/wishlist.
func (h *ListHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ownerID, ok := pathID(r, "userID")
	if !ok {
		writeJSONError(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	items, err := h.listService.GetWishlist(r.Context(), requesterID, ownerID)
	if err != nil {
		writeListError(w, err, "failed to fetch wishlist")
		return
	}
	if items == nil {
		items = []models.ListItem{}
	}
	writeJSONResponse(w, http.StatusOK, items)
}

// writeListError maps the list service's sentinel errors to status codes.
func writeListError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrListNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrListForbidden), errors.Is(err, services.ErrNotListOwner):
		writeJSONError(w, err.Error(), http.StatusForbidden)
	default:
		log.Printf("%s: %v", fallback, err)
		writeJSONError(w, fallback, http.StatusInternalServerError)
	}
}
