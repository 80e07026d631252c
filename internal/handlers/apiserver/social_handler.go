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

// SocialHandler handles likes and comments on lists.
type SocialHandler struct {
	socialService services.SocialService
}

// NewSocialHandler creates a new SocialHandler.
func NewSocialHandler(socialService services.SocialService) *SocialHandler {
	return &SocialHandler{socialService: socialService}
}

// LikeSummaryResponse is returned by GET /lists/{listID}/likes.
type LikeSummaryResponse struct {
	Count int64 `json:"count"`
	Liked bool  `json:"liked"`
}

// AddCommentRequest is the body for POST /lists/{listID}/comments.
type AddCommentRequest struct {
	Body string `json:"body"`
}

// LikeList handles POST /lists/{listID}/likes.
func (h *SocialHandler) LikeList(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := socialIdentifiers(w, r)
	if !ok {
		return
	}

	if err := h.socialService.LikeList(r.Context(), userID, listID); err != nil {
		writeListError(w, err, "failed to like list")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "list liked"})
}

// UnlikeList handles DELETE /lists/{listID}/likes.
func (h *SocialHandler) UnlikeList(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := socialIdentifiers(w, r)
	if !ok {
		return
	}

	if err := h.socialService.UnlikeList(r.Context(), userID, listID); err != nil {
		writeListError(w, err, "failed to unlike list")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "like removed"})
}

// GetLikeSummary handles GET /lists/{listID}/likes.
func (h *SocialHandler) GetLikeSummary(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := socialIdentifiers(w, r)
	if !ok {
		return
	}

	count, liked, err := h.socialService.GetLikeSummary(r.Context(), userID, listID)
	if err != nil {
		writeListError(w, err, "failed to get likes")
		return
	}
	writeJSONResponse(w, http.StatusOK, LikeSummaryResponse{Count: count, Liked: liked})
}

// AddComment handles POST /lists/{listID}/comments.
func (h *SocialHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := socialIdentifiers(w, r)
	if !ok {
		return
	}

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	comment, err := h.socialService.AddComment(r.Context(), userID, listID, req.Body)
	if err != nil {
		if errors.Is(err, services.ErrEmptyComment) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		} else {
			writeListError(w, err, "failed to add comment")
		}
		return
	}
	writeJSONResponse(w, http.StatusCreated, comment)
}

// ListComments handles GET /lists/{listID}/comments.
func (h *SocialHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := socialIdentifiers(w, r)
	if !ok {
		return
	}

	comments, err := h.socialService.ListComments(r.Context(), userID, listID)
	if err != nil {
		writeListError(w, err, "failed to list comments")
		return
	}
	if comments == nil {
		comments = []models.ListCommentWithAuthor{}
	}
	writeJSONResponse(w, http.StatusOK, comments)
}

// DeleteComment handles DELETE /comments/{commentID}.
func (h *SocialHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	commentID, ok := pathID(r, "commentID")
	if !ok {
		writeJSONError(w, "invalid comment ID", http.StatusBadRequest)
		return
	}

	if err := h.socialService.DeleteComment(r.Context(), userID, commentID); err != nil {
		switch {
		case errors.Is(err, services.ErrCommentNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrNotCommentOwner):
			writeJSONError(w, err.Error(), http.StatusForbidden)
		default:
			log.Printf("Error deleting comment %d by user %d: %v", commentID, userID, err)
			writeJSONError(w, "failed to delete comment", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}

// socialIdentifiers pulls the caller and list IDs, writing the error
// response itself when either is missing.
func socialIdentifiers(w http.ResponseWriter, r *http.Request) (userID, listID uint, ok bool) {
	userID, ok = middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return 0, 0, false
	}
	listID, ok = pathID(r, "listID")
	if !ok {
		writeJSONError(w, "invalid list ID", http.StatusBadRequest)
		return 0, 0, false
	}
	return userID, listID, true
}
