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

// FriendRequestHandler handles HTTP requests related to friend requests.
type FriendRequestHandler struct {
	friendService services.FriendRequestService
}

// NewFriendRequestHandler creates a new FriendRequestHandler.
func NewFriendRequestHandler(fs services.FriendRequestService) *FriendRequestHandler {
	return &FriendRequestHandler{friendService: fs}
}

// SendFriendRequestPayload is the body for POST /friend-requests.
type SendFriendRequestPayload struct {
	RecipientID uint   `json:"recipient_id"`
	Message     string `json:"message,omitempty"`
}

// SendFriendRequest handles POST /friend-requests. The request is validated
// synchronously, then queued; 202 means it was accepted for processing.
func (h *FriendRequestHandler) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload SendFriendRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if payload.RecipientID == 0 {
		writeJSONError(w, "missing recipient_id", http.StatusBadRequest)
		return
	}

	err := h.friendService.SendFriendRequest(r.Context(), requesterID, payload.RecipientID, payload.Message)
	if err != nil {
		if errors.Is(err, services.ErrFriendRequestSelf) || errors.Is(err, services.ErrRecipientNotFound) || errors.Is(err, services.ErrAlreadyFriends) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		} else if errors.Is(err, services.ErrFriendRequestExists) {
			writeJSONError(w, err.Error(), http.StatusConflict)
		} else {
			log.Printf("Error sending friend request from %d to %d: %v", requesterID, payload.RecipientID, err)
			writeJSONError(w, "failed to send friend request", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusAccepted, map[string]string{"message": "friend request queued"})
}

// AcceptFriendRequest handles POST /friend-requests/{requestID}/accept.
func (h *FriendRequestHandler) AcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	recipientUserID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requestID, ok := pathID(r, "requestID")
	if !ok {
		writeJSONError(w, "invalid friend request ID", http.StatusBadRequest)
		return
	}

	if err := h.friendService.AcceptFriendRequest(r.Context(), recipientUserID, requestID); err != nil {
		switch {
		case errors.Is(err, services.ErrFriendRequestNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrNotRecipientOfRequest):
			writeJSONError(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, services.ErrRequestNotPending):
			writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			log.Printf("Error accepting friend request %d by user %d: %v", requestID, recipientUserID, err)
			writeJSONError(w, "failed to accept friend request", http.StatusInternalServerError)
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "friend request accepted"})
}

// RejectFriendRequest handles POST /friend-requests/{requestID}/reject.
func (h *FriendRequestHandler) RejectFriendRequest(w http.ResponseWriter, r *http.Request) {
	recipientUserID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requestID, ok := pathID(r, "requestID")
	if !ok {
		writeJSONError(w, "invalid friend request ID", http.StatusBadRequest)
		return
	}

	if err := h.friendService.RejectFriendRequest(r.Context(), recipientUserID, requestID); err != nil {
		switch {
		case errors.Is(err, services.ErrFriendRequestNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrNotRecipientOfRequest):
			writeJSONError(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, services.ErrRequestNotPending):
			writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			log.Printf("Error rejecting friend request %d by user %d: %v", requestID, recipientUserID, err)
			writeJSONError(w, "failed to reject friend request", http.StatusInternalServerError)
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "friend request rejected"})
}

// ListPendingRequests handles GET /friend-requests/pending.
func (h *FriendRequestHandler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	pendingRequests, err := h.friendService.ListPendingRequests(r.Context(), userID)
	if err != nil {
		log.Printf("Error fetching pending requests for user %d: %v", userID, err)
		writeJSONError(w, "failed to fetch pending requests", http.StatusInternalServerError)
		return
	}

	if pendingRequests == nil {
		pendingRequests = []*models.FriendRequestWithRequester{}
	}
	writeJSONResponse(w, http.StatusOK, pendingRequests)
}

// ListFriends handles GET /friends.
func (h *FriendRequestHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	friendsList, err := h.friendService.GetFriendsList(r.Context(), userID)
	if err != nil {
		log.Printf("Error fetching friends list for user %d: %v", userID, err)
		writeJSONError(w, "failed to fetch friends list", http.StatusInternalServerError)
		return
	}

	if friendsList == nil {
		friendsList = []*models.UserBasicInfo{}
	}
	writeJSONResponse(w, http.StatusOK, friendsList)
}
