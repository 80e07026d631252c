package models

// FriendRequestStatus defines the state of a friend request.
type FriendRequestStatus string

const (
	FriendRequestStatusPending   FriendRequestStatus = "pending"
	FriendRequestStatusAccepted  FriendRequestStatus = "accepted"
	FriendRequestStatusRejected  FriendRequestStatus = "rejected"
	FriendRequestStatusCancelled FriendRequestStatus = "cancelled" // If sender cancels
)

// FriendRequest represents a directional friend request record.
type FriendRequest struct {
	BaseModel
	RequesterUserID uint                `gorm:"not null;index:idx_friend_request_users" json:"requester_user_id"`
	RecipientUserID uint                `gorm:"not null;index:idx_friend_request_users" json:"recipient_user_id"`
	Status          FriendRequestStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	RequestMessage  string              `gorm:"type:text" json:"request_message,omitempty"`
}

// FriendRequestWithRequester is a DTO that includes friend request details
// along with basic information about the user who sent the request.
// Useful for API responses for listing pending requests.
type FriendRequestWithRequester struct {
	FriendRequest
	Requester *UserBasicInfo `json:"requester"`
}
