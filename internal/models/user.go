package models

// User represents an account in the system.
type User struct {
	BaseModel
	Username     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"` // Never exposed
	Email        string `gorm:"type:varchar(100);uniqueIndex" json:"email,omitempty"`
	DisplayName  string `gorm:"type:varchar(100)" json:"display_name,omitempty"`
	AvatarURL    string `gorm:"type:varchar(255)" json:"avatar_url,omitempty"`
	Bio          string `gorm:"type:text" json:"bio,omitempty"`

	Lists []List `gorm:"foreignKey:UserID" json:"lists,omitempty"`
}

// UserBasicInfo holds minimal public information about a user.
// Used wherever another user appears in a response (matched friends,
// pending friend requests, watch party participants).
type UserBasicInfo struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// FriendshipStatus is the derived relationship between the current user and
// another user, computed at query time for search results.
type FriendshipStatus string

const (
	FriendshipStatusFriends         FriendshipStatus = "friends"
	FriendshipStatusPendingSent     FriendshipStatus = "pending_sent"
	FriendshipStatusPendingReceived FriendshipStatus = "pending_received"
	FriendshipStatusNone            FriendshipStatus = "none"
)

// UserSearchResult is a search hit enriched with the derived friendship
// status so the client can render the right affordance.
type UserSearchResult struct {
	UserBasicInfo
	FriendshipStatus FriendshipStatus `json:"friendship_status"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}
