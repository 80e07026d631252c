package models

import (
	"encoding/json"
	"time"
)

// NotificationType tags what a notification row is about.
type NotificationType string

const (
	FriendRequestNotification    NotificationType = "friend_request"
	WatchPartyInviteNotification NotificationType = "watch_party_invite"
)

// Notification is an in-app feed entry for a user. Rows are written by the
// Kafka consumer handlers, never by the request path that produced the event.
type Notification struct {
	BaseModel
	UserID  uint             `gorm:"not null;index" json:"user_id"`
	Type    NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Payload json.RawMessage  `gorm:"type:jsonb" json:"payload,omitempty"`
	ReadAt  *time.Time       `json:"read_at,omitempty"`
}

// TableName specifies the table name for the Notification model.
func (Notification) TableName() string {
	return "notifications"
}

// SetPayload marshals data into the notification payload.
func (n *Notification) SetPayload(data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	n.Payload = raw
	return nil
}
