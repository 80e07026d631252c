package models

// WatchPartyStatus is the party-level lifecycle state.
type WatchPartyStatus string

const (
	WatchPartyPending  WatchPartyStatus = "pending"  // created, waiting on invitees
	WatchPartyAccepted WatchPartyStatus = "accepted" // at least one invitee accepted
	WatchPartyActive   WatchPartyStatus = "active"   // all invitees responded, someone accepted
	WatchPartyDeclined WatchPartyStatus = "declined" // all invitees declined
)

// Terminal reports whether the party can no longer change state.
func (s WatchPartyStatus) Terminal() bool {
	return s == WatchPartyDeclined
}

// ParticipantStatus is an individual invitee's response state. It is
// terminal once set to accepted or declined.
type ParticipantStatus string

const (
	ParticipantPending  ParticipantStatus = "pending"
	ParticipantAccepted ParticipantStatus = "accepted"
	ParticipantDeclined ParticipantStatus = "declined"
)

// WatchParty coordinates friends around watching a matched title together.
// Created when a wishlist match is confirmed by the creator.
type WatchParty struct {
	BaseModel
	CreatorID uint             `gorm:"not null;index:idx_party_creator_media" json:"creator_id"`
	TMDBID    int              `gorm:"column:tmdb_id;not null;index:idx_party_creator_media" json:"tmdb_id"`
	MediaType MediaType        `gorm:"type:varchar(10);not null;index:idx_party_creator_media" json:"media_type"`
	Status    WatchPartyStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	Title      string `gorm:"type:varchar(255)" json:"title,omitempty"`
	PosterPath string `gorm:"type:varchar(255)" json:"poster_path,omitempty"`

	// ItemID points back at the creator's wishlist item the party grew from.
	ItemID uint `gorm:"index" json:"item_id,omitempty"`

	Participants []WatchPartyParticipant `gorm:"foreignKey:WatchPartyID" json:"participants,omitempty"`
}

// TableName specifies the table name for the WatchParty model.
func (WatchParty) TableName() string {
	return "watch_parties"
}

// WatchPartyParticipant tracks one user's response to a party invitation.
// The creator's own row is auto-accepted at creation.
type WatchPartyParticipant struct {
	BaseModel
	WatchPartyID uint              `gorm:"not null;uniqueIndex:idx_party_participant" json:"watch_party_id"`
	UserID       uint              `gorm:"not null;uniqueIndex:idx_party_participant" json:"user_id"`
	Status       ParticipantStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for the WatchPartyParticipant model.
func (WatchPartyParticipant) TableName() string {
	return "watch_party_participants"
}

// SeriesProgress records how far one participant has watched, independently
// of the other participants. Only meaningful for tv parties.
type SeriesProgress struct {
	BaseModel
	WatchPartyID   uint `gorm:"not null;uniqueIndex:idx_series_progress" json:"watch_party_id"`
	UserID         uint `gorm:"not null;uniqueIndex:idx_series_progress" json:"user_id"`
	CurrentSeason  int  `gorm:"not null;default:1" json:"current_season"`
	CurrentEpisode int  `gorm:"not null;default:1" json:"current_episode"`
}

// TableName specifies the table name for the SeriesProgress model.
func (SeriesProgress) TableName() string {
	return "series_progress"
}

// Match is the read model returned by the matching routine: one wishlist
// title shared with one or more candidates, plus the caller's existing
// non-terminal party for it, if any.
type Match struct {
	TMDBID         int              `json:"tmdb_id"`
	MediaType      MediaType        `json:"media_type"`
	Title          string           `json:"title,omitempty"`
	PosterPath     string           `json:"poster_path,omitempty"`
	Overview       string           `json:"overview,omitempty"`
	ReleaseDate    string           `json:"release_date,omitempty"`
	MatchedFriends []*UserBasicInfo `json:"matched_friends"`
	WatchParty     *WatchParty      `json:"watch_party"`
}
