package models

// ListType distinguishes the two kinds of lists a user can own.
type ListType string

const (
	WishlistType        ListType = "wishlist"        // titles the user wants to watch
	RecommendationsType ListType = "recommendations" // titles the user endorses to others
)

// MediaType identifies what kind of title a TMDB id refers to.
type MediaType string

const (
	MovieMedia MediaType = "movie"
	TVMedia    MediaType = "tv"
)

// Valid reports whether the media type is one the system understands.
func (m MediaType) Valid() bool {
	return m == MovieMedia || m == TVMedia
}

// List is a user-owned collection of titles. A user may have multiple lists
// of each type; callers that need "the" wishlist take the first match.
type List struct {
	BaseModel
	UserID   uint     `gorm:"not null;index" json:"user_id"`
	Type     ListType `gorm:"type:varchar(20);not null;index" json:"type"`
	Name     string   `gorm:"type:varchar(100)" json:"name,omitempty"`
	IsPublic bool     `gorm:"default:false" json:"is_public"`

	Items []ListItem `gorm:"foreignKey:ListID" json:"items,omitempty"`
}

// TableName specifies the table name for the List model.
func (List) TableName() string {
	return "lists"
}

// ListItem is a title saved to a list, with denormalized display fields so
// pages can render without a metadata round trip. At most one item per
// (list, tmdb_id, media_type).
type ListItem struct {
	BaseModel
	ListID    uint      `gorm:"not null;uniqueIndex:idx_list_item_media" json:"list_id"`
	TMDBID    int       `gorm:"column:tmdb_id;not null;uniqueIndex:idx_list_item_media" json:"tmdb_id"`
	MediaType MediaType `gorm:"type:varchar(10);not null;uniqueIndex:idx_list_item_media" json:"media_type"`

	Title       string  `gorm:"type:varchar(255)" json:"title,omitempty"`
	PosterPath  string  `gorm:"type:varchar(255)" json:"poster_path,omitempty"`
	Overview    string  `gorm:"type:text" json:"overview,omitempty"`
	ReleaseDate string  `gorm:"type:varchar(20)" json:"release_date,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	Note        string  `gorm:"type:text" json:"note,omitempty"`
}

// TableName specifies the table name for the ListItem model.
func (ListItem) TableName() string {
	return "list_items"
}

// MediaKey identifies a title across users: the same (tmdb_id, media_type)
// pair in two wishlists is a match.
type MediaKey struct {
	TMDBID    int
	MediaType MediaType
}

// Key returns the item's media key.
func (i *ListItem) Key() MediaKey {
	return MediaKey{TMDBID: i.TMDBID, MediaType: i.MediaType}
}
