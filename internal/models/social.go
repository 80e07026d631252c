package models

// ListLike is one user's like on a public list. At most one per user+list.
type ListLike struct {
	BaseModel
	ListID uint `gorm:"not null;uniqueIndex:idx_list_like" json:"list_id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_list_like" json:"user_id"`
}

// TableName specifies the table name for the ListLike model.
func (ListLike) TableName() string {
	return "list_likes"
}

// ListComment is a comment left on a public list.
type ListComment struct {
	BaseModel
	ListID uint   `gorm:"not null;index" json:"list_id"`
	UserID uint   `gorm:"not null" json:"user_id"`
	Body   string `gorm:"type:text;not null" json:"body"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for the ListComment model.
func (ListComment) TableName() string {
	return "list_comments"
}

// ListCommentWithAuthor is a DTO pairing a comment with its author's
// public info for API responses.
type ListCommentWithAuthor struct {
	ListComment
	Author *UserBasicInfo `json:"author"`
}
