package models

// Friendship represents an accepted friendship between two users.
// To avoid duplicates and simplify queries, UserID1 should always be less
// than UserID2. The unique index enforces at most one relationship per
// unordered pair.
type Friendship struct {
	BaseModel
	UserID1 uint `gorm:"not null;uniqueIndex:idx_friendship_users" json:"user_id1"`
	User1   User `gorm:"foreignKey:UserID1" json:"-"`
	UserID2 uint `gorm:"not null;uniqueIndex:idx_friendship_users" json:"user_id2"`
	User2   User `gorm:"foreignKey:UserID2" json:"-"`
}

// EnsureCanonicalOrder sets UserID1 to the smaller ID and UserID2 to the larger ID.
// This should be called before creating a Friendship record.
func (f *Friendship) EnsureCanonicalOrder() {
	if f.UserID1 > f.UserID2 {
		f.UserID1, f.UserID2 = f.UserID2, f.UserID1
	}
}
