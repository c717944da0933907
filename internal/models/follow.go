package models

import "time"

// Follow is an edge from a follower to a followed author. Uniqueness of the
// pair and the no-self-follow rule are enforced by the schema, not only by
// the handlers.
type Follow struct {
	ID       int  `gorm:"primaryKey" json:"id"`
	UserID   int  `gorm:"not null;uniqueIndex:idx_follow_user_author;check:chk_no_self_follow,user_id <> author_id" json:"user_id"`
	AuthorID int  `gorm:"not null;uniqueIndex:idx_follow_user_author" json:"author_id"`
	User     User `gorm:"foreignKey:UserID" json:"user"`
	Author   User `gorm:"foreignKey:AuthorID" json:"author"`

	CreatedAt time.Time `json:"created_at"`
}
