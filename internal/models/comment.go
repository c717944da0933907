package models

import "time"

// Comment is append-only: no edit or delete surface exists.
type Comment struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Text     string `gorm:"not null" json:"text"`
	PostID   int    `gorm:"not null;index" json:"post_id"`
	AuthorID int    `gorm:"not null" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author"`

	CreatedAt time.Time `json:"created_at"`
}

type CommentForm struct {
	Text string `json:"text" form:"text" binding:"required"`
}
