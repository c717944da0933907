package models

import "time"

type Post struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Text     string `gorm:"not null" json:"text"`
	Image    string `json:"image,omitempty"`
	AuthorID int    `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author"`
	GroupID  *int   `gorm:"index" json:"group_id,omitempty"`
	Group    *Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostForm carries the submitted fields of the create/edit forms. The image
// file itself arrives as an optional multipart part handled separately.
type PostForm struct {
	Text  string `json:"text" form:"text" binding:"required"`
	Group string `json:"group" form:"group" binding:"omitempty,slug"`
}
