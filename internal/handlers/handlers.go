package handlers

import (
	"gorm.io/gorm"

	"github.com/yatube-dev/yatube/backend/internal/storage"
)

// Handler combines all handler types
type Handler struct {
	Auth    *AuthHandler
	Post    *PostHandler
	Group   *GroupHandler
	Profile *ProfileHandler
	Comment *CommentHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, store storage.Storage) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(db),
		Post:    NewPostHandler(db, store),
		Group:   NewGroupHandler(db),
		Profile: NewProfileHandler(db),
		Comment: NewCommentHandler(db),
	}
}
