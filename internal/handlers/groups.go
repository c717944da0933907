package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yatube-dev/yatube/backend/internal/models"
)

type GroupHandler struct {
	db *gorm.DB
}

func NewGroupHandler(db *gorm.DB) *GroupHandler {
	return &GroupHandler{db: db}
}

// Feed returns the paginated posts of one group, 404 for an unknown slug.
func (h *GroupHandler) Feed(c *gin.Context) {
	var group models.Group
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&group).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	page, posts, err := feedPage(c, h.db.Model(&models.Post{}).Where("group_id = ?", group.ID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"group": group,
		"posts": posts,
		"page":  page,
	})
}
