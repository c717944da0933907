package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yatube-dev/yatube/backend/internal/models"
)

type ProfileHandler struct {
	db *gorm.DB
}

func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// Profile returns an author page: their posts, follower counts and whether
// the viewer follows them. 404 for an unknown username.
func (h *ProfileHandler) Profile(c *gin.Context) {
	author, ok := h.authorByUsername(c)
	if !ok {
		return
	}

	page, posts, err := feedPage(c, h.db.Model(&models.Post{}).Where("author_id = ?", author.ID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	var followerCount, followingCount int64
	h.db.Model(&models.Follow{}).Where("author_id = ?", author.ID).Count(&followerCount)
	h.db.Model(&models.Follow{}).Where("user_id = ?", author.ID).Count(&followingCount)

	// Following is only meaningful for an authenticated viewer looking at
	// someone else's profile.
	isFollowing := false
	if viewerID, authenticated := extractUserID(c); authenticated && viewerID != author.ID {
		var follow models.Follow
		err := h.db.Where("user_id = ? AND author_id = ?", viewerID, author.ID).First(&follow).Error
		isFollowing = err == nil
	}

	c.JSON(http.StatusOK, gin.H{
		"author":          author,
		"posts":           posts,
		"page":            page,
		"follower_count":  followerCount,
		"following_count": followingCount,
		"is_following":    isFollowing,
	})
}

// FollowFeed returns the viewer's personal feed: posts by every author the
// viewer follows.
func (h *ProfileHandler) FollowFeed(c *gin.Context) {
	viewerID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	followed := h.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", viewerID)
	page, posts, err := feedPage(c, h.db.Model(&models.Post{}).Where("author_id IN (?)", followed))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"page":  page,
	})
}

// Follow creates the viewer→author edge if it does not exist yet. Following
// yourself or an author you already follow is a silent no-op either way.
func (h *ProfileHandler) Follow(c *gin.Context) {
	author, ok := h.authorByUsername(c)
	if !ok {
		return
	}

	viewerID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if author.ID != viewerID {
		follow := models.Follow{UserID: viewerID, AuthorID: author.ID}
		if err := h.db.Where("user_id = ? AND author_id = ?", viewerID, author.ID).
			FirstOrCreate(&follow).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow user"})
			return
		}
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", author.Username))
}

// Unfollow removes the viewer→author edge. Removing an edge that does not
// exist is a no-op, which keeps the action idempotent under retries.
func (h *ProfileHandler) Unfollow(c *gin.Context) {
	author, ok := h.authorByUsername(c)
	if !ok {
		return
	}

	viewerID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.db.Where("user_id = ? AND author_id = ?", viewerID, author.ID).
		Delete(&models.Follow{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow"})
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", author.Username))
}

func (h *ProfileHandler) authorByUsername(c *gin.Context) (models.User, bool) {
	var author models.User
	if err := h.db.Where("username = ?", c.Param("username")).First(&author).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return author, false
	}
	return author, true
}
