package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yatube-dev/yatube/backend/internal/models"
	"github.com/yatube-dev/yatube/backend/internal/pagination"
	"github.com/yatube-dev/yatube/backend/internal/storage"
)

// maxImageSize caps uploaded attachments at 5 MiB.
const maxImageSize = 5 << 20

type PostHandler struct {
	db    *gorm.DB
	store storage.Storage
}

func NewPostHandler(db *gorm.DB, store storage.Storage) *PostHandler {
	return &PostHandler{db: db, store: store}
}

// feedPage runs the shared list query: count, clamp the page, fetch newest
// first. The id tiebreaker keeps ordering stable for posts created within
// the same timestamp tick.
func feedPage(c *gin.Context, query *gorm.DB) (pagination.Page, []models.Post, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return pagination.Page{}, nil, err
	}

	page := pagination.Resolve(c.Query("page"), total)

	var posts []models.Post
	err := query.
		Preload("Author").
		Preload("Group").
		Order("created_at desc, id desc").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&posts).Error
	if err != nil {
		return pagination.Page{}, nil, err
	}

	if posts == nil {
		posts = []models.Post{}
	}
	return page, posts, nil
}

// Index returns the global feed. The route is wrapped in the page cache, so
// within the TTL window this handler is not reached at all.
func (h *PostHandler) Index(c *gin.Context) {
	page, posts, err := feedPage(c, h.db.Model(&models.Post{}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"page":  page,
	})
}

// Detail returns a single post with its comments, oldest first.
func (h *PostHandler) Detail(c *gin.Context) {
	var post models.Post
	if err := h.db.Preload("Author").Preload("Group").First(&post, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var comments []models.Comment
	if err := h.db.Where("post_id = ?", post.ID).
		Preload("Author").
		Order("created_at asc, id asc").
		Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	_, authenticated := extractUserID(c)

	c.JSON(http.StatusOK, gin.H{
		"post":        post,
		"comments":    comments,
		"can_comment": authenticated,
	})
}

// CreateForm describes the create-post form for authenticated clients.
func (h *PostHandler) CreateForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"form": postFormSchema()})
}

// Create validates the submitted form, stores the optional image and creates
// the post, then redirects to the author's profile.
func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var form models.PostForm
	if !bindForm(c, &form) {
		return
	}

	groupID, ok := h.resolveGroup(c, form.Group)
	if !ok {
		return
	}

	image, ok := h.saveImage(c)
	if !ok {
		return
	}

	post := models.Post{
		Text:     form.Text,
		Image:    image,
		AuthorID: userID,
		GroupID:  groupID,
	}

	if err := h.db.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	username := c.GetString("username")
	c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", username))
}

// EditForm returns the edit form for the post's author. Non-authors are
// silently redirected to the post detail page.
func (h *PostHandler) EditForm(c *gin.Context) {
	post, ok := h.ownPost(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post":    post,
		"form":    postFormSchema(),
		"is_edit": true,
	})
}

// Edit applies the submitted form to the author's own post. Non-authors are
// silently redirected without any mutation.
func (h *PostHandler) Edit(c *gin.Context) {
	post, ok := h.ownPost(c)
	if !ok {
		return
	}

	var form models.PostForm
	if !bindForm(c, &form) {
		return
	}

	groupID, ok := h.resolveGroup(c, form.Group)
	if !ok {
		return
	}

	image, ok := h.saveImage(c)
	if !ok {
		return
	}

	post.Text = form.Text
	post.GroupID = groupID
	if image != "" {
		post.Image = image
	}

	if err := h.db.Save(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d/", post.ID))
}

// ownPost resolves the requested post and enforces the author-only rule:
// unknown id is a 404, someone else's post is a silent redirect to its
// detail page.
func (h *PostHandler) ownPost(c *gin.Context) (models.Post, bool) {
	var post models.Post
	if err := h.db.First(&post, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return post, false
	}

	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return post, false
	}

	if post.AuthorID != userID {
		c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d/", post.ID))
		c.Abort()
		return post, false
	}

	return post, true
}

// resolveGroup maps an optional group slug to its id. An unknown slug is a
// validation failure, reported before anything is persisted.
func (h *PostHandler) resolveGroup(c *gin.Context, slug string) (*int, bool) {
	if slug == "" {
		return nil, true
	}

	var group models.Group
	if err := h.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"group": "Unknown group."}})
		return nil, false
	}
	return &group.ID, true
}

// saveImage stores the optional image part and returns its object name.
// Returns ("", true) when no image was submitted.
func (h *PostHandler) saveImage(c *gin.Context) (string, bool) {
	header, err := c.FormFile("image")
	if err != nil {
		return "", true
	}

	if header.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"image": "Image is too large."}})
		return "", false
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"image": "File is not an image."}})
		return "", false
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return "", false
	}
	defer file.Close()

	name := uuid.New().String() + filepath.Ext(header.Filename)
	stored, err := h.store.Save(c.Request.Context(), name, contentType, file, header.Size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return "", false
	}
	return stored, true
}

func postFormSchema() gin.H {
	return gin.H{
		"text":  gin.H{"type": "string", "required": true},
		"group": gin.H{"type": "slug", "required": false},
		"image": gin.H{"type": "file", "required": false, "max_size": maxImageSize},
	}
}
