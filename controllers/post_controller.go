package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ivanhom/blogicum/config"
	"github.com/ivanhom/blogicum/models"
	"github.com/ivanhom/blogicum/policy"
	"github.com/ivanhom/blogicum/utils"
)

// PostController handles post listings, detail pages and the authoring
// lifecycle. Authorization failures on mutations never error; the client is
// bounced to the post's detail page instead.
type PostController struct {
	db *gorm.DB
}

func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

const (
	postCachePrefix = "cache:posts"
	listCacheTTL    = 5 * time.Minute
)

// postRequest is the authoring payload shared by create and edit. The author
// is always the authenticated actor; any author field in the body is ignored.
type postRequest struct {
	Title       string     `json:"title" binding:"required"`
	Text        string     `json:"text" binding:"required"`
	PubDate     *time.Time `json:"pub_date"`
	CategoryID  *uint      `json:"category_id"`
	LocationID  *uint      `json:"location_id"`
	Image       string     `json:"image"`
	IsPublished *bool      `json:"is_published"`
}

// List renders the home page feed: visible posts, newest first, paginated.
func (p *PostController) List(ctx *gin.Context) {
	page := requestedPage(ctx)
	size := pageSize()
	actor := actorID(ctx)

	cacheKey := fmt.Sprintf("%s:home:page=%d:size=%d", postCachePrefix, page, size)
	if actor == policy.AnonymousID {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
			return
		}
	}

	now := time.Now()
	var total int64
	if err := p.db.Model(&models.Post{}).Scopes(models.VisiblePosts(now)).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to count posts")
		return
	}

	page, offset := utils.PageWindow(page, total, size)

	var posts []models.Post
	err := p.db.Scopes(models.VisiblePosts(now), models.RecentFirst).
		Preload("Author").Preload("Category").Preload("Location").
		Offset(offset).Limit(size).
		Find(&posts).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load posts")
		return
	}

	data := gin.H{
		"items":      posts,
		"pagination": utils.NewPagination(page, total, size),
	}
	utils.Success(ctx, data)

	if actor == policy.AnonymousID {
		utils.CacheSetResponse(cacheKey, data, listCacheTTL)
	}
}

// ListByCategory renders all due posts of one published category. An
// unpublished or unknown category is a 404, regardless of the actor.
func (p *PostController) ListByCategory(ctx *gin.Context) {
	slug := ctx.Param("slug")
	page := requestedPage(ctx)
	size := pageSize()
	actor := actorID(ctx)

	cacheKey := fmt.Sprintf("%s:category=%s:page=%d:size=%d", postCachePrefix, slug, page, size)
	if actor == policy.AnonymousID {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
			return
		}
	}

	var category models.Category
	if err := p.db.Where("slug = ? AND is_published = ?", slug, true).First(&category).Error; err != nil {
		utils.NotFound(ctx)
		return
	}

	now := time.Now()
	base := p.db.Model(&models.Post{}).
		Where("posts.category_id = ?", category.ID).
		Scopes(models.DuePosts(now))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to count posts")
		return
	}

	page, offset := utils.PageWindow(page, total, size)

	var posts []models.Post
	err := p.db.Where("posts.category_id = ?", category.ID).
		Scopes(models.DuePosts(now), models.RecentFirst).
		Preload("Author").Preload("Location").
		Offset(offset).Limit(size).
		Find(&posts).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load posts")
		return
	}

	data := gin.H{
		"category":   category,
		"items":      posts,
		"pagination": utils.NewPagination(page, total, size),
	}
	utils.Success(ctx, data)

	if actor == policy.AnonymousID {
		utils.CacheSetResponse(cacheKey, data, listCacheTTL)
	}
}

// Get renders one post with its comment thread, oldest comment first. Posts
// the actor may not see are indistinguishable from missing ones.
func (p *PostController) Get(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.NotFound(ctx)
		return
	}

	var post models.Post
	err = p.db.Preload("Author").Preload("Category").Preload("Location").
		First(&post, uint(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(ctx)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to load post")
		return
	}

	if !policy.CanViewPost(actorID(ctx), &post, time.Now()) {
		utils.NotFound(ctx)
		return
	}

	var comments []models.Comment
	err = p.db.Where("post_id = ?", post.ID).
		Scopes(models.OldestFirst).
		Preload("Author").
		Find(&comments).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to load comments")
		return
	}

	utils.Success(ctx, gin.H{
		"post":     post,
		"comments": comments,
	})
}

// Create stores a new post owned by the actor and bounces to the actor's
// profile feed. Omitted pub_date means publish now; omitted is_published
// means published.
func (p *PostController) Create(ctx *gin.Context) {
	actor := actorID(ctx)

	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	post := models.Post{AuthorID: actor}
	if !p.applyRequest(ctx, &post, &req, true) {
		return
	}

	if err := p.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&post).Error
	}); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to create post")
		return
	}

	utils.InvalidateByPrefix(postCachePrefix)
	utils.Redirect(ctx, profilePostsURL(actorUsername(ctx)))
}

// Update edits a post. Only the owner may; anyone else is bounced to the
// detail page with nothing changed.
func (p *PostController) Update(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}

	if !policy.CanMutate(actorID(ctx), post.AuthorID) {
		utils.Redirect(ctx, postDetailURL(post.ID))
		return
	}

	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	if !p.applyRequest(ctx, post, &req, false) {
		return
	}

	updates := map[string]interface{}{
		"title":        post.Title,
		"text":         post.Text,
		"pub_date":     post.PubDate,
		"category_id":  post.CategoryID,
		"location_id":  post.LocationID,
		"image":        post.Image,
		"is_published": post.IsPublished,
	}
	if err := p.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.Post{}).Where("id = ?", post.ID).Updates(updates).Error
	}); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to update post")
		return
	}

	utils.InvalidateByPrefix(postCachePrefix)
	utils.Redirect(ctx, postDetailURL(post.ID))
}

// ConfirmDelete returns the post about to be deleted so the client can render
// a confirmation step. Reading it never deletes anything.
func (p *PostController) ConfirmDelete(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}

	if !policy.CanMutate(actorID(ctx), post.AuthorID) {
		utils.Redirect(ctx, postDetailURL(post.ID))
		return
	}

	utils.Success(ctx, gin.H{
		"post":    post,
		"confirm": fmt.Sprintf("DELETE %s", postDetailURL(post.ID)),
	})
}

// Delete removes a post and its comment thread, then bounces home.
func (p *PostController) Delete(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}

	if !policy.CanMutate(actorID(ctx), post.AuthorID) {
		utils.Redirect(ctx, postDetailURL(post.ID))
		return
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, post.ID).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50016, "failed to delete post")
		return
	}

	utils.InvalidateByPrefix(postCachePrefix)
	utils.Redirect(ctx, homeURL())
}

// UploadImage stores a post image under a date-based directory with a random
// file name and records the upload for auditing.
func (p *PostController) UploadImage(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "missing file field")
		return
	}

	const maxUploadBytes = 10 << 20
	if file.Size > maxUploadBytes {
		utils.Error(ctx, http.StatusBadRequest, 40031, "file exceeds 10MB limit")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		utils.Error(ctx, http.StatusBadRequest, 40032, "unsupported image type")
		return
	}

	cfg := config.Get()
	subDir := time.Now().Format("2006/01")
	dir := filepath.Join(cfg.UploadDir, subDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to prepare upload directory")
		return
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(dir, name)
	if err := ctx.SaveUploadedFile(file, dst); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to store file")
		return
	}

	url := "/static/uploads/" + subDir + "/" + name
	record := models.Image{
		OwnerID:   actorID(ctx),
		URL:       url,
		FilePath:  dst,
		SizeBytes: file.Size,
	}
	if err := p.db.Create(&record).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to record upload")
		return
	}

	utils.Success(ctx, gin.H{"url": url})
}

// loadPost fetches the path post or renders the appropriate error.
func (p *PostController) loadPost(ctx *gin.Context) (*models.Post, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.NotFound(ctx)
		return nil, false
	}

	var post models.Post
	if err := p.db.First(&post, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(ctx)
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to load post")
		return nil, false
	}
	return &post, true
}

// applyRequest validates and copies the authoring payload onto the post.
// creating controls the is_published default: new posts default to published,
// edits keep the stored flag when the field is omitted.
func (p *PostController) applyRequest(ctx *gin.Context, post *models.Post, req *postRequest, creating bool) bool {
	title := strings.TrimSpace(utils.Sanitize(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return false
	}
	text := strings.TrimSpace(utils.Sanitize(req.Text))
	if text == "" {
		utils.Error(ctx, http.StatusBadRequest, 40022, "text cannot be empty")
		return false
	}

	if req.CategoryID != nil {
		var category models.Category
		if err := p.db.First(&category, *req.CategoryID).Error; err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40023, "unknown category")
			return false
		}
	}
	if req.LocationID != nil {
		var location models.Location
		if err := p.db.First(&location, *req.LocationID).Error; err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40024, "unknown location")
			return false
		}
	}

	post.Title = title
	post.Text = text
	post.CategoryID = req.CategoryID
	post.LocationID = req.LocationID
	post.Image = strings.TrimSpace(req.Image)
	if req.PubDate != nil {
		post.PubDate = *req.PubDate
	}
	if req.IsPublished != nil {
		post.IsPublished = *req.IsPublished
	} else if creating {
		post.IsPublished = true
	}
	return true
}
