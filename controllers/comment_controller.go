package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ivanhom/blogicum/models"
	"github.com/ivanhom/blogicum/policy"
	"github.com/ivanhom/blogicum/utils"
)

// CommentController handles the comment thread under a post. Every comment
// route bounces back to the post's detail page; threads have no page of
// their own.
type CommentController struct {
	db *gorm.DB
}

func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

type commentRequest struct {
	Text string `json:"text"`
}

// Add appends a comment authored by the actor. A payload that fails to bind
// or sanitizes down to nothing is dropped without an error; the client is
// bounced to the detail page either way.
func (c *CommentController) Add(ctx *gin.Context) {
	postID, ok := c.pathPostID(ctx)
	if !ok {
		return
	}

	var post models.Post
	if err := c.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(ctx)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to load post")
		return
	}

	var req commentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Redirect(ctx, postDetailURL(post.ID))
		return
	}
	text := strings.TrimSpace(utils.Sanitize(req.Text))
	if text == "" {
		utils.Redirect(ctx, postDetailURL(post.ID))
		return
	}

	comment := models.Comment{
		PostID:      post.ID,
		AuthorID:    actorID(ctx),
		Text:        text,
		IsPublished: true,
	}
	if err := c.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&comment).Error
	}); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create comment")
		return
	}

	utils.InvalidateByPrefix(postCachePrefix)
	utils.Redirect(ctx, postDetailURL(post.ID))
}

// Update edits a comment's text. Only the comment's author may; anyone else
// is bounced to the detail page with nothing changed.
func (c *CommentController) Update(ctx *gin.Context) {
	comment, ok := c.loadComment(ctx)
	if !ok {
		return
	}

	if !policy.CanMutate(actorID(ctx), comment.AuthorID) {
		utils.Redirect(ctx, postDetailURL(comment.PostID))
		return
	}

	var req commentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}
	text := strings.TrimSpace(utils.Sanitize(req.Text))
	if text == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "text cannot be empty")
		return
	}

	if err := c.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.Comment{}).Where("id = ?", comment.ID).Update("text", text).Error
	}); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to update comment")
		return
	}

	utils.InvalidateByPrefix(postCachePrefix)
	utils.Redirect(ctx, postDetailURL(comment.PostID))
}

// Delete removes a comment and bounces home.
func (c *CommentController) Delete(ctx *gin.Context) {
	comment, ok := c.loadComment(ctx)
	if !ok {
		return
	}

	if !policy.CanMutate(actorID(ctx), comment.AuthorID) {
		utils.Redirect(ctx, postDetailURL(comment.PostID))
		return
	}

	if err := c.db.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&models.Comment{}, comment.ID).Error
	}); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to delete comment")
		return
	}

	utils.InvalidateByPrefix(postCachePrefix)
	utils.Redirect(ctx, homeURL())
}

func (c *CommentController) pathPostID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.NotFound(ctx)
		return 0, false
	}
	return uint(id), true
}

// loadComment fetches the comment addressed by the path, requiring it to
// belong to the path's post.
func (c *CommentController) loadComment(ctx *gin.Context) (*models.Comment, bool) {
	postID, ok := c.pathPostID(ctx)
	if !ok {
		return nil, false
	}
	commentID, err := strconv.ParseUint(ctx.Param("commentId"), 10, 32)
	if err != nil {
		utils.NotFound(ctx)
		return nil, false
	}

	var comment models.Comment
	err = c.db.Where("id = ? AND post_id = ?", uint(commentID), postID).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(ctx)
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load comment")
		return nil, false
	}
	return &comment, true
}
