package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ivanhom/blogicum/models"
	"github.com/ivanhom/blogicum/policy"
	"github.com/ivanhom/blogicum/utils"
)

// ProfileController serves public author pages and profile editing.
type ProfileController struct {
	db *gorm.DB
}

func NewProfileController(db *gorm.DB) *ProfileController {
	return &ProfileController{db: db}
}

const profileCachePrefix = "cache:profile"

// Get returns an author's public profile.
func (p *ProfileController) Get(ctx *gin.Context) {
	username := ctx.Param("username")
	actor := actorID(ctx)

	cacheKey := fmt.Sprintf("%s:%s", profileCachePrefix, username)
	if actor == policy.AnonymousID {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
			return
		}
	}

	user, ok := p.loadUser(ctx, username)
	if !ok {
		return
	}

	data := sanitizeUserResponse(*user)
	utils.Success(ctx, data)

	if actor == policy.AnonymousID {
		utils.CacheSetResponse(cacheKey, data, listCacheTTL)
	}
}

// ListPosts renders an author's feed. The owner sees every post they wrote,
// drafts and scheduled ones included; everyone else sees only visible posts.
func (p *ProfileController) ListPosts(ctx *gin.Context) {
	username := ctx.Param("username")
	user, ok := p.loadUser(ctx, username)
	if !ok {
		return
	}

	page := requestedPage(ctx)
	size := pageSize()
	owner := policy.CanMutate(actorID(ctx), user.ID)
	now := time.Now()

	countQuery := p.db.Model(&models.Post{}).Where("posts.author_id = ?", user.ID)
	if !owner {
		countQuery = countQuery.Scopes(models.VisiblePosts(now))
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to count posts")
		return
	}

	page, offset := utils.PageWindow(page, total, size)

	listQuery := p.db.Where("posts.author_id = ?", user.ID)
	if !owner {
		listQuery = listQuery.Scopes(models.VisiblePosts(now))
	}

	var posts []models.Post
	err := listQuery.Scopes(models.RecentFirst).
		Preload("Author").Preload("Category").Preload("Location").
		Offset(offset).Limit(size).
		Find(&posts).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load posts")
		return
	}

	utils.Success(ctx, gin.H{
		"profile":    sanitizeUserResponse(*user),
		"items":      posts,
		"pagination": utils.NewPagination(page, total, size),
	})
}

// Update edits the actor's own profile. Editing someone else's profile is
// not an error; the client is bounced to the home feed.
func (p *ProfileController) Update(ctx *gin.Context) {
	username := ctx.Param("username")
	user, ok := p.loadUser(ctx, username)
	if !ok {
		return
	}

	if !policy.CanMutate(actorID(ctx), user.ID) {
		utils.Redirect(ctx, homeURL())
		return
	}

	type request struct {
		Email     *string `json:"email"`
		Bio       *string `json:"bio"`
		AvatarURL *string `json:"avatar_url"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	updates := map[string]interface{}{}
	if req.Email != nil {
		updates["email"] = strings.TrimSpace(*req.Email)
	}
	if req.Bio != nil {
		updates["bio"] = strings.TrimSpace(utils.Sanitize(*req.Bio))
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = strings.TrimSpace(*req.AvatarURL)
	}

	if len(updates) > 0 {
		if err := p.db.Transaction(func(tx *gorm.DB) error {
			return tx.Model(user).Updates(updates).Error
		}); err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to update profile")
			return
		}
		utils.InvalidateByPrefix(profileCachePrefix)
	}

	utils.Success(ctx, sanitizeUserResponse(*user))
}

func (p *ProfileController) loadUser(ctx *gin.Context, username string) (*models.User, bool) {
	var user models.User
	if err := p.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(ctx)
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to load user")
		return nil, false
	}
	return &user, true
}
