package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ivanhom/blogicum/config"
	"github.com/ivanhom/blogicum/models"
	"github.com/ivanhom/blogicum/utils"
)

// PagesController serves the static pages and the aggregate statistics.
type PagesController struct {
	db *gorm.DB
}

func NewPagesController(db *gorm.DB) *PagesController {
	return &PagesController{db: db}
}

// About serves the project description page.
func (p *PagesController) About(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(config.Get().AboutHTML))
}

// Rules serves the community rules page.
func (p *PagesController) Rules(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(config.Get().RulesHTML))
}

// Stats returns aggregate site statistics. A failing count is a 500, not a
// zero; an all-zero stats page must mean an empty site.
func (p *PagesController) Stats(ctx *gin.Context) {
	var userCount, postCount, commentCount, viewsToday int64

	if err := p.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load stats")
		return
	}
	if err := p.db.Model(&models.Post{}).Count(&postCount).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load stats")
		return
	}
	if err := p.db.Model(&models.Comment{}).Count(&commentCount).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load stats")
		return
	}

	// String date equality avoids timezone and type mismatches on the DATE
	// column.
	today := time.Now().In(time.Local).Format("2006-01-02")
	if err := p.db.Model(&models.PageView{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&viewsToday).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load stats")
		return
	}

	utils.Success(ctx, gin.H{
		"user_count":    userCount,
		"post_count":    postCount,
		"comment_count": commentCount,
		"views_today":   viewsToday,
	})
}

// PostStats returns lifetime views and the comment count for one post.
func (p *PagesController) PostStats(ctx *gin.Context) {
	id := ctx.Param("id")

	var views int64
	if err := p.db.Model(&models.PageView{}).
		Where("post_id = ?", id).
		Select("COALESCE(SUM(count),0)").
		Scan(&views).Error; err != nil {
		views = 0
	}

	var commentCount int64
	if err := p.db.Model(&models.Comment{}).Where("post_id = ?", id).Count(&commentCount).Error; err != nil {
		commentCount = 0
	}

	utils.Success(ctx, gin.H{
		"views":         views,
		"comment_count": commentCount,
	})
}

// AdminSchema describes the curation surface for admin frontends: which
// columns each content model lists, which are editable inline, and what to
// filter and search by.
func (p *PagesController) AdminSchema(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"models": []gin.H{
			{
				"name":          "category",
				"list_display":  []string{"title", "description", "slug", "is_published", "created_at"},
				"list_editable": []string{"is_published"},
				"search_fields": []string{"title"},
				"list_filter":   []string{"is_published"},
				"ordering":      []string{"title"},
			},
			{
				"name":          "location",
				"list_display":  []string{"name", "is_published", "created_at"},
				"list_editable": []string{"is_published"},
				"search_fields": []string{"name"},
				"list_filter":   []string{"is_published"},
				"ordering":      []string{"name"},
			},
			{
				"name":          "post",
				"list_display":  []string{"title", "author", "category", "location", "pub_date", "is_published", "created_at"},
				"list_editable": []string{"is_published"},
				"search_fields": []string{"title"},
				"list_filter":   []string{"is_published", "category", "location"},
				"ordering":      []string{"-pub_date"},
			},
			{
				"name":          "comment",
				"list_display":  []string{"text", "author", "post", "is_published", "created_at"},
				"list_editable": []string{"is_published"},
				"search_fields": []string{"text"},
				"list_filter":   []string{"is_published"},
				"ordering":      []string{"created_at"},
			},
		},
	})
}
