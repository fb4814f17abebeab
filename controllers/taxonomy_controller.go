package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ivanhom/blogicum/models"
	"github.com/ivanhom/blogicum/policy"
	"github.com/ivanhom/blogicum/utils"
)

// TaxonomyController lists the published categories and locations posts can
// be filed under. Unpublished entries exist only for curators and never
// appear here.
type TaxonomyController struct {
	db *gorm.DB
}

func NewTaxonomyController(db *gorm.DB) *TaxonomyController {
	return &TaxonomyController{db: db}
}

// ListCategories returns all published categories ordered by title.
func (t *TaxonomyController) ListCategories(ctx *gin.Context) {
	const cacheKey = "cache:taxonomy:categories"
	anonymous := actorID(ctx) == policy.AnonymousID
	if anonymous {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
			return
		}
	}

	var categories []models.Category
	err := t.db.Where("is_published = ?", true).Order("title ASC").Find(&categories).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load categories")
		return
	}

	data := gin.H{"items": categories}
	utils.Success(ctx, data)

	if anonymous {
		utils.CacheSetResponse(cacheKey, data, listCacheTTL)
	}
}

// ListLocations returns all published locations ordered by name.
func (t *TaxonomyController) ListLocations(ctx *gin.Context) {
	const cacheKey = "cache:taxonomy:locations"
	anonymous := actorID(ctx) == policy.AnonymousID
	if anonymous {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
			return
		}
	}

	var locations []models.Location
	err := t.db.Where("is_published = ?", true).Order("name ASC").Find(&locations).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load locations")
		return
	}

	data := gin.H{"items": locations}
	utils.Success(ctx, data)

	if anonymous {
		utils.CacheSetResponse(cacheKey, data, listCacheTTL)
	}
}
