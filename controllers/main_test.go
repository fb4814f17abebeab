package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ivanhom/blogicum/middleware"
	"github.com/ivanhom/blogicum/models"
	"github.com/ivanhom/blogicum/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "unit-test-secret")
	os.Setenv("CACHE_DISABLED", "true")
	os.Setenv("PAGE_SIZE", "5")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Location{},
		&models.Post{},
		&models.Comment{},
		&models.Image{},
		&models.PageView{},
	))
	return db
}

// newTestRouter builds the API surface the tests exercise, without the
// logging, CORS and view-counting middlewares of the production router.
func newTestRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()

	authController := NewAuthController(db)
	postController := NewPostController(db)
	commentController := NewCommentController(db)
	profileController := NewProfileController(db)
	taxonomyController := NewTaxonomyController(db)
	pagesController := NewPagesController(db)

	api := r.Group("/api/v1")

	api.POST("/auth/register", authController.Register)
	api.POST("/auth/login", authController.Login)
	api.POST("/auth/logout", middleware.AuthRequired(), authController.Logout)
	api.GET("/auth/me", middleware.AuthRequired(), authController.Me)

	api.GET("/posts", middleware.OptionalAuth(), postController.List)
	api.GET("/posts/:id", middleware.OptionalAuth(), postController.Get)
	api.GET("/posts/:id/stats", pagesController.PostStats)
	api.GET("/categories", taxonomyController.ListCategories)
	api.GET("/categories/:slug/posts", middleware.OptionalAuth(), postController.ListByCategory)
	api.GET("/locations", taxonomyController.ListLocations)
	api.GET("/users/:username", middleware.OptionalAuth(), profileController.Get)
	api.GET("/users/:username/posts", middleware.OptionalAuth(), profileController.ListPosts)
	api.GET("/stats", pagesController.Stats)
	api.GET("/pages/about", pagesController.About)
	api.GET("/pages/rules", pagesController.Rules)
	api.GET("/admin/schema", pagesController.AdminSchema)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())
	protected.POST("/posts", postController.Create)
	protected.PUT("/posts/:id", postController.Update)
	protected.GET("/posts/:id/delete", postController.ConfirmDelete)
	protected.DELETE("/posts/:id", postController.Delete)
	protected.POST("/posts/:id/comments", commentController.Add)
	protected.PUT("/posts/:id/comments/:commentId", commentController.Update)
	protected.DELETE("/posts/:id/comments/:commentId", commentController.Delete)
	protected.PATCH("/users/:username", profileController.Update)

	r.NoRoute(func(ctx *gin.Context) {
		utils.NotFound(ctx)
	})

	return r
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	user := models.User{Username: username, Email: username + "@example.com", PasswordHash: hash}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func bearerToken(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Username, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(r *gin.Engine, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doGet(r *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeData unpacks the data field of the standard response envelope.
func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Code    int                    `json:"code"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}
