package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ivanhom/blogicum/config"
	"github.com/ivanhom/blogicum/controllers"
	"github.com/ivanhom/blogicum/middleware"
	"github.com/ivanhom/blogicum/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access log goes to its own rolling file, separate from the app log.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Count post detail reads after each request.
	r.Use(middleware.PostViewRecorder(db))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	postController := controllers.NewPostController(db)
	commentController := controllers.NewCommentController(db)
	profileController := controllers.NewProfileController(db)
	taxonomyController := controllers.NewTaxonomyController(db)
	pagesController := controllers.NewPagesController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Public reads. Optional auth lets authors see their own unpublished
	// and scheduled posts.
	api.GET("/posts", middleware.OptionalAuth(), postController.List)
	api.GET("/posts/:id", middleware.OptionalAuth(), postController.Get)
	api.GET("/posts/:id/stats", pagesController.PostStats)
	api.GET("/categories", taxonomyController.ListCategories)
	api.GET("/categories/:slug/posts", middleware.OptionalAuth(), postController.ListByCategory)
	api.GET("/locations", taxonomyController.ListLocations)
	api.GET("/users/:username", middleware.OptionalAuth(), profileController.Get)
	api.GET("/users/:username/posts", middleware.OptionalAuth(), profileController.ListPosts)
	api.GET("/pages/about", pagesController.About)
	api.GET("/pages/rules", pagesController.Rules)
	api.GET("/admin/schema", pagesController.AdminSchema)
	api.GET("/stats", pagesController.Stats)

	// Authoring surface.
	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.POST("/posts", postController.Create)
	protected.PUT("/posts/:id", postController.Update)
	protected.GET("/posts/:id/delete", postController.ConfirmDelete)
	protected.DELETE("/posts/:id", postController.Delete)
	protected.POST("/posts/:id/comments", commentController.Add)
	protected.PUT("/posts/:id/comments/:commentId", commentController.Update)
	protected.DELETE("/posts/:id/comments/:commentId", commentController.Delete)
	protected.PATCH("/users/:username", profileController.Update)
	protected.POST("/upload", postController.UploadImage)

	r.NoRoute(func(ctx *gin.Context) {
		utils.NotFound(ctx)
	})

	return r
}
