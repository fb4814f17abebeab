// Package controllers implements the HTTP handlers for the publishing API.
package controllers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ivanhom/blogicum/config"
	"github.com/ivanhom/blogicum/middleware"
	"github.com/ivanhom/blogicum/policy"
)

// actorID returns the authenticated user id from the context, or
// policy.AnonymousID when the request carries no valid identity.
func actorID(ctx *gin.Context) uint {
	if v, ok := ctx.Get(middleware.ContextUserIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return policy.AnonymousID
}

func actorUsername(ctx *gin.Context) string {
	if v, ok := ctx.Get(middleware.ContextUsernameKey); ok {
		if name, ok := v.(string); ok {
			return name
		}
	}
	return ""
}

// requestedPage reads the ?page query parameter. Malformed values resolve to
// page 1; out-of-range values are clamped later against the listing size.
func requestedPage(ctx *gin.Context) int {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func pageSize() int {
	return config.Get().PageSize
}

func homeURL() string {
	return "/api/v1/posts"
}

func postDetailURL(postID uint) string {
	return fmt.Sprintf("/api/v1/posts/%d", postID)
}

func profilePostsURL(username string) string {
	return fmt.Sprintf("/api/v1/users/%s/posts", username)
}
