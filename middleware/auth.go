package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ivanhom/blogicum/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID in
	// the Gin context. Handlers read 0 when the request is anonymous.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside the Gin context.
	ContextUsernameKey = "username"
)

// AuthRequired ensures the request is authenticated via JWT.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, errCode, errMsg := claimsFromHeader(ctx)
		if claims == nil {
			utils.Error(ctx, http.StatusUnauthorized, errCode, errMsg)
			ctx.Abort()
			return
		}
		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Next()
	}
}

// OptionalAuth extracts the actor identity when a valid token is present but
// never rejects. Public surfaces need it because authors see their own drafts.
func OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if claims, _, _ := claimsFromHeader(ctx); claims != nil {
			ctx.Set(ContextUserIDKey, claims.UserID)
			ctx.Set(ContextUsernameKey, claims.Username)
		}
		ctx.Next()
	}
}

func claimsFromHeader(ctx *gin.Context) (*utils.Claims, int, string) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return nil, 40101, "authorization header missing"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, 40102, "invalid authorization header format"
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return nil, 40103, "empty bearer token"
	}

	if utils.IsTokenBlacklisted(tokenString) {
		return nil, 40104, "token revoked"
	}

	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		return nil, 40105, "invalid token"
	}
	return claims, 0, ""
}
