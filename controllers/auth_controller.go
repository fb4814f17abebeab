package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/ivanhom/blogicum/config"
	"github.com/ivanhom/blogicum/models"
	"github.com/ivanhom/blogicum/utils"
)

const tokenLifetime = 72 * time.Hour

// AuthController handles registration, login and the OAuth providers.
type AuthController struct {
	db *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register creates a local account with a bcrypt-hashed password and issues
// a JWT right away.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email"`
		Password string `json:"password" binding:"required"`
		Confirm  string `json:"confirm"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if l := len([]rune(req.Username)); l < 2 || l > 30 {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username must be 2-30 characters")
		return
	}
	if !validUsername(req.Username) {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username may contain letters, digits, '-' and '_' only")
		return
	}

	var existing models.User
	if err := a.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40901, "username already exists")
		return
	}

	if req.Password != req.Confirm {
		utils.Error(ctx, http.StatusBadRequest, 40003, "passwords do not match")
		return
	}
	if len(req.Password) < 6 || len(req.Password) > 64 {
		utils.Error(ctx, http.StatusBadRequest, 40003, "password must be 6-64 characters")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  sanitizeUserResponse(user),
	})
}

// Login verifies credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  sanitizeUserResponse(user),
	})
}

// Logout revokes the presented token by blacklisting it until its natural
// expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid authorization header")
		return
	}

	token := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(tokenLifetime)
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt = claims.RegisteredClaims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's own account.
func (a *AuthController) Me(ctx *gin.Context) {
	var user models.User
	if err := a.db.First(&user, actorID(ctx)).Error; err != nil {
		utils.NotFound(ctx)
		return
	}
	utils.Success(ctx, sanitizeUserResponse(user))
}

// OAuthRedirect generates a provider-specific authorization URL with a
// single-use state token.
func (a *AuthController) OAuthRedirect(ctx *gin.Context) {
	provider := ctx.Param("provider")
	cfg, err := a.oauthConfig(provider)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, err.Error())
		return
	}

	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)

	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	utils.Success(ctx, gin.H{"authorization_url": url, "state": state})
}

// OAuthCallback exchanges the authorization code for a user identity and
// issues a JWT.
func (a *AuthController) OAuthCallback(ctx *gin.Context) {
	provider := ctx.Param("provider")
	code := ctx.Query("code")
	state := ctx.Query("state")

	if code == "" || state == "" {
		utils.Error(ctx, http.StatusBadRequest, 40005, "missing code or state")
		return
	}
	if !utils.ConsumeState(state) {
		utils.Error(ctx, http.StatusBadRequest, 40006, "invalid or expired state")
		return
	}

	cfg, err := a.oauthConfig(provider)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, err.Error())
		return
	}

	token, err := cfg.Exchange(context.Background(), code)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40007, "failed to exchange code")
		return
	}

	userInfo, err := fetchOAuthUser(provider, token)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50005, err.Error())
		return
	}

	user, err := a.findOrCreateOAuthUser(provider, userInfo)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to persist user")
		return
	}

	jwtToken, err := utils.GenerateToken(user.ID, user.Username, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{"token": jwtToken, "user": sanitizeUserResponse(*user)})
}

func (a *AuthController) oauthConfig(provider string) (*oauth2.Config, error) {
	cfg := config.Get()
	switch strings.ToLower(provider) {
	case "github":
		if cfg.GitHubClientID == "" || cfg.GitHubClientSecret == "" {
			return nil, fmt.Errorf("github oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  fmt.Sprintf("%s/api/v1/auth/oauth/github/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		}, nil
	case "google":
		if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
			return nil, fmt.Errorf("google oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  fmt.Sprintf("%s/api/v1/auth/oauth/google/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

type oauthUser struct {
	ID        string
	Username  string
	Email     string
	AvatarURL string
}

func fetchOAuthUser(provider string, token *oauth2.Token) (*oauthUser, error) {
	switch strings.ToLower(provider) {
	case "github":
		return fetchGitHubUser(token)
	case "google":
		return fetchGoogleUser(token)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func (a *AuthController) findOrCreateOAuthUser(provider string, data *oauthUser) (*models.User, error) {
	var user models.User
	err := a.db.Where("provider = ? AND provider_id = ?", provider, data.ID).First(&user).Error
	if err == nil {
		updates := map[string]interface{}{
			"email":      strings.TrimSpace(data.Email),
			"avatar_url": data.AvatarURL,
		}
		_ = a.db.Model(&user).Updates(updates)
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		Username:   a.ensureUniqueUsername(data.Username, provider, data.ID),
		Email:      strings.TrimSpace(data.Email),
		Provider:   provider,
		ProviderID: data.ID,
		AvatarURL:  data.AvatarURL,
	}
	if err := a.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func fetchGitHubUser(token *oauth2.Token) (*oauthUser, error) {
	req, _ := http.NewRequest("GET", "https://api.github.com/user", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github user info request failed: %s", resp.Status)
	}

	var payload struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	email, _ := fetchGitHubEmail(token.AccessToken)

	return &oauthUser{
		ID:        fmt.Sprintf("%d", payload.ID),
		Username:  payload.Login,
		Email:     email,
		AvatarURL: payload.AvatarURL,
	}, nil
}

func fetchGitHubEmail(accessToken string) (string, error) {
	req, _ := http.NewRequest("GET", "https://api.github.com/user/emails", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github emails request failed: %s", resp.Status)
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", err
	}

	for _, email := range emails {
		if email.Primary && email.Verified {
			return email.Email, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, nil
	}
	return "", nil
}

func fetchGoogleUser(token *oauth2.Token) (*oauthUser, error) {
	req, _ := http.NewRequest("GET", "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info request failed: %s", resp.Status)
	}

	var payload struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	return &oauthUser{
		ID:        payload.ID,
		Username:  payload.Email,
		Email:     payload.Email,
		AvatarURL: payload.Picture,
	}, nil
}

func validUsername(s string) bool {
	for _, r := range s {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '-' || r == '_' {
			continue
		}
		return false
	}
	return true
}

// sanitizeUsername reduces a provider display name to the local username
// alphabet, dropping everything else.
func sanitizeUsername(input string) string {
	var b strings.Builder
	for _, r := range input {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-', r == '_':
			b.WriteRune(r)
		case r == '@':
			// Email-shaped names keep only the local part.
			return b.String()
		}
	}
	return b.String()
}

// ensureUniqueUsername derives an unused local username from the provider's
// suggestion, suffixing with a counter and finally the provider identity.
func (a *AuthController) ensureUniqueUsername(base, provider, id string) string {
	name := sanitizeUsername(base)
	if name == "" {
		name = provider + "-" + id
	}

	candidate := name
	for i := 1; i <= 20; i++ {
		var existing models.User
		if err := a.db.Where("username = ?", candidate).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", name, i)
	}
	return fmt.Sprintf("%s-%s-%s", name, provider, id)
}

// sanitizeUserResponse is the account payload exposed over the API.
func sanitizeUserResponse(user models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"provider":   user.Provider,
		"avatar_url": user.AvatarURL,
		"bio":        user.Bio,
		"created_at": user.CreatedAt,
	}
}
