package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds configuration values. Secrets have no in-code defaults and
// must come from the config file or the environment.
type AppConfig struct {
	AppPort   string
	JWTSecret string
	GinMode   string
	GinPath   string

	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	CacheDisabled bool

	GitHubClientID     string
	GitHubClientSecret string
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectBase  string

	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	RateLimitPerMinute int
	PageSize           int
	UploadDir          string
	AllowedOrigins     []string

	AboutHTML string
	RulesHTML string
}

var (
	cfg    AppConfig
	loaded bool
)

// Load reads the application configuration once during boot.
// Precedence: config/config.json -> defaults -> environment overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// loadJSONConfig reads the JSON file into out if present. Returns an error
// only for invalid JSON; a missing file is ignored.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var raw map[string]map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(section, key string) string {
		if m, ok := raw[section]; ok {
			if s, ok := m[key].(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(section, key string) int {
		if m, ok := raw[section]; ok {
			if f, ok := m[key].(float64); ok {
				return int(f)
			}
		}
		return 0
	}
	getBool := func(section, key string) bool {
		if m, ok := raw[section]; ok {
			if b, ok := m[key].(bool); ok {
				return b
			}
		}
		return false
	}
	getStringSlice := func(section, key string) []string {
		if m, ok := raw[section]; ok {
			if arr, ok := m[key].([]any); ok {
				res := make([]string, 0, len(arr))
				for _, it := range arr {
					if s, ok := it.(string); ok {
						res = append(res, s)
					}
				}
				return res
			}
		}
		return nil
	}

	out.AppPort = getString("app", "AppPort")
	out.JWTSecret = getString("app", "JWTSecret")
	out.GinMode = getString("app", "GinMode")
	out.GinPath = getString("app", "GinPath")
	if v := getInt("app", "RateLimitPerMinute"); v != 0 {
		out.RateLimitPerMinute = v
	}
	if v := getInt("app", "PageSize"); v != 0 {
		out.PageSize = v
	}
	out.UploadDir = getString("app", "UploadDir")
	if list := getStringSlice("app", "AllowedOrigins"); len(list) > 0 {
		out.AllowedOrigins = list
	}

	out.DatabaseURI = getString("database", "DatabaseURI")
	out.DBHost = getString("database", "DBHost")
	out.DBPort = getString("database", "DBPort")
	out.DBUser = getString("database", "DBUser")
	out.DBPassword = getString("database", "DBPassword")
	out.DBName = getString("database", "DBName")

	out.RedisHost = getString("redis", "RedisHost")
	if v := getInt("redis", "RedisPort"); v != 0 {
		out.RedisPort = v
	}
	if v := getInt("redis", "RedisDB"); v != 0 {
		out.RedisDB = v
	}
	out.RedisPassword = getString("redis", "RedisPassword")
	out.CacheDisabled = getBool("redis", "CacheDisabled")

	out.GitHubClientID = getString("oauth", "GitHubClientID")
	out.GitHubClientSecret = getString("oauth", "GitHubClientSecret")
	out.GoogleClientID = getString("oauth", "GoogleClientID")
	out.GoogleClientSecret = getString("oauth", "GoogleClientSecret")
	out.OAuthRedirectBase = getString("oauth", "OAuthRedirectBase")

	out.LogLevel = getString("log", "Level")
	out.LogPath = getString("log", "Path")
	if v := getInt("log", "MaxSizeMB"); v != 0 {
		out.LogMaxSizeMB = v
	}
	if v := getInt("log", "MaxBackups"); v != 0 {
		out.LogMaxBackups = v
	}
	if v := getInt("log", "MaxAgeDays"); v != 0 {
		out.LogMaxAgeDays = v
	}
	out.LogCompress = getBool("log", "Compress")

	out.AboutHTML = getString("pages", "AboutHTML")
	out.RulesHTML = getString("pages", "RulesHTML")

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "blogicum"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.OAuthRedirectBase == "" {
		c.OAuthRedirectBase = "http://localhost:8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if c.PageSize == 0 {
		c.PageSize = 10
	}
	if c.UploadDir == "" {
		c.UploadDir = filepath.Join("static", "uploads")
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.AboutHTML == "" {
		c.AboutHTML = "<p>Blogicum is a small publishing platform for posts tied to places and topics.</p>"
	}
	if c.RulesHTML == "" {
		c.RulesHTML = "<p>Be kind. Publish only content you have the rights to.</p>"
	}
}

// applyEnvOverrides maps known environment variables onto config values.
func applyEnvOverrides(c *AppConfig) {
	setString := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v := os.Getenv(key); v != "" {
				*dst = v
				return
			}
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = mustParseInt(v)
		}
	}
	setBool := func(dst *bool, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v == "true"
		}
	}

	setString(&c.AppPort, "APP_PORT")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.GinMode, "GIN_MODE")
	setString(&c.GinPath, "GIN_PATH", "GIN_LOG_PATH")

	setString(&c.DatabaseURI, "DATABASE_URI")
	setString(&c.DBHost, "DB_HOST")
	setString(&c.DBPort, "DB_PORT")
	setString(&c.DBUser, "DB_USER")
	setString(&c.DBPassword, "DB_PASSWORD")
	setString(&c.DBName, "DB_NAME")

	setString(&c.RedisHost, "REDIS_HOST")
	setInt(&c.RedisPort, "REDIS_PORT")
	setInt(&c.RedisDB, "REDIS_DB")
	setString(&c.RedisPassword, "REDIS_PASSWORD")
	setBool(&c.CacheDisabled, "CACHE_DISABLED")

	setString(&c.GitHubClientID, "GITHUB_CLIENT_ID")
	setString(&c.GitHubClientSecret, "GITHUB_CLIENT_SECRET")
	setString(&c.GoogleClientID, "GOOGLE_CLIENT_ID")
	setString(&c.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&c.OAuthRedirectBase, "OAUTH_REDIRECT_BASE_URL")

	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogPath, "LOG_PATH")
	setInt(&c.LogMaxSizeMB, "LOG_MAX_SIZE_MB")
	setInt(&c.LogMaxBackups, "LOG_MAX_BACKUPS")
	setInt(&c.LogMaxAgeDays, "LOG_MAX_AGE_DAYS")
	setBool(&c.LogCompress, "LOG_COMPRESS")

	setInt(&c.RateLimitPerMinute, "RATE_LIMIT_PER_MINUTE")
	setInt(&c.PageSize, "PAGE_SIZE")
	setString(&c.UploadDir, "UPLOAD_DIR")
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
