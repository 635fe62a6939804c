package config

import (
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	AppPort       string
	JWTSecret     string
	TokenTTLHours int
	SecureCookies bool
	// Database
	DBDriver    string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	// Redis for caching; empty host keeps everything in-process
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// HTTP surface
	RateLimitPerMinute  int
	RegisterCooldownSec int
	AllowedOrigins     []string
	AdminUsernames     []string
	// OAuth providers
	GitHubClientID     string
	GitHubClientSecret string
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectBase  string
	// Maintenance
	PageViewRetentionDays int
}

var (
	cfg    AppConfig
	loaded bool
	mu     sync.RWMutex
)

// envKeys maps config keys onto the environment variables that override them.
var envKeys = map[string]string{
	"app.port":                    "APP_PORT",
	"app.jwt_secret":              "JWT_SECRET",
	"app.token_ttl_hours":         "TOKEN_TTL_HOURS",
	"app.secure_cookies":          "SECURE_COOKIES",
	"app.rate_limit_per_minute":   "RATE_LIMIT_PER_MINUTE",
	"app.allowed_origins":         "CORS_ALLOWED_ORIGINS",
	"app.admin_usernames":         "ADMIN_USERNAMES",
	"app.pageview_retention_days": "PAGEVIEW_RETENTION_DAYS",
	"app.register_cooldown_sec":   "REGISTER_ATTEMPT_COOLDOWN_SEC",
	"database.driver":             "DB_DRIVER",
	"database.uri":                "DATABASE_URI",
	"database.host":               "DB_HOST",
	"database.port":               "DB_PORT",
	"database.user":               "DB_USER",
	"database.password":           "DB_PASSWORD",
	"database.name":               "DB_NAME",
	"database.sslmode":            "DB_SSLMODE",
	"redis.host":                  "REDIS_HOST",
	"redis.port":                  "REDIS_PORT",
	"redis.db":                    "REDIS_DB",
	"redis.password":              "REDIS_PASSWORD",
	"gin.mode":                    "GIN_MODE",
	"gin.log_path":                "GIN_PATH",
	"log.level":                   "LOG_LEVEL",
	"log.path":                    "LOG_PATH",
	"log.max_size_mb":             "LOG_MAX_SIZE_MB",
	"log.max_backups":             "LOG_MAX_BACKUPS",
	"log.max_age_days":            "LOG_MAX_AGE_DAYS",
	"log.compress":                "LOG_COMPRESS",
	"oauth.github_client_id":      "GITHUB_CLIENT_ID",
	"oauth.github_client_secret":  "GITHUB_CLIENT_SECRET",
	"oauth.google_client_id":      "GOOGLE_CLIENT_ID",
	"oauth.google_client_secret":  "GOOGLE_CLIENT_SECRET",
	"oauth.redirect_base":         "OAUTH_REDIRECT_BASE_URL",
}

// ErrMissingJWTSecret is returned when no signing secret was configured.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set in environment variables")

// Load loads the application configuration. It should be called once during boot.
func Load() AppConfig {
	mu.RLock()
	if loaded {
		defer mu.RUnlock()
		return cfg
	}
	mu.RUnlock()

	// .env is optional; real environment variables still win over it
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatalf("invalid config file: %v", err)
		}
	}

	c, err := FromViper(v)
	if err != nil {
		log.Fatal(err)
	}
	Set(c)
	return c
}

// FromViper resolves an AppConfig from v. Precedence: environment -> config file -> defaults.
func FromViper(v *viper.Viper) (AppConfig, error) {
	applyDefaults(v)
	for key, env := range envKeys {
		_ = v.BindEnv(key, env)
	}

	c := AppConfig{
		AppPort:               v.GetString("app.port"),
		JWTSecret:             v.GetString("app.jwt_secret"),
		TokenTTLHours:         v.GetInt("app.token_ttl_hours"),
		SecureCookies:         v.GetBool("app.secure_cookies"),
		RateLimitPerMinute:    v.GetInt("app.rate_limit_per_minute"),
		AllowedOrigins:        readList(v, "app.allowed_origins"),
		AdminUsernames:        readList(v, "app.admin_usernames"),
		PageViewRetentionDays: v.GetInt("app.pageview_retention_days"),
		RegisterCooldownSec:   v.GetInt("app.register_cooldown_sec"),
		DBDriver:              strings.ToLower(v.GetString("database.driver")),
		DatabaseURI:           v.GetString("database.uri"),
		DBHost:                v.GetString("database.host"),
		DBPort:                v.GetString("database.port"),
		DBUser:                v.GetString("database.user"),
		DBPassword:            v.GetString("database.password"),
		DBName:                v.GetString("database.name"),
		DBSSLMode:             v.GetString("database.sslmode"),
		RedisHost:             v.GetString("redis.host"),
		RedisPort:             v.GetInt("redis.port"),
		RedisDB:               v.GetInt("redis.db"),
		RedisPassword:         v.GetString("redis.password"),
		GinMode:               v.GetString("gin.mode"),
		GinPath:               v.GetString("gin.log_path"),
		LogLevel:              v.GetString("log.level"),
		LogPath:               v.GetString("log.path"),
		LogMaxSizeMB:          v.GetInt("log.max_size_mb"),
		LogMaxBackups:         v.GetInt("log.max_backups"),
		LogMaxAgeDays:         v.GetInt("log.max_age_days"),
		LogCompress:           v.GetBool("log.compress"),
		GitHubClientID:        v.GetString("oauth.github_client_id"),
		GitHubClientSecret:    v.GetString("oauth.github_client_secret"),
		GoogleClientID:        v.GetString("oauth.google_client_id"),
		GoogleClientSecret:    v.GetString("oauth.google_client_secret"),
		OAuthRedirectBase:     strings.TrimRight(v.GetString("oauth.redirect_base"), "/"),
	}

	if c.JWTSecret == "" {
		return c, ErrMissingJWTSecret
	}
	return c, nil
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	mu.RLock()
	if loaded {
		defer mu.RUnlock()
		return cfg
	}
	mu.RUnlock()
	return Load()
}

// Set replaces the cached configuration. Used at boot and by tests.
func Set(c AppConfig) {
	mu.Lock()
	cfg = c
	loaded = true
	mu.Unlock()
}

// IsAdminUsername checks whether given username is configured as an admin (case-insensitive).
func (c AppConfig) IsAdminUsername(username string) bool {
	uname := strings.TrimSpace(username)
	if uname == "" {
		return false
	}
	for _, u := range c.AdminUsernames {
		if strings.EqualFold(strings.TrimSpace(u), uname) {
			return true
		}
	}
	return false
}

// applyDefaults sets sane defaults for keys absent from file and environment.
func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.token_ttl_hours", 72)
	v.SetDefault("app.rate_limit_per_minute", 60)
	v.SetDefault("app.allowed_origins", []string{"*"})
	v.SetDefault("app.pageview_retention_days", 90)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.user", "root")
	v.SetDefault("database.name", "blogicum")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("gin.mode", "release")
	v.SetDefault("gin.log_path", "logs/go_gin.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("oauth.redirect_base", "http://localhost:8080")
}

// readList accepts both JSON arrays and comma separated env values.
func readList(v *viper.Viper, key string) []string {
	raw := v.GetStringSlice(key)
	items := []string{}
	for _, entry := range raw {
		for _, item := range strings.Split(entry, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				items = append(items, trimmed)
			}
		}
	}
	return items
}
