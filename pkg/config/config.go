package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const devCookieSecret = "dev_cookie_secret"

// ErrInsecureCookieSecret is returned when production would seal sessions
// with the built-in development secret.
var ErrInsecureCookieSecret = errors.New("COOKIE_SECRET must be set to a non-default value in production")

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Upstream  UpstreamConfig
	Materials MaterialsConfig
	Session   SessionConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Dashboard DashboardConfig
	RateLimit RateLimitConfig
}

// UpstreamConfig points the portal at the PeerConnect REST API.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

// MaterialsConfig tunes the study-materials browser.
type MaterialsConfig struct {
	PageSize      int
	MaxUploadSize int64
}

// SessionConfig controls the sealed session cookies.
type SessionConfig struct {
	Secret string
	Secure bool
	TTL    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DashboardConfig governs the shared trending-discussion cache.
type DashboardConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
	WidgetLimit  int
}

// RateLimitConfig throttles credential submissions per client IP.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that are unsafe for the configured environment.
func (c *Config) Validate() error {
	if c.Env != EnvProduction {
		return nil
	}
	secret := strings.TrimSpace(c.Session.Secret)
	if secret == "" || secret == devCookieSecret {
		return ErrInsecureCookieSecret
	}
	return nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Upstream = UpstreamConfig{
		BaseURL: strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("API_TIMEOUT"), 15*time.Second),
	}

	pageSize := v.GetInt("MATERIALS_PAGE_SIZE")
	if pageSize <= 0 {
		pageSize = 10
	}
	cfg.Materials = MaterialsConfig{
		PageSize:      pageSize,
		MaxUploadSize: parseSize(v.GetString("UPLOAD_MAX_SIZE"), 25*units.MiB),
	}

	cfg.Session = SessionConfig{
		Secret: v.GetString("COOKIE_SECRET"),
		Secure: v.GetBool("COOKIE_SECURE"),
		TTL:    parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheEnabled: v.GetBool("ENABLE_DASHBOARD_CACHE"),
		CacheTTL:     parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 2*time.Minute),
		WidgetLimit:  v.GetInt("DASHBOARD_WIDGET_LIMIT"),
	}

	cfg.RateLimit = RateLimitConfig{
		PerMinute: v.GetInt("LOGIN_RATE_LIMIT"),
		Burst:     v.GetInt("LOGIN_RATE_BURST"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("API_BASE_URL", "https://educonnect-backend-spso.onrender.com/api")
	v.SetDefault("API_TIMEOUT", "15s")

	v.SetDefault("MATERIALS_PAGE_SIZE", 10)
	v.SetDefault("UPLOAD_MAX_SIZE", "25MB")

	v.SetDefault("COOKIE_SECRET", devCookieSecret)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("SESSION_TTL", "24h")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_DASHBOARD_CACHE", false)
	v.SetDefault("DASHBOARD_CACHE_TTL", "2m")
	v.SetDefault("DASHBOARD_WIDGET_LIMIT", 5)

	v.SetDefault("LOGIN_RATE_LIMIT", 10)
	v.SetDefault("LOGIN_RATE_BURST", 5)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

// parseSize accepts human sizes such as "25MB" or "512k".
func parseSize(raw string, fallback int64) int64 {
	if raw == "" {
		return fallback
	}

	n, err := units.RAMInBytes(raw)
	if err != nil || n <= 0 {
		return fallback
	}

	return n
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
