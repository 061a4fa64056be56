package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config centralizes configuration loaded from the environment.
type Config struct {
	Port               int
	RedisURL           string
	DBDSN              string
	ERP                ERPConfig
	Notify             NotifyConfig
	OrgEmailDomain     string
	CountryCallingCode string
	AllowOrigins       []string
	RateLimitPublic    RateLimitConfig
}

// ERPConfig carries credentials for the employee directory API.
type ERPConfig struct {
	BaseURL   string
	APIKey    string
	APISecret string
}

// NotifyConfig carries credentials for the notification service.
// The subscriber sync is best-effort, so the whole block is optional.
type NotifyConfig struct {
	BaseURL   string
	AppID     string
	APIKey    string
	FCMAuthID string
}

// Enabled reports whether the notification service is configured.
func (n NotifyConfig) Enabled() bool {
	return n.AppID != "" && n.APIKey != ""
}

// RateLimitConfig represents simple throttling limits.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load reads environment variables and applies safe defaults.
// Missing ERP credentials are a hard error: the resolver must fail
// closed rather than degrade silently.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("invalid PORT")
	}
	cfg.Port = port

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	// Optional: enables the sign-in audit log when set.
	cfg.DBDSN = getEnv("DB_DSN", "")

	cfg.ERP = ERPConfig{
		BaseURL:   strings.TrimRight(strings.TrimSpace(getEnv("ERP_BASE_URL", "")), "/"),
		APIKey:    strings.TrimSpace(getEnv("ERP_API_KEY", "")),
		APISecret: strings.TrimSpace(getEnv("ERP_API_SECRET", "")),
	}
	if cfg.ERP.BaseURL == "" {
		return nil, errors.New("ERP_BASE_URL is required")
	}
	if cfg.ERP.APIKey == "" || cfg.ERP.APISecret == "" {
		return nil, errors.New("ERP_API_KEY and ERP_API_SECRET are required")
	}

	cfg.Notify = NotifyConfig{
		BaseURL:   strings.TrimRight(strings.TrimSpace(getEnv("NOTIFY_BASE_URL", "")), "/"),
		AppID:     strings.TrimSpace(getEnv("NOTIFY_APP_ID", "")),
		APIKey:    strings.TrimSpace(getEnv("NOTIFY_API_KEY", "")),
		FCMAuthID: strings.TrimSpace(getEnv("NOTIFY_FCM_AUTH_ID", "")),
	}

	cfg.OrgEmailDomain = strings.TrimSpace(getEnv("ORG_EMAIL_DOMAIN", "org.com"))
	cfg.CountryCallingCode = strings.TrimSpace(getEnv("COUNTRY_CALLING_CODE", "91"))

	allowOrigins := strings.Split(getEnv("ALLOW_ORIGINS", ""), ",")
	cfg.AllowOrigins = nil
	for _, origin := range allowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}
