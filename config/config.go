package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	AppName string
	AppEnv  string

	LogLevel string

	// Craigslist scrape settings.
	BaseURL      string
	FetchDelayMS int

	// Gemini (required unless evaluation is skipped).
	GeminiAPIKey   string
	GeminiModel    string
	GeminiBaseURL  string
	EvalIntervalMS int

	// Resend email notifications (optional; enabled when both are set).
	ResendAPIKey  string
	ResendBaseURL string
	NotifyEmail   string

	// Redis seen-listing cache (optional; enabled only when RedisHost is set).
	RedisUser     string
	RedisPassword string
	RedisHost     string
	RedisPort     int
	RedisScheme   string

	// Turso match store (optional; enabled only when the DSN is set).
	TursoDatabaseURL string
	TursoAuthToken   string

	ProductsFile string
}

func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "listing-scout")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("CRAIGSLIST_BASE_URL", "https://sfbay.craigslist.org")
	v.SetDefault("FETCH_DELAY_MS", 1000)

	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")
	v.SetDefault("EVAL_INTERVAL_MS", 2000)

	v.SetDefault("RESEND_BASE_URL", "https://api.resend.com")

	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_SCHEME", "redis")

	v.SetDefault("PRODUCTS_FILE", "products.yaml")

	return v
}

func NewConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppName: v.GetString("APP_NAME"),
		AppEnv:  v.GetString("APP_ENV"),

		LogLevel: v.GetString("LOG_LEVEL"),

		BaseURL:      v.GetString("CRAIGSLIST_BASE_URL"),
		FetchDelayMS: v.GetInt("FETCH_DELAY_MS"),

		GeminiAPIKey:   v.GetString("GEMINI_API_KEY"),
		GeminiModel:    v.GetString("GEMINI_MODEL"),
		GeminiBaseURL:  v.GetString("GEMINI_BASE_URL"),
		EvalIntervalMS: v.GetInt("EVAL_INTERVAL_MS"),

		ResendAPIKey:  v.GetString("RESEND_API_KEY"),
		ResendBaseURL: v.GetString("RESEND_BASE_URL"),
		NotifyEmail:   v.GetString("NOTIFY_EMAIL"),

		RedisUser:     v.GetString("REDIS_USER"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetInt("REDIS_PORT"),
		RedisScheme:   v.GetString("REDIS_SCHEME"),

		TursoDatabaseURL: v.GetString("TURSO_DATABASE_URL"),
		TursoAuthToken:   v.GetString("TURSO_AUTH_TOKEN"),

		ProductsFile: v.GetString("PRODUCTS_FILE"),
	}

	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("CRAIGSLIST_BASE_URL must not be empty")
	}
	if cfg.FetchDelayMS < 0 {
		return nil, fmt.Errorf("invalid FETCH_DELAY_MS %d", cfg.FetchDelayMS)
	}
	if cfg.EvalIntervalMS < 0 {
		return nil, fmt.Errorf("invalid EVAL_INTERVAL_MS %d", cfg.EvalIntervalMS)
	}
	if cfg.RedisPort <= 0 || cfg.RedisPort > 65535 {
		return nil, fmt.Errorf("invalid REDIS_PORT %d", cfg.RedisPort)
	}

	return cfg, nil
}
