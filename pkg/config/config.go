package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is loaded once at startup and handed to the routes by pointer.
// Nothing mutates it after Load returns.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   string `env:"PORT" envDefault:"5000"`

	GeminiAPIKey         string `env:"GEMINI_API_KEY"`
	GeminiModel          string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	GeminiAPIVersion     string `env:"GEMINI_API_VERSION" envDefault:"v1"`
	GeminiBaseURL        string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	IsGeminiEnabled      bool   `env:"IS_GEMINI_ENABLED" envDefault:"true"`
	GeminiTimeoutSeconds int    `env:"GEMINI_TIMEOUT_SECONDS" envDefault:"60"`

	FAQPath          string `env:"FAQ_PATH" envDefault:"data/faq.json"`
	WidgetConfigPath string `env:"WIDGET_CONFIG_PATH" envDefault:"data/chatConfig.json"`

	UploadsDir           string `env:"UPLOADS_DIR" envDefault:"uploads"`
	PublicBaseURL        string `env:"PUBLIC_BASE_URL"`
	MaxUploadMB          int64  `env:"MAX_UPLOAD_MB" envDefault:"20"`
	UploadRetentionHours int    `env:"UPLOAD_RETENTION_HOURS" envDefault:"0"`

	CORSOrigins   []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	SessionSecret string   `env:"SESSION_SECRET"`
	DatabaseDSN   string   `env:"DATABASE_DSN"`

	ChatCacheTTLSeconds int `env:"CHAT_CACHE_TTL_SECONDS" envDefault:"600"`
	ChatCacheMaxItems   int `env:"CHAT_CACHE_MAX_ITEMS" envDefault:"500"`
}

// loadDotEnv reads .env unless running in production. A missing file is fine.
func loadDotEnv() error {
	if os.Getenv("APP_ENV") == "production" {
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load reads .env (outside production) and parses the environment.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	return Parse()
}

// Parse builds a Config from the current process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !slices.Contains([]string{"development", "staging", "production"}, c.AppEnv) {
		return fmt.Errorf("APP_ENV must be 'development', 'staging' or 'production', got %q", c.AppEnv)
	}
	if c.IsProduction() && strings.TrimSpace(c.SessionSecret) == "" {
		return errors.New("SESSION_SECRET must be set in production")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")
	return nil
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

func (c *Config) MaxUploadBytes() int64 { return c.MaxUploadMB << 20 }

// GeminiTimeout is zero when no deadline should be applied.
func (c *Config) GeminiTimeout() time.Duration {
	if c.GeminiTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.GeminiTimeoutSeconds) * time.Second
}

func (c *Config) ChatCacheTTL() time.Duration {
	return time.Duration(c.ChatCacheTTLSeconds) * time.Second
}

func (c *Config) UploadRetention() time.Duration {
	return time.Duration(c.UploadRetentionHours) * time.Hour
}

// LogSummary prints the values that matter when debugging a deployment.
func (c *Config) LogSummary() {
	log.Printf("[config] AppEnv=%s Port=%s", c.AppEnv, c.Port)
	log.Printf("[config] IsGeminiEnabled=%v GeminiAPIKeyPresent=%v", c.IsGeminiEnabled, c.GeminiAPIKey != "")
	log.Printf("[config] GeminiModel=%s apiVersion=%s timeout=%ds", c.GeminiModel, c.GeminiAPIVersion, c.GeminiTimeoutSeconds)
	log.Printf("[config] uploads=%s publicBase=%q maxUpload=%dMB retention=%dh index=%v",
		c.UploadsDir, c.PublicBaseURL, c.MaxUploadMB, c.UploadRetentionHours, c.DatabaseDSN != "")
	log.Printf("[config] chatCache ttl=%ds max=%d", c.ChatCacheTTLSeconds, c.ChatCacheMaxItems)
}
