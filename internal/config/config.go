package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// LinkedIn API settings
	LinkedInAccessToken  string
	LinkedInClientID     string
	LinkedInClientSecret string
	LinkedInRedirectURI  string

	// AI settings
	GeminiAPIKey     string
	HuggingFaceToken string
	MaxAIRequests    int // maximum AI requests per run (0 = unlimited)

	// Telegram relay settings
	TelegramToken  string
	TelegramChatID string

	// Delivery settings
	DeliveryMode     string // "linkedin" or "telegram"
	MaxCaptionLength int    // platform character limit, truncation applied before dispatch

	// News settings
	TopicsConfigPath string
	ArticlesPerTopic int
	NewsMaxAge       time.Duration

	// Browser fallback settings
	BrowserFallback  bool          // enable the interactive browser strategy
	BrowserLoginWait time.Duration // how long to wait for a manual login

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	ProfileTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration

	// Storage settings
	UsedArticlesPath string
	RetentionWindow  time.Duration
	FallbackDir      string
	ImagesDir        string
}

func Load() (*Config, error) {
	// .env is optional; CI injects secrets directly
	_ = godotenv.Load()

	cfg := &Config{
		// Default values
		DeliveryMode:     "linkedin",
		MaxCaptionLength: 1300,
		TopicsConfigPath: "configs/topics.yaml",
		ArticlesPerTopic: 5,
		NewsMaxAge:       48 * time.Hour,
		MaxAIRequests:    4,
		BrowserLoginWait: 5 * time.Minute,
		RequestTimeout:   15 * time.Second,
		ProfileTimeout:   10 * time.Second,
		RetryAttempts:    3,
		RetryDelay:       2 * time.Second,
		UsedArticlesPath: "used_articles.json",
		RetentionWindow:  7 * 24 * time.Hour,
		FallbackDir:      "pending_posts",
		ImagesDir:        "generated_images",
	}

	cfg.LinkedInAccessToken = os.Getenv("LINKEDIN_ACCESS_TOKEN")
	cfg.LinkedInClientID = os.Getenv("LINKEDIN_CLIENT_ID")
	cfg.LinkedInClientSecret = os.Getenv("LINKEDIN_CLIENT_SECRET")
	cfg.LinkedInRedirectURI = getEnvOrDefault("LINKEDIN_REDIRECT_URI", "http://localhost:8000/callback")

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.HuggingFaceToken = os.Getenv("HUGGINGFACE_TOKEN")

	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")

	if mode := os.Getenv("DELIVERY_MODE"); mode != "" {
		cfg.DeliveryMode = mode
	}

	cfg.TopicsConfigPath = getEnvOrDefault("TOPICS_CONFIG_PATH", cfg.TopicsConfigPath)
	cfg.UsedArticlesPath = getEnvOrDefault("USED_ARTICLES_PATH", cfg.UsedArticlesPath)
	cfg.FallbackDir = getEnvOrDefault("FALLBACK_DIR", cfg.FallbackDir)
	cfg.ImagesDir = getEnvOrDefault("IMAGES_DIR", cfg.ImagesDir)

	cfg.ArticlesPerTopic = getEnvIntOrDefault("ARTICLES_PER_TOPIC", cfg.ArticlesPerTopic)
	cfg.MaxAIRequests = getEnvIntOrDefault("MAX_AI_REQUESTS", cfg.MaxAIRequests)

	if v := os.Getenv("MAX_CAPTION_LENGTH"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.MaxCaptionLength = val
		}
	}

	if v := os.Getenv("RETENTION_DAYS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RetentionWindow = time.Duration(val) * 24 * time.Hour
		}
	}

	if v := os.Getenv("BROWSER_FALLBACK"); v == "true" {
		cfg.BrowserFallback = true
	}
	if v := os.Getenv("BROWSER_LOGIN_WAIT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.BrowserLoginWait = time.Duration(val) * time.Second
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	if cfg.MaxCaptionLength <= 0 {
		return nil, fmt.Errorf("caption length limit must be positive")
	}

	// Delivery credentials are checked by Validate only for modes that post;
	// generate/prepare runs work without platform access.
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	switch c.DeliveryMode {
	case "linkedin":
		if c.LinkedInAccessToken == "" {
			return fmt.Errorf("LINKEDIN_ACCESS_TOKEN is required for linkedin delivery")
		}
	case "telegram":
		if c.TelegramToken == "" {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN is required for telegram delivery")
		}
		if c.TelegramChatID == "" {
			return fmt.Errorf("TELEGRAM_CHAT_ID is required for telegram delivery")
		}
	default:
		return fmt.Errorf("DELIVERY_MODE must be 'linkedin' or 'telegram'")
	}
	return nil
}
