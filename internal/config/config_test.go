package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"LINKEDIN_ACCESS_TOKEN", "GEMINI_API_KEY", "HUGGINGFACE_TOKEN",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "DELIVERY_MODE",
		"MAX_CAPTION_LENGTH", "RETENTION_DAYS", "BROWSER_FALLBACK",
		"BROWSER_LOGIN_WAIT_SECONDS", "ARTICLES_PER_TOPIC", "MAX_AI_REQUESTS", "DEBUG",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.DeliveryMode != "linkedin" {
		t.Errorf("DeliveryMode = %q, want linkedin", cfg.DeliveryMode)
	}
	if cfg.MaxCaptionLength != 1300 {
		t.Errorf("MaxCaptionLength = %d, want 1300", cfg.MaxCaptionLength)
	}
	if cfg.RetentionWindow != 7*24*time.Hour {
		t.Errorf("RetentionWindow = %v, want 168h", cfg.RetentionWindow)
	}
	if cfg.ArticlesPerTopic != 5 {
		t.Errorf("ArticlesPerTopic = %d, want 5", cfg.ArticlesPerTopic)
	}
	if cfg.BrowserFallback {
		t.Errorf("browser fallback should default to off")
	}
	if cfg.BrowserLoginWait != 5*time.Minute {
		t.Errorf("BrowserLoginWait = %v, want 5m", cfg.BrowserLoginWait)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DELIVERY_MODE", "telegram")
	t.Setenv("MAX_CAPTION_LENGTH", "2000")
	t.Setenv("RETENTION_DAYS", "14")
	t.Setenv("BROWSER_FALLBACK", "true")
	t.Setenv("BROWSER_LOGIN_WAIT_SECONDS", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.DeliveryMode != "telegram" {
		t.Errorf("DeliveryMode = %q", cfg.DeliveryMode)
	}
	if cfg.MaxCaptionLength != 2000 {
		t.Errorf("MaxCaptionLength = %d", cfg.MaxCaptionLength)
	}
	if cfg.RetentionWindow != 14*24*time.Hour {
		t.Errorf("RetentionWindow = %v", cfg.RetentionWindow)
	}
	if !cfg.BrowserFallback {
		t.Errorf("BROWSER_FALLBACK=true not applied")
	}
	if cfg.BrowserLoginWait != time.Minute {
		t.Errorf("BrowserLoginWait = %v", cfg.BrowserLoginWait)
	}
}

func TestLoad_IgnoresInvalidNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_CAPTION_LENGTH", "not-a-number")
	t.Setenv("RETENTION_DAYS", "-3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.MaxCaptionLength != 1300 {
		t.Errorf("invalid MAX_CAPTION_LENGTH changed the default: %d", cfg.MaxCaptionLength)
	}
	if cfg.RetentionWindow != 7*24*time.Hour {
		t.Errorf("negative RETENTION_DAYS changed the default: %v", cfg.RetentionWindow)
	}
}

func TestValidate_LinkedInNeedsToken(t *testing.T) {
	cfg := &Config{DeliveryMode: "linkedin"}
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error without access token")
	}

	cfg.LinkedInAccessToken = "token"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_TelegramNeedsTokenAndChat(t *testing.T) {
	cfg := &Config{DeliveryMode: "telegram", TelegramToken: "t"}
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error without chat id")
	}

	cfg.TelegramChatID = "123"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_RejectsUnknownMode(t *testing.T) {
	cfg := &Config{DeliveryMode: "carrier-pigeon"}
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error for unknown delivery mode")
	}
}
