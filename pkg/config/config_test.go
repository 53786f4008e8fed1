package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"TAVILY_API_KEY", "LM_STUDIO_URL", "LM_STUDIO_MODEL",
		"REQUEST_TIMEOUT", "MAX_RETRIES", "TEMPERATURE", "MAX_TOKENS", "PORT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.TavilyApiKey != "" {
		t.Errorf("TavilyApiKey = %q, want empty", cfg.TavilyApiKey)
	}
	if cfg.LMStudioURL != "http://127.0.0.1:1234/v1" {
		t.Errorf("LMStudioURL = %q, want default", cfg.LMStudioURL)
	}
	if cfg.Model != "google/gemma-3-1b" {
		t.Errorf("Model = %q, want default", cfg.Model)
	}
	if cfg.RequestTimeout != 180*time.Second {
		t.Errorf("RequestTimeout = %v, want 180s", cfg.RequestTimeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", cfg.Temperature)
	}
	if cfg.MaxTokens != 2000 {
		t.Errorf("MaxTokens = %d, want 2000", cfg.MaxTokens)
	}
	if cfg.Port != "8081" {
		t.Errorf("Port = %q, want 8081", cfg.Port)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "tvly-test")
	t.Setenv("LM_STUDIO_URL", "http://10.0.0.5:1234/v1")
	t.Setenv("LM_STUDIO_MODEL", "qwen/qwen3-4b")
	t.Setenv("REQUEST_TIMEOUT", "60")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("TEMPERATURE", "0.2")
	t.Setenv("MAX_TOKENS", "512")
	t.Setenv("PORT", "9090")

	cfg := Load()

	if cfg.TavilyApiKey != "tvly-test" {
		t.Errorf("TavilyApiKey = %q, want tvly-test", cfg.TavilyApiKey)
	}
	if cfg.LMStudioURL != "http://10.0.0.5:1234/v1" {
		t.Errorf("LMStudioURL = %q", cfg.LMStudioURL)
	}
	if cfg.Model != "qwen/qwen3-4b" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("RequestTimeout = %v, want 60s", cfg.RequestTimeout)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2", cfg.Temperature)
	}
	if cfg.MaxTokens != 512 {
		t.Errorf("MaxTokens = %d, want 512", cfg.MaxTokens)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
}

func TestLoadInvalidNumbers(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(cfg *Config) bool
	}{
		{"bad timeout", "REQUEST_TIMEOUT", "soon", func(c *Config) bool { return c.RequestTimeout == 180*time.Second }},
		{"bad retries", "MAX_RETRIES", "many", func(c *Config) bool { return c.MaxRetries == 3 }},
		{"bad temperature", "TEMPERATURE", "warm", func(c *Config) bool { return c.Temperature == 0.7 }},
		{"bad max tokens", "MAX_TOKENS", "1e4", func(c *Config) bool { return c.MaxTokens == 2000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if cfg := Load(); !tt.check(cfg) {
				t.Errorf("Load() did not fall back to default for %s=%q", tt.key, tt.value)
			}
		})
	}
}
