package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	TavilyApiKey   string
	LMStudioURL    string
	Model          string
	RequestTimeout time.Duration
	MaxRetries     int
	Temperature    float64
	MaxTokens      int
	Port           string
}

func Load() *Config {
	return &Config{
		TavilyApiKey:   getEnv("TAVILY_API_KEY", ""),
		LMStudioURL:    getEnv("LM_STUDIO_URL", "http://127.0.0.1:1234/v1"),
		Model:          getEnv("LM_STUDIO_MODEL", "google/gemma-3-1b"),
		RequestTimeout: getEnvAsSeconds("REQUEST_TIMEOUT", 180*time.Second),
		MaxRetries:     getEnvAsInt("MAX_RETRIES", 3),
		Temperature:    getEnvAsFloat("TEMPERATURE", 0.7),
		MaxTokens:      getEnvAsInt("MAX_TOKENS", 2000),
		Port:           getEnv("PORT", "8081"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSeconds reads a whole number of seconds from the environment.
func getEnvAsSeconds(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return time.Duration(value) * time.Second
}
