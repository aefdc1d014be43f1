package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all environment-driven settings, loaded once at startup.
type Config struct {
	MongoURI     string
	DBName       string
	GeminiAPIKey string
	LLMModel     string
	AdminAPIKey  string
	Port         string

	// Optional email alerts for low-rating feedback
	ResendAPIKey string
	FromEmail    string
	AlertEmail   string

	// Per-IP rate limit on the public submit endpoint
	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() Config {
	// Load .env (ignore error in production — env vars set directly)
	_ = godotenv.Load()

	rps := getEnvAsFloat("RATE_LIMIT_RPS", 2)

	return Config{
		MongoURI:     getEnv("MONGODB_URI", ""),
		DBName:       getEnv("DB_NAME", "feedback_db"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		LLMModel:     getEnv("LLM_MODEL", "gemini-1.5-flash"),
		AdminAPIKey:  getEnv("ADMIN_API_KEY", ""),
		Port:         getEnv("PORT", "8080"),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		FromEmail:    getEnv("FROM_EMAIL", ""),
		AlertEmail:   getEnv("ALERT_EMAIL", ""),

		RateLimitRPS:   rps,
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", int(rps)*2),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}
