package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DatabaseURL   string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	SessionSecret string
	JWTSecret     string
	GinMode       string
	Port          string
	AppEnv        string
	CORSOrigins   []string
	OpenAIAPIKey  string

	// Outbound side effects
	WebhookURL          string
	WebhookPollInterval time.Duration
	SiteURL             string
	EmailFrom           string
	ResendAPIKey        string
	SMTPHost            string
	SMTPPort            string
	SMTPUsername        string
	SMTPPassword        string
	EmailRatePerSecond  float64
}

func Load() *Config {
	// A missing .env file is normal outside local development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("WARN: failed to read .env: %v", err)
	}

	return &Config{
		DBDriver:            getEnv("DB_DRIVER", "mysql"),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "3306"),
		DBUser:              getEnv("DB_USER", "listinguser"),
		DBPassword:          getEnv("DB_PASSWORD", "listingpassword"),
		DBName:              getEnv("DB_NAME", "listing_marketplace"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RedisHost:           getEnv("REDIS_HOST", "localhost"),
		RedisPort:           getEnv("REDIS_PORT", "6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		SessionSecret:       getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		JWTSecret:           getEnv("JWT_SECRET", "default-jwt-secret-change-me"),
		GinMode:             getEnv("GIN_MODE", "debug"),
		Port:                getEnv("PORT", "8080"),
		AppEnv:              getEnv("APP_ENV", "development"),
		CORSOrigins:         splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		WebhookURL:          getEnv("WEBHOOK_URL", ""),
		WebhookPollInterval: getDuration("WEBHOOK_POLL_INTERVAL", 10*time.Second),
		SiteURL:             strings.TrimRight(getEnv("SITE_URL", "http://localhost:3000"), "/"),
		EmailFrom:           getEnv("EMAIL_FROM", "Listings <noreply@example.com>"),
		ResendAPIKey:        getEnv("RESEND_API_KEY", ""),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            getEnv("SMTP_PORT", "587"),
		SMTPUsername:        getEnv("SMTP_USERNAME", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		EmailRatePerSecond:  getFloat("EMAIL_RATE_PER_SECOND", 10),
	}
}

// IsProduction reports whether outbound automation webhooks are enabled.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}

func getFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil || f <= 0 {
		return defaultValue
	}
	return f
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
