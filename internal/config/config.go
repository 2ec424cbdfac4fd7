package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Payment   PaymentConfig
	Mail      MailConfig
	RateLimit RateLimitConfig
	Admin     AdminConfig
	CORS      CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
	BaseURL     string // public base URL, used for payment callback links
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// PaymentConfig holds Paystack gateway configuration
type PaymentConfig struct {
	BaseURL     string
	SecretKey   string // SECRET - server-side only, never exposed to the client
	Currency    string
	CallbackURL string // URL the payer is redirected back to after checkout
}

// MailConfig holds the hosted email relay configuration
type MailConfig struct {
	Mode      string // "dev" logs instead of sending
	APIURL    string
	APIKey    string
	FromEmail string
	ToEmail   string // contact-form notification recipient
}

// RateLimitConfig holds contact-form rate limiting configuration
type RateLimitConfig struct {
	MaxRequests   int
	WindowMinutes int
}

// AdminConfig holds admin dashboard authentication configuration
type AdminConfig struct {
	Email        string
	PasswordHash string // bcrypt hash
	JWTSecret    string
	TokenExpiry  time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Payment: PaymentConfig{
			BaseURL:     getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			SecretKey:   getEnv("PAYSTACK_SECRET_KEY", ""),
			Currency:    getEnv("PAYSTACK_CURRENCY", "NGN"),
			CallbackURL: getEnv("PAYSTACK_CALLBACK_URL", ""),
		},
		Mail: MailConfig{
			Mode:      getEnv("MAIL_MODE", "dev"),
			APIURL:    getEnv("MAIL_API_URL", "https://api.resend.com/emails"),
			APIKey:    getEnv("MAIL_API_KEY", ""),
			FromEmail: getEnv("MAIL_FROM_EMAIL", "bookings@suitenest.example"),
			ToEmail:   getEnv("MAIL_CONTACT_RECIPIENT", ""),
		},
		RateLimit: RateLimitConfig{
			MaxRequests:   getEnvAsInt("CONTACT_RATE_LIMIT_REQUESTS", 5),
			WindowMinutes: getEnvAsInt("CONTACT_RATE_LIMIT_WINDOW_MINUTES", 15),
		},
		Admin: AdminConfig{
			Email:        getEnv("ADMIN_EMAIL", ""),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			JWTSecret:    getEnv("ADMIN_JWT_SECRET", ""),
			TokenExpiry:  time.Duration(getEnvAsInt("ADMIN_TOKEN_EXPIRY", 3600)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration. Missing payment credentials are
// a fatal configuration error, not something to retry at request time.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Payment.SecretKey == "" {
		return fmt.Errorf("PAYSTACK_SECRET_KEY is required")
	}

	if c.Admin.JWTSecret == "" {
		return fmt.Errorf("ADMIN_JWT_SECRET is required")
	}

	if c.Server.Environment == "production" {
		if c.Admin.Email == "" || c.Admin.PasswordHash == "" {
			return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD_HASH are required in production")
		}
		if c.Mail.Mode != "dev" && c.Mail.APIKey == "" {
			return fmt.Errorf("MAIL_API_KEY is required when MAIL_MODE is not dev")
		}
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
