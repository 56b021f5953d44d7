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
	JWT       JWTConfig
	SMTP      SMTPConfig
	Payment   PaymentConfig
	Admin     AdminConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Booking   BookingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
	BaseURL     string // public site base URL used in emails
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// SMTPConfig holds email transport configuration
type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Password string
	// Dev mode logs the message instead of sending it
	Mode string // "dev" or "production"
}

// PaymentConfig holds hosted-checkout gateway configuration
type PaymentConfig struct {
	Environment    string // "sandbox" or "production"
	MerchantKey    string
	MerchantSecret string // SECRET - never expose to client
	Currency       string
	ReturnURL      string
	WebhookURL     string
}

// AdminConfig holds the back-office allow-list
type AdminConfig struct {
	AllowedEmails   []string
	NotifyEmail     string // recipient of admin notifications
	BookingCSVLimit int
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	MaxEmailRequests int
	EmailWindow      time.Duration
	MaxIPRequests    int
	IPWindow         time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// BookingConfig holds booking-flow configuration
type BookingConfig struct {
	VerificationTTLHours int
	MagicLinkTTL         time.Duration
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
			BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			AccessTokenExpiry: time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 86400)) * time.Second,
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			From:     getEnv("SMTP_FROM", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			Mode:     getEnv("SMTP_MODE", "dev"),
		},
		Payment: PaymentConfig{
			Environment:    getEnv("PAYMENT_ENVIRONMENT", "sandbox"),
			MerchantKey:    getEnv("PAYMENT_MERCHANT_KEY", ""),
			MerchantSecret: getEnv("PAYMENT_MERCHANT_SECRET", ""),
			Currency:       getEnv("PAYMENT_CURRENCY", "EUR"),
			ReturnURL:      getEnv("PAYMENT_RETURN_URL", ""),
			WebhookURL:     getEnv("PAYMENT_WEBHOOK_URL", ""),
		},
		Admin: AdminConfig{
			AllowedEmails:   getEnvAsSlice("ADMIN_ALLOWED_EMAILS", []string{}),
			NotifyEmail:     getEnv("ADMIN_NOTIFY_EMAIL", ""),
			BookingCSVLimit: getEnvAsInt("ADMIN_CSV_ROW_LIMIT", 10000),
		},
		RateLimit: RateLimitConfig{
			MaxEmailRequests: getEnvAsInt("RATE_LIMIT_EMAIL_REQUESTS", 5),
			EmailWindow:      time.Duration(getEnvAsInt("RATE_LIMIT_EMAIL_WINDOW_MINUTES", 10)) * time.Minute,
			MaxIPRequests:    getEnvAsInt("RATE_LIMIT_IP_REQUESTS", 20),
			IPWindow:         time.Duration(getEnvAsInt("RATE_LIMIT_IP_WINDOW_MINUTES", 60)) * time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Booking: BookingConfig{
			VerificationTTLHours: getEnvAsInt("BOOKING_VERIFICATION_TTL_HOURS", 48),
			MagicLinkTTL:         time.Duration(getEnvAsInt("MAGIC_LINK_TTL_MINUTES", 15)) * time.Minute,
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.SMTP.Mode == "production" {
		if c.SMTP.Host == "" {
			return fmt.Errorf("SMTP_HOST is required in production mode")
		}
		if c.SMTP.From == "" {
			return fmt.Errorf("SMTP_FROM is required in production mode")
		}
		if c.SMTP.Password == "" {
			return fmt.Errorf("SMTP_PASSWORD is required in production mode")
		}
	}

	if c.Payment.Environment != "sandbox" && c.Payment.Environment != "production" {
		return fmt.Errorf("invalid PAYMENT_ENVIRONMENT: %s (must be 'sandbox' or 'production')", c.Payment.Environment)
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
