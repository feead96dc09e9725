package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server   ServerConfig
	API      APIConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Orders   OrdersConfig
	CORS     CORSConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
	SecureCookies   bool
}

// APIConfig points at the restaurant, order and payment backend
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AuthConfig struct {
	JWTSecret  string
	OwnerRoles []string
}

type StorageConfig struct {
	Driver        string // memory, sqlite or postgres
	DSN           string
	CartIdleAfter time.Duration
}

type OrdersConfig struct {
	PollInterval  time.Duration
	AbandonAfter  time.Duration
	SweepInterval time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
			SecureCookies:   getEnvAsBool("SECURE_COOKIES", false),
		},
		API: APIConfig{
			BaseURL: getEnv("API_URL", "http://localhost:5000/api"),
			Timeout: getEnvAsDuration("API_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			OwnerRoles: getEnvAsSlice("OWNER_ROLES", []string{"restaurant-owner", "admin"}),
		},
		Storage: StorageConfig{
			Driver:        getEnv("STORAGE_DRIVER", "memory"),
			DSN:           getEnv("STORAGE_DSN", ""),
			CartIdleAfter: getEnvAsDuration("CART_IDLE_AFTER", 30*time.Minute),
		},
		Orders: OrdersConfig{
			PollInterval:  getEnvAsDuration("ORDER_POLL_INTERVAL", 30*time.Second),
			AbandonAfter:  getEnvAsDuration("CHECKOUT_ABANDON_AFTER", 30*time.Minute),
			SweepInterval: getEnvAsDuration("CHECKOUT_SWEEP_INTERVAL", 5*time.Minute),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API_URL: %q", c.API.BaseURL)
	}

	switch c.Storage.Driver {
	case "memory", "sqlite":
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("STORAGE_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid storage driver: %s (must be memory, sqlite, or postgres)", c.Storage.Driver)
	}

	if c.API.Timeout <= 0 || c.Orders.PollInterval <= 0 || c.Orders.SweepInterval <= 0 || c.Orders.AbandonAfter <= 0 || c.Storage.CartIdleAfter <= 0 {
		return fmt.Errorf("timeouts and intervals must be positive")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// Helper functions for reading environment variables

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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}
