// internal/config/config.go
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

// Config holds all configuration for the storefront
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Backend  BackendConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Google   GoogleConfig
	Pricing  PricingConfig
	Security SecurityConfig
	Email    EmailConfig
	Store    StoreConfig
	Images   ImageConfig
	Logging  LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
	PublicURL   string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// BackendConfig describes the remote REST API the storefront sits in front of
type BackendConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// StorageConfig selects where per-client state blobs are kept
type StorageConfig struct {
	Driver    string // memory, redis, postgres
	KeyPrefix string
	TTL       time.Duration
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// GoogleConfig contains Google Identity Services settings
type GoogleConfig struct {
	ClientID    string
	ScriptURL   string
	RedirectURL string
	LoadTimeout time.Duration
}

// PricingConfig contains the cart summary rules
type PricingConfig struct {
	DiscountThreshold      float64
	DiscountRate           float64
	ShippingFee            float64
	FreeShippingOrderLimit int
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
	CookieDomain       string
	CookieSecure       bool
	ClientCookieMaxAge time.Duration
}

// EmailConfig contains email service configuration
type EmailConfig struct {
	Provider     string // smtp, log
	FromEmail    string
	FromName     string
	ContactInbox string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseTLS   bool
}

// StoreConfig contains shop details printed on receipts and pages
type StoreConfig struct {
	Name     string
	Address  string
	Phone    string
	Email    string
	Website  string
	Currency string
}

// ImageConfig contains product image settings
type ImageConfig struct {
	PlaceholderURL string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Storefront"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
			PublicURL:   getEnv("APP_PUBLIC_URL", "http://localhost:3000"),
		},
		Server: ServerConfig{
			Port:           getEnv("APP_PORT", "3000"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
		},
		Backend: BackendConfig{
			BaseURL:    getEnv("BACKEND_BASE_URL", "http://localhost:8080/api"),
			Timeout:    getEnvAsDuration("BACKEND_TIMEOUT", 15*time.Second),
			MaxRetries: getEnvAsInt("BACKEND_MAX_RETRIES", 3),
		},
		Storage: StorageConfig{
			Driver:    getEnv("STATE_STORE", "memory"),
			KeyPrefix: getEnv("STATE_KEY_PREFIX", "storefront"),
			TTL:       getEnvAsDuration("STATE_TTL", 30*24*time.Hour),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "storefront_db"),
			User:         getEnv("DB_USER", "storefront_user"),
			Password:     getEnv("DB_PASSWORD", "storefront_password"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		Google: GoogleConfig{
			ClientID:    getEnv("GOOGLE_CLIENT_ID", ""),
			ScriptURL:   getEnv("GOOGLE_SCRIPT_URL", "https://accounts.google.com/gsi/client"),
			RedirectURL: getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/redirect"),
			LoadTimeout: getEnvAsDuration("GOOGLE_LOAD_TIMEOUT", 10*time.Second),
		},
		Pricing: PricingConfig{
			DiscountThreshold:      getEnvAsFloat("PRICING_DISCOUNT_THRESHOLD", 500),
			DiscountRate:           getEnvAsFloat("PRICING_DISCOUNT_RATE", 0.10),
			ShippingFee:            getEnvAsFloat("PRICING_SHIPPING_FEE", 99),
			FreeShippingOrderLimit: getEnvAsInt("PRICING_FREE_SHIPPING_ORDER_LIMIT", 5),
		},
		Security: SecurityConfig{
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 300),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
			CookieDomain:       getEnv("COOKIE_DOMAIN", ""),
			CookieSecure:       getEnvAsBool("COOKIE_SECURE", false),
			ClientCookieMaxAge: getEnvAsDuration("CLIENT_COOKIE_MAX_AGE", 30*24*time.Hour),
		},
		Email: EmailConfig{
			Provider:     getEnv("EMAIL_PROVIDER", "log"),
			FromEmail:    getEnv("FROM_EMAIL", "noreply@example.com"),
			FromName:     getEnv("FROM_NAME", "Storefront"),
			ContactInbox: getEnv("CONTACT_INBOX", "support@example.com"),
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			SMTPUseTLS:   getEnvAsBool("SMTP_USE_TLS", false),
		},
		Store: StoreConfig{
			Name:     getEnv("STORE_NAME", "Storefront"),
			Address:  getEnv("STORE_ADDRESS", ""),
			Phone:    getEnv("STORE_PHONE", ""),
			Email:    getEnv("STORE_EMAIL", "support@example.com"),
			Website:  getEnv("STORE_WEBSITE", "http://localhost:3000"),
			Currency: getEnv("STORE_CURRENCY", "INR"),
		},
		Images: ImageConfig{
			PlaceholderURL: getEnv("IMAGE_PLACEHOLDER_URL", "/static/placeholder.png"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "debug"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BACKEND_BASE_URL must be an absolute URL")
	}

	if c.Backend.MaxRetries < 0 {
		return fmt.Errorf("BACKEND_MAX_RETRIES cannot be negative")
	}

	switch c.Storage.Driver {
	case "memory":
	case "redis":
		if c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST is required for the redis state store")
		}
	case "postgres":
		if c.Database.Host == "" || c.Database.Name == "" || c.Database.User == "" {
			return fmt.Errorf("DB_HOST, DB_NAME and DB_USER are required for the postgres state store")
		}
	default:
		return fmt.Errorf("unsupported STATE_STORE: %s", c.Storage.Driver)
	}

	if c.Pricing.DiscountRate < 0 || c.Pricing.DiscountRate > 1 {
		return fmt.Errorf("PRICING_DISCOUNT_RATE must be between 0 and 1")
	}

	// The client cookie rides on credentialed CORS requests, so every
	// allowed origin must be named
	for _, origin := range c.Security.CORSAllowedOrigins {
		if strings.TrimSpace(origin) == "*" {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS cannot contain * because credentials are allowed")
		}
	}

	if c.IsProduction() && c.Google.ClientID == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID is required in production")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
