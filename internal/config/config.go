package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Redis    RedisConfig
	WhatsApp WhatsAppConfig
	Sheets   SheetsConfig
	Digest   DigestConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// RedisConfig configures the material catalog cache. An empty address disables it.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	BaseURL       string
	APIVersion    string
}

// SheetsConfig configures the digest export spreadsheet.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// DigestConfig holds the stock digest schedule.
type DigestConfig struct {
	CronSchedule      string
	Timezone          string
	Recipient         string
	LowStockThreshold decimal.Decimal
}

// Enabled reports whether the redis cache is configured.
func (c RedisConfig) Enabled() bool { return c.Address != "" }

// Enabled reports whether WhatsApp credentials are configured.
func (c WhatsAppConfig) Enabled() bool { return c.AccessToken != "" }

// Enabled reports whether the sheets export is configured.
func (c SheetsConfig) Enabled() bool { return c.CredentialsPath != "" && c.SpreadsheetID != "" }

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	redisDB, err := getenvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := time.ParseDuration(getenvWithDefault("CATALOG_CACHE_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("CATALOG_CACHE_TTL: %w", err)
	}
	threshold, err := decimal.NewFromString(getenvWithDefault("DIGEST_LOW_STOCK_THRESHOLD", "0"))
	if err != nil {
		return nil, fmt.Errorf("DIGEST_LOW_STOCK_THRESHOLD: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getenvWithDefault("APP_PORT", "8080"),
			Env:            getenvWithDefault("APP_ENV", "production"),
			LogLevel:       getenvWithDefault("LOG_LEVEL", "info"),
			AllowedOrigins: splitList(getenvWithDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "sitestock"),
		},
		Redis: RedisConfig{
			Address:  os.Getenv("REDIS_ADDRESS"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			TTL:      cacheTTL,
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:   os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Digest: DigestConfig{
			CronSchedule:      getenvWithDefault("DIGEST_CRON_SCHEDULE", "0 18 * * *"),
			Timezone:          getenvWithDefault("TIMEZONE", "Asia/Kolkata"),
			Recipient:         os.Getenv("DIGEST_RECIPIENT"),
			LowStockThreshold: threshold,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}

	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must not be empty")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided with WHATSAPP_TOKEN")
		case c.WhatsApp.VerifyToken == "":
			return errors.New("META_VERIFY_TOKEN must be provided with WHATSAPP_TOKEN")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if c.Digest.CronSchedule == "" {
		return errors.New("DIGEST_CRON_SCHEDULE must be provided")
	}

	if _, err := time.LoadLocation(c.Digest.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Digest.Timezone, err)
	}

	if c.Digest.LowStockThreshold.IsNegative() {
		return errors.New("DIGEST_LOW_STOCK_THRESHOLD must not be negative")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
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
