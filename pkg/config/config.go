package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers understood by the repository bootstrap
const (
	StoreDriverMongo    = "mongo"
	StoreDriverPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Mongo    MongoConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Insights InsightsConfig
	Log      LogConfig
	OTEL     OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// StoreConfig selects the appointment store backend
type StoreConfig struct {
	Driver string
}

// MongoConfig holds the document store connection
type MongoConfig struct {
	URI      string
	Database string
}

// DatabaseConfig holds the PostgreSQL read replica configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration for agenda change events
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	Channel  string
}

// CacheConfig holds the result cache configuration
type CacheConfig struct {
	MaxEntries   int
	TTLClosed    time.Duration
	TTLOpen      time.Duration
	WarmMonths   int
	WarmInterval time.Duration
}

// InsightsConfig holds insight computation settings
type InsightsConfig struct {
	InactiveMonths int
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level       string
	Environment string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real environment wins.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8000),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("ANALYTICS_STORE_DRIVER", StoreDriverMongo)),
		},
		Mongo: MongoConfig{
			URI:      getEnv("ANALYTICS_MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("ANALYTICS_MONGODB_DATABASE", "beaesthetic"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "beaesthetic"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("ANALYTICS_REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Channel:  getEnv("ANALYTICS_REDIS_CHANNEL", "agenda:changes"),
		},
		Cache: CacheConfig{
			MaxEntries:   getEnvAsInt("ANALYTICS_CACHE_MAXSIZE", 512),
			TTLClosed:    getEnvAsDuration("ANALYTICS_CACHE_TTL_CLOSED", 24*time.Hour),
			TTLOpen:      getEnvAsDuration("ANALYTICS_CACHE_TTL_OPEN", 5*time.Minute),
			WarmMonths:   getEnvAsInt("ANALYTICS_CACHE_WARM_MONTHS", 0),
			WarmInterval: getEnvAsDuration("ANALYTICS_CACHE_WARM_INTERVAL", 6*time.Hour),
		},
		Insights: InsightsConfig{
			InactiveMonths: getEnvAsInt("ANALYTICS_INSIGHT_INACTIVE_MONTHS", 3),
		},
		Log: LogConfig{
			Level:       strings.ToLower(getEnv("ANALYTICS_LOG_LEVEL", "info")),
			Environment: getEnv("ANALYTICS_ENVIRONMENT", "development"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "beaesthetic-analytics"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "0.1.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the services cannot run with
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverMongo, StoreDriverPostgres:
	default:
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache max size must be positive, got %d", c.Cache.MaxEntries)
	}
	if c.Cache.TTLClosed <= 0 || c.Cache.TTLOpen <= 0 {
		return fmt.Errorf("cache TTLs must be positive (closed=%s, open=%s)", c.Cache.TTLClosed, c.Cache.TTLOpen)
	}
	if c.Cache.WarmMonths < 0 {
		return fmt.Errorf("cache warm months must not be negative, got %d", c.Cache.WarmMonths)
	}
	if c.Cache.WarmMonths > 0 && c.Cache.WarmInterval <= 0 {
		return fmt.Errorf("cache warm interval must be positive, got %s", c.Cache.WarmInterval)
	}
	if c.Insights.InactiveMonths <= 0 {
		return fmt.Errorf("inactive window must be at least one month, got %d", c.Insights.InactiveMonths)
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s", "24h") or plain seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
