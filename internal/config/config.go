package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/gin-recipe-api/internal/database"
	"github.com/franciscosanchezn/gin-recipe-api/internal/storage"
	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(LevelForEnvironment(GetEnvWithDefault("APP_ENV", "development")))
}

// LevelForEnvironment maps APP_ENV to the default log level
func LevelForEnvironment(environment string) logrus.Level {
	switch environment {
	case "development":
		return logrus.DebugLevel
	case "production":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Environment   string `json:"environment"`
	Port          int    `json:"port"`
	Host          string `json:"host"`
	PublicBaseURL string `json:"public_base_url"`

	// Database configuration
	DBDriver    string `json:"db_driver"`
	DatabaseURL string `json:"database_url"`
	DBHost      string `json:"db_host"`
	DBPort      string `json:"db_port"`
	DBName      string `json:"db_name"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBSSLMode   string `json:"db_sslmode"`
	DBPath      string `json:"db_path"`
	DBSeed      bool   `json:"db_seed"`

	// Image storage configuration
	StorageDriver string `json:"storage_driver"`
	StoragePath   string `json:"storage_path"`
	S3Bucket      string `json:"s3_bucket"`
	S3Region      string `json:"s3_region"`
	S3Endpoint    string `json:"s3_endpoint"`
	MaxImageSize  int64  `json:"max_image_size"`

	// Rate limiting, requests per second. Zero disables it.
	RateLimit      float64 `json:"rate_limit"`
	RateLimitBurst int     `json:"rate_limit_burst"`

	// Logging configuration
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Security Configuration
	AuthEnabled bool   `json:"auth_enabled"`
	JWTSecret   string `json:"jwt_secret"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %d, Host: %s, PublicBaseURL: %s, DBDriver: %s, DatabaseURL: %s, "+
		"DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DBPath: %s, StorageDriver: %s, StoragePath: %s, "+
		"S3Bucket: %s, MaxImageSize: %d, RateLimit: %g, AuthEnabled: %t, JWTSecret: [REDACTED], LogLevel: %s, LogFile: %s}",
		c.Environment, c.Port, c.Host, c.PublicBaseURL, c.DBDriver, maskDatabaseURL(c.DatabaseURL),
		c.DBHost, c.DBName, c.DBUser, c.DBPath, c.StorageDriver, c.StoragePath,
		c.S3Bucket, c.MaxImageSize, c.RateLimit, c.AuthEnabled, c.LogLevel, c.LogFile)
}

// Database returns the connection settings for the database package
func (c *Config) Database() database.DatabaseConfig {
	return database.DatabaseConfig{
		Driver:   c.DBDriver,
		URL:      c.DatabaseURL,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSSLMode,
		Path:     c.DBPath,
	}
}

// Storage returns the blob store settings for the storage package
func (c *Config) Storage() storage.Config {
	return storage.Config{
		Driver:   c.StorageDriver,
		Path:     c.StoragePath,
		Bucket:   c.S3Bucket,
		Region:   c.S3Region,
		Endpoint: c.S3Endpoint,
	}
}

// ImagesURLPrefix is the public URL under which stored recipe images are served
func (c *Config) ImagesURLPrefix() string {
	return strings.TrimRight(c.PublicBaseURL, "/") + "/api/v1/recipes/images"
}

// maskDatabaseURL masks password in database URL
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// Returns an error if a numeric or boolean variable cannot be parsed, or if a
// value is inconsistent with the selected drivers
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")

	port, err := parseEnv("APP_PORT", 8080, strconv.Atoi)
	if err != nil {
		return nil, err
	}
	maxImageSize, err := parseEnv("MAX_IMAGE_SIZE", int64(2048*1024), func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
	if err != nil {
		return nil, err
	}
	rateLimit, err := parseEnv("RATE_LIMIT", 0.0, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
	if err != nil {
		return nil, err
	}
	rateLimitBurst, err := parseEnv("RATE_LIMIT_BURST", 0, strconv.Atoi)
	if err != nil {
		return nil, err
	}
	dbSeed, err := parseEnv("DB_SEED", true, strconv.ParseBool)
	if err != nil {
		return nil, err
	}
	authEnabled, err := parseEnv("AUTH_ENABLED", false, strconv.ParseBool)
	if err != nil {
		return nil, err
	}

	host := GetEnvWithDefault("APP_HOST", "localhost")
	config := &Config{
		Environment:    GetEnvWithDefault("APP_ENV", "development"),
		Port:           port,
		Host:           host,
		PublicBaseURL:  GetEnvWithDefault("PUBLIC_BASE_URL", fmt.Sprintf("http://%s:%d", host, port)),
		DBDriver:       strings.ToLower(GetEnvWithDefault("DB_DRIVER", "sqlite")),
		DatabaseURL:    GetEnvWithDefault("DATABASE_URL", ""),
		DBHost:         GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:         GetEnvWithDefault("DB_PORT", "5432"),
		DBName:         GetEnvWithDefault("DB_NAME", "recipes"),
		DBUser:         GetEnvWithDefault("DB_USER", "recipes"),
		DBPassword:     GetEnvWithDefault("DB_PASSWORD", ""),
		DBSSLMode:      GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:         GetEnvWithDefault("DB_PATH", "recipes.sqlite"),
		DBSeed:         dbSeed,
		StorageDriver:  strings.ToLower(GetEnvWithDefault("STORAGE_DRIVER", "local")),
		StoragePath:    GetEnvWithDefault("STORAGE_PATH", "storage"),
		S3Bucket:       GetEnvWithDefault("S3_BUCKET", ""),
		S3Region:       GetEnvWithDefault("S3_REGION", "us-east-1"),
		S3Endpoint:     GetEnvWithDefault("S3_ENDPOINT", ""),
		MaxImageSize:   maxImageSize,
		RateLimit:      rateLimit,
		RateLimitBurst: rateLimitBurst,
		LogLevel:       GetEnvWithDefault("LOG_LEVEL", ""),
		LogFile:        GetEnvWithDefault("LOG_FILE", ""),
		AuthEnabled:    authEnabled,
		JWTSecret:      GetEnvWithDefault("JWT_SECRET", ""),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("APP_PORT must be between 1 and 65535, got %d", c.Port)
	}
	if _, err := url.ParseRequestURI(c.PublicBaseURL); err != nil {
		return fmt.Errorf("invalid PUBLIC_BASE_URL format: %s", c.PublicBaseURL)
	}
	switch c.DBDriver {
	case "sqlite", "postgres", "postgresql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s (supported: sqlite, postgres)", c.DBDriver)
	}
	if c.DatabaseURL != "" {
		if _, err := url.ParseRequestURI(c.DatabaseURL); err != nil {
			return fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
	}
	switch c.StorageDriver {
	case "local", "memory":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER: %s (supported: local, s3, memory)", c.StorageDriver)
	}
	if c.MaxImageSize <= 0 {
		return fmt.Errorf("MAX_IMAGE_SIZE must be positive, got %d", c.MaxImageSize)
	}
	if c.AuthEnabled && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED=true")
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}
	return nil
}

// parseEnv converts an environment variable with parse, returning defaultValue when unset
func parseEnv[T any](key string, defaultValue T, parse func(string) (T, error)) (T, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := parse(value)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return parsed, nil
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling. Unparseable values fall back to defaultValue.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case float64:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return defaultValue
		}
		return any(floatValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
