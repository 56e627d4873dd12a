package config

import (
	"errors"  // Validation errors
	"fmt"     // DSN formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For trimming and splitting values
	"time"    // For server timeouts

	"github.com/joho/godotenv" // For loading .env files
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Config holds the application configuration
type Config struct {
	AppPort            string        // Application port
	DBDriver           string        // Database driver: postgres, mysql or sqlite
	DBUser             string        // Database user
	DBPassword         string        // Database password
	DBHost             string        // Database host
	DBPort             string        // Database port
	DBName             string        // Database name (file path for sqlite)
	JWTSecret          string        // HMAC secret for access tokens
	RedisAddr          string        // Redis server address, empty selects the in-memory blacklist
	RedisPass          string        // Redis password
	RedisDB            int           // Redis database number
	AdminLogin         string        // Bootstrap admin username
	AdminPassword      string        // Bootstrap admin password
	IsProd             bool          // Is production environment
	LogLevel           string        // logrus level name
	CORSOrigins        []string      // Allowed CORS origins
	LoginRateLimitRPM  int           // Login attempts per minute per client IP, 0 disables
	ServerReadTimeout  time.Duration // http.Server read timeout
	ServerWriteTimeout time.Duration // http.Server write timeout
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present

	cfg := &Config{
		AppPort:            getEnv("APP_PORT", "8080"),
		DBDriver:           strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DBUser:             os.Getenv("DB_USER"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             os.Getenv("DB_PORT"),
		DBName:             getEnv("DB_NAME", "accounts"),
		JWTSecret:          strings.TrimSpace(os.Getenv("JWT_SECRET")),
		RedisAddr:          strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPass:          os.Getenv("REDIS_PASS"),
		RedisDB:            getInt("REDIS_DB", 0),
		AdminLogin:         strings.TrimSpace(os.Getenv("APP_ADMIN")),
		AdminPassword:      os.Getenv("APP_PASSWORD"),
		IsProd:             os.Getenv("IS_PROD") == "true",
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "*")),
		LoginRateLimitRPM:  getInt("LOGIN_RATE_LIMIT_RPM", 20),
		ServerReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.AppPort == "" {
		return errors.New("APP_PORT cannot be empty")
	}
	switch c.DBDriver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if (c.AdminLogin == "") != (c.AdminPassword == "") {
		return errors.New("APP_ADMIN and APP_PASSWORD must be set together")
	}
	if c.LoginRateLimitRPM < 0 {
		return errors.New("LOGIN_RATE_LIMIT_RPM cannot be negative")
	}
	return nil
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverMySQL:
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true"
	case DriverSQLite:
		return c.DBName
	default:
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, port)
	}
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return v
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
