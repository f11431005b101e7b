package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Checkout CheckoutConfig
	AMQP     AMQPConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type DatabaseConfig struct {
	URL      string // Full database URL
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	// LockTimeoutMS bounds how long a checkout waits on inventory row locks
	// before failing with a retryable lock timeout.
	LockTimeoutMS int
}

type SessionConfig struct {
	Secret string
}

type CheckoutConfig struct {
	// MaxRetries bounds automatic retries after a lock timeout. Retrying a
	// failed attempt is safe: nothing is committed until the whole checkout
	// succeeds.
	MaxRetries   int
	RetryDelayMS int
}

type AMQPConfig struct {
	URL      string // empty disables the broker; events stay in-process
	Exchange string
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "localhost"),
			Env:  getEnv("ENV", "development"),
		},
		Database: parseDatabaseConfig(),
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
		},
		Checkout: CheckoutConfig{
			MaxRetries:   getEnvAsInt("CHECKOUT_MAX_RETRIES", 3),
			RetryDelayMS: getEnvAsInt("CHECKOUT_RETRY_DELAY_MS", 100),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "bookstore.events"),
		},
	}

	return config, nil
}

func parseDatabaseConfig() DatabaseConfig {
	lockTimeout := getEnvAsInt("DB_LOCK_TIMEOUT_MS", 5000)

	// Check if DATABASE_URL is provided
	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL != "" {
		cfg := parseDatabaseURL(databaseURL)
		cfg.LockTimeoutMS = lockTimeout
		return cfg
	}

	// Fall back to individual environment variables
	return DatabaseConfig{
		Host:          getEnv("DB_HOST", "localhost"),
		Port:          getEnvAsInt("DB_PORT", 5432),
		User:          getEnv("DB_USER", "postgres"),
		Password:      getEnv("DB_PASSWORD", ""),
		DBName:        getEnv("DB_NAME", "bookstore"),
		SSLMode:       getEnv("DB_SSLMODE", "disable"),
		LockTimeoutMS: lockTimeout,
	}
}

func parseDatabaseURL(databaseURL string) DatabaseConfig {
	config := DatabaseConfig{
		URL: databaseURL,
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		// If parsing fails, return the URL as-is
		return config
	}

	config.Host = u.Hostname()
	if u.Port() != "" {
		config.Port, _ = strconv.Atoi(u.Port())
	} else {
		config.Port = 5432 // Default PostgreSQL port
	}

	if u.User != nil {
		config.User = u.User.Username()
		config.Password, _ = u.User.Password()
	}

	// Remove leading slash from path to get database name
	config.DBName = strings.TrimPrefix(u.Path, "/")

	query := u.Query()
	config.SSLMode = query.Get("sslmode")
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config
}

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
