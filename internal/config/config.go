// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	AWS         AWSConfig
	Payment     PaymentConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

// DatabaseConfig selects and parameterizes one storage backend. URI, Path
// and AuthToken are engine specific; PoolSize, TimeoutMS and RetryAttempts
// are passed through to the chosen adapter's connection options.
type DatabaseConfig struct {
	Type          string
	URI           string
	Database      string
	Path          string
	AuthToken     string
	PoolSize      int
	TimeoutMS     int
	RetryAttempts int
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  int // in hours
	RefreshTokenTTL int // in hours
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	CloudFrontURL   string
}

type PaymentConfig struct {
	StripeSecretKey      string
	StripePublishableKey string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	dbConfig, err := databaseConfigFromEnv()
	if err != nil {
		return nil, err
	}

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: dbConfig,
		JWT: JWTConfig{
			SecretKey:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL:  getEnvAsInt("JWT_ACCESS_TTL", 24),   // 24 hours
			RefreshTokenTTL: getEnvAsInt("JWT_REFRESH_TTL", 168), // 7 days
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "farm-commerce-assets"),
			CloudFrontURL:   getEnv("AWS_CLOUDFRONT_URL", ""),
		},
		Payment: PaymentConfig{
			StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
		},
	}

	return config, config.Validate()
}

// databaseConfigFromEnv mirrors the fixed per-backend environment mapping:
// every supported backend has its own connection variables and
// engine-appropriate pool/timeout defaults. A DATABASE_TYPE outside the
// known set is an error, never a silent fallback.
func databaseConfigFromEnv() (DatabaseConfig, error) {
	dbType := strings.ToLower(getEnv("DATABASE_TYPE", "sqlite"))

	switch dbType {
	case "mongodb":
		return DatabaseConfig{
			Type:          "mongodb",
			URI:           getEnv("MONGODB_URI", "mongodb://localhost:27017/farm_ecommerce"),
			Database:      getEnv("MONGODB_DATABASE", "farm_ecommerce"),
			PoolSize:      getEnvAsInt("DB_POOL_SIZE", 50),
			TimeoutMS:     getEnvAsInt("DB_TIMEOUT_MS", 1500),
			RetryAttempts: getEnvAsInt("DB_RETRY_ATTEMPTS", 3),
		}, nil

	case "postgres", "postgresql":
		return DatabaseConfig{
			Type:          "postgres",
			URI:           getEnv("POSTGRES_URL", getEnv("DATABASE_URL", "postgres://postgres@localhost:5432/farm_ecommerce?sslmode=disable")),
			PoolSize:      getEnvAsInt("DB_POOL_SIZE", 20),
			TimeoutMS:     getEnvAsInt("DB_TIMEOUT_MS", 5000),
			RetryAttempts: getEnvAsInt("DB_RETRY_ATTEMPTS", 3),
		}, nil

	case "mysql":
		return DatabaseConfig{
			Type:          "mysql",
			URI:           getEnv("MYSQL_URL", getEnv("DATABASE_URL", "root@tcp(localhost:3306)/farm_ecommerce")),
			PoolSize:      getEnvAsInt("DB_POOL_SIZE", 20),
			TimeoutMS:     getEnvAsInt("DB_TIMEOUT_MS", 5000),
			RetryAttempts: getEnvAsInt("DB_RETRY_ATTEMPTS", 3),
		}, nil

	case "sqlite":
		// Ephemeral hosts get an in-memory database instead of a file.
		path := getEnv("SQLITE_PATH", "./database/farm_ecommerce.db")
		if getEnvAsBool("EPHEMERAL_FILESYSTEM", false) {
			path = ":memory:"
		}
		return DatabaseConfig{
			Type:          "sqlite",
			Path:          path,
			TimeoutMS:     getEnvAsInt("DB_TIMEOUT_MS", 1000),
			RetryAttempts: getEnvAsInt("DB_RETRY_ATTEMPTS", 3),
		}, nil

	case "turso":
		return DatabaseConfig{
			Type:          "turso",
			URI:           getEnv("TURSO_DATABASE_URL", ""),
			AuthToken:     getEnv("TURSO_AUTH_TOKEN", ""),
			TimeoutMS:     getEnvAsInt("DB_TIMEOUT_MS", 3000),
			RetryAttempts: getEnvAsInt("DB_RETRY_ATTEMPTS", 3),
		}, nil
	}

	return DatabaseConfig{}, fmt.Errorf("no configuration for database type: %s", dbType)
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Type == "turso" && c.Database.URI == "" {
		return fmt.Errorf("TURSO_DATABASE_URL is required for the turso backend")
	}

	return nil
}

// Helper functions
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
