package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Document store and auth
	StoreBackend      string
	AuthProvider      string
	JWTSecret         string
	FirebaseProjectID string

	// Source images
	S3BucketName string
	AWSRegion    string

	LogLevel          string
	MutationRateLimit int
}

const (
	StoreSQL       = "sql"
	StoreFirestore = "firestore"

	AuthJWT      = "jwt"
	AuthFirebase = "firebase"
)

// secretNames lists the settings that may be provided as Docker secrets.
var secretNames = map[string]string{
	"db_password":    "DB_PASSWORD",
	"jwt_secret":     "JWT_SECRET",
	"redis_password": "REDIS_PASSWORD",
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	switch env {
	case Development, Test:
		// A missing .env is fine; the process environment wins over the file.
		if err := godotenv.Load(envFile()); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	case CI, Production:
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		ServerHost:        getEnv("SERVER_HOST", "0.0.0.0"),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		DBDriver:          getEnv("DB_DRIVER", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getSecret("db_password"),
		DBName:            getEnv("DB_NAME", "larder"),
		DBSSLMode:         getEnv("DB_SSL_MODE", "disable"),
		SQLitePath:        getEnv("SQLITE_PATH", "larder.db"),
		RedisHost:         os.Getenv("REDIS_HOST"),
		RedisPort:         getEnv("REDIS_PORT", "6379"),
		RedisPassword:     getSecret("redis_password"),
		RedisURL:          os.Getenv("REDIS_URL"),
		StoreBackend:      getEnv("STORE_BACKEND", StoreSQL),
		AuthProvider:      getEnv("AUTH_PROVIDER", AuthJWT),
		JWTSecret:         getSecret("jwt_secret"),
		FirebaseProjectID: os.Getenv("FIREBASE_PROJECT_ID"),
		S3BucketName:      os.Getenv("S3_BUCKET_NAME"),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.MutationRateLimit, err = getInt("MUTATION_RATE_LIMIT", 60); err != nil {
		return nil, err
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// RedisEnabled reports whether a Redis server has been configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

func envFile() string {
	if path := os.Getenv("ENV_FILE"); path != "" {
		return path
	}
	return ".env"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ValidationError{Field: key, Message: fmt.Sprintf("%q is not an integer", raw)}
	}
	return v, nil
}

// getSecret prefers a Docker secret over the matching environment variable.
func getSecret(name string) string {
	if v := readSecret(name); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(secretNames[name]))
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
