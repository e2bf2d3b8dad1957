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

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	App       AppConfig
	Firebase  FirebaseConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	Upload    UploadConfig
}

type ServerConfig struct {
	Port           string
	TrustedProxies []string
	MaxBodyBytes   int64
}

type DatabaseConfig struct {
	DSN         string
	MaxConns    int
	AutoMigrate bool
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
	FrontendURL string
}

type FirebaseConfig struct {
	CredentialsPath      string
	APIKey               string
	StorageBucket        string
	RequireVerifiedEmail bool
}

type StorageConfig struct {
	Driver        string
	Prefix        string
	PublicBaseURL string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
}

type RateLimitConfig struct {
	Store         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SweepSpec     string
	GlobalMax     int
	GlobalWindow  time.Duration
}

type UploadConfig struct {
	MaxBytes int64
}

// IsProduction reports whether the service runs with production semantics
// (no stack traces in error bodies, no security warnings in the log).
func (a AppConfig) IsProduction() bool {
	return a.Environment == EnvProduction
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "3000"),
			TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),
			MaxBodyBytes:   getEnvAsInt64("MAX_BODY_BYTES", 10<<20),
		},
		Database: DatabaseConfig{
			DSN:         getEnv("DB_DSN", ""),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 10),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", getEnv("NODE_ENV", EnvDevelopment)),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		},
		Firebase: FirebaseConfig{
			CredentialsPath:      getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			APIKey:               getEnv("FIREBASE_API_KEY", ""),
			StorageBucket:        getEnv("FIREBASE_STORAGE_BUCKET", ""),
			RequireVerifiedEmail: getEnvAsBool("AUTH_REQUIRE_EMAIL_VERIFIED", false),
		},
		Storage: StorageConfig{
			Driver:        getEnv("STORAGE_DRIVER", "firebase"),
			Prefix:        getEnv("STORAGE_PREFIX", "projects"),
			PublicBaseURL: getEnv("STORAGE_PUBLIC_BASE_URL", ""),
			S3Bucket:      getEnv("S3_BUCKET", ""),
			S3Region:      getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		},
		RateLimit: RateLimitConfig{
			Store:         getEnv("RATE_LIMIT_STORE", "memory"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			SweepSpec:     getEnv("RATE_LIMIT_SWEEP", "@every 1m"),
			GlobalMax:     getEnvAsInt("RATE_LIMIT_GLOBAL_MAX", 100),
			GlobalWindow:  getEnvAsDuration("RATE_LIMIT_GLOBAL_WINDOW", 15*time.Minute),
		},
		Upload: UploadConfig{
			MaxBytes: getEnvAsInt64("UPLOAD_MAX_BYTES", 5<<20),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}

	switch c.Storage.Driver {
	case "firebase":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	switch c.RateLimit.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown RATE_LIMIT_STORE %q", c.RateLimit.Store)
	}

	if c.RateLimit.GlobalMax <= 0 {
		return fmt.Errorf("RATE_LIMIT_GLOBAL_MAX must be positive")
	}
	if c.RateLimit.GlobalWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_GLOBAL_WINDOW must be positive")
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}

	return nil
}

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
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
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
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
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
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string) []string {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
