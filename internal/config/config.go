package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
// It is built once at startup and passed by pointer; nothing mutates it afterwards.
type Config struct {
	ServerPort  string
	DatabaseURL string
	FrontendURL string
	JWTSecret   string
	TokenTTL    time.Duration
	BcryptCost  int
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	SwaggerHost string
	LogLevel    string
	Env         string
	ResetDB     bool
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8000"),
		DatabaseURL: getEnv("DATABASE_URL", "user:password@tcp(localhost:3306)/fashion_ec?charset=utf8mb4&parseTime=True&loc=Local"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		JWTSecret:   getEnv("JWT_SECRET", "change-me"),
		TokenTTL:    time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		BcryptCost:  getEnvInt("BCRYPT_COST", 10),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Env:         getEnv("APP_ENV", "development"),
		ResetDB:     os.Getenv("RESET_DB") == "true",
	}
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}
