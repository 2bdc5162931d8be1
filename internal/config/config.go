package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every runtime setting the platform reads from the
// environment. Values come from the process environment, with .env
// loading handled by the entrypoints.
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SecretKey     string
	TokenLifetime time.Duration

	ServerPort   string
	AllowOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "english_platform"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SecretKey:     getEnv("SECRET_KEY", "change-me-in-production"),
		TokenLifetime: time.Duration(getEnvInt("TOKEN_LIFETIME_MINUTES", 12*60)) * time.Minute,

		ServerPort:   getEnv("SERVER_PORT", "8000"),
		AllowOrigins: getEnv("ALLOW_ORIGINS", "http://localhost:5173"),
	}
}

// DSN builds the PostgreSQL connection string for gorm.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}
