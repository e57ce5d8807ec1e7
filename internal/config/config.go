package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server настройки
	Port string
	Host string
	Env  string

	// Хранилище: "mongo" или "memory"
	Storage string

	// MongoDB настройки
	MongoURI     string
	DatabaseName string
	MongoTimeout int

	// JWT настройки
	JWTSecret     string
	JWTExpiration int

	// Обход авторизации для локальной разработки
	BypassAuth  bool
	DevUserID   string
	DevUserRole string

	// Redis настройки (лимит на создание проблем)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	AllowedOrigins []string

	// Логирование
	LogLevel  string
	LogFormat string

	// Повторы записи при конфликте версий
	MaxWriteRetries   int
	StrictTransitions bool
}

func Load() *Config {
	// Загружаем переменные из .env файла
	if err := godotenv.Load(); err != nil {
		log.Printf("Не удалось загрузить .env файл: %v", err)
	}

	return FromEnv()
}

// FromEnv собирает конфигурацию только из переменных окружения.
func FromEnv() *Config {
	return &Config{
		Port:              getEnv("PORT", "5000"),
		Host:              getEnv("HOST", "0.0.0.0"),
		Env:               getEnv("ENV", "development"),
		Storage:           getEnv("STORAGE", "mongo"),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName:      getEnv("DATABASE_NAME", "fix_my_city"),
		MongoTimeout:      getEnvAsInt("MONGO_TIMEOUT", 10),
		JWTSecret:         getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiration:     getEnvAsInt("JWT_EXPIRATION", 24), // часы
		BypassAuth:        getEnvAsBool("BYPASS_AUTH", false),
		DevUserID:         getEnv("DEV_USER_ID", "dev-test-uid"),
		DevUserRole:       getEnv("DEV_USER_ROLE", "admin"),
		RedisAddr:         getEnv("REDIS_ADDRESS", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		RateLimitEnabled:  getEnvAsBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 20),
		RateLimitWindow:   getEnvAsDuration("RATE_LIMIT_WINDOW", 24*time.Hour),
		AllowedOrigins:    getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", ""),
		MaxWriteRetries:   getEnvAsInt("MAX_WRITE_RETRIES", 10),
		StrictTransitions: getEnvAsBool("STRICT_TRANSITIONS", false),
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// AuthBypassed - обход работает только в development, даже если флаг выставлен.
func (c *Config) AuthBypassed() bool {
	return c.IsDevelopment() && c.BypassAuth
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
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
