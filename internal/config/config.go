package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	AppPort string
	AppEnv  string

	JWTSecret        string
	CustomerTokenTTL time.Duration
	AdminSessionTTL  time.Duration

	OTPTTL         time.Duration
	OTPMaxAttempts int
	// OTPExposeCode returns the issued code in the HTTP response. Never
	// enabled in production.
	OTPExposeCode bool

	RabbitMQURL      string
	RabbitMQPoolSize int

	CORSOrigin        string
	InternalSecretKey string
}

var ErrMissingDBHost = errors.New("DB_HOST is not set")

// Load reads the environment (and a .env file when present).
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		AppPort: getEnv("APP_PORT", "8080"),
		AppEnv:  env,

		JWTSecret:        os.Getenv("JWT_SECRET"),
		CustomerTokenTTL: getEnvDuration("CUSTOMER_TOKEN_TTL", time.Hour),
		AdminSessionTTL:  getEnvDuration("ADMIN_SESSION_TTL", time.Hour),

		OTPTTL:         getEnvDuration("OTP_TTL", 10*time.Minute),
		OTPMaxAttempts: getEnvInt("OTP_MAX_ATTEMPTS", 5),
		OTPExposeCode:  env != "production" && getEnv("OTP_EXPOSE_CODE", "true") == "true",

		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
		RabbitMQPoolSize: getEnvInt("RABBITMQ_POOL_SIZE", 5),

		CORSOrigin:        getEnv("CORS_ORIGIN", "http://localhost:3000"),
		InternalSecretKey: os.Getenv("INTERNAL_SECRET_KEY"),
	}

	if cfg.DBHost == "" {
		return nil, ErrMissingDBHost
	}

	return cfg, nil
}

func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal("Environment variables not loaded properly: ", err)
	}
	return cfg
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("10m", "1h").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
