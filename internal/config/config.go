package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	Namespace       string
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	MigrationsPath  string
	RedisAddr       string
	RedisPassword   string
	SessionDuration time.Duration
	TokenSigningKey string
	DoctorEmail     string
	DoctorPassword  string
	DoctorName      string
	SESRegion       string
	SESFromEmail    string
	SESFromName     string
	AppBaseURL      string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		Namespace:       getEnv("APP_NAMESPACE", "speech-therapy-app"),
		DatabaseType:    getEnv("DB_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./speechtrack.db"),
		DatabaseURL:     getEnv("DB_URL", ""),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		SessionDuration: 24 * time.Hour,
		TokenSigningKey: getEnv("TOKEN_SIGNING_KEY", ""),
		DoctorEmail:     getEnv("DOCTOR_EMAIL", "doctor@gmail.com"),
		DoctorPassword:  getEnv("DOCTOR_PASSWORD", "doctor"),
		DoctorName:      getEnv("DOCTOR_NAME", "Doctor"),
		SESRegion:       getEnv("SES_REGION", "us-east-1"),
		SESFromEmail:    getEnv("SES_FROM_EMAIL", ""),
		SESFromName:     getEnv("SES_FROM_NAME", "SpeechTrack"),
		AppBaseURL:      getEnv("APP_BASE_URL", "http://localhost:8080"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
