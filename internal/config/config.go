package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Ai       AIConfig
	Jobs     JobConfig
	Provider ProviderConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	GeminiApiKey      string
	OllamaBaseURL     string
	OllamaModel       string
	EmbeddingModel    string

	CreditsMonthly    int
	RequestsPerMinute int
	DailyCostCapUsd   float64 // 0 disables the cap
}

type JobConfig struct {
	MaxAttempts       int
	SweepIntervalSecs int
	SweepClaimLimit   int
	ProgressTopicName string
}

type ProviderConfig struct {
	BaseURL  string
	Services []string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "PracticeHub"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			GeminiApiKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-004"),
			CreditsMonthly:    getEnvAsInt("AI_CREDITS_MONTHLY", 200),
			RequestsPerMinute: getEnvAsInt("AI_REQUESTS_PER_MINUTE", 8),
			DailyCostCapUsd:   getEnvAsFloat("AI_DAILY_COST_CAP_USD", 0),
		},
		Jobs: JobConfig{
			MaxAttempts:       getEnvAsInt("JOB_MAX_ATTEMPTS", 3),
			SweepIntervalSecs: getEnvAsInt("JOB_SWEEP_INTERVAL_SECONDS", 60),
			SweepClaimLimit:   getEnvAsInt("JOB_SWEEP_CLAIM_LIMIT", 25),
			ProgressTopicName: getEnv("SYNC_PROGRESS_TOPIC_NAME", "SYNC_PROGRESS"),
		},
		Provider: ProviderConfig{
			BaseURL:  getEnv("PROVIDER_GATEWAY_URL", "http://localhost:8085"),
			Services: strings.Split(getEnv("PROVIDER_SERVICES", "email,calendar,tasks"), ","),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
