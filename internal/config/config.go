package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Quota    QuotaConfig
	Arxiv    ArxivConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	PipelineLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
	SessionTTLHours    int
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	MetricsTopic string // Request metrics topic
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "gemini" or "ollama"
	LLMModel          string // e.g. "gemini-2.5-flash-lite", "llama3"
}

type QuotaConfig struct {
	MaxSearches             int
	MaxChats                int
	CooldownMinutes         int
	ProviderCooldownMinutes int
}

type ArxivConfig struct {
	QueryBaseURL string
	PDFBaseURL   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			PipelineLogPath:    getEnv("PIPELINE_LOG_PATH", "logs/pipeline.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			SessionTTLHours:    getEnvAsInt("SESSION_TTL_HOURS", 48),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			MetricsTopic: getEnv("REQUEST_METRICS_TOPIC_NAME", "REQUEST_METRICS"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-2.5-flash-lite"),
		},
		Quota: QuotaConfig{
			MaxSearches:             getEnvAsInt("QUOTA_MAX_SEARCHES", 3),
			MaxChats:                getEnvAsInt("QUOTA_MAX_CHATS", 5),
			CooldownMinutes:         getEnvAsInt("QUOTA_COOLDOWN_MINUTES", 15),
			ProviderCooldownMinutes: getEnvAsInt("QUOTA_PROVIDER_COOLDOWN_MINUTES", 30),
		},
		Arxiv: ArxivConfig{
			QueryBaseURL: getEnv("ARXIV_QUERY_URL", "http://export.arxiv.org/api/query"),
			PDFBaseURL:   getEnv("ARXIV_PDF_URL", "https://arxiv.org/pdf"),
		},
	}
}

// SessionTTL returns the in-memory session lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.App.SessionTTLHours) * time.Hour
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
