package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
)

const defaultSystemPrompt = `You are **CampusAI**, an intelligent assistant exclusively developed by **VASU**.

IDENTITY RULES (VERY IMPORTANT):
- You are not ChatGPT, not OpenAI, not an OpenAI assistant.
- Never say you were made or developed by OpenAI.
- If asked who developed, made, created, designed or built you, or which company is behind you,
  ALWAYS answer: "I was developed by VASU — the creator of CampusAI."
- If asked about your model, reply:
  "I run on an AI model integrated and customized by VASU for CampusAI."

RESPONSE STYLE RULES:
- Always use structured answers: clear paragraphs, bullet points when helpful,
  step-by-step explanations, headings for long answers.
- Never give short or one-line replies.
- Always answer professionally, clearly, and in detail.`

type Config struct {
	// Server
	Port string
	Env  string

	// LLM provider
	LLMProvider         string
	LLMModel            string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	GeminiAPIKey        string
	SystemPrompt        string
	RateLimitRetryDelay time.Duration
	UpstreamTimeout     time.Duration
	MaxUploadSize       int64
	CORSOrigin          string
	MetricsPort         string
	ShutdownTimeout     time.Duration

	// Logging
	LogLevel    string
	LogFilePath string

	// Client
	GatewayURL     string
	UIPort         string
	RevealInterval time.Duration
	IdentityReply  string
	Timezone       string

	// Storage
	StoreDriver string
	StorePath   string
	StorageKey  string
	RedisURL    string
	DatabaseURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                getEnvOrDefault("PORT", "5000"),
		Env:                 getEnvOrDefault("ENV", "development"),
		LLMProvider:         getEnvOrDefault("LLM_PROVIDER", "openai"),
		LLMModel:            getEnvOrDefault("LLM_MODEL", "gpt-4.1-mini"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:       getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		SystemPrompt:        getEnvOrDefault("SYSTEM_PROMPT", defaultSystemPrompt),
		RateLimitRetryDelay: getEnvAsDurationOrDefault("RATE_LIMIT_RETRY_DELAY", 3*time.Second),
		UpstreamTimeout:     getEnvAsDurationOrDefault("UPSTREAM_TIMEOUT", 120*time.Second),
		MaxUploadSize:       getEnvAsBytesOrDefault("MAX_UPLOAD_SIZE", 25*1000*1000),
		CORSOrigin:          getEnvOrDefault("CORS_ORIGIN", "*"),
		MetricsPort:         getEnvOrDefault("METRICS_PORT", ""),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFilePath:         getEnvOrDefault("LOG_FILE_PATH", "logs/campusai.log"),
		GatewayURL:          getEnvOrDefault("GATEWAY_URL", "http://localhost:5000/api/chat"),
		UIPort:              getEnvOrDefault("UI_PORT", "8080"),
		RevealInterval:      getEnvAsDurationOrDefault("REVEAL_INTERVAL", 15*time.Millisecond),
		IdentityReply:       getEnvOrDefault("IDENTITY_REPLY", "I was developed by Vasu Goli — the creator of CampusAI."),
		Timezone:            getEnvOrDefault("TIMEZONE", "Local"),
		StoreDriver:         getEnvOrDefault("STORE_DRIVER", "pebble"),
		StorePath:           getEnvOrDefault("STORE_PATH", "data/campusai"),
		StorageKey:          getEnvOrDefault("STORAGE_KEY", "campus_ai_chat"),
		RedisURL:            getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		ShutdownTimeout:     time.Duration(getEnvAsIntOrDefault("SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second,
	}

	return cfg
}

// LoadGateway loads the shared config and requires the API key of the
// selected provider.
func LoadGateway() *Config {
	cfg := Load()

	switch cfg.LLMProvider {
	case "openai":
		cfg.OpenAIAPIKey = mustGetEnv("OPENAI_API_KEY")
	case "gemini":
		cfg.GeminiAPIKey = mustGetEnv("GEMINI_API_KEY")
		if os.Getenv("LLM_MODEL") == "" {
			cfg.LLMModel = "gemini-2.0-flash"
		}
	default:
		panic(fmt.Sprintf("unsupported LLM_PROVIDER %q", cfg.LLMProvider))
	}

	return cfg
}

// Location resolves Timezone, falling back to the local zone.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}

// getEnvAsBytesOrDefault accepts human sizes such as "25MB" or "512KiB".
func getEnvAsBytesOrDefault(key string, defaultVal int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := humanize.ParseBytes(val)
	if err != nil || n == 0 {
		return defaultVal
	}
	return int64(n)
}
