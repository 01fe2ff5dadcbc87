// Package config loads application configuration from environment variables.
// All variables use the EDU_ prefix. A .env file in the working directory is
// read first when present; variables already set in the environment win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultOpenRouterKey is the shared free-tier key used when no OpenRouter
// key is set.
const DefaultOpenRouterKey = "sk-or-v1-free"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	AI       AIConfig
	Log      LogConfig
	// BanksDir overrides the embedded question banks with *.yaml files from
	// a directory.
	BanksDir string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL disables
// event persistence.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
	Migrate  bool
}

// CacheConfig holds Redis connection settings. An empty URL disables the
// attempt recorder.
type CacheConfig struct {
	URL string
}

// AIConfig holds configuration for all AI providers.
type AIConfig struct {
	Groq        KeyConfig
	Ollama      OllamaConfig
	OpenRouter  OpenRouterConfig
	Google      GoogleConfig
	Together    KeyConfig
	DeepInfra   KeyConfig
	HuggingFace HuggingFaceConfig
	// QuizProviders names the providers asked for quiz JSON, in order.
	QuizProviders []string
	MaxTokens     int
	Temperature   float64
}

// KeyConfig holds a single credential. Placeholder values are stored as "".
type KeyConfig struct {
	APIKey string
}

// GoogleConfig holds Gemini settings. An empty Model keeps the provider
// default.
type GoogleConfig struct {
	APIKey string
	Model  string
}

// HuggingFaceConfig holds the authenticated HuggingFace settings. Models are
// tried in order; an empty list keeps the provider defaults.
type HuggingFaceConfig struct {
	APIKey string
	Models []string
}

// OllamaConfig holds self-hosted Ollama settings.
type OllamaConfig struct {
	Enabled bool
	URL     string
	Models  []string
}

// OpenRouterConfig holds OpenRouter provider settings.
type OpenRouterConfig struct {
	APIKey  string
	Referer string
	Model   string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
	// File enables a rotated log file alongside stdout.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Load reads configuration from environment variables with EDU_ prefix.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("EDU_SERVER_PORT", 3001),
			Host: envStr("EDU_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("EDU_DATABASE_URL", ""),
			MaxConns: envInt("EDU_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("EDU_DATABASE_MIN_CONNS", 1),
			Migrate:  envBool("EDU_DATABASE_MIGRATE", true),
		},
		Cache: CacheConfig{
			URL: envStr("EDU_CACHE_URL", ""),
		},
		AI: AIConfig{
			Groq: KeyConfig{APIKey: envKey("EDU_AI_GROQ_API_KEY")},
			Ollama: OllamaConfig{
				Enabled: envBool("EDU_AI_OLLAMA_ENABLED", true),
				URL:     envStr("EDU_AI_OLLAMA_URL", "http://localhost:11434"),
				Models:  envList("EDU_AI_OLLAMA_MODELS", []string{"llama3.2:3b", "llama3.2:1b", "phi3:mini", "gemma2:2b"}),
			},
			OpenRouter: OpenRouterConfig{
				APIKey:  envKeyOr("EDU_AI_OPENROUTER_API_KEY", DefaultOpenRouterKey),
				Referer: envStr("EDU_AI_OPENROUTER_REFERER", "http://localhost:3000"),
				Model:   envStr("EDU_AI_OPENROUTER_MODEL", ""),
			},
			Google: GoogleConfig{
				APIKey: envKey("EDU_AI_GOOGLE_API_KEY"),
				Model:  envStr("EDU_AI_GOOGLE_MODEL", ""),
			},
			Together:  KeyConfig{APIKey: envKey("EDU_AI_TOGETHER_API_KEY")},
			DeepInfra: KeyConfig{APIKey: envKey("EDU_AI_DEEPINFRA_API_KEY")},
			HuggingFace: HuggingFaceConfig{
				APIKey: envKey("EDU_AI_HUGGINGFACE_TOKEN"),
				Models: envList("EDU_AI_HUGGINGFACE_MODELS", nil),
			},
			QuizProviders: envList("EDU_AI_QUIZ_PROVIDERS", []string{"groq", "huggingface"}),
			MaxTokens:     envInt("EDU_AI_MAX_TOKENS", 1000),
			Temperature:   envFloat("EDU_AI_TEMPERATURE", 0.7),
		},
		Log: LogConfig{
			Level:      envStr("EDU_LOG_LEVEL", "info"),
			Format:     envStr("EDU_LOG_FORMAT", "json"),
			File:       envStr("EDU_LOG_FILE", ""),
			MaxSizeMB:  envInt("EDU_LOG_MAX_SIZE_MB", 10),
			MaxBackups: envInt("EDU_LOG_MAX_BACKUPS", 3),
			MaxAgeDays: envInt("EDU_LOG_MAX_AGE_DAYS", 28),
			Compress:   envBool("EDU_LOG_COMPRESS", false),
		},
		BanksDir: envStr("EDU_BANKS_DIR", ""),
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("EDU_SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("EDU_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	if c.AI.Ollama.Enabled && len(c.AI.Ollama.Models) == 0 {
		return fmt.Errorf("EDU_AI_OLLAMA_MODELS must list at least one model when Ollama is enabled")
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("EDU_DATABASE_MIN_CONNS (%d) exceeds EDU_DATABASE_MAX_CONNS (%d)", c.Database.MinConns, c.Database.MaxConns)
	}

	return nil
}

// IsPlaceholder reports whether v is a template value copied from an example
// env file, such as "your_groq_api_key_here".
func IsPlaceholder(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return false
	}
	return strings.HasPrefix(v, "your_") && strings.HasSuffix(v, "_here") ||
		strings.HasPrefix(v, "<") && strings.HasSuffix(v, ">") ||
		v == "changeme" || v == "change-me"
}

// envKey reads a credential, treating placeholders as unset.
func envKey(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if IsPlaceholder(v) {
		return ""
	}
	return v
}

func envKeyOr(key, fallback string) string {
	if v := envKey(key); v != "" {
		return v
	}
	return fallback
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

// envList splits a comma-separated value, dropping blank entries.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
