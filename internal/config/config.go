package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultModel          = "claude-sonnet-4-20250514"
	DefaultChunkPages     = 50
	DefaultMaxPromptChars = 15000
	DefaultMaxTokens      = 8000
	DefaultOutputDir      = "./extracted"
)

type Config struct {
	// Claude extraction
	AnthropicAPIKey    string
	AnthropicModel     string
	AnthropicBaseURL   string
	AnthropicMaxTokens int
	AnthropicTimeout   time.Duration

	// Partitioning and prompt
	ChunkPages     int
	MaxPromptChars int

	// PDF
	PDFFallbackPdftotext bool

	// Seeder
	DatabaseURL string

	// Publisher
	OutputBucket          string
	OutputBucketPrefix    string
	OutputBucketRegion    string
	OutputBucketEndpoint  string
	OutputBucketPathStyle bool

	// Observability
	MetricsFile string
	LogLevel    string
	LogFormat   string

	// Preview API
	Port   string
	APIKey string
}

func Load() Config {
	cfg := Config{
		AnthropicAPIKey:    os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:     envOr("ANTHROPIC_MODEL", DefaultModel),
		AnthropicBaseURL:   os.Getenv("ANTHROPIC_BASE_URL"),
		AnthropicMaxTokens: envInt("ANTHROPIC_MAX_TOKENS", DefaultMaxTokens),
		AnthropicTimeout:   envDuration("ANTHROPIC_TIMEOUT", 120*time.Second),

		ChunkPages:     envInt("CHUNK_PAGES", DefaultChunkPages),
		MaxPromptChars: envInt("MAX_PROMPT_CHARS", DefaultMaxPromptChars),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		OutputBucket:          os.Getenv("OUTPUT_BUCKET"),
		OutputBucketPrefix:    os.Getenv("OUTPUT_BUCKET_PREFIX"),
		OutputBucketRegion:    envOr("OUTPUT_BUCKET_REGION", "us-east-1"),
		OutputBucketEndpoint:  os.Getenv("OUTPUT_BUCKET_ENDPOINT"),
		OutputBucketPathStyle: envBool("OUTPUT_BUCKET_PATH_STYLE", false),

		MetricsFile: os.Getenv("METRICS_FILE"),
		LogLevel:    strings.ToLower(envOr("LOG_LEVEL", "info")),
		LogFormat:   strings.ToLower(envOr("LOG_FORMAT", "text")),

		Port:   envOr("PORT", "8090"),
		APIKey: os.Getenv("COPEXTRACT_API_KEY"),
	}

	if cfg.AnthropicMaxTokens <= 0 {
		cfg.AnthropicMaxTokens = DefaultMaxTokens
	}
	if cfg.AnthropicTimeout <= 0 {
		cfg.AnthropicTimeout = 120 * time.Second
	}
	if cfg.MaxPromptChars <= 0 {
		cfg.MaxPromptChars = DefaultMaxPromptChars
	}

	return cfg
}

// Validate checks settings that must hold before any work starts. The
// credential is only required when the model strategy is in use.
func (c Config) Validate(useModel bool) error {
	if useModel && c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required (or pass --no-claude)")
	}
	if c.ChunkPages < 1 {
		return fmt.Errorf("chunk pages must be at least 1, got %d", c.ChunkPages)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
