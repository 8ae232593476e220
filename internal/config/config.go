// Package config loads service configuration from the environment, with an
// optional YAML file as a base layer. Environment variables always win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth for the HTTP API.
	APIKey string `yaml:"api_key"`

	// WordPress source API.
	WordPressBaseURL string `yaml:"wordpress_base_url"`

	// LLM provider (OpenAI-compatible).
	LLMBaseURL     string `yaml:"llm_base_url"`
	LLMAPIKey      string `yaml:"llm_api_key"`
	LLMModel       string `yaml:"llm_model"`
	EmbeddingModel string `yaml:"embedding_model"`

	// Vector store.
	ChromaURL        string `yaml:"chroma_url"`
	ChromaCollection string `yaml:"chroma_collection"`

	// Ingestion pipeline.
	WorkerCount        int           `yaml:"worker_count"`
	MaxQueueSize       int           `yaml:"max_queue_size"`
	EmbedBatchSize     int           `yaml:"embed_batch_size"`
	MaxConcurrentEmbed int           `yaml:"max_concurrent_embed"`
	StoreBatchSize     int           `yaml:"store_batch_size"`
	JobTTL             time.Duration `yaml:"job_ttl"`

	// Upload limits.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// Load builds the configuration. When CONFIG_FILE points at a YAML file (or
// ./config.yaml exists), it is read first; environment variables override it.
func Load() (Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("CODEXRAG_API_KEY", cfg.APIKey)

	cfg.WordPressBaseURL = envOr("WP_BASE_URL", cfg.WordPressBaseURL)

	cfg.LLMBaseURL = envOr("LLM_BASE_URL", cfg.LLMBaseURL)
	cfg.LLMAPIKey = envOr("LLM_API_KEY", cfg.LLMAPIKey)
	cfg.LLMModel = envOr("LLM_MODEL", cfg.LLMModel)
	cfg.EmbeddingModel = envOr("EMBEDDING_MODEL", cfg.EmbeddingModel)

	cfg.ChromaURL = envOr("CHROMA_URL", cfg.ChromaURL)
	cfg.ChromaCollection = envOr("CHROMA_COLLECTION", cfg.ChromaCollection)

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.EmbedBatchSize = envInt("EMBED_BATCH_SIZE", cfg.EmbedBatchSize)
	cfg.MaxConcurrentEmbed = envInt("MAX_CONCURRENT_EMBED", cfg.MaxConcurrentEmbed)
	cfg.StoreBatchSize = envInt("STORE_BATCH_SIZE", cfg.StoreBatchSize)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.ChromaURL == "" {
		c.ChromaURL = "http://localhost:8001"
	}
	if c.ChromaCollection == "" {
		c.ChromaCollection = "wp_codex_plugin"
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = 2
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = 32
	}
	if c.EmbedBatchSize <= 0 {
		c.EmbedBatchSize = 64
	}
	if c.MaxConcurrentEmbed <= 0 {
		c.MaxConcurrentEmbed = 4
	}
	if c.StoreBatchSize <= 0 {
		c.StoreBatchSize = 256
	}
	if c.JobTTL <= 0 {
		c.JobTTL = time.Hour
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 52428800 // 50MB
	}
}

// Validate checks the settings the server cannot run without.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("CODEXRAG_API_KEY is required")
	}
	if c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
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

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
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
