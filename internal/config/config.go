// Package config loads sift's runtime configuration. Precedence is
// defaults, then an optional TOML file, then environment variables.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	LLM       LLMConfig       `toml:"llm"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Index     IndexConfig     `toml:"index"`
	Log       LogConfig       `toml:"log"`
	Observer  ObserverConfig  `toml:"observer"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
	// MaxUploadMB caps the parsed multipart form size per request.
	MaxUploadMB int64 `toml:"max_upload_mb"`
	// ShutdownTimeout is the graceful shutdown window in seconds.
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type LLMConfig struct {
	Model       string  `toml:"model"`
	APIKey      string  `toml:"api_key"`
	BaseURL     string  `toml:"base_url"`
	Temperature float64 `toml:"temperature"`
}

type EmbeddingConfig struct {
	Model      string `toml:"model"`
	APIKey     string `toml:"api_key"`
	BaseURL    string `toml:"base_url"`
	Dimensions int    `toml:"dimensions"`
}

type ChunkingConfig struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

type RetrievalConfig struct {
	SemanticK     int     `toml:"semantic_k"`
	SemanticPool  int     `toml:"semantic_pool"`
	MinSimilarity float64 `toml:"min_similarity"`
	KeywordK      int     `toml:"keyword_k"`
	KeywordWeight float64 `toml:"keyword_weight"`
}

type IndexConfig struct {
	// Vector selects the vector index backend: "sqlite" (brute-force scan
	// over the same database as the keyword leg) or "chromem".
	Vector string `toml:"vector"`
}

type LogConfig struct {
	Level string `toml:"level"`
	// File enables rotating file output alongside stdout when non-empty.
	File        string `toml:"file"`
	Environment string `toml:"environment"`
}

type ObserverConfig struct {
	Enabled bool                       `toml:"enabled"`
	Pricing map[string]ObserverPricing `toml:"pricing"`
}

type ObserverPricing struct {
	Input  float64 `toml:"input"`
	Output float64 `toml:"output"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Server:    ServerConfig{Addr: ":8000", MaxUploadMB: 32, ShutdownTimeout: 10},
		LLM:       LLMConfig{Model: "gpt-4o-mini", BaseURL: "https://api.openai.com/v1"},
		Embedding: EmbeddingConfig{Model: "text-embedding-3-large", BaseURL: "https://api.openai.com/v1", Dimensions: 3072},
		Chunking:  ChunkingConfig{Size: 2500, Overlap: 400},
		Retrieval: RetrievalConfig{SemanticK: 25, SemanticPool: 80, MinSimilarity: 0.1, KeywordK: 4, KeywordWeight: 0.4},
		Index:     IndexConfig{Vector: "sqlite"},
		Log:       LogConfig{Level: "info", Environment: "development"},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
func Load(path string) Config {
	cfg := Default()

	if path == "" {
		path = "sift.toml"
	}

	if data, err := os.ReadFile(path); err == nil {
		_ = toml.Unmarshal(data, &cfg)
	}

	// Env overrides
	if v := os.Getenv("SIFT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SIFT_OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("SIFT_EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("SIFT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SIFT_ENV"); v != "" {
		cfg.Log.Environment = v
	}
	if os.Getenv("SIFT_OBSERVER_ENABLED") == "true" || os.Getenv("SIFT_OBSERVER_ENABLED") == "1" {
		cfg.Observer.Enabled = true
	}

	// Fallbacks. The bare OPENAI_API_KEY is honored so a plain OpenAI
	// environment works without sift-specific variables.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = cfg.LLM.APIKey
	}

	return cfg
}
