package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("expected gpt-4o-mini, got %s", cfg.LLM.Model)
	}
	if cfg.Embedding.Dimensions != 3072 {
		t.Errorf("expected 3072, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Chunking.Size != 2500 || cfg.Chunking.Overlap != 400 {
		t.Errorf("expected chunking 2500/400, got %d/%d", cfg.Chunking.Size, cfg.Chunking.Overlap)
	}
	if cfg.Retrieval.SemanticPool != 80 {
		t.Errorf("expected pool 80, got %d", cfg.Retrieval.SemanticPool)
	}
	if cfg.Index.Vector != "sqlite" {
		t.Errorf("expected sqlite backend, got %s", cfg.Index.Vector)
	}
	if cfg.Server.Addr != ":8000" {
		t.Errorf("expected :8000, got %s", cfg.Server.Addr)
	}
}

func TestLoadFromTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.toml")
	os.WriteFile(path, []byte(`
[server]
addr = ":9000"

[retrieval]
keyword_weight = 0.25

[index]
vector = "chromem"
`), 0644)

	cfg := Load(path)
	if cfg.Server.Addr != ":9000" {
		t.Errorf("expected :9000, got %s", cfg.Server.Addr)
	}
	if cfg.Retrieval.KeywordWeight != 0.25 {
		t.Errorf("expected 0.25, got %v", cfg.Retrieval.KeywordWeight)
	}
	if cfg.Index.Vector != "chromem" {
		t.Errorf("expected chromem, got %s", cfg.Index.Vector)
	}
	// Defaults preserved
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("default should be preserved, got %s", cfg.LLM.Model)
	}
	if cfg.Retrieval.SemanticK != 25 {
		t.Errorf("default should be preserved, got %d", cfg.Retrieval.SemanticK)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("SIFT_ADDR", ":7000")
	t.Setenv("SIFT_OPENAI_API_KEY", "env-key")
	t.Setenv("OPENAI_API_KEY", "")

	cfg := Load("/nonexistent/path.toml")
	if cfg.Server.Addr != ":7000" {
		t.Errorf("expected :7000, got %s", cfg.Server.Addr)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Errorf("expected env-key, got %s", cfg.LLM.APIKey)
	}
	// Fallback: embedding gets the LLM key
	if cfg.Embedding.APIKey != "env-key" {
		t.Errorf("expected embedding fallback to env-key, got %s", cfg.Embedding.APIKey)
	}
}

func TestBareOpenAIKeyFallback(t *testing.T) {
	t.Setenv("SIFT_OPENAI_API_KEY", "")
	t.Setenv("SIFT_EMBEDDING_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "bare-key")

	cfg := Load("/nonexistent/path.toml")
	if cfg.LLM.APIKey != "bare-key" {
		t.Errorf("expected bare-key, got %s", cfg.LLM.APIKey)
	}
	if cfg.Embedding.APIKey != "bare-key" {
		t.Errorf("expected bare-key for embedding, got %s", cfg.Embedding.APIKey)
	}
}

func TestObserverEnabledEnv(t *testing.T) {
	t.Setenv("SIFT_OBSERVER_ENABLED", "1")

	cfg := Load("/nonexistent/path.toml")
	if !cfg.Observer.Enabled {
		t.Error("expected observer enabled")
	}
}
