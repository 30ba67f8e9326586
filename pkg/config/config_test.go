package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
server:
  host: "127.0.0.1"
  port: 9000

llm:
  primary_model: "gpt-4o"
  secondary_model: "mistral"
  ollama_base_url: "http://localhost:11434"
  max_tokens: 1000
  temperature: 0.5

embedding:
  mode: "stub"
  provider: "ollama"
  dimension: 768

database:
  url: "postgres://localhost:5432/test"
  table_name: "test_chunks"
  batch_size: 50

retrieval:
  top_k: 30
  rerank_k: 10
  min_score: 0.8
  allowed_types:
    - "blog_post"
    - "research_paper"

chunker:
  chunk_size: 500
  overlap: 50
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", config.Server.Host)
	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, "gpt-4o", config.LLM.PrimaryModel)
	assert.Equal(t, 1000, config.LLM.MaxTokens)
	assert.Equal(t, 0.5, config.LLM.Temperature)
	assert.Equal(t, "stub", config.Embedding.Mode)
	assert.Equal(t, 768, config.Embedding.Dimension)
	assert.Equal(t, "postgres://localhost:5432/test", config.Database.URL)
	assert.Equal(t, 30, config.Retrieval.TopK)
	assert.Equal(t, []string{"blog_post", "research_paper"}, config.Retrieval.AllowedTypes)
	assert.Equal(t, 500, config.Chunker.ChunkSize)

	// Unset values get defaults.
	assert.Equal(t, "localhost:6379", config.Redis.Addr)
	assert.Equal(t, 2.0, config.Loader.RateLimit)
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	assert.Nil(t, config)

	// Empty path falls back to pure defaults when no file is found in the
	// search locations.
	cwd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(cwd)
	require.NoError(t, os.Chdir(t.TempDir()))

	config, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 8000, config.Server.Port)
	assert.Equal(t, "gpt-4o", config.LLM.PrimaryModel)
	assert.Equal(t, "live", config.Embedding.Mode)
	assert.Equal(t, 800, config.Chunker.ChunkSize)
}

func TestConfigValidation(t *testing.T) {
	config, err := getDefaultConfig()
	require.NoError(t, err)
	assert.Empty(t, config.Validate())

	config.Server.Port = -1
	config.LLM.Temperature = 3
	config.Embedding.Mode = "maybe"
	config.Chunker.Overlap = config.Chunker.ChunkSize

	errs := config.Validate()
	require.Len(t, errs, 4)

	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
		assert.NotEmpty(t, e.Error())
	}
	assert.Contains(t, fields, "server.port")
	assert.Contains(t, fields, "llm.temperature")
	assert.Contains(t, fields, "embedding.mode")
	assert.Contains(t, fields, "chunker.overlap")
}

func TestConfigValidation_RerankExceedsTopK(t *testing.T) {
	config, err := getDefaultConfig()
	require.NoError(t, err)

	config.Retrieval.TopK = 5
	config.Retrieval.RerankK = 10

	errs := config.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "retrieval.rerank_k", errs[0].Field)
}
