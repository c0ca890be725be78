package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/docrag/ai"
	"github.com/poiesic/docrag/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, filepath.Join("storage", "vectors"), cfg.VectorStorePath)
	assert.Equal(t, "docs", cfg.CollectionName)
	assert.Equal(t, "*.pdf", cfg.DocumentPattern)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 64, cfg.EmbeddingBatchSize)
	assert.Equal(t, 4, cfg.TopK)
	assert.Equal(t, 12000, cfg.MaxContextChars)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.CompletionModelID)
	assert.GreaterOrEqual(t, cfg.ExtractWorkers, 1)

	require.NoError(t, cfg.Validate())
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, "docrag.yaml", `
collectionName: handbook
chunkSize: 500
chunkOverlap: 50
topK: 8
completionProvider: anthropic
completionModelId: claude-haiku-4-5
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "handbook", cfg.CollectionName)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, 50, cfg.ChunkOverlap)
	assert.Equal(t, 8, cfg.TopK)
	assert.Equal(t, ai.ProviderAnthropic, cfg.CompletionProvider)
	// untouched keys keep defaults
	assert.Equal(t, 12000, cfg.MaxContextChars)
	assert.Equal(t, "*.pdf", cfg.DocumentPattern)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile_TOML(t *testing.T) {
	path := writeFile(t, "docrag.toml", `
vectorStorePath = "/var/lib/docrag"
documentPattern = "**/*.pdf"
maxContextChars = 4000
temperature = 0.5
storeMemTableMb = 512
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/docrag", cfg.VectorStorePath)
	assert.Equal(t, "**/*.pdf", cfg.DocumentPattern)
	assert.Equal(t, 4000, cfg.MaxContextChars)
	assert.InDelta(t, 0.5, cfg.Temperature, 1e-9)
	assert.Equal(t, 512, cfg.StoreMemTableMB)
	assert.Equal(t, 1000, cfg.ChunkSize)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, "docrag.json", `{}`))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = LoadFile(writeFile(t, "broken.yaml", "chunkSize: [not a number"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "overlap equals size", mutate: func(c *Config) { c.ChunkOverlap = c.ChunkSize }, wantErr: core.ErrInvalidChunkParams},
		{name: "negative overlap", mutate: func(c *Config) { c.ChunkOverlap = -1 }, wantErr: core.ErrInvalidChunkParams},
		{name: "zero topK", mutate: func(c *Config) { c.TopK = 0 }},
		{name: "zero memtable", mutate: func(c *Config) { c.StoreMemTableMB = 0 }},
		{name: "zero context budget", mutate: func(c *Config) { c.MaxContextChars = 0 }},
		{name: "zero batch size", mutate: func(c *Config) { c.EmbeddingBatchSize = 0 }},
		{name: "zero workers", mutate: func(c *Config) { c.ExtractWorkers = 0 }},
		{name: "empty collection", mutate: func(c *Config) { c.CollectionName = "" }},
		{name: "collection with separator", mutate: func(c *Config) { c.CollectionName = "a:b" }},
		{name: "empty store path", mutate: func(c *Config) { c.VectorStorePath = "" }},
		{name: "unknown provider", mutate: func(c *Config) { c.CompletionProvider = "cohere" }, wantErr: ai.ErrUnknownProvider},
		{name: "empty embedding model", mutate: func(c *Config) { c.EmbeddingModelID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestAI(t *testing.T) {
	cfg := Default()
	cfg.EmbeddingModelID = "nomic-embed-text"
	cfg.CompletionAPIKey = "gsk_test"
	cfg.MaxRetries = 3

	aiCfg := cfg.AI()
	assert.Equal(t, "nomic-embed-text", aiCfg.EmbeddingModel)
	assert.Equal(t, "gsk_test", aiCfg.CompletionAPIKey)
	assert.Equal(t, 3, aiCfg.MaxRetries)
	assert.Equal(t, cfg.EmbeddingBatchSize, aiCfg.EmbeddingBatchSize)
}
