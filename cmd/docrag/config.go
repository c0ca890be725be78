package main

import (
	"github.com/poiesic/docrag/config"
	"github.com/urfave/cli/v2"
)

// configFlags mirrors every config.Config option as a global flag with its
// environment variables. Flag defaults are taken from config.Default so
// help output shows the effective values.
func configFlags() []cli.Flag {
	d := config.Default()
	return []cli.Flag{
		&cli.StringFlag{Name: "store-path", Usage: "Vector store directory", Value: d.VectorStorePath,
			EnvVars: []string{"DOCRAG_STORE_PATH", "CHROMA_DIR"}},
		&cli.StringFlag{Name: "collection", Usage: "Collection name", Value: d.CollectionName,
			EnvVars: []string{"DOCRAG_COLLECTION", "CHROMA_COLLECTION"}},
		&cli.StringFlag{Name: "documents-dir", Usage: "Directory holding the source documents", Value: d.DocumentsDir,
			EnvVars: []string{"DOCRAG_DOCUMENTS_DIR"}},
		&cli.StringFlag{Name: "document-pattern", Usage: "Glob selecting documents, relative to documents-dir", Value: d.DocumentPattern,
			EnvVars: []string{"DOCRAG_DOCUMENT_PATTERN"}},
		&cli.IntFlag{Name: "store-memtable-mb", Usage: "Store memtable size in MiB; bounds one ingestion transaction", Value: d.StoreMemTableMB,
			EnvVars: []string{"DOCRAG_STORE_MEMTABLE_MB"}},
		&cli.StringFlag{Name: "embedding-host", Usage: "OpenAI-compatible embedding service URL", Value: d.EmbeddingHost,
			EnvVars: []string{"DOCRAG_EMBEDDING_HOST"}},
		&cli.StringFlag{Name: "embedding-model", Usage: "Embedding model name", Value: d.EmbeddingModelID,
			EnvVars: []string{"DOCRAG_EMBEDDING_MODEL"}},
		&cli.StringFlag{Name: "embedding-api-key", Usage: "Embedding service API key",
			EnvVars: []string{"DOCRAG_EMBEDDING_API_KEY"}},
		&cli.IntFlag{Name: "embedding-batch-size", Usage: "Chunks per embedding request", Value: d.EmbeddingBatchSize,
			EnvVars: []string{"DOCRAG_EMBEDDING_BATCH_SIZE"}},
		&cli.IntFlag{Name: "chunk-size", Usage: "Chunk width in characters", Value: d.ChunkSize,
			EnvVars: []string{"DOCRAG_CHUNK_SIZE"}},
		&cli.IntFlag{Name: "chunk-overlap", Usage: "Characters shared by consecutive chunks", Value: d.ChunkOverlap,
			EnvVars: []string{"DOCRAG_CHUNK_OVERLAP"}},
		&cli.IntFlag{Name: "extract-workers", Usage: "Documents extracted concurrently", Value: d.ExtractWorkers,
			EnvVars: []string{"DOCRAG_EXTRACT_WORKERS"}},
		&cli.IntFlag{Name: "top-k", Usage: "Chunks retrieved per question", Value: d.TopK,
			EnvVars: []string{"DOCRAG_TOP_K"}},
		&cli.IntFlag{Name: "max-context-chars", Usage: "Context budget in characters", Value: d.MaxContextChars,
			EnvVars: []string{"DOCRAG_MAX_CONTEXT_CHARS"}},
		&cli.StringFlag{Name: "completion-provider", Usage: "Completion backend (openai, anthropic)", Value: d.CompletionProvider,
			EnvVars: []string{"DOCRAG_COMPLETION_PROVIDER"}},
		&cli.StringFlag{Name: "completion-host", Usage: "Completion service URL", Value: d.CompletionHost,
			EnvVars: []string{"DOCRAG_COMPLETION_HOST"}},
		&cli.StringFlag{Name: "completion-model", Usage: "Completion model name", Value: d.CompletionModelID,
			EnvVars: []string{"DOCRAG_COMPLETION_MODEL", "GROQ_MODEL"}},
		&cli.StringFlag{Name: "completion-api-key", Usage: "Completion service API key",
			EnvVars: []string{"DOCRAG_COMPLETION_API_KEY", "GROQ_API_KEY"}},
		&cli.Float64Flag{Name: "temperature", Usage: "Sampling temperature", Value: d.Temperature,
			EnvVars: []string{"DOCRAG_TEMPERATURE"}},
		&cli.Float64Flag{Name: "requests-per-second", Usage: "Rate limit for AI requests, 0 for none", Value: d.RequestsPerSecond,
			EnvVars: []string{"DOCRAG_REQUESTS_PER_SECOND"}},
		&cli.IntFlag{Name: "max-retries", Usage: "Attempts per embedding request", Value: d.MaxRetries,
			EnvVars: []string{"DOCRAG_MAX_RETRIES"}},
	}
}

// loadConfig layers defaults, the optional config file, then flags and
// environment variables, and validates the result.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.Path("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	setString := func(name string, dst *string) {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	setInt := func(name string, dst *int) {
		if c.IsSet(name) {
			*dst = c.Int(name)
		}
	}
	setFloat := func(name string, dst *float64) {
		if c.IsSet(name) {
			*dst = c.Float64(name)
		}
	}

	setString("store-path", &cfg.VectorStorePath)
	setString("collection", &cfg.CollectionName)
	setString("documents-dir", &cfg.DocumentsDir)
	setString("document-pattern", &cfg.DocumentPattern)
	setInt("store-memtable-mb", &cfg.StoreMemTableMB)
	setString("embedding-host", &cfg.EmbeddingHost)
	setString("embedding-model", &cfg.EmbeddingModelID)
	setString("embedding-api-key", &cfg.EmbeddingAPIKey)
	setInt("embedding-batch-size", &cfg.EmbeddingBatchSize)
	setInt("chunk-size", &cfg.ChunkSize)
	setInt("chunk-overlap", &cfg.ChunkOverlap)
	setInt("extract-workers", &cfg.ExtractWorkers)
	setInt("top-k", &cfg.TopK)
	setInt("max-context-chars", &cfg.MaxContextChars)
	setString("completion-provider", &cfg.CompletionProvider)
	setString("completion-host", &cfg.CompletionHost)
	setString("completion-model", &cfg.CompletionModelID)
	setString("completion-api-key", &cfg.CompletionAPIKey)
	setFloat("temperature", &cfg.Temperature)
	setFloat("requests-per-second", &cfg.RequestsPerSecond)
	setInt("max-retries", &cfg.MaxRetries)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
