// Package config holds the single configuration structure shared by the
// ingestion and query pipelines.
//
// A Config is built once at startup: Default values, then an optional YAML
// or TOML file (LoadFile), then command-line flags and environment variables
// applied by the CLI. Validate runs once before any pipeline is constructed.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/docrag/ai"
	"github.com/poiesic/docrag/core"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrUnsupportedFormat is returned by LoadFile for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported config file format")

// Config is the complete set of options recognized by docrag.
type Config struct {
	VectorStorePath string `yaml:"vectorStorePath" toml:"vectorStorePath"`
	CollectionName  string `yaml:"collectionName" toml:"collectionName"`
	DocumentsDir    string `yaml:"documentsDir" toml:"documentsDir"`
	DocumentPattern string `yaml:"documentPattern" toml:"documentPattern"`

	// StoreMemTableMB sizes the store's memtable. One ingestion run must fit
	// in a transaction of about 15% of it.
	StoreMemTableMB int `yaml:"storeMemTableMb" toml:"storeMemTableMb"`

	EmbeddingHost      string `yaml:"embeddingHost" toml:"embeddingHost"`
	EmbeddingModelID   string `yaml:"embeddingModelId" toml:"embeddingModelId"`
	EmbeddingAPIKey    string `yaml:"embeddingApiKey" toml:"embeddingApiKey"`
	EmbeddingBatchSize int    `yaml:"embeddingBatchSize" toml:"embeddingBatchSize"`

	ChunkSize      int `yaml:"chunkSize" toml:"chunkSize"`
	ChunkOverlap   int `yaml:"chunkOverlap" toml:"chunkOverlap"`
	ExtractWorkers int `yaml:"extractWorkers" toml:"extractWorkers"`

	TopK            int `yaml:"topK" toml:"topK"`
	MaxContextChars int `yaml:"maxContextChars" toml:"maxContextChars"`

	CompletionProvider string  `yaml:"completionProvider" toml:"completionProvider"`
	CompletionHost     string  `yaml:"completionHost" toml:"completionHost"`
	CompletionModelID  string  `yaml:"completionModelId" toml:"completionModelId"`
	CompletionAPIKey   string  `yaml:"completionApiKey" toml:"completionApiKey"`
	Temperature        float64 `yaml:"temperature" toml:"temperature"`

	RequestsPerSecond float64 `yaml:"requestsPerSecond" toml:"requestsPerSecond"`
	MaxRetries        int     `yaml:"maxRetries" toml:"maxRetries"`
}

// DefaultExtractWorkers returns half the available CPUs, at least one.
func DefaultExtractWorkers() int {
	return max(runtime.NumCPU()/2, 1)
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		VectorStorePath: filepath.Join("storage", "vectors"),
		CollectionName:  "docs",
		DocumentsDir:    filepath.Join("data", "raw"),
		DocumentPattern: "*.pdf",
		StoreMemTableMB: 128,

		EmbeddingHost:      aiDefaults.EmbeddingHost,
		EmbeddingModelID:   aiDefaults.EmbeddingModel,
		EmbeddingAPIKey:    aiDefaults.EmbeddingAPIKey,
		EmbeddingBatchSize: aiDefaults.EmbeddingBatchSize,

		ChunkSize:      1000,
		ChunkOverlap:   200,
		ExtractWorkers: DefaultExtractWorkers(),

		TopK:            4,
		MaxContextChars: 12000,

		CompletionProvider: aiDefaults.CompletionProvider,
		CompletionHost:     aiDefaults.CompletionHost,
		CompletionModelID:  aiDefaults.CompletionModel,
		Temperature:        aiDefaults.Temperature,

		RequestsPerSecond: aiDefaults.RequestsPerSecond,
		MaxRetries:        aiDefaults.MaxRetries,
	}
}

// LoadFile reads a YAML (.yaml, .yml) or TOML (.toml) file over the defaults.
// Keys missing from the file keep their default value.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.MergeFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MergeFile overlays the values present in the file at path onto c.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks every option once. Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.VectorStorePath != "", "vectorStorePath is required")
	check(c.CollectionName != "", "collectionName is required")
	check(!strings.Contains(c.CollectionName, ":"), "collectionName %q must not contain ':'", c.CollectionName)
	check(c.DocumentsDir != "", "documentsDir is required")
	check(c.DocumentPattern != "", "documentPattern is required")
	check(c.StoreMemTableMB > 0, "storeMemTableMb must be positive, got %d", c.StoreMemTableMB)
	check(c.EmbeddingBatchSize > 0, "embeddingBatchSize must be positive, got %d", c.EmbeddingBatchSize)
	check(c.ExtractWorkers > 0, "extractWorkers must be positive, got %d", c.ExtractWorkers)
	check(c.TopK > 0, "topK must be positive, got %d", c.TopK)
	check(c.MaxContextChars > 0, "maxContextChars must be positive, got %d", c.MaxContextChars)
	if err := core.ValidateChunkParams(c.ChunkSize, c.ChunkOverlap); err != nil {
		errs = append(errs, err)
	}
	if err := c.AI().Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// AI returns the AI provider settings carried by c.
func (c *Config) AI() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.EmbeddingHost),
		ai.WithEmbeddingModel(c.EmbeddingModelID),
		ai.WithEmbeddingAPIKey(c.EmbeddingAPIKey),
		ai.WithEmbeddingBatchSize(c.EmbeddingBatchSize),
		ai.WithCompletionProvider(c.CompletionProvider),
		ai.WithCompletionHost(c.CompletionHost),
		ai.WithCompletionModel(c.CompletionModelID),
		ai.WithCompletionAPIKey(c.CompletionAPIKey),
		ai.WithTemperature(c.Temperature),
		ai.WithRequestsPerSecond(c.RequestsPerSecond),
		ai.WithMaxRetries(c.MaxRetries),
	)
}
