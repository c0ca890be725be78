// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/docrag/ai"
	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/progress"
	"github.com/poiesic/docrag/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of records to process in each batch
	BatchSize int

	// MaxRetries is the maximum number of attempts for each embedding call
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:  64,
		MaxRetries: 3,
		RetryDelay: ai.DefaultRetryDelay,
	}
}

// Result summarizes a reembedding run.
type Result struct {
	Records    int
	Model      string
	Dimensions int
	Elapsed    time.Duration
}

// Reembedder orchestrates the reembedding of all records in a collection.
type Reembedder struct {
	collection storage.Collection
	embedder   ai.Embedder
	config     *Config
	output     io.Writer
	bar        io.Writer
	processor  *BatchProcessor
}

// NewReembedder creates a new reembedder.
// output: where to write status lines (typically os.Stderr)
// bar: where to render the progress bar, or nil for none
func NewReembedder(collection storage.Collection, embedder ai.Embedder, config *Config, output, bar io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	if output == nil {
		output = io.Discard
	}

	return &Reembedder{
		collection: collection,
		embedder:   embedder,
		config:     config,
		output:     output,
		bar:        bar,
		processor:  NewBatchProcessor(collection, embedder, config.MaxRetries, config.RetryDelay),
	}
}

// Run executes the reembedding operation.
// Every record in the collection is reembedded with the configured embedder
// and the manifest is rewritten to name the embedder's model.
// An interrupted run leaves the old manifest in place and can be repeated.
func (r *Reembedder) Run(ctx context.Context) (*Result, error) {
	totalRecords, err := r.collection.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	result := &Result{Model: r.embedder.Model()}
	if totalRecords == 0 {
		fmt.Fprintf(r.output, "No records found in collection %q (0 records)\n", r.collection.Name())
		return result, nil
	}

	fmt.Fprintf(r.output, "Starting reembedding of %d records with %s (batch size: %d)\n",
		totalRecords, result.Model, r.config.BatchSize)

	tracker := progress.NewTracker(r.bar, totalRecords, "reembedding")
	tracker.Start()

	// Process all records in batches
	err = r.collection.ForEach(ctx, r.config.BatchSize, func(ctx context.Context, records []*core.Record) error {
		dims, err := r.processor.Process(ctx, records)
		if err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		if result.Dimensions != 0 && dims != result.Dimensions {
			return fmt.Errorf("%w: batch produced %d dimensions, earlier batches %d",
				core.ErrDimensionMismatch, dims, result.Dimensions)
		}
		result.Dimensions = dims
		result.Records += len(records)

		tracker.Add(len(records))
		return nil
	})
	if err != nil {
		tracker.Abort()
		return nil, err
	}

	tracker.Finish()

	manifest, err := r.collection.Manifest(ctx)
	if err != nil {
		return nil, err
	}
	if manifest == nil {
		manifest = &core.Manifest{}
	}
	manifest.EmbeddingModel = result.Model
	manifest.Dimensions = result.Dimensions
	if err := r.collection.SaveManifest(ctx, manifest); err != nil {
		return nil, fmt.Errorf("failed to save manifest: %w", err)
	}

	result.Elapsed = tracker.Elapsed()
	fmt.Fprintf(r.output, "Reembedding complete. Processed %d records in %v (%.1f records/sec)\n",
		result.Records, result.Elapsed.Round(time.Millisecond), float64(result.Records)/result.Elapsed.Seconds())

	return result, nil
}
