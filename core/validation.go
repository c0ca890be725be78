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


package core

import "fmt"

// ValidateChunkParams validates chunk window parameters.
//
// Validation rules:
//   - size must be positive
//   - overlap must satisfy 0 <= overlap < size
func ValidateChunkParams(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: chunk size %d must be positive", ErrInvalidChunkParams, size)
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidChunkParams, overlap, size)
	}
	return nil
}

// ValidateRecord validates a Record according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Text must not be empty
//   - Vector must not be empty
func ValidateRecord(record *Record) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyID)
	}

	if record.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyContent)
	}

	if len(record.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyVector)
	}

	return nil
}

// Validate checks that every sequence in the batch has the same length,
// that each entry forms a valid record, and that all embeddings share one
// dimensionality.
func (b *UpsertBatch) Validate() error {
	n := len(b.IDs)
	if len(b.Texts) != n || len(b.Metadatas) != n || len(b.Embeddings) != n {
		return fmt.Errorf("%w: ids=%d texts=%d metadatas=%d embeddings=%d",
			ErrMisalignedBatch, n, len(b.Texts), len(b.Metadatas), len(b.Embeddings))
	}

	dims := 0
	for i := range b.IDs {
		record := &Record{ID: b.IDs[i], Text: b.Texts[i], Metadata: b.Metadatas[i], Vector: b.Embeddings[i]}
		if err := ValidateRecord(record); err != nil {
			return fmt.Errorf("batch index %d: %w", i, err)
		}
		if dims == 0 {
			dims = len(record.Vector)
		} else if len(record.Vector) != dims {
			return fmt.Errorf("%w: record %q has %d dimensions, expected %d",
				ErrDimensionMismatch, record.ID, len(record.Vector), dims)
		}
	}
	return nil
}

// CheckManifest verifies that vectors produced by model with the given
// dimensionality are comparable with those described by the manifest.
// A zero dims skips the dimension check.
func CheckManifest(m *Manifest, model string, dims int) error {
	if m == nil {
		return nil
	}
	if m.EmbeddingModel != model {
		return fmt.Errorf("%w: collection %q was embedded with %q, configured model is %q",
			ErrModelMismatch, m.Collection, m.EmbeddingModel, model)
	}
	if dims != 0 && m.Dimensions != 0 && m.Dimensions != dims {
		return fmt.Errorf("%w: collection %q stores %d-dimensional vectors, got %d",
			ErrDimensionMismatch, m.Collection, m.Dimensions, dims)
	}
	return nil
}
