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

import "errors"

// Domain errors
var (
	// ErrInvalidChunkParams indicates chunk size and overlap violate 0 <= overlap < size.
	ErrInvalidChunkParams = errors.New("invalid chunk parameters")

	// ErrInvalidRecord indicates a Record failed validation.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrMisalignedBatch indicates the sequences of an UpsertBatch differ in length.
	ErrMisalignedBatch = errors.New("upsert batch sequences are not index-aligned")

	// ErrEmptyID indicates a record ID is empty.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrEmptyContent indicates the text of a record is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyVector indicates a record has no embedding.
	ErrEmptyVector = errors.New("vector cannot be empty")

	// ErrModelMismatch indicates vectors would be compared across embedding models.
	ErrModelMismatch = errors.New("embedding model mismatch")

	// ErrDimensionMismatch indicates two vectors that must be comparable differ in length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingCountMismatch indicates an embedder returned a different number
	// of vectors than texts it was given.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")
)
