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


// Package storage provides the vector store abstraction for docrag.
//
// A Store holds named collections. A Collection holds records, each an
// (id, text, metadata, embedding) tuple, and answers nearest-neighbour
// queries by squared Euclidean distance. Records are written through
// Upsert, which replaces records sharing an id, so re-ingesting the same
// documents leaves the collection unchanged.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces to keep callers independent of the
// backing engine:
//
//	store, err := badger.OpenStore("/path/to/store")  // returns storage.Store
//
// # Usage
//
//	store, err := badger.OpenStore(cfg.VectorStorePath)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	col, err := store.CreateCollection(ctx, "docs")
//	err = col.Upsert(ctx, batch)
//	hits, err := col.Query(ctx, queryVector, 4)
//
// Use in tests with in-memory storage:
//
//	store, err := badger.NewMemoryStore()
//
// # Serialization
//
// Records and manifests are encoded with mus-go (RecordMUS, ManifestMUS).
//
// # Thread Safety
//
// Stores and collections are safe for concurrent use. Consistency is
// provided by backend transactions; callers perform no locking.
package storage
