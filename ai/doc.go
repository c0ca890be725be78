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


// Package ai provides abstractions for AI services used in docrag.
//
// This package defines interfaces for the two model calls a retrieval
// pipeline needs: turning text into embedding vectors, and turning a
// grounded prompt into an answer. The ingestion and search packages depend
// on these abstractions rather than on concrete clients.
//
// # Interfaces
//
//   - Embedder: Generates unit-length vector embeddings from text
//   - Completer: Produces a single, non-streaming chat completion
//   - AIProvider: Aggregates an Embedder and a Completer
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible APIs (Ollama, Groq, OpenAI) via langchaingo
//   - ai/anthropic: Anthropic Messages API completer
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewProvider, openai.NewEmbedder,
// anthropic.NewCompleter) return INTERFACE types. Mock constructors return
// CONCRETE types so tests can inspect call counts and inject behavior.
//
// # Retries and Rate Limits
//
// The core never retries. Adapters wrap embedding requests in
// RetryWithBackoff (Config.MaxRetries attempts) and pace every request
// through a RateLimiter when Config.RequestsPerSecond is positive.
//
// # Usage Example
//
//	config := ai.DefaultConfig()
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "Hello world")
//	answer, err := provider.Completer().Complete(ctx, system, user)
package ai
