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


// Package search answers questions from the chunks stored in a collection.
//
// The Searcher type implements retrieval-augmented answering in stages:
//   - Embed the question with the collection's embedding model
//   - Retrieve the top-K nearest chunks
//   - Assemble a context block within a character budget
//   - Ask the completion model to answer from that context alone
//
// AssembleContext and BuildPrompt are exported so the context policy and
// prompt text can be inspected and tested on their own.
package search
