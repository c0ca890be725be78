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


package ingestion

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/docrag/core"
)

// extraction is the outcome of loading one document.
type extraction struct {
	doc *core.Document
	err error
}

// extract loads every path on the worker pool. Results are placed by index,
// so the output order matches paths regardless of scheduling.
func (p *Pipeline) extract(ctx context.Context, paths []string) []extraction {
	results := make([]extraction, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			doc, err := p.loader.Load(ctx, path)
			results[i] = extraction{doc: doc, err: err}
		})
		if err != nil {
			wg.Done()
			results[i] = extraction{err: err}
		}
	}
	wg.Wait()

	return results
}

// usable reports whether an extracted document has any text to chunk.
func usable(doc *core.Document) bool {
	return doc != nil && strings.TrimSpace(doc.Text) != ""
}
