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


package chunker

import (
	"strings"

	"github.com/poiesic/docrag/core"
)

// Window is one untrimmed span of normalized text.
// Start and End are rune offsets; End is exclusive.
type Window struct {
	Start int
	End   int
	Text  string
}

// Chunker splits text into overlapping windows.
type Chunker struct {
	size    int
	overlap int
}

// New creates a chunker with the given window size and overlap.
// It returns core.ErrInvalidChunkParams unless 0 <= overlap < size.
func New(size, overlap int) (*Chunker, error) {
	if err := core.ValidateChunkParams(size, overlap); err != nil {
		return nil, err
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Size returns the window width in characters.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the number of characters shared by consecutive windows.
func (c *Chunker) Overlap() int { return c.overlap }

// Step returns how far the window advances between chunks.
func (c *Chunker) Step() int { return c.size - c.overlap }

// Normalize collapses every run of whitespace, newlines included, into a
// single space and trims both ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Windows normalizes text and returns every window in ascending start order,
// before trimming. Empty text yields no windows.
func (c *Chunker) Windows(text string) []Window {
	runes := []rune(Normalize(text))
	n := len(runes)
	if n == 0 {
		return nil
	}

	step := c.Step()
	windows := make([]Window, 0, n/step+1)
	for start := 0; start < n; start += step {
		end := min(start+c.size, n)
		windows = append(windows, Window{
			Start: start,
			End:   end,
			Text:  string(runes[start:end]),
		})
		if end == n {
			break
		}
	}
	return windows
}

// Split returns the trimmed, non-empty chunk texts of text in order.
func (c *Chunker) Split(text string) []string {
	windows := c.Windows(text)
	chunks := make([]string, 0, len(windows))
	for _, w := range windows {
		if piece := strings.TrimSpace(w.Text); piece != "" {
			chunks = append(chunks, piece)
		}
	}
	return chunks
}

// Chunks splits a document into chunks carrying ids and metadata.
// The i-th emitted chunk has ID "{stem}-{i}".
func (c *Chunker) Chunks(doc *core.Document) []core.Chunk {
	pieces := c.Split(doc.Text)
	if len(pieces) == 0 {
		return nil
	}
	stem := doc.Stem()
	chunks := make([]core.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = core.Chunk{
			ID:     core.ChunkID(stem, i),
			Text:   piece,
			Source: doc.Name,
			Index:  i,
		}
	}
	return chunks
}
