package search

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/docrag/core"
)

// BlockSeparator joins formatted context blocks.
const BlockSeparator = "\n---\n"

// FormatBlock renders one retrieval result as a context block tagged with
// its source document and chunk index.
func FormatBlock(r *core.SearchResult) string {
	return fmt.Sprintf("[Source: %s | Chunk: %d]\n%s\n", r.Metadata.Source, r.Metadata.Chunk, r.Text)
}

// AssembleContext joins the formatted results, best first, keeping the
// longest prefix whose joined length (separators included) is at most
// budget characters. The first block that does not fit ends assembly; later,
// smaller blocks are never substituted. The result is empty when the first
// block alone exceeds the budget.
func AssembleContext(results []*core.SearchResult, budget int) string {
	text, _ := assemble(results, budget)
	return text
}

// assemble is AssembleContext, also reporting how many blocks were kept.
func assemble(results []*core.SearchResult, budget int) (string, int) {
	sepLen := utf8.RuneCountInString(BlockSeparator)

	var sb strings.Builder
	length := 0
	for i, r := range results {
		block := FormatBlock(r)
		added := utf8.RuneCountInString(block)
		if i > 0 {
			added += sepLen
		}
		if length+added > budget {
			return sb.String(), i
		}
		if i > 0 {
			sb.WriteString(BlockSeparator)
		}
		sb.WriteString(block)
		length += added
	}
	return sb.String(), len(results)
}
