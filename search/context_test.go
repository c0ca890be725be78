package search

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/poiesic/docrag/core"
	"github.com/stretchr/testify/assert"
)

func result(source string, chunk int, text string) *core.SearchResult {
	return &core.SearchResult{
		ID:       source + "-" + string(rune('0'+chunk)),
		Text:     text,
		Metadata: core.Metadata{Source: source, Chunk: chunk},
	}
}

func TestFormatBlock(t *testing.T) {
	block := FormatBlock(result("report.pdf", 2, "Revenue grew 4%."))
	assert.Equal(t, "[Source: report.pdf | Chunk: 2]\nRevenue grew 4%.\n", block)
}

func TestAssembleContext_Empty(t *testing.T) {
	assert.Equal(t, "", AssembleContext(nil, 100))
}

func TestAssembleContext_AllFit(t *testing.T) {
	results := []*core.SearchResult{
		result("a.pdf", 0, "alpha"),
		result("b.pdf", 3, "bravo"),
	}

	got := AssembleContext(results, 12000)

	want := "[Source: a.pdf | Chunk: 0]\nalpha\n" + "\n---\n" + "[Source: b.pdf | Chunk: 3]\nbravo\n"
	assert.Equal(t, want, got)
}

func TestAssembleContext_PreservesRanking(t *testing.T) {
	results := []*core.SearchResult{
		result("c.pdf", 1, "third alphabetically, first by rank"),
		result("a.pdf", 0, "first alphabetically"),
		result("b.pdf", 0, "middle"),
	}

	got := AssembleContext(results, 12000)

	ic := strings.Index(got, "c.pdf")
	ia := strings.Index(got, "a.pdf")
	ib := strings.Index(got, "b.pdf")
	assert.Less(t, ic, ia)
	assert.Less(t, ia, ib)
}

func TestAssembleContext_FirstBlockTooLarge(t *testing.T) {
	results := []*core.SearchResult{
		result("a.pdf", 0, strings.Repeat("x", 200)),
		result("b.pdf", 0, "tiny"),
	}

	assert.Equal(t, "", AssembleContext(results, 100))
}

func TestAssembleContext_StopsAtFirstOverflow(t *testing.T) {
	first := result("a.pdf", 0, "short")
	results := []*core.SearchResult{
		first,
		result("b.pdf", 0, strings.Repeat("x", 500)),
		result("c.pdf", 0, "tiny"),
	}

	got := AssembleContext(results, 200)

	assert.Equal(t, FormatBlock(first), got)
	assert.NotContains(t, got, "c.pdf")
}

func TestAssembleContext_CountsSeparators(t *testing.T) {
	a := result("a.pdf", 0, "alpha")
	b := result("b.pdf", 0, "bravo")
	exact := utf8.RuneCountInString(FormatBlock(a)) + len(BlockSeparator) + utf8.RuneCountInString(FormatBlock(b))

	assert.Equal(t, FormatBlock(a)+BlockSeparator+FormatBlock(b), AssembleContext([]*core.SearchResult{a, b}, exact))
	assert.Equal(t, FormatBlock(a), AssembleContext([]*core.SearchResult{a, b}, exact-1))
}

func TestAssembleContext_BudgetLaw(t *testing.T) {
	results := []*core.SearchResult{
		result("a.pdf", 0, strings.Repeat("é", 40)),
		result("b.pdf", 1, strings.Repeat("b", 75)),
		result("c.pdf", 2, strings.Repeat("c", 10)),
		result("d.pdf", 3, strings.Repeat("d", 120)),
	}
	firstLen := utf8.RuneCountInString(FormatBlock(results[0]))

	for budget := 0; budget <= 500; budget++ {
		got := AssembleContext(results, budget)
		assert.LessOrEqual(t, utf8.RuneCountInString(got), budget, "budget %d", budget)
		if budget < firstLen {
			assert.Empty(t, got, "budget %d", budget)
		} else {
			assert.True(t, strings.HasPrefix(got, FormatBlock(results[0])), "budget %d", budget)
		}
	}
}
