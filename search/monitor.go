package search

import (
	"github.com/poiesic/docrag/core"
)

// SearchMonitor provides hooks to observe the answering process.
// Implement this interface to track intermediate steps and results.
type SearchMonitor interface {
	Start(question string)
	AfterEmbedding(dimensions int)
	AfterRetrieval(results []*core.SearchResult)
	AfterContextAssembly(context string, included int)
	Finish(answer *Answer)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                        {}
func (n *noopMonitor) AfterEmbedding(_ int)                  {}
func (n *noopMonitor) AfterRetrieval(_ []*core.SearchResult) {}
func (n *noopMonitor) AfterContextAssembly(_ string, _ int)  {}
func (n *noopMonitor) Finish(_ *Answer)                      {}
