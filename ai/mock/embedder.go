package mock

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/docrag/core"
)

// DefaultDimensions matches the output size of all-MiniLM-L6-v2.
const DefaultDimensions = 384

// DefaultModel is the model name reported by a MockEmbedder.
const DefaultModel = "mock-embedding"

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses default deterministic behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName is returned by Model.
	ModelName string

	// Dimensions is the length of generated vectors.
	Dimensions int

	mu        sync.Mutex
	callCount int
	batches   []int
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockEmbedder().
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		ModelName:  DefaultModel,
		Dimensions: DefaultDimensions,
	}
}

// Model returns ModelName.
func (m *MockEmbedder) Model() string {
	return m.ModelName
}

// EmbedText generates a deterministic embedding based on text hash.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.record(1)

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}

	return DeterministicVector(text, m.Dimensions), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.record(len(texts))

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		if m.EmbedTextFunc != nil {
			v, err := m.EmbedTextFunc(ctx, text)
			if err != nil {
				return nil, err
			}
			embeddings[i] = v
			continue
		}
		embeddings[i] = DeterministicVector(text, m.Dimensions)
	}
	return embeddings, nil
}

func (m *MockEmbedder) record(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	m.batches = append(m.batches, size)
}

// CallCount returns the number of times any method was called.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// BatchSizes returns the number of texts passed to each call, in call order.
func (m *MockEmbedder) BatchSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.batches...)
}

// Reset clears the call count and injected behavior.
func (m *MockEmbedder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.batches = nil
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// DeterministicVector creates a unit-length embedding from text.
// The same text always produces the same vector.
func DeterministicVector(text string, dim int) []float32 {
	h, _ := blake2b.New(8, nil)
	h.Write([]byte(text))
	seed := binary.LittleEndian.Uint64(h.Sum(nil))

	vector := make([]float32, dim)
	for i := range vector {
		seed = seed*6364136223846793005 + 1442695040888963407 // LCG constants
		vector[i] = float32(seed>>40)/float32(1<<24) - 0.5
	}

	return core.NormalizeVector(vector)
}
