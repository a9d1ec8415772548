package retriever

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-bizops-be/pkg/rag/vectorstore"
)

type stubStore struct {
	vectorstore.IVectorStore
	results []vectorstore.SearchResult
	lastK   int
}

func (s *stubStore) Search(ctx context.Context, query string, topK int, fileFilter []string, threshold float32) ([]vectorstore.SearchResult, error) {
	s.lastK = topK
	return s.results, nil
}

func TestRetrieveDefaultsTopK(t *testing.T) {
	store := &stubStore{}
	r := NewRetriever(store)

	_, err := r.Retrieve(context.Background(), "q", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, store.lastK)
}

func TestRetrieveAsContextFormatting(t *testing.T) {
	store := &stubStore{results: []vectorstore.SearchResult{
		{Content: "Revenue grew 12%.", Source: "q3.txt", Page: 2, Score: 0.91},
		{Content: "Churn held steady.", Source: "cs.txt", Score: 0.44},
	}}
	r := NewRetriever(store)

	out, err := r.RetrieveAsContext(context.Background(), "revenue", 5)
	require.NoError(t, err)

	assert.Contains(t, out, "[Source 1: q3.txt (Page 2, Relevance: 0.91)]\nRevenue grew 12%.")
	assert.Contains(t, out, "[Source 2: cs.txt (Page N/A, Relevance: 0.44)]\nChurn held steady.")
	assert.Contains(t, out, "\n\n---\n\n")
}

func TestRetrieveAsContextNoResults(t *testing.T) {
	r := NewRetriever(&stubStore{})

	out, err := r.RetrieveAsContext(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Equal(t, "No relevant documents found.", out)
}

func TestSourcesSummaryTruncatesSnippet(t *testing.T) {
	long := strings.Repeat("a", 300)
	store := &stubStore{results: []vectorstore.SearchResult{
		{Content: long, Source: "big.txt", Page: 1, Score: 0.8},
	}}
	r := NewRetriever(store)

	sources, err := r.SourcesSummary(context.Background(), "q", 5)
	require.NoError(t, err)
	require.Len(t, sources, 1)

	assert.Equal(t, "document", sources[0].Type)
	assert.Equal(t, "big.txt", sources[0].Name)
	assert.Len(t, sources[0].Snippet, 203)
	assert.True(t, strings.HasSuffix(sources[0].Snippet, "..."))
}
