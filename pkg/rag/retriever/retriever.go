package retriever

import (
	"context"
	"fmt"
	"strings"

	"ai-bizops-be/pkg/rag/vectorstore"
)

const (
	DefaultTopK     = 5
	DefaultMinScore = float32(0.3)

	snippetLength = 200
)

// SourceCitation is a citation stub for one retrieved chunk.
type SourceCitation struct {
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	Page      int     `json:"page,omitempty"`
	Relevance float32 `json:"relevance"`
	Snippet   string  `json:"snippet"`
}

// IRetriever is the query-facing façade over the vector store.
type IRetriever interface {
	Retrieve(ctx context.Context, query string, topK int, fileFilter []string) ([]vectorstore.SearchResult, error)
	RetrieveAsContext(ctx context.Context, query string, topK int) (string, error)
	SourcesSummary(ctx context.Context, query string, topK int) ([]SourceCitation, error)
}

type Retriever struct {
	store    vectorstore.IVectorStore
	minScore float32
}

func NewRetriever(store vectorstore.IVectorStore) IRetriever {
	return &Retriever{
		store:    store,
		minScore: DefaultMinScore,
	}
}

func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, fileFilter []string) ([]vectorstore.SearchResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return r.store.Search(ctx, query, topK, fileFilter, r.minScore)
}

// RetrieveAsContext formats the top results into a single context string
// with source, page and relevance annotations.
func (r *Retriever) RetrieveAsContext(ctx context.Context, query string, topK int) (string, error) {
	results, err := r.Retrieve(ctx, query, topK, nil)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "No relevant documents found.", nil
	}

	parts := make([]string, 0, len(results))
	for i, result := range results {
		parts = append(parts, fmt.Sprintf(
			"[Source %d: %s (Page %s, Relevance: %.2f)]\n%s",
			i+1, result.Source, pageLabel(result.Page), result.Score, result.Content,
		))
	}

	return strings.Join(parts, "\n\n---\n\n"), nil
}

// SourcesSummary returns citation stubs with truncated snippets.
func (r *Retriever) SourcesSummary(ctx context.Context, query string, topK int) ([]SourceCitation, error) {
	results, err := r.Retrieve(ctx, query, topK, nil)
	if err != nil {
		return nil, err
	}

	sources := make([]SourceCitation, 0, len(results))
	for _, result := range results {
		sources = append(sources, SourceCitation{
			Type:      "document",
			Name:      result.Source,
			Page:      result.Page,
			Relevance: result.Score,
			Snippet:   snippet(result.Content),
		})
	}
	return sources, nil
}

func pageLabel(page int) string {
	if page == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", page)
}

func snippet(content string) string {
	if len(content) <= snippetLength {
		return content + "..."
	}
	return content[:snippetLength] + "..."
}
