package agent

import (
	"context"
	"fmt"
	"strings"

	"ai-bizops-be/pkg/llm"
	"ai-bizops-be/pkg/rag/retriever"
	"ai-bizops-be/pkg/rag/vectorstore"
)

const researchTopK = 5

// ResearchResult is what the research stage contributes to the state.
type ResearchResult struct {
	Documents  []vectorstore.SearchResult
	Sources    []retriever.SourceCitation
	Summary    string
	Confidence float64
}

// ResearchAgent finds and summarizes relevant document chunks.
type ResearchAgent struct {
	llm       llm.LLMProvider
	retriever retriever.IRetriever
}

func NewResearchAgent(provider llm.LLMProvider, ret retriever.IRetriever) *ResearchAgent {
	return &ResearchAgent{
		llm:       provider,
		retriever: ret,
	}
}

func (a *ResearchAgent) Search(ctx context.Context, query string) (*ResearchResult, error) {
	documents, err := a.retriever.Retrieve(ctx, query, researchTopK, nil)
	if err != nil {
		return &ResearchResult{
			Documents: []vectorstore.SearchResult{},
			Sources:   []retriever.SourceCitation{},
			Summary:   fmt.Sprintf("Search failed due to an error: %v", err),
		}, nil
	}

	if len(documents) == 0 {
		return &ResearchResult{
			Documents: []vectorstore.SearchResult{},
			Sources:   []retriever.SourceCitation{},
			Summary:   "No relevant documents found in the knowledge base.",
		}, nil
	}

	sources := make([]retriever.SourceCitation, 0, len(documents))
	for _, doc := range documents {
		snippet := doc.Content
		if len(snippet) > 150 {
			snippet = snippet[:150] + "..."
		}
		sources = append(sources, retriever.SourceCitation{
			Type:      "document",
			Name:      doc.Source,
			Page:      doc.Page,
			Relevance: doc.Score,
			Snippet:   snippet,
		})
	}

	return &ResearchResult{
		Documents:  documents,
		Sources:    sources,
		Summary:    a.summarize(ctx, query, documents),
		Confidence: calculateSearchConfidence(documents),
	}, nil
}

func (a *ResearchAgent) summarize(ctx context.Context, query string, documents []vectorstore.SearchResult) string {
	excerpts := make([]string, 0, len(documents))
	for _, doc := range documents {
		excerpts = append(excerpts, fmt.Sprintf("[%s]: %s", doc.Source, doc.Content))
	}

	prompt := fmt.Sprintf(`
Based on the following document excerpts, provide a brief summary of the relevant information found.

Query: %s

Documents:
%s

Provide:
1. A 2-3 sentence summary of what was found
2. Key facts or data points
3. Confidence in the relevance (high/medium/low)

Keep the summary concise and factual.
`, query, strings.Join(excerpts, "\n\n"))

	summary, err := a.llm.Generate(ctx, prompt, llm.WithSystemPrompt(researchSystemPrompt))
	if err != nil {
		return fmt.Sprintf("Found %d relevant documents.", len(documents))
	}
	return summary
}

// calculateSearchConfidence averages the relevance scores and adds a small
// bonus for result count, capped at 1.0.
func calculateSearchConfidence(documents []vectorstore.SearchResult) float64 {
	if len(documents) == 0 {
		return 0.0
	}

	var total float64
	for _, doc := range documents {
		total += float64(doc.Score)
	}
	confidence := total / float64(len(documents))

	switch {
	case len(documents) >= 3:
		confidence += 0.1
	case len(documents) >= 1:
		confidence += 0.05
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}
