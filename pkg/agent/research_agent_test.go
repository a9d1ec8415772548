package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-bizops-be/pkg/rag/vectorstore"
)

func TestCalculateSearchConfidence(t *testing.T) {
	tests := []struct {
		name     string
		scores   []float32
		expected float64
	}{
		{"no documents", nil, 0.0},
		{"single document gets small bonus", []float32{0.6}, 0.65},
		{"two documents", []float32{0.6, 0.8}, 0.75},
		{"three documents get full bonus", []float32{0.5, 0.6, 0.7}, 0.7},
		{"capped at one", []float32{0.99, 0.99, 0.99}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := make([]vectorstore.SearchResult, len(tt.scores))
			for i, score := range tt.scores {
				docs[i] = vectorstore.SearchResult{Score: score}
			}
			assert.InDelta(t, tt.expected, calculateSearchConfidence(docs), 1e-6)
		})
	}
}

func TestResearchSearchRetrieverFailure(t *testing.T) {
	a := NewResearchAgent(scriptedLLM("question"), &fakeRetriever{err: errors.New("index offline")})

	result, err := a.Search(context.Background(), "anything")
	require.NoError(t, err, "retrieval failures degrade, they do not propagate")

	assert.Empty(t, result.Documents)
	assert.Empty(t, result.Sources)
	assert.Contains(t, result.Summary, "Search failed due to an error")
	assert.Equal(t, 0.0, result.Confidence)
}

func TestResearchSearchNoResults(t *testing.T) {
	a := NewResearchAgent(scriptedLLM("question"), &fakeRetriever{})

	result, err := a.Search(context.Background(), "anything")
	require.NoError(t, err)

	assert.Equal(t, "No relevant documents found in the knowledge base.", result.Summary)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestResearchSearchSummaryFallback(t *testing.T) {
	provider := &fakeLLM{err: errors.New("quota exceeded")}
	ret := &fakeRetriever{results: []vectorstore.SearchResult{
		{Content: "Revenue was $1.2M", Source: "q3.txt", Score: 0.9},
		{Content: "Churn fell to 2%", Source: "cs.txt", Score: 0.7},
	}}
	a := NewResearchAgent(provider, ret)

	result, err := a.Search(context.Background(), "metrics")
	require.NoError(t, err)

	assert.Equal(t, "Found 2 relevant documents.", result.Summary)
	assert.Len(t, result.Sources, 2)
	assert.InDelta(t, 0.85, result.Confidence, 1e-6)
}
