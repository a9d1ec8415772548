package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-bizops-be/pkg/errs"
)

const (
	geminiEmbeddingModel = "text-embedding-004"
	geminiEmbeddingBase  = "https://generativelanguage.googleapis.com/v1beta"

	// Gemini caps batchEmbedContents at 100 requests per call.
	geminiBatchLimit = 100

	maxAttempts = 3
)

type GeminiProvider struct {
	ApiKey    string
	ModelName string
	BaseURL   string
	Client    *http.Client
}

var _ EmbeddingProvider = &GeminiProvider{}

func NewGeminiProvider(apiKey string) *GeminiProvider {
	return &GeminiProvider{
		ApiKey:    apiKey,
		ModelName: geminiEmbeddingModel,
		BaseURL:   geminiEmbeddingBase,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// --- Request/Response structs ---

type geminiContentPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiContentPart `json:"parts"`
}

type geminiEmbedRequest struct {
	Model    string        `json:"model"`
	Content  geminiContent `json:"content"`
	TaskType string        `json:"taskType,omitempty"`
}

type geminiBatchEmbedRequest struct {
	Requests []geminiEmbedRequest `json:"requests"`
}

type geminiEmbeddingValues struct {
	Values []float32 `json:"values"`
}

type geminiEmbedResponse struct {
	Embedding geminiEmbeddingValues `json:"embedding"`
}

type geminiBatchEmbedResponse struct {
	Embeddings []geminiEmbeddingValues `json:"embeddings"`
}

// --- Interface Implementation ---

func (p *GeminiProvider) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	payload := geminiEmbedRequest{
		Model: "models/" + p.ModelName,
		Content: geminiContent{
			Parts: []geminiContentPart{{Text: text}},
		},
		TaskType: taskType,
	}

	endpoint := fmt.Sprintf("%s/models/%s:embedContent", p.BaseURL, p.ModelName)

	var result geminiEmbedResponse
	if err := p.post(ctx, endpoint, payload, &result); err != nil {
		return nil, err
	}
	return result.Embedding.Values, nil
}

func (p *GeminiProvider) EmbedBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += geminiBatchLimit {
		end := start + geminiBatchLimit
		if end > len(texts) {
			end = len(texts)
		}

		requests := make([]geminiEmbedRequest, 0, end-start)
		for _, text := range texts[start:end] {
			requests = append(requests, geminiEmbedRequest{
				Model: "models/" + p.ModelName,
				Content: geminiContent{
					Parts: []geminiContentPart{{Text: text}},
				},
				TaskType: taskType,
			})
		}

		endpoint := fmt.Sprintf("%s/models/%s:batchEmbedContents", p.BaseURL, p.ModelName)

		var result geminiBatchEmbedResponse
		if err := p.post(ctx, endpoint, geminiBatchEmbedRequest{Requests: requests}, &result); err != nil {
			return nil, err
		}
		if len(result.Embeddings) != end-start {
			return nil, errs.New(errs.KindProvider,
				fmt.Sprintf("gemini returned %d embeddings for %d inputs", len(result.Embeddings), end-start))
		}
		for _, emb := range result.Embeddings {
			vectors = append(vectors, emb.Values)
		}
	}

	return vectors, nil
}

// post sends the payload to the Gemini API with retry on transient failures.
func (p *GeminiProvider) post(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		retriable, err := p.doRequest(ctx, endpoint, body, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retriable {
			break
		}
	}

	return errs.Wrap(errs.KindProvider, "gemini embedding request failed", lastErr)
}

func (p *GeminiProvider) doRequest(ctx context.Context, endpoint string, body []byte, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	resBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, err
	}

	if resp.StatusCode != http.StatusOK {
		retriable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return retriable, fmt.Errorf("status %d, body %s", resp.StatusCode, string(resBytes))
	}

	if err := json.Unmarshal(resBytes, out); err != nil {
		return false, fmt.Errorf("unmarshal response: %w", err)
	}
	return false, nil
}
