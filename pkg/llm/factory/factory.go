package factory

import (
	"fmt"

	"ai-bizops-be/pkg/llm"
	"ai-bizops-be/pkg/llm/gemini"
	"ai-bizops-be/pkg/llm/ollama"
)

// NewProvider creates an LLM provider instance based on the provider name.
func NewProvider(provider, model, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch provider {
	case "gemini":
		if apiKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewGeminiProvider(apiKey, model), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, model), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
