package llm

import (
	"context"
	"encoding/json"
	"strings"

	"ai-bizops-be/pkg/errs"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature  float64
	MaxTokens    int
	Model        string // Override default model
	SystemPrompt string
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		o.SystemPrompt = prompt
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

const jsonOnlyInstruction = `You must respond with valid JSON only. No markdown, no explanation, just JSON.
Follow this exact schema:
`

// GenerateJSON asks the provider for JSON-only output matching the given
// schema description and decodes the reply into out. Code fences around the
// reply are stripped before decoding. A failed generation is a ProviderError;
// a reply that still fails to decode is a ParseError.
func GenerateJSON(ctx context.Context, provider LLMProvider, prompt, schema string, out any, options ...Option) error {
	opts := &Options{}
	for _, opt := range options {
		opt(opts)
	}

	instruction := jsonOnlyInstruction + schema
	if opts.SystemPrompt != "" {
		instruction = opts.SystemPrompt + "\n\n" + instruction
	}
	options = append(options, WithSystemPrompt(instruction))

	raw, err := provider.Generate(ctx, prompt, options...)
	if err != nil {
		return errs.Wrap(errs.KindProvider, "structured generation failed", err)
	}

	cleaned := StripCodeFences(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return errs.Wrap(errs.KindParse, "reply is not valid JSON for schema", err)
	}
	return nil
}

// StripCodeFences removes a surrounding markdown code fence if the model
// wrapped its reply in one.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```json", "```sql", "```"} {
		if strings.HasPrefix(s, prefix) {
			s = s[len(prefix):]
			break
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
