package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"ai-bizops-be/pkg/llm"
	"ai-bizops-be/pkg/rag/vectorstore"
)

const (
	reasoningDocLimit     = 5
	reasoningDocMaxChars  = 300
	reasoningDataRowLimit = 10
	defaultConfidence     = 0.7
)

// ReasoningResult is what the reasoning stage contributes to the state.
type ReasoningResult struct {
	Response   string
	Reasoning  string
	Confidence float64
	Insights   []string
}

// ReasoningAgent synthesizes the accumulated context into the final answer.
type ReasoningAgent struct {
	llm llm.LLMProvider
}

func NewReasoningAgent(provider llm.LLMProvider) *ReasoningAgent {
	return &ReasoningAgent{llm: provider}
}

func (a *ReasoningAgent) Reason(ctx context.Context, query string, documents []vectorstore.SearchResult, data []map[string]any, stateContext map[string]any) (*ReasoningResult, error) {
	combined := buildReasoningContext(documents, data, stateContext)

	reasoning, err := a.generateReasoning(ctx, query, combined)
	if err != nil {
		return nil, err
	}

	response, err := a.generateResponse(ctx, query, combined, reasoning)
	if err != nil {
		return nil, err
	}

	return &ReasoningResult{
		Response:   response,
		Reasoning:  reasoning,
		Confidence: a.assessConfidence(ctx, query, combined, response),
		Insights:   a.extractInsights(ctx, query, response),
	}, nil
}

func buildReasoningContext(documents []vectorstore.SearchResult, data []map[string]any, stateContext map[string]any) string {
	parts := []string{}

	if len(documents) > 0 {
		docs := documents
		if len(docs) > reasoningDocLimit {
			docs = docs[:reasoningDocLimit]
		}
		lines := make([]string, 0, len(docs))
		for _, doc := range docs {
			content := doc.Content
			if len(content) > reasoningDocMaxChars {
				content = content[:reasoningDocMaxChars]
			}
			lines = append(lines, fmt.Sprintf("- %s: %s", doc.Source, content))
		}
		parts = append(parts, "**Relevant Documents:**\n"+strings.Join(lines, "\n"))
	}

	if len(data) > 0 {
		rows := data
		if len(rows) > reasoningDataRowLimit {
			rows = rows[:reasoningDataRowLimit]
		}
		rendered, _ := json.MarshalIndent(rows, "", "  ")
		parts = append(parts, fmt.Sprintf("**Data Analysis:**\n```\n%s\n```", string(rendered)))
	}

	if analysis, ok := stateContext["query_analysis"].(QueryAnalysis); ok && analysis.Intent != "" {
		parts = append(parts, "**Query Intent:** "+analysis.Intent)
	}

	if len(parts) == 0 {
		return "No additional context available."
	}
	return strings.Join(parts, "\n\n")
}

func (a *ReasoningAgent) generateReasoning(ctx context.Context, query, context string) (string, error) {
	prompt := fmt.Sprintf(`
Think through this problem step by step.

User Question: %s

Available Information:
%s

Provide your reasoning process:
1. What is the user really asking?
2. What relevant information do we have?
3. What can we infer or conclude?
4. What are the limitations or caveats?

Show your thinking clearly.
`, query, context)

	return a.llm.Generate(ctx, prompt, llm.WithSystemPrompt(reasoningSystemPrompt))
}

func (a *ReasoningAgent) generateResponse(ctx context.Context, query, context, reasoning string) (string, error) {
	prompt := fmt.Sprintf(`
Based on your reasoning, provide a clear and helpful response to the user.

User Question: %s

Your Reasoning:
%s

Context:
%s

Guidelines:
- Be direct and clear
- Include specific data points when available
- Acknowledge uncertainty if present
- Suggest next steps if appropriate
- Keep the response conversational but professional

Provide the response:
`, query, reasoning, context)

	return a.llm.Generate(ctx, prompt, llm.WithSystemPrompt(reasoningSystemPrompt))
}

var confidencePattern = regexp.MustCompile(`0\.\d+|1\.0|0|1`)

func (a *ReasoningAgent) assessConfidence(ctx context.Context, query, context, response string) float64 {
	prompt := fmt.Sprintf(`
Assess your confidence in this response on a scale of 0.0 to 1.0.

Question: %s

Response: %s

Context Available: %d characters

Consider:
- Was there sufficient data to answer?
- Are there any assumptions made?
- Could the answer be verified?
- Are there contradictions in the sources?

Return only a number between 0.0 and 1.0.
`, query, response, len(context))

	reply, err := a.llm.Generate(ctx, prompt)
	if err != nil {
		return defaultConfidence
	}

	match := confidencePattern.FindString(reply)
	if match == "" {
		return defaultConfidence
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return defaultConfidence
	}
	if value > 1.0 {
		value = 1.0
	}
	return value
}

func (a *ReasoningAgent) extractInsights(ctx context.Context, query, response string) []string {
	prompt := fmt.Sprintf(`
Extract 2-3 key insights from this analysis.

Question: %s
Response: %s

Return as a JSON array of strings:
["insight 1", "insight 2", "insight 3"]

Focus on actionable or surprising findings.
`, query, response)

	var insights []string
	if err := llm.GenerateJSON(ctx, a.llm, prompt, `["list of strings"]`, &insights); err != nil {
		return []string{}
	}
	return insights
}
