package dto

import (
	"time"

	"github.com/google/uuid"

	"ai-bizops-be/pkg/agent"
	"ai-bizops-be/pkg/rag/retriever"
)

type SendQueryRequest struct {
	Query          string `json:"query" validate:"required"`
	ConversationId string `json:"conversation_id,omitempty"`
	IncludeSources bool   `json:"include_sources"`
}

type SendQueryResponse struct {
	ConversationId string                     `json:"conversation_id"`
	Response       string                     `json:"response"`
	AgentSteps     []agent.AgentStep          `json:"agent_steps"`
	Sources        []retriever.SourceCitation `json:"sources,omitempty"`
	Confidence     float64                    `json:"confidence"`
	ChartSpec      *agent.ChartSpec           `json:"chart_spec,omitempty"`
}

type GetHistoryResponse struct {
	Id         uuid.UUID                  `json:"id"`
	Role       string                     `json:"role"`
	Content    string                     `json:"content"`
	Confidence float64                    `json:"confidence,omitempty"`
	Sources    []retriever.SourceCitation `json:"sources,omitempty"`
	CreatedAt  time.Time                  `json:"created_at"`
}

type ConversationSummaryResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// StreamQueryRequest is the first frame a websocket client sends.
type StreamQueryRequest struct {
	Query          string `json:"query" validate:"required"`
	ConversationId string `json:"conversation_id,omitempty"`
	IncludeSources bool   `json:"include_sources"`
}
