package agent

import (
	"time"

	"ai-bizops-be/pkg/rag/retriever"
	"ai-bizops-be/pkg/rag/vectorstore"
)

// AgentStatus is the execution state of one pipeline stage.
type AgentStatus string

const (
	StatusIdle      AgentStatus = "idle"
	StatusThinking  AgentStatus = "thinking"
	StatusExecuting AgentStatus = "executing"
	StatusDone      AgentStatus = "done"
	StatusError     AgentStatus = "error"
)

// AgentStep records one stage invocation. Created at stage entry with
// status thinking, finalized once at stage exit; the ordered list is the
// audit trail returned to the caller.
type AgentStep struct {
	Agent       string      `json:"agent"`
	Status      AgentStatus `json:"status"`
	Thought     string      `json:"thought,omitempty"`
	Action      string      `json:"action,omitempty"`
	Observation string      `json:"observation,omitempty"`
	DurationMs  int64       `json:"duration_ms"`
	Timestamp   time.Time   `json:"timestamp"`
}

// QueryAnalysis is the classification of an incoming query, produced
// before any stage runs.
type QueryAnalysis struct {
	Intent      string   `json:"intent"`
	Entities    []string `json:"entities"`
	TimeRange   string   `json:"time_range,omitempty"`
	DataSources []string `json:"data_sources"`
	OutputType  string   `json:"output_type"`
}

// ChartSpec describes a chart the analyst proposes for the result data.
type ChartSpec struct {
	ChartType string           `json:"chart_type"`
	Title     string           `json:"title"`
	Data      []map[string]any `json:"data"`
	XAxis     string           `json:"x_axis"`
	YAxis     string           `json:"y_axis"`
}

// Pattern is a detected trend or anomaly in analyst data.
type Pattern struct {
	Type          string  `json:"type"`
	Direction     string  `json:"direction,omitempty"`
	ChangePercent float64 `json:"change_percent,omitempty"`
	Index         int     `json:"index,omitempty"`
	Value         float64 `json:"value,omitempty"`
	Expected      float64 `json:"expected,omitempty"`
	Description   string  `json:"description"`
}

// OrchestratorState is the mutable state of one in-flight query. It is
// owned by a single pipeline run and never shared across queries.
type OrchestratorState struct {
	Query          string
	ConversationID string
	Context        map[string]any
	Documents      []vectorstore.SearchResult
	DataResults    []map[string]any
	Insights       []string
	Steps          []AgentStep
	FinalResponse  string
	Sources        []retriever.SourceCitation
	Confidence     float64
	Charts         []ChartSpec
	ActionsTaken   []string
}

func newState(query, conversationID string) *OrchestratorState {
	return &OrchestratorState{
		Query:          query,
		ConversationID: conversationID,
		Context:        map[string]any{},
		Documents:      []vectorstore.SearchResult{},
		DataResults:    []map[string]any{},
		Insights:       []string{},
		Steps:          []AgentStep{},
		Sources:        []retriever.SourceCitation{},
		Charts:         []ChartSpec{},
		ActionsTaken:   []string{},
	}
}

// Response is the aggregated result of a full pipeline run.
type Response struct {
	Response       string                      `json:"response"`
	ConversationID string                      `json:"conversation_id"`
	Sources        []retriever.SourceCitation  `json:"sources,omitempty"`
	Confidence     float64                     `json:"confidence"`
	AgentSteps     []AgentStep                 `json:"agent_steps"`
	Charts         []ChartSpec                 `json:"charts,omitempty"`
	ActionsTaken   []string                    `json:"actions_taken,omitempty"`
}

// ProgressEvent is one streamed update from ProcessQueryStream.
type ProgressEvent struct {
	Type    string                     `json:"type"`
	Agent   string                     `json:"agent,omitempty"`
	Status  AgentStatus                `json:"status,omitempty"`
	Message string                     `json:"message,omitempty"`
	Result  string                     `json:"result,omitempty"`
	Content string                     `json:"content,omitempty"`
	Sources []retriever.SourceCitation `json:"sources,omitempty"`
}

// ConversationMessage is one remembered exchange turn.
type ConversationMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
