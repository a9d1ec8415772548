package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-bizops-be/pkg/dataquery"
	"ai-bizops-be/pkg/llm"
	"ai-bizops-be/pkg/rag/retriever"
	"ai-bizops-be/pkg/rag/vectorstore"
)

// fakeLLM replies from a prompt-substring rule table so each pipeline
// sub-call can be scripted independently.
type llmRule struct {
	contains string
	reply    string
}

type fakeLLM struct {
	mu      sync.Mutex
	rules   []llmRule
	err     error
	prompts []string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}
	for _, rule := range f.rules {
		if strings.Contains(prompt, rule.contains) {
			return rule.reply, nil
		}
	}
	return "ok", nil
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if len(history) == 0 {
		return f.Generate(ctx, "", opts...)
	}
	return f.Generate(ctx, history[len(history)-1].Content, opts...)
}

func scriptedLLM(intent string) *fakeLLM {
	return &fakeLLM{rules: []llmRule{
		{"Analyze the following user query", fmt.Sprintf(`{"intent": %q, "entities": [], "time_range": null, "data_sources": ["documents"], "output_type": "text"}`, intent)},
		{"document excerpts", "Summary of findings."},
		{"type of data analysis", `{"needs_sql": false, "needs_visualization": false, "metrics": [], "time_range": "week", "aggregation": "none", "grouping": null}`},
		{"Generate a SQL query", "SELECT date, amount FROM sales"},
		{"Summarize this data analysis", "Sales look steady."},
		{"Think through this problem", "Step by step reasoning."},
		{"provide a clear and helpful response", "Q3 revenue was $1.2M."},
		{"Assess your confidence", "0.85"},
		{"key insights", `["Revenue is growing"]`},
		{"determine what actions should be taken", `{"actions": [], "no_action_reason": "none needed"}`},
		{"Parse the following scheduling request", `{"task_name": "Weekly Report", "schedule_type": "recurring", "cron_expression": "0 9 * * 1", "priority": "medium", "description": "weekly report"}`},
	}}
}

type fakeRetriever struct {
	results []vectorstore.SearchResult
	err     error
	panics  bool
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, topK int, fileFilter []string) ([]vectorstore.SearchResult, error) {
	if f.panics {
		panic("retriever blew up")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeRetriever) RetrieveAsContext(ctx context.Context, query string, topK int) (string, error) {
	return "", nil
}

func (f *fakeRetriever) SourcesSummary(ctx context.Context, query string, topK int) ([]retriever.SourceCitation, error) {
	return nil, nil
}

func newTestOrchestrator(provider llm.LLMProvider, ret retriever.IRetriever, jobs JobStore) *Orchestrator {
	if jobs == nil {
		jobs = NewMemoryJobStore()
	}
	return NewOrchestrator(provider, ret, dataquery.NewSampleExecutor(), jobs, nil, nil, nil)
}

func stepAgents(steps []AgentStep) []string {
	agents := make([]string, len(steps))
	for i, step := range steps {
		agents[i] = step.Agent
	}
	return agents
}

func TestProcessQueryDocumentQuestion(t *testing.T) {
	ret := &fakeRetriever{results: []vectorstore.SearchResult{
		{Content: "Q3 revenue was $1.2M", Source: "q3.txt", Page: 1, Score: 0.9},
		{Content: "Revenue grew 12% quarter over quarter", Source: "q3.txt", Page: 2, Score: 0.8},
	}}
	o := newTestOrchestrator(scriptedLLM("question"), ret, nil)

	resp := o.ProcessQuery(context.Background(), "What was Q3 revenue?", "", true)
	require.NotNil(t, resp)

	assert.Equal(t, []string{"Research Agent", "Reasoning Agent"}, stepAgents(resp.AgentSteps))
	assert.Equal(t, StatusDone, resp.AgentSteps[0].Status)
	assert.Contains(t, resp.AgentSteps[0].Action, "found 2 relevant chunks")
	assert.Equal(t, "Q3 revenue was $1.2M.", resp.Response)
	assert.Len(t, resp.Sources, 2)
	assert.InDelta(t, 0.85, resp.Confidence, 1e-9)
	assert.NotEmpty(t, resp.ConversationID)
}

func TestProcessQueryRunsAnalystOnKeyword(t *testing.T) {
	o := newTestOrchestrator(scriptedLLM("question"), &fakeRetriever{}, nil)

	resp := o.ProcessQuery(context.Background(), "What was the total revenue last week?", "", false)
	require.NotNil(t, resp)

	assert.Equal(t, []string{"Research Agent", "Analyst Agent", "Reasoning Agent"}, stepAgents(resp.AgentSteps))
	assert.Equal(t, StatusDone, resp.AgentSteps[1].Status)
	assert.Nil(t, resp.Sources, "sources suppressed when not requested")
}

func TestProcessQuerySchedulerAppendsConfirmation(t *testing.T) {
	jobs := NewMemoryJobStore()
	o := newTestOrchestrator(scriptedLLM("schedule a weekly report"), &fakeRetriever{}, jobs)

	resp := o.ProcessQuery(context.Background(), "Schedule a weekly report every Monday at 9am", "", true)
	require.NotNil(t, resp)

	agents := stepAgents(resp.AgentSteps)
	assert.Equal(t, []string{"Research Agent", "Reasoning Agent", "Action Agent", "Scheduler Agent"}, agents)

	last := resp.AgentSteps[len(resp.AgentSteps)-1]
	assert.Equal(t, StatusDone, last.Status)

	// Scheduler confirmation is appended after the reasoning text
	assert.True(t, strings.HasPrefix(resp.Response, "Q3 revenue was $1.2M."), resp.Response)
	assert.Contains(t, resp.Response, "Scheduled task 'Weekly Report' successfully.")

	stored, err := jobs.ListJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Weekly Report", stored[0].TaskName)
	assert.Equal(t, "0 9 * * 1", stored[0].CronExpression)
	assert.Equal(t, "scheduled", stored[0].Status)
}

func TestProcessQueryProviderDown(t *testing.T) {
	provider := &fakeLLM{err: errors.New("provider unavailable")}
	o := newTestOrchestrator(provider, &fakeRetriever{}, nil)

	resp := o.ProcessQuery(context.Background(), "What happened last week?", "", true)
	require.NotNil(t, resp)

	// Classification falls back, research degrades, reasoning fails into
	// the fixed apology. The pipeline still completes.
	assert.Equal(t, []string{"Research Agent", "Reasoning Agent"}, stepAgents(resp.AgentSteps))
	assert.Equal(t, StatusError, resp.AgentSteps[1].Status)
	assert.Equal(t, "I was unable to process your request.", resp.Response)
	assert.GreaterOrEqual(t, resp.Confidence, 0.0)
	assert.LessOrEqual(t, resp.Confidence, 1.0)
}

func TestProcessQueryEscapedFailure(t *testing.T) {
	o := newTestOrchestrator(scriptedLLM("question"), &fakeRetriever{panics: true}, nil)

	resp := o.ProcessQuery(context.Background(), "anything", "conv-1", true)
	require.NotNil(t, resp)

	require.Len(t, resp.AgentSteps, 1)
	assert.Equal(t, "orchestrator", resp.AgentSteps[0].Agent)
	assert.Equal(t, StatusError, resp.AgentSteps[0].Status)
	assert.Equal(t, 0.0, resp.Confidence)
	assert.Contains(t, resp.Response, "I encountered an error while processing your request")
	assert.Equal(t, "conv-1", resp.ConversationID)
}

func TestProcessQueryStreamEventOrder(t *testing.T) {
	ret := &fakeRetriever{results: []vectorstore.SearchResult{
		{Content: "Q3 revenue was $1.2M", Source: "q3.txt", Score: 0.9},
	}}
	o := newTestOrchestrator(scriptedLLM("question"), ret, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var received []ProgressEvent
	for event := range o.ProcessQueryStream(ctx, "What was Q3 revenue?", "") {
		received = append(received, event)
	}

	types := make([]string, len(received))
	for i, event := range received {
		types[i] = event.Type
	}
	assert.Equal(t, []string{
		"status",
		"agent_start", "agent_done",
		"agent_start", "agent_done",
		"response_start", "response_chunk", "response_end",
	}, types)

	assert.Equal(t, "research", received[1].Agent)
	assert.Equal(t, "Found 1 relevant documents", received[2].Result)
	assert.Equal(t, "reasoning", received[3].Agent)

	var assembled strings.Builder
	for _, event := range received {
		if event.Type == "response_chunk" {
			assembled.WriteString(event.Content)
		}
	}
	assert.Equal(t, "Q3 revenue was $1.2M.", assembled.String())

	assert.Len(t, received[len(received)-1].Sources, 1)
}

func TestConversationMemory(t *testing.T) {
	o := newTestOrchestrator(scriptedLLM("question"), &fakeRetriever{}, nil)

	resp := o.ProcessQuery(context.Background(), "What was Q3 revenue?", "conv-memory", true)
	require.NotNil(t, resp)

	history := o.GetConversationHistory("conv-memory")
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "What was Q3 revenue?", history[0].Content)
	assert.Equal(t, "assistant", history[1].Role)
	assert.Equal(t, resp.Response, history[1].Content)

	o.ClearConversation("conv-memory")
	assert.Empty(t, o.GetConversationHistory("conv-memory"))
}

func TestStagePredicates(t *testing.T) {
	o := newTestOrchestrator(&fakeLLM{}, &fakeRetriever{}, nil)

	tests := []struct {
		name     string
		analysis QueryAnalysis
		query    string
		analyst  bool
		action   bool
		schedule bool
	}{
		{
			name:     "plain question",
			analysis: QueryAnalysis{Intent: "question", DataSources: []string{"documents"}, OutputType: "text"},
			query:    "what does the contract say",
		},
		{
			name:     "analysis keyword in intent",
			analysis: QueryAnalysis{Intent: "compare regions", OutputType: "text"},
			query:    "regions",
			analyst:  true,
		},
		{
			name:     "analysis keyword in raw query only",
			analysis: QueryAnalysis{Intent: "question", OutputType: "text"},
			query:    "how many tickets are open",
			analyst:  true,
		},
		{
			name:     "database data source",
			analysis: QueryAnalysis{Intent: "question", DataSources: []string{"database"}, OutputType: "text"},
			query:    "anything",
			analyst:  true,
		},
		{
			name:     "action from intent",
			analysis: QueryAnalysis{Intent: "send an email", OutputType: "text"},
			query:    "notify the team",
			action:   true,
		},
		{
			name:     "action from output type",
			analysis: QueryAnalysis{Intent: "question", OutputType: "report"},
			query:    "summary",
			action:   true,
		},
		{
			name:     "scheduling intent",
			analysis: QueryAnalysis{Intent: "remind me tomorrow", OutputType: "text"},
			query:    "ping me",
			action:   false,
			schedule: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.analyst, o.needsDataAnalysis(tt.analysis, tt.query))
			assert.Equal(t, tt.action, o.needsAction(tt.analysis))
			assert.Equal(t, tt.schedule, o.needsScheduling(tt.analysis))
		})
	}
}

func TestSplitResponse(t *testing.T) {
	assert.Equal(t, []string{""}, splitResponse(""))

	short := splitResponse("hello")
	assert.Equal(t, []string{"hello"}, short)

	long := strings.Repeat("x", 450)
	chunks := splitResponse(long)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], responseChunk)
	assert.Len(t, chunks[2], 50)
	assert.Equal(t, long, strings.Join(chunks, ""))
}
