package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"ai-bizops-be/internal/pkg/logger"
	"ai-bizops-be/pkg/dataquery"
	"ai-bizops-be/pkg/llm"
	"ai-bizops-be/pkg/rag/retriever"
)

const (
	memoryTTL     = 24 * time.Hour
	memorySweep   = time.Hour
	responseChunk = 200
)

var (
	analysisKeywords = []string{"how much", "how many", "trend", "compare", "total", "average", "calculate", "sum", "count"}
	actionKeywords   = []string{"send", "create", "generate", "email", "report", "schedule"}
	scheduleKeywords = []string{"schedule", "remind", "daily", "weekly", "monthly", "every", "tomorrow", "recurring", "automate"}
)

// Orchestrator coordinates the stage pipeline for each query. Stages run
// in a fixed order: research always, analyst when the query needs data,
// reasoning always, then action and scheduler when requested.
type Orchestrator struct {
	llm       llm.LLMProvider
	research  *ResearchAgent
	analyst   *AnalystAgent
	reasoning *ReasoningAgent
	action    *ActionAgent
	scheduler *SchedulerAgent
	memory    *cache.Cache
	log       logger.ILogger
}

func NewOrchestrator(
	provider llm.LLMProvider,
	ret retriever.IRetriever,
	executor dataquery.IExecutor,
	jobs JobStore,
	mailer Mailer,
	events EventPublisher,
	log logger.ILogger,
) *Orchestrator {
	return &Orchestrator{
		llm:       provider,
		research:  NewResearchAgent(provider, ret),
		analyst:   NewAnalystAgent(provider, executor),
		reasoning: NewReasoningAgent(provider),
		action:    NewActionAgent(provider, mailer, events),
		scheduler: NewSchedulerAgent(provider, jobs),
		memory:    cache.New(memoryTTL, memorySweep),
		log:       log,
	}
}

// ProcessQuery runs the full pipeline synchronously. It never returns an
// error: stage failures are captured in the step trace and anything that
// escapes a stage becomes a whole-pipeline error response.
func (o *Orchestrator) ProcessQuery(ctx context.Context, query, conversationID string, includeSources bool) (response *Response) {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	defer func() {
		if r := recover(); r != nil {
			o.logError("orchestrator", "pipeline escaped", map[string]interface{}{"panic": fmt.Sprint(r)})
			response = o.errorResponse(conversationID, fmt.Errorf("%v", r))
		}
	}()

	state := newState(query, conversationID)

	analysis := o.analyzeQuery(ctx, query)
	state.Context["query_analysis"] = analysis

	state.Steps = append(state.Steps, o.runResearch(ctx, state))

	if o.needsDataAnalysis(analysis, query) {
		state.Steps = append(state.Steps, o.runAnalyst(ctx, state))
	}

	state.Steps = append(state.Steps, o.runReasoning(ctx, state))

	if o.needsAction(analysis) {
		state.Steps = append(state.Steps, o.runAction(ctx, state))
	}

	if o.needsScheduling(analysis) {
		state.Steps = append(state.Steps, o.runScheduler(ctx, state))
	}

	o.saveToMemory(conversationID, query, state.FinalResponse)

	response = &Response{
		Response:       state.FinalResponse,
		ConversationID: conversationID,
		Confidence:     state.Confidence,
		AgentSteps:     state.Steps,
	}
	if includeSources {
		response.Sources = state.Sources
	}
	if len(state.Charts) > 0 {
		response.Charts = state.Charts
	}
	if len(state.ActionsTaken) > 0 {
		response.ActionsTaken = state.ActionsTaken
	}
	return response
}

// ProcessQueryStream runs the same pipeline but emits progress events as
// stages start and finish, then streams the final response in chunks. The
// channel is closed after the final event; the sequence is one-shot.
func (o *Orchestrator) ProcessQueryStream(ctx context.Context, query, conversationID string) <-chan ProgressEvent {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	events := make(chan ProgressEvent, 16)

	go func() {
		defer close(events)

		emit := func(event ProgressEvent) bool {
			select {
			case events <- event:
				return true
			case <-ctx.Done():
				return false
			}
		}

		defer func() {
			if r := recover(); r != nil {
				o.logError("orchestrator", "stream pipeline escaped", map[string]interface{}{"panic": fmt.Sprint(r)})
				emit(ProgressEvent{Type: "response_chunk", Content: fmt.Sprintf("I encountered an error while processing your request: %v", r)})
				emit(ProgressEvent{Type: "response_end"})
			}
		}()

		if !emit(ProgressEvent{Type: "status", Message: "Understanding your question..."}) {
			return
		}

		state := newState(query, conversationID)
		analysis := o.analyzeQuery(ctx, query)
		state.Context["query_analysis"] = analysis

		emit(ProgressEvent{Type: "agent_start", Agent: "research", Status: StatusThinking})
		state.Steps = append(state.Steps, o.runResearch(ctx, state))
		emit(ProgressEvent{Type: "agent_done", Agent: "research", Result: fmt.Sprintf("Found %d relevant documents", len(state.Documents))})

		if o.needsDataAnalysis(analysis, query) {
			emit(ProgressEvent{Type: "agent_start", Agent: "analyst", Status: StatusThinking})
			state.Steps = append(state.Steps, o.runAnalyst(ctx, state))
			emit(ProgressEvent{Type: "agent_done", Agent: "analyst", Result: "Data analysis complete"})
		}

		emit(ProgressEvent{Type: "agent_start", Agent: "reasoning", Status: StatusThinking})
		state.Steps = append(state.Steps, o.runReasoning(ctx, state))
		emit(ProgressEvent{Type: "agent_done", Agent: "reasoning", Result: "Synthesis complete"})

		if o.needsAction(analysis) {
			emit(ProgressEvent{Type: "agent_start", Agent: "action", Status: StatusThinking})
			state.Steps = append(state.Steps, o.runAction(ctx, state))
			emit(ProgressEvent{Type: "agent_done", Agent: "action", Result: fmt.Sprintf("Executed %d actions", len(state.ActionsTaken))})
		}

		if o.needsScheduling(analysis) {
			emit(ProgressEvent{Type: "agent_start", Agent: "scheduler", Status: StatusThinking})
			step := o.runScheduler(ctx, state)
			state.Steps = append(state.Steps, step)
			emit(ProgressEvent{Type: "agent_done", Agent: "scheduler", Result: step.Action})
		}

		o.saveToMemory(conversationID, query, state.FinalResponse)

		if !emit(ProgressEvent{Type: "response_start"}) {
			return
		}
		for _, chunk := range splitResponse(state.FinalResponse) {
			if !emit(ProgressEvent{Type: "response_chunk", Content: chunk}) {
				return
			}
		}
		emit(ProgressEvent{Type: "response_end", Sources: state.Sources})
	}()

	return events
}

// --- Stage runners ---

func (o *Orchestrator) runResearch(ctx context.Context, state *OrchestratorState) AgentStep {
	start := time.Now()
	step := AgentStep{Agent: "Research Agent", Status: StatusThinking, Timestamp: start}

	result, err := o.research.Search(ctx, state.Query)
	if err != nil {
		step.Status = StatusError
		step.Observation = err.Error()
	} else {
		state.Documents = result.Documents
		state.Sources = append(state.Sources, result.Sources...)
		state.Context["research_confidence"] = result.Confidence

		step.Status = StatusDone
		step.Action = fmt.Sprintf("Searched documents, found %d relevant chunks", len(state.Documents))
		step.Observation = result.Summary
	}

	step.DurationMs = time.Since(start).Milliseconds()
	return step
}

func (o *Orchestrator) runAnalyst(ctx context.Context, state *OrchestratorState) AgentStep {
	start := time.Now()
	step := AgentStep{Agent: "Analyst Agent", Status: StatusThinking, Timestamp: start}

	result, err := o.analyst.Analyze(ctx, state.Query, state.Documents)
	if err != nil {
		step.Status = StatusError
		step.Observation = err.Error()
	} else {
		state.DataResults = result.Data
		if result.Chart != nil {
			state.Charts = append(state.Charts, *result.Chart)
		}
		if result.SQLQuery != "" {
			state.Context["sql_query"] = result.SQLQuery
		}

		step.Status = StatusDone
		step.Action = result.Action
		step.Observation = result.Summary
	}

	step.DurationMs = time.Since(start).Milliseconds()
	return step
}

func (o *Orchestrator) runReasoning(ctx context.Context, state *OrchestratorState) AgentStep {
	start := time.Now()
	step := AgentStep{Agent: "Reasoning Agent", Status: StatusThinking, Timestamp: start}

	result, err := o.reasoning.Reason(ctx, state.Query, state.Documents, state.DataResults, state.Context)
	if err != nil {
		step.Status = StatusError
		step.Observation = err.Error()
		state.FinalResponse = "I was unable to process your request."
	} else {
		state.FinalResponse = result.Response
		state.Confidence = result.Confidence
		state.Insights = result.Insights

		step.Status = StatusDone
		step.Thought = result.Reasoning
		step.Action = "Synthesized information"
	}

	step.DurationMs = time.Since(start).Milliseconds()
	return step
}

func (o *Orchestrator) runAction(ctx context.Context, state *OrchestratorState) AgentStep {
	start := time.Now()
	step := AgentStep{Agent: "Action Agent", Status: StatusThinking, Timestamp: start}

	result, err := o.action.Execute(ctx, state.Query, state.FinalResponse)
	if err != nil {
		step.Status = StatusError
		step.Observation = err.Error()
	} else {
		state.ActionsTaken = result.Actions

		step.Status = StatusDone
		step.Action = fmt.Sprintf("Executed %d actions", len(state.ActionsTaken))
		step.Observation = strings.Join(state.ActionsTaken, ", ")
	}

	step.DurationMs = time.Since(start).Milliseconds()
	return step
}

func (o *Orchestrator) runScheduler(ctx context.Context, state *OrchestratorState) AgentStep {
	start := time.Now()
	step := AgentStep{Agent: "Scheduler Agent", Status: StatusThinking, Timestamp: start}

	result := o.scheduler.Schedule(ctx, state.Query)
	if result.Status == "success" {
		step.Status = StatusDone
		step.Action = result.Message
		if state.FinalResponse != "" {
			state.FinalResponse += "\n\n" + result.Message
		} else {
			state.FinalResponse = result.Message
		}
	} else {
		step.Status = StatusError
		step.Observation = result.Message
	}

	step.DurationMs = time.Since(start).Milliseconds()
	return step
}

// --- Classification and predicates ---

func (o *Orchestrator) analyzeQuery(ctx context.Context, query string) QueryAnalysis {
	prompt := fmt.Sprintf(queryUnderstandingPrompt, query)

	var analysis QueryAnalysis
	schema := `{"intent": "string", "entities": ["list of strings"], "time_range": "string or null", "data_sources": ["list of strings"], "output_type": "string"}`
	if err := llm.GenerateJSON(ctx, o.llm, prompt, schema, &analysis); err != nil {
		return QueryAnalysis{
			Intent:      "question",
			Entities:    []string{},
			DataSources: []string{"documents"},
			OutputType:  "text",
		}
	}
	return analysis
}

func (o *Orchestrator) needsDataAnalysis(analysis QueryAnalysis, query string) bool {
	intent := strings.ToLower(analysis.Intent)
	lowerQuery := strings.ToLower(query)
	for _, keyword := range analysisKeywords {
		if strings.Contains(intent, keyword) || strings.Contains(lowerQuery, keyword) {
			return true
		}
	}
	for _, source := range analysis.DataSources {
		if source == "database" {
			return true
		}
	}
	return false
}

func (o *Orchestrator) needsAction(analysis QueryAnalysis) bool {
	intent := strings.ToLower(analysis.Intent)
	for _, keyword := range actionKeywords {
		if strings.Contains(intent, keyword) {
			return true
		}
	}
	return analysis.OutputType == "report" || analysis.OutputType == "action"
}

func (o *Orchestrator) needsScheduling(analysis QueryAnalysis) bool {
	intent := strings.ToLower(analysis.Intent)
	for _, keyword := range scheduleKeywords {
		if strings.Contains(intent, keyword) {
			return true
		}
	}
	return false
}

// --- Conversation memory ---

func (o *Orchestrator) saveToMemory(conversationID, query, response string) {
	history := o.GetConversationHistory(conversationID)
	now := time.Now()
	history = append(history,
		ConversationMessage{Role: "user", Content: query, Timestamp: now},
		ConversationMessage{Role: "assistant", Content: response, Timestamp: now},
	)
	o.memory.Set(conversationID, history, cache.DefaultExpiration)
}

func (o *Orchestrator) GetConversationHistory(conversationID string) []ConversationMessage {
	if cached, found := o.memory.Get(conversationID); found {
		if history, ok := cached.([]ConversationMessage); ok {
			return history
		}
	}
	return []ConversationMessage{}
}

func (o *Orchestrator) ClearConversation(conversationID string) {
	o.memory.Delete(conversationID)
}

// Scheduler returns the scheduler stage for job listing endpoints.
func (o *Orchestrator) Scheduler() *SchedulerAgent {
	return o.scheduler
}

// ActionCatalog lists the actions the action stage can execute.
func (o *Orchestrator) ActionCatalog() []map[string]string {
	return o.action.ListAvailableActions()
}

// --- Helpers ---

func (o *Orchestrator) errorResponse(conversationID string, err error) *Response {
	return &Response{
		Response:       fmt.Sprintf("I encountered an error while processing your request: %v", err),
		ConversationID: conversationID,
		Confidence:     0.0,
		AgentSteps: []AgentStep{
			{
				Agent:     "orchestrator",
				Status:    StatusError,
				Action:    err.Error(),
				Timestamp: time.Now(),
			},
		},
	}
}

func (o *Orchestrator) logError(module, message string, details map[string]interface{}) {
	if o.log != nil {
		o.log.Error(module, message, details)
	}
}

func splitResponse(response string) []string {
	if response == "" {
		return []string{""}
	}

	runes := []rune(response)
	chunks := []string{}
	for start := 0; start < len(runes); start += responseChunk {
		end := start + responseChunk
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
