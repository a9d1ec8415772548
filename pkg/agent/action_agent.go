package agent

import (
	"context"
	"fmt"
	"time"

	"ai-bizops-be/pkg/llm"
)

// Mailer sends outbound notification emails.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// EventPublisher pushes alert and notification events onto the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// ActionHandler executes one named action with its parameters.
type ActionHandler func(ctx context.Context, params map[string]any) (map[string]any, error)

// ActionExecution records the outcome of one handler invocation.
type ActionExecution struct {
	Action string         `json:"action"`
	Status string         `json:"status"`
	Result map[string]any `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// ActionResult is what the action stage contributes to the state.
type ActionResult struct {
	Actions []string
	Results []ActionExecution
}

type plannedAction struct {
	Action     string         `json:"action"`
	Reason     string         `json:"reason"`
	Parameters map[string]any `json:"parameters"`
}

type actionPlan struct {
	Actions        []plannedAction `json:"actions"`
	NoActionReason string          `json:"no_action_reason"`
}

// ActionAgent plans actions from the generated response and executes each
// one independently, so a failing action never blocks the rest.
type ActionAgent struct {
	llm      llm.LLMProvider
	mailer   Mailer
	events   EventPublisher
	handlers map[string]ActionHandler
}

func NewActionAgent(provider llm.LLMProvider, mailer Mailer, events EventPublisher) *ActionAgent {
	a := &ActionAgent{
		llm:    provider,
		mailer: mailer,
		events: events,
	}
	a.handlers = map[string]ActionHandler{
		"generate_report":  a.generateReport,
		"send_email":       a.sendEmail,
		"create_alert":     a.createAlert,
		"schedule_task":    a.scheduleTask,
		"update_dashboard": a.updateDashboard,
		"export_data":      a.exportData,
	}
	return a
}

func (a *ActionAgent) Execute(ctx context.Context, query, response string) (*ActionResult, error) {
	plan := a.planActions(ctx, query, response)

	executed := []string{}
	results := []ActionExecution{}

	for _, action := range plan.Actions {
		handler, ok := a.handlers[action.Action]
		if !ok {
			continue
		}

		result, err := handler(ctx, action.Parameters)
		if err != nil {
			executed = append(executed, fmt.Sprintf("%s: failed - %v", action.Action, err))
			results = append(results, ActionExecution{
				Action: action.Action,
				Status: "failed",
				Error:  err.Error(),
			})
			continue
		}
		executed = append(executed, fmt.Sprintf("%s: success", action.Action))
		results = append(results, ActionExecution{
			Action: action.Action,
			Status: "success",
			Result: result,
		})
	}

	return &ActionResult{
		Actions: executed,
		Results: results,
	}, nil
}

func (a *ActionAgent) planActions(ctx context.Context, query, response string) actionPlan {
	prompt := fmt.Sprintf(`
Based on the user's request and the response, determine what actions should be taken.

User Request: %s

Response: %s

Available Actions:
- generate_report: Create a PDF or HTML report
- send_email: Send email notification
- create_alert: Create a system alert
- schedule_task: Schedule a recurring task
- update_dashboard: Update dashboard metrics
- export_data: Export data to file

Determine which actions (if any) should be taken.

Return JSON:
{
    "actions": [
        {
            "action": "action_name",
            "reason": "why this action",
            "parameters": {}
        }
    ],
    "no_action_reason": "if no actions needed, explain why"
}
`, query, response)

	var plan actionPlan
	schema := `{"actions": [{"action": "string", "reason": "string", "parameters": "object"}], "no_action_reason": "string"}`
	if err := llm.GenerateJSON(ctx, a.llm, prompt, schema, &plan, llm.WithSystemPrompt(actionSystemPrompt)); err != nil {
		return actionPlan{Actions: []plannedAction{}, NoActionReason: "Could not determine actions"}
	}
	return plan
}

// ListAvailableActions describes the registered handlers.
func (a *ActionAgent) ListAvailableActions() []map[string]string {
	return []map[string]string{
		{"name": "generate_report", "description": "Generate PDF/HTML reports"},
		{"name": "send_email", "description": "Send email notifications"},
		{"name": "create_alert", "description": "Create system alerts"},
		{"name": "schedule_task", "description": "Schedule recurring tasks"},
		{"name": "update_dashboard", "description": "Update dashboard metrics"},
		{"name": "export_data", "description": "Export data to file"},
	}
}

// --- Handlers ---

func (a *ActionAgent) generateReport(ctx context.Context, params map[string]any) (map[string]any, error) {
	reportType := stringParam(params, "type", "summary")
	title := stringParam(params, "title", "Generated Report")

	now := time.Now()
	return map[string]any{
		"report_id":    "report_" + now.Format("20060102_150405"),
		"title":        title,
		"type":         reportType,
		"generated_at": now.Format(time.RFC3339),
	}, nil
}

func (a *ActionAgent) sendEmail(ctx context.Context, params map[string]any) (map[string]any, error) {
	recipients := stringSliceParam(params, "recipients")
	subject := stringParam(params, "subject", "Business Assistant Notification")
	body := stringParam(params, "body", "")

	now := time.Now()
	status := "sent (simulated)"
	if a.mailer != nil && len(recipients) > 0 {
		if err := a.mailer.Send(ctx, recipients, subject, body); err != nil {
			return nil, err
		}
		status = "sent"
	}

	return map[string]any{
		"email_id":   "email_" + now.Format("20060102_150405"),
		"recipients": recipients,
		"subject":    subject,
		"status":     status,
		"sent_at":    now.Format(time.RFC3339),
	}, nil
}

func (a *ActionAgent) createAlert(ctx context.Context, params map[string]any) (map[string]any, error) {
	alertType := stringParam(params, "type", "info")
	message := stringParam(params, "message", "New alert")
	priority := stringParam(params, "priority", "medium")

	now := time.Now()
	alert := map[string]any{
		"alert_id":   "alert_" + now.Format("20060102_150405"),
		"type":       alertType,
		"message":    message,
		"priority":   priority,
		"created_at": now.Format(time.RFC3339),
	}

	if a.events != nil {
		if err := a.events.Publish(ctx, "alerts.created", alert); err != nil {
			return nil, err
		}
	}

	return alert, nil
}

func (a *ActionAgent) scheduleTask(ctx context.Context, params map[string]any) (map[string]any, error) {
	taskName := stringParam(params, "name", "Scheduled Task")
	frequency := stringParam(params, "frequency", "daily")

	now := time.Now()
	return map[string]any{
		"task_id":   "task_" + now.Format("20060102_150405"),
		"name":      taskName,
		"frequency": frequency,
		"status":    "scheduled",
		"next_run":  now.Format(time.RFC3339),
	}, nil
}

func (a *ActionAgent) updateDashboard(ctx context.Context, params map[string]any) (map[string]any, error) {
	metrics, _ := params["metrics"].([]any)

	now := time.Now()
	update := map[string]any{
		"update_id":       "update_" + now.Format("20060102_150405"),
		"metrics_updated": len(metrics),
		"updated_at":      now.Format(time.RFC3339),
	}

	if a.events != nil {
		if err := a.events.Publish(ctx, "dashboard.updated", update); err != nil {
			return nil, err
		}
	}

	return update, nil
}

func (a *ActionAgent) exportData(ctx context.Context, params map[string]any) (map[string]any, error) {
	format := stringParam(params, "format", "csv")

	now := time.Now()
	return map[string]any{
		"export_id": "export_" + now.Format("20060102_150405"),
		"format":    format,
		"status":    "exported",
		"file_path": fmt.Sprintf("/exports/data_%s.%s", now.Format("20060102"), format),
	}, nil
}

func stringParam(params map[string]any, key, fallback string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func stringSliceParam(params map[string]any, key string) []string {
	out := []string{}
	switch v := params[key].(type) {
	case []string:
		return v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
