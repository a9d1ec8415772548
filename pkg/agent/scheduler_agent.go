package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ai-bizops-be/pkg/llm"
)

// ScheduleResult is what the scheduler stage contributes to the state.
type ScheduleResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Job     *Job   `json:"job,omitempty"`
}

type scheduleConfig struct {
	TaskName       string `json:"task_name"`
	ScheduleType   string `json:"schedule_type"`
	CronExpression string `json:"cron_expression"`
	Priority       string `json:"priority"`
	Description    string `json:"description"`
}

// SchedulerAgent parses natural language into structured job definitions
// and stores them.
type SchedulerAgent struct {
	llm  llm.LLMProvider
	jobs JobStore
}

func NewSchedulerAgent(provider llm.LLMProvider, jobs JobStore) *SchedulerAgent {
	return &SchedulerAgent{
		llm:  provider,
		jobs: jobs,
	}
}

func (a *SchedulerAgent) Schedule(ctx context.Context, query string) *ScheduleResult {
	prompt := fmt.Sprintf(`
Parse the following scheduling request into a configuration:
Request: %s

Current Date: %s

Return the JSON configuration.
`, query, time.Now().Format(time.RFC3339))

	var config scheduleConfig
	schema := `{"task_name": "string", "schedule_type": "string", "cron_expression": "string", "priority": "string", "description": "string"}`
	if err := llm.GenerateJSON(ctx, a.llm, prompt, schema, &config, llm.WithSystemPrompt(schedulerSystemPrompt)); err != nil {
		return &ScheduleResult{
			Status:  "error",
			Message: fmt.Sprintf("Failed to schedule task: %v", err),
		}
	}

	job := Job{
		ID:             uuid.NewString(),
		TaskName:       config.TaskName,
		ScheduleType:   config.ScheduleType,
		CronExpression: config.CronExpression,
		Priority:       config.Priority,
		Description:    config.Description,
		Status:         "scheduled",
		CreatedAt:      time.Now(),
	}

	if _, err := a.jobs.CreateJob(ctx, job); err != nil {
		return &ScheduleResult{
			Status:  "error",
			Message: fmt.Sprintf("Failed to schedule task: %v", err),
		}
	}

	return &ScheduleResult{
		Status:  "success",
		Message: fmt.Sprintf("Scheduled task '%s' successfully.", config.TaskName),
		Job:     &job,
	}
}

func (a *SchedulerAgent) ListJobs(ctx context.Context) ([]Job, error) {
	return a.jobs.ListJobs(ctx)
}
