package dto

import "time"

type ScheduledJobResponse struct {
	Id             string    `json:"id"`
	TaskName       string    `json:"task_name"`
	ScheduleType   string    `json:"schedule_type"`
	CronExpression string    `json:"cron_expression"`
	Priority       string    `json:"priority"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

type AgentDescriptor struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	AlwaysRuns  bool   `json:"always_runs"`
	Description string `json:"description"`
}

type ActionDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ActionCatalogResponse struct {
	Actions []ActionDescriptor `json:"actions"`
}
