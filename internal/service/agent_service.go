package service

import (
	"context"

	"ai-bizops-be/internal/dto"
	"ai-bizops-be/pkg/agent"
)

type IAgentService interface {
	ListAgents(ctx context.Context) ([]*dto.AgentDescriptor, error)
	ListJobs(ctx context.Context) ([]*dto.ScheduledJobResponse, error)
	ActionCatalog(ctx context.Context) (*dto.ActionCatalogResponse, error)
}

type agentService struct {
	orchestrator *agent.Orchestrator
}

func NewAgentService(orchestrator *agent.Orchestrator) IAgentService {
	return &agentService{orchestrator: orchestrator}
}

func (s *agentService) ListAgents(ctx context.Context) ([]*dto.AgentDescriptor, error) {
	return []*dto.AgentDescriptor{
		{Name: "Research Agent", Role: "research", AlwaysRuns: true, Description: "Searches the document knowledge base and summarizes findings"},
		{Name: "Analyst Agent", Role: "analysis", AlwaysRuns: false, Description: "Runs data analysis, detects patterns and builds chart specs"},
		{Name: "Reasoning Agent", Role: "reasoning", AlwaysRuns: true, Description: "Synthesizes context into the final response"},
		{Name: "Action Agent", Role: "action", AlwaysRuns: false, Description: "Executes actions like reports, emails and alerts"},
		{Name: "Scheduler Agent", Role: "scheduling", AlwaysRuns: false, Description: "Parses scheduling requests into recurring jobs"},
	}, nil
}

func (s *agentService) ListJobs(ctx context.Context) ([]*dto.ScheduledJobResponse, error) {
	jobs, err := s.orchestrator.Scheduler().ListJobs(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ScheduledJobResponse, len(jobs))
	for i, job := range jobs {
		res[i] = &dto.ScheduledJobResponse{
			Id:             job.ID,
			TaskName:       job.TaskName,
			ScheduleType:   job.ScheduleType,
			CronExpression: job.CronExpression,
			Priority:       job.Priority,
			Description:    job.Description,
			Status:         job.Status,
			CreatedAt:      job.CreatedAt,
		}
	}
	return res, nil
}

func (s *agentService) ActionCatalog(ctx context.Context) (*dto.ActionCatalogResponse, error) {
	catalog := s.orchestrator.ActionCatalog()
	actions := make([]dto.ActionDescriptor, len(catalog))
	for i, entry := range catalog {
		actions[i] = dto.ActionDescriptor{
			Name:        entry["name"],
			Description: entry["description"],
		}
	}
	return &dto.ActionCatalogResponse{Actions: actions}, nil
}
