package agent

import (
	"context"
	"sync"
	"time"
)

// Job is one scheduled task definition.
type Job struct {
	ID             string    `json:"id"`
	TaskName       string    `json:"task_name"`
	ScheduleType   string    `json:"schedule_type"`
	CronExpression string    `json:"cron_expression"`
	Priority       string    `json:"priority"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// JobStore persists scheduled jobs.
type JobStore interface {
	CreateJob(ctx context.Context, job Job) (string, error)
	ListJobs(ctx context.Context) ([]Job, error)
}

// MemoryJobStore keeps jobs in memory, for demo deployments and tests.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs []Job
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: []Job{}}
}

func (s *MemoryJobStore) CreateJob(ctx context.Context, job Job) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return job.ID, nil
}

func (s *MemoryJobStore) ListJobs(ctx context.Context) ([]Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Job, len(s.jobs))
	copy(out, s.jobs)
	return out, nil
}
