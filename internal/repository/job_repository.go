package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ai-bizops-be/internal/entity"
	"ai-bizops-be/pkg/agent"
)

// JobRepositoryImpl persists scheduled jobs through gorm. It satisfies
// agent.JobStore so the scheduler agent can write straight to the database.
type JobRepositoryImpl struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) agent.JobStore {
	return &JobRepositoryImpl{db: db}
}

func (r *JobRepositoryImpl) CreateJob(ctx context.Context, job agent.Job) (string, error) {
	id, err := uuid.Parse(job.ID)
	if err != nil {
		id = uuid.New()
	}
	record := entity.ScheduledJob{
		Id:             id,
		TaskName:       job.TaskName,
		ScheduleType:   job.ScheduleType,
		CronExpression: job.CronExpression,
		Priority:       job.Priority,
		Description:    job.Description,
		Status:         job.Status,
		CreatedAt:      job.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", err
	}
	return id.String(), nil
}

func (r *JobRepositoryImpl) ListJobs(ctx context.Context) ([]agent.Job, error) {
	var records []entity.ScheduledJob
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	jobs := make([]agent.Job, len(records))
	for i, rec := range records {
		jobs[i] = agent.Job{
			ID:             rec.Id.String(),
			TaskName:       rec.TaskName,
			ScheduleType:   rec.ScheduleType,
			CronExpression: rec.CronExpression,
			Priority:       rec.Priority,
			Description:    rec.Description,
			Status:         rec.Status,
			CreatedAt:      rec.CreatedAt,
		}
	}
	return jobs, nil
}
