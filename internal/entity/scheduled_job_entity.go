package entity

import (
	"time"

	"github.com/google/uuid"
)

type ScheduledJob struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	TaskName       string
	ScheduleType   string
	CronExpression string
	Priority       string
	Description    string `gorm:"type:text"`
	Status         string `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
