package entity

import (
	"time"

	"github.com/google/uuid"
)

// Business data tables the analyst queries against.

type Sale struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Date      time.Time `gorm:"index"`
	Amount    float64
	Orders    int
	Region    string
	CreatedAt time.Time
}

type Customer struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string
	Segment   string `gorm:"index"`
	Revenue   float64
	CreatedAt time.Time
}

type Product struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string
	Category  string `gorm:"index"`
	Price     float64
	Stock     int
	CreatedAt time.Time
}

type SupportTicket struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Category  string `gorm:"index"`
	Status    string `gorm:"index"`
	Priority  string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type Metric struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"index"`
	Value     float64
	Date      time.Time `gorm:"index"`
	CreatedAt time.Time
}
