package models

import (
	"time"

	"gorm.io/datatypes"
)

// Job is the durable record of a deferred unit of work. A row is created by
// the API layer with status "pending" and is mutated only by the processor
// afterwards. Jobs are never deleted by this service.
type Job struct {
	ID          string         `gorm:"type:varchar(36);primaryKey"`
	UserID      string         `gorm:"type:varchar(255);not null;index"`
	Type        string         `gorm:"type:varchar(255);not null"`
	Payload     datatypes.JSON `gorm:"type:jsonb"`
	Status      string         `gorm:"type:varchar(50);not null;default:'pending';index:idx_jobs_status_created,priority:1"`
	RetryCount  int            `gorm:"default:0;not null"`
	MaxRetries  int            `gorm:"default:3;not null"`
	Result      datatypes.JSON `gorm:"type:jsonb"`
	Error       string         `gorm:"type:text"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index:idx_jobs_status_created,priority:2"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	CompletedAt *time.Time
}
