package dto

import (
	"encoding/json"
	"time"
)

type JobCreateDTO struct {
	Type       string          `json:"type" validate:"required"`
	Payload    json.RawMessage `json:"payload" validate:"required"`
	MaxRetries int             `json:"max_retries" validate:"gte=0,lte=20"`
}

type JobCreatedDTO struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

type JobResponseDTO struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	RetryCount  int             `json:"retry_count"`
	MaxRetries  int             `json:"max_retries"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

type TriggerResponseDTO struct {
	Success        bool `json:"success"`
	ProcessedCount int  `json:"processedCount"`
}
