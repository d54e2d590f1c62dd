package domain

import (
	"context"
	"time"
)

// Job types offered by the catalog
const (
	JobTypeFullTime   = "Full-time"
	JobTypePartTime   = "Part-time"
	JobTypeContract   = "Contract"
	JobTypeInternship = "Internship"
	JobTypeAll        = "All"
)

type Job struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements"`
	Location     string    `json:"location,omitempty"`
	Type         string    `json:"type,omitempty"`
	Salary       string    `json:"salary,omitempty"`
	PostedAt     time.Time `json:"posted_at"`
}

type JobRepository interface {
	All(ctx context.Context) ([]Job, error)
	GetByID(ctx context.Context, id string) (*Job, error)
}

type JobUsecase interface {
	ListJobs(ctx context.Context, search, jobType string) ([]Job, error)
	GetJob(ctx context.Context, id string) (*Job, error)
}
