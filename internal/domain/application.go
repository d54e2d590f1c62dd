package domain

import (
	"context"
	"time"
)

// Application status values
const (
	ApplicationStatusApplied  = "Applied"
	ApplicationStatusInReview = "In Review"
	ApplicationStatusAccepted = "Accepted"
	ApplicationStatusRejected = "Rejected"
)

// ValidApplicationStatus reports whether s is one of the known statuses.
func ValidApplicationStatus(s string) bool {
	switch s {
	case ApplicationStatusApplied, ApplicationStatusInReview, ApplicationStatusAccepted, ApplicationStatusRejected:
		return true
	}
	return false
}

// JobApplication links a wallet address to a catalog job. At most one per (StudentAddress, JobID).
type JobApplication struct {
	ID             string    `json:"id"`
	JobID          string    `json:"job_id"`
	StudentAddress string    `json:"student_address"`
	AppliedAt      time.Time `json:"applied_at"`
	Status         string    `json:"status"`
	Job            *Job      `json:"job,omitempty"`
}

// ApplicationRepository persists the whole application list of one student.
type ApplicationRepository interface {
	ListByStudent(ctx context.Context, studentAddress string) ([]JobApplication, error)
	SaveAll(ctx context.Context, studentAddress string, apps []JobApplication) error
}

type ApplicationUsecase interface {
	ApplyToJob(ctx context.Context, studentAddress, jobID string) (*JobApplication, error)
	GetMyApplications(ctx context.Context, studentAddress, status string) ([]JobApplication, error)
	HasApplied(ctx context.Context, studentAddress, jobID string) (bool, error)
	UpdateApplicationStatus(ctx context.Context, studentAddress, applicationID, status string) (*JobApplication, error)
}
