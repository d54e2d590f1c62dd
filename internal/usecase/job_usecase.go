package usecase

import (
	"context"
	"strings"

	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/apperror"
)

type jobUsecase struct {
	jobRepo domain.JobRepository
}

func NewJobUsecase(jobRepo domain.JobRepository) domain.JobUsecase {
	return &jobUsecase{jobRepo: jobRepo}
}

// ListJobs filters the catalog by a case-insensitive search term over
// title, company, description and requirements, then by job type.
func (u *jobUsecase) ListJobs(ctx context.Context, search, jobType string) ([]domain.Job, error) {
	if !validJobType(jobType) {
		return nil, apperror.BadRequest("Invalid job type")
	}

	jobs, err := u.jobRepo.All(ctx)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]domain.Job, 0, len(jobs))
	for _, job := range jobs {
		if term != "" && !matchesJob(job, term) {
			continue
		}
		if jobType != "" && jobType != domain.JobTypeAll && job.Type != jobType {
			continue
		}
		out = append(out, job)
	}
	return out, nil
}

func (u *jobUsecase) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	job, err := u.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("Job not found")
	}
	return job, nil
}

func matchesJob(job domain.Job, term string) bool {
	if strings.Contains(strings.ToLower(job.Title), term) ||
		strings.Contains(strings.ToLower(job.Company), term) ||
		strings.Contains(strings.ToLower(job.Description), term) {
		return true
	}
	for _, req := range job.Requirements {
		if strings.Contains(strings.ToLower(req), term) {
			return true
		}
	}
	return false
}

func validJobType(t string) bool {
	switch t {
	case "", domain.JobTypeAll, domain.JobTypeFullTime, domain.JobTypePartTime, domain.JobTypeContract, domain.JobTypeInternship:
		return true
	}
	return false
}
