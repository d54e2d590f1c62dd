package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/apperror"
)

type applicationUsecase struct {
	appRepo domain.ApplicationRepository
	jobRepo domain.JobRepository
	now     func() time.Time

	locks sync.Map // lower-case address -> *sync.Mutex
}

func NewApplicationUsecase(appRepo domain.ApplicationRepository, jobRepo domain.JobRepository) domain.ApplicationUsecase {
	return &applicationUsecase{appRepo: appRepo, jobRepo: jobRepo, now: time.Now}
}

// lock serializes read-modify-write cycles on one student's list.
func (u *applicationUsecase) lock(student string) func() {
	m, _ := u.locks.LoadOrStore(strings.ToLower(student), &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ApplyToJob creates one application per (student, job). A repeated call
// fails with domain.ErrAlreadyApplied and leaves the list untouched.
func (u *applicationUsecase) ApplyToJob(ctx context.Context, studentAddress, jobID string) (*domain.JobApplication, error) {
	job, err := u.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Job not found")
		}
		return nil, err
	}

	unlock := u.lock(studentAddress)
	defer unlock()

	apps, err := u.appRepo.ListByStudent(ctx, studentAddress)
	if err != nil {
		return nil, err
	}
	for _, a := range apps {
		if a.JobID == jobID {
			return nil, domain.ErrAlreadyApplied
		}
	}

	now := u.now()
	app := domain.JobApplication{
		ID:             fmt.Sprintf("app-%d-%s", now.UnixMilli(), uuid.NewString()[:8]),
		JobID:          jobID,
		StudentAddress: studentAddress,
		AppliedAt:      now,
		Status:         domain.ApplicationStatusApplied,
	}
	if err := u.appRepo.SaveAll(ctx, studentAddress, append(apps, app)); err != nil {
		return nil, err
	}

	app.Job = job
	return &app, nil
}

// GetMyApplications joins applications with catalog jobs, newest first.
// Applications whose job no longer exists are dropped.
func (u *applicationUsecase) GetMyApplications(ctx context.Context, studentAddress, status string) ([]domain.JobApplication, error) {
	if status != "" && !domain.ValidApplicationStatus(status) {
		return nil, apperror.BadRequest("Invalid application status")
	}

	apps, err := u.appRepo.ListByStudent(ctx, studentAddress)
	if err != nil {
		return nil, err
	}

	out := make([]domain.JobApplication, 0, len(apps))
	for _, a := range apps {
		if status != "" && a.Status != status {
			continue
		}
		job, err := u.jobRepo.GetByID(ctx, a.JobID)
		if err != nil {
			continue
		}
		a.Job = job
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AppliedAt.After(out[j].AppliedAt)
	})
	return out, nil
}

func (u *applicationUsecase) HasApplied(ctx context.Context, studentAddress, jobID string) (bool, error) {
	apps, err := u.appRepo.ListByStudent(ctx, studentAddress)
	if err != nil {
		return false, err
	}
	for _, a := range apps {
		if a.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (u *applicationUsecase) UpdateApplicationStatus(ctx context.Context, studentAddress, applicationID, status string) (*domain.JobApplication, error) {
	if !domain.ValidApplicationStatus(status) {
		return nil, apperror.BadRequest("Invalid application status")
	}

	unlock := u.lock(studentAddress)
	defer unlock()

	apps, err := u.appRepo.ListByStudent(ctx, studentAddress)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range apps {
		if apps[i].ID == applicationID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apperror.NotFound("Application not found")
	}

	apps[idx].Status = status
	if err := u.appRepo.SaveAll(ctx, studentAddress, apps); err != nil {
		return nil, err
	}

	updated := apps[idx]
	if job, err := u.jobRepo.GetByID(ctx, updated.JobID); err == nil {
		updated.Job = job
	}
	return &updated, nil
}
