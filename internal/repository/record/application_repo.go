package record

import (
	"context"
	"encoding/json"
	"fmt"

	"chamba-onchain-backend/internal/domain"
)

type applicationRepo struct {
	store domain.RecordStore
}

// NewApplicationRepository stores each student's applications as one JSON list.
func NewApplicationRepository(store domain.RecordStore) domain.ApplicationRepository {
	return &applicationRepo{store: store}
}

// ListByStudent returns an empty list when nothing was stored.
func (r *applicationRepo) ListByStudent(ctx context.Context, studentAddress string) ([]domain.JobApplication, error) {
	raw, ok, err := r.store.Get(ctx, domain.ApplicationsKey(studentAddress))
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.JobApplication{}, nil
	}
	var apps []domain.JobApplication
	if err := json.Unmarshal(raw, &apps); err != nil {
		return nil, fmt.Errorf("decode applications %s: %w", studentAddress, err)
	}
	return apps, nil
}

// SaveAll overwrites the stored list. Joined job details are not persisted.
func (r *applicationRepo) SaveAll(ctx context.Context, studentAddress string, apps []domain.JobApplication) error {
	stripped := make([]domain.JobApplication, len(apps))
	for i, a := range apps {
		a.Job = nil
		stripped[i] = a
	}
	raw, err := json.Marshal(stripped)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, domain.ApplicationsKey(studentAddress), raw)
}
