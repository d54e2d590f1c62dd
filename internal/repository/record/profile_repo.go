package record

import (
	"context"
	"encoding/json"
	"fmt"

	"chamba-onchain-backend/internal/domain"
)

type profileRepo struct {
	store domain.RecordStore
}

// NewProfileRepository stores one JSON profile per lower-cased address.
func NewProfileRepository(store domain.RecordStore) domain.ProfileRepository {
	return &profileRepo{store: store}
}

// GetByAddress returns domain.ErrNotFound when no profile was saved.
func (r *profileRepo) GetByAddress(ctx context.Context, address string) (*domain.StudentProfile, error) {
	raw, ok, err := r.store.Get(ctx, domain.ProfileKey(address))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	var profile domain.StudentProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", address, err)
	}
	return &profile, nil
}

func (r *profileRepo) Save(ctx context.Context, profile *domain.StudentProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, domain.ProfileKey(profile.Address), raw)
}
