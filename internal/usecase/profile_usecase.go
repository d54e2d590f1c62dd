package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/apperror"
	"chamba-onchain-backend/pkg/validation"
)

type profileUsecase struct {
	profileRepo domain.ProfileRepository
	validate    *validator.Validate
	now         func() time.Time
}

func NewProfileUsecase(profileRepo domain.ProfileRepository, validate *validator.Validate) domain.ProfileUsecase {
	return &profileUsecase{profileRepo: profileRepo, validate: validate, now: time.Now}
}

func (u *profileUsecase) GetProfile(ctx context.Context, address string) (*domain.StudentProfile, error) {
	profile, err := u.profileRepo.GetByAddress(ctx, address)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Profile not found")
		}
		return nil, err
	}
	return profile, nil
}

// SaveProfile overwrites the whole profile.
func (u *profileUsecase) SaveProfile(ctx context.Context, profile *domain.StudentProfile) error {
	if err := u.validate.Struct(profile); err != nil {
		return validationFailure(err)
	}
	profile.UpdatedAt = u.now()
	return u.profileRepo.Save(ctx, profile)
}

// UpdateProfile merges the non-empty fields of updates into the stored profile.
func (u *profileUsecase) UpdateProfile(ctx context.Context, address string, updates *domain.StudentProfile) (*domain.StudentProfile, error) {
	current, err := u.profileRepo.GetByAddress(ctx, address)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		current = &domain.StudentProfile{Address: address}
	}

	merge := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	merge(&current.Description, updates.Description)
	merge(&current.Github, updates.Github)
	merge(&current.Linkedin, updates.Linkedin)
	merge(&current.Portfolio, updates.Portfolio)
	merge(&current.Website, updates.Website)
	merge(&current.Email, updates.Email)
	current.Address = address

	if err := u.SaveProfile(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func validationFailure(err error) error {
	appErr := apperror.BadRequest("Validation failed")
	appErr.Err = err
	if msgs := validation.FormatValidationErrors(err); len(msgs) > 0 {
		appErr.Message = msgs[0]
	}
	return appErr
}
