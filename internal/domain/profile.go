package domain

import (
	"context"
	"time"
)

type StudentProfile struct {
	Address     string    `json:"address" validate:"required"`
	Description string    `json:"description,omitempty" validate:"max=1000"`
	Github      string    `json:"github,omitempty" validate:"omitempty,url,max=255"`
	Linkedin    string    `json:"linkedin,omitempty" validate:"omitempty,url,max=255"`
	Portfolio   string    `json:"portfolio,omitempty" validate:"omitempty,url,max=255"`
	Website     string    `json:"website,omitempty" validate:"omitempty,url,max=255"`
	Email       string    `json:"email,omitempty" validate:"omitempty,email,max=255"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProfileRepository interface {
	GetByAddress(ctx context.Context, address string) (*StudentProfile, error)
	Save(ctx context.Context, profile *StudentProfile) error
}

type ProfileUsecase interface {
	GetProfile(ctx context.Context, address string) (*StudentProfile, error)
	SaveProfile(ctx context.Context, profile *StudentProfile) error
	UpdateProfile(ctx context.Context, address string, updates *StudentProfile) (*StudentProfile, error)
}
