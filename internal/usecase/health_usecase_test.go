package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"chamba-onchain-backend/internal/usecase"
)

func TestHealthCheck(t *testing.T) {
	uc := usecase.NewHealthUsecase(map[string]usecase.HealthCheck{
		"records": func(context.Context) error { return nil },
		"redis":   func(context.Context) error { return errors.New("connection refused") },
	})

	got := uc.Check(context.Background())
	assert.Equal(t, "degraded", got["status"])
	assert.Equal(t, "ok", got["records"])
	assert.Equal(t, "connection refused", got["redis"])

	assert.Equal(t, map[string]string{"status": "ok"}, usecase.NewHealthUsecase(nil).Check(context.Background()))
}
