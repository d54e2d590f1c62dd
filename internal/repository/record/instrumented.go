package record

import (
	"context"

	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/metrics"
)

type instrumented struct {
	backend string
	next    domain.RecordStore
}

// Instrument counts operations of next under the given backend label.
func Instrument(backend string, next domain.RecordStore) domain.RecordStore {
	return &instrumented{backend: backend, next: next}
}

func (s *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok, err := s.next.Get(ctx, key)
	metrics.RecordStoreOps.WithLabelValues(s.backend, "get", metrics.Status(err)).Inc()
	return v, ok, err
}

func (s *instrumented) Put(ctx context.Context, key string, value []byte) error {
	err := s.next.Put(ctx, key, value)
	metrics.RecordStoreOps.WithLabelValues(s.backend, "put", metrics.Status(err)).Inc()
	return err
}
