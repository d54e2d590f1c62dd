package domain

import (
	"context"
	"strings"
)

// Record key namespaces
const (
	ProfileKeyPrefix      = "studentProfile_"
	ApplicationsKeyPrefix = "applications_"
)

// RecordStore is a last-write-wins key-value store, independent of the contract.
type RecordStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

func ProfileKey(address string) string {
	return ProfileKeyPrefix + strings.ToLower(address)
}

func ApplicationsKey(address string) string {
	return ApplicationsKeyPrefix + strings.ToLower(address)
}
