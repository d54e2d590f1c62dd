package domain

import (
	"context"
	"time"
)

// AssetPointer references an uploaded document recorded on-chain.
type AssetPointer struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

type RetrievalState string

const (
	RetrievalLoading RetrievalState = "loading"
	RetrievalError   RetrievalState = "error"
	RetrievalReady   RetrievalState = "ready"
)

// RetrievalSnapshot is a point-in-time view of one asset retrieval flow.
type RetrievalSnapshot struct {
	Owner     string         `json:"owner"`
	Viewer    string         `json:"viewer"`
	State     RetrievalState `json:"state"`
	Assets    []AssetPointer `json:"assets"`
	Error     string         `json:"error,omitempty"`
	ErrorKind ErrorKind      `json:"error_kind,omitempty"`
	Attempts  int            `json:"attempts"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TxResult is returned by state-changing gateway calls that wait for confirmation.
type TxResult struct {
	Hash string `json:"hash"`
	// Pending is set when confirmation timed out: the transaction was sent
	// but its outcome is unknown.
	Pending bool `json:"pending"`
}

// ContractGateway wraps the single gateway contract. Every error it returns is a *ChainError.
type ContractGateway interface {
	Add(ctx context.Context, owner, url string) (string, error)
	Display(ctx context.Context, owner, viewer string) ([]string, error)
	Allow(ctx context.Context, owner, viewer string) (*TxResult, error)
	Disallow(ctx context.Context, owner, viewer string) (*TxResult, error)
	ShareAccess(ctx context.Context, owner string) ([]AccessGrant, error)
}

// StorageBackend stores bytes and returns a stable dereferenceable URL.
type StorageBackend interface {
	Name() string
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// UploadResult is the outcome of the two-phase upload flow.
type UploadResult struct {
	Asset   AssetPointer `json:"asset"`
	TxHash  string       `json:"tx_hash"`
	Backend string       `json:"backend"`
}

type AssetUsecase interface {
	Retrieve(ctx context.Context, viewer, owner string, wait bool) (*RetrievalSnapshot, error)
	Refresh(ctx context.Context, viewer, owner string) (*RetrievalSnapshot, error)
	Upload(ctx context.Context, owner, filename string, data []byte) (*UploadResult, error)
	ReleaseViewer(viewer string)
	// Close cancels every flow and pending retry.
	Close()
}
