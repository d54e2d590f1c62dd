package domain

import "context"

// AccessGrant is one (owner, viewer) row of the contract's access relation.
// Revoked grants stay in the list with Active=false.
type AccessGrant struct {
	Viewer string `json:"viewer"`
	Active bool   `json:"active"`
}

type AccessUsecase interface {
	Load(ctx context.Context, owner string) ([]AccessGrant, error)
	Grant(ctx context.Context, owner, viewer string) ([]AccessGrant, *TxResult, error)
	Revoke(ctx context.Context, owner, viewer string) ([]AccessGrant, *TxResult, error)
}
