package usecase

import (
	"context"
	"strings"
	"sync"

	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/apperror"
	"chamba-onchain-backend/pkg/logger"
	"chamba-onchain-backend/pkg/validation"
)

type accessUsecase struct {
	gateway domain.ContractGateway

	mu      sync.Mutex
	pending map[string]bool // owner (lower-case) -> mutation in flight
}

func NewAccessUsecase(gateway domain.ContractGateway) domain.AccessUsecase {
	return &accessUsecase{gateway: gateway, pending: make(map[string]bool)}
}

// Load reads the owner's grants with a single attempt.
func (u *accessUsecase) Load(ctx context.Context, owner string) ([]domain.AccessGrant, error) {
	return u.gateway.ShareAccess(ctx, owner)
}

func (u *accessUsecase) Grant(ctx context.Context, owner, viewer string) ([]domain.AccessGrant, *domain.TxResult, error) {
	viewer, err := validation.NormalizeAddress(viewer)
	if err != nil {
		return nil, nil, apperror.BadRequest("Invalid viewer address")
	}
	if strings.EqualFold(owner, viewer) {
		return nil, nil, apperror.BadRequest("You already have access to your own files")
	}

	release, err := u.acquire(owner)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	tx, err := u.gateway.Allow(ctx, owner, viewer)
	if err != nil {
		return nil, nil, err
	}
	logger.Log.Info("access granted", "owner", owner, "viewer", viewer, "tx", tx.Hash, "pending", tx.Pending)
	return u.reload(ctx, owner), tx, nil
}

// Revoke only applies to grants that are currently active.
func (u *accessUsecase) Revoke(ctx context.Context, owner, viewer string) ([]domain.AccessGrant, *domain.TxResult, error) {
	viewer, err := validation.NormalizeAddress(viewer)
	if err != nil {
		return nil, nil, apperror.BadRequest("Invalid viewer address")
	}

	release, err := u.acquire(owner)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	grants, err := u.gateway.ShareAccess(ctx, owner)
	if err != nil {
		return nil, nil, err
	}
	if !activeGrant(grants, viewer) {
		return nil, nil, apperror.BadRequest("This address does not have active access")
	}

	tx, err := u.gateway.Disallow(ctx, owner, viewer)
	if err != nil {
		return nil, nil, err
	}
	logger.Log.Info("access revoked", "owner", owner, "viewer", viewer, "tx", tx.Hash, "pending", tx.Pending)
	return u.reload(ctx, owner), tx, nil
}

// acquire marks a mutation in flight for owner; a second one is rejected.
func (u *accessUsecase) acquire(owner string) (func(), error) {
	key := strings.ToLower(owner)
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.pending[key] {
		return nil, domain.ErrMutationPending
	}
	u.pending[key] = true
	return func() {
		u.mu.Lock()
		delete(u.pending, key)
		u.mu.Unlock()
	}, nil
}

// reload refreshes the list after a sent transaction. A failed reload is
// logged rather than reported since the transaction itself went through.
func (u *accessUsecase) reload(ctx context.Context, owner string) []domain.AccessGrant {
	grants, err := u.gateway.ShareAccess(ctx, owner)
	if err != nil {
		logger.Log.Warn("access list reload failed", "owner", owner, "error", err)
		return nil
	}
	return grants
}

func activeGrant(grants []domain.AccessGrant, viewer string) bool {
	for _, g := range grants {
		if strings.EqualFold(g.Viewer, viewer) && g.Active {
			return true
		}
	}
	return false
}
