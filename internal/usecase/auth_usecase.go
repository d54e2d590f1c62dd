package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/apperror"
	"chamba-onchain-backend/pkg/logger"
	"chamba-onchain-backend/pkg/validation"
	"chamba-onchain-backend/pkg/wallet"
)

const challengeTTL = 5 * time.Minute

// TokenIssuer signs bearer tokens for a wallet address.
type TokenIssuer interface {
	Issue(address, kind string) (string, time.Time, error)
}

// SignInGuard tracks failed sign-ins per wallet. Nil disables blocking.
type SignInGuard interface {
	IsBlocked(ctx context.Context, wallet string) (bool, error)
	RecordFailure(ctx context.Context, wallet, reason string) (bool, error)
	Clear(ctx context.Context, wallet string) error
}

type authUsecase struct {
	session domain.WalletSession
	nonces  domain.NonceStore
	issuer  TokenIssuer
	guard   SignInGuard
	now     func() time.Time
}

func NewAuthUsecase(session domain.WalletSession, nonces domain.NonceStore, issuer TokenIssuer, guard SignInGuard) domain.AuthUsecase {
	return &authUsecase{session: session, nonces: nonces, issuer: issuer, guard: guard, now: time.Now}
}

// IssueSessionToken returns a token bound to the connected wallet account.
func (u *authUsecase) IssueSessionToken(ctx context.Context) (*domain.AuthToken, error) {
	state := u.session.Current()
	if !state.Connected || state.Address == "" {
		return nil, domain.ErrWalletNotConnected
	}
	return u.issue(state.Address, domain.TokenKindSession)
}

func signInMessage(address, nonce string) string {
	return fmt.Sprintf("Chamba On Chain sign-in\nAddress: %s\nNonce: %s", address, nonce)
}

func (u *authUsecase) Challenge(ctx context.Context, address string) (*domain.SignInChallenge, error) {
	addr, err := validation.NormalizeAddress(address)
	if err != nil {
		return nil, apperror.BadRequest("Invalid wallet address")
	}

	nonce := uuid.NewString()
	if err := u.nonces.Save(ctx, addr, nonce, challengeTTL); err != nil {
		return nil, err
	}
	return &domain.SignInChallenge{
		Address:   addr,
		Nonce:     nonce,
		Message:   signInMessage(addr, nonce),
		ExpiresAt: u.now().Add(challengeTTL),
	}, nil
}

// Verify consumes the outstanding nonce for address, so each challenge can
// be answered once.
func (u *authUsecase) Verify(ctx context.Context, address, signature string) (*domain.AuthToken, error) {
	addr, err := validation.NormalizeAddress(address)
	if err != nil {
		return nil, apperror.BadRequest("Invalid wallet address")
	}

	if u.guard != nil {
		blocked, err := u.guard.IsBlocked(ctx, addr)
		if err != nil {
			// tracker outages must not lock everyone out
			logger.Log.Warn("sign-in block check failed", "address", addr, "error", err)
		} else if blocked {
			return nil, apperror.TooManyRequests("Too many failed sign-in attempts, try again later")
		}
	}

	nonce, ok, err := u.nonces.Consume(ctx, addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.Unauthorized("Sign-in challenge expired or not found")
	}

	if err := wallet.VerifyPersonalSign(common.HexToAddress(addr), signInMessage(addr, nonce), signature); err != nil {
		logger.Log.Warn("sign-in signature rejected", "address", addr, "error", err)
		u.recordFailure(ctx, addr, "invalid_signature")
		return nil, apperror.Unauthorized("Invalid signature")
	}
	if u.guard != nil {
		if err := u.guard.Clear(ctx, addr); err != nil {
			logger.Log.Warn("failed to clear sign-in failures", "address", addr, "error", err)
		}
	}
	return u.issue(addr, domain.TokenKindViewer)
}

func (u *authUsecase) recordFailure(ctx context.Context, addr, reason string) {
	if u.guard == nil {
		return
	}
	if _, err := u.guard.RecordFailure(ctx, addr, reason); err != nil {
		logger.Log.Warn("failed to record sign-in failure", "address", addr, "error", err)
	}
}

func (u *authUsecase) issue(address, kind string) (*domain.AuthToken, error) {
	token, exp, err := u.issuer.Issue(address, kind)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.AuthToken{Token: token, Address: address, Kind: kind, ExpiresAt: exp}, nil
}
