package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/internal/repository/nonce"
	"chamba-onchain-backend/internal/usecase"
	"chamba-onchain-backend/pkg/apperror"
	"chamba-onchain-backend/pkg/auth"
	"chamba-onchain-backend/pkg/wallet"
)

// Hardhat account #0, matches viewerAddr
const viewerKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcbc5ab36b50c5b8d3"

func newAuthUsecase(t *testing.T, session domain.WalletSession) (domain.AuthUsecase, *auth.Issuer) {
	return newGuardedAuthUsecase(t, session, nil)
}

func newGuardedAuthUsecase(t *testing.T, session domain.WalletSession, guard usecase.SignInGuard) (domain.AuthUsecase, *auth.Issuer) {
	t.Helper()
	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	return usecase.NewAuthUsecase(session, nonce.NewMemoryStore(), issuer, guard), issuer
}

type fakeGuard struct {
	blocked  bool
	failures []string
	cleared  []string
}

func (g *fakeGuard) IsBlocked(ctx context.Context, wallet string) (bool, error) {
	return g.blocked, nil
}

func (g *fakeGuard) RecordFailure(ctx context.Context, wallet, reason string) (bool, error) {
	g.failures = append(g.failures, wallet)
	return false, nil
}

func (g *fakeGuard) Clear(ctx context.Context, wallet string) error {
	g.cleared = append(g.cleared, wallet)
	return nil
}

func TestIssueSessionToken(t *testing.T) {
	ctx := context.Background()

	t.Run("Should require a connected wallet", func(t *testing.T) {
		uc, _ := newAuthUsecase(t, &fakeSession{})
		_, err := uc.IssueSessionToken(ctx)
		assert.ErrorIs(t, err, domain.ErrWalletNotConnected)
	})

	t.Run("Should bind the token to the active account", func(t *testing.T) {
		uc, issuer := newAuthUsecase(t, connectedSession(ownerAddr))
		tok, err := uc.IssueSessionToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.TokenKindSession, tok.Kind)

		claims, err := issuer.Parse(tok.Token)
		require.NoError(t, err)
		assert.Equal(t, ownerAddr, claims.Address)
		assert.Equal(t, domain.TokenKindSession, claims.Kind)
	})
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()
	key, err := crypto.HexToECDSA(viewerKey)
	require.NoError(t, err)

	t.Run("Should issue a viewer token for a valid signature", func(t *testing.T) {
		uc, issuer := newAuthUsecase(t, &fakeSession{})

		ch, err := uc.Challenge(ctx, "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
		require.NoError(t, err)
		assert.Equal(t, viewerAddr, ch.Address)
		assert.Contains(t, ch.Message, ch.Nonce)

		sig, err := wallet.SignPersonal(key, ch.Message)
		require.NoError(t, err)

		tok, err := uc.Verify(ctx, viewerAddr, sig)
		require.NoError(t, err)
		assert.Equal(t, domain.TokenKindViewer, tok.Kind)

		claims, err := issuer.Parse(tok.Token)
		require.NoError(t, err)
		assert.Equal(t, viewerAddr, claims.Address)

		// nonces are single use
		_, err = uc.Verify(ctx, viewerAddr, sig)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusUnauthorized, appErr.Code)
	})

	t.Run("Should reject a signature from another key", func(t *testing.T) {
		uc, _ := newAuthUsecase(t, &fakeSession{})

		ch, err := uc.Challenge(ctx, ownerAddr)
		require.NoError(t, err)
		sig, err := wallet.SignPersonal(key, ch.Message)
		require.NoError(t, err)

		_, err = uc.Verify(ctx, ownerAddr, sig)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusUnauthorized, appErr.Code)
	})

	t.Run("Should reject malformed addresses", func(t *testing.T) {
		uc, _ := newAuthUsecase(t, &fakeSession{})
		_, err := uc.Challenge(ctx, "nope")
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.Code)
	})
}

func TestSignInGuard(t *testing.T) {
	ctx := context.Background()
	key, err := crypto.HexToECDSA(viewerKey)
	require.NoError(t, err)

	t.Run("Should reject blocked wallets before consuming the nonce", func(t *testing.T) {
		guard := &fakeGuard{blocked: true}
		uc, _ := newGuardedAuthUsecase(t, &fakeSession{}, guard)

		_, err := uc.Challenge(ctx, viewerAddr)
		require.NoError(t, err)

		_, err = uc.Verify(ctx, viewerAddr, "0x00")
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusTooManyRequests, appErr.Code)
		assert.Empty(t, guard.failures)
	})

	t.Run("Should record failures and clear on success", func(t *testing.T) {
		guard := &fakeGuard{}
		uc, _ := newGuardedAuthUsecase(t, &fakeSession{}, guard)

		ch, err := uc.Challenge(ctx, ownerAddr)
		require.NoError(t, err)
		sig, err := wallet.SignPersonal(key, ch.Message)
		require.NoError(t, err)
		_, err = uc.Verify(ctx, ownerAddr, sig)
		require.Error(t, err)
		assert.Equal(t, []string{ownerAddr}, guard.failures)

		ch, err = uc.Challenge(ctx, viewerAddr)
		require.NoError(t, err)
		sig, err = wallet.SignPersonal(key, ch.Message)
		require.NoError(t, err)
		_, err = uc.Verify(ctx, viewerAddr, sig)
		require.NoError(t, err)
		assert.Equal(t, []string{viewerAddr}, guard.cleared)
	})
}
