package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/internal/usecase"
	"chamba-onchain-backend/pkg/apperror"
)

func TestAccessGrant(t *testing.T) {
	ctx := context.Background()

	t.Run("Should grant then reload the list", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("Allow", mock.Anything, ownerAddr, viewerAddr).Return(&domain.TxResult{Hash: "0x1"}, nil)
		gw.On("ShareAccess", mock.Anything, ownerAddr).Return([]domain.AccessGrant{{Viewer: viewerAddr, Active: true}}, nil)
		uc := usecase.NewAccessUsecase(gw)

		grants, tx, err := uc.Grant(ctx, ownerAddr, viewerAddr)
		require.NoError(t, err)
		assert.Equal(t, "0x1", tx.Hash)
		require.Len(t, grants, 1)
		assert.True(t, grants[0].Active)
	})

	t.Run("Should normalize lower-case viewer addresses", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("Allow", mock.Anything, ownerAddr, viewerAddr).Return(&domain.TxResult{Hash: "0x1"}, nil)
		gw.On("ShareAccess", mock.Anything, ownerAddr).Return([]domain.AccessGrant{}, nil)
		uc := usecase.NewAccessUsecase(gw)

		_, _, err := uc.Grant(ctx, ownerAddr, "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
		require.NoError(t, err)
		gw.AssertCalled(t, "Allow", mock.Anything, ownerAddr, viewerAddr)
	})

	t.Run("Should reject malformed addresses before any network call", func(t *testing.T) {
		gw := new(MockGateway)
		uc := usecase.NewAccessUsecase(gw)

		for _, addr := range []string{"", "0x123", "hello", "0x0000000000000000000000000000000000000000"} {
			_, _, err := uc.Grant(ctx, ownerAddr, addr)
			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr, addr)
			assert.Equal(t, http.StatusBadRequest, appErr.Code)
		}
		gw.AssertNotCalled(t, "Allow", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should keep the transaction when reload fails", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("Allow", mock.Anything, ownerAddr, viewerAddr).Return(&domain.TxResult{Hash: "0x1", Pending: true}, nil)
		gw.On("ShareAccess", mock.Anything, ownerAddr).Return(nil, errors.New("rpc down"))
		uc := usecase.NewAccessUsecase(gw)

		grants, tx, err := uc.Grant(ctx, ownerAddr, viewerAddr)
		require.NoError(t, err)
		assert.Nil(t, grants)
		assert.True(t, tx.Pending)
	})

	t.Run("Should reject a second mutation while one is pending", func(t *testing.T) {
		gw := new(MockGateway)
		entered := make(chan struct{})
		release := make(chan struct{})
		gw.On("Allow", mock.Anything, ownerAddr, viewerAddr).
			Run(func(mock.Arguments) {
				close(entered)
				<-release
			}).
			Return(&domain.TxResult{Hash: "0x1"}, nil)
		gw.On("ShareAccess", mock.Anything, ownerAddr).Return([]domain.AccessGrant{}, nil)
		uc := usecase.NewAccessUsecase(gw)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := uc.Grant(ctx, ownerAddr, viewerAddr)
			assert.NoError(t, err)
		}()
		<-entered

		_, _, err := uc.Grant(ctx, ownerAddr, otherAddr)
		assert.ErrorIs(t, err, domain.ErrMutationPending)

		close(release)
		wg.Wait()
	})
}

func TestAccessRevoke(t *testing.T) {
	ctx := context.Background()

	t.Run("Should revoke an active grant", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("ShareAccess", mock.Anything, ownerAddr).Return([]domain.AccessGrant{{Viewer: viewerAddr, Active: true}}, nil).Once()
		gw.On("Disallow", mock.Anything, ownerAddr, viewerAddr).Return(&domain.TxResult{Hash: "0x2"}, nil)
		gw.On("ShareAccess", mock.Anything, ownerAddr).Return([]domain.AccessGrant{{Viewer: viewerAddr, Active: false}}, nil).Once()
		uc := usecase.NewAccessUsecase(gw)

		grants, tx, err := uc.Revoke(ctx, ownerAddr, viewerAddr)
		require.NoError(t, err)
		assert.Equal(t, "0x2", tx.Hash)
		require.Len(t, grants, 1)
		assert.False(t, grants[0].Active)
	})

	t.Run("Should refuse to revoke an inactive grant", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("ShareAccess", mock.Anything, ownerAddr).Return([]domain.AccessGrant{{Viewer: viewerAddr, Active: false}}, nil)
		uc := usecase.NewAccessUsecase(gw)

		_, _, err := uc.Revoke(ctx, ownerAddr, viewerAddr)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.Code)
		gw.AssertNotCalled(t, "Disallow", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAccessLoad(t *testing.T) {
	gw := new(MockGateway)
	gw.On("ShareAccess", mock.Anything, ownerAddr).
		Return(nil, domain.NewChainError("shareAccess", domain.KindNetworkTimeout, "timeout", nil)).Once()
	uc := usecase.NewAccessUsecase(gw)

	_, err := uc.Load(context.Background(), ownerAddr)
	assert.Equal(t, domain.KindNetworkTimeout, domain.KindOf(err))
	gw.AssertNumberOfCalls(t, "ShareAccess", 1)
}
