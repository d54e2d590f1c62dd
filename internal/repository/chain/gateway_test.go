package chain

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chamba-onchain-backend/internal/domain"
)

const (
	ownerHex  = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	viewerHex = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
)

type fakeSigner struct {
	account   common.Address
	connected bool
}

func (s *fakeSigner) ActiveAccount() (common.Address, bool) {
	return s.account, s.connected
}

func (s *fakeSigner) Transactor(ctx context.Context, account common.Address) (*bind.TransactOpts, error) {
	if !s.connected {
		return nil, domain.ErrWalletNotConnected
	}
	return &bind.TransactOpts{From: account, Context: ctx}, nil
}

type call struct {
	method string
	from   common.Address
	params []interface{}
}

type fakeContract struct {
	mu       sync.Mutex
	calls    []call
	callOut  []interface{}
	callErr  error
	txErr    error
	sentTxes int
}

func (f *fakeContract) Call(opts *bind.CallOpts, results *[]interface{}, method string, params ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{method: method, from: opts.From, params: params})
	if f.callErr != nil {
		return f.callErr
	}
	*results = f.callOut
	return nil
}

func (f *fakeContract) Transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{method: method, from: opts.From, params: params})
	if f.txErr != nil {
		return nil, f.txErr
	}
	f.sentTxes++
	return types.NewTx(&types.LegacyTx{Nonce: uint64(f.sentTxes), GasPrice: big.NewInt(1), Gas: 21000}), nil
}

func minedOK(context.Context, *types.Transaction) (*types.Receipt, error) {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

func newTestGateway(contract boundContract, signer Signer, wait waitMinedFunc) *Gateway {
	if wait == nil {
		wait = minedOK
	}
	return newGateway(contract, signer, wait, Config{CallTimeout: time.Second, ConfirmTimeout: 50 * time.Millisecond})
}

func ownerSigner() *fakeSigner {
	return &fakeSigner{account: common.HexToAddress(ownerHex), connected: true}
}

func TestGateway_Validation(t *testing.T) {
	fc := &fakeContract{}
	g := newTestGateway(fc, ownerSigner(), nil)
	ctx := context.Background()

	cases := []struct {
		name string
		run  func() error
	}{
		{"add empty owner", func() error { _, err := g.Add(ctx, "", "https://x/a.pdf"); return err }},
		{"add zero owner", func() error {
			_, err := g.Add(ctx, "0x0000000000000000000000000000000000000000", "https://x/a.pdf")
			return err
		}},
		{"add empty url", func() error { _, err := g.Add(ctx, ownerHex, "  "); return err }},
		{"display malformed viewer", func() error { _, err := g.Display(ctx, ownerHex, "0x123"); return err }},
		{"allow malformed viewer", func() error { _, err := g.Allow(ctx, ownerHex, "not-an-address"); return err }},
		{"disallow empty owner", func() error { _, err := g.Disallow(ctx, "", viewerHex); return err }},
		{"shareAccess malformed owner", func() error { _, err := g.ShareAccess(ctx, "0xZZ"); return err }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, domain.KindValidation, domain.KindOf(tc.run()))
		})
	}
	assert.Empty(t, fc.calls, "no network call for invalid input")
}

func TestGateway_NotConfigured(t *testing.T) {
	g := newTestGateway(nil, ownerSigner(), nil)

	_, err := g.Display(context.Background(), ownerHex, viewerHex)
	assert.Equal(t, domain.KindMisconfigured, domain.KindOf(err))
	assert.Equal(t, msgNotConfigured, domain.DisplayMessage(err))

	_, err = g.Allow(context.Background(), ownerHex, viewerHex)
	assert.Equal(t, domain.KindMisconfigured, domain.KindOf(err))
}

func TestGateway_Display(t *testing.T) {
	t.Run("Calls with viewer as sender", func(t *testing.T) {
		fc := &fakeContract{callOut: []interface{}{[]string{"https://x/a.pdf"}}}
		g := newTestGateway(fc, ownerSigner(), nil)

		urls, err := g.Display(context.Background(), ownerHex, viewerHex)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://x/a.pdf"}, urls)

		require.Len(t, fc.calls, 1)
		assert.Equal(t, methodDisplay, fc.calls[0].method)
		assert.Equal(t, common.HexToAddress(viewerHex), fc.calls[0].from)
		assert.Equal(t, []interface{}{common.HexToAddress(ownerHex)}, fc.calls[0].params)
	})

	t.Run("Unexpected shape yields empty list", func(t *testing.T) {
		fc := &fakeContract{callOut: []interface{}{"oops"}}
		urls, err := newTestGateway(fc, ownerSigner(), nil).Display(context.Background(), ownerHex, viewerHex)
		require.NoError(t, err)
		assert.Empty(t, urls)
	})

	t.Run("Revert with access message is access denied", func(t *testing.T) {
		fc := &fakeContract{callErr: errors.New("execution reverted: You don't have access")}
		_, err := newTestGateway(fc, ownerSigner(), nil).Display(context.Background(), ownerHex, viewerHex)
		assert.Equal(t, domain.KindAccessDenied, domain.KindOf(err))
		assert.Equal(t, msgAccessDenied, domain.DisplayMessage(err))
	})

	t.Run("Access denied revert stays retryable", func(t *testing.T) {
		fc := &fakeContract{callErr: errors.New("execution reverted: Access denied")}
		_, err := newTestGateway(fc, ownerSigner(), nil).Display(context.Background(), ownerHex, viewerHex)
		assert.Equal(t, domain.KindAccessDenied, domain.KindOf(err))
		assert.True(t, domain.KindOf(err).Retryable())
	})
}

func TestGateway_Add(t *testing.T) {
	t.Run("Sends from the active account", func(t *testing.T) {
		fc := &fakeContract{}
		hash, err := newTestGateway(fc, ownerSigner(), nil).Add(context.Background(), ownerHex, "https://x/a.pdf")
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
		require.Len(t, fc.calls, 1)
		assert.Equal(t, methodAdd, fc.calls[0].method)
		assert.Equal(t, []interface{}{common.HexToAddress(ownerHex), "https://x/a.pdf"}, fc.calls[0].params)
	})

	t.Run("Requires a connected wallet", func(t *testing.T) {
		_, err := newTestGateway(&fakeContract{}, &fakeSigner{}, nil).Add(context.Background(), ownerHex, "https://x/a.pdf")
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		assert.ErrorIs(t, err, domain.ErrWalletNotConnected)
	})

	t.Run("Rejection and funds", func(t *testing.T) {
		fc := &fakeContract{txErr: errors.New("User rejected the request.")}
		_, err := newTestGateway(fc, ownerSigner(), nil).Add(context.Background(), ownerHex, "https://x/a.pdf")
		assert.Equal(t, domain.KindUserDeclined, domain.KindOf(err))

		fc.txErr = errors.New("insufficient funds for gas * price + value")
		_, err = newTestGateway(fc, ownerSigner(), nil).Add(context.Background(), ownerHex, "https://x/a.pdf")
		assert.Equal(t, domain.KindInsufficientFunds, domain.KindOf(err))
	})
}

func TestGateway_AllowDisallow(t *testing.T) {
	t.Run("Owner guard", func(t *testing.T) {
		fc := &fakeContract{}
		signer := &fakeSigner{account: common.HexToAddress(viewerHex), connected: true}
		_, err := newTestGateway(fc, signer, nil).Allow(context.Background(), ownerHex, viewerHex)
		assert.Equal(t, domain.KindAccessDenied, domain.KindOf(err))
		assert.Empty(t, fc.calls)
	})

	t.Run("Confirmed", func(t *testing.T) {
		fc := &fakeContract{}
		res, err := newTestGateway(fc, ownerSigner(), nil).Allow(context.Background(), ownerHex, viewerHex)
		require.NoError(t, err)
		assert.False(t, res.Pending)
		assert.NotEmpty(t, res.Hash)
		assert.Equal(t, []interface{}{common.HexToAddress(viewerHex)}, fc.calls[0].params)
	})

	t.Run("Confirmation timeout returns hash as pending", func(t *testing.T) {
		slow := func(ctx context.Context, _ *types.Transaction) (*types.Receipt, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		res, err := newTestGateway(&fakeContract{}, ownerSigner(), slow).Disallow(context.Background(), ownerHex, viewerHex)
		require.NoError(t, err)
		assert.True(t, res.Pending)
		assert.NotEmpty(t, res.Hash)
	})

	t.Run("Reverted receipt", func(t *testing.T) {
		failed := func(context.Context, *types.Transaction) (*types.Receipt, error) {
			return &types.Receipt{Status: types.ReceiptStatusFailed}, nil
		}
		_, err := newTestGateway(&fakeContract{}, ownerSigner(), failed).Allow(context.Background(), ownerHex, viewerHex)
		assert.Equal(t, domain.KindUnknown, domain.KindOf(err))
	})
}

func TestGateway_ShareAccess(t *testing.T) {
	fc := &fakeContract{callOut: []interface{}{[]accessEntry{
		{User: common.HexToAddress(viewerHex), Access: true},
		{User: common.HexToAddress("0x00000000000000000000000000000000000000aa"), Access: false},
	}}}
	grants, err := newTestGateway(fc, ownerSigner(), nil).ShareAccess(context.Background(), ownerHex)
	require.NoError(t, err)
	require.Len(t, grants, 2)
	assert.Equal(t, domain.AccessGrant{Viewer: viewerHex, Active: true}, grants[0])
	assert.False(t, grants[1].Active)
	assert.Equal(t, common.HexToAddress(ownerHex), fc.calls[0].from)

	t.Run("Anonymous tuple slice", func(t *testing.T) {
		raw := []struct {
			User   common.Address `json:"user"`
			Access bool           `json:"access"`
		}{{User: common.HexToAddress(viewerHex), Access: true}}
		entries, err := convertAccess(raw)
		require.NoError(t, err)
		assert.Equal(t, []accessEntry{{User: common.HexToAddress(viewerHex), Access: true}}, entries)
	})
}

func TestClassify(t *testing.T) {
	cases := map[string]domain.ErrorKind{
		"execution reverted":                              domain.KindMisconfigured,
		"no contract code at given address":               domain.KindMisconfigured,
		"Post \"https://rpc\": context deadline exceeded": domain.KindNetworkTimeout,
		"dial tcp: connection refused":                    domain.KindNetworkTimeout,
		"MetaMask Tx Signature: User denied":              domain.KindUserDeclined,
		"user rejected transaction":                       domain.KindUserDeclined,
		"execution reverted: Access denied":               domain.KindAccessDenied,
		"execution reverted: no access":                   domain.KindAccessDenied,
		"You don't have access":                           domain.KindAccessDenied,
		"something odd":                                   domain.KindUnknown,
	}
	for msg, want := range cases {
		assert.Equal(t, want, classify("display", errors.New(msg)).Kind, msg)
	}
	assert.Equal(t, domain.KindNetworkTimeout, classify("display", context.DeadlineExceeded).Kind)
	assert.Equal(t, domain.KindUnknown, classify("display", errors.New("dial unix /tmp/geth.ipc: connect: permission denied")).Kind)
	assert.Nil(t, classify("display", nil))
}
