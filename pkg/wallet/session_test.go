package wallet

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chamba-onchain-backend/internal/domain"
)

// hardhat default accounts #0 and #1
const (
	hardhatKey0  = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	hardhatKey1  = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	hardhatAddr0 = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	hardhatAddr1 = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

func waitState(t *testing.T, ch <-chan domain.WalletState) domain.WalletState {
	t.Helper()
	select {
	case st := <-ch:
		return st
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for wallet state")
		return domain.WalletState{}
	}
}

func TestKeyedProvider(t *testing.T) {
	p, err := NewKeyedProvider([]string{hardhatKey0, hardhatKey1, hardhatKey0})
	require.NoError(t, err)

	accounts := p.Accounts()
	require.Len(t, accounts, 2)
	assert.Equal(t, hardhatAddr0, accounts[0].Hex())
	assert.Equal(t, hardhatAddr1, accounts[1].Hex())

	opts, err := p.Transactor(accounts[1], big.NewInt(31337))
	require.NoError(t, err)
	assert.Equal(t, accounts[1], opts.From)

	_, err = p.Transactor(common.HexToAddress("0x01"), big.NewInt(31337))
	assert.ErrorIs(t, err, ErrUnknownAccount)

	_, err = NewKeyedProvider([]string{"zz"})
	assert.Error(t, err)
	_, err = NewKeyedProvider(nil)
	assert.ErrorIs(t, err, ErrNoAccounts)
}

func TestSessionLifecycle(t *testing.T) {
	p, err := NewKeyedProvider([]string{hardhatKey0, hardhatKey1})
	require.NoError(t, err)

	s := NewSession(p, 31337)
	defer s.Close()

	states := make(chan domain.WalletState, 8)
	sub := s.Subscribe(states)
	defer sub.Unsubscribe()

	require.NoError(t, s.Init(context.Background()))

	t.Run("Init restores authorized account", func(t *testing.T) {
		st := waitState(t, states)
		assert.True(t, st.Connected)
		assert.Equal(t, hardhatAddr0, st.Address)
	})

	t.Run("Account switch updates session", func(t *testing.T) {
		require.NoError(t, p.SelectAccount(common.HexToAddress(hardhatAddr1)))
		st := waitState(t, states)
		assert.Equal(t, hardhatAddr1, st.Address)

		active, ok := s.ActiveAccount()
		require.True(t, ok)
		assert.Equal(t, hardhatAddr1, active.Hex())
	})

	t.Run("Transactor requires the active account", func(t *testing.T) {
		_, err := s.Transactor(context.Background(), common.HexToAddress(hardhatAddr0))
		assert.ErrorIs(t, err, ErrUnknownAccount)

		opts, err := s.Transactor(context.Background(), common.HexToAddress(hardhatAddr1))
		require.NoError(t, err)
		assert.NotNil(t, opts.Context)
	})

	t.Run("Disconnect clears state", func(t *testing.T) {
		s.Disconnect()
		st := waitState(t, states)
		assert.False(t, st.Connected)
		assert.Empty(t, st.Address)

		_, err := s.Transactor(context.Background(), common.HexToAddress(hardhatAddr1))
		assert.ErrorIs(t, err, domain.ErrWalletNotConnected)
	})

	t.Run("Connect re-authorizes", func(t *testing.T) {
		st, err := s.Connect(context.Background())
		require.NoError(t, err)
		assert.True(t, st.Connected)
		assert.Equal(t, hardhatAddr1, st.Address)
	})
}

func TestSessionWithoutProvider(t *testing.T) {
	s := NewSession(nil, 11155111)
	defer s.Close()
	require.NoError(t, s.Init(context.Background()))

	st, err := s.Connect(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoProvider)
	assert.False(t, st.Connected)
	assert.Equal(t, domain.ErrNoProvider.Error(), st.Error)
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	p, err := NewKeyedProvider([]string{hardhatKey0})
	require.NoError(t, err)
	s := NewSession(p, 31337)
	require.NoError(t, s.Init(context.Background()))
	s.Close()
	s.Close()
}

func TestKeystoreProvider(t *testing.T) {
	ks := keystore.NewKeyStore(t.TempDir(), keystore.LightScryptN, keystore.LightScryptP)
	acct, err := ks.NewAccount("correct horse")
	require.NoError(t, err)

	t.Run("Wrong passphrase is a rejection", func(t *testing.T) {
		p := NewKeystoreProvider(ks, "wrong")
		defer p.Close()

		assert.Empty(t, p.Accounts())
		_, err := p.RequestAccounts(context.Background())
		assert.ErrorIs(t, err, ErrUserRejected)

		_, err = p.Transactor(acct.Address, big.NewInt(1))
		assert.ErrorIs(t, err, keystore.ErrLocked)
	})

	t.Run("Unlock authorizes accounts", func(t *testing.T) {
		p := NewKeystoreProvider(ks, "correct horse")
		defer p.Close()

		changes := make(chan []common.Address, 2)
		sub := p.SubscribeAccounts(changes)
		defer sub.Unsubscribe()

		got, err := p.RequestAccounts(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []common.Address{acct.Address}, got)
		assert.Equal(t, []common.Address{acct.Address}, <-changes)

		opts, err := p.Transactor(acct.Address, big.NewInt(11155111))
		require.NoError(t, err)
		assert.Equal(t, acct.Address, opts.From)
	})
}

func TestPersonalSign(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey)

	sig, err := SignPersonal(key, "Sign in to Chamba On Chain")
	require.NoError(t, err)

	assert.NoError(t, VerifyPersonalSign(addr, "Sign in to Chamba On Chain", sig))
	assert.ErrorIs(t, VerifyPersonalSign(addr, "another message", sig), ErrInvalidSignature)
	assert.ErrorIs(t, VerifyPersonalSign(common.HexToAddress("0x01"), "Sign in to Chamba On Chain", sig), ErrInvalidSignature)
	assert.ErrorIs(t, VerifyPersonalSign(addr, "Sign in to Chamba On Chain", "0x1234"), ErrInvalidSignature)
}
