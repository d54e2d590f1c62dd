package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"

	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/logger"
)

// Session is the process-wide wallet session. It tracks the provider's
// active account and fans state changes out to subscribers.
type Session struct {
	provider Provider
	chainID  *big.Int

	mu    sync.RWMutex
	state domain.WalletState

	feed event.Feed

	sub       event.Subscription
	quit      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewSession creates a session over provider; a nil provider yields a
// session whose Connect always fails with domain.ErrNoProvider.
func NewSession(provider Provider, chainID int64) *Session {
	return &Session{
		provider: provider,
		chainID:  big.NewInt(chainID),
		quit:     make(chan struct{}),
	}
}

// Init restores an already authorized account and starts listening for
// account changes. Close must be called to release the subscription.
func (s *Session) Init(ctx context.Context) error {
	if s.provider == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	changes := make(chan []common.Address, 4)
	s.sub = s.provider.SubscribeAccounts(changes)

	s.applyAccounts(s.provider.Accounts())

	s.wg.Add(1)
	go s.listen(changes)
	return nil
}

func (s *Session) listen(changes <-chan []common.Address) {
	defer s.wg.Done()
	for {
		select {
		case accounts := <-changes:
			s.applyAccounts(accounts)
		case err := <-s.sub.Err():
			if err != nil {
				logger.Log.Warn("wallet account subscription failed", "error", err)
			}
			return
		case <-s.quit:
			return
		}
	}
}

func (s *Session) applyAccounts(accounts []common.Address) {
	s.mu.Lock()
	prev := s.state
	if len(accounts) > 0 {
		s.state = domain.WalletState{Address: accounts[0].Hex(), Connected: true}
	} else {
		s.state = domain.WalletState{}
	}
	next := s.state
	s.mu.Unlock()

	if prev != next {
		logger.Log.Info("wallet account changed", "address", next.Address, "connected", next.Connected)
		s.feed.Send(next)
	}
}

func (s *Session) Current() domain.WalletState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Connect asks the provider for authorization. Failures leave the session
// disconnected with the error message recorded.
func (s *Session) Connect(ctx context.Context) (domain.WalletState, error) {
	if s.provider == nil {
		s.update(domain.WalletState{Error: domain.ErrNoProvider.Error()})
		return s.Current(), domain.ErrNoProvider
	}

	s.mu.Lock()
	if s.state.Connecting {
		s.mu.Unlock()
		return s.Current(), domain.ErrMutationPending
	}
	s.state.Connecting = true
	s.state.Error = ""
	s.mu.Unlock()

	accounts, err := s.provider.RequestAccounts(ctx)
	if err == nil && len(accounts) == 0 {
		err = ErrNoAccounts
	}
	if err != nil {
		msg := err.Error()
		if errors.Is(err, ErrUserRejected) {
			msg = "connection request was rejected"
		}
		s.update(domain.WalletState{Error: msg})
		return s.Current(), fmt.Errorf("wallet connect: %w", err)
	}

	s.update(domain.WalletState{Address: accounts[0].Hex(), Connected: true})
	return s.Current(), nil
}

// Disconnect clears the local session. The provider keeps its authorization.
func (s *Session) Disconnect() {
	s.update(domain.WalletState{})
}

func (s *Session) update(next domain.WalletState) {
	s.mu.Lock()
	changed := s.state != next
	s.state = next
	s.mu.Unlock()
	if changed {
		s.feed.Send(next)
	}
}

// Subscribe delivers every state change to ch. The returned subscription
// must be released with Unsubscribe.
func (s *Session) Subscribe(ch chan<- domain.WalletState) domain.Subscription {
	return s.feed.Subscribe(ch)
}

// ActiveAccount returns the connected account.
func (s *Session) ActiveAccount() (common.Address, bool) {
	st := s.Current()
	if !st.Connected || st.Address == "" {
		return common.Address{}, false
	}
	return common.HexToAddress(st.Address), true
}

// Transactor returns signing options for account, which must still be the
// active account at the time of the call.
func (s *Session) Transactor(ctx context.Context, account common.Address) (*bind.TransactOpts, error) {
	active, ok := s.ActiveAccount()
	if !ok {
		return nil, domain.ErrWalletNotConnected
	}
	if active != account {
		return nil, fmt.Errorf("%w: active account is %s", ErrUnknownAccount, active.Hex())
	}
	opts, err := s.provider.Transactor(account, s.chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

// Close releases the provider subscription. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
		if s.sub != nil {
			s.sub.Unsubscribe()
		}
		s.wg.Wait()
	})
}
