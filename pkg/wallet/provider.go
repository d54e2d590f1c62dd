// Package wallet adapts go-ethereum account managers to the single
// process-wide wallet session the API operates on.
package wallet

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
)

var (
	ErrUserRejected   = errors.New("user rejected the request")
	ErrNoAccounts     = errors.New("wallet has no accounts")
	ErrUnknownAccount = errors.New("unknown account")
)

// Provider mirrors an injected browser wallet: a list of authorized
// accounts with the active one first, account change notifications and
// transaction signing.
type Provider interface {
	// Accounts returns the authorized accounts without prompting.
	Accounts() []common.Address
	// RequestAccounts authorizes the wallet and returns its accounts.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	// SelectAccount makes account the active one.
	SelectAccount(account common.Address) error
	SubscribeAccounts(ch chan<- []common.Address) event.Subscription
	Transactor(account common.Address, chainID *big.Int) (*bind.TransactOpts, error)
	Close()
}

// accountSet is the ordered authorized account list shared by providers.
type accountSet struct {
	mu       sync.RWMutex
	accounts []common.Address
	feed     event.Feed
}

func (s *accountSet) snapshot() []common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]common.Address(nil), s.accounts...)
}

func (s *accountSet) set(accounts []common.Address) {
	s.mu.Lock()
	changed := !sameAccounts(s.accounts, accounts)
	s.accounts = append([]common.Address(nil), accounts...)
	s.mu.Unlock()

	if changed {
		s.feed.Send(append([]common.Address(nil), accounts...))
	}
}

func (s *accountSet) promote(account common.Address) error {
	current := s.snapshot()
	idx := -1
	for i, a := range current {
		if a == account {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUnknownAccount
	}
	next := append([]common.Address{account}, current[:idx]...)
	next = append(next, current[idx+1:]...)
	s.set(next)
	return nil
}

func (s *accountSet) remove(account common.Address) {
	current := s.snapshot()
	next := current[:0]
	for _, a := range current {
		if a != account {
			next = append(next, a)
		}
	}
	s.set(next)
}

func (s *accountSet) contains(account common.Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a == account {
			return true
		}
	}
	return false
}

func sameAccounts(a, b []common.Address) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
