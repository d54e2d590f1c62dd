package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"

	"chamba-onchain-backend/pkg/logger"
)

// KeystoreProvider exposes the accounts of an encrypted keystore directory.
// Accounts stay locked (and unlisted) until RequestAccounts unlocks them.
type KeystoreProvider struct {
	ks         *keystore.KeyStore
	passphrase string
	set        accountSet

	sub       event.Subscription
	quit      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// OpenKeystore opens dir with standard scrypt parameters.
func OpenKeystore(dir string) *keystore.KeyStore {
	return keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP)
}

func NewKeystoreProvider(ks *keystore.KeyStore, passphrase string) *KeystoreProvider {
	p := &KeystoreProvider{
		ks:         ks,
		passphrase: passphrase,
		quit:       make(chan struct{}),
	}

	events := make(chan accounts.WalletEvent, 8)
	p.sub = ks.Subscribe(events)
	p.wg.Add(1)
	go p.watch(events)
	return p
}

// watch drops accounts whose key files disappear from the keystore.
func (p *KeystoreProvider) watch(events <-chan accounts.WalletEvent) {
	defer p.wg.Done()
	for {
		select {
		case ev := <-events:
			if ev.Kind != accounts.WalletDropped {
				continue
			}
			for _, a := range ev.Wallet.Accounts() {
				if p.set.contains(a.Address) {
					logger.Log.Info("keystore account dropped", "address", a.Address.Hex())
					p.set.remove(a.Address)
				}
			}
		case err := <-p.sub.Err():
			if err != nil {
				logger.Log.Warn("keystore subscription failed", "error", err)
			}
			return
		case <-p.quit:
			return
		}
	}
}

func (p *KeystoreProvider) Accounts() []common.Address {
	return p.set.snapshot()
}

func (p *KeystoreProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	all := p.ks.Accounts()
	if len(all) == 0 {
		return nil, ErrNoAccounts
	}

	unlocked := make([]common.Address, 0, len(all))
	var lastErr error
	for _, a := range all {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.ks.Unlock(a, p.passphrase); err != nil {
			lastErr = err
			continue
		}
		unlocked = append(unlocked, a.Address)
	}
	if len(unlocked) == 0 {
		if errors.Is(lastErr, keystore.ErrDecrypt) {
			return nil, fmt.Errorf("%w: %v", ErrUserRejected, lastErr)
		}
		return nil, lastErr
	}

	// keep the previously active account first
	if current := p.set.snapshot(); len(current) > 0 {
		for i, a := range unlocked {
			if a == current[0] {
				unlocked[0], unlocked[i] = unlocked[i], unlocked[0]
				break
			}
		}
	}
	p.set.set(unlocked)
	return unlocked, nil
}

func (p *KeystoreProvider) SelectAccount(account common.Address) error {
	return p.set.promote(account)
}

func (p *KeystoreProvider) SubscribeAccounts(ch chan<- []common.Address) event.Subscription {
	return p.set.feed.Subscribe(ch)
}

func (p *KeystoreProvider) Transactor(account common.Address, chainID *big.Int) (*bind.TransactOpts, error) {
	if !p.set.contains(account) {
		return nil, keystore.ErrLocked
	}
	return bind.NewKeyStoreTransactorWithChainID(p.ks, accounts.Account{Address: account}, chainID)
}

// Close releases the keystore subscription and stops the watcher.
func (p *KeystoreProvider) Close() {
	p.closeOnce.Do(func() {
		close(p.quit)
		p.sub.Unsubscribe()
		p.wg.Wait()
	})
}
