package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"
)

// KeyedProvider signs with raw private keys, e.g. the funded accounts of a
// local hardhat node. Its accounts count as authorized from the start.
type KeyedProvider struct {
	keys map[common.Address]*ecdsa.PrivateKey
	set  accountSet
}

// NewKeyedProvider parses hex private keys (with or without 0x).
func NewKeyedProvider(hexKeys []string) (*KeyedProvider, error) {
	p := &KeyedProvider{keys: make(map[common.Address]*ecdsa.PrivateKey, len(hexKeys))}
	var order []common.Address
	for i, raw := range hexKeys {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(raw), "0x"))
		if err != nil {
			return nil, fmt.Errorf("wallet: private key #%d: %w", i, err)
		}
		addr := crypto.PubkeyToAddress(key.PublicKey)
		if _, dup := p.keys[addr]; dup {
			continue
		}
		p.keys[addr] = key
		order = append(order, addr)
	}
	if len(order) == 0 {
		return nil, ErrNoAccounts
	}
	p.set.accounts = order
	return p, nil
}

func (p *KeyedProvider) Accounts() []common.Address {
	return p.set.snapshot()
}

func (p *KeyedProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	accounts := p.set.snapshot()
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}
	return accounts, nil
}

func (p *KeyedProvider) SelectAccount(account common.Address) error {
	return p.set.promote(account)
}

func (p *KeyedProvider) SubscribeAccounts(ch chan<- []common.Address) event.Subscription {
	return p.set.feed.Subscribe(ch)
}

func (p *KeyedProvider) Transactor(account common.Address, chainID *big.Int) (*bind.TransactOpts, error) {
	key, ok := p.keys[account]
	if !ok {
		return nil, ErrUnknownAccount
	}
	return bind.NewKeyedTransactorWithChainID(key, chainID)
}

func (p *KeyedProvider) Close() {}
