package domain

import "context"

// WalletState is the connection state of the process-wide wallet session.
type WalletState struct {
	Address    string `json:"address,omitempty"` // checksummed hex
	Connected  bool   `json:"connected"`
	Connecting bool   `json:"connecting"`
	Error      string `json:"error,omitempty"`
}

// Subscription is a handle on an event subscription; Unsubscribe must be
// called on every exit path.
type Subscription interface {
	Unsubscribe()
	Err() <-chan error
}

type WalletSession interface {
	Current() WalletState
	Connect(ctx context.Context) (WalletState, error)
	Disconnect()
	Subscribe(ch chan<- WalletState) Subscription
}
