package domain

import (
	"context"
	"time"
)

// SignInChallenge is the message an external wallet signs to obtain a viewer token.
type SignInChallenge struct {
	Address   string    `json:"address"`
	Nonce     string    `json:"nonce"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthToken struct {
	Token     string    `json:"token"`
	Address   string    `json:"address"`
	Kind      string    `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NonceStore keeps single-use sign-in nonces.
type NonceStore interface {
	Save(ctx context.Context, address, nonce string, ttl time.Duration) error
	// Consume returns the stored nonce and deletes it.
	Consume(ctx context.Context, address string) (string, bool, error)
}

type AuthUsecase interface {
	IssueSessionToken(ctx context.Context) (*AuthToken, error)
	Challenge(ctx context.Context, address string) (*SignInChallenge, error)
	Verify(ctx context.Context, address, signature string) (*AuthToken, error)
}
