package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyApplied     = errors.New("already applied to this job")
	ErrMutationPending    = errors.New("another access change is still pending")
	ErrWalletNotConnected = errors.New("no wallet account connected")
	ErrNoProvider         = errors.New("no wallet provider available")
	ErrInvalidAddress     = errors.New("invalid wallet address")
)

// ErrorKind buckets gateway failures for user-facing messages and retry eligibility.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindUserDeclined      ErrorKind = "user_declined"
	KindInsufficientFunds ErrorKind = "insufficient_funds"
	KindAccessDenied      ErrorKind = "access_denied"
	KindMisconfigured     ErrorKind = "misconfigured"
	KindNetworkTimeout    ErrorKind = "network_timeout"
	KindUnknown           ErrorKind = "unknown"
)

// Retryable reports whether the asset retrieval flow may retry this kind.
func (k ErrorKind) Retryable() bool {
	return k == KindAccessDenied || k == KindNetworkTimeout
}

// ChainError is the only error shape produced by the contract gateway.
// Message is for display; branch on Kind.
type ChainError struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *ChainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *ChainError) Unwrap() error {
	return e.Err
}

func NewChainError(op string, kind ErrorKind, message string, err error) *ChainError {
	return &ChainError{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf extracts the classification of err, KindUnknown when unclassified.
func KindOf(err error) ErrorKind {
	var chainErr *ChainError
	if errors.As(err, &chainErr) {
		return chainErr.Kind
	}
	return KindUnknown
}

// DisplayMessage returns the user-facing message of a classified error.
func DisplayMessage(err error) string {
	var chainErr *ChainError
	if errors.As(err, &chainErr) {
		return chainErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
