package chain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"

	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/wallet"
)

// User-facing messages per error kind
const (
	msgUserDeclined      = "Transaction cancelled by the user"
	msgInsufficientFunds = "Insufficient funds to pay for the transaction gas"
	msgAccessDenied      = "You don't have access to these files"
	msgMisconfigured     = "Error reading the contract. Check that the contract address is correct and deployed on the selected network."
	msgNotConfigured     = "Contract address is not configured. Set CONTRACT_ADDRESS."
	msgNetworkTimeout    = "Timed out connecting to the blockchain. The RPC server is slow; try again or configure a faster RPC_URL."
	msgNotConnected      = "No connected account. Please connect your wallet."
)

// classify maps a raw provider/RPC error onto the closed set of error kinds.
func classify(op string, err error) *domain.ChainError {
	if err == nil {
		return nil
	}
	var already *domain.ChainError
	if errors.As(err, &already) {
		return already
	}

	lower := strings.ToLower(err.Error())
	var netErr net.Error

	switch {
	case errors.Is(err, domain.ErrWalletNotConnected):
		return domain.NewChainError(op, domain.KindValidation, msgNotConnected, err)

	case errors.Is(err, keystore.ErrLocked),
		errors.Is(err, wallet.ErrUserRejected),
		errors.Is(err, wallet.ErrUnknownAccount):
		return domain.NewChainError(op, domain.KindUserDeclined, msgUserDeclined, err)

	// contract reverts like "Access denied" must stay retryable
	case strings.Contains(lower, "don't have access"),
		strings.Contains(lower, "no access"),
		strings.Contains(lower, "access"):
		return domain.NewChainError(op, domain.KindAccessDenied, msgAccessDenied, err)

	case strings.Contains(lower, "user rejected"),
		strings.Contains(lower, "user denied"):
		return domain.NewChainError(op, domain.KindUserDeclined, msgUserDeclined, err)

	case strings.Contains(lower, "insufficient funds"):
		return domain.NewChainError(op, domain.KindInsufficientFunds, msgInsufficientFunds, err)

	case errors.Is(err, bind.ErrNoCode),
		strings.Contains(lower, "no contract code"),
		strings.Contains(lower, "execution reverted"),
		strings.Contains(lower, "revert"),
		strings.Contains(lower, "invalid address"):
		return domain.NewChainError(op, domain.KindMisconfigured, msgMisconfigured, err)

	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout(),
		strings.Contains(lower, "deadline exceeded"),
		strings.Contains(lower, "timeout"),
		strings.Contains(lower, "timed out"),
		strings.Contains(lower, "took too long"),
		strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "no such host"),
		strings.Contains(lower, "network"):
		return domain.NewChainError(op, domain.KindNetworkTimeout, msgNetworkTimeout, err)

	default:
		return domain.NewChainError(op, domain.KindUnknown, fmt.Sprintf("Contract call %s failed: %v", op, err), err)
	}
}

func validationError(op, message string, err error) *domain.ChainError {
	return domain.NewChainError(op, domain.KindValidation, message, err)
}
