package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"

	"chamba-onchain-backend/internal/domain"
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("wallet_address", WalletAddress)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("application_status", ApplicationStatus)
}

// New returns a validator with the custom tags registered.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// NormalizeAddress checks that raw is a non-zero 20 byte hex address and
// returns its EIP-55 checksummed form.
func NormalizeAddress(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: address is empty", domain.ErrInvalidAddress)
	}
	if !common.IsHexAddress(trimmed) {
		return "", fmt.Errorf("%w: %q is not a hex address", domain.ErrInvalidAddress, trimmed)
	}
	addr := common.HexToAddress(trimmed)
	if addr == (common.Address{}) {
		return "", fmt.Errorf("%w: zero address", domain.ErrInvalidAddress)
	}
	return addr.Hex(), nil
}

// SameAddress compares two addresses case-insensitively.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// WalletAddress validates a non-zero hex wallet address. Empty passes; use required if needed.
func WalletAddress(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	_, err := NormalizeAddress(val)
	return err == nil
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

func ApplicationStatus(fl validator.FieldLevel) bool {
	return domain.ValidApplicationStatus(fl.Field().String())
}
