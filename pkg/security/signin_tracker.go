package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// SignInTrackerConfig holds configuration for sign-in tracking
type SignInTrackerConfig struct {
	MaxAttempts   int           // failed verifications before a block (default: 5)
	AttemptWindow time.Duration // window for counting failures (default: 15min)
	BlockDuration time.Duration // block length once MaxAttempts is hit (default: 15min)
}

// DefaultSignInTrackerConfig returns sensible defaults
func DefaultSignInTrackerConfig() SignInTrackerConfig {
	return SignInTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
	}
}

// SignInTracker counts failed signature verifications per wallet and blocks
// the wallet after too many. Without Redis it fails open.
type SignInTracker struct {
	client *goredis.Client
	config SignInTrackerConfig
	logger *SecurityLogger
}

func NewSignInTracker(client *goredis.Client, config SignInTrackerConfig) *SignInTracker {
	def := DefaultSignInTrackerConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = def.MaxAttempts
	}
	if config.AttemptWindow <= 0 {
		config.AttemptWindow = def.AttemptWindow
	}
	if config.BlockDuration <= 0 {
		config.BlockDuration = def.BlockDuration
	}
	return &SignInTracker{client: client, config: config, logger: DefaultLogger()}
}

// Redis key patterns
const (
	failSignInPrefix    = "fail:signin:wallet:"
	blockedSignInPrefix = "blocked:signin:wallet:"
)

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: current count after increment
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

// IsBlocked reports whether wallet is currently blocked from signing in.
func (t *SignInTracker) IsBlocked(ctx context.Context, wallet string) (bool, error) {
	if t.client == nil {
		return false, nil
	}
	exists, err := t.client.Exists(ctx, blockedSignInPrefix+strings.ToLower(wallet)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check sign-in block: %w", err)
	}
	if exists > 0 {
		t.logger.LogSignInBlocked(ctx, wallet, "")
		return true, nil
	}
	return false, nil
}

// RecordFailure counts a failed verification and blocks the wallet once the
// limit is reached. Returns whether the wallet is now blocked.
func (t *SignInTracker) RecordFailure(ctx context.Context, wallet, reason string) (bool, error) {
	t.logger.LogSignInFailed(ctx, wallet, "", reason)
	if t.client == nil {
		return false, nil
	}

	key := failSignInPrefix + strings.ToLower(wallet)
	result, err := t.client.Eval(ctx, incrWithTTLScript, []string{key}, int(t.config.AttemptWindow.Seconds())).Result()
	if err != nil {
		return false, fmt.Errorf("failed to count sign-in failure: %w", err)
	}
	count, ok := result.(int64)
	if !ok {
		return false, errors.New("unexpected result type from Lua script")
	}

	if int(count) < t.config.MaxAttempts {
		return false, nil
	}

	blockKey := blockedSignInPrefix + strings.ToLower(wallet)
	if err := t.client.Set(ctx, blockKey, "1", t.config.BlockDuration).Err(); err != nil {
		return true, fmt.Errorf("failed to set sign-in block: %w", err)
	}
	t.logger.LogBlockCreated(ctx, wallet, "", t.config.BlockDuration)
	return true, nil
}

// Clear resets the failure counter after a successful sign-in.
func (t *SignInTracker) Clear(ctx context.Context, wallet string) error {
	t.logger.Log(ctx, SecurityEvent{Event: EventSignInSuccess, Wallet: wallet})
	if t.client == nil {
		return nil
	}
	if err := t.client.Del(ctx, failSignInPrefix+strings.ToLower(wallet)).Err(); err != nil {
		return fmt.Errorf("failed to clear sign-in failures: %w", err)
	}
	return nil
}
