package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignInTrackerWithoutRedis(t *testing.T) {
	ctx := context.Background()
	tracker := NewSignInTracker(nil, SignInTrackerConfig{})

	t.Run("Should fill in defaults", func(t *testing.T) {
		assert.Equal(t, DefaultSignInTrackerConfig(), tracker.config)
	})

	t.Run("Should fail open", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			blocked, err := tracker.RecordFailure(ctx, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", "invalid_signature")
			require.NoError(t, err)
			assert.False(t, blocked)
		}
		blocked, err := tracker.IsBlocked(ctx, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
		require.NoError(t, err)
		assert.False(t, blocked)
		assert.NoError(t, tracker.Clear(ctx, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"))
	})

	t.Run("Should keep explicit settings", func(t *testing.T) {
		tr := NewSignInTracker(nil, SignInTrackerConfig{MaxAttempts: 3, AttemptWindow: time.Minute, BlockDuration: time.Hour})
		assert.Equal(t, 3, tr.config.MaxAttempts)
		assert.Equal(t, time.Hour, tr.config.BlockDuration)
	})
}
