package nonce

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "0xAbC", "n1", time.Minute))

	got, ok, err := s.Consume(ctx, "0xabc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "n1", got)

	_, ok, _ = s.Consume(ctx, "0xabc")
	assert.False(t, ok, "single use")

	t.Run("Expired", func(t *testing.T) {
		base := time.Now()
		s.now = func() time.Time { return base }
		require.NoError(t, s.Save(ctx, "0xdef", "n2", time.Minute))
		s.now = func() time.Time { return base.Add(2 * time.Minute) }
		_, ok, err := s.Consume(ctx, "0xdef")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
