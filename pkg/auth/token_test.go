package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer(t *testing.T) {
	issuer, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)

	token, exp, err := issuer.Issue("0xAbC", "session")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "0xAbC", claims.Address)
	assert.Equal(t, "session", claims.Kind)
	assert.Equal(t, "0xabc", claims.Subject)

	t.Run("Other secret rejected", func(t *testing.T) {
		other, err := NewIssuer("another", time.Hour)
		require.NoError(t, err)
		_, err = other.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired rejected", func(t *testing.T) {
		issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { issuer.now = time.Now }()
		_, err := issuer.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage rejected", func(t *testing.T) {
		_, err := issuer.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRandomSecret(t *testing.T) {
	a, err := NewIssuer("", 0)
	require.NoError(t, err)
	b, err := NewIssuer("", 0)
	require.NoError(t, err)

	token, _, err := a.Issue("0xAbC", "viewer")
	require.NoError(t, err)
	_, err = b.Parse(token)
	assert.Error(t, err)
	assert.Equal(t, 12*time.Hour, a.ttl)
}
