package auth

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestJoinToken(t *testing.T) {
	token, err := EncodeJoinToken("secret", "alice", time.Hour)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		claims, err := DecodeJoinToken("secret", token)
		require.NoError(t, err)
		require.Equal(t, "alice", claims.Participant)
		require.Equal(t, "boardsync", claims.Issuer)
	})
	t.Run("wrong key", func(t *testing.T) {
		_, err := DecodeJoinToken("other", token)
		require.Equal(t, ErrInvalidToken, errors.Cause(err))
	})
	t.Run("non positive ttl falls back to the default", func(t *testing.T) {
		token, err := EncodeJoinToken("secret", "alice", -time.Hour)
		require.NoError(t, err)
		_, err = DecodeJoinToken("secret", token)
		require.NoError(t, err)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := DecodeJoinToken("secret", "not-a-token")
		require.Equal(t, ErrInvalidToken, errors.Cause(err))
	})
}
