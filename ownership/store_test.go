package ownership

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Set(Grab, "a", "b1", true))
	require.NoError(t, s.Set(Select, "a", "b2", true))
	require.NoError(t, s.Set(Hover, "b", "b1", true))

	t.Run("set is idempotent", func(t *testing.T) {
		require.NoError(t, s.Set(Grab, "a", "b1", true))
		require.Equal(t, 1, len(s.ByKind(Grab)))
	})
	t.Run("lookups", func(t *testing.T) {
		require.True(t, s.Has(Grab, "a", "b1"))
		require.False(t, s.Has(Grab, "b", "b1"))
		require.Equal(t, 2, len(s.ByOwner("a")))
		require.Equal(t, 2, len(s.ByEntity("b1")))
		require.Equal(t, 3, len(s.All()))
	})
	t.Run("unset", func(t *testing.T) {
		require.NoError(t, s.Set(Hover, "b", "b1", false))
		require.NoError(t, s.Set(Hover, "b", "missing", false))
		require.False(t, s.Has(Hover, "b", "b1"))
	})
	t.Run("release", func(t *testing.T) {
		released, err := s.Release("a")
		require.NoError(t, err)
		require.Equal(t, 2, len(released))
		require.Empty(t, s.ByOwner("a"))
	})
	t.Run("forget", func(t *testing.T) {
		require.NoError(t, s.Set(Select, "c", "b3", true))
		require.NoError(t, s.Forget("b3"))
		require.Empty(t, s.All())
		require.NoError(t, s.Set(Grab, "c", "w1", true))
		require.NoError(t, s.Set(Hover, "d", "w2", true))
		require.NoError(t, s.Set(Hover, "d", "w3", true))
		require.NoError(t, s.Forget("w1", "w2"))
		require.Equal(t, 1, len(s.All()))
		require.True(t, s.Has(Hover, "d", "w3"))
		require.NoError(t, s.Forget())
	})
}

func TestStoreExclusiveClaims(t *testing.T) {
	t.Run("latest claimant replaces the previous one", func(t *testing.T) {
		s := NewStore()
		require.NoError(t, s.Set(Grab, "zzz", "x", true))
		require.NoError(t, s.Set(Select, "zzz", "x", true))
		require.NoError(t, s.Set(Grab, "aaa", "x", true))
		grabs := s.ByKind(Grab)
		require.Equal(t, 1, len(grabs))
		require.Equal(t, "aaa", grabs[0].Owner)
		require.False(t, s.Has(Grab, "zzz", "x"))
		require.True(t, s.Has(Select, "zzz", "x"))
	})
	t.Run("claims are listed in the order they were set", func(t *testing.T) {
		s := NewStore()
		require.NoError(t, s.Set(Hover, "zzz", "x", true))
		require.NoError(t, s.Set(Hover, "aaa", "y", true))
		require.NoError(t, s.Set(Hover, "mmm", "z", true))
		require.NoError(t, s.Set(Hover, "zzz", "x", true))
		owners := []string{}
		for _, claim := range s.ByKind(Hover) {
			owners = append(owners, claim.Owner)
		}
		require.Equal(t, []string{"aaa", "mmm", "zzz"}, owners)
	})
}
