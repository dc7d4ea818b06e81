package world

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestWorld(t *testing.T) {
	w := New()
	require.NoError(t, w.Create(Entity{ID: "b1", Kind: KindBoard, Title: "plan"}))
	require.NoError(t, w.Create(Entity{ID: "w1", Kind: KindWidget, Parent: "b1"}))
	require.NoError(t, w.Create(Entity{ID: "w2", Kind: KindWidget, Parent: "b1"}))

	t.Run("create twice", func(t *testing.T) {
		require.Equal(t, ErrEntityExists, errors.Cause(w.Create(Entity{ID: "b1", Kind: KindBoard})))
	})
	t.Run("find", func(t *testing.T) {
		e, err := w.Find("b1")
		require.NoError(t, err)
		require.Equal(t, "plan", e.Title)
		_, err = w.Find("nope")
		require.True(t, IsNotFound(err))
	})
	t.Run("update", func(t *testing.T) {
		require.NoError(t, w.Update("b1", func(e Entity) Entity {
			e.Position = Position{X: 1, Y: 2}
			return e
		}))
		e, err := w.Find("b1")
		require.NoError(t, err)
		require.Equal(t, Position{X: 1, Y: 2}, e.Position)
		require.True(t, IsNotFound(w.Update("nope", func(e Entity) Entity { return e })))
	})
	t.Run("indexes", func(t *testing.T) {
		require.Equal(t, 2, len(w.ByKind(KindWidget)))
		require.Equal(t, 2, len(w.ByParent("b1")))
		require.Equal(t, 3, len(w.All()))
	})
	t.Run("destroy cascades", func(t *testing.T) {
		require.NoError(t, w.Destroy("b1"))
		require.Empty(t, w.All())
		require.True(t, IsNotFound(w.Destroy("b1")))
	})
}

func TestPresence(t *testing.T) {
	w := New()
	require.NoError(t, w.Join("alice", "Alice"))
	require.NoError(t, w.Join("bob", "Bob"))
	require.NoError(t, w.Create(Entity{ID: "b1", Kind: KindBoard}))
	require.NoError(t, w.Create(Entity{ID: "cursor", Kind: KindWidget, Owner: "alice"}))

	require.NoError(t, w.SetGrabbed("b1", "alice", true))
	require.NoError(t, w.SetSelected("b1", "bob", true))
	require.NoError(t, w.SetHovered("b1", "alice", true))
	e, err := w.Find("b1")
	require.NoError(t, err)
	require.Equal(t, "alice", e.GrabbedBy)
	require.Equal(t, "bob", e.SelectedBy)

	t.Run("releasing someone else's flag is a no-op", func(t *testing.T) {
		require.NoError(t, w.SetGrabbed("b1", "bob", false))
		e, err := w.Find("b1")
		require.NoError(t, err)
		require.Equal(t, "alice", e.GrabbedBy)
	})
	t.Run("missing entity", func(t *testing.T) {
		require.True(t, IsNotFound(w.SetHovered("nope", "alice", true)))
	})
	t.Run("leave", func(t *testing.T) {
		require.NoError(t, w.Leave("alice"))
		require.False(t, w.Exists("alice"))
		require.False(t, w.Exists("cursor"))
		e, err := w.Find("b1")
		require.NoError(t, err)
		require.Equal(t, "", e.GrabbedBy)
		require.Equal(t, "", e.HoveredBy)
		require.Equal(t, "bob", e.SelectedBy)
		require.Equal(t, 1, len(w.ByKind(KindParticipant)))
	})
}
