package journal

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vx-labs/boardsync/netaction"
	"github.com/vx-labs/boardsync/wire"
)

func kinds(entries []Entry) []string {
	out := make([]string, len(entries))
	for i := range entries {
		out[i] = entries[i].Envelope.Kind
	}
	return out
}

func TestJournal(t *testing.T) {
	j := New()
	_, err := j.Append("a", netaction.Record{Entity: "b1"}, &wire.Envelope{Kind: "create_board"})
	require.NoError(t, err)
	_, err = j.Append("a", netaction.Record{Entity: "w1", Parent: "b1"}, &wire.Envelope{Kind: "add_widget"})
	require.NoError(t, err)
	_, err = j.Append("b", netaction.Record{Entity: "b2"}, &wire.Envelope{Kind: "create_board"})
	require.NoError(t, err)

	t.Run("order is kept past single digit indexes", func(t *testing.T) {
		j := New()
		for i := 0; i < 300; i++ {
			_, err := j.Append("a", netaction.Record{}, &wire.Envelope{Kind: "k"})
			require.NoError(t, err)
		}
		all := j.All()
		require.Equal(t, 300, len(all))
		for i := range all {
			require.Equal(t, uint64(i), all[i].Index)
		}
	})
	t.Run("all", func(t *testing.T) {
		require.Equal(t, []string{"create_board", "add_widget", "create_board"}, kinds(j.All()))
	})
	t.Run("by owner", func(t *testing.T) {
		require.Equal(t, 2, len(j.ByOwner("a")))
		require.Equal(t, 1, len(j.ByOwner("b")))
		require.Empty(t, j.ByOwner("c"))
	})
	t.Run("slot replacement", func(t *testing.T) {
		_, err := j.Append("a", netaction.Record{Entity: "b1", Slot: "b1#position"}, &wire.Envelope{Kind: "move_board", Payload: []byte("p1")})
		require.NoError(t, err)
		_, err = j.Append("b", netaction.Record{Entity: "b1", Slot: "b1#position"}, &wire.Envelope{Kind: "move_board", Payload: []byte("p2")})
		require.NoError(t, err)
		moves := j.ByEntity("b1")
		require.Equal(t, []string{"create_board", "move_board"}, kinds(moves))
		require.Equal(t, []byte("p2"), moves[1].Envelope.Payload)
		require.Equal(t, "move_board", j.All()[3].Envelope.Kind)
	})
	t.Run("forget", func(t *testing.T) {
		n, err := j.Forget("b1")
		require.NoError(t, err)
		require.Equal(t, 3, n)
		require.Equal(t, []string{"create_board"}, kinds(j.All()))
		require.Equal(t, 1, j.Len())
		n, err = j.Forget("")
		require.NoError(t, err)
		require.Equal(t, 0, n)
	})
	t.Run("forget walks descendants", func(t *testing.T) {
		j := New()
		appendRecord := func(kind string, record netaction.Record) {
			_, err := j.Append("a", record, &wire.Envelope{Kind: kind})
			require.NoError(t, err)
		}
		appendRecord("create_board", netaction.Record{Entity: "b1", Parent: "lobby"})
		appendRecord("move_board", netaction.Record{Entity: "b1", Slot: "b1#position"})
		appendRecord("rename_board", netaction.Record{Entity: "b1", Slot: "b1#title"})
		appendRecord("create_board", netaction.Record{Entity: "b2", Parent: "b1"})
		appendRecord("add_widget", netaction.Record{Entity: "w1", Parent: "b2"})
		appendRecord("create_board", netaction.Record{Entity: "other"})

		require.Equal(t, []string{"lobby", "b1", "b2", "w1"}, j.Subtree("lobby"))
		require.Nil(t, j.Subtree(""))
		n, err := j.Forget("lobby")
		require.NoError(t, err)
		require.Equal(t, 5, n)
		require.Equal(t, []string{"create_board"}, kinds(j.All()))
		require.Equal(t, "other", j.All()[0].Entity)
	})
	t.Run("lookups are ordered by index", func(t *testing.T) {
		j := New()
		for _, slot := range []string{"s1", "s2", "s1"} {
			_, err := j.Append("a", netaction.Record{Entity: "b1", Slot: slot}, &wire.Envelope{Kind: slot})
			require.NoError(t, err)
		}
		entries := j.ByEntity("b1")
		require.Equal(t, []string{"s2", "s1"}, kinds(entries))
		require.True(t, entries[0].Index < entries[1].Index)
	})
}
