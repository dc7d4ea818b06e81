package sequence

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOutbound(t *testing.T) {
	o := &Outbound{}
	require.Equal(t, uint64(0), o.Peek())
	for i := 0; i < 5; i++ {
		require.Equal(t, uint64(i), o.Next())
	}
	require.Equal(t, uint64(5), o.Peek())
}

func drain(t *testing.T, in *Inbound, ids []uint64) []uint64 {
	out := []uint64{}
	now := time.Now()
	for _, id := range ids {
		ready, err := in.Push(id, id, now)
		require.NoError(t, err)
		for _, item := range ready {
			out = append(out, item.(uint64))
		}
	}
	return out
}

func TestInbound(t *testing.T) {
	t.Run("in order", func(t *testing.T) {
		in := NewInbound(Config{})
		require.Equal(t, []uint64{0, 1, 2}, drain(t, in, []uint64{0, 1, 2}))
		require.Equal(t, uint64(3), in.Expected())
	})
	t.Run("reordered", func(t *testing.T) {
		in := NewInbound(Config{})
		ready, err := in.Push(2, uint64(2), time.Now())
		require.NoError(t, err)
		require.Empty(t, ready)
		ready, err = in.Push(1, uint64(1), time.Now())
		require.NoError(t, err)
		require.Empty(t, ready)
		require.Equal(t, 2, in.Buffered())
		require.Equal(t, []uint64{0, 1, 2}, drain(t, in, []uint64{0}))
		require.Equal(t, 0, in.Buffered())
	})
	t.Run("random permutations keep sending order", func(t *testing.T) {
		r := rand.New(rand.NewSource(42))
		for round := 0; round < 50; round++ {
			n := 1 + r.Intn(64)
			ids := make([]uint64, n)
			for i := range ids {
				ids[i] = uint64(i)
			}
			r.Shuffle(n, func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
			in := NewInbound(Config{})
			out := drain(t, in, ids)
			require.Equal(t, n, len(out))
			for i := range out {
				require.Equal(t, uint64(i), out[i])
			}
		}
	})
	t.Run("duplicates are not dispatched again", func(t *testing.T) {
		in := NewInbound(Config{})
		drain(t, in, []uint64{0, 1})
		_, err := in.Push(1, uint64(1), time.Now())
		require.Equal(t, ErrDuplicate, err)
		_, err = in.Push(3, uint64(3), time.Now())
		require.NoError(t, err)
		_, err = in.Push(3, uint64(3), time.Now())
		require.Equal(t, ErrDuplicate, err)
		require.Equal(t, []uint64{2, 3}, drain(t, in, []uint64{2}))
	})
	t.Run("overflow", func(t *testing.T) {
		in := NewInbound(Config{MaxBuffered: 2})
		drain(t, in, []uint64{2, 3})
		_, err := in.Push(4, uint64(4), time.Now())
		require.Equal(t, ErrOverflow, err)
	})
	t.Run("gap expiry", func(t *testing.T) {
		in := NewInbound(Config{MaxWait: time.Second})
		start := time.Now()
		_, err := in.Push(1, uint64(1), start)
		require.NoError(t, err)
		require.NoError(t, in.Expired(start.Add(500*time.Millisecond)))
		require.Equal(t, ErrGap, in.Expired(start.Add(2*time.Second)))
		drain(t, in, []uint64{0})
		require.NoError(t, in.Expired(start.Add(2*time.Second)))
	})
}
