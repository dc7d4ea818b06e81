package wire

import (
	"bytes"
	"io"
	"io/ioutil"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodec(t *testing.T) {
	t.Run("stream", func(t *testing.T) {
		buf := &bytes.Buffer{}
		enc := NewEncoder(buf)
		batch := &Batch{Envelopes: []*Envelope{
			{Kind: "move_board", Requester: "a", Payload: []byte{1, 2, 3}},
			{Kind: "rename_board", Requester: "a"},
		}}
		require.NoError(t, enc.Send(TagServer, 0, batch))
		require.NoError(t, enc.Send(TagServer, 1, &Batch{}))
		require.NoError(t, enc.Send(TagWelcome, 0, &Welcome{ConnectionID: "c1", ServerID: "s1"}))

		dec := NewDecoder(buf)
		f, err := dec.Decode()
		require.NoError(t, err)
		require.Equal(t, TagServer, f.Tag)
		require.Equal(t, uint64(0), f.Sequence)
		decoded := &Batch{}
		require.NoError(t, UnmarshalPayload(f, decoded))
		require.Equal(t, 2, len(decoded.Envelopes))
		require.Equal(t, "move_board", decoded.Envelopes[0].Kind)
		require.Equal(t, []byte{1, 2, 3}, decoded.Envelopes[0].Payload)

		f, err = dec.Decode()
		require.NoError(t, err)
		require.Equal(t, uint64(1), f.Sequence)

		f, err = dec.Decode()
		require.NoError(t, err)
		welcome := &Welcome{}
		require.NoError(t, UnmarshalPayload(f, welcome))
		require.Equal(t, "c1", welcome.ConnectionID)

		_, err = dec.Decode()
		require.Equal(t, io.EOF, err)
	})
	t.Run("truncated frame", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, NewEncoder(buf).Send(TagClient, 3, &Batch{Envelopes: []*Envelope{{Kind: "x"}}}))
		data := buf.Bytes()
		_, err := NewDecoder(bytes.NewReader(data[:len(data)-1])).Decode()
		require.Equal(t, io.ErrUnexpectedEOF, err)
	})
	t.Run("async", func(t *testing.T) {
		buf := &bytes.Buffer{}
		enc := NewEncoder(buf)
		for i := 0; i < 3; i++ {
			require.NoError(t, enc.Send(TagClient, uint64(i), &Batch{}))
		}
		dec := Async(ioutil.NopCloser(buf))
		count := 0
		for f := range dec.Frames() {
			require.Equal(t, uint64(count), f.Sequence)
			count++
		}
		require.Equal(t, 3, count)
		require.Equal(t, io.EOF, dec.Err())
	})
}
