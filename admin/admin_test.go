package admin

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vx-labs/boardsync/network"
	"github.com/vx-labs/boardsync/session"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestAdmin(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	server := session.New(zap.NewNop(), session.Config{TickInterval: time.Millisecond}, nil)
	defer server.Shutdown()
	addr, err := server.Listen(0)
	require.NoError(t, err)
	go server.Run(ctx)

	lis, err := Serve(zap.NewNop(), server, 0)
	require.NoError(t, err)
	defer lis.Close()
	conn, err := grpc.DialContext(ctx, lis.Addr().String(), network.GRPCClientOptions()...)
	require.NoError(t, err)
	defer conn.Close()
	client := NewClient(conn)

	participant := session.New(zap.NewNop(), session.Config{Name: "alice"}, nil)
	defer participant.Shutdown()
	require.NoError(t, participant.Connect(ctx, fmt.Sprintf("127.0.0.1:%d", addr.(*net.TCPAddr).Port)))

	t.Run("list connections", func(t *testing.T) {
		var out *ListConnectionsOutput
		for out == nil || len(out.Connections) == 0 {
			out, err = client.ListConnections(ctx)
			require.NoError(t, err)
		}
		require.Equal(t, server.ID(), out.SessionID)
		require.Equal(t, 1, len(out.Connections))
		require.Equal(t, participant.LocalID(), out.Connections[0].ID)
		require.Equal(t, "alice", out.Connections[0].Name)
		require.Equal(t, "tcp", out.Connections[0].Transport)
	})
	t.Run("list journal", func(t *testing.T) {
		records, err := client.ListJournal(ctx, participant.LocalID())
		require.NoError(t, err)
		require.Equal(t, 1, len(records))
		require.Equal(t, session.KindParticipantJoined, records[0].Kind)
		require.Equal(t, participant.LocalID(), records[0].Entity)
		records, err = client.ListJournal(ctx, "nobody")
		require.NoError(t, err)
		require.Empty(t, records)
	})
	t.Run("close unknown connection", func(t *testing.T) {
		err := client.CloseConnection(ctx, "nope")
		require.Equal(t, codes.NotFound, status.Code(err))
	})
	t.Run("close connection", func(t *testing.T) {
		require.NoError(t, client.CloseConnection(ctx, participant.LocalID()))
		out := &ListConnectionsOutput{Connections: []*Connection{{}}}
		for len(out.Connections) > 0 {
			out, err = client.ListConnections(ctx)
			require.NoError(t, err)
		}
	})
}
