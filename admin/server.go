package admin

import (
	"context"
	"fmt"
	"net"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/pkg/errors"
	"github.com/vx-labs/boardsync/journal"
	"github.com/vx-labs/boardsync/network"
	"github.com/vx-labs/boardsync/session"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type server struct {
	session *session.Session
}

func (s *server) ListConnections(ctx context.Context, input *ListConnectionsInput) (*ListConnectionsOutput, error) {
	var conns []session.ConnectionInfo
	err := s.session.Query(ctx, func() {
		conns = s.session.Connections()
	})
	if err != nil {
		return nil, toStatus(err)
	}
	out := &ListConnectionsOutput{
		SessionID:   s.session.ID(),
		Connections: make([]*Connection, len(conns)),
	}
	for idx, c := range conns {
		out.Connections[idx] = &Connection{
			ID:               c.ID,
			Name:             c.Name,
			Upstream:         c.Upstream,
			Transport:        c.Transport,
			RemoteAddress:    c.RemoteAddress,
			LocalAddress:     c.LocalAddress,
			Created:          c.CreatedAt.Unix(),
			PacketsSent:      c.PacketsSent,
			PacketsReceived:  c.PacketsReceived,
			NextSequence:     c.NextSequence,
			ExpectedSequence: c.ExpectedSequence,
			Buffered:         int64(c.Buffered),
		}
	}
	return out, nil
}

func (s *server) ListJournal(ctx context.Context, input *ListJournalInput) (*ListJournalOutput, error) {
	var entries []journal.Entry
	if input.Owner != "" {
		entries = s.session.Journal().ByOwner(input.Owner)
	} else {
		entries = s.session.Journal().All()
	}
	out := &ListJournalOutput{Records: make([]*Record, len(entries))}
	for idx, entry := range entries {
		out.Records[idx] = &Record{
			Index:  entry.Index,
			Kind:   entry.Envelope.Kind,
			Owner:  entry.Owner,
			Entity: entry.Entity,
			Parent: entry.Parent,
			Slot:   entry.Slot,
		}
	}
	return out, nil
}

func (s *server) CloseConnection(ctx context.Context, input *CloseConnectionInput) (*CloseConnectionOutput, error) {
	var closeErr error
	err := s.session.Query(ctx, func() {
		closeErr = s.session.CloseConnection(input.ID)
	})
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return &CloseConnectionOutput{}, nil
}

func toStatus(err error) error {
	switch errors.Cause(err) {
	case session.ErrConnectionNotFound:
		return status.Error(codes.NotFound, err.Error())
	case session.ErrSessionClosed:
		return status.Error(codes.Unavailable, err.Error())
	case context.Canceled:
		return status.Error(codes.Canceled, err.Error())
	case context.DeadlineExceeded:
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// Serve exposes the admin service of s on port. Closing the returned listener stops it.
func Serve(logger *zap.Logger, s *session.Session, port int) (net.Listener, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, errors.Wrap(err, "failed to start admin listener")
	}
	grpcServer := grpc.NewServer(network.GRPCServerOptions()...)
	RegisterAdminServer(grpcServer, &server{session: s})
	grpc_prometheus.Register(grpcServer)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Debug("admin server stopped", zap.Error(err))
		}
	}()
	logger.Info("started admin service", zap.String("address", lis.Addr().String()))
	return lis, nil
}
