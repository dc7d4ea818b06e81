package session

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/vx-labs/boardsync/transport"
	"github.com/vx-labs/boardsync/wire"
	"go.uber.org/zap"
)

// Connect starts the client role. Candidates are tried in order and the first one completing the
// handshake becomes the upstream connection. Connect blocks until then, or until every candidate
// failed.
func (s *Session) Connect(ctx context.Context, candidates ...string) error {
	s.mutex.RLock()
	connected := s.upstream != nil
	s.mutex.RUnlock()
	if connected {
		return ErrAlreadyConnected
	}
	if len(candidates) == 0 {
		return errors.Wrap(ErrConnectionSetup, "no candidate endpoint")
	}
	var last error
	for _, candidate := range candidates {
		c, serverID, err := s.dial(ctx, candidate)
		if err != nil {
			s.logger.Warn("candidate endpoint failed", zap.String("candidate", candidate), zap.Error(err))
			last = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		s.mutex.Lock()
		if s.upstream != nil {
			s.mutex.Unlock()
			c.Close()
			return ErrAlreadyConnected
		}
		s.upstream = c
		s.serverID = serverID
		s.mutex.Unlock()
		return s.start(c)
	}
	return errors.Wrapf(ErrConnectionSetup, "every candidate failed, last error: %v", last)
}

func (s *Session) dial(ctx context.Context, candidate string) (*Connection, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.HandshakeTimeout)
	defer cancel()
	md, err := transport.Dial(ctx, candidate, s.config.TLS)
	if err != nil {
		return nil, "", err
	}
	c, serverID, err := s.handshake(md)
	if err != nil {
		md.Channel.Close()
		return nil, "", err
	}
	return c, serverID, nil
}

func (s *Session) handshake(md transport.Metadata) (*Connection, string, error) {
	md.Channel.SetDeadline(time.Now().Add(s.config.HandshakeTimeout))
	enc := wire.NewEncoder(md.Channel)
	dec := wire.NewDecoder(md.Channel)
	err := enc.Send(wire.TagHello, 0, &wire.Hello{Name: s.config.Name, Token: s.config.Token})
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to send hello")
	}
	f, err := dec.Decode()
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to read welcome")
	}
	switch f.Tag {
	case wire.TagWelcome:
	case wire.TagRefused:
		return nil, "", errors.Wrap(ErrRefused, string(f.Payload))
	default:
		return nil, "", errors.Wrapf(ErrHandshake, "unexpected %q frame", f.Tag)
	}
	welcome := &wire.Welcome{}
	if err := wire.UnmarshalPayload(f, welcome); err != nil {
		return nil, "", err
	}
	if welcome.ConnectionID == "" {
		return nil, "", errors.Wrap(ErrHandshake, "server assigned an empty connection id")
	}
	md.Channel.SetDeadline(time.Time{})
	return s.newConnection(welcome.ConnectionID, s.config.Name, true, md, enc, dec), welcome.ServerID, nil
}

// clientEstablished creates the local participant, which the server does not echo back.
func (s *Session) clientEstablished(c *Connection) {
	if err := s.presence.Join(c.id, c.name); err != nil {
		c.logger.Error("failed to create local participant", zap.Error(err))
	}
	c.logger.Info("connected to server", zap.String("server_id", s.ServerID()))
	info := c.info()
	for _, f := range s.onEstablished {
		f(info)
	}
}

func (s *Session) clientClosed(c *Connection) {
	if c.removed {
		return
	}
	c.removed = true
	c.pending = nil
	s.release(c)
	s.mutex.Lock()
	if s.upstream == c {
		s.upstream = nil
		s.serverID = ""
	}
	s.mutex.Unlock()
	c.logger.Info("disconnected from server")
	info := c.info()
	for _, f := range s.onClosed {
		f(info)
	}
}
