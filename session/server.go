package session

import (
	"crypto/tls"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vx-labs/boardsync/auth"
	"github.com/vx-labs/boardsync/netaction"
	"github.com/vx-labs/boardsync/ownership"
	"github.com/vx-labs/boardsync/transport"
	"github.com/vx-labs/boardsync/wire"
	"go.uber.org/zap"
)

// Listen starts the server role on a TCP port, 0 picking a random one.
func (s *Session) Listen(port int) (net.Addr, error) {
	return s.listen("tcp", func() (net.Listener, error) {
		return transport.NewTCPTransport(port, s.config.MaxConnections, s.logger, s.accept)
	})
}

// ListenTLS starts the server role on a TLS port.
func (s *Session) ListenTLS(port int, config *tls.Config) (net.Addr, error) {
	return s.listen("tls", func() (net.Listener, error) {
		return transport.NewTLSTransport(port, s.config.MaxConnections, config, s.logger, s.accept)
	})
}

// ListenWS starts the server role on a websocket endpoint.
func (s *Session) ListenWS(port int, path string) (net.Addr, error) {
	return s.listen("ws", func() (net.Listener, error) {
		return transport.NewWSTransport(port, path, s.logger, s.accept)
	})
}

func (s *Session) listen(name string, open func() (net.Listener, error)) (net.Addr, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	l, err := open()
	if err != nil {
		s.logger.Warn("failed to start listener", zap.String("transport", name), zap.Error(err))
		return nil, err
	}
	s.listeners = append(s.listeners, l)
	s.serving = true
	s.logger.Info("started listener", zap.String("transport", name), zap.String("address", l.Addr().String()))
	return l.Addr(), nil
}

func refuse(enc *wire.Encoder, reason string) error {
	return enc.Encode(&wire.Frame{Tag: wire.TagRefused, Payload: []byte(reason)})
}

// accept runs the server side of the handshake on a new stream.
func (s *Session) accept(md transport.Metadata) error {
	md.Channel.SetDeadline(time.Now().Add(s.config.HandshakeTimeout))
	enc := wire.NewEncoder(md.Channel)
	dec := wire.NewDecoder(md.Channel)
	f, err := dec.Decode()
	if err != nil {
		return errors.Wrap(err, "failed to read hello")
	}
	if f.Tag != wire.TagHello {
		refuse(enc, "expected hello")
		return errors.Wrapf(ErrHandshake, "unexpected %q frame", f.Tag)
	}
	hello := &wire.Hello{}
	if err := wire.UnmarshalPayload(f, hello); err != nil {
		refuse(enc, "malformed hello")
		return err
	}
	name := hello.Name
	if s.config.TokenKey != "" {
		token, err := auth.DecodeJoinToken(s.config.TokenKey, hello.Token)
		if err != nil {
			refuse(enc, "invalid join token")
			return err
		}
		if name == "" {
			name = token.Participant
		}
	}
	id := uuid.New().String()
	err = enc.Send(wire.TagWelcome, 0, &wire.Welcome{ConnectionID: id, ServerID: s.id})
	if err != nil {
		return errors.Wrap(err, "failed to send welcome")
	}
	md.Channel.SetDeadline(time.Time{})
	return s.start(s.newConnection(id, name, false, md, enc, dec))
}

// serverEstablished synchronizes a joining connection before it becomes a roster member:
// journal records, synchronizer outputs and current claims are sent to it alone, then its
// arrival is announced to the whole roster.
func (s *Session) serverEstablished(c *Connection) {
	entries := s.journal.All()
	for idx := range entries {
		c.submit(entries[idx].Envelope)
	}
	synchronized := 0
	for _, synchronizer := range s.synchronizers {
		for _, action := range synchronizer.Synchronize() {
			if err := s.submitAs(c, action, s.id); err != nil {
				c.logger.Error("failed to encode synchronization action", zap.Error(err), zap.String("kind", action.Kind()))
				continue
			}
			synchronized++
		}
	}
	claims := 0
	for _, kind := range ownership.Kinds {
		for _, claim := range s.claims.ByKind(kind) {
			if err := s.submitAs(c, s.newSetAction(kind, claim.Entity, true), claim.Owner); err != nil {
				c.logger.Error("failed to encode claim", zap.Error(err))
				continue
			}
			claims++
		}
	}
	s.roster.ReplaceOrInsert(c)
	rosterSize.Set(float64(s.roster.Len()))
	s.broadcast(s.newParticipantJoined(c.id, c.name), c.id)
	c.logger.Info("connection established",
		zap.String("participant", c.name),
		zap.Int("journal_records", len(entries)),
		zap.Int("synchronized", synchronized),
		zap.Int("claims", claims))
	info := c.info()
	for _, f := range s.onEstablished {
		f(info)
	}
}

func (s *Session) submitAs(c *Connection, action netaction.Action, requester string) error {
	env, err := netaction.Encode(action, requester)
	if err != nil {
		return err
	}
	c.submit(env)
	return nil
}

// serverClosed removes a connection from the roster and releases what its peer held.
func (s *Session) serverClosed(c *Connection) {
	if c.removed {
		return
	}
	c.removed = true
	c.pending = nil
	s.release(c)
	s.roster.Delete(c)
	rosterSize.Set(float64(s.roster.Len()))
	released, err := s.claims.Release(c.id)
	if err != nil {
		c.logger.Error("failed to release claims", zap.Error(err))
	}
	for _, claim := range released {
		s.broadcast(s.newSetAction(ownership.Kind(claim.Kind), claim.Entity, false), c.id)
	}
	s.broadcast(s.newParticipantLeft(c.id), c.id)
	c.logger.Info("connection closed", zap.Int("released_claims", len(released)))
	info := c.info()
	for _, f := range s.onClosed {
		f(info)
	}
}
