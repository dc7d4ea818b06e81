package session

import (
	"io"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/vx-labs/boardsync/netaction"
	"github.com/vx-labs/boardsync/sequence"
	"github.com/vx-labs/boardsync/transport"
	"github.com/vx-labs/boardsync/wire"
	"go.uber.org/zap"
)

func (s *Session) newConnection(id, name string, upstream bool, md transport.Metadata, enc *wire.Encoder, dec *wire.Decoder) *Connection {
	return &Connection{
		id:        id,
		name:      name,
		upstream:  upstream,
		metadata:  md,
		createdAt: time.Now(),
		logger: s.logger.WithOptions(zap.Fields(
			zap.String("connection_id", id),
			zap.String("remote_address", md.RemoteAddress),
			zap.String("transport", md.Name),
			zap.Bool("upstream", upstream),
		)),
		encoder: enc,
		decoder: dec.Async(md.Channel),
		queue:   make(chan *wire.Frame, s.config.SendQueueDepth),
		quit:    make(chan struct{}),
		inbound: sequence.NewInbound(sequence.Config{
			MaxBuffered: s.config.MaxBuffered,
			MaxWait:     s.config.GapTimeout,
		}),
	}
}

// start hands an established connection to the tick loop and runs its I/O goroutines.
func (s *Session) start(c *Connection) error {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		c.Close()
		return ErrSessionClosed
	}
	s.active[c] = struct{}{}
	s.mutex.Unlock()
	select {
	case s.events <- event{kind: eventEstablished, conn: c}:
	case <-s.quit:
		c.Close()
		return ErrSessionClosed
	}
	go c.writeLoop(s.dead.mark)
	go s.readLoop(c)
	return nil
}

func (s *Session) readLoop(c *Connection) {
	for f := range c.decoder.Frames() {
		select {
		case s.events <- event{kind: eventFrame, conn: c, frame: f, received: time.Now()}:
		case <-s.quit:
			c.Close()
			return
		}
	}
	if err := c.decoder.Err(); err != nil && err != io.EOF && !c.closed() {
		c.logger.Info("connection lost", zap.Error(err))
	}
	c.Close()
	select {
	case s.events <- event{kind: eventClosed, conn: c}:
	case <-s.quit:
	}
}

func (s *Session) release(c *Connection) {
	s.mutex.Lock()
	delete(s.active, c)
	s.mutex.Unlock()
}

func (s *Session) handleFrame(c *Connection, f *wire.Frame, received time.Time) {
	if c.removed {
		return
	}
	if f.Tag != c.inboundTag() {
		c.logger.Warn("unexpected frame tag", zap.String("tag", f.Tag))
		return
	}
	atomic.AddUint64(&c.received, 1)
	packetsReceived.WithLabelValues(f.Tag).Inc()
	ready, err := c.inbound.Push(f.Sequence, f, received)
	switch err {
	case nil:
	case sequence.ErrDuplicate:
		packetsDuplicated.Inc()
		c.logger.Debug("duplicate packet dropped", zap.Uint64("sequence", f.Sequence))
		return
	default:
		c.logger.Warn("sequencing failed, dropping connection", zap.Error(err), zap.Uint64("sequence", f.Sequence))
		c.Close()
		return
	}
	if len(ready) == 0 {
		packetsReordered.Inc()
		return
	}
	for _, item := range ready {
		if err := s.dispatchFrame(c, item.(*wire.Frame)); err != nil {
			c.logger.Error("failed to dispatch packet, dropping connection", zap.Error(err))
			c.Close()
			return
		}
	}
}

func (s *Session) dispatchFrame(c *Connection, f *wire.Frame) error {
	batch := &wire.Batch{}
	if err := wire.UnmarshalPayload(f, batch); err != nil {
		return err
	}
	for _, env := range batch.Envelopes {
		if c.upstream {
			s.dispatchClient(env)
		} else {
			s.dispatchServer(c, env)
		}
	}
	return nil
}

// dispatchServer handles an action submitted by a participant.
func (s *Session) dispatchServer(c *Connection, env *wire.Envelope) {
	env.Requester = c.id
	action, err := s.registry.Decode(env)
	if err != nil {
		dispatchSkipped.WithLabelValues("decode").Inc()
		c.logger.Error("failed to decode action", zap.Error(err), zap.String("kind", env.Kind))
		return
	}
	s.apply(action, env)
}

// dispatchClient handles an action relayed by the server.
func (s *Session) dispatchClient(env *wire.Envelope) {
	action, err := s.registry.Decode(env)
	if err != nil {
		dispatchSkipped.WithLabelValues("decode").Inc()
		s.logger.Error("failed to decode action", zap.Error(err), zap.String("kind", env.Kind))
		return
	}
	local := s.LocalID()
	if env.Requester == local {
		dispatchSkipped.WithLabelValues("requester").Inc()
		return
	}
	err = action.ExecuteOnClient(netaction.NewContext(netaction.RoleClient, local, env.Requester))
	if err != nil {
		s.hookFailed(netaction.RoleClient, env, err)
		return
	}
	actionsDispatched.WithLabelValues(netaction.RoleClient.String()).Inc()
}

func (s *Session) hookFailed(role netaction.Role, env *wire.Envelope, err error) {
	fields := []zap.Field{
		zap.String("kind", env.Kind),
		zap.String("requester", env.Requester),
		zap.String("role", role.String()),
		zap.Error(err),
	}
	if errors.Cause(err) == netaction.ErrEntityNotFound {
		dispatchSkipped.WithLabelValues("entity_not_found").Inc()
		s.logger.Warn("action references an unknown entity, skipping", fields...)
		return
	}
	dispatchSkipped.WithLabelValues("hook_failed").Inc()
	s.logger.Error("action hook failed", fields...)
}

// apply runs the server hook of an action, journals it and relays it to the roster.
func (s *Session) apply(action netaction.Action, env *wire.Envelope) error {
	err := action.ExecuteOnServer(netaction.NewContext(netaction.RoleServer, s.id, env.Requester))
	if err != nil {
		s.hookFailed(netaction.RoleServer, env, err)
		return err
	}
	actionsDispatched.WithLabelValues(netaction.RoleServer.String()).Inc()
	s.record(action, env)
	s.relay(env)
	return nil
}

func (s *Session) record(action netaction.Action, env *wire.Envelope) {
	if d, ok := action.(netaction.Destroying); ok {
		destroyed := s.journal.Subtree(d.Destroys())
		if _, err := s.journal.Forget(d.Destroys()); err != nil {
			s.logger.Error("failed to forget journal records", zap.Error(err), zap.String("entity", d.Destroys()))
		}
		if err := s.claims.Forget(destroyed...); err != nil {
			s.logger.Error("failed to forget claims", zap.Error(err), zap.String("entity", d.Destroys()))
		}
	}
	if r, ok := action.(netaction.Recorded); ok {
		if _, err := s.journal.Append(env.Requester, r.Record(), env); err != nil {
			s.logger.Error("failed to journal action", zap.Error(err), zap.String("kind", env.Kind))
		}
	}
	journalSize.Set(float64(s.journal.Len()))
}

func (s *Session) relay(env *wire.Envelope) {
	for _, c := range s.members() {
		c.submit(env)
	}
}

// Execute replicates action. In the client role it is submitted to the server, which runs the
// server hook and relays it; in the server role only, the server hook runs here and the action
// is broadcast. The caller is expected to have applied the effect locally already.
func (s *Session) Execute(action netaction.Action) error {
	s.mutex.RLock()
	upstream := s.upstream
	serving := s.serving
	s.mutex.RUnlock()
	switch {
	case upstream != nil:
		env, err := netaction.Encode(action, upstream.id)
		if err != nil {
			return err
		}
		upstream.submit(env)
		return nil
	case serving:
		env, err := netaction.Encode(action, s.id)
		if err != nil {
			return err
		}
		return s.apply(action, env)
	default:
		return ErrNotConnected
	}
}

// ExecuteTo sends action to the given connections only, without running the server hook nor
// journaling it.
func (s *Session) ExecuteTo(action netaction.Action, recipients ...string) error {
	env, err := netaction.Encode(action, s.id)
	if err != nil {
		return err
	}
	for _, id := range recipients {
		c := s.lookup(id)
		if c == nil || c.upstream {
			return errors.Wrap(ErrConnectionNotFound, id)
		}
		c.submit(env)
	}
	return nil
}

// broadcast applies a server originated action on behalf of requester.
func (s *Session) broadcast(action netaction.Action, requester string) {
	env, err := netaction.Encode(action, requester)
	if err != nil {
		s.logger.Error("failed to encode action", zap.Error(err), zap.String("kind", action.Kind()))
		return
	}
	s.apply(action, env)
}
