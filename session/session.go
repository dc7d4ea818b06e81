package session

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vx-labs/boardsync/journal"
	"github.com/vx-labs/boardsync/netaction"
	"github.com/vx-labs/boardsync/ownership"
	"github.com/vx-labs/boardsync/wire"
	"go.uber.org/zap"
)

var (
	ErrNotConnected       = errors.New("session holds neither the server nor the client role")
	ErrConnectionSetup    = errors.New("connection setup failed")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrConnectionClosed   = errors.New("connection closed")
	ErrAlreadyConnected   = errors.New("session is already connected to a server")
	ErrSessionClosed      = errors.New("session is shut down")
	ErrRefused            = errors.New("connection refused by server")
	ErrHandshake          = errors.New("handshake failed")
)

// Synchronizer provides actions reproducing state the journal does not hold, like loaded
// scenes. They are sent to joining connections right after the journal.
type Synchronizer interface {
	Synchronize() []netaction.Action
}

type eventKind int

const (
	eventEstablished eventKind = iota
	eventFrame
	eventClosed
)

// event is handed from connection goroutines to the tick loop.
type event struct {
	kind     eventKind
	conn     *Connection
	frame    *wire.Frame
	received time.Time
}

// Session is the replication context of a process. It may hold the server role, accepting
// participants, the client role, connected to a server, or both.
//
// Every state mutation happens on the tick loop: either Run, or a goroutine calling Tick.
// Execute, ExecuteTo, Connections, CloseConnection and the hook registration methods must be
// called from the tick loop, typically from OnTick hooks or through Do and Query.
type Session struct {
	id       string
	config   Config
	logger   *zap.Logger
	registry *netaction.Registry
	presence Presence
	journal  *journal.Journal
	claims   *ownership.Store
	dead     *deadSet

	mutex     sync.RWMutex
	listeners []net.Listener
	serving   bool
	upstream  *Connection
	serverID  string
	active    map[*Connection]struct{}
	closed    bool

	roster        *btree.BTree
	synchronizers []Synchronizer
	onTick        []func()
	onEstablished []func(ConnectionInfo)
	onClosed      []func(ConnectionInfo)

	events chan event
	tasks  chan func()
	quit   chan struct{}
	once   sync.Once
}

// New creates a session. presence receives the effects of built-in actions and may be nil.
func New(logger *zap.Logger, config Config, presence Presence) *Session {
	config = config.withDefaults()
	if presence == nil {
		presence = nopPresence{}
	}
	id := uuid.New().String()
	s := &Session{
		id:       id,
		config:   config,
		logger:   logger.WithOptions(zap.Fields(zap.String("session_id", id))),
		registry: netaction.NewRegistry(),
		presence: presence,
		journal:  journal.New(),
		claims:   ownership.NewStore(),
		active:   make(map[*Connection]struct{}),
		roster:   btree.New(2),
		events:   make(chan event, config.InboundQueueDepth),
		tasks:    make(chan func(), config.InboundQueueDepth),
		quit:     make(chan struct{}),
	}
	s.dead = newDeadSet(config.DeadGracePeriod, s.logger)
	s.registerBuiltins()
	return s
}

func (s *Session) ID() string                    { return s.id }
func (s *Session) Registry() *netaction.Registry { return s.registry }
func (s *Session) Journal() *journal.Journal     { return s.journal }
func (s *Session) Claims() *ownership.Store      { return s.claims }
func (s *Session) Config() Config                { return s.config }

// LocalID is the requester identity of actions executed by this process: the connection id
// assigned by the server in the client role, the session id otherwise.
func (s *Session) LocalID() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.upstream != nil {
		return s.upstream.id
	}
	return s.id
}

// ServerID is the id of the server session this process is connected to.
func (s *Session) ServerID() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.serverID
}

func (s *Session) IsServer() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.serving
}

func (s *Session) IsClient() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.upstream != nil
}

func (s *Session) AddSynchronizer(synchronizer Synchronizer) {
	s.synchronizers = append(s.synchronizers, synchronizer)
}

// OnTick registers f to run at the start of every tick.
func (s *Session) OnTick(f func()) {
	s.onTick = append(s.onTick, f)
}

func (s *Session) OnEstablished(f func(ConnectionInfo)) {
	s.onEstablished = append(s.onEstablished, f)
}

func (s *Session) OnClosed(f func(ConnectionInfo)) {
	s.onClosed = append(s.onClosed, f)
}

// Do schedules f on the tick loop.
func (s *Session) Do(f func()) error {
	select {
	case <-s.quit:
		return ErrSessionClosed
	default:
	}
	select {
	case <-s.quit:
		return ErrSessionClosed
	case s.tasks <- f:
		return nil
	}
}

// Query runs f on the tick loop and waits for it to return.
func (s *Session) Query(ctx context.Context, f func()) error {
	done := make(chan struct{})
	err := s.Do(func() {
		defer close(done)
		f()
	})
	if err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.quit:
		return ErrSessionClosed
	}
}

// Run drives the tick loop until ctx is cancelled or the session is shut down.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.quit:
			return nil
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick runs one iteration of the tick loop: scheduled closures and tick hooks, connection events
// in arrival order, sequence gap expiry, then one batch per connection is sent.
func (s *Session) Tick() {
	s.runTasks()
	for _, f := range s.onTick {
		f()
	}
	s.processEvents()
	s.expireGaps(time.Now())
	s.flush()
}

func (s *Session) runTasks() {
	for i := cap(s.tasks); i > 0; i-- {
		select {
		case f := <-s.tasks:
			f()
		default:
			return
		}
	}
}

func (s *Session) processEvents() {
	for i := cap(s.events); i > 0; i-- {
		select {
		case e := <-s.events:
			s.handle(e)
		default:
			return
		}
	}
}

func (s *Session) handle(e event) {
	switch e.kind {
	case eventEstablished:
		if e.conn.upstream {
			s.clientEstablished(e.conn)
		} else {
			s.serverEstablished(e.conn)
		}
	case eventFrame:
		s.handleFrame(e.conn, e.frame, e.received)
	case eventClosed:
		if e.conn.upstream {
			s.clientClosed(e.conn)
		} else {
			s.serverClosed(e.conn)
		}
	}
}

// members returns the roster of the server role.
func (s *Session) members() []*Connection {
	out := make([]*Connection, 0, s.roster.Len())
	s.roster.Ascend(func(i btree.Item) bool {
		out = append(out, i.(*Connection))
		return true
	})
	return out
}

// connections returns the live connections, roster first.
func (s *Session) connections() []*Connection {
	out := s.members()
	s.mutex.RLock()
	if s.upstream != nil {
		out = append(out, s.upstream)
	}
	s.mutex.RUnlock()
	return out
}

func (s *Session) lookup(id string) *Connection {
	if v := s.roster.Get(&Connection{id: id}); v != nil {
		return v.(*Connection)
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.upstream != nil && s.upstream.id == id {
		return s.upstream
	}
	return nil
}

func (s *Session) expireGaps(now time.Time) {
	for _, c := range s.connections() {
		if err := c.inbound.Expired(now); err != nil {
			c.logger.Warn("sequence gap timed out, dropping connection",
				zap.Uint64("expected_sequence", c.inbound.Expected()),
				zap.Int("buffered", c.inbound.Buffered()))
			c.Close()
		}
	}
}

func (s *Session) flush() {
	for _, c := range s.connections() {
		if s.dead.contains(c.id) {
			c.pending = nil
			continue
		}
		f, err := c.flush()
		if err != nil {
			c.logger.Error("failed to build batch", zap.Error(err))
			continue
		}
		if f == nil {
			continue
		}
		err = c.enqueue(f)
		switch err {
		case nil, ErrConnectionClosed:
		default:
			s.dead.mark(c, err)
		}
	}
}

// Connections returns a snapshot of the live connections.
func (s *Session) Connections() []ConnectionInfo {
	conns := s.connections()
	out := make([]ConnectionInfo, len(conns))
	for idx := range conns {
		out[idx] = conns[idx].info()
	}
	return out
}

// CloseConnection closes a connection. Cleanup runs on the next ticks.
func (s *Session) CloseConnection(id string) error {
	c := s.lookup(id)
	if c == nil {
		return errors.Wrap(ErrConnectionNotFound, id)
	}
	return c.Close()
}

// Shutdown stops listeners, closes every connection and stops the tick loop.
func (s *Session) Shutdown() error {
	s.once.Do(func() {
		s.mutex.Lock()
		s.closed = true
		listeners := s.listeners
		s.listeners = nil
		conns := make([]*Connection, 0, len(s.active))
		for c := range s.active {
			conns = append(conns, c)
		}
		s.mutex.Unlock()
		for _, l := range listeners {
			l.Close()
		}
		for _, c := range conns {
			c.Close()
		}
		close(s.quit)
		s.logger.Info("session stopped")
	})
	return nil
}
