package session

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	proto "github.com/golang/protobuf/proto"
	"github.com/google/btree"
	"github.com/pkg/errors"
	"github.com/vx-labs/boardsync/sequence"
	"github.com/vx-labs/boardsync/transport"
	"github.com/vx-labs/boardsync/wire"
	"go.uber.org/zap"
)

var (
	ErrSendQueueFull = errors.New("send queue is full")
)

// Connection is a live channel to one peer. The server role holds one per accepted
// participant; the client role holds a single upstream connection to the server.
type Connection struct {
	sent      uint64
	received  uint64
	id        string
	name      string
	upstream  bool
	metadata  transport.Metadata
	createdAt time.Time
	logger    *zap.Logger

	encoder *wire.Encoder
	decoder *wire.AsyncDecoder
	queue   chan *wire.Frame
	quit    chan struct{}
	once    sync.Once

	// Owned by the tick loop.
	outbound sequence.Outbound
	inbound  *sequence.Inbound
	pending  []*wire.Envelope
	removed  bool
}

func (c *Connection) Less(than btree.Item) bool {
	return strings.Compare(c.id, than.(*Connection).id) < 0
}

func (c *Connection) ID() string { return c.id }

// outboundTag is the tag of frames written on c.
func (c *Connection) outboundTag() string {
	if c.upstream {
		return wire.TagServer
	}
	return wire.TagClient
}

// inboundTag is the tag of frames expected on c.
func (c *Connection) inboundTag() string {
	if c.upstream {
		return wire.TagClient
	}
	return wire.TagServer
}

func (c *Connection) submit(env *wire.Envelope) {
	c.pending = append(c.pending, env)
}

// flush turns the envelopes submitted during this tick into one sequenced frame.
func (c *Connection) flush() (*wire.Frame, error) {
	if len(c.pending) == 0 {
		return nil, nil
	}
	payload, err := proto.Marshal(&wire.Batch{Envelopes: c.pending})
	c.pending = nil
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal batch")
	}
	return &wire.Frame{
		Tag:      c.outboundTag(),
		Sequence: c.outbound.Next(),
		Payload:  payload,
	}, nil
}

// enqueue hands f to the writer without blocking.
func (c *Connection) enqueue(f *wire.Frame) error {
	select {
	case <-c.quit:
		return ErrConnectionClosed
	default:
	}
	select {
	case c.queue <- f:
		return nil
	default:
		return ErrSendQueueFull
	}
}

func (c *Connection) Close() error {
	var err error
	c.once.Do(func() {
		close(c.quit)
		if c.decoder != nil {
			c.decoder.Cancel()
		}
		err = c.metadata.Channel.Close()
	})
	return err
}

func (c *Connection) closed() bool {
	select {
	case <-c.quit:
		return true
	default:
		return false
	}
}

func (c *Connection) writeLoop(onError func(*Connection, error)) {
	for {
		select {
		case <-c.quit:
			return
		case f := <-c.queue:
			if err := c.encoder.Encode(f); err != nil {
				onError(c, err)
				return
			}
			atomic.AddUint64(&c.sent, 1)
			packetsSent.WithLabelValues(f.Tag).Inc()
		}
	}
}

// ConnectionInfo is a snapshot of a connection.
type ConnectionInfo struct {
	ID              string
	Name            string
	Upstream        bool
	Transport       string
	RemoteAddress   string
	LocalAddress    string
	CreatedAt       time.Time
	PacketsSent     uint64
	PacketsReceived uint64
	// NextSequence is the id the next outbound frame will carry.
	NextSequence uint64
	// ExpectedSequence is the id of the next inbound frame to dispatch.
	ExpectedSequence uint64
	Buffered         int
}

func (c *Connection) info() ConnectionInfo {
	return ConnectionInfo{
		ID:               c.id,
		Name:             c.name,
		Upstream:         c.upstream,
		Transport:        c.metadata.Name,
		RemoteAddress:    c.metadata.RemoteAddress,
		LocalAddress:     c.metadata.LocalAddress,
		CreatedAt:        c.createdAt,
		PacketsSent:      atomic.LoadUint64(&c.sent),
		PacketsReceived:  atomic.LoadUint64(&c.received),
		NextSequence:     c.outbound.Peek(),
		ExpectedSequence: c.inbound.Expected(),
		Buffered:         c.inbound.Buffered(),
	}
}
