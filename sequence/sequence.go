package sequence

import (
	"errors"
	"time"

	"github.com/google/btree"
)

var (
	ErrDuplicate = errors.New("packet already applied or buffered")
	ErrOverflow  = errors.New("too many packets buffered while waiting for a gap to close")
	ErrGap       = errors.New("sequence gap did not close in time")
)

// Outbound hands out sequence ids for one outgoing channel.
type Outbound struct {
	next uint64
}

func (o *Outbound) Next() uint64 {
	id := o.next
	o.next++
	return id
}

// Peek returns the id the next call to Next will return.
func (o *Outbound) Peek() uint64 {
	return o.next
}

type pending struct {
	id       uint64
	item     interface{}
	received time.Time
}

func (p *pending) Less(than btree.Item) bool {
	return p.id < than.(*pending).id
}

type Config struct {
	// MaxBuffered bounds how many out-of-order packets may wait for a gap. 0 means unbounded.
	MaxBuffered int
	// MaxWait bounds how long a gap may stay open. 0 means forever.
	MaxWait time.Duration
}

// Inbound restores the sending order of one incoming channel.
type Inbound struct {
	config   Config
	expected uint64
	buffer   *btree.BTree
}

func NewInbound(config Config) *Inbound {
	return &Inbound{
		config: config,
		buffer: btree.New(2),
	}
}

// Expected returns the id of the next packet to dispatch.
func (in *Inbound) Expected() uint64 {
	return in.expected
}

// Buffered returns how many packets wait for a gap to close.
func (in *Inbound) Buffered() int {
	return in.buffer.Len()
}

// Push records a received packet and returns the items that are now ready, in order.
func (in *Inbound) Push(id uint64, item interface{}, now time.Time) ([]interface{}, error) {
	if id < in.expected {
		return nil, ErrDuplicate
	}
	if id > in.expected {
		p := &pending{id: id, item: item, received: now}
		if in.buffer.Has(p) {
			return nil, ErrDuplicate
		}
		if in.config.MaxBuffered > 0 && in.buffer.Len() >= in.config.MaxBuffered {
			return nil, ErrOverflow
		}
		in.buffer.ReplaceOrInsert(p)
		return nil, nil
	}
	ready := []interface{}{item}
	in.expected++
	for {
		min := in.buffer.Min()
		if min == nil || min.(*pending).id != in.expected {
			break
		}
		in.buffer.DeleteMin()
		ready = append(ready, min.(*pending).item)
		in.expected++
	}
	return ready, nil
}

// Expired reports ErrGap when the oldest buffered packet waited longer than MaxWait.
func (in *Inbound) Expired(now time.Time) error {
	if in.config.MaxWait == 0 || in.buffer.Len() == 0 {
		return nil
	}
	var oldest time.Time
	in.buffer.Ascend(func(i btree.Item) bool {
		p := i.(*pending)
		if oldest.IsZero() || p.received.Before(oldest) {
			oldest = p.received
		}
		return true
	})
	if now.Sub(oldest) > in.config.MaxWait {
		return ErrGap
	}
	return nil
}
