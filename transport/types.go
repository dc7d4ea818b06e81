package transport

import (
	"io"
	"time"
)

type TimeoutReadWriteCloser interface {
	SetDeadline(time.Time) error
	io.ReadWriteCloser
}

// Metadata describes an established byte stream to a peer.
type Metadata struct {
	Name          string
	Encrypted     bool
	RemoteAddress string
	LocalAddress  string
	Channel       TimeoutReadWriteCloser
}

// Handler takes ownership of an accepted stream.
type Handler func(Metadata) error
