package session

import (
	"crypto/tls"
	"time"
)

// Config holds the tunables of a session.
type Config struct {
	// Name is the participant name announced to the server.
	Name string
	// Token is the join token presented to the server.
	Token string
	// TokenKey enables join token verification on the server side when not empty.
	TokenKey          string
	TickInterval      time.Duration
	SendQueueDepth    int
	InboundQueueDepth int
	// DeadGracePeriod is how long a dead connection stays in the dead set.
	DeadGracePeriod  time.Duration
	HandshakeTimeout time.Duration
	// GapTimeout is how long a sequence gap may stay open before the connection is dropped.
	GapTimeout time.Duration
	// MaxBuffered bounds the out of order packets kept per connection.
	MaxBuffered    int
	MaxConnections int
	TLS            *tls.Config
}

func DefaultConfig() Config {
	return Config{
		Name:              "anonymous",
		TickInterval:      16 * time.Millisecond,
		SendQueueDepth:    256,
		InboundQueueDepth: 1024,
		DeadGracePeriod:   1 * time.Second,
		HandshakeTimeout:  5 * time.Second,
		GapTimeout:        10 * time.Second,
		MaxBuffered:       1024,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Name == "" {
		c.Name = defaults.Name
	}
	if c.TickInterval <= 0 {
		c.TickInterval = defaults.TickInterval
	}
	if c.SendQueueDepth <= 0 {
		c.SendQueueDepth = defaults.SendQueueDepth
	}
	if c.InboundQueueDepth <= 0 {
		c.InboundQueueDepth = defaults.InboundQueueDepth
	}
	if c.DeadGracePeriod <= 0 {
		c.DeadGracePeriod = defaults.DeadGracePeriod
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = defaults.HandshakeTimeout
	}
	if c.GapTimeout <= 0 {
		c.GapTimeout = defaults.GapTimeout
	}
	if c.MaxBuffered <= 0 {
		c.MaxBuffered = defaults.MaxBuffered
	}
	return c
}
