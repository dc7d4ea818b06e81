package transport

import (
	"fmt"
	"net"
	"strings"
	"time"

	proxyproto "github.com/armon/go-proxyproto"
	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
)

type tcp struct {
	name     string
	listener net.Listener
	logger   *zap.Logger
}

func listen(port, maxConnections int) (net.Listener, error) {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, err
	}
	if maxConnections > 0 {
		l = netutil.LimitListener(l, maxConnections)
	}
	return &proxyproto.Listener{Listener: l}, nil
}

// NewTCPTransport accepts plain TCP streams on port, 0 picking a random one. Proxy protocol
// headers are honored. maxConnections bounds the number of open streams when positive.
func NewTCPTransport(port, maxConnections int, logger *zap.Logger, handler Handler) (net.Listener, error) {
	l, err := listen(port, maxConnections)
	if err != nil {
		return nil, err
	}
	listener := &tcp{
		name:     "tcp",
		listener: l,
		logger:   logger.WithOptions(zap.Fields(zap.String("transport", "tcp"))),
	}
	go listener.acceptLoop(handler)
	return l, nil
}

func isClosed(err error) bool {
	return strings.Contains(err.Error(), "use of closed network connection")
}

func (t *tcp) acceptLoop(handler Handler) {
	delay := backoff.NewExponentialBackOff()
	delay.InitialInterval = 5 * time.Millisecond
	delay.MaxInterval = 1 * time.Second
	delay.MaxElapsedTime = 0
	for {
		c, err := t.listener.Accept()
		if err != nil {
			if isClosed(err) {
				return
			}
			if ne, ok := err.(net.Error); ok && ne.Temporary() {
				wait := delay.NextBackOff()
				t.logger.Warn("accept failed", zap.Error(err), zap.Duration("retry_in", wait))
				time.Sleep(wait)
				continue
			}
			t.logger.Error("listener failed", zap.Error(err))
			t.listener.Close()
			return
		}
		delay.Reset()
		t.queueSession(c, handler)
	}
}

func (t *tcp) queueSession(c net.Conn, handler Handler) {
	go func() {
		err := handler(Metadata{
			Channel:       c,
			Encrypted:     t.name == "tls",
			Name:          t.name,
			RemoteAddress: c.RemoteAddr().String(),
			LocalAddress:  c.LocalAddr().String(),
		})
		if err != nil {
			t.logger.Warn("connection handling failed", zap.Error(err), zap.String("remote_address", c.RemoteAddr().String()))
			c.Close()
		}
	}()
}
