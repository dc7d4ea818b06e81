package transport

import (
	"crypto/tls"
	"net"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// LoadTLSConfig builds a server configuration from PEM encoded certificate and key files.
func LoadTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load TLS key pair")
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// NewTLSTransport behaves like NewTCPTransport, wrapping streams in TLS.
func NewTLSTransport(port, maxConnections int, config *tls.Config, logger *zap.Logger, handler Handler) (net.Listener, error) {
	l, err := listen(port, maxConnections)
	if err != nil {
		return nil, err
	}
	l = tls.NewListener(l, config)
	listener := &tcp{
		name:     "tls",
		listener: l,
		logger:   logger.WithOptions(zap.Fields(zap.String("transport", "tls"))),
	}
	go listener.acceptLoop(handler)
	return l, nil
}
