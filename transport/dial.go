package transport

import (
	"context"
	"crypto/tls"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

var (
	ErrUnsupportedScheme = errors.New("unsupported candidate scheme")
)

// Dial opens a stream to candidate. Candidates are either host:port, or URLs using the tcp, tls,
// ws or wss schemes. tlsConfig is used by the encrypted schemes and may be nil.
func Dial(ctx context.Context, candidate string, tlsConfig *tls.Config) (Metadata, error) {
	if !strings.Contains(candidate, "://") {
		candidate = "tcp://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return Metadata{}, errors.Wrapf(err, "invalid candidate %q", candidate)
	}
	switch u.Scheme {
	case "tcp":
		return dialTCP(ctx, u.Host)
	case "tls":
		return dialTLS(ctx, u.Host, tlsConfig)
	case "ws", "wss":
		return dialWS(ctx, u, tlsConfig)
	default:
		return Metadata{}, errors.Wrap(ErrUnsupportedScheme, u.Scheme)
	}
}

func dialTCP(ctx context.Context, address string) (Metadata, error) {
	dialer := &net.Dialer{}
	c, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{
		Channel:       c,
		Name:          "tcp",
		RemoteAddress: c.RemoteAddr().String(),
		LocalAddress:  c.LocalAddr().String(),
	}, nil
}

func dialTLS(ctx context.Context, address string, config *tls.Config) (Metadata, error) {
	md, err := dialTCP(ctx, address)
	if err != nil {
		return md, err
	}
	if config == nil {
		config = &tls.Config{}
	}
	if config.ServerName == "" {
		config = config.Clone()
		config.ServerName, _, _ = net.SplitHostPort(address)
	}
	raw := md.Channel.(net.Conn)
	if deadline, ok := ctx.Deadline(); ok {
		raw.SetDeadline(deadline)
	}
	c := tls.Client(raw, config)
	if err := c.Handshake(); err != nil {
		raw.Close()
		return Metadata{}, errors.Wrap(err, "TLS handshake failed")
	}
	raw.SetDeadline(time.Time{})
	md.Channel = c
	md.Name = "tls"
	md.Encrypted = true
	return md, nil
}

func dialWS(ctx context.Context, u *url.URL, config *tls.Config) (Metadata, error) {
	if u.Path == "" {
		u.Path = DefaultWSPath
	}
	dialer := *websocket.DefaultDialer
	dialer.TLSClientConfig = config
	c, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return Metadata{}, err
	}
	conn := newConn(c)
	return Metadata{
		Channel:       conn,
		Name:          u.Scheme,
		Encrypted:     u.Scheme == "wss",
		RemoteAddress: conn.RemoteAddr().String(),
		LocalAddress:  conn.LocalAddr().String(),
	}, nil
}
