package transport

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DefaultWSPath is the HTTP path upgraded to websocket streams.
const DefaultWSPath = "/boardsync"

// Conn exposes the binary messages of a websocket as a byte stream.
type Conn struct {
	conn   *websocket.Conn
	reader io.Reader
	wmutex sync.Mutex
}

func newConn(c *websocket.Conn) *Conn {
	return &Conn{conn: c}
}

func (c *Conn) Read(b []byte) (int, error) {
	for {
		if c.reader == nil {
			kind, r, err := c.conn.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return 0, io.EOF
				}
				return 0, err
			}
			if kind != websocket.BinaryMessage {
				continue
			}
			c.reader = r
		}
		n, err := c.reader.Read(b)
		if err == io.EOF {
			c.reader = nil
			if n == 0 {
				continue
			}
			return n, nil
		}
		return n, err
	}
}

func (c *Conn) Write(b []byte) (int, error) {
	c.wmutex.Lock()
	defer c.wmutex.Unlock()
	if err := c.conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *Conn) SetDeadline(t time.Time) error {
	if err := c.conn.SetReadDeadline(t); err != nil {
		return err
	}
	return c.conn.SetWriteDeadline(t)
}

type wsListener struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWSTransport accepts websocket streams on port, upgrading requests made on path.
func NewWSTransport(port int, path string, logger *zap.Logger, handler Handler) (net.Listener, error) {
	if path == "" {
		path = DefaultWSPath
	}
	listener := &wsListener{
		logger: logger.WithOptions(zap.Fields(zap.String("transport", "ws"))),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		conn, err := listener.upgrader.Upgrade(w, r, nil)
		if err != nil {
			listener.logger.Warn("websocket negotiation failed", zap.String("remote_address", r.RemoteAddr), zap.Error(err))
			return
		}
		listener.queueSession(newConn(conn), handler)
	})
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, err
	}
	go http.Serve(ln, mux)
	return ln, nil
}

func (t *wsListener) queueSession(c *Conn, handler Handler) {
	go func() {
		err := handler(Metadata{
			Channel:       c,
			Name:          "ws",
			RemoteAddress: c.RemoteAddr().String(),
			LocalAddress:  c.LocalAddr().String(),
		})
		if err != nil {
			t.logger.Warn("connection handling failed", zap.Error(err), zap.String("remote_address", c.RemoteAddr().String()))
			c.Close()
		}
	}()
}
