package wire

import (
	"bufio"
	"encoding/binary"
	"io"
	"sync"

	proto "github.com/golang/protobuf/proto"
	"github.com/pkg/errors"
)

// MaxFrameSize bounds the size of a single encoded frame.
const MaxFrameSize = 16 << 20

var (
	ErrFrameTooLarge = errors.New("frame exceeds maximum size")
)

type Encoder struct {
	mutex sync.Mutex
	w     io.Writer
	buf   []byte
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, buf: make([]byte, binary.MaxVarintLen64)}
}

// Encode writes a length-prefixed frame.
func (e *Encoder) Encode(f *Frame) error {
	payload, err := proto.Marshal(f)
	if err != nil {
		return errors.Wrap(err, "failed to marshal frame")
	}
	if len(payload) > MaxFrameSize {
		return ErrFrameTooLarge
	}
	e.mutex.Lock()
	defer e.mutex.Unlock()
	n := binary.PutUvarint(e.buf, uint64(len(payload)))
	out := make([]byte, 0, n+len(payload))
	out = append(out, e.buf[:n]...)
	out = append(out, payload...)
	_, err = e.w.Write(out)
	return err
}

// Send encodes msg as the payload of a frame tagged with tag.
func (e *Encoder) Send(tag string, sequence uint64, msg proto.Message) error {
	payload, err := proto.Marshal(msg)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s payload", tag)
	}
	return e.Encode(&Frame{Tag: tag, Sequence: sequence, Payload: payload})
}

type Decoder struct {
	r *bufio.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

func (d *Decoder) Decode() (*Frame, error) {
	size, err := binary.ReadUvarint(d.r)
	if err != nil {
		return nil, err
	}
	if size > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	f := &Frame{}
	if err := proto.Unmarshal(buf, f); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal frame")
	}
	return f, nil
}

// AsyncDecoder runs Decode in a goroutine until the stream fails or Cancel is called.
type AsyncDecoder struct {
	ch     chan *Frame
	quit   chan struct{}
	once   sync.Once
	mutex  sync.Mutex
	err    error
	closer io.Closer
}

// Async runs the decoding loop of r on a goroutine.
func Async(r io.ReadCloser) *AsyncDecoder {
	return NewDecoder(r).Async(r)
}

// Async continues decoding on a goroutine, keeping frames already buffered by d. closer is
// closed by Cancel to unblock the pending read.
func (d *Decoder) Async(closer io.Closer) *AsyncDecoder {
	a := &AsyncDecoder{
		ch:     make(chan *Frame),
		quit:   make(chan struct{}),
		closer: closer,
	}
	go func() {
		defer close(a.ch)
		for {
			f, err := d.Decode()
			if err != nil {
				a.mutex.Lock()
				a.err = err
				a.mutex.Unlock()
				return
			}
			select {
			case a.ch <- f:
			case <-a.quit:
				return
			}
		}
	}()
	return a
}

func (a *AsyncDecoder) Frames() <-chan *Frame {
	return a.ch
}

// Err returns the error that stopped the decoding loop. io.EOF means the peer closed the stream.
func (a *AsyncDecoder) Err() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.err
}

func (a *AsyncDecoder) Cancel() {
	a.once.Do(func() {
		close(a.quit)
		a.closer.Close()
	})
}

// UnmarshalPayload decodes the payload of f into msg.
func UnmarshalPayload(f *Frame, msg proto.Message) error {
	return errors.Wrapf(proto.Unmarshal(f.Payload, msg), "failed to unmarshal %s payload", f.Tag)
}
