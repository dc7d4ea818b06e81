package netaction

import (
	"sync/atomic"
	"unsafe"

	proto "github.com/golang/protobuf/proto"
	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/pkg/errors"
	"github.com/vx-labs/boardsync/wire"
)

var (
	ErrUnknownKind    = errors.New("unknown action kind")
	ErrKindRegistered = errors.New("action kind already registered")
)

// Factory returns an empty action of one kind, ready to receive a decoded payload.
type Factory func() Action

// Registry maps action kinds to their factories.
type Registry struct {
	state *iradix.Tree
}

func NewRegistry() *Registry {
	return &Registry{state: iradix.New()}
}

func (r *Registry) load() *iradix.Tree {
	return (*iradix.Tree)(atomic.LoadPointer((*unsafe.Pointer)(unsafe.Pointer(&r.state))))
}

func (r *Registry) cas(old, new *iradix.Tree) bool {
	oldPtr := (*unsafe.Pointer)(unsafe.Pointer(&r.state))
	return atomic.CompareAndSwapPointer(oldPtr, unsafe.Pointer(old), unsafe.Pointer(new))
}

func (r *Registry) Register(kind string, factory Factory) error {
	for {
		old := r.load()
		if _, ok := old.Get([]byte(kind)); ok {
			return errors.Wrap(ErrKindRegistered, kind)
		}
		new, _, _ := old.Insert([]byte(kind), factory)
		if r.cas(old, new) {
			return nil
		}
	}
}

// MustRegister registers several factories and panics on conflicts.
func (r *Registry) MustRegister(factories map[string]Factory) {
	for kind, factory := range factories {
		if err := r.Register(kind, factory); err != nil {
			panic(err)
		}
	}
}

func (r *Registry) Kinds() []string {
	out := []string{}
	r.load().Root().Walk(func(k []byte, _ interface{}) bool {
		out = append(out, string(k))
		return false
	})
	return out
}

func (r *Registry) New(kind string) (Action, error) {
	v, ok := r.load().Get([]byte(kind))
	if !ok {
		return nil, errors.Wrap(ErrUnknownKind, kind)
	}
	return v.(Factory)(), nil
}

// Encode serializes an action for the wire.
func Encode(action Action, requester string) (*wire.Envelope, error) {
	payload, err := proto.Marshal(action.Payload())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode %s", action.Kind())
	}
	return &wire.Envelope{
		Kind:      action.Kind(),
		Requester: requester,
		Payload:   payload,
	}, nil
}

// Decode rebuilds the action carried by an envelope.
func (r *Registry) Decode(env *wire.Envelope) (Action, error) {
	action, err := r.New(env.Kind)
	if err != nil {
		return nil, err
	}
	if err := proto.Unmarshal(env.Payload, action.Payload()); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", env.Kind)
	}
	return action, nil
}
