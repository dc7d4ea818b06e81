package netaction

import (
	proto "github.com/golang/protobuf/proto"
	"github.com/pkg/errors"
)

// ErrEntityNotFound is reported by hooks referencing an entity missing from the local state.
// Dispatchers skip such actions and carry on.
var ErrEntityNotFound = errors.New("entity not found")

type Role int

const (
	RoleServer Role = iota
	RoleClient
)

func (r Role) String() string {
	switch r {
	case RoleServer:
		return "server"
	case RoleClient:
		return "client"
	default:
		return "unknown"
	}
}

// Context describes the dispatch of one action to its hooks.
type Context interface {
	// Requester is the identity of the connection the action originates from.
	Requester() string
	// Local is the identity of this process in the current role.
	Local() string
	IsRequester() bool
	Role() Role
}

// Action is a replicated edit. Kind is serialized as the discriminator and Payload
// carries the edit parameters.
type Action interface {
	Kind() string
	Payload() proto.Message
	ExecuteOnServer(ctx Context) error
	ExecuteOnClient(ctx Context) error
}

// Record locates a journaled action. Records sharing a slot replace each other.
type Record struct {
	Entity string
	Parent string
	Slot   string
}

// Recorded actions establish persistent state and are replayed to late joiners.
type Recorded interface {
	Record() Record
}

// Destroying actions remove an entity: journal records about it or its children are forgotten.
type Destroying interface {
	Destroys() string
}

// Base provides no-op hooks.
type Base struct{}

func (Base) ExecuteOnServer(Context) error { return nil }
func (Base) ExecuteOnClient(Context) error { return nil }

type dispatch struct {
	requester string
	local     string
	role      Role
}

func (d dispatch) Requester() string { return d.requester }
func (d dispatch) Local() string     { return d.local }
func (d dispatch) Role() Role        { return d.role }
func (d dispatch) IsRequester() bool { return d.requester != "" && d.requester == d.local }

func NewContext(role Role, local, requester string) Context {
	return dispatch{role: role, local: local, requester: requester}
}
