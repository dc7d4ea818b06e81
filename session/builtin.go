package session

import (
	proto "github.com/golang/protobuf/proto"
	"github.com/vx-labs/boardsync/netaction"
	"github.com/vx-labs/boardsync/ownership"
)

const (
	KindSetGrab           = "set_grab"
	KindSetSelect         = "set_select"
	KindSetHover          = "set_hover"
	KindParticipantJoined = "participant_joined"
	KindParticipantLeft   = "participant_left"
)

// Presence receives the effects of built-in actions on participants and interaction state.
type Presence interface {
	Join(id, name string) error
	Leave(id string) error
	SetGrabbed(entity, owner string, value bool) error
	SetSelected(entity, owner string, value bool) error
	SetHovered(entity, owner string, value bool) error
}

type nopPresence struct{}

func (nopPresence) Join(string, string) error              { return nil }
func (nopPresence) Leave(string) error                     { return nil }
func (nopPresence) SetGrabbed(string, string, bool) error  { return nil }
func (nopPresence) SetSelected(string, string, bool) error { return nil }
func (nopPresence) SetHovered(string, string, bool) error  { return nil }

type SetState struct {
	Entity string `protobuf:"bytes,1,opt,name=Entity,proto3" json:"Entity,omitempty"`
	Value  bool   `protobuf:"varint,2,opt,name=Value,proto3" json:"Value,omitempty"`
}

func (m *SetState) Reset()         { *m = SetState{} }
func (m *SetState) String() string { return proto.CompactTextString(m) }
func (*SetState) ProtoMessage()    {}

type Participant struct {
	ID   string `protobuf:"bytes,1,opt,name=ID,proto3" json:"ID,omitempty"`
	Name string `protobuf:"bytes,2,opt,name=Name,proto3" json:"Name,omitempty"`
}

func (m *Participant) Reset()         { *m = Participant{} }
func (m *Participant) String() string { return proto.CompactTextString(m) }
func (*Participant) ProtoMessage()    {}

func init() {
	proto.RegisterType((*SetState)(nil), "session.SetState")
	proto.RegisterType((*Participant)(nil), "session.Participant")
}

// setAction replicates a grab, select or hover flag. The server tracks it as a claim of the
// requester, so it can be replayed to joining connections and released when the requester leaves.
type setAction struct {
	kind     ownership.Kind
	payload  *SetState
	claims   *ownership.Store
	presence Presence
}

func (a *setAction) Kind() string           { return "set_" + string(a.kind) }
func (a *setAction) Payload() proto.Message { return a.payload }

func (a *setAction) ExecuteOnServer(ctx netaction.Context) error {
	return a.claims.Set(a.kind, ctx.Requester(), a.payload.Entity, a.payload.Value)
}

func (a *setAction) ExecuteOnClient(ctx netaction.Context) error {
	switch a.kind {
	case ownership.Grab:
		return a.presence.SetGrabbed(a.payload.Entity, ctx.Requester(), a.payload.Value)
	case ownership.Select:
		return a.presence.SetSelected(a.payload.Entity, ctx.Requester(), a.payload.Value)
	default:
		return a.presence.SetHovered(a.payload.Entity, ctx.Requester(), a.payload.Value)
	}
}

type participantJoined struct {
	netaction.Base
	payload  *Participant
	presence Presence
}

func (a *participantJoined) Kind() string           { return KindParticipantJoined }
func (a *participantJoined) Payload() proto.Message { return a.payload }
func (a *participantJoined) Record() netaction.Record {
	return netaction.Record{Entity: a.payload.ID}
}
func (a *participantJoined) ExecuteOnClient(ctx netaction.Context) error {
	return a.presence.Join(a.payload.ID, a.payload.Name)
}

type participantLeft struct {
	netaction.Base
	payload  *Participant
	presence Presence
}

func (a *participantLeft) Kind() string           { return KindParticipantLeft }
func (a *participantLeft) Payload() proto.Message { return a.payload }
func (a *participantLeft) Destroys() string       { return a.payload.ID }
func (a *participantLeft) ExecuteOnClient(ctx netaction.Context) error {
	return a.presence.Leave(a.payload.ID)
}

func (s *Session) newSetAction(kind ownership.Kind, entity string, value bool) netaction.Action {
	return &setAction{
		kind:     kind,
		payload:  &SetState{Entity: entity, Value: value},
		claims:   s.claims,
		presence: s.presence,
	}
}

func (s *Session) newParticipantJoined(id, name string) netaction.Action {
	return &participantJoined{payload: &Participant{ID: id, Name: name}, presence: s.presence}
}

func (s *Session) newParticipantLeft(id string) netaction.Action {
	return &participantLeft{payload: &Participant{ID: id}, presence: s.presence}
}

func (s *Session) registerBuiltins() {
	factories := map[string]netaction.Factory{
		KindParticipantJoined: func() netaction.Action {
			return &participantJoined{payload: &Participant{}, presence: s.presence}
		},
		KindParticipantLeft: func() netaction.Action {
			return &participantLeft{payload: &Participant{}, presence: s.presence}
		},
	}
	for _, kind := range ownership.Kinds {
		kind := kind
		factories["set_"+string(kind)] = func() netaction.Action {
			return &setAction{kind: kind, payload: &SetState{}, claims: s.claims, presence: s.presence}
		}
	}
	s.registry.MustRegister(factories)
}

// Grab applies a grab flag on entity locally and replicates it.
func (s *Session) Grab(entity string, value bool) error {
	return s.setState(ownership.Grab, entity, value)
}

// Select applies a select flag on entity locally and replicates it.
func (s *Session) Select(entity string, value bool) error {
	return s.setState(ownership.Select, entity, value)
}

// Hover applies a hover flag on entity locally and replicates it.
func (s *Session) Hover(entity string, value bool) error {
	return s.setState(ownership.Hover, entity, value)
}

func (s *Session) setState(kind ownership.Kind, entity string, value bool) error {
	action := s.newSetAction(kind, entity, value).(*setAction)
	if err := action.ExecuteOnClient(netaction.NewContext(netaction.RoleClient, s.LocalID(), s.LocalID())); err != nil {
		return err
	}
	return s.Execute(action)
}
