package wire

import (
	proto "github.com/golang/protobuf/proto"
)

// Messages mirror wire.proto. They are encoded by golang/protobuf using the struct tags.

const (
	TagHello   = "hello"
	TagWelcome = "welcome"
	TagRefused = "refused"
	TagServer  = "server"
	TagClient  = "client"
)

// Frame is the unit written on a connection.
type Frame struct {
	Tag      string `protobuf:"bytes,1,opt,name=Tag,proto3" json:"Tag,omitempty"`
	Sequence uint64 `protobuf:"varint,2,opt,name=Sequence,proto3" json:"Sequence,omitempty"`
	Payload  []byte `protobuf:"bytes,3,opt,name=Payload,proto3" json:"Payload,omitempty"`
}

func (m *Frame) Reset()         { *m = Frame{} }
func (m *Frame) String() string { return proto.CompactTextString(m) }
func (*Frame) ProtoMessage()    {}

// Batch holds every envelope submitted to a connection during one tick.
type Batch struct {
	Envelopes []*Envelope `protobuf:"bytes,1,rep,name=Envelopes,proto3" json:"Envelopes,omitempty"`
}

func (m *Batch) Reset()         { *m = Batch{} }
func (m *Batch) String() string { return proto.CompactTextString(m) }
func (*Batch) ProtoMessage()    {}

// Envelope carries one serialized action. Kind selects the decoder, Payload holds its parameters.
type Envelope struct {
	Kind      string `protobuf:"bytes,1,opt,name=Kind,proto3" json:"Kind,omitempty"`
	Requester string `protobuf:"bytes,2,opt,name=Requester,proto3" json:"Requester,omitempty"`
	Payload   []byte `protobuf:"bytes,3,opt,name=Payload,proto3" json:"Payload,omitempty"`
}

func (m *Envelope) Reset()         { *m = Envelope{} }
func (m *Envelope) String() string { return proto.CompactTextString(m) }
func (*Envelope) ProtoMessage()    {}

// Copy returns a shallow copy sharing the payload bytes.
func (m *Envelope) Copy() *Envelope {
	return &Envelope{
		Kind:      m.Kind,
		Requester: m.Requester,
		Payload:   m.Payload,
	}
}

type Hello struct {
	Name  string `protobuf:"bytes,1,opt,name=Name,proto3" json:"Name,omitempty"`
	Token string `protobuf:"bytes,2,opt,name=Token,proto3" json:"Token,omitempty"`
}

func (m *Hello) Reset()         { *m = Hello{} }
func (m *Hello) String() string { return proto.CompactTextString(m) }
func (*Hello) ProtoMessage()    {}

type Welcome struct {
	ConnectionID string `protobuf:"bytes,1,opt,name=ConnectionID,proto3" json:"ConnectionID,omitempty"`
	ServerID     string `protobuf:"bytes,2,opt,name=ServerID,proto3" json:"ServerID,omitempty"`
}

func (m *Welcome) Reset()         { *m = Welcome{} }
func (m *Welcome) String() string { return proto.CompactTextString(m) }
func (*Welcome) ProtoMessage()    {}

func init() {
	proto.RegisterType((*Frame)(nil), "wire.Frame")
	proto.RegisterType((*Batch)(nil), "wire.Batch")
	proto.RegisterType((*Envelope)(nil), "wire.Envelope")
	proto.RegisterType((*Hello)(nil), "wire.Hello")
	proto.RegisterType((*Welcome)(nil), "wire.Welcome")
}
