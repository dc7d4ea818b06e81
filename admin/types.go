package admin

import (
	proto "github.com/golang/protobuf/proto"
)

// Messages mirror admin.proto.

type Connection struct {
	ID               string `protobuf:"bytes,1,opt,name=ID,proto3" json:"ID,omitempty"`
	Name             string `protobuf:"bytes,2,opt,name=Name,proto3" json:"Name,omitempty"`
	Upstream         bool   `protobuf:"varint,3,opt,name=Upstream,proto3" json:"Upstream,omitempty"`
	Transport        string `protobuf:"bytes,4,opt,name=Transport,proto3" json:"Transport,omitempty"`
	RemoteAddress    string `protobuf:"bytes,5,opt,name=RemoteAddress,proto3" json:"RemoteAddress,omitempty"`
	LocalAddress     string `protobuf:"bytes,6,opt,name=LocalAddress,proto3" json:"LocalAddress,omitempty"`
	Created          int64  `protobuf:"varint,7,opt,name=Created,proto3" json:"Created,omitempty"`
	PacketsSent      uint64 `protobuf:"varint,8,opt,name=PacketsSent,proto3" json:"PacketsSent,omitempty"`
	PacketsReceived  uint64 `protobuf:"varint,9,opt,name=PacketsReceived,proto3" json:"PacketsReceived,omitempty"`
	NextSequence     uint64 `protobuf:"varint,10,opt,name=NextSequence,proto3" json:"NextSequence,omitempty"`
	ExpectedSequence uint64 `protobuf:"varint,11,opt,name=ExpectedSequence,proto3" json:"ExpectedSequence,omitempty"`
	Buffered         int64  `protobuf:"varint,12,opt,name=Buffered,proto3" json:"Buffered,omitempty"`
}

func (m *Connection) Reset()         { *m = Connection{} }
func (m *Connection) String() string { return proto.CompactTextString(m) }
func (*Connection) ProtoMessage()    {}

type Record struct {
	Index  uint64 `protobuf:"varint,1,opt,name=Index,proto3" json:"Index,omitempty"`
	Kind   string `protobuf:"bytes,2,opt,name=Kind,proto3" json:"Kind,omitempty"`
	Owner  string `protobuf:"bytes,3,opt,name=Owner,proto3" json:"Owner,omitempty"`
	Entity string `protobuf:"bytes,4,opt,name=Entity,proto3" json:"Entity,omitempty"`
	Parent string `protobuf:"bytes,5,opt,name=Parent,proto3" json:"Parent,omitempty"`
	Slot   string `protobuf:"bytes,6,opt,name=Slot,proto3" json:"Slot,omitempty"`
}

func (m *Record) Reset()         { *m = Record{} }
func (m *Record) String() string { return proto.CompactTextString(m) }
func (*Record) ProtoMessage()    {}

type ListConnectionsInput struct{}

func (m *ListConnectionsInput) Reset()         { *m = ListConnectionsInput{} }
func (m *ListConnectionsInput) String() string { return proto.CompactTextString(m) }
func (*ListConnectionsInput) ProtoMessage()    {}

type ListConnectionsOutput struct {
	SessionID   string        `protobuf:"bytes,1,opt,name=SessionID,proto3" json:"SessionID,omitempty"`
	Connections []*Connection `protobuf:"bytes,2,rep,name=Connections,proto3" json:"Connections,omitempty"`
}

func (m *ListConnectionsOutput) Reset()         { *m = ListConnectionsOutput{} }
func (m *ListConnectionsOutput) String() string { return proto.CompactTextString(m) }
func (*ListConnectionsOutput) ProtoMessage()    {}

type ListJournalInput struct {
	Owner string `protobuf:"bytes,1,opt,name=Owner,proto3" json:"Owner,omitempty"`
}

func (m *ListJournalInput) Reset()         { *m = ListJournalInput{} }
func (m *ListJournalInput) String() string { return proto.CompactTextString(m) }
func (*ListJournalInput) ProtoMessage()    {}

type ListJournalOutput struct {
	Records []*Record `protobuf:"bytes,1,rep,name=Records,proto3" json:"Records,omitempty"`
}

func (m *ListJournalOutput) Reset()         { *m = ListJournalOutput{} }
func (m *ListJournalOutput) String() string { return proto.CompactTextString(m) }
func (*ListJournalOutput) ProtoMessage()    {}

type CloseConnectionInput struct {
	ID string `protobuf:"bytes,1,opt,name=ID,proto3" json:"ID,omitempty"`
}

func (m *CloseConnectionInput) Reset()         { *m = CloseConnectionInput{} }
func (m *CloseConnectionInput) String() string { return proto.CompactTextString(m) }
func (*CloseConnectionInput) ProtoMessage()    {}

type CloseConnectionOutput struct{}

func (m *CloseConnectionOutput) Reset()         { *m = CloseConnectionOutput{} }
func (m *CloseConnectionOutput) String() string { return proto.CompactTextString(m) }
func (*CloseConnectionOutput) ProtoMessage()    {}

func init() {
	proto.RegisterType((*Connection)(nil), "admin.Connection")
	proto.RegisterType((*Record)(nil), "admin.Record")
	proto.RegisterType((*ListConnectionsInput)(nil), "admin.ListConnectionsInput")
	proto.RegisterType((*ListConnectionsOutput)(nil), "admin.ListConnectionsOutput")
	proto.RegisterType((*ListJournalInput)(nil), "admin.ListJournalInput")
	proto.RegisterType((*ListJournalOutput)(nil), "admin.ListJournalOutput")
	proto.RegisterType((*CloseConnectionInput)(nil), "admin.CloseConnectionInput")
	proto.RegisterType((*CloseConnectionOutput)(nil), "admin.CloseConnectionOutput")
}
