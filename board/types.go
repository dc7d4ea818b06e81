package board

import (
	proto "github.com/golang/protobuf/proto"
	"github.com/vx-labs/boardsync/world"
)

// Payloads mirror board.proto.

type Board struct {
	ID     string  `protobuf:"bytes,1,opt,name=ID,proto3" json:"ID,omitempty"`
	Parent string  `protobuf:"bytes,2,opt,name=Parent,proto3" json:"Parent,omitempty"`
	Title  string  `protobuf:"bytes,3,opt,name=Title,proto3" json:"Title,omitempty"`
	Metric string  `protobuf:"bytes,4,opt,name=Metric,proto3" json:"Metric,omitempty"`
	X      float64 `protobuf:"fixed64,5,opt,name=X,proto3" json:"X,omitempty"`
	Y      float64 `protobuf:"fixed64,6,opt,name=Y,proto3" json:"Y,omitempty"`
	Z      float64 `protobuf:"fixed64,7,opt,name=Z,proto3" json:"Z,omitempty"`
}

func (m *Board) Reset()         { *m = Board{} }
func (m *Board) String() string { return proto.CompactTextString(m) }
func (*Board) ProtoMessage()    {}

func (m *Board) entity() world.Entity {
	return world.Entity{
		ID:       m.ID,
		Kind:     world.KindBoard,
		Parent:   m.Parent,
		Title:    m.Title,
		Metric:   m.Metric,
		Position: world.Position{X: m.X, Y: m.Y, Z: m.Z},
	}
}

func boardOf(e world.Entity) *Board {
	return &Board{
		ID:     e.ID,
		Parent: e.Parent,
		Title:  e.Title,
		Metric: e.Metric,
		X:      e.Position.X,
		Y:      e.Position.Y,
		Z:      e.Position.Z,
	}
}

type Move struct {
	ID string  `protobuf:"bytes,1,opt,name=ID,proto3" json:"ID,omitempty"`
	X  float64 `protobuf:"fixed64,2,opt,name=X,proto3" json:"X,omitempty"`
	Y  float64 `protobuf:"fixed64,3,opt,name=Y,proto3" json:"Y,omitempty"`
	Z  float64 `protobuf:"fixed64,4,opt,name=Z,proto3" json:"Z,omitempty"`
}

func (m *Move) Reset()         { *m = Move{} }
func (m *Move) String() string { return proto.CompactTextString(m) }
func (*Move) ProtoMessage()    {}

func (m *Move) position() world.Position {
	return world.Position{X: m.X, Y: m.Y, Z: m.Z}
}

type Rename struct {
	ID    string `protobuf:"bytes,1,opt,name=ID,proto3" json:"ID,omitempty"`
	Title string `protobuf:"bytes,2,opt,name=Title,proto3" json:"Title,omitempty"`
}

func (m *Rename) Reset()         { *m = Rename{} }
func (m *Rename) String() string { return proto.CompactTextString(m) }
func (*Rename) ProtoMessage()    {}

type Remove struct {
	ID string `protobuf:"bytes,1,opt,name=ID,proto3" json:"ID,omitempty"`
}

func (m *Remove) Reset()         { *m = Remove{} }
func (m *Remove) String() string { return proto.CompactTextString(m) }
func (*Remove) ProtoMessage()    {}

type Widget struct {
	ID    string  `protobuf:"bytes,1,opt,name=ID,proto3" json:"ID,omitempty"`
	Board string  `protobuf:"bytes,2,opt,name=Board,proto3" json:"Board,omitempty"`
	Title string  `protobuf:"bytes,3,opt,name=Title,proto3" json:"Title,omitempty"`
	X     float64 `protobuf:"fixed64,4,opt,name=X,proto3" json:"X,omitempty"`
	Y     float64 `protobuf:"fixed64,5,opt,name=Y,proto3" json:"Y,omitempty"`
	Z     float64 `protobuf:"fixed64,6,opt,name=Z,proto3" json:"Z,omitempty"`
}

func (m *Widget) Reset()         { *m = Widget{} }
func (m *Widget) String() string { return proto.CompactTextString(m) }
func (*Widget) ProtoMessage()    {}

func (m *Widget) entity() world.Entity {
	return world.Entity{
		ID:       m.ID,
		Kind:     world.KindWidget,
		Parent:   m.Board,
		Title:    m.Title,
		Position: world.Position{X: m.X, Y: m.Y, Z: m.Z},
	}
}

func widgetOf(e world.Entity) *Widget {
	return &Widget{
		ID:    e.ID,
		Board: e.Parent,
		Title: e.Title,
		X:     e.Position.X,
		Y:     e.Position.Y,
		Z:     e.Position.Z,
	}
}

type Scene struct {
	ID    string `protobuf:"bytes,1,opt,name=ID,proto3" json:"ID,omitempty"`
	Title string `protobuf:"bytes,2,opt,name=Title,proto3" json:"Title,omitempty"`
}

func (m *Scene) Reset()         { *m = Scene{} }
func (m *Scene) String() string { return proto.CompactTextString(m) }
func (*Scene) ProtoMessage()    {}

func init() {
	proto.RegisterType((*Board)(nil), "board.Board")
	proto.RegisterType((*Move)(nil), "board.Move")
	proto.RegisterType((*Rename)(nil), "board.Rename")
	proto.RegisterType((*Remove)(nil), "board.Remove")
	proto.RegisterType((*Widget)(nil), "board.Widget")
	proto.RegisterType((*Scene)(nil), "board.Scene")
}
