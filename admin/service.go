package admin

import (
	"context"

	"google.golang.org/grpc"
)

// AdminClient is the client API for the Admin service.
type AdminClient interface {
	ListConnections(ctx context.Context, in *ListConnectionsInput, opts ...grpc.CallOption) (*ListConnectionsOutput, error)
	ListJournal(ctx context.Context, in *ListJournalInput, opts ...grpc.CallOption) (*ListJournalOutput, error)
	CloseConnection(ctx context.Context, in *CloseConnectionInput, opts ...grpc.CallOption) (*CloseConnectionOutput, error)
}

type adminClient struct {
	cc *grpc.ClientConn
}

func NewAdminClient(cc *grpc.ClientConn) AdminClient {
	return &adminClient{cc}
}

func (c *adminClient) ListConnections(ctx context.Context, in *ListConnectionsInput, opts ...grpc.CallOption) (*ListConnectionsOutput, error) {
	out := new(ListConnectionsOutput)
	err := c.cc.Invoke(ctx, "/boardsync.Admin/ListConnections", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *adminClient) ListJournal(ctx context.Context, in *ListJournalInput, opts ...grpc.CallOption) (*ListJournalOutput, error) {
	out := new(ListJournalOutput)
	err := c.cc.Invoke(ctx, "/boardsync.Admin/ListJournal", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *adminClient) CloseConnection(ctx context.Context, in *CloseConnectionInput, opts ...grpc.CallOption) (*CloseConnectionOutput, error) {
	out := new(CloseConnectionOutput)
	err := c.cc.Invoke(ctx, "/boardsync.Admin/CloseConnection", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AdminServer is the server API for the Admin service.
type AdminServer interface {
	ListConnections(context.Context, *ListConnectionsInput) (*ListConnectionsOutput, error)
	ListJournal(context.Context, *ListJournalInput) (*ListJournalOutput, error)
	CloseConnection(context.Context, *CloseConnectionInput) (*CloseConnectionOutput, error)
}

func RegisterAdminServer(s *grpc.Server, srv AdminServer) {
	s.RegisterService(&_Admin_serviceDesc, srv)
}

func _Admin_ListConnections_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListConnectionsInput)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).ListConnections(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/boardsync.Admin/ListConnections",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AdminServer).ListConnections(ctx, req.(*ListConnectionsInput))
	}
	return interceptor(ctx, in, info, handler)
}

func _Admin_ListJournal_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListJournalInput)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).ListJournal(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/boardsync.Admin/ListJournal",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AdminServer).ListJournal(ctx, req.(*ListJournalInput))
	}
	return interceptor(ctx, in, info, handler)
}

func _Admin_CloseConnection_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CloseConnectionInput)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).CloseConnection(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/boardsync.Admin/CloseConnection",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AdminServer).CloseConnection(ctx, req.(*CloseConnectionInput))
	}
	return interceptor(ctx, in, info, handler)
}

var _Admin_serviceDesc = grpc.ServiceDesc{
	ServiceName: "boardsync.Admin",
	HandlerType: (*AdminServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListConnections",
			Handler:    _Admin_ListConnections_Handler,
		},
		{
			MethodName: "ListJournal",
			Handler:    _Admin_ListJournal_Handler,
		},
		{
			MethodName: "CloseConnection",
			Handler:    _Admin_CloseConnection_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "admin.proto",
}
