// Package sessionpb describes the campusmarket.session.v1.Sessions gRPC
// service. Messages are protobuf well-known types so no generated code is
// needed.
package sessionpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "campusmarket.session.v1.Sessions"

const (
	ValidateFullMethodName = "/" + ServiceName + "/Validate"
	WhoamiFullMethodName   = "/" + ServiceName + "/Whoami"
)

// Claim field names of the returned Struct.
const (
	FieldEmail      = "email"
	FieldUniversity = "university"
	FieldIssuedAt   = "issued_at"
	FieldExpiresAt  = "expires_at"
)

// SessionsServer is the server API for the Sessions service.
type SessionsServer interface {
	// Validate returns the claims of the token passed in the request.
	Validate(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// Whoami returns the claims of the token the call was authenticated with.
	Whoami(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func RegisterSessionsServer(s grpc.ServiceRegistrar, srv SessionsServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func validateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SessionsServer).Validate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ValidateFullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionsServer).Validate(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func whoamiHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SessionsServer).Whoami(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WhoamiFullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionsServer).Whoami(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the grpc.ServiceDesc for the Sessions service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SessionsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Validate", Handler: validateHandler},
		{MethodName: "Whoami", Handler: whoamiHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "campusmarket/session/v1/sessions.proto",
}
