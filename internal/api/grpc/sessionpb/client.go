package sessionpb

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Session is the decoded reply of the Sessions service.
type Session struct {
	Email      string
	University string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// SessionsClient lets collaborating services introspect session tokens.
type SessionsClient struct {
	cc grpc.ClientConnInterface
}

func NewSessionsClient(cc grpc.ClientConnInterface) *SessionsClient {
	return &SessionsClient{cc: cc}
}

// Validate asks the server for the claims of token.
func (c *SessionsClient) Validate(ctx context.Context, token string, opts ...grpc.CallOption) (Session, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ValidateFullMethodName, wrapperspb.String(token), out, opts...); err != nil {
		return Session{}, err
	}
	return SessionFromStruct(out)
}

// Whoami authenticates the call with token and returns its claims.
func (c *SessionsClient) Whoami(ctx context.Context, token string, opts ...grpc.CallOption) (Session, error) {
	ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "bearer "+token)
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, WhoamiFullMethodName, &emptypb.Empty{}, out, opts...); err != nil {
		return Session{}, err
	}
	return SessionFromStruct(out)
}

// SessionToStruct encodes s as the wire reply.
func SessionToStruct(s Session) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		FieldEmail:      s.Email,
		FieldUniversity: s.University,
		FieldIssuedAt:   s.IssuedAt.UTC().Format(time.RFC3339),
		FieldExpiresAt:  s.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// SessionFromStruct decodes a wire reply.
func SessionFromStruct(st *structpb.Struct) (Session, error) {
	fields := st.GetFields()
	s := Session{
		Email:      fields[FieldEmail].GetStringValue(),
		University: fields[FieldUniversity].GetStringValue(),
	}
	if s.Email == "" {
		return Session{}, fmt.Errorf("session reply without %s", FieldEmail)
	}

	var err error
	if s.IssuedAt, err = time.Parse(time.RFC3339, fields[FieldIssuedAt].GetStringValue()); err != nil {
		return Session{}, fmt.Errorf("parse %s: %w", FieldIssuedAt, err)
	}
	if s.ExpiresAt, err = time.Parse(time.RFC3339, fields[FieldExpiresAt].GetStringValue()); err != nil {
		return Session{}, fmt.Errorf("parse %s: %w", FieldExpiresAt, err)
	}
	return s, nil
}
