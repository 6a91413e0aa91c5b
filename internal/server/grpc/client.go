package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls Dashboard methods with plain Go request and response values.
type Client struct {
	cc    grpc.ClientConnInterface
	token string
}

// NewClient wraps a connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// SetToken sets the bearer token sent with every call.
func (c *Client) SetToken(tok string) { c.token = tok }

// Call invokes method with in and decodes the reply into out. out may be nil.
func (c *Client) Call(ctx context.Context, method string, in, out any) error {
	req, err := ToStruct(in)
	if err != nil {
		return err
	}
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return FromStruct(resp, out)
}
