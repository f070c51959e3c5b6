package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls invoicex.v1.InvoiceService using the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append(opts, grpc.CallContentSubtype(CodecName))
	return c.cc.Invoke(ctx, fullMethod(method), in, out, opts...)
}

func (c *Client) Extract(ctx context.Context, in *ExtractRequest) (*ExtractResponse, error) {
	out := new(ExtractResponse)
	if err := c.invoke(ctx, "Extract", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetInvoice(ctx context.Context, in *GetInvoiceRequest) (*GetInvoiceResponse, error) {
	out := new(GetInvoiceResponse)
	if err := c.invoke(ctx, "GetInvoice", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListInvoices(ctx context.Context, in *ListInvoicesRequest) (*ListInvoicesResponse, error) {
	out := new(ListInvoicesResponse)
	if err := c.invoke(ctx, "ListInvoices", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Ask(ctx context.Context, in *AskRequest) (*AskResponse, error) {
	out := new(AskResponse)
	if err := c.invoke(ctx, "Ask", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExportPayload returns the payload and the suggested filename.
func (c *Client) ExportPayload(ctx context.Context, in *ExportPayloadRequest) (*structpb.Struct, string, error) {
	var header metadata.MD
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "ExportPayload", in, out, grpc.Header(&header)); err != nil {
		return nil, "", err
	}
	var filename string
	if v := header.Get(FilenameHeader); len(v) > 0 {
		filename = v[0]
	}
	return out, filename, nil
}
