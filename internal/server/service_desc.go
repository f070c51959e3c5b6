package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "invoicex.v1.InvoiceService"

// InvoiceServiceServer is the server API for invoicex.v1.InvoiceService.
type InvoiceServiceServer interface {
	Extract(context.Context, *ExtractRequest) (*ExtractResponse, error)
	GetInvoice(context.Context, *GetInvoiceRequest) (*GetInvoiceResponse, error)
	ListInvoices(context.Context, *ListInvoicesRequest) (*ListInvoicesResponse, error)
	Ask(context.Context, *AskRequest) (*AskResponse, error)
	ExportPayload(context.Context, *ExportPayloadRequest) (*structpb.Struct, error)
}

func RegisterInvoiceServiceServer(s grpc.ServiceRegistrar, srv InvoiceServiceServer) {
	s.RegisterService(&InvoiceServiceDesc, srv)
}

// InvoiceServiceDesc describes the service for grpc.Server.RegisterService.
var InvoiceServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InvoiceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Extract", Handler: unary("Extract", InvoiceServiceServer.Extract)},
		{MethodName: "GetInvoice", Handler: unary("GetInvoice", InvoiceServiceServer.GetInvoice)},
		{MethodName: "ListInvoices", Handler: unary("ListInvoices", InvoiceServiceServer.ListInvoices)},
		{MethodName: "Ask", Handler: unary("Ask", InvoiceServiceServer.Ask)},
		{MethodName: "ExportPayload", Handler: unary("ExportPayload", InvoiceServiceServer.ExportPayload)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "invoicex/v1/invoice.proto",
}

func fullMethod(method string) string { return "/" + ServiceName + "/" + method }

func unary[Req, Resp any](method string, call func(InvoiceServiceServer, context.Context, *Req) (Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(InvoiceServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(InvoiceServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
