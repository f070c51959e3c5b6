package server

import (
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/invoice-extractor/internal/services/invoices"
)

// NewGRPCServer registers the invoice service with health and reflection.
// The returned health server lets the caller flip serving status on
// shutdown.
func NewGRPCServer(svc *invoices.Service, logger *slog.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append(opts, grpc.ChainUnaryInterceptor(UnaryInterceptor(logger)))
	gs := grpc.NewServer(opts...)

	// Health service
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	// Reflection for grpcurl
	reflection.Register(gs)

	RegisterInvoiceServiceServer(gs, NewInvoiceServer(svc, logger))
	return gs, hs
}
