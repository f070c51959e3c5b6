package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/logger"
)

// RequestIDHeader is read from incoming metadata and echoed back.
const RequestIDHeader = "x-request-id"

// UnaryInterceptor assigns a request id, logs every call and maps
// application errors onto gRPC status codes.
func UnaryInterceptor(base *slog.Logger) grpc.UnaryServerInterceptor {
	if base == nil {
		base = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(RequestIDHeader); len(ids) > 0 && ids[0] != "" {
				ctx = common.WithRequestID(ctx, ids[0])
			}
		}
		ctx, rid := common.EnsureRequestID(ctx)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, rid))

		start := time.Now()
		resp, err := handler(ctx, req)
		err = common.GRPCError(err)

		log := logger.From(ctx, base)
		if err != nil {
			log.Warn("grpc.call.failed",
				"method", info.FullMethod,
				"code", status.Code(err).String(),
				"err", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return nil, err
		}
		log.Info("grpc.call.ok", "method", info.FullMethod, "elapsed_ms", time.Since(start).Milliseconds())
		return resp, nil
	}
}
