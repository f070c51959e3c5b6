package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/invoice-extractor/internal/app"
	"github.com/joseph-ayodele/invoice-extractor/internal/async"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/httpapi"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
	"github.com/joseph-ayodele/invoice-extractor/internal/logger"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
	"github.com/joseph-ayodele/invoice-extractor/internal/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	log := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("invoicexd.failed", "error", err)
		os.Exit(1)
	}
	log.Info("invoicexd.stopped")
}

func run(ctx context.Context, cfg *common.Config, log *slog.Logger) error {
	a, err := app.New(ctx, cfg, log, app.Options{WithStore: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.DB.HealthCheck(ctx, cfg.Database.DialTimeout); err != nil {
		return err
	}
	log.Info("invoicexd.db.ok", "driver", cfg.Database.Driver)

	errc := make(chan error, 2)

	// gRPC
	var (
		grpcServer *grpc.Server
		healthSrv  *health.Server
	)
	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			return err
		}
		gs, hs := server.NewGRPCServer(a.Service, log)
		grpcServer, healthSrv = gs, hs
		go func() {
			log.Info("invoicexd.grpc.serving", "addr", cfg.Server.GRPCAddr)
			if err := gs.Serve(lis); err != nil {
				errc <- err
			}
		}()
	}

	// HTTP
	var httpServer *http.Server
	if cfg.Server.HTTPAddr != "" {
		gin.SetMode(gin.ReleaseMode)
		router := httpapi.NewRouter(
			httpapi.NewHandler(a.Service, cfg.Server.MaxUploadBytes, log),
			func(ctx context.Context) error { return a.DB.HealthCheck(ctx, 0) },
			log,
		)
		httpServer = &http.Server{
			Addr:              cfg.Server.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		go func() {
			log.Info("invoicexd.http.serving", "addr", cfg.Server.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()
	}

	// Inbox watcher feeding the processing queue
	var queue *async.ProcessorQueue
	if len(cfg.Ingest.WatchDirs) > 0 {
		queue = async.NewProcessorQueue(a.Processor, log,
			async.WithWorkers(cfg.Ingest.Workers),
			async.WithQueueSize(cfg.Ingest.QueueSize),
			async.WithProcessTimeout(cfg.Ingest.ProcessTimeout),
			async.WithResultHook(func(job async.Job, out *pipeline.Outcome, err error) {
				if err != nil {
					return
				}
				log.Info("invoicexd.ingest.stored",
					"path", job.Path,
					"invoice_id", out.Invoice.ID.String(),
					"reused", out.Reused,
				)
			}),
		)
		events, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       cfg.Ingest.WatchDirs,
			InitialScan: cfg.Ingest.InitialScan,
			Debounce:    cfg.Ingest.Debounce,
			Logger:      log,
		})
		if err != nil {
			return err
		}
		go func() {
			for err := range watchErrs {
				log.Warn("invoicexd.watch.error", "error", err)
			}
		}()
		go ingest.Feed(ctx, events, queue, log)
		log.Info("invoicexd.watch.started", "dirs", cfg.Ingest.WatchDirs)
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("invoicexd.shutting_down")
	case runErr = <-errc:
		log.Error("invoicexd.server.failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if healthSrv != nil {
		healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	}
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("invoicexd.http.shutdown_failed", "error", err)
		}
	}
	if grpcServer != nil {
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			grpcServer.Stop()
		}
	}
	if queue != nil {
		queue.Shutdown(shutdownCtx)
	}
	return runErr
}
