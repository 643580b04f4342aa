package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/candidate-dossiers/internal/async"
	"github.com/joseph-ayodele/candidate-dossiers/internal/common"
	"github.com/joseph-ayodele/candidate-dossiers/internal/core"
	"github.com/joseph-ayodele/candidate-dossiers/internal/ingest"
)

// serviceName is the health service name reported while batches succeed.
const serviceName = "dossier.Batch"

func main() {
	cfg := common.LoadConfig()
	logger, closer := common.NewLogger(cfg.Log)
	defer func() { _ = closer.Close() }()
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc, source, cleanup, err := core.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("wiring failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// gRPC server: health + reflection for grpcurl
	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_NOT_SERVING)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("listen failed", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	go func() {
		logger.Info("gRPC serving", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error("grpc serve failed", "error", err)
			stop()
		}
	}()

	queue := async.NewRunQueue(func(ctx context.Context, job async.Job) error {
		for _, p := range job.Paths {
			if ref, ok := ingest.ParsePath(cfg.Input.DocsRoot, p); ok {
				logger.Info("document changed", "slug", ref.Slug, "kind", ref.Kind, "path", p)
			} else {
				logger.Info("input changed", "path", p)
			}
		}
		out, err := proc.Run(ctx)
		if err != nil {
			hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_NOT_SERVING)
			return err
		}
		hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
		logger.Info("batch published", "run_id", out.Report.RunID.String(), "failed", out.Report.Failed)
		return nil
	}, logger)

	files := []string{cfg.Input.RosterFile}
	if cfg.Input.BiographyFile != "" {
		files = append(files, cfg.Input.BiographyFile)
	}
	if cfg.Input.RulesFile != "" {
		files = append(files, cfg.Input.RulesFile)
	}
	batches, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:    []string{cfg.Input.DocsRoot},
		Files:    files,
		Debounce: cfg.Server.Debounce,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("watcher start failed", "error", err)
		os.Exit(1)
	}

	_ = queue.Enqueue(ctx, async.Job{Reason: "startup"})

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case paths, ok := <-batches:
			if !ok {
				break loop
			}
			_ = queue.Enqueue(ctx, async.Job{Reason: "change", Paths: paths})
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			logger.Warn("watch error", "error", err)
		}
	}

	logger.Info("shutting down...")
	hs.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	source.Flush()
	grpcServer.GracefulStop()
	logger.Info("stopped")
}
