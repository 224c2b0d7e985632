// filecert
//
// Entry point: wires all components together and manages graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/mtiwari1/filecert/internal/certify"
	"github.com/mtiwari1/filecert/internal/config"
	"github.com/mtiwari1/filecert/internal/grpcserver"
	"github.com/mtiwari1/filecert/internal/logging"
	"github.com/mtiwari1/filecert/internal/repository"
	"github.com/mtiwari1/filecert/internal/restapi"
	"github.com/mtiwari1/filecert/internal/service"
	"github.com/mtiwari1/filecert/internal/worker"
	pb "github.com/mtiwari1/filecert/proto"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// ── Structured logger ──
	logger := logging.New(os.Stdout, cfg.Level(), cfg.LogFormat)
	slog.SetDefault(logger)

	logger.Info("starting filecert",
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("grpc_addr", cfg.GRPCAddr),
		slog.Bool("persist", cfg.Persist),
	)

	// ── Ensure upload directory exists ──
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Error("create upload dir", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// ── Certification core ──
	// The store lives for the process lifetime only.
	store := repository.NewMemoryStore()
	svc := service.New(certify.NewBuilder(nil), certify.NewVerifier(nil), store, cfg.Persist, logger)

	// ── Worker pool (bounded goroutines) ──
	pool := worker.NewPool(cfg.Workers, svc, logger)
	pool.Start()
	logger.Info("worker pool started", slog.Int("workers", cfg.Workers))

	// ── gRPC server ──
	grpcSrv := grpc.NewServer(
		grpc.UnaryInterceptor(grpcserver.LoggingInterceptor(logger)),
		grpc.MaxRecvMsgSize(grpcserver.MaxRecvMsgSize(cfg.MaxUploadBytes)),
	)
	pb.RegisterCertificationServer(grpcSrv, grpcserver.NewServer(pool, svc, cfg.MaxUploadBytes, logger))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Error("listen gRPC", slog.String("error", err.Error()))
		os.Exit(1)
	}

	go func() {
		logger.Info("gRPC server listening", slog.String("addr", cfg.GRPCAddr))
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Error("gRPC serve", slog.String("error", err.Error()))
		}
	}()

	// ── REST API ──
	handler := restapi.NewHandler(pool, svc, restapi.Options{
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
		AllowedOrigins: cfg.AllowedOrigins,
	}, logger)

	httpSrv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2*time.Minute + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", slog.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP serve", slog.String("error", err.Error()))
		}
	}()

	// ── Graceful shutdown (SIGINT / SIGTERM) ──
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// 1. Stop accepting new HTTP requests.
	shutCtx, shutCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutCancel()

	if err := httpSrv.Shutdown(shutCtx); err != nil {
		logger.Error("HTTP shutdown", slog.String("error", err.Error()))
	}
	logger.Info("HTTP server stopped")

	// 2. Stop gRPC server gracefully.
	grpcSrv.GracefulStop()
	logger.Info("gRPC server stopped")

	// 3. Drain worker pool.
	pool.Shutdown()
	logger.Info("worker pool drained")

	logger.Info("filecert shutdown complete", slog.Int("certifications_discarded", store.Len()))
}
