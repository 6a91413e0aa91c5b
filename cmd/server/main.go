// Command mc-server starts the Mobicure gRPC server and, optionally, its JSON/HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/mobicure/internal/backup"
	"github.com/and161185/mobicure/internal/config"
	"github.com/and161185/mobicure/internal/crypto/clientcrypto"
	"github.com/and161185/mobicure/internal/errs"
	"github.com/and161185/mobicure/internal/migrate"
	"github.com/and161185/mobicure/internal/repository"
	"github.com/and161185/mobicure/internal/repository/file"
	"github.com/and161185/mobicure/internal/repository/memory"
	"github.com/and161185/mobicure/internal/repository/postgres"
	"github.com/and161185/mobicure/internal/repository/sqlite"
	grpcserver "github.com/and161185/mobicure/internal/server/grpc"
	httpapi "github.com/and161185/mobicure/internal/server/http"
	"github.com/and161185/mobicure/internal/service"
	"github.com/and161185/mobicure/internal/settings"
	"github.com/and161185/mobicure/internal/vault"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, opens the slot backend, and serves until SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.GRPCAddr),
		zap.String("storage", cfg.Storage),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepo(ctx, cfg, logger.Named("storage"))
	if err != nil {
		logger.Fatal("open storage", zap.Error(err))
	}
	defer closeRepo()

	// Stores
	opts := []vault.Option{vault.WithLogger(logger.Named("vault"))}
	if cfg.Passphrase != "" {
		opts = append(opts, vault.WithCodec(vault.SealedCodec{Passphrase: []byte(cfg.Passphrase)}))
	}
	store := vault.New(repo, opts...)
	if err := loadVault(ctx, store, logger); err != nil {
		logger.Fatal("load vault", zap.Error(err))
	}
	st := settings.NewStore(repo, logger.Named("settings"))
	sessions := settings.NewSessions(repo, logger.Named("session"))
	exp := backup.NewExporter(store, st, sessions, logger.Named("backup"))

	// Services
	authSvc := service.NewAuthService(sessions, []byte(cfg.JWTKey), cfg.AccessTTL)
	vaultSvc := service.NewVaultService(store, st, sessions, exp)
	toolsSvc := service.NewToolsService(nil)

	// gRPC server with interceptors
	sopts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoverUnary(logger),
			grpcserver.LoggingUnary(logger),
			grpcserver.AuthUnary(authSvc.Verify, grpcserver.Protected),
		),
	}
	if cfg.TLSCert != "" {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			logger.Fatal("failed to load TLS cert/key", zap.Error(err))
		}
		sopts = append(sopts, grpc.Creds(creds))
	} else {
		logger.Warn("TLS disabled, serving plaintext gRPC")
	}
	s := grpc.NewServer(sopts...)
	grpcserver.New(authSvc, vaultSvc, toolsSvc).Register(s)

	// Health & reflection (dev)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	if cfg.Dev {
		reflection.Register(s)
	}

	// Listen
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("listening (gRPC)", zap.String("addr", cfg.GRPCAddr))
		errCh <- s.Serve(lis)
	}()

	var hsrv *http.Server
	if cfg.HTTPAddr != "" {
		h := &httpapi.Handler{Auth: authSvc, Vault: vaultSvc, Tools: toolsSvc}
		hsrv = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.NewRouter(h, logger.Named("http")),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("listening (HTTP)", zap.String("addr", cfg.HTTPAddr))
			if err := hsrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	// Wait for stop
	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	// graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if hsrv != nil {
		if err := hsrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}
	}
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		s.Stop()
	}

	backupOnExit(cfg, exp, logger)
	logger.Info("shutdown complete")
}

// openRepo builds the slot repository selected by cfg.Storage.
func openRepo(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.SlotRepository, func(), error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return memory.NewSlotRepo(), func() {}, nil
	case config.StorageFile:
		r, err := file.NewSlotRepo(cfg.DataDir)
		return r, func() {}, err
	case config.StorageSQLite:
		r, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	case config.StoragePostgres:
		if err := migrate.Up(ctx, cfg.DatabaseDSN, log); err != nil {
			return nil, nil, fmt.Errorf("migrate up: %w", err)
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		return postgres.NewSlotRepo(&postgres.DB{Pool: pool}), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage %q", cfg.Storage)
}

// loadVault reads the vault slot. Corrupt data is served as an empty list, but a
// sealed slot that cannot be opened stops startup so the next write cannot replace it.
func loadVault(ctx context.Context, store *vault.Store, log *zap.Logger) error {
	recs, err := store.Load(ctx)
	switch {
	case errors.Is(err, clientcrypto.ErrOpen):
		return fmt.Errorf("vault is sealed, check the passphrase: %w", err)
	case errors.Is(err, errs.ErrCorruptStore):
		log.Warn("vault unreadable, serving an empty list", zap.Error(err))
		return nil
	case err != nil:
		return err
	}
	log.Info("vault loaded", zap.Int("records", len(recs)))
	return nil
}

const backupTimeout = 30 * time.Second

// backupSink picks S3 when a bucket is configured, otherwise BackupDir when it is set.
// A nil sink means no final backup.
var backupSink = func(ctx context.Context, cfg *config.Config) (backup.Sink, error) {
	switch {
	case cfg.S3.Bucket != "":
		client, err := backup.NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		return backup.NewS3Sink(client, cfg.S3.Bucket, cfg.S3.Prefix), nil
	case cfg.BackupDir != "":
		return backup.FileSink{Dir: cfg.BackupDir}, nil
	}
	return nil, nil
}

// backupOnExit writes the final backup with its own deadline, independent of
// the time spent stopping the servers.
func backupOnExit(cfg *config.Config, exp *backup.Exporter, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	sink, err := backupSink(ctx, cfg)
	if err != nil {
		log.Error("final backup", zap.Error(err))
		return
	}
	if sink == nil {
		return
	}
	loc, err := exp.Write(ctx, sink)
	if err != nil {
		log.Error("final backup failed", zap.Error(err))
		return
	}
	log.Info("final backup written", zap.String("location", loc))
}
