package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"connectrpc.com/connect"
	"github.com/gorilla/mux"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/friendshipbank/internal/bank"
	"github.com/mmynk/friendshipbank/internal/config"
	"github.com/mmynk/friendshipbank/internal/metrics"
	"github.com/mmynk/friendshipbank/internal/middleware"
	"github.com/mmynk/friendshipbank/internal/service"
	"github.com/mmynk/friendshipbank/internal/storage"
	"github.com/mmynk/friendshipbank/internal/storage/memory"
	"github.com/mmynk/friendshipbank/internal/storage/redis"
	"github.com/mmynk/friendshipbank/internal/storage/sqlite"
	"github.com/mmynk/friendshipbank/internal/web"
	"github.com/mmynk/friendshipbank/pkg/logging"
)

func main() {
	envFile := flag.String("env", ".env", "optional dotenv file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	kv, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer kv.Close()
	slog.Info("Storage initialized", "store", cfg.Store)

	b := bank.New(storage.NewRepository(kv), bank.WithLogger(logger))

	router := mux.NewRouter()
	metrics.Instrument(router)

	// Register Connect service
	ledgerPath, ledgerHandler := service.NewLedgerServiceHandler(
		service.NewLedgerService(b),
		connect.WithInterceptors(middleware.LoggingInterceptor()),
	)
	router.PathPrefix(ledgerPath).Handler(ledgerHandler)

	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	pages, err := web.New(b, cfg.ManifestURL)
	if err != nil {
		return err
	}
	pages.Register(router)

	handler := middleware.RequestID(middleware.Logging(middleware.CORS(router)))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (storage.KV, error) {
	switch cfg.Store {
	case config.StoreRedis:
		return redis.New(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	case config.StoreMemory:
		slog.Warn("Using in-memory store; data is lost on exit")
		return memory.New(), nil
	default:
		slog.Info("Opening database", "path", cfg.DBPath)
		return sqlite.New(cfg.DBPath)
	}
}
