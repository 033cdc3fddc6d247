package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/identity"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.UsesDefaultSecret() {
		logger.Warn("JWT_SECRET not set, using development secret")
	}

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DBPath)

	cache, closeCache := profileCache(cfg, logger)
	defer closeCache()
	directory := identity.NewDirectory(store, cache)

	publisher := eventPublisher(cfg, logger)
	defer publisher.Close()

	l := ledger.New(store,
		ledger.WithStoreTimeout(cfg.StoreTimeout),
		ledger.WithStrictCustomSplits(cfg.StrictCustomSplits),
		ledger.WithPublisher(publisher),
		ledger.WithDirectory(directory),
	)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	// Auth runs before logging so RPC log lines carry the caller. Rejected
	// tokens only show up in the metrics.
	publicInterceptors := connect.WithInterceptors(
		metrics.Interceptor(),
		middleware.OptionalAuth(jwtManager),
		middleware.LoggingInterceptor(logger),
	)
	authInterceptors := connect.WithInterceptors(
		metrics.Interceptor(),
		middleware.RequireAuth(jwtManager),
		middleware.LoggingInterceptor(logger),
	)

	mux := http.NewServeMux()

	// Register Connect services
	authPath, authHandler := api.NewAuthServiceHandler(
		service.NewAuthService(authenticator, jwtManager, store, directory, logger),
		publicInterceptors,
	)
	mux.Handle(authPath, authHandler)

	friendPath, friendHandler := api.NewFriendServiceHandler(service.NewFriendService(l), authInterceptors)
	mux.Handle(friendPath, friendHandler)

	groupPath, groupHandler := api.NewGroupServiceHandler(service.NewGroupService(l), authInterceptors)
	mux.Handle(groupPath, groupHandler)

	billPath, billHandler := api.NewBillServiceHandler(service.NewBillService(l), authInterceptors)
	mux.Handle(billPath, billHandler)

	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Add logging and CORS middleware
	handler := loggingMiddleware(corsMiddleware(mux))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:           cfg.Addr(),
		Handler:        h2c.NewHandler(handler, &http2.Server{}),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Connect server starting", "address", srv.Addr, "url", "http://localhost"+srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}

// profileCache connects to Redis when configured. Profiles are served from the
// store alone if Redis is unset or unreachable. The returned func closes the
// client and is safe to call either way.
func profileCache(cfg *config.Config, logger *slog.Logger) (identity.Cache, func()) {
	noop := func() {}
	if cfg.RedisURL == "" {
		return nil, noop
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := identity.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("Profile cache disabled", "error", err)
		return nil, noop
	}
	logger.Info("Profile cache connected", "ttl", cfg.ProfileCacheTTL)

	cache := identity.NewRedisCache(client, cfg.ProfileCacheTTL)
	return cache, func() {
		if err := cache.Close(); err != nil {
			logger.Warn("Failed to close profile cache", "error", err)
		}
	}
}

func eventPublisher(cfg *config.Config, logger *slog.Logger) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.NopPublisher{}
	}

	publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.Warn("Ledger events disabled", "error", err)
		return events.NopPublisher{}
	}
	logger.Info("Publishing ledger events", "exchange", cfg.AMQPExchange)
	return publisher
}

// loggingMiddleware logs non-RPC requests. RPCs are logged by the interceptor.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		if api.IsLedgerProcedure(r.URL.Path) {
			return
		}

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
