package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/parcelworks/stacker/internal/config"
	"github.com/parcelworks/stacker/internal/db/elastic"
	dbRedis "github.com/parcelworks/stacker/internal/db/redis"
	logpkg "github.com/parcelworks/stacker/internal/logger"
	"github.com/parcelworks/stacker/internal/metrics"
	countsrepo "github.com/parcelworks/stacker/internal/repository/counts"
	documentsrepo "github.com/parcelworks/stacker/internal/repository/documents"
	lookuprepo "github.com/parcelworks/stacker/internal/repository/lookup"
	projectorrepo "github.com/parcelworks/stacker/internal/repository/projector"
	searchrepo "github.com/parcelworks/stacker/internal/repository/search"
	"github.com/parcelworks/stacker/internal/tasks"
	chiTransport "github.com/parcelworks/stacker/internal/transport/chi"
	actionuc "github.com/parcelworks/stacker/internal/usecase/action"
	eventsuc "github.com/parcelworks/stacker/internal/usecase/events"
	exportuc "github.com/parcelworks/stacker/internal/usecase/export"
	healthuc "github.com/parcelworks/stacker/internal/usecase/health"
	populateuc "github.com/parcelworks/stacker/internal/usecase/populate"
	searchuc "github.com/parcelworks/stacker/internal/usecase/search"
	skiptraceuc "github.com/parcelworks/stacker/internal/usecase/skiptrace"
	updateuc "github.com/parcelworks/stacker/internal/usecase/update"
	"github.com/parcelworks/stacker/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting stacker API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("es_addresses", cfg.Elasticsearch.Addresses),
		zap.String("index_prefix", cfg.Storage.IndexPrefix),
	)

	// Create the document store
	esStore, err := elastic.NewStore(elastic.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create document store", zap.Error(err))
	}
	defer esStore.Close()

	// Wait for the cluster to be ready
	ctx := context.Background()
	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := esStore.WaitForReady(ctx, readiness); err != nil {
		logger.Fatal("Document store not ready", zap.Error(err))
	}
	logger.Info("Connected to document store")

	// Open the relational database (projection source and task queue)
	sqldb, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer sqldb.Close()

	pingCtx, cancelPing := context.WithTimeout(ctx, readiness)
	err = sqldb.PingContext(pingCtx)
	cancelPing()
	if err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Both cache drivers speak RESP; one rueidis client serves either.
	cacheStore, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Cache.Addrs,
		Password: cfg.Cache.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.Error(err))
	}
	defer cacheStore.Close()

	// Register metrics explicitly (no init())
	metrics.Register()

	// Create repositories
	prefix := cfg.Storage.IndexPrefix
	documentsRepo := documentsrepo.New(esStore, prefix)
	searchRepo := searchrepo.New(esStore, prefix)
	countsRepo := countsrepo.New(
		searchRepo, cacheStore,
		time.Duration(cfg.Cache.CountsTTLSec)*time.Second,
		metrics.CountsCacheTotal, logger,
	)
	projectorRepo := projectorrepo.New(sqldb)
	lookupRepo := lookuprepo.New(sqldb)

	// Create the task queue before the services that enqueue into it
	queue := tasks.NewQueue(sqldb)
	if err := queue.Bootstrap(ctx); err != nil {
		logger.Fatal("Failed to bootstrap task queue", zap.Error(err))
	}

	// Create use case services
	searchSvc := searchuc.New(searchRepo, countsRepo)
	actionSvc := actionuc.New(searchSvc, lookupRepo, queue)
	eventsSvc := eventsuc.New(queue)
	populateSvc := populateuc.New(
		projectorRepo, documentsRepo, esStore, lookupRepo,
		prefix, cfg.Populate.Batch,
	)
	updateSvc := updateuc.New(documentsRepo, lookupRepo)
	exportSvc := exportuc.New(searchRepo, cfg.Storage.ExportDir)
	skiptraceSvc := skiptraceuc.New(lookupRepo, cfg.Storage.SkiptraceDir)

	// Health service
	healthSvc := healthuc.New(esStore, sqlPinger{db: sqldb}, cacheStore)

	// Task worker shares the process with the API server
	worker := tasks.NewWorker(sqldb, tasks.Handlers{
		Populator:  populateSvc,
		Updater:    updateSvc,
		Exporter:   exportSvc,
		Skiptracer: skiptraceSvc,
	}.Map(), tasks.Config{
		BatchSize:   cfg.Worker.BatchSize,
		Interval:    time.Duration(cfg.Worker.PollIntervalSec) * time.Second,
		MaxAttempts: cfg.Worker.MaxAttempts,
	}, metrics.TasksProcessedTotal, logger)

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	go worker.Run(workerCtx)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, actionSvc, eventsSvc, populateSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	stopWorker()

	logger.Info("Server stopped gracefully")
}

// sqlPinger adapts *sql.DB to the health service's Pinger.
type sqlPinger struct {
	db *sql.DB
}

func (p sqlPinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
