package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"printsite_backend/internal/adapters"
	"printsite_backend/internal/adapters/storage"
	"printsite_backend/internal/catalog"
	"printsite_backend/internal/email"
	apphttp "printsite_backend/internal/http"
	"printsite_backend/internal/http/router"
	"printsite_backend/internal/intake"
	intakerepo "printsite_backend/internal/intake/repository"
	intakesvc "printsite_backend/internal/intake/service"
	"printsite_backend/internal/intake/transport"
	"printsite_backend/internal/notification"
	"printsite_backend/internal/scheduler"
	"printsite_backend/internal/verification"
	"printsite_backend/internal/whatsapp"
	whatsappsvc "printsite_backend/internal/whatsapp/service"
	"printsite_backend/platform/config"
	"printsite_backend/platform/db"
	"printsite_backend/platform/logger"
	"printsite_backend/platform/metrics"
	"printsite_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout  = 10 * time.Second
	inProcessWorkers = 2
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		log.Error("failed to apply migrations", "error", err)
		panic("failed to apply migrations: " + err.Error())
	}

	metrics.Register(prometheus.DefaultRegisterer)

	var rdb *redis.Client
	if cfg.GetRedisURL() != "" {
		if err := withRetry(ctx, log, "redis connection", 5, time.Second, func() error {
			c, err := db.NewRedisClient(ctx, cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
			if err != nil {
				return err
			}
			rdb = c
			return nil
		}); err != nil {
			log.Error("failed to connect to redis", "error", err)
			panic("failed to connect to redis: " + err.Error())
		}
		defer func() { _ = rdb.Close() }()
	}

	settings, err := verification.SettingsFromConfig(cfg, transport.FormFields)
	if err != nil {
		log.Error("invalid verification settings", "error", err)
		panic("invalid verification settings: " + err.Error())
	}
	verifier, err := verification.NewEngine(settings, log)
	if err != nil {
		log.Error("failed to initialize verification engine", "error", err)
		panic("failed to initialize verification engine: " + err.Error())
	}
	log.Info("submission verification configured", "mode", verifier.Mode(), "honeypots", len(verifier.HoneypotFields()))

	artworkStore, err := initArtworkStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize artwork storage", "error", err)
		panic("failed to initialize artwork storage: " + err.Error())
	}

	// ========================================================================
	// Notification queue
	// ========================================================================

	group, gctx := errgroup.WithContext(ctx)

	// The queue outlives the HTTP server so requests still in flight during
	// shutdown can enqueue their notifications.
	queueCtx, stopQueue := context.WithCancel(context.Background())
	defer stopQueue()

	jobs, closeJobs, err := initJobQueue(queueCtx, group, cfg, pool, log)
	if err != nil {
		log.Error("failed to initialize notification queue", "error", err)
		panic("failed to initialize notification queue: " + err.Error())
	}
	defer closeJobs()

	// ========================================================================
	// Domain modules
	// ========================================================================

	val := validator.New()

	intakeModule := intake.NewModule(pool, verifier, jobs, val, cfg, log)
	intakeModule.Service().SetArtworkStore(artworkStore)

	catalogModule := catalog.NewModule(pool, rdb, cfg, log)
	intakeModule.Service().SetOfferingSource(adapters.NewIntakeOfferingSource(catalogModule.Service()))

	modules := []apphttp.Module{intakeModule, catalogModule}

	whatsappModule, err := whatsapp.NewModule(cfg, cfg.GetBusinessName())
	switch {
	case err == nil:
		modules = append(modules, whatsappModule)
	case errors.Is(err, whatsappsvc.ErrNotConfigured):
		log.Warn("WHATSAPP_PHONE not configured; WhatsApp link routes disabled")
	default:
		log.Error("failed to initialize whatsapp module", "error", err)
		panic("failed to initialize whatsapp module: " + err.Error())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Health:  db.NewPoolAdapter(pool),
		Modules: modules,
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		stopQueue()
		return err
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// initJobQueue picks the Redis-backed queue when REDIS_URL is set. Without
// Redis, jobs are dispatched by an in-process worker pool owned by group.
func initJobQueue(ctx context.Context, group *errgroup.Group, cfg *config.Config, pool *pgxpool.Pool, log *logger.Logger) (intakesvc.JobEnqueuer, func(), error) {
	if cfg.GetRedisURL() != "" {
		client, err := scheduler.NewClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Info("notification jobs queued on redis", "queue", cfg.GetAsynqQueueName())
		return client, func() { _ = client.Close() }, nil
	}

	sender, err := email.NewSender(cfg)
	if err != nil {
		return nil, nil, err
	}
	reader := adapters.NewNotificationRecordReader(intakerepo.New(pool))
	dispatcher := notification.NewDispatcher(reader, sender, cfg, log)

	queue := scheduler.NewInProcessQueue(cfg.GetInProcessQueueSize(), inProcessWorkers, dispatcher, log)
	group.Go(func() error {
		return queue.Run(ctx)
	})
	log.Warn("REDIS_URL not configured; notification jobs run in-process")
	return queue, func() {}, nil
}

func initArtworkStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (intakesvc.ArtworkStore, error) {
	if !cfg.IsMinIOEnabled() {
		log.Info("artwork stored on local disk", "dir", cfg.GetArtworkDir())
		return storage.NewLocalStore(cfg.GetArtworkDir())
	}

	store, err := storage.NewMinIOStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := withRetry(ctx, log, "ensure artwork bucket", 5, 2*time.Second, func() error {
		return store.EnsureBucketExists(ctx)
	}); err != nil {
		return nil, err
	}
	log.Info("artwork stored in minio", "bucket", cfg.GetMinioBucketArtwork())
	return store, nil
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s: %w", name, lastErr)
}
