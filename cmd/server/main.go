package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/tokenstd/revert-registry/internal/api"
	"github.com/tokenstd/revert-registry/internal/config"
	"github.com/tokenstd/revert-registry/internal/db"
	"github.com/tokenstd/revert-registry/internal/grammar"
	"github.com/tokenstd/revert-registry/internal/logging"
	"github.com/tokenstd/revert-registry/internal/metrics"
	"github.com/tokenstd/revert-registry/internal/notify"
	"github.com/tokenstd/revert-registry/internal/queue"
	"github.com/tokenstd/revert-registry/internal/repository"
	"github.com/tokenstd/revert-registry/internal/service"
	"github.com/tokenstd/revert-registry/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// Swap in the rotating-file logger now that config is known.
	if l, err := logging.New(cfg); err == nil {
		logger = l
		defer logger.Sync() //nolint:errcheck
	}

	// ---- vocabulary ----
	vocab := grammar.DefaultVocabulary()
	if cfg.VocabFile != "" {
		vocab, err = grammar.LoadVocabularyFile(cfg.VocabFile)
		if err != nil {
			logger.Fatal("failed to load vocabulary file",
				zap.String("path", cfg.VocabFile), zap.Error(err))
		}
		logger.Info("vocabulary extended from file", zap.String("path", cfg.VocabFile))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	q := queue.New()
	m := metrics.New(reg, q)
	repo := repository.NewPgRegistryRepository(pool)
	notifier := notify.NewWebhookNotifier(cfg.CallbackTimeout)

	svc, err := service.NewRegistryService(repo, q, vocab, cfg.SelectorCacheSize, cfg.MaxBatch, logger, service.Hooks{
		OnCheck: m.ObserveCheck,
		OnRegistered: func(domain string) {
			m.RegistrationsTotal.WithLabelValues(domain).Inc()
		},
		OnCacheHit:  m.SelectorCacheHits.Inc,
		OnCacheMiss: m.SelectorCacheMiss.Inc,
	})
	if err != nil {
		logger.Fatal("failed to build service", zap.Error(err))
	}

	if cfg.SeedCatalog {
		n, err := svc.SeedCatalog(ctx)
		if err != nil {
			logger.Fatal("failed to seed standard catalog", zap.Error(err))
		}
		logger.Info("standard catalog seeded", zap.Int("new", n))
	}

	// ---- worker pool ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	pool2 := worker.NewPool(cfg, q, repo, svc, notifier, logger, worker.MetricHooks{
		OnFinished: m.WorkerHooks(),
	})
	pool2.Start(workerCtx)

	requeueW := worker.NewRequeueWorker(repo, q, cfg.RequeueInterval, cfg.StaleJobAfter, logger)
	go requeueW.Run(workerCtx)

	auditW := worker.NewAuditWorker(repo, vocab, cfg.AuditInterval, cfg.AuditRecheck, logger,
		func(nonconformant int64) {
			m.Nonconformant.Set(float64(nonconformant))
		})
	go auditW.Run(workerCtx)

	// ---- HTTP server ----
	router := api.NewRouter(svc, cfg, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Signal all workers to stop processing new queue items.
	cancelWorkers()

	// 3. Wait for in-flight workers to finish their current job.
	pool2.Wait()

	logger.Info("server stopped cleanly")
}
