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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/ed-orders/internal/config"
	"github.com/jwalitptl/ed-orders/internal/handler/duplicate"
	"github.com/jwalitptl/ed-orders/internal/handler/health"
	"github.com/jwalitptl/ed-orders/internal/handler/order"
	"github.com/jwalitptl/ed-orders/internal/handler/patient"
	"github.com/jwalitptl/ed-orders/internal/handler/result"
	"github.com/jwalitptl/ed-orders/internal/handler/session"
	"github.com/jwalitptl/ed-orders/internal/handler/task"
	"github.com/jwalitptl/ed-orders/internal/middleware"
	"github.com/jwalitptl/ed-orders/internal/repository"
	"github.com/jwalitptl/ed-orders/internal/repository/memory"
	"github.com/jwalitptl/ed-orders/internal/repository/postgres"
	"github.com/jwalitptl/ed-orders/internal/router"
	"github.com/jwalitptl/ed-orders/internal/seed"
	auditService "github.com/jwalitptl/ed-orders/internal/service/audit"
	duplicateService "github.com/jwalitptl/ed-orders/internal/service/duplicate"
	eventService "github.com/jwalitptl/ed-orders/internal/service/event"
	orderService "github.com/jwalitptl/ed-orders/internal/service/order"
	patientService "github.com/jwalitptl/ed-orders/internal/service/patient"
	resultService "github.com/jwalitptl/ed-orders/internal/service/result"
	sessionService "github.com/jwalitptl/ed-orders/internal/service/session"
	taskService "github.com/jwalitptl/ed-orders/internal/service/task"
	internalWorker "github.com/jwalitptl/ed-orders/internal/worker"
	"github.com/jwalitptl/ed-orders/pkg/logger"
	"github.com/jwalitptl/ed-orders/pkg/messaging"
	"github.com/jwalitptl/ed-orders/pkg/messaging/redis"
	"github.com/jwalitptl/ed-orders/pkg/metrics"
	"github.com/jwalitptl/ed-orders/pkg/worker"
)

func runServer(parent context.Context, cfg *config.Config) error {
	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		JSON:       cfg.Log.JSON,
	})

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics("edtracker", "", reg)

	data := seed.Load(time.Now())
	checks := map[string]health.Check{}

	// Initialize history store
	history, closeHistory, err := newHistory(cfg, data, checks)
	if err != nil {
		return err
	}
	defer closeHistory()

	// Initialize audit sink
	sink, err := auditService.NewSink(cfg.Audit.Output)
	if err != nil {
		return err
	}
	auditSvc := auditService.NewService(sink)
	defer auditSvc.Sync()

	// Initialize repositories
	patientRepo := memory.NewPatientRepository(data.Patients)
	outboxRepo := memory.NewOutboxRepository()

	// Initialize services
	sessionSvc := sessionService.NewService(cfg.Session.TTL, cfg.Session.CleanupInterval)
	duplicateSvc := duplicateService.NewService(policyFrom(cfg.Duplicate), history, log, m)
	eventSvc := eventService.NewService(outboxRepo, m)
	orderSvc := orderService.NewService(orderService.Deps{
		Drafts:   memory.NewDraftRepository(),
		Orders:   memory.NewOrderRepository(),
		Patients: patientRepo,
		Checker:  duplicateSvc,
		Events:   eventSvc,
		Auditor:  auditSvc,
		Logger:   log,
		Metrics:  m,
	})
	patientSvc := patientService.NewService(patientRepo, history)
	resultSvc := resultService.NewService(memory.NewResultRepository(data.Results), m)
	taskSvc := taskService.NewService(memory.NewTaskRepository(data.Tasks))

	// Initialize message broker and outbox processor
	broker, err := newBroker(cfg.Redis, log, m)
	if err != nil {
		return err
	}
	defer broker.Close()

	processor, err := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		Channel:       cfg.Redis.Channel,
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay,
	}, log, m)
	if err != nil {
		return err
	}
	processorDone := make(chan struct{})
	go func() {
		processor.Start(ctx)
		close(processorDone)
	}()
	go internalWorker.NewOutboxCleanupWorker(outboxRepo, cfg.Outbox.Retention, cfg.Outbox.CleanupInterval, log).Start(ctx)

	// Setup router
	r, err := router.NewRouter(log, sessionSvc, router.RouterConfig{
		Mode:             cfg.Server.Mode,
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:        cfg.RateLimit.Burst,
		CORSConfig:       middleware.DefaultCORSConfig(),
		Registerer:       reg,
	},
		health.NewHandler(reg, checks),
		session.NewHandler(sessionSvc),
		patient.NewHandler(patientSvc),
		duplicate.NewHandler(duplicateSvc),
		order.NewHandler(orderSvc),
		result.NewHandler(resultSvc),
		task.NewHandler(taskSvc),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr, "history", cfg.History.Driver, "broker", brokerName(cfg.Redis))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			stop()
			<-processorDone
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Drain once more so events from the last requests are not left behind.
	stop()
	<-processorDone
	if _, err := processor.ProcessOnce(shutdownCtx); err != nil {
		log.Error(err, "final outbox drain failed")
	}

	log.Info("server exited properly")
	return nil
}

func newHistory(cfg *config.Config, data seed.Data, checks map[string]health.Check) (repository.HistoryRepository, func(), error) {
	if cfg.History.Driver != "postgres" {
		return memory.NewHistoryFromResults(data.Results), func() {}, nil
	}

	db, err := postgres.NewDB(cfg.History.Database)
	if err != nil {
		return nil, nil, err
	}
	checks["history"] = db.PingContext
	return postgres.NewHistoryRepository(db, cfg.History.Database.QueryTimeout), func() { db.Close() }, nil
}

func newBroker(cfg config.RedisConfig, log *logger.Logger, m *metrics.Metrics) (messaging.Broker, error) {
	if !cfg.Enabled {
		return messaging.NewLogBroker(log), nil
	}
	return redis.NewRedisBroker(redis.Config{
		URL:          cfg.URL,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	}, log, m)
}

func brokerName(cfg config.RedisConfig) string {
	if cfg.Enabled {
		return "redis"
	}
	return "log"
}
