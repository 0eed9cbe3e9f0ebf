package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"vaxreg/internal/platform/config"
	"vaxreg/internal/platform/database"
	"vaxreg/internal/platform/health"
	"vaxreg/internal/platform/kafka"
	"vaxreg/internal/platform/kafka/producer"
	"vaxreg/internal/platform/redis"
	"vaxreg/internal/platform/tracing"
	"vaxreg/internal/registration/handler"
	"vaxreg/internal/registration/metrics"
	"vaxreg/internal/registration/seeder"
	"vaxreg/internal/registration/service"
	"vaxreg/internal/registration/store"
	"vaxreg/internal/registration/tracer"
	httptransport "vaxreg/internal/transport/http"
	"vaxreg/pkg/platform/audit"
	"vaxreg/pkg/platform/audit/publisher"
	kafkastore "vaxreg/pkg/platform/audit/store/kafka"
	auditmemory "vaxreg/pkg/platform/audit/store/memory"
	"vaxreg/pkg/platform/middleware/request"
)

// app holds everything that must be closed on shutdown.
type app struct {
	router   http.Handler
	pool     *database.Pool
	redis    *redis.Client
	producer *producer.Producer
	auditor  *publisher.Publisher
	tracing  *tracing.Provider
}

func buildApp(ctx context.Context, cfg config.Server, log *slog.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.close(log)
		}
	}()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load registration timezone: %w", err)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	regMetrics := metrics.NewWithRegisterer(promReg)
	probes := health.New(cfg.Environment)

	a.tracing, err = tracing.NewProvider(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	tr := tracer.NewOTel(tracer.WithTracerProvider(a.tracing.TracerProvider()))

	primary, err := a.buildPrimary(ctx, cfg.Database, promReg, probes, log)
	if err != nil {
		return nil, err
	}
	var registrations service.Store = primary

	cache, err := a.buildCache(ctx, cfg, promReg, probes, log)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		registrations = store.NewCachedStore(primary, cache, log,
			store.WithCacheMetrics(regMetrics),
			store.WithCacheTracer(tr),
		)
	}

	auditStore, err := a.buildAuditStore(ctx, cfg.Kafka, probes, log)
	if err != nil {
		return nil, err
	}
	a.auditor = publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(1024),
		publisher.WithPublisherLogger(log),
	)

	if cfg.SeedDemoData {
		if !cfg.IsDev() {
			log.Warn("SEED_DEMO_DATA ignored outside dev", "environment", cfg.Environment)
		} else if err := seeder.New(primary, auditStore, log).SeedAll(ctx); err != nil {
			return nil, err
		}
	}

	svc := service.New(registrations, log,
		service.WithAuditPublisher(a.auditor),
		service.WithMetrics(regMetrics),
		service.WithTracer(tr),
		service.WithMinimumAge(cfg.MinAge),
		service.WithLocation(loc),
	)

	a.router = httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		RequestTimeout: cfg.RequestTimeout,
		AdminAPIToken:  cfg.AdminAPIToken,
		Metrics:        request.NewMetrics(promReg),
		Gatherer:       promReg,
	}, handler.New(svc, log), probes)

	return a, nil
}

// buildPrimary selects Postgres when a database URL is configured, otherwise memory.
func (a *app) buildPrimary(ctx context.Context, cfg config.Database, reg prometheus.Registerer, probes *health.Handler, log *slog.Logger) (store.Primary, error) {
	pool, err := database.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if pool == nil {
		log.Warn("DATABASE_URL not set, registrations are kept in memory")
		return store.NewInMemoryStore(), nil
	}
	a.pool = pool

	if cfg.AutoMigrate {
		if err := database.Migrate(pool.DB()); err != nil {
			return nil, err
		}
		log.Info("database migrations applied")
	}
	if err := pool.RegisterMetrics(reg); err != nil {
		return nil, fmt.Errorf("register database metrics: %w", err)
	}
	probes.RegisterCheck("database", pool.Health)
	return store.NewPostgresStore(pool.DB()), nil
}

// buildCache prefers the shared Redis cache and falls back to a process-local one.
func (a *app) buildCache(ctx context.Context, cfg config.Server, reg prometheus.Registerer, probes *health.Handler, log *slog.Logger) (store.Cache, error) {
	client, err := redis.New(ctx, cfg.Redis, reg)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}
	if client != nil {
		a.redis = client
		probes.RegisterCheck("redis", client.Health)
		log.Info("registration cache enabled", "backend", "redis", "ttl", cfg.Cache.TTL)
		return store.NewRedisCache(client, cfg.Cache.TTL), nil
	}
	if cfg.Cache.Local {
		log.Info("registration cache enabled", "backend", "local", "ttl", cfg.Cache.TTL)
		return store.NewLocalCache(cfg.Cache.TTL), nil
	}
	return nil, nil
}

// buildAuditStore streams audit events to Kafka when brokers are configured.
func (a *app) buildAuditStore(ctx context.Context, cfg config.Kafka, probes *health.Handler, log *slog.Logger) (audit.Store, error) {
	if cfg.Brokers == "" {
		return auditmemory.NewInMemoryStore(), nil
	}

	pcfg := producer.DefaultConfig(cfg.Brokers)
	pcfg.Acks = cfg.Acks
	prod, err := producer.New(pcfg, log)
	if err != nil {
		return nil, fmt.Errorf("init kafka producer: %w", err)
	}
	a.producer = prod

	topicCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := kafka.EnsureTopic(topicCtx, prod.Client(), cfg.AuditTopic, 3, 1); err != nil {
		// Brokers with auto-creation still accept the first write.
		log.Warn("could not ensure audit topic", "topic", cfg.AuditTopic, "error", err)
	}

	probes.RegisterCheck("kafka", prod.Health)
	probes.RegisterCheck("kafka_brokers", kafka.BrokersReady(prod.Client()))
	log.Info("audit events streamed to kafka", "topic", cfg.AuditTopic)
	return kafkastore.New(prod, cfg.AuditTopic), nil
}

// close releases resources in reverse order of construction.
func (a *app) close(log *slog.Logger) {
	if a.auditor != nil {
		a.auditor.Close()
	}
	if a.producer != nil {
		_ = a.producer.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}
	if a.pool != nil {
		if err := a.pool.Close(); err != nil {
			log.Warn("database close failed", "error", err)
		}
	}
	if a.tracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracing.Shutdown(ctx); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}
}
