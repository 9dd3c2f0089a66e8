package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/way-19/consulting19/internal/auth"
	"github.com/way-19/consulting19/internal/config"
	"github.com/way-19/consulting19/internal/content"
	"github.com/way-19/consulting19/internal/event"
	handler "github.com/way-19/consulting19/internal/handler/http"
	"github.com/way-19/consulting19/internal/i18n"
	"github.com/way-19/consulting19/internal/repository/postgres"
	redisrepo "github.com/way-19/consulting19/internal/repository/redis"
	"github.com/way-19/consulting19/internal/service"
	"github.com/way-19/consulting19/internal/submission"
	"github.com/way-19/consulting19/migrations"
	"github.com/way-19/consulting19/pkg/database"
	"github.com/way-19/consulting19/pkg/health"
	"github.com/way-19/consulting19/pkg/httpclient"
	pkgkafka "github.com/way-19/consulting19/pkg/kafka"
	"github.com/way-19/consulting19/pkg/middleware"
	"github.com/way-19/consulting19/pkg/tracing"
)

const serviceName = "consulting19"

// App wires together all dependencies and runs the web backend.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
	cancelRouter   context.CancelFunc
}

// NewApp creates a new application instance over the loaded content
// bundle, initializing all dependencies.
func NewApp(cfg *config.Config, bundle *content.Bundle, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := database.DefaultPostgresConfig(cfg.DatabaseURL)
	pgCfg.MaxConns = cfg.DBMaxConns
	pgCfg.MinConns = cfg.DBMinConns

	pool, err := database.NewPostgresPool(ctx, pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL")
	prometheus.MustRegister(database.NewPoolStatsCollector(pool, serviceName))

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	// Initialize Redis client.
	rdb, err := database.NewRedisClient(ctx, cfg.RedisURL, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis")

	// Initialize Kafka producer. Kafka being down only degrades event
	// delivery, so startup continues.
	producer := pkgkafka.NewProducer(
		pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers),
		pkgkafka.NewMetrics(prometheus.DefaultRegisterer),
		logger,
	)
	if err := pingKafkaWithRetry(ctx, producer, logger); err != nil {
		logger.Warn("kafka producer ping failed after retries, continuing in degraded mode",
			slog.String("error", err.Error()),
		)
	} else {
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Downstream HTTP clients share one breaker metric set.
	breakerMetrics := httpclient.NewBreakerMetrics(prometheus.DefaultRegisterer)
	newDownstream := func(name string) *httpclient.CircuitBreakerClient {
		return httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig(name),
			breakerMetrics,
			logger,
		)
	}

	// Build the dependency graph.
	eventProducer := event.NewProducer(producer, logger)
	submitter, err := newSubmitter(cfg, pool, eventProducer, newDownstream, logger)
	if err != nil {
		_ = producer.Close()
		_ = rdb.Close()
		pool.Close()
		return nil, err
	}

	translator := i18n.NewTranslator(bundle.Locales)
	prefs := redisrepo.NewPreferenceRepository(rdb, cfg.PreferenceTTL)
	metrics := service.NewMetrics(prometheus.DefaultRegisterer)

	svcs := handler.Services{
		Orders: service.NewOrderService(
			redisrepo.NewWizardRepository(rdb, cfg.WizardDraftTTL()),
			redisrepo.NewSubmitLock(rdb),
			submitter,
			bundle.Catalog,
			service.OrderConfig{
				SubmitTimeout: cfg.SubmitTimeout(),
				RedirectURL:   cfg.PostSubmitRedirectURL,
			},
			metrics,
			logger,
		),
		Comparison: service.NewComparisonService(redisrepo.NewComparisonRepository(rdb, cfg.ComparisonTTL()), bundle, logger),
		Content:    service.NewContentService(bundle, postgres.NewBlogRepository(pool), translator),
		Languages:  service.NewLanguageService(prefs, translator, logger),
		Consent:    service.NewConsentService(prefs, logger),
		Auth: service.NewAuthService(
			auth.NewProviderClient(newDownstream("auth-provider"), cfg.AuthProviderURL, cfg.AuthProviderAPIKey),
			cfg.AuthRedirectURL,
			logger,
		),
		Leads: service.NewLeadService(postgres.NewLeadRepository(pool), eventProducer, metrics, logger),
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router. routerCtx stops the rate limiter janitor on shutdown.
	routerCtx, cancelRouter := context.WithCancel(context.Background())
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(
		routerCtx,
		svcs,
		auth.NewVisitorTokens(cfg.VisitorJWTSecret, cfg.VisitorTTL),
		healthHandler,
		middleware.NewHTTPMetrics(serviceName, prometheus.DefaultRegisterer),
		nil,
		handler.RouterConfig{
			ServiceName:    serviceName,
			RequestTimeout: cfg.RequestTimeout(),
			CORS:           corsCfg,
			SecureCookie:   cfg.SecureCookie,
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
			ContentMaxAge:  cfg.ContentMaxAgeSeconds,
			PprofEnabled:   cfg.PprofEnabled,
			PprofCIDRs:     cfg.PprofAllowedCIDRs,
		},
		logger,
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout() + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		rdb:            rdb,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
		cancelRouter:   cancelRouter,
	}, nil
}

// newSubmitter selects the order submission backend.
func newSubmitter(
	cfg *config.Config,
	pool *pgxpool.Pool,
	publisher submission.OrderEventPublisher,
	newDownstream func(name string) *httpclient.CircuitBreakerClient,
	logger *slog.Logger,
) (submission.Submitter, error) {
	switch cfg.SubmitMode {
	case config.SubmitModeStore:
		return submission.NewStoreSubmitter(postgres.NewOrderRepository(pool), publisher, logger), nil
	case config.SubmitModeAPI:
		return submission.NewAPISubmitter(newDownstream("order-api"), cfg.OrderAPIURL), nil
	default:
		return nil, fmt.Errorf("unknown submit mode %q", cfg.SubmitMode)
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("submit_mode", a.cfg.SubmitMode),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: HTTP server, tracer,
// Kafka producer, Redis, PostgreSQL.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	a.cancelRouter()

	// Flush spans after the HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// pingKafkaWithRetry pings the brokers with exponential backoff (3 attempts,
// 1s/2s/4s with ±25% jitter).
func pingKafkaWithRetry(ctx context.Context, producer *pkgkafka.Producer, logger *slog.Logger) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if lastErr = producer.Ping(ctx); lastErr == nil {
			return nil
		}
		if attempt < 2 {
			base := time.Duration(1<<uint(attempt)) * time.Second
			jitter := time.Duration(float64(base) * 0.25 * (2*rand.Float64() - 1)) // #nosec G404 -- non-cryptographic jitter
			wait := base + jitter
			logger.Warn("kafka producer ping failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", wait),
				slog.String("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return fmt.Errorf("kafka ping: %w", ctx.Err())
			case <-time.After(wait):
			}
		}
	}
	return fmt.Errorf("kafka producer ping failed after 3 attempts: %w", lastErr)
}
