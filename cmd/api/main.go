package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventcraft_backend/internal/adapters"
	"eventcraft_backend/internal/adapters/storage"
	"eventcraft_backend/internal/analytics"
	"eventcraft_backend/internal/auth"
	"eventcraft_backend/internal/billing"
	"eventcraft_backend/internal/billing/stripe"
	"eventcraft_backend/internal/email"
	"eventcraft_backend/internal/events"
	apphttp "eventcraft_backend/internal/http"
	"eventcraft_backend/internal/http/router"
	"eventcraft_backend/internal/leads"
	leadsvc "eventcraft_backend/internal/leads/service"
	"eventcraft_backend/internal/notification"
	"eventcraft_backend/internal/planner"
	"eventcraft_backend/internal/providers"
	"eventcraft_backend/internal/scheduler"
	"eventcraft_backend/internal/uploads"
	"eventcraft_backend/platform/ai/openai"
	"eventcraft_backend/platform/config"
	"eventcraft_backend/platform/db"
	"eventcraft_backend/platform/logger"
	"eventcraft_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
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
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Object storage for image uploads (MinIO). Absent configuration leaves
	// the upload endpoints returning 503 instead of failing startup.
	var store storage.ObjectStore
	if cfg.IsMinIOEnabled() {
		minioStore, err := storage.NewMinIOStore(cfg)
		if err != nil {
			log.Error("failed to initialize object storage", "error", err)
			panic("failed to initialize object storage: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure uploads bucket", 5, 2*time.Second, func() error {
			return minioStore.EnsureBucket(ctx, cfg.GetMinioBucketUploads())
		}); err != nil {
			log.Error("failed to ensure uploads bucket", "error", err, "bucket", cfg.GetMinioBucketUploads())
			panic("failed to ensure uploads bucket: " + err.Error())
		}
		store = minioStore
		log.Info("object storage initialized", "bucket", cfg.GetMinioBucketUploads())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; image uploads disabled")
	}

	// Outbound email. Without SMTP settings the app logs and drops mail.
	var sender email.Sender = email.NoopSender{}
	if cfg.IsEmailEnabled() {
		sender = email.NewSMTPSender(cfg)
		log.Info("email sender initialized", "host", cfg.GetSMTPHost())
	} else {
		log.Warn("SMTP not configured; outbound email disabled")
	}

	// Delayed task queue for lead follow-up reminders.
	var followups leadsvc.FollowupScheduler
	if cfg.GetRedisURL() != "" {
		schedClient, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize scheduler client", "error", err)
			panic("failed to initialize scheduler client: " + err.Error())
		}
		defer schedClient.Close()
		followups = schedClient
		log.Info("scheduler client initialized", "queue", cfg.GetAsynqQueueName())
	} else {
		log.Warn("REDIS_URL not configured; lead follow-up reminders disabled")
	}

	// Checklist generation backend (OpenAI-compatible API).
	llm := openai.NewClient(openai.Config{
		APIKey:  cfg.GetOpenAIAPIKey(),
		BaseURL: cfg.GetOpenAIBaseURL(),
		Model:   cfg.GetOpenAIModel(),
		Timeout: cfg.GetOpenAITimeout(),
	})

	// Stripe billing client. Disabled billing keeps the webhook route alive
	// but turns checkout and subscription management into 503s.
	var stripeClient *stripe.Client
	if cfg.IsStripeEnabled() {
		stripeClient = stripe.NewClient(stripe.Config{
			SecretKey: cfg.GetStripeSecretKey(),
			Timeout:   cfg.GetStripeTimeout(),
		})
		log.Info("stripe client initialized")
	} else {
		log.Warn("STRIPE_SECRET_KEY not configured; billing disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule := auth.NewModule(pool, cfg, eventBus, log, val)
	providersModule := providers.NewModule(pool, cfg, eventBus, log, val)

	// Account profiles embed the caller's provider profile when one exists.
	authModule.Service().SetProviderProfileReader(providersModule.Service())

	catalog := adapters.NewProviderCatalogAdapter(providersModule.Repository())
	plannerModule, err := planner.NewModule(pool, catalog, llm, eventBus, log, val)
	if err != nil {
		log.Error("failed to initialize planner module", "error", err)
		panic("failed to initialize planner module: " + err.Error())
	}

	eventChecker := adapters.NewPlannerEventCheckerAdapter(plannerModule.Repository())
	providerReader := adapters.NewProviderReaderAdapter(providersModule.Repository())
	leadsModule := leads.NewModule(pool, eventChecker, providerReader, followups, eventBus, log, val)

	customers := adapters.NewCustomerStoreAdapter(authModule.Repository())
	subscriptions := adapters.NewSubscriptionStoreAdapter(providersModule.Repository())
	billingModule := billing.NewModule(stripeClient, cfg, customers, subscriptions, eventBus, log, val)

	uploadsModule := uploads.NewModule(store, cfg.GetMinioBucketUploads(), log)

	directory := adapters.NewProviderDirectoryAdapter(providersModule.Repository())
	analyticsModule := analytics.NewModule(pool, directory, eventBus, log, val)

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(leadsModule.Repository(), sender, cfg, log)
	notificationModule.Subscribe(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			providersModule,
			plannerModule,
			leadsModule,
			billingModule,
			uploadsModule,
			analyticsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
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

	return errors.New(name + ": " + lastErr.Error())
}
