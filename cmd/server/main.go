package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/mfgops/backend/internal/application/catalog"
	eventapp "github.com/mfgops/backend/internal/application/event"
	identityapp "github.com/mfgops/backend/internal/application/identity"
	partnerapp "github.com/mfgops/backend/internal/application/partner"
	purchasingapp "github.com/mfgops/backend/internal/application/purchasing"
	"github.com/mfgops/backend/internal/domain/identity"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/auth"
	"github.com/mfgops/backend/internal/infrastructure/cache"
	"github.com/mfgops/backend/internal/infrastructure/config"
	"github.com/mfgops/backend/internal/infrastructure/event"
	"github.com/mfgops/backend/internal/infrastructure/logger"
	"github.com/mfgops/backend/internal/infrastructure/persistence"
	"github.com/mfgops/backend/internal/infrastructure/storage"
	"github.com/mfgops/backend/internal/infrastructure/telemetry"
	"github.com/mfgops/backend/internal/interfaces/http/handler"
	"github.com/mfgops/backend/internal/interfaces/http/middleware"
	"github.com/mfgops/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Manufacturing Ops API
//	@version		1.0
//	@description	Purchase orders, products, raw materials and companies for a garment workshop.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	baseLog, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// Telemetry. Every provider degrades to a no-op when disabled.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.ConfigFrom(cfg.Telemetry), baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfigFrom(cfg.Telemetry), baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfigFrom(cfg.Telemetry), baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log := loggerProvider.Bridge(baseLog, zapcore.InfoLevel)
	defer func() {
		_ = log.Sync()
	}()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfigFrom(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if cfg.Telemetry.Profiling.SpanProfiles {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles unavailable", zap.Error(err))
		}
	}

	log.Info("Starting mfgops backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)
	businessMetrics, err := telemetry.NewBusinessMetrics(meter)
	if err != nil {
		log.Warn("Business metrics unavailable", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabaseWithOptions(&cfg.Database, persistence.Options{Logger: gormLog})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.InstrumentDB(db.DB, telemetry.DBTracingConfigFrom(cfg.Telemetry, cfg.Database), log); err != nil {
		log.Warn("Database tracing unavailable", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		if _, err := telemetry.RegisterPoolMetrics(meter, sqlDB); err != nil {
			log.Warn("Connection pool metrics unavailable", zap.Error(err))
		}
	}
	// Postgres schemas are owned by cmd/migrate. The sqlite file used for
	// local runs is created from the models.
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(ctx, log); err != nil {
			log.Fatal("Failed to create sqlite schema", zap.Error(err))
		}
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	// Redis backed stores, or in-memory ones when Redis is not configured
	stores, err := cache.NewStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).Create(ctx)
	if err != nil {
		log.Fatal("Failed to initialize stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing stores", zap.Error(err))
		}
	}()

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if stores.Redis != nil {
		blacklist = auth.NewRedisTokenBlacklist(stores.Redis)
	}

	// Object storage
	var objects storage.ObjectStorage = storage.NewStubObjectStorage()
	if cfg.Storage.Enabled() {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Fatal("Object storage bucket unavailable", zap.Error(err))
		}
		objects = s3Storage
	} else {
		log.Warn("Object storage not configured, uploads are kept in memory")
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	materialRepo := persistence.NewGormRawMaterialRepository(db.DB)
	usageRepo := persistence.NewGormUsageLogRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Events are written to the outbox in the same transaction as the
	// aggregate and delivered by the processor.
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)
	outboxPublisher.SetMaxRetries(cfg.Event.MaxRetries)
	orderRepo.SetOutboxEventSaver(outboxPublisher)
	productRepo.SetOutboxEventSaver(outboxPublisher)

	// Application services
	var otpSender identity.OTPSender = auth.NewLogOTPSender(log, cfg.App.IsDevelopment())
	authService := identityapp.NewAuthService(
		userRepo, tenantRepo, stores.OTP, otpSender,
		auth.NewJWTService(cfg.JWT), blacklist, cfg.OTP, log,
	)
	userService := identityapp.NewUserService(userRepo, objects, log)
	companyService := partnerapp.NewCompanyService(companyRepo, objects, log)
	productService := catalogapp.NewProductService(productRepo, materialRepo, usageRepo, log)
	materialService := catalogapp.NewRawMaterialService(materialRepo, usageRepo, log)
	orderService := purchasingapp.NewPurchaseOrderService(orderRepo, objects, log)
	orderService.SetBusinessMetrics(businessMetrics)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	// Usage propagation handlers
	orderUsageHandler := purchasingapp.NewOrderUsagePropagationHandler(materialRepo, productRepo, log)
	orderUsageHandler.SetBusinessMetrics(businessMetrics)
	bomUsageHandler := catalogapp.NewProductMaterialUsageHandler(materialRepo, log)
	bomUsageHandler.SetBusinessMetrics(businessMetrics)

	eventBus := event.NewInMemoryEventBus(log)
	handlers := event.WrapHandlersWithIdempotency(
		[]shared.EventHandler{orderUsageHandler, bomUsageHandler},
		stores.Idempotency, log,
		event.WithIdempotencyConfig(shared.IdempotencyConfig{TTL: cfg.Event.IdempotencyTTL, Enabled: true}),
		event.WithHandlerObserver(businessMetrics),
	)
	for _, h := range handlers {
		eventBus.Subscribe(h)
		log.Info("Event handler registered", zap.Strings("event_types", h.EventTypes()))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	if cfg.Event.ProcessorEnabled {
		processorConfig := event.DefaultOutboxProcessorConfig()
		processorConfig.BatchSize = cfg.Event.BatchSize
		processorConfig.PollInterval = cfg.Event.PollInterval
		processorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		processorConfig.CleanupRetention = cfg.Event.CleanupRetention
		processorConfig.ClaimTimeout = cfg.Event.ClaimTimeout

		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorConfig, log)
		if businessMetrics != nil {
			outboxProcessor.SetObserver(businessMetrics)
		}
		if err := outboxProcessor.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	} else {
		log.Warn("Outbox processor disabled, usage logs will not be propagated")
	}

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORS(cfg.HTTP),
		middleware.Tracing(cfg.Telemetry.ServiceName),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(meter),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	signInLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimit, time.Minute)
	defer signInLimiter.Stop()

	checks := []handler.HealthCheck{{Name: "database", Check: db.Ping}}
	if stores.Redis != nil {
		checks = append(checks, handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return stores.Redis.Ping(ctx).Err()
		}})
	}

	authenticate := middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
		Authenticator:     authService,
		AllowTenantHeader: cfg.App.IsDevelopment(),
		Logger:            log,
	})

	r := router.NewRouter(engine)
	r.Register(router.Groups(router.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Profile:       handler.NewProfileHandler(userService),
		PurchaseOrder: handler.NewPurchaseOrderHandler(orderService),
		Product:       handler.NewProductHandler(productService),
		RawMaterial:   handler.NewRawMaterialHandler(materialService),
		Company:       handler.NewCompanyHandler(companyService),
		Outbox:        handler.NewOutboxHandler(outboxService),
		Health:        handler.NewHealthHandler(version, outboxService, checks...),
	}, router.Guards{
		Authenticate: authenticate,
		SignInLimit:  middleware.RateLimitByIP(signInLimiter),
	})...)
	r.Setup()
	if cfg.Swagger.Enabled {
		r.Docs(middleware.SwaggerProtection(middleware.SwaggerConfig{
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, authenticate))
		log.Info("API documentation served at /swagger/index.html")
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	for name, shutdown := range map[string]func(context.Context) error{
		"tracer": tracerProvider.Shutdown,
		"meter":  meterProvider.Shutdown,
		"logger": loggerProvider.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.String("provider", name), zap.Error(err))
		}
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
