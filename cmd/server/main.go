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
	"github.com/redis/go-redis/v9"
	catalogapp "github.com/sitestock/backend/internal/application/catalog"
	identityapp "github.com/sitestock/backend/internal/application/identity"
	inventoryapp "github.com/sitestock/backend/internal/application/inventory"
	logisticsapp "github.com/sitestock/backend/internal/application/logistics"
	partnerapp "github.com/sitestock/backend/internal/application/partner"
	procurementapp "github.com/sitestock/backend/internal/application/procurement"
	receivingapp "github.com/sitestock/backend/internal/application/receiving"
	requisitionapp "github.com/sitestock/backend/internal/application/requisition"
	appshared "github.com/sitestock/backend/internal/application/shared"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/internal/infrastructure/auth"
	"github.com/sitestock/backend/internal/infrastructure/cache"
	"github.com/sitestock/backend/internal/infrastructure/config"
	"github.com/sitestock/backend/internal/infrastructure/event"
	"github.com/sitestock/backend/internal/infrastructure/export"
	"github.com/sitestock/backend/internal/infrastructure/lock"
	"github.com/sitestock/backend/internal/infrastructure/logger"
	"github.com/sitestock/backend/internal/infrastructure/persistence"
	"github.com/sitestock/backend/internal/infrastructure/scheduler"
	"github.com/sitestock/backend/internal/infrastructure/storage"
	"github.com/sitestock/backend/internal/infrastructure/telemetry"
	"github.com/sitestock/backend/internal/interfaces/http/handler"
	"github.com/sitestock/backend/internal/interfaces/http/middleware"
	"github.com/sitestock/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const lockRetryWindow = 5 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetryCfg := telemetry.ConfigFrom(cfg.Telemetry)
	telemetryCfg.ServiceVersion = version

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// OTLP log export needs its provider before the main logger is built
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	log, err := logger.New(logCfg, logProvider.ZapCore(cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	if err := run(ctx, cfg, telemetryCfg, logProvider, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, telemetryCfg telemetry.Config, logProvider *telemetry.LoggerProvider, log *zap.Logger) error {
	log.Info("Starting SiteStock backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		return err
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		for name, shutdown := range map[string]func(context.Context) error{
			"tracer": tracerProvider.Shutdown,
			"meter":  meterProvider.Shutdown,
			"logs":   logProvider.Shutdown,
		} {
			if err := shutdown(shutdownCtx); err != nil {
				log.Warn("Telemetry shutdown failed", zap.String("provider", name), zap.Error(err))
			}
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver))

	if cfg.Database.AutoMigrate || db.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			return err
		}
		log.Info("Schema migrated with AutoMigrate")
	}
	if err := telemetry.InstrumentDB(db.DB, telemetry.DBConfig{
		TraceEnabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:          cfg.Database.DBName,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, meterProvider.Meter("sitestock/db"), log); err != nil {
		return err
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}

	var metrics *telemetry.Metrics
	if cfg.Metrics.Enabled {
		metrics = telemetry.NewMetrics("sitestock")
		if err := metrics.RegisterDB(sqlDB, cfg.Database.DBName); err != nil {
			return err
		}
	}

	// Redis backs locks, the report cache, rate limits and the event relay.
	// Without it each falls back to a process-local implementation.
	var (
		redisClient *redis.Client
		locker      appshared.Locker
		reportCache appshared.Cache
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()
		locker = lock.NewRedisLocker(redisClient, cfg.App.Name, lockRetryWindow)
		reportCache = cache.NewRedisCache(redisClient, cfg.App.Name)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		memCache := cache.NewMemoryCache(time.Minute)
		defer func() { _ = memCache.Close() }()
		locker = lock.NewLocalLocker(lockRetryWindow)
		reportCache = memCache
		log.Info("Redis disabled, using in-process locks and cache")
	}

	// Repositories
	txScope := persistence.NewGormTransactionScope(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	siteRepo := persistence.NewGormSiteRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	recordRepo := persistence.NewGormRecordRepository(db.DB)
	entryRepo := persistence.NewGormLedgerEntryRepository(db.DB)
	requestRepo := persistence.NewGormMaterialRequestRepository(db.DB)
	issueRepo := persistence.NewGormMaterialIssueRepository(db.DB)
	transferRepo := persistence.NewGormTransferOrderRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	receiptRepo := persistence.NewGormGoodsReceiptRepository(db.DB)
	reportRepo := persistence.NewGormInventoryReportRepository(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	userService := identityapp.NewUserService(userRepo, siteRepo, log)
	siteService := partnerapp.NewSiteService(siteRepo)
	supplierService := partnerapp.NewSupplierService(supplierRepo)
	itemService := catalogapp.NewItemService(txScope, itemRepo, log)
	ledgerService := inventoryapp.NewLedgerService(txScope, recordRepo, entryRepo, siteRepo, log)
	reportService := inventoryapp.NewReportService(reportRepo, recordRepo, siteRepo, log)
	requestService := requisitionapp.NewService(txScope, requestRepo, userRepo, itemRepo, log)
	issueService := logisticsapp.NewMaterialIssueService(txScope, issueRepo, userRepo, siteRepo, log)
	transferService := logisticsapp.NewTransferOrderService(txScope, transferRepo)
	orderService := procurementapp.NewPurchaseOrderService(txScope, orderRepo, userRepo, siteRepo, supplierRepo, log)
	receiptService := receivingapp.NewGoodsReceiptService(txScope, receiptRepo, userRepo, supplierRepo, log)

	renderer := export.NewExcelRenderer()
	reportService.SetRenderer(renderer)
	reportService.SetCache(reportCache, cfg.Report.CacheTTL)
	receiptService.SetLocker(locker, cfg.Redis.LockTTL)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(inventoryapp.NewReportCacheInvalidator(reportService, log))
	if metrics != nil {
		eventBus.Subscribe(metrics)
	}
	if redisClient != nil && cfg.Redis.Stream != "" {
		eventBus.Subscribe(event.NewRedisStreamRelay(redisClient, event.NewDomainSerializer(), cfg.Redis.Stream, cfg.Redis.StreamMaxLen, log))
	}
	for _, svc := range []interface {
		SetEventPublisher(publisher shared.EventPublisher)
	}{userService, itemService, ledgerService, requestService, issueService, orderService, receiptService} {
		svc.SetEventPublisher(eventBus)
	}
	if err := eventBus.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Document storage
	var (
		archiver        handler.ReportArchiver
		documentHandler *handler.DocumentHandler
	)
	if cfg.Storage.Enabled {
		store, err := storage.NewS3DocumentStore(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			log.Warn("Document bucket check failed", zap.String("bucket", store.Bucket()), zap.Error(err))
		}
		orderService.SetDocumentLinker(store)
		receiptService.SetDocumentLinker(store)
		archiver = store
		documentHandler = handler.NewDocumentHandler(store)
		log.Info("Document storage enabled", zap.String("bucket", store.Bucket()))
	}

	// Background jobs
	var jobs handler.JobRunner
	if cfg.Scheduler.Enabled {
		var observer scheduler.ReconcileObserver
		if metrics != nil {
			observer = metrics
		}
		sched := scheduler.New(scheduler.Config{JobTimeout: cfg.Scheduler.JobTimeout}, log)
		if err := sched.Register(cfg.Scheduler.ReconcileCron, scheduler.NewReconcileJob(ledgerService, locker, observer)); err != nil {
			return err
		}
		sched.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := sched.Stop(stopCtx); err != nil {
				log.Error("Error stopping scheduler", zap.Error(err))
			}
		}()
		jobs = sched
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: request ID first so every later log line carries it
	engine.Use(middleware.RequestID())
	if tracerProvider.IsEnabled() {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, otel.GetTracerProvider()))
	}
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	httpMetrics, err := middleware.HTTPMetrics(meterProvider.Meter("sitestock/http"))
	if err != nil {
		return err
	}
	engine.Use(httpMetrics)
	if metrics != nil {
		engine.Use(metrics.GinMiddleware())
		engine.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}
	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.Env == "production"
	engine.Use(middleware.Secure(security))
	engine.Use(middleware.CORS(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Timeout(cfg.HTTP.WriteTimeout))

	jwtCfg := middleware.DefaultJWTConfig(jwtService)
	jwtCfg.Logger = log
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuth(jwtCfg), middleware.SpanAttributes())
	if cfg.HTTP.RateLimitEnabled {
		var limiter middleware.Limiter
		if redisClient != nil {
			limiter = middleware.NewRedisRateLimiter(redisClient, cfg.App.Name+":ratelimit", cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		} else {
			local := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
			go local.Run(ctx)
			limiter = local
		}
		r.Use(middleware.RateLimit(limiter, log))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	handlers := router.Handlers{
		Auth:            handler.NewAuthHandler(authService, userService),
		Users:           handler.NewUserHandler(userService),
		Partners:        handler.NewPartnerHandler(siteService, supplierService),
		Items:           handler.NewItemHandler(itemService),
		Inventory:       handler.NewInventoryHandler(ledgerService, reportService, handler.ReportFormat{ContentType: renderer.ContentType(), Extension: renderer.FileExtension()}, archiver),
		MaterialRequest: handler.NewMaterialRequestHandler(requestService),
		MaterialIssue:   handler.NewMaterialIssueHandler(issueService, transferService),
		PurchaseOrder:   handler.NewPurchaseOrderHandler(orderService),
		GoodsReceipt:    handler.NewGoodsReceiptHandler(receiptService),
		Documents:       documentHandler,
		System:          handler.NewSystemHandler(cfg.App.Name, version, sqlDB, jobs),
	}
	handlers.Mount(engine, r)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Server exited gracefully")
	return nil
}
