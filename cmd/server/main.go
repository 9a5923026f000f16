package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/boutique/storefront/internal/application/catalog"
	"github.com/boutique/storefront/internal/application/dashboard"
	appnotification "github.com/boutique/storefront/internal/application/notification"
	apporder "github.com/boutique/storefront/internal/application/order"
	"github.com/boutique/storefront/internal/infrastructure/auth"
	"github.com/boutique/storefront/internal/infrastructure/cache"
	"github.com/boutique/storefront/internal/infrastructure/config"
	"github.com/boutique/storefront/internal/infrastructure/courier"
	"github.com/boutique/storefront/internal/infrastructure/event"
	"github.com/boutique/storefront/internal/infrastructure/logger"
	"github.com/boutique/storefront/internal/infrastructure/mailer"
	"github.com/boutique/storefront/internal/infrastructure/messaging"
	"github.com/boutique/storefront/internal/infrastructure/persistence"
	"github.com/boutique/storefront/internal/infrastructure/scheduler"
	"github.com/boutique/storefront/internal/infrastructure/storage"
	"github.com/boutique/storefront/internal/infrastructure/telemetry"
	"github.com/boutique/storefront/internal/interfaces/http/handler"
	"github.com/boutique/storefront/internal/interfaces/http/middleware"
	"github.com/boutique/storefront/internal/interfaces/http/router"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//	@title			Storefront API
//	@version		1.0
//	@description	Checkout, order workflow, courier dispatch and admin dashboard of the boutique storefront.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// bootstrap logger for the telemetry setup, replaced once the OTLP log bridge exists
	bootLog, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, logProvider.ZapCore(cfg.Telemetry.ServiceName, zapcore.InfoLevel))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(telemetry.DefaultSlowQueryThreshold),
	)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.InstrumentGorm(db.DB, telemetry.DefaultSlowQueryThreshold, log); err != nil {
			log.Fatal("Failed to instrument database", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	backend := cache.NewBackend(cfg.Redis, log)

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	statsRepo := persistence.NewGormOrderStatsRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	courierClient := courier.NewSteadfastClient(courier.NewConfig(cfg.Courier), log)
	if !courier.NewConfig(cfg.Courier).HasCredentials() {
		log.Warn("Courier credentials are not configured; courier operations will fail with a configuration error")
	}

	// Event bus and post-commit side effects
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(appnotification.NewAdminNotificationHandler(notificationRepo, log))
	eventBus.Subscribe(appnotification.NewCacheInvalidationHandler(backend.Store))
	if cfg.Mail.Enabled {
		eventBus.Subscribe(appnotification.NewMailHandler(mailer.New(cfg.Mail, log), cfg.Mail.ShopName, cfg.Mail.AdminAddress, log))
	}

	var invoiceLinker handler.InvoiceLinker
	if cfg.Storage.Enabled {
		archive, err := storage.NewS3InvoiceArchive(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize invoice archive", zap.Error(err))
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			log.Warn("Invoice bucket check failed", zap.String("bucket", archive.Bucket()), zap.Error(err))
		}
		eventBus.Subscribe(appnotification.NewInvoiceArchiveHandler(archive, log))
		invoiceLinker = archive
	}

	var producer *messaging.OrderEventProducer
	if cfg.Kafka.Enabled {
		producer = messaging.NewOrderEventProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		eventBus.Subscribe(appnotification.NewEventExportHandler(producer))
		log.Info("Exporting order events", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Services
	meter := meterProvider.Meter("storefront")
	orderService := apporder.NewOrderService(txScope, orderRepo, productRepo, courierClient, log)
	orderService.SetEventPublisher(eventBus)
	if meterProvider.IsEnabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(meter)
		if err != nil {
			log.Fatal("Failed to register business metrics", zap.Error(err))
		}
		orderService.SetMetrics(businessMetrics)
	}
	productService := catalogapp.NewProductService(productRepo, log)
	productService.SetEventPublisher(eventBus)
	notificationService := appnotification.NewNotificationService(notificationRepo)
	dashboardService := dashboard.NewDashboardService(statsRepo, backend.Store, cfg.Dashboard.CacheTTL, log)

	courierSync, err := scheduler.NewCourierSyncRunner(orderRepo, orderService, backend.Locker, cfg.Scheduler, log)
	if err != nil {
		log.Fatal("Failed to create courier sync runner", zap.Error(err))
	}

	// HTTP
	middleware.SetupValidator()

	var checkoutLimiter *middleware.RateLimiter
	if cfg.HTTP.CheckoutRateLimit > 0 {
		checkoutLimiter = middleware.NewRateLimiter(cfg.HTTP.CheckoutRateLimit, cfg.HTTP.CheckoutRateWindow)
		defer checkoutLimiter.Stop()
	}

	var httpMeter metric.Meter
	if meterProvider.IsEnabled() {
		httpMeter = meter
	}

	system := handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion).AddCheck("database", db)
	if backend.UsesRedis() {
		system.AddCheck("redis", backend)
	}

	engine, err := router.NewEngine(router.Options{
		ServiceName:     cfg.Telemetry.ServiceName,
		HTTP:            cfg.HTTP,
		Verifier:        auth.NewJWTVerifier(cfg.JWT),
		Meter:           httpMeter,
		CheckoutLimiter: checkoutLimiter,
		Logger:          log,
	}, router.Handlers{
		Orders:        handler.NewOrderHandler(orderService),
		AdminOrders:   handler.NewAdminOrderHandler(orderService, invoiceLinker),
		Products:      handler.NewProductHandler(productService),
		Notifications: handler.NewNotificationHandler(notificationService),
		Dashboard:     handler.NewDashboardHandler(dashboardService),
		Jobs:          handler.NewJobHandler(courierSync),
		System:        system,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	// drain side effects of requests that already returned
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus did not drain", zap.Error(err))
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error("Error closing Kafka writer", zap.Error(err))
		}
	}
	if err := backend.Close(); err != nil {
		log.Error("Error closing Redis client", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	_ = meterProvider.Shutdown(shutdownCtx)
	_ = tracerProvider.Shutdown(shutdownCtx)
	_ = logProvider.Shutdown(shutdownCtx)

	log.Info("Server exited gracefully")
}
