package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	agencyapp "github.com/estatehub/backend/internal/application/agency"
	"github.com/estatehub/backend/internal/application/crm"
	identityapp "github.com/estatehub/backend/internal/application/identity"
	listingapp "github.com/estatehub/backend/internal/application/listing"
	notificationapp "github.com/estatehub/backend/internal/application/notification"
	"github.com/estatehub/backend/internal/infrastructure/auth"
	"github.com/estatehub/backend/internal/infrastructure/config"
	"github.com/estatehub/backend/internal/infrastructure/logger"
	"github.com/estatehub/backend/internal/infrastructure/persistence"
	"github.com/estatehub/backend/internal/infrastructure/storage"
	"github.com/estatehub/backend/internal/infrastructure/telemetry"
	"github.com/estatehub/backend/internal/interfaces/http/handler"
	"github.com/estatehub/backend/internal/interfaces/http/middleware"
	"github.com/estatehub/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

//go:generate go run github.com/swaggo/swag/v2/cmd/swag init -g main.go -d ./,../../internal/interfaces/http/handler,../../internal/interfaces/http/dto --parseDependency -o ../../docs

//	@title			EstateHub API
//	@version		1.0
//	@description	Real estate marketplace and multi-tenant agency CRM
//	@contact.name	EstateHub API Support
//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// multipartOverhead is added to the image size limit for form boundaries and headers
const multipartOverhead = 1 << 20

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	log.Info("Starting EstateHub API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Tracing is a no-op provider when disabled
	tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	// Metrics are likewise a no-op provider unless telemetry.metrics_enabled is set
	mp, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mp.Shutdown(shutdownCtx); err != nil {
			log.Warn("Failed to flush metrics", zap.Error(err))
		}
	}()

	// Database with a zap-backed gorm logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	// sqlite is for local development and has no migration history
	if cfg.Database.Driver == "sqlite" {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	dbSystem := "postgresql"
	if cfg.Database.Driver == "sqlite" {
		dbSystem = "sqlite"
	}
	if err := telemetry.RegisterDBTracing(db.DB, tp, telemetry.DBTracingConfig{
		DBSystem:        dbSystem,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Warn("Failed to enable database tracing", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(ctx, db.DB, mp, telemetry.DBMetricsConfig{
		SlowQueryThresh:   cfg.Telemetry.DBSlowQueryThresh,
		PoolStatsInterval: cfg.Telemetry.DBPoolStatsInterval,
	}, log)
	if err != nil {
		log.Warn("Failed to enable database metrics", zap.Error(err))
	}
	defer dbMetrics.Stop()

	checks := map[string]handler.Pinger{
		"database": handler.PingFunc(db.Ping),
	}

	// Token blacklist: Redis when enabled, otherwise process-local
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if cfg.Redis.Enabled {
		redisClient, err := auth.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		checks["redis"] = redisPinger(redisClient)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		log.Warn("Redis disabled, revoked tokens are tracked in memory only")
	}

	// Object storage for listing images
	images, err := newImageStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	agencyRepo := persistence.NewGormAgencyRepository(db.DB)
	memberRepo := persistence.NewGormMemberRepository(db.DB)
	leadRepo := persistence.NewGormLeadRepository(db.DB)
	dealRepo := persistence.NewGormDealRepository(db.DB)
	commissionRepo := persistence.NewGormCommissionRepository(db.DB)
	taskRepo := persistence.NewGormTaskRepository(db.DB)
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)
	imageRepo := persistence.NewGormImageRepository(db.DB)
	poiRepo := persistence.NewGormPOIRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	notificationService := notificationapp.NewNotificationService(notificationRepo, log)
	authService := identityapp.NewAuthService(userRepo, memberRepo, jwtService, blacklist, log)
	agencyService := agencyapp.NewAgencyService(agencyRepo, memberRepo, userRepo, log)
	leadService := crm.NewLeadService(leadRepo, memberRepo, propertyRepo, notificationService, log)
	dealService := crm.NewDealService(dealRepo, leadRepo, propertyRepo, memberRepo, notificationService, log)
	commissionService := crm.NewCommissionService(commissionRepo, dealRepo, memberRepo, notificationService, log)
	taskService := crm.NewTaskService(taskRepo, leadRepo, dealRepo, memberRepo, log)
	listingService := listingapp.NewListingService(propertyRepo, imageRepo, memberRepo, images, cfg.Storage.MaxImageSize, log)
	marketplaceService := listingapp.NewMarketplaceService(propertyRepo, poiRepo, listingapp.DefaultComparableLimit, log)
	poiService := listingapp.NewPOIService(poiRepo, log)

	handlers := router.Handlers{
		System:       handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion, checks),
		Auth:         handler.NewAuthHandler(authService),
		Agency:       handler.NewAgencyHandler(agencyService),
		Lead:         handler.NewLeadHandler(leadService),
		Deal:         handler.NewDealHandler(dealService),
		Commission:   handler.NewCommissionHandler(commissionService),
		Task:         handler.NewTaskHandler(taskService),
		Property:     handler.NewPropertyHandler(listingService),
		Marketplace:  handler.NewMarketplaceHandler(marketplaceService),
		POI:          handler.NewPOIHandler(poiService),
		Notification: handler.NewNotificationHandler(notificationService),
	}

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order:
	// request id, recovery, access log, tracing, metrics, security headers,
	// CORS, body limit, rate limit, JWT, span enrichment
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(telemetry.GinMiddleware(cfg.Telemetry.ServiceName, tp))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(mp))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-Total-Count", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimitWithUploads(cfg.HTTP.MaxBodySize, cfg.Storage.MaxImageSize+multipartOverhead))

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log
	// The docs route authenticates on its own when swagger.require_auth is set
	swaggerAuth := middleware.JWTAuthMiddlewareWithConfig(jwtConfig)
	jwtConfig.SkipPathPrefixes = append(jwtConfig.SkipPathPrefixes, "/swagger/")
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))
	engine.Use(middleware.SpanAttributes())

	var apiOpts router.APIOptions
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer authLimiter.Stop()
		apiOpts.CredentialGuard = []gin.HandlerFunc{middleware.AuthRateLimit(authLimiter)}
	}

	apiRouter := router.NewRouter(engine, router.WithAPIVersion("v1")).
		RegisterAPI(handlers, apiOpts)
	if cfg.Swagger.Enabled {
		apiRouter.RegisterSwagger(middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     true,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, swaggerAuth))
		log.Info("API documentation enabled",
			zap.Bool("require_auth", cfg.Swagger.RequireAuth),
			zap.Strings("allowed_ips", cfg.Swagger.AllowedIPs),
		)
	}
	apiRouter.Setup()

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// newImageStorage returns S3 storage when enabled, otherwise an in-memory store
func newImageStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (listingapp.ImageStorage, error) {
	if !cfg.Storage.Enabled {
		log.Warn("Object storage disabled, listing images are kept in memory")
		return storage.NewMemoryObjectStorage(cfg.Storage.PublicBaseURL), nil
	}
	s3Storage, err := storage.NewS3ObjectStorage(ctx, &cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignTTL(cfg.Storage.PresignTTL),
	)
	if err != nil {
		return nil, err
	}
	if err := s3Storage.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("Object storage ready", zap.String("bucket", s3Storage.Bucket()))
	return s3Storage, nil
}

func redisPinger(client *redis.Client) handler.Pinger {
	return handler.PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}
