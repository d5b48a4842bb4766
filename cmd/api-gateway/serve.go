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

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/city-intranet-api/api/swagger"
	"github.com/noah-isme/city-intranet-api/internal/handler"
	"github.com/noah-isme/city-intranet-api/internal/middleware"
	"github.com/noah-isme/city-intranet-api/internal/repository"
	"github.com/noah-isme/city-intranet-api/internal/service"
	"github.com/noah-isme/city-intranet-api/pkg/cache"
	"github.com/noah-isme/city-intranet-api/pkg/config"
	"github.com/noah-isme/city-intranet-api/pkg/database"
	"github.com/noah-isme/city-intranet-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/city-intranet-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/city-intranet-api/pkg/middleware/requestid"
	"github.com/noah-isme/city-intranet-api/pkg/storage"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve()
	},
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	redisClient := connectCache(cfg, logr)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	metrics.Registry().MustRegister(collectors.NewDBStatsCollector(db.DB, cfg.Database.Name))
	engine := buildEngine(cfg, logr, db, redisClient, cacheRepo, metrics)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		logr.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logr.Error("server shutdown", zap.Error(err))
		}
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	logr.Info("server stopped")
	return nil
}

// connectCache returns nil when caching is disabled or Redis is unreachable;
// every cache consumer treats a nil client as a permanent miss.
func connectCache(cfg *config.Config, logr *zap.Logger) *redis.Client {
	if !cfg.Dashboard.CacheEnabled {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		return nil
	}
	return client
}

func buildEngine(
	cfg *config.Config,
	logr *zap.Logger,
	db *sqlx.DB,
	redisClient *redis.Client,
	cacheRepo *repository.CacheRepository,
	metrics *service.MetricsService,
) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	userRepo := repository.NewUserRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)

	validate := service.NewValidator()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	signer := storage.NewSignedURLSigner(cfg.Documents.SignedURLSecret, cfg.Documents.SignedURLTTL)
	documentSvc := service.NewDocumentService(documentRepo, signer, cacheSvc, validate, logr)
	taskSvc := service.NewTaskService(service.TaskServiceParams{
		Repo:      taskRepo,
		Users:     userRepo,
		Cache:     cacheSvc,
		Validator: validate,
		Logger:    logr,
		Config:    service.TaskServiceConfig{EnforceStatusPermission: cfg.Tasks.EnforceStatusPermission},
	})
	announcementSvc := service.NewAnnouncementService(announcementRepo, userRepo, cacheSvc, validate, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Users:         userRepo,
		Announcements: announcementSvc,
		Tasks:         taskRepo,
		Documents:     documentRepo,
		Cache:         cacheSvc,
		Logger:        logr,
		Config:        service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})

	rpc := handler.NewRPCRouter(handler.RPCRouterConfig{
		RequireAuth: cfg.RPC.RequireAuth,
		Metrics:     metrics,
		Logger:      logr,
	})
	rpc.Mount(
		handler.NewAuthHandler(authSvc),
		handler.NewUserHandler(userSvc),
		handler.NewDocumentHandler(documentSvc),
		handler.NewTaskHandler(taskSvc),
		handler.NewAnnouncementHandler(announcementSvc),
		handler.NewDashboardHandler(dashboardSvc),
	)
	logr.Debug("procedures registered", zap.Strings("procedures", rpc.Procedures()))

	checks := map[string]handler.ReadinessCheck{"database": db.PingContext}
	if redisClient != nil {
		checks["cache"] = cacheRepo.Ping
	}
	health := handler.NewHealthHandler(metrics, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/metrics", health.Prometheus)

	if cfg.Env != config.EnvProduction {
		swagger.SwaggerInfo.BasePath = cfg.APIPrefix
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())
	api.POST("/rpc/:procedure", middleware.OptionalJWT(authSvc), rpc.Handle)

	return r
}
