package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/magazine-flow-api/api/swagger"
	"github.com/noah-isme/magazine-flow-api/internal/handler"
	internalmiddleware "github.com/noah-isme/magazine-flow-api/internal/middleware"
	"github.com/noah-isme/magazine-flow-api/internal/repository"
	"github.com/noah-isme/magazine-flow-api/internal/service"
	"github.com/noah-isme/magazine-flow-api/pkg/cache"
	"github.com/noah-isme/magazine-flow-api/pkg/config"
	"github.com/noah-isme/magazine-flow-api/pkg/database"
	"github.com/noah-isme/magazine-flow-api/pkg/export"
	"github.com/noah-isme/magazine-flow-api/pkg/jobs"
	"github.com/noah-isme/magazine-flow-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/magazine-flow-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/magazine-flow-api/pkg/middleware/requestid"
	"github.com/noah-isme/magazine-flow-api/pkg/storage"
)

// @title Magazine Flow API
// @version 1.0.0
// @description Task routing, CXO article review and production tracking for magazine teams.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	redisClient := connectCache(cfg, logr)
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient, logr), metrics, cfg.Cache.TTL, logr, redisClient != nil)

	attachments, fileQueue, err := buildAttachments(cfg, metrics, logr)
	if err != nil {
		logr.Fatal("failed to prepare upload storage", zap.Error(err))
	}
	fileQueue.Start(context.Background())
	defer fileQueue.Stop()

	handlers := buildHandlers(cfg, db, attachments, metrics, cacheSvc, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, internalmiddleware.Identity))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())
	r.MaxMultipartMemory = cfg.Uploads.MemoryBytes

	registerRoutes(r, cfg, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// connectCache returns nil when caching is disabled or redis is unreachable.
func connectCache(cfg *config.Config, logr *zap.Logger) *redis.Client {
	if !cfg.Cache.Enabled {
		return nil
	}
	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		return nil
	}
	return client
}

func buildAttachments(cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) (*service.Attachments, *jobs.Queue, error) {
	local, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		return nil, nil, err
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)
	attachments := service.NewAttachments(local, signer, metrics, logr, service.AttachmentsConfig{
		MaxFileSize: cfg.Uploads.MaxFileSizeBytes,
		APIPrefix:   cfg.APIPrefix,
	})
	queue := jobs.NewQueue("file-writes", attachments.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Uploads.WorkerConcurrency,
		MaxRetries: cfg.Uploads.WorkerRetries,
		OnGiveUp:   attachments.Abandon,
		Logger:     logr,
	})
	attachments.SetQueue(queue)
	return attachments, queue, nil
}

func buildHandlers(cfg *config.Config, db *sqlx.DB, attachments *service.Attachments, metrics *service.MetricsService, cacheSvc *service.CacheService, logr *zap.Logger) *handlerSet {
	validate := service.NewValidator()
	tx := database.NewTransactor(db)

	users := repository.NewUserRepository(db)
	tasks := repository.NewTaskRepository(db)
	taskFiles := repository.NewTaskFileRepository(db)
	attachments.SetLedger(taskFiles)
	history := repository.NewTaskHistoryRepository(db)
	articles := repository.NewCXOArticleRepository(db)
	notifications := repository.NewNotificationRepository(db)
	catalog := repository.NewCatalogRepository(db)
	ads := repository.NewAdRepository(db)

	stores := service.TaskStores{
		Tasks:         tasks,
		History:       history,
		Notifications: notifications,
		Users:         users,
		Articles:      articles,
	}

	authSvc := service.NewAuthService(users, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	taskSvc := service.NewTaskService(stores, tx, catalog, taskFiles, validate, metrics, cacheSvc, logr)
	catalogSvc := service.NewCatalogService(catalog, validate, cacheSvc, cfg.Cache.TTL, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Tasks:         tasks,
		Notifications: notifications,
		Articles:      articles,
		Users:         users,
		Cache:         cacheSvc,
		Logger:        logr,
		Config: service.DashboardServiceConfig{
			CacheTTL:       cfg.Dashboard.CacheTTL,
			UpcomingWindow: cfg.Dashboard.UpcomingWindow,
		},
	})

	return &handlerSet{
		tokens:        authSvc,
		auth:          handler.NewAuthHandler(authSvc),
		users:         handler.NewUserHandler(service.NewUserService(users, logr)),
		tasks:         handler.NewTaskHandler(taskSvc, service.NewExportService(taskSvc, logr, export.NewCSVExporter(), export.NewPDFExporter())),
		files:         handler.NewFileHandler(service.NewTaskFileService(stores, taskFiles, tx, attachments, metrics, logr), attachments),
		cxo:           handler.NewCXOHandler(service.NewCXOService(stores, articles, catalog, tx, attachments, metrics, cacheSvc, logr)),
		catalog:       handler.NewCatalogHandler(catalogSvc),
		ads:           handler.NewAdHandler(service.NewAdService(ads, catalog, attachments, logr)),
		notifications: handler.NewNotificationHandler(service.NewNotificationService(notifications, logr)),
		dashboard:     handler.NewDashboardHandler(dashboardSvc),
		metrics:       handler.NewMetricsHandler(metrics, db),
	}
}
