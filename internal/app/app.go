package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talentflow_backend/internal/config"
	"talentflow_backend/internal/controller"
	"talentflow_backend/internal/repository"
	"talentflow_backend/internal/service"
	"talentflow_backend/internal/util"
	"talentflow_backend/pkg/configwatcher"
	"talentflow_backend/pkg/database"
	"talentflow_backend/pkg/logger"
	"talentflow_backend/pkg/monitoring"
	"talentflow_backend/pkg/security"
	"talentflow_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	ConfigPath      string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Store           repository.AssessmentStore
	limiter         *security.RateLimiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type services struct {
	storage    *service.StorageService
	assessment *service.AssessmentService
	submission *service.SubmissionService
	export     *service.ExportService
	upload     *service.UploadService
}

type controllers struct {
	assessment *controller.AssessmentController
	submission *controller.SubmissionController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// initStore gorm 为持久化实现，开启 redis 时在外层加缓存
func (a *App) initStore(db *gorm.DB, rdb *redis.Client, cfg *config.Config) repository.AssessmentStore {
	var store repository.AssessmentStore = repository.NewAssessmentRepository(db)
	if rdb != nil {
		store = repository.NewCachedAssessmentStore(store, rdb, cfg.Redis.TTL())
	}
	return store
}

func (a *App) initServices(store repository.AssessmentStore, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.assessment = service.NewAssessmentService(store)
	s.submission = service.NewSubmissionService(store, cfg.Assessment.DefaultPassingScore)
	s.export = service.NewExportService(s.assessment, s.submission)
	s.upload = service.NewUploadService(s.assessment, s.storage, cfg.Assessment.MaxUploadSizeMB)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		assessment: controller.NewAssessmentController(s.assessment),
		submission: controller.NewSubmissionController(s.submission, s.export, s.upload),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.limiter = security.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window())
	router.Use(a.limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// registerReloadCallbacks 配置热更新：日志级别与限流速率
func (a *App) registerReloadCallbacks() {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		if l := logger.LevelFor(cfg); l != logger.Level() {
			logger.SetLevel(l)
			logger.Log.Info("Log level changed", zap.Stringer("level", l))
		}
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		a.limiter.Update(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window())
		logger.Log.Info("Rate limit updated",
			zap.Int("maxRequests", cfg.RateLimit.MaxRequests),
			zap.Duration("window", cfg.RateLimit.Window()))
	})
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func NewApp(cfg *config.Config, configPath string) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 开发模式、sqlite 或显式指定时执行迁移
	if cfg.ForceMigrate || cfg.Server.Mode == "debug" || cfg.Database.Driver == "sqlite" {
		if err := database.AutoMigrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			// 缓存不是必需的，连接失败时直接读库
			logger.Log.Warn("Redis unavailable, assessment cache disabled", zap.Error(err))
			rdb = nil
		}
	}

	app := &App{
		Config:     cfg,
		ConfigPath: configPath,
		DB:         db,
		Redis:      rdb,
	}
	if cfg.MigrateOnly {
		return app
	}

	app.Store = app.initStore(db, rdb, cfg)
	services := app.initServices(app.Store, cfg)
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.MaxMultipartMemory = int64(cfg.Assessment.MaxUploadSizeMB * util.BytesPerMB)
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerReloadCallbacks()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	app.registerRoutes(router, controllers)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if a.ConfigPath != "" {
		if err := configwatcher.WatchConfig(ctx, a.ConfigPath, a.applyConfig); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(shutdownCtx)
	logger.Log.Info("Server exiting")
}

// Close 释放限流清理协程、追踪导出器、redis 与数据库连接
func (a *App) Close(ctx context.Context) {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
