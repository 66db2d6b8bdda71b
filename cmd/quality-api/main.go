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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/nosenfield/nerdy-tutor-quality-sub000/api/swagger"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/handler"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/middleware"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/repository"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/service"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/cache"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/config"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/database"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/jobs"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/logger"
	corsmiddleware "github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/middleware/requestid"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/storage"
)

// @title Tutor Quality API
// @version 0.1.0
// @description Session quality scoring and flagging for the tutoring marketplace
// @BasePath /
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	sessionRepo := repository.NewSessionRepository(db)
	flagRepo := repository.NewFlagRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Evaluation.StatsCacheTTL, logr, redisClient != nil)

	rulesCfg := cfg.Rules.EngineConfig()
	statsSvc := service.NewStatsService(sessionRepo, cacheSvc, metricsSvc, logr, rulesCfg, cfg.Evaluation.StatsCacheTTL)
	scoreSvc := service.NewScoreService(scoreRepo, cacheSvc, logr)
	flagSvc := service.NewFlagService(flagRepo, logr)

	evaluationSvc := service.NewEvaluationService(
		sessionRepo,
		flagRepo,
		scoreRepo,
		statsSvc,
		scoreSvc,
		metricsSvc,
		logr,
		rulesCfg,
		cfg.Scoring.Weights(),
	)

	queue := jobs.NewQueue("evaluation", evaluationSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Evaluation.Workers,
		BufferSize: cfg.Evaluation.QueueSize,
		MaxRetries: cfg.Evaluation.MaxRetries,
		RetryDelay: cfg.Evaluation.RetryDelay,
		Logger:     logr,
	})
	queue.Start(context.Background())
	defer queue.Stop()

	sessionSvc := service.NewSessionService(sessionRepo, statsSvc, queue, metricsSvc, logr)
	authSvc := service.NewAuthService(userRepo, validator.New(), logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})

	reportStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init report storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exportSvc := service.NewExportService(statsSvc, scoreSvc, flagSvc, reportStore, signer, logr)

	sessionHandler := handler.NewSessionHandler(sessionSvc)
	tutorHandler := handler.NewTutorHandler(statsSvc, scoreSvc, flagSvc, evaluationSvc)
	flagHandler := handler.NewFlagHandler(flagSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))

	secured.GET("/auth/me", authHandler.Me)

	sessions := secured.Group("/sessions")
	sessions.POST("", middleware.RequireRoles(models.RoleService, models.RoleAdmin), middleware.Audit(logr, "ingest", "session"), sessionHandler.Ingest)
	sessions.GET("", middleware.RequireRoles(models.RoleCoach, models.RoleAdmin), sessionHandler.List)
	sessions.GET("/:id", middleware.RequireRoles(models.RoleCoach, models.RoleAdmin), sessionHandler.Get)

	tutors := secured.Group("/tutors", middleware.RequireRoles(models.RoleCoach, models.RoleAdmin))
	tutors.GET("/:id/stats", tutorHandler.Stats)
	tutors.GET("/:id/score", tutorHandler.Score)
	tutors.GET("/:id/score/history", tutorHandler.ScoreHistory)
	tutors.GET("/:id/flags", tutorHandler.OpenFlags)
	tutors.POST("/:id/evaluate", middleware.Audit(logr, "evaluate", "tutor"), tutorHandler.Evaluate)
	tutors.POST("/:id/report", middleware.Audit(logr, "export", "tutor"), exportHandler.TutorReport)

	flags := secured.Group("/flags", middleware.RequireRoles(models.RoleCoach, models.RoleAdmin))
	flags.GET("", flagHandler.List)
	flags.GET("/:id", flagHandler.Get)
	flags.POST("/:id/resolve", middleware.Audit(logr, "resolve", "flag"), flagHandler.Resolve)

	secured.GET("/reports/download", middleware.RequireRoles(models.RoleCoach, models.RoleAdmin), exportHandler.Download)
	secured.GET("/system/metrics", middleware.RequireRoles(models.RoleAdmin), metricsHandler.System)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
