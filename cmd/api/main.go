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
	"github.com/joshu-sajeev/issueflow/internal/config"
	"github.com/joshu-sajeev/issueflow/internal/generate"
	"github.com/joshu-sajeev/issueflow/internal/job"
	"github.com/joshu-sajeev/issueflow/internal/models"
	"github.com/joshu-sajeev/issueflow/internal/processor"
	"github.com/joshu-sajeev/issueflow/internal/publisher"
	"github.com/joshu-sajeev/issueflow/internal/ratelimit"
	"github.com/joshu-sajeev/issueflow/internal/storage/postgres"
	"github.com/joshu-sajeev/issueflow/middleware"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	appCfg, err := config.LoadFromEnv(ctx)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	dbCfg, err := postgres.LoadConfigFromEnv(ctx)
	if err != nil {
		logger.Fatal("failed to load database config", zap.Error(err))
	}

	db, err := postgres.ConnectDB(dbCfg, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	if err := postgres.MigrateModels(db, logger, &models.Job{}); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	repo := postgres.NewJobRepository(db)
	service := job.NewJobService(repo)
	handler := job.NewJobHandler(service)

	var gen generate.Generator = generate.Heuristic{}
	if appCfg.AnthropicAPIKey != "" {
		gen = generate.NewAnthropic(appCfg.AnthropicAPIKey)
	}
	pub := publisher.NewGitHub(appCfg.GitHubToken)

	proc := processor.New(repo, pub, gen, logger, appCfg.StaleAfter)
	trigger := processor.NewTriggerHandler(proc, appCfg.BatchSize)
	enhance := job.NewEnhanceHandler(gen)

	limiter := ratelimit.NewLimiter(logger)
	limiter.Start()
	defer limiter.Stop()

	router := gin.New()
	router.Use(gin.Recovery(), middleware.ErrorHandler())

	limited := middleware.RateLimit(limiter, appCfg.RateLimit, appCfg.RateLimitWindow, appCfg.RateLimitDisplay)

	api := router.Group("/api")
	{
		jobs := api.Group("/jobs", limited, middleware.RequireUser())
		jobs.POST("", handler.Create)
		jobs.GET("/:id", handler.Get)

		api.POST("/enhance", limited, middleware.RequireUser(), enhance.Enhance)
		api.POST("/process", limited, middleware.TriggerAuth(appCfg.TriggerSecret), trigger.Trigger)
	}

	router.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:    ":" + appCfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("api listening", zap.String("port", appCfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
