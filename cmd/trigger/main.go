// The trigger command runs one processor batch and exits. It exists for cron
// environments that prefer invoking a binary over calling the HTTP trigger.
package main

import (
	"context"
	"time"

	"github.com/joshu-sajeev/issueflow/internal/config"
	"github.com/joshu-sajeev/issueflow/internal/generate"
	"github.com/joshu-sajeev/issueflow/internal/processor"
	"github.com/joshu-sajeev/issueflow/internal/publisher"
	"github.com/joshu-sajeev/issueflow/internal/storage/postgres"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

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

	repo := postgres.NewJobRepository(db)

	var gen generate.Generator = generate.Heuristic{}
	if appCfg.AnthropicAPIKey != "" {
		gen = generate.NewAnthropic(appCfg.AnthropicAPIKey)
	}

	proc := processor.New(repo, publisher.NewGitHub(appCfg.GitHubToken), gen, logger, appCfg.StaleAfter)

	count, err := proc.ProcessPendingJobs(ctx, appCfg.BatchSize)
	if err != nil {
		logger.Fatal("processing run failed", zap.Error(err))
	}

	logger.Info("processing run complete", zap.Int("processed", count))
}
