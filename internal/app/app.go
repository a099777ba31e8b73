package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"solaintel/internal/config"
	"solaintel/internal/infrastructure/llm"
	"solaintel/internal/infrastructure/mail"
	"solaintel/internal/infrastructure/parser"
	"solaintel/internal/infrastructure/scheduler"
	"solaintel/internal/infrastructure/storage"
	"solaintel/internal/logging"
	"solaintel/internal/ports"
	"solaintel/internal/scanner"
	"solaintel/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	db       *sql.DB
}

// New builds a runnable application instance. Optional collaborators
// (storage, mailer, LLM writer) are wired only when configured.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewRSSScanner(nil))
	registry.Register(parser.NewBlogScanner(nil))

	source := parser.NewStrategySource(registry, cfg.Sources, baseLogger.With("component", "source"))

	var db *sql.DB
	var repository ports.DigestRepository
	if cfg.Database.DSN != "" {
		opened, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		repo := storage.NewPostgresRepository(opened)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = opened.Close()
			return nil, fmt.Errorf("prepare database: %w", err)
		}
		db = opened
		repository = repo
	}

	var writer ports.DigestWriter
	if cfg.LLM.APIKey != "" {
		writer = llm.NewChatGPTClient(cfg.LLM)
	}

	var mailer ports.Mailer
	if cfg.Mail.APIKey != "" {
		mailer = mail.NewResendClient(cfg.Mail)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Repository: repository,
		Writer:     writer,
		Mailer:     mailer,
		Settings: usecase.Settings{
			Period:            cfg.Digest.Period,
			MaxArticles:       cfg.Digest.MaxArticles(),
			MaxAgeDays:        cfg.Digest.MaxAgeDays,
			MinRelevanceScore: cfg.Digest.MinRelevanceScore,
			Recipients:        cfg.Digest.Recipients,
			From:              cfg.Mail.From,
			FetchOnly:         cfg.Digest.FetchOnly,
		},
		Logger: baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline, db: db}, nil
}

// Run performs a single pipeline execution, or blocks on the interval
// scheduler when recurring runs are enabled.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	if a.cfg.Scheduler.Enabled {
		driver := scheduler.NewIntervalScheduler(a.cfg.Digest.Period)
		runner := usecase.NewScheduler(driver, a.pipeline)
		if err := runner.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		<-ctx.Done()
		return runner.Stop(context.Background())
	}

	now := time.Now().In(a.cfg.Scheduler.Location())
	result, err := a.pipeline.Run(ctx, now)
	if err != nil {
		return err
	}

	if result.Success {
		a.logger.Info("digest delivered", "message_id", result.MessageID)
	} else {
		a.logger.Info("digest not delivered", "reason", result.Error)
	}
	return nil
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
