package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"NewsCredibility/internal/config"
	"NewsCredibility/internal/domain"
	"NewsCredibility/internal/httpapi"
	"NewsCredibility/internal/infrastructure/llm"
	"NewsCredibility/internal/infrastructure/ml"
	"NewsCredibility/internal/infrastructure/scheduler"
	"NewsCredibility/internal/infrastructure/source"
	"NewsCredibility/internal/infrastructure/storage"
	"NewsCredibility/internal/infrastructure/telegram"
	"NewsCredibility/internal/logging"
	"NewsCredibility/internal/metrics"
	"NewsCredibility/internal/ports"
	"NewsCredibility/internal/relevance"
	"NewsCredibility/internal/scanner"
	"NewsCredibility/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	redis     *redis.Client
	metrics   *metrics.Collectors
	repo      *storage.SQLRepository
	pipeline  *usecase.Pipeline
	headlines *usecase.Headlines
	scheduler *usecase.Scheduler
}

// New builds a runnable application instance. Optional collaborators that
// fail to initialise are logged and left out.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{cfg: cfg, logger: baseLogger, metrics: metrics.New()}

	registry := scanner.NewRegistry()
	registry.Register(source.NewNewsAPI(cfg.News, baseLogger.With("component", "provider.newsapi")))
	registry.Register(source.NewGoogleNews(cfg.RSS, baseLogger.With("component", "provider.googlenews")))
	for _, name := range cfg.News.Providers {
		if _, err := registry.Resolve(name); err != nil {
			return nil, fmt.Errorf("news providers: %w", err)
		}
	}

	var fetcher ports.ArticleFetcher = source.NewStrategySource(registry, cfg.News.Providers, a.metrics, baseLogger.With("component", "source"))

	var headlineCache ports.HeadlineCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			baseLogger.Warn("redis unavailable, cache disabled", "addr", cfg.Redis.Addr, "error", err)
			_ = rdb.Close()
		} else {
			a.redis = rdb
			cache := source.NewRedisCache(rdb, cfg.Redis.TTL)
			fetcher = source.NewCachedFetcher(fetcher, cache, baseLogger.With("component", "cache"))
			headlineCache = cache
		}
	}

	var classifier ports.Classifier
	if cfg.Classifier.URL != "" {
		classifier = ml.NewClient(cfg.Classifier)
	}

	var (
		verifier ports.VerdictProvider
		reporter ports.ReportGenerator
	)
	if cfg.Verifier.APIKey != "" {
		client := llm.NewPerplexityClient(cfg.Verifier)
		verifier, reporter = client, client
	}

	var repository ports.AnalysisRepository
	if cfg.Database.DSN != "" {
		if err := a.openDatabase(ctx); err != nil {
			baseLogger.Warn("database unavailable, persistence disabled", "driver", cfg.Database.Driver, "error", err)
		} else {
			a.repo = storage.NewSQLRepository(a.db, cfg.Database.Driver)
			repository = a.repo
		}
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	scorerLogger := baseLogger.With("component", "scorer")
	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher:         fetcher,
		Classifier:      classifier,
		Verifier:        verifier,
		Reporter:        reporter,
		Repository:      repository,
		Notifier:        notifier,
		Scorer:          relevance.NewScorer(relevance.WithTrustedSources(cfg.Scoring.TrustedSources), relevance.WithLogger(scorerLogger)),
		Recorder:        a.metrics,
		Logger:          baseLogger.With("component", "pipeline"),
		MaxArticles:     cfg.Scoring.MaxArticles,
		FetchTimeout:    cfg.News.Timeout,
		ClassifyTimeout: cfg.Classifier.Timeout,
		VerifyTimeout:   cfg.Verifier.Timeout,
	})

	a.headlines = usecase.NewHeadlines(usecase.HeadlineDeps{
		Fetcher: fetcher,
		Cache:   headlineCache,
		Logger:  baseLogger.With("component", "headlines"),
		MaxAge:  cfg.Redis.TTL,
	})

	targets := make([]usecase.HeadlineTarget, 0, len(cfg.Headlines.Categories))
	for _, category := range cfg.Headlines.Categories {
		targets = append(targets, usecase.HeadlineTarget{Country: cfg.Headlines.Country, Category: category})
	}
	driver := scheduler.NewCronScheduler(cfg.Headlines.CronExpression, cfg.Headlines.Location(), baseLogger.With("component", "scheduler"))
	a.scheduler = usecase.NewScheduler(driver, a.headlines, targets)

	return a, nil
}

func (a *Application) openDatabase(ctx context.Context) error {
	db, err := storage.Open(ctx, a.cfg.Database)
	if err != nil {
		return err
	}
	if a.cfg.Database.Driver == config.DriverSQLite {
		if err := storage.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return err
		}
	}
	a.db = db
	return nil
}

// Analyze runs one analysis.
func (a *Application) Analyze(ctx context.Context, req usecase.AnalyzeRequest) (domain.Analysis, error) {
	return a.pipeline.Analyze(ctx, req)
}

// Report runs one analysis and produces the long-form report.
func (a *Application) Report(ctx context.Context, req usecase.AnalyzeRequest) (domain.Analysis, string, error) {
	return a.pipeline.Report(ctx, req)
}

// Headlines returns top headlines for a country/category pair.
func (a *Application) Headlines(ctx context.Context, target usecase.HeadlineTarget, limit int) (domain.HeadlineBatch, error) {
	return a.headlines.Get(ctx, target, limit)
}

// Serve runs the HTTP API and the headline scheduler until ctx is cancelled.
func (a *Application) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	var history httpapi.AnalysisHistory
	if a.repo != nil {
		history = a.repo
	}
	server := httpapi.New(httpapi.Deps{
		Pipeline:  a.pipeline,
		Headlines: a.headlines,
		History:   history,
		Metrics:   a.metrics.Handler(),
		Logger:    a.logger.With("component", "http"),
	})

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start(addr) }()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(
		serveErr,
		server.Shutdown(shutdownCtx),
		a.scheduler.Stop(shutdownCtx),
	)
}

// Migrate applies schema changes to the configured database.
func (a *Application) Migrate(ctx context.Context, direction string, steps int) error {
	if a.db == nil {
		if a.cfg.Database.DSN == "" {
			return fmt.Errorf("database dsn is not configured")
		}
		if err := a.openDatabase(ctx); err != nil {
			return err
		}
	}
	if a.cfg.Database.Driver == config.DriverSQLite {
		if direction != "up" {
			return fmt.Errorf("sqlite schema supports only up")
		}
		return storage.EnsureSchema(ctx, a.db)
	}
	return storage.Migrate(a.db, direction, steps)
}

// Close releases database and cache connections.
func (a *Application) Close() error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}
