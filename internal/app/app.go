// Package app turns a Config into a ready-to-run pipeline.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"

	"go-founder-sourcing/internal/ai"
	"go-founder-sourcing/internal/browser"
	"go-founder-sourcing/internal/cache"
	"go-founder-sourcing/internal/config"
	"go-founder-sourcing/internal/database"
	"go-founder-sourcing/internal/enrich"
	"go-founder-sourcing/internal/fetch"
	"go-founder-sourcing/internal/githubapi"
	"go-founder-sourcing/internal/metrics"
	"go-founder-sourcing/internal/pipeline"
	"go-founder-sourcing/internal/reporter"
	"go-founder-sourcing/internal/scoring"
	"go-founder-sourcing/internal/scraper"
	"go-founder-sourcing/internal/scraper/github"
	"go-founder-sourcing/internal/scraper/hackernews"
	"go-founder-sourcing/internal/scraper/producthunt"
	"go-founder-sourcing/internal/scraper/twitter"
	"go-founder-sourcing/internal/store"
)

type App struct {
	Pipeline *pipeline.Pipeline
	Metrics  *metrics.Metrics
	Reporter *reporter.TelegramReporter

	closers []func() error
	log     *zap.Logger
}

// Build opens every backend named in cfg. Any error here is a fatal
// initialization failure; resources opened so far are released.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (a *App, err error) {
	a = &App{Metrics: metrics.New(), log: log}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	profileCache, err := a.openCache(ctx, cfg)
	if err != nil {
		return a, err
	}

	backend, err := a.openBackend(ctx, cfg)
	if err != nil {
		return a, err
	}

	gh, err := githubapi.NewClient(cfg.GitHubToken, cfg.Sources.GitHub.BaseURL, cfg.Enrich.Timeout)
	if err != nil {
		return a, err
	}
	httpFetcher := fetch.NewHTTPFetcher(cfg.Enrich.Timeout)

	scrapers, err := a.scrapers(cfg, gh, httpFetcher)
	if err != nil {
		return a, err
	}

	enricher := enrich.NewEnricher(
		enrich.NewCachedGitHub(gh, profileCache, log),
		httpFetcher,
		enrich.Options{Timeout: cfg.Enrich.Timeout, FetchPages: config.Enabled(cfg.Enrich.FetchBlogPage)},
		log,
	)

	rater, err := ai.NewClient(cfg.AI.Provider, ai.Options{
		APIKey:    cfg.APIKey(),
		Model:     cfg.AI.Model,
		MaxTokens: cfg.AI.MaxTokens,
		Timeout:   cfg.AI.Timeout,
		BaseURL:   cfg.AI.BaseURL,
	})
	if err != nil {
		return a, err
	}
	scorer := scoring.NewScorer(rater, scoring.Thesis{
		FundDescription:  cfg.Thesis.FundDescription,
		Stage:            cfg.Thesis.Stage,
		Focus:            cfg.Thesis.Focus,
		FounderQualities: cfg.Thesis.FounderQualities,
	}, log)

	opts := []pipeline.Option{pipeline.WithMetrics(a.Metrics)}
	if cfg.TelegramEnabled() {
		rep, err := reporter.NewTelegramReporter(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Warn("⚠️ telegram disabled", zap.Error(err))
		} else {
			a.Reporter = rep
			opts = append(opts, pipeline.WithNotifier(rep))
			log.Info("🤖 Telegram reporter initialized")
		}
	}

	a.Pipeline = pipeline.New(scrapers, enricher, scorer, store.NewTable(backend, log), log, opts...)
	return a, nil
}

func (a *App) openCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "none":
		return cache.Nop{}, nil
	case "redis":
		rc := cache.NewRedisCache(cache.NewRedisClient(cfg.Cache.RedisAddr), cfg.Cache.Prefix, cfg.Cache.TTL)
		a.closers = append(a.closers, rc.Close)
		if err := rc.Ping(ctx); err != nil {
			return nil, err
		}
		a.log.Info("🧠 profile cache: redis", zap.String("addr", cfg.Cache.RedisAddr))
		return rc, nil
	default:
		fc, err := cache.NewFileCache(cfg.Cache.Path, cfg.Cache.TTL, a.log)
		if err != nil {
			return nil, err
		}
		a.log.Info("🧠 profile cache: file", zap.String("dir", cfg.Cache.Path))
		return fc, nil
	}
}

func (a *App) openBackend(ctx context.Context, cfg *config.Config) (store.Backend, error) {
	switch cfg.Store.Backend {
	case "csv":
		b, err := store.NewCSVBackend(cfg.Store.CSVPath)
		if err != nil {
			return nil, err
		}
		a.log.Info("💾 store: csv", zap.String("path", cfg.Store.CSVPath))
		return b, nil
	case "postgres":
		repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo.Close)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		a.log.Info("💾 store: postgres")
		return repo, nil
	case "sheets":
		b, err := store.NewSheetsBackend(ctx, cfg.GoogleSheetID, cfg.Store.Worksheet,
			option.WithCredentialsJSON([]byte(cfg.GoogleCredentialsJSON)))
		if err != nil {
			return nil, err
		}
		created, err := b.EnsureWorksheet(ctx)
		if err != nil {
			return nil, err
		}
		if created {
			a.log.Info("created worksheet", zap.String("worksheet", cfg.Store.Worksheet))
		}
		a.log.Info("💾 store: google sheets", zap.String("worksheet", cfg.Store.Worksheet))
		return b, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// scrapers returns the enabled sources in their fixed run order.
func (a *App) scrapers(cfg *config.Config, gh *githubapi.Client, httpFetcher fetch.Fetcher) ([]scraper.Scraper, error) {
	src := cfg.Sources
	var out []scraper.Scraper

	if config.Enabled(src.Twitter.Enabled) {
		nitter := httpFetcher
		if src.Twitter.UseBrowser {
			pw, err := browser.NewPlaywright(a.log, fetch.DefaultUserAgent)
			if err != nil {
				return nil, err
			}
			a.closers = append(a.closers, pw.Close)
			nitter = pw
		}
		out = append(out, twitter.NewTwitterScraper(nitter, twitter.Options{
			Instances:  src.Twitter.Instances,
			Queries:    src.Twitter.Queries,
			MaxResults: src.Twitter.MaxResults,
			Region:     src.Region,
			Delay:      src.Twitter.Delay,
		}, a.log))
	}

	if config.Enabled(src.GitHub.Enabled) {
		out = append(out, github.NewGitHubScraper(gh, github.Options{
			Queries:     src.GitHub.Queries,
			MaxResults:  src.GitHub.MaxResults,
			Region:      src.Region,
			QueryDelay:  src.GitHub.QueryDelay,
			DetailDelay: src.GitHub.DetailDelay,
		}, a.log))
	}

	if config.Enabled(src.HackerNews.Enabled) {
		out = append(out, hackernews.NewHackerNewsScraper(hackernews.Options{
			Queries:    src.HackerNews.Queries,
			MaxResults: src.HackerNews.MaxResults,
			Days:       src.HackerNews.Days,
			BaseURL:    src.HackerNews.BaseURL,
		}, a.log))
	}

	if config.Enabled(src.ProductHunt.Enabled) {
		out = append(out, producthunt.NewProductHuntScraper(producthunt.Options{
			FeedURL: src.ProductHunt.FeedURL,
			Limit:   src.ProductHunt.Limit,
		}, a.log))
	}
	return out, nil
}

// Close releases backends in reverse open order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
