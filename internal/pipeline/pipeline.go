// Package pipeline drives one sourcing run: collect from every source, then
// enrich, score and store each candidate in turn.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-founder-sourcing/internal/metrics"
	"go-founder-sourcing/internal/models"
	"go-founder-sourcing/internal/scraper"
)

type Enricher interface {
	Enrich(ctx context.Context, c *models.Candidate)
}

type Scorer interface {
	Score(ctx context.Context, c *models.Candidate) models.ScoreResult
}

// Store reports whether the candidate was written as a new row.
type Store interface {
	Add(ctx context.Context, c *models.Candidate) (bool, error)
}

type Notifier interface {
	NotifyProspect(ctx context.Context, c *models.Candidate) error
	NotifySummary(ctx context.Context, stats models.RunStats) error
}

type Pipeline struct {
	scrapers []scraper.Scraper
	enricher Enricher
	scorer   Scorer
	store    Store
	notifier Notifier
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

type Option func(*Pipeline)

func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New builds a pipeline. Scrapers run in the order given.
func New(scrapers []scraper.Scraper, enricher Enricher, scorer Scorer, store Store, log *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		scrapers: scrapers,
		enricher: enricher,
		scorer:   scorer,
		store:    store,
		log:      log.With(zap.String("component", "pipeline")),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one full pass. Per-source and per-candidate failures are
// logged and counted; the only error returned is context cancellation.
func (p *Pipeline) Run(ctx context.Context) (models.RunStats, error) {
	stats := models.RunStats{
		RunID:     uuid.NewString(),
		StartedAt: p.now(),
		PerSource: make(map[string]int, len(p.scrapers)),
	}
	log := p.log.With(zap.String("run_id", stats.RunID))
	log.Info("🚀 starting sourcing run", zap.Int("sources", len(p.scrapers)))

	var all []models.Candidate
	for _, s := range p.scrapers {
		if err := ctx.Err(); err != nil {
			return p.finish(ctx, log, stats), err
		}
		log.Info("▶️ collecting", zap.String("source", s.Name()))
		cands, err := p.collect(ctx, s)
		if err != nil {
			stats.SourceFailures++
			p.metrics.SourceFailed(s.Name())
			log.Error("❌ source failed", zap.String("source", s.Name()), zap.Error(err))
			cands = nil
		}
		stats.PerSource[s.Name()] = len(cands)
		p.metrics.SourceCollected(s.Name(), len(cands))
		log.Info("✅ collected", zap.String("source", s.Name()), zap.Int("count", len(cands)))
		all = append(all, cands...)
	}

	stats.Total = len(all)
	log.Info("📦 total candidates collected", zap.Int("total", stats.Total))
	if stats.Total == 0 {
		log.Warn("no candidates found")
		return p.finish(ctx, log, stats), nil
	}

	for i := range all {
		if err := ctx.Err(); err != nil {
			return p.finish(ctx, log, stats), err
		}
		c := &all[i]
		log.Info("processing candidate",
			zap.Int("n", i+1),
			zap.Int("of", stats.Total),
			zap.String("name", c.Name),
			zap.String("source", string(c.Source)),
		)
		if err := p.process(ctx, log, c, &stats); err != nil {
			log.Error("candidate processing failed", zap.String("name", c.Name), zap.Error(err))
		}
	}

	return p.finish(ctx, log, stats), nil
}

func (p *Pipeline) collect(ctx context.Context, s scraper.Scraper) (cands []models.Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			cands, err = nil, fmt.Errorf("panic in %s scraper: %v", s.Name(), r)
		}
	}()
	return s.Scrape(ctx)
}

// process runs enrich, score and store for one candidate. A panic in any
// stage is converted to an error so the batch keeps going.
func (p *Pipeline) process(ctx context.Context, log *zap.Logger, c *models.Candidate, stats *models.RunStats) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	stats.Enriched++
	p.enricher.Enrich(ctx, c)

	res := p.scorer.Score(ctx, c)
	c.Score = &res
	stats.Scored++
	p.metrics.CandidateScored(string(res.Priority), res.Defaulted)

	isNew, err := p.store.Add(ctx, c)
	switch {
	case err != nil:
		stats.StoreFailures++
		p.metrics.CandidateProcessed(metrics.OutcomeStoreFailure)
		return fmt.Errorf("store: %w", err)
	case !isNew:
		stats.Duplicates++
		p.metrics.CandidateProcessed(metrics.OutcomeDuplicate)
		log.Info("⏭️ duplicate, skipped", zap.String("name", c.Name))
		return nil
	}

	stats.New++
	p.metrics.CandidateProcessed(metrics.OutcomeNew)
	if c.IsHighPriority() {
		stats.HighPriority++
		log.Info("🔥 high-priority prospect", zap.String("name", c.Name), zap.Int("score", res.OverallScore))
		if p.notifier != nil {
			if err := p.notifier.NotifyProspect(ctx, c); err != nil {
				log.Warn("⚠️ prospect notification failed", zap.String("name", c.Name), zap.Error(err))
			}
		}
	}
	return nil
}

func (p *Pipeline) finish(ctx context.Context, log *zap.Logger, stats models.RunStats) models.RunStats {
	end := p.now()
	stats.Duration = end.Sub(stats.StartedAt)
	p.metrics.RunFinished(stats.Duration, end)

	log.Info("📊 run complete",
		zap.Int("total", stats.Total),
		zap.Int("new", stats.New),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("enriched", stats.Enriched),
		zap.Int("scored", stats.Scored),
		zap.Int("high_priority", stats.HighPriority),
		zap.Int("store_failures", stats.StoreFailures),
		zap.Int("source_failures", stats.SourceFailures),
		zap.Duration("duration", stats.Duration),
	)

	if p.notifier != nil {
		if err := p.notifier.NotifySummary(context.WithoutCancel(ctx), stats); err != nil {
			log.Warn("⚠️ summary notification failed", zap.Error(err))
		}
	}
	return stats
}
