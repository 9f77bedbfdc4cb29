package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-founder-sourcing/internal/enrich"
	"go-founder-sourcing/internal/filter"
	"go-founder-sourcing/internal/models"
	"go-founder-sourcing/internal/scraper"
)

// API is the part of the GitHub client the collector needs.
type API interface {
	SearchUsers(ctx context.Context, query string, limit int) ([]string, error)
	Profile(ctx context.Context, login string) (*models.GitHubProfile, error)
}

type Options struct {
	Queries     []string
	MaxResults  int
	Region      string
	QueryDelay  time.Duration
	DetailDelay time.Duration
}

type GitHubScraper struct {
	api  API
	opts Options
	log  *zap.Logger
}

func NewGitHubScraper(api API, opts Options, log *zap.Logger) *GitHubScraper {
	return &GitHubScraper{
		api:  api,
		opts: opts,
		log:  log.With(zap.String("scraper", "github")),
	}
}

func (s *GitHubScraper) Name() string {
	return string(models.SourceGitHub)
}

func (s *GitHubScraper) Scrape(ctx context.Context) ([]models.Candidate, error) {
	var cands []models.Candidate
	failed := 0

	for i, query := range s.opts.Queries {
		if ctx.Err() != nil {
			return cands, ctx.Err()
		}
		if i > 0 {
			if err := scraper.Sleep(ctx, s.opts.QueryDelay); err != nil {
				return cands, err
			}
		}

		s.log.Info("searching users", zap.String("query", query))
		logins, err := s.api.SearchUsers(ctx, query, s.opts.MaxResults)
		if err != nil {
			failed++
			s.log.Error("user search failed", zap.String("query", query), zap.Error(err))
			continue
		}

		for j, login := range logins {
			if j > 0 {
				if err := scraper.Sleep(ctx, s.opts.DetailDelay); err != nil {
					return cands, err
				}
			}
			profile, err := s.api.Profile(ctx, login)
			if err != nil {
				s.log.Debug("profile lookup failed", zap.String("login", login), zap.Error(err))
				continue
			}
			cands = append(cands, s.toCandidate(profile))
		}
	}

	if failed > 0 && failed == len(s.opts.Queries) {
		return nil, fmt.Errorf("all %d github searches failed", failed)
	}

	unique := scraper.Dedupe(cands, func(c models.Candidate) string { return c.GitHubUsername })
	s.log.Info("collected", zap.Int("unique", len(unique)))
	return unique, nil
}

func (s *GitHubScraper) toCandidate(p *models.GitHubProfile) models.Candidate {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = p.Login
	}
	location := strings.TrimSpace(p.Location)
	if location == "" {
		location = s.opts.Region
	}
	htmlURL := p.HTMLURL
	if htmlURL == "" {
		htmlURL = "https://github.com/" + p.Login
	}

	c := models.Candidate{
		Name:           name,
		Source:         models.SourceGitHub,
		Location:       location,
		Company:        strings.TrimPrefix(strings.TrimSpace(p.Company), "@"),
		GitHubUsername: p.Login,
		GitHubURL:      htmlURL,
		TwitterHandle:  p.TwitterUsername,
		Blog:           p.Blog,
		Bio:            p.Bio,
		GitHubProfile:  p,
	}
	if enrich.ValidEmail(p.Email) {
		c.Email = strings.TrimSpace(p.Email)
	}
	if p.Bio != "" {
		c.AddSignal("GitHub bio: " + p.Bio)
	}
	if p.Company != "" {
		c.AddSignal("Company: " + p.Company)
	}
	if filter.HasStartupKeywords(p.Bio) {
		c.AddSignal("Startup keywords in bio")
	}
	return c
}
