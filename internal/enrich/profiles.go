package enrich

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"go-founder-sourcing/internal/cache"
	"go-founder-sourcing/internal/models"
)

// GitHubAPI is the pair of public lookups the enricher makes per username.
type GitHubAPI interface {
	Profile(ctx context.Context, login string) (*models.GitHubProfile, error)
	CommitEmails(ctx context.Context, login string) ([]string, error)
}

// CachedGitHub memoises profile lookups. Commit emails always go to the API.
type CachedGitHub struct {
	api   GitHubAPI
	cache cache.Cache
	log   *zap.Logger
}

func NewCachedGitHub(api GitHubAPI, c cache.Cache, log *zap.Logger) *CachedGitHub {
	return &CachedGitHub{api: api, cache: c, log: log.With(zap.String("component", "profile_cache"))}
}

func profileKey(login string) string {
	return "github:profile:" + strings.ToLower(login)
}

func (g *CachedGitHub) Profile(ctx context.Context, login string) (*models.GitHubProfile, error) {
	key := profileKey(login)
	if data, ok, err := g.cache.Get(ctx, key); err != nil {
		g.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var p models.GitHubProfile
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
	}

	p, err := g.api.Profile(ctx, login)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(p); err == nil {
		if err := g.cache.Set(ctx, key, data); err != nil {
			g.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return p, nil
}

func (g *CachedGitHub) CommitEmails(ctx context.Context, login string) ([]string, error) {
	return g.api.CommitEmails(ctx, login)
}
