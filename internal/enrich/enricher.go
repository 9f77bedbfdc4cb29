package enrich

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-founder-sourcing/internal/fetch"
	"go-founder-sourcing/internal/models"
)

type Options struct {
	// Timeout bounds each individual lookup.
	Timeout time.Duration
	// FetchPages allows downloading the candidate's website to look for a LinkedIn link.
	FetchPages bool
}

// Enricher fills missing contact and role fields from free public data.
// Every lookup is best effort: a failure leaves its field empty.
type Enricher struct {
	github  GitHubAPI
	fetcher fetch.Fetcher
	opts    Options
	log     *zap.Logger
}

// NewEnricher accepts nil for github or fetcher to disable those lookups.
func NewEnricher(github GitHubAPI, fetcher fetch.Fetcher, opts Options, log *zap.Logger) *Enricher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Enricher{
		github:  github,
		fetcher: fetcher,
		opts:    opts,
		log:     log.With(zap.String("component", "enricher")),
	}
}

// run holds per-call state so the profile is fetched at most once.
type run struct {
	e       *Enricher
	c       *models.Candidate
	fetched bool
	profile *models.GitHubProfile
	log     *zap.Logger
}

// Enrich mutates c in place. It never fails; populated fields are left untouched.
func (e *Enricher) Enrich(ctx context.Context, c *models.Candidate) {
	r := &run{
		e:       e,
		c:       c,
		profile: c.GitHubProfile,
		fetched: c.GitHubProfile != nil,
		log:     e.log.With(zap.String("candidate", c.Name)),
	}

	r.email(ctx)
	r.linkedIn(ctx)
	r.githubProfile(ctx)
	r.twitter()
	r.role(ctx)
}

func (r *run) lookupProfile(ctx context.Context) *models.GitHubProfile {
	if r.fetched {
		return r.profile
	}
	r.fetched = true
	if r.e.github == nil || r.c.GitHubUsername == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.e.opts.Timeout)
	defer cancel()
	p, err := r.e.github.Profile(ctx, r.c.GitHubUsername)
	if err != nil {
		r.log.Debug("profile lookup failed", zap.String("login", r.c.GitHubUsername), zap.Error(err))
		return nil
	}
	r.profile = p
	return p
}

func (r *run) email(ctx context.Context) {
	c := r.c
	if c.Email != "" {
		return
	}

	if p := r.lookupProfile(ctx); p != nil && ValidEmail(p.Email) {
		c.Email = strings.TrimSpace(p.Email)
		return
	}

	if email := FindEmail(c.Signals...); email != "" {
		c.Email = email
		return
	}

	if r.e.github == nil || c.GitHubUsername == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, r.e.opts.Timeout)
	defer cancel()
	emails, err := r.e.github.CommitEmails(ctx, c.GitHubUsername)
	if err != nil {
		r.log.Debug("commit email lookup failed", zap.Error(err))
		return
	}
	for _, email := range emails {
		if strings.Contains(strings.ToLower(email), "noreply") {
			continue
		}
		if ValidEmail(email) {
			c.Email = email
			return
		}
	}
}

func (r *run) linkedIn(ctx context.Context) {
	c := r.c
	if c.LinkedInURL != "" {
		return
	}

	if p := r.lookupProfile(ctx); p != nil {
		if u := FindLinkedIn(p.Bio, p.Blog); u != "" {
			c.LinkedInURL = u
			return
		}
	}
	if u := FindLinkedIn(c.Signals...); u != "" {
		c.LinkedInURL = u
		return
	}
	if u := FindLinkedIn(c.Bio, c.Blog, c.Website); u != "" {
		c.LinkedInURL = u
		return
	}

	if !r.e.opts.FetchPages || r.e.fetcher == nil {
		return
	}
	target := pageURL(c.WebsiteURL())
	if target == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, r.e.opts.Timeout)
	defer cancel()
	html, err := r.e.fetcher.Fetch(ctx, target)
	if err != nil {
		r.log.Warn("website fetch failed", zap.String("url", target), zap.Error(err))
		return
	}
	if u := FindLinkedIn(html); u != "" {
		c.LinkedInURL = u
	}
}

func (r *run) githubProfile(ctx context.Context) {
	if r.c.GitHubUsername == "" {
		return
	}
	if p := r.lookupProfile(ctx); p != nil {
		r.c.GitHubProfile = p
	}
}

func (r *run) twitter() {
	c := r.c
	handle := strings.TrimPrefix(strings.TrimSpace(c.TwitterHandle), "@")
	if handle == "" || c.TwitterURL != "" {
		return
	}
	c.TwitterURL = "https://twitter.com/" + handle
}

func (r *run) role(ctx context.Context) {
	c := r.c
	if c.Company != "" {
		return
	}

	if p := r.lookupProfile(ctx); p != nil {
		if company := CleanCompany(p.Company); company != "" {
			c.Company = company
			return
		}
	}

	title, company := FindRole(c.Signals...)
	if company == "" {
		return
	}
	c.Company = company
	if c.Title == "" {
		c.Title = title
	}
}
