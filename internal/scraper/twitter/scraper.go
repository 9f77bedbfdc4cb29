package twitter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"go-founder-sourcing/internal/fetch"
	"go-founder-sourcing/internal/models"
	"go-founder-sourcing/internal/scraper"
)

type Options struct {
	Instances  []string
	Queries    []string
	MaxResults int
	Region     string
	Delay      time.Duration
}

// TwitterScraper searches public Nitter mirrors, since the official API is paid.
type TwitterScraper struct {
	fetcher fetch.Fetcher
	opts    Options
	log     *zap.Logger
}

func NewTwitterScraper(fetcher fetch.Fetcher, opts Options, log *zap.Logger) *TwitterScraper {
	return &TwitterScraper{
		fetcher: fetcher,
		opts:    opts,
		log:     log.With(zap.String("scraper", "twitter")),
	}
}

func (s *TwitterScraper) Name() string {
	return string(models.SourceTwitter)
}

func (s *TwitterScraper) Scrape(ctx context.Context) ([]models.Candidate, error) {
	var cands []models.Candidate
	failed := 0

	for i, query := range s.opts.Queries {
		if ctx.Err() != nil {
			return cands, ctx.Err()
		}
		if i > 0 {
			if err := scraper.Sleep(ctx, s.opts.Delay); err != nil {
				return cands, err
			}
		}
		s.log.Info("searching tweets", zap.String("query", query))
		found, err := s.search(ctx, query)
		if err != nil {
			failed++
			s.log.Warn("search failed", zap.String("query", query), zap.Error(err))
			continue
		}
		cands = append(cands, found...)
	}

	if failed > 0 && failed == len(s.opts.Queries) {
		return nil, fmt.Errorf("all %d nitter searches failed", failed)
	}

	unique := scraper.Dedupe(cands, func(c models.Candidate) string { return c.TwitterHandle })
	s.log.Info("collected", zap.Int("unique", len(unique)))
	return unique, nil
}

// search tries each instance in order; the first page that loads wins.
func (s *TwitterScraper) search(ctx context.Context, query string) ([]models.Candidate, error) {
	for _, instance := range s.opts.Instances {
		u := fmt.Sprintf("%s/search?f=tweets&q=%s", strings.TrimRight(instance, "/"), url.QueryEscape(query))
		html, err := s.fetcher.Fetch(ctx, u)
		if err != nil {
			s.log.Warn("instance failed", zap.String("instance", instance), zap.Error(err))
			continue
		}
		cands, err := s.parse(html)
		if err != nil {
			s.log.Warn("could not parse results", zap.String("instance", instance), zap.Error(err))
			continue
		}
		return cands, nil
	}
	return nil, fmt.Errorf("all %d instances failed", len(s.opts.Instances))
}

func (s *TwitterScraper) parse(html string) ([]models.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var cands []models.Candidate
	doc.Find("div.timeline-item").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if s.opts.MaxResults > 0 && len(cands) >= s.opts.MaxResults {
			return false
		}
		handle := strings.TrimPrefix(strings.TrimSpace(item.Find("a.username").First().Text()), "@")
		if handle == "" {
			return true
		}
		name := strings.TrimSpace(item.Find("a.fullname").First().Text())
		if name == "" {
			name = handle
		}
		text := strings.TrimSpace(item.Find("div.tweet-content").First().Text())

		c := models.Candidate{
			Name:          name,
			Source:        models.SourceTwitter,
			Location:      s.opts.Region,
			TwitterHandle: handle,
			TwitterURL:    "https://twitter.com/" + handle,
			Bio:           scraper.Truncate(text, 500),
		}
		c.AddSignal(scraper.Truncate(text, 200))
		cands = append(cands, c)
		return true
	})
	return cands, nil
}
