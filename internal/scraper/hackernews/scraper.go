package hackernews

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"go-founder-sourcing/internal/fetch"
	"go-founder-sourcing/internal/filter"
	"go-founder-sourcing/internal/models"
	"go-founder-sourcing/internal/scraper"
)

const DefaultBaseURL = "https://hn.algolia.com/api/v1"

type Options struct {
	Queries    []string
	MaxResults int
	Days       int
	BaseURL    string
}

type hit struct {
	Author      string `json:"author"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
	CreatedAtI  int64  `json:"created_at_i"`
}

type searchResponse struct {
	Hits []hit `json:"hits"`
}

type HackerNewsScraper struct {
	client *http.Client
	opts   Options
	log    *zap.Logger
	now    func() time.Time
}

func NewHackerNewsScraper(opts Options, log *zap.Logger) *HackerNewsScraper {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	return &HackerNewsScraper{
		client: &http.Client{Timeout: 10 * time.Second},
		opts:   opts,
		log:    log.With(zap.String("scraper", "hackernews")),
		now:    time.Now,
	}
}

func (s *HackerNewsScraper) Name() string {
	return string(models.SourceHackerNews)
}

func (s *HackerNewsScraper) Scrape(ctx context.Context) ([]models.Candidate, error) {
	var cands []models.Candidate
	failed := 0

	for _, query := range s.opts.Queries {
		if ctx.Err() != nil {
			return cands, ctx.Err()
		}
		s.log.Info("searching stories", zap.String("query", query))
		hits, err := s.search(ctx, query)
		if err != nil {
			failed++
			s.log.Error("story search failed", zap.String("query", query), zap.Error(err))
			continue
		}
		for _, h := range hits {
			if h.Author == "" {
				continue
			}
			cands = append(cands, toCandidate(h))
		}
	}

	if failed > 0 && failed == len(s.opts.Queries) {
		return nil, fmt.Errorf("all %d hacker news searches failed", failed)
	}

	unique := scraper.Dedupe(cands, func(c models.Candidate) string { return c.HNUsername })
	s.log.Info("collected", zap.Int("unique", len(unique)))
	return unique, nil
}

func (s *HackerNewsScraper) search(ctx context.Context, query string) ([]hit, error) {
	now := s.now()
	params := url.Values{}
	params.Set("query", query)
	params.Set("tags", "story")
	params.Set("numericFilters", "created_at_i>"+strconv.FormatInt(filter.Since(now, s.opts.Days), 10))
	params.Set("hitsPerPage", strconv.Itoa(s.opts.MaxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w %d from algolia", fetch.ErrStatus, resp.StatusCode)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode algolia response: %w", err)
	}

	window := time.Duration(s.opts.Days) * 24 * time.Hour
	recent := out.Hits[:0]
	for _, h := range out.Hits {
		if filter.IsRecent(time.Unix(h.CreatedAtI, 0), now, window) {
			recent = append(recent, h)
		}
	}
	return recent, nil
}

func toCandidate(h hit) models.Candidate {
	c := models.Candidate{
		Name:       h.Author,
		Source:     models.SourceHackerNews,
		Location:   "Unknown",
		HNUsername: h.Author,
		HNURL:      "https://news.ycombinator.com/user?id=" + h.Author,
		Bio:        scraper.Truncate(h.Title, 500),
		Website:    h.URL,
	}
	c.AddSignal("HN Post: " + h.Title)
	c.AddSignal("Posted on: " + time.Unix(h.CreatedAtI, 0).UTC().Format("2006-01-02"))
	if h.Points > 0 {
		c.AddSignal(fmt.Sprintf("%d points", h.Points))
	}
	if h.NumComments > 0 {
		c.AddSignal(fmt.Sprintf("%d comments", h.NumComments))
	}
	return c
}
