package producthunt

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"go-founder-sourcing/internal/fetch"
	"go-founder-sourcing/internal/models"
	"go-founder-sourcing/internal/scraper"
)

const DefaultFeedURL = "https://www.producthunt.com/feed"

var makerRegex = regexp.MustCompile(`\bby\s+([A-Z][A-Za-z'-]*(?:\s+[A-Z][A-Za-z'-]*)*)`)

type Options struct {
	FeedURL string
	Limit   int
}

type ProductHuntScraper struct {
	client *http.Client
	parser *gofeed.Parser
	opts   Options
	log    *zap.Logger
}

func NewProductHuntScraper(opts Options, log *zap.Logger) *ProductHuntScraper {
	if opts.FeedURL == "" {
		opts.FeedURL = DefaultFeedURL
	}
	return &ProductHuntScraper{
		client: &http.Client{Timeout: 15 * time.Second},
		parser: gofeed.NewParser(),
		opts:   opts,
		log:    log.With(zap.String("scraper", "producthunt")),
	}
}

func (s *ProductHuntScraper) Name() string {
	return string(models.SourceProductHunt)
}

func (s *ProductHuntScraper) Scrape(ctx context.Context) ([]models.Candidate, error) {
	s.log.Info("fetching launch feed", zap.String("url", s.opts.FeedURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.FeedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", fetch.DefaultUserAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w %d from feed", fetch.ErrStatus, resp.StatusCode)
	}

	feed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := feed.Items
	if s.opts.Limit > 0 && len(items) > s.opts.Limit {
		items = items[:s.opts.Limit]
	}

	cands := make([]models.Candidate, 0, len(items))
	for _, it := range items {
		cands = append(cands, toCandidate(it))
	}

	unique := scraper.Dedupe(cands, func(c models.Candidate) string { return c.ProductURL })
	s.log.Info("collected", zap.Int("unique", len(unique)))
	return unique, nil
}

func toCandidate(it *gofeed.Item) models.Candidate {
	title := strings.TrimSpace(it.Title)
	link := strings.TrimSpace(it.Link)
	desc := it.Description
	if desc == "" {
		desc = it.Content
	}
	text := htmlText(desc)

	c := models.Candidate{
		Name:        makerName(it, text),
		Source:      models.SourceProductHunt,
		Location:    "Unknown",
		ProductName: title,
		ProductURL:  link,
		Bio:         scraper.Truncate(text, 500),
	}
	c.AddSignal("Launched: " + title)
	c.AddSignal("Product Hunt: " + link)
	return c
}

func makerName(it *gofeed.Item, text string) string {
	if it.Author != nil && strings.TrimSpace(it.Author.Name) != "" {
		return strings.TrimSpace(it.Author.Name)
	}
	for _, a := range it.Authors {
		if a != nil && strings.TrimSpace(a.Name) != "" {
			return strings.TrimSpace(a.Name)
		}
	}
	if m := makerRegex.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return "Unknown"
}

// htmlText flattens an HTML fragment to its visible text.
func htmlText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
