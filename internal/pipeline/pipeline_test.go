package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"go-founder-sourcing/internal/metrics"
	"go-founder-sourcing/internal/models"
	"go-founder-sourcing/internal/scoring"
	"go-founder-sourcing/internal/scraper"
	"go-founder-sourcing/internal/store"
)

type fakeScraper struct {
	name  string
	cands []models.Candidate
	err   error
	panic bool
}

func (f *fakeScraper) Name() string { return f.name }

func (f *fakeScraper) Scrape(context.Context) ([]models.Candidate, error) {
	if f.panic {
		panic("selector exploded")
	}
	return f.cands, f.err
}

// fakeEnricher fills an email for GitHub users and no-ops otherwise.
type fakeEnricher struct {
	calls []string
	panic string
}

func (f *fakeEnricher) Enrich(_ context.Context, c *models.Candidate) {
	f.calls = append(f.calls, c.Name)
	if c.Name == f.panic {
		panic("enrich blew up")
	}
	if c.GitHubUsername != "" && c.Email == "" {
		c.Email = c.GitHubUsername + "@acme.io"
	}
	if c.Source == models.SourceHackerNews {
		c.LinkedInURL = "https://www.linkedin.com/in/" + c.HNUsername
	}
}

// fakeRater answers by candidate name, failing for names in fail.
type fakeRater struct {
	high []string
	fail []string
}

func (f *fakeRater) Rate(_ context.Context, prompt string) (string, error) {
	for _, n := range f.fail {
		if strings.Contains(prompt, "Name: "+n) {
			return "", errors.New("rating service unavailable")
		}
	}
	priority, overall := "Medium", 61
	for _, n := range f.high {
		if strings.Contains(prompt, "Name: "+n) {
			priority, overall = "High", 88
		}
	}
	return "FOUNDER_SCORE: 80\nTHESIS_FIT_SCORE: 70\nTIMING_SCORE: 60\nSIGNAL_STRENGTH_SCORE: 50\n" +
		"OVERALL_SCORE: " + strconv.Itoa(overall) + "\nPRIORITY: " + priority + "\nREASONING: Looks promising.", nil
}

type memBackend struct {
	mu        sync.Mutex
	rows      [][]string
	appendErr error
}

func (m *memBackend) Identities(context.Context) ([]store.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]store.Identity, 0, len(m.rows))
	for _, r := range m.rows {
		ids = append(ids, store.Identity{Name: r[1], Email: r[2]})
	}
	return ids, nil
}

func (m *memBackend) Append(_ context.Context, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.rows = append(m.rows, row)
	return nil
}

type fakeNotifier struct {
	prospects []string
	summaries []models.RunStats
}

func (f *fakeNotifier) NotifyProspect(_ context.Context, c *models.Candidate) error {
	f.prospects = append(f.prospects, c.Name)
	return nil
}

func (f *fakeNotifier) NotifySummary(_ context.Context, s models.RunStats) error {
	f.summaries = append(f.summaries, s)
	return nil
}

type errStore struct{}

func (errStore) Add(context.Context, *models.Candidate) (bool, error) {
	return false, errors.New("sheet quota exceeded")
}

type fixedScorer struct{ priority models.Priority }

func (f fixedScorer) Score(context.Context, *models.Candidate) models.ScoreResult {
	return models.ScoreResult{OverallScore: 70, Priority: f.priority}
}

func sources() []scraper.Scraper {
	return []scraper.Scraper{
		&fakeScraper{name: "Twitter", err: errors.New("all nitter instances failed")},
		&fakeScraper{name: "GitHub", cands: []models.Candidate{{
			Name: "Jane Doe", Source: models.SourceGitHub, GitHubUsername: "jdoe",
			GitHubURL: "https://github.com/jdoe", Bio: "Founder building devtools",
			Signals: []string{"GitHub bio: Founder building devtools"},
		}}},
		&fakeScraper{name: "Hacker News", cands: []models.Candidate{{
			Name: "alice", Source: models.SourceHackerNews, HNUsername: "alice",
			Signals: []string{"HN Post: Show HN: Ledger for robots"},
		}}},
		&fakeScraper{name: "Product Hunt", cands: []models.Candidate{{
			Name: "Bob Smith", Source: models.SourceProductHunt, ProductName: "Widget",
		}}},
	}
}

func TestRun_EndToEnd(t *testing.T) {
	log := zaptest.NewLogger(t)
	backend := &memBackend{rows: [][]string{
		{"2024-01-01 00:00:00", " bob smith ", "", "", "", "", "", "", "", "", "Product Hunt"},
	}}
	enricher := &fakeEnricher{}
	rater := &fakeRater{high: []string{"Jane Doe"}, fail: []string{"Bob Smith"}}
	notifier := &fakeNotifier{}
	m := metrics.New()

	clock := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	p := New(sources(), enricher, scoring.NewScorer(rater, scoring.Thesis{}, log), store.NewTable(backend, log), log,
		WithNotifier(notifier),
		WithMetrics(m),
		WithClock(func() time.Time { clock = clock.Add(time.Second); return clock }),
	)

	stats, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, stats.RunID)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.New)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 3, stats.Enriched)
	assert.Equal(t, 3, stats.Scored)
	assert.Equal(t, 1, stats.HighPriority)
	assert.Equal(t, 1, stats.SourceFailures)
	assert.Equal(t, 0, stats.StoreFailures)
	assert.Equal(t, map[string]int{"Twitter": 0, "GitHub": 1, "Hacker News": 1, "Product Hunt": 1}, stats.PerSource)
	assert.Positive(t, stats.Duration)

	assert.Equal(t, []string{"Jane Doe", "alice", "Bob Smith"}, enricher.calls)

	require.Len(t, backend.rows, 3)
	assert.Equal(t, "Jane Doe", backend.rows[1][1])
	assert.Equal(t, "jdoe@acme.io", backend.rows[1][2])
	assert.Equal(t, "High", backend.rows[1][18])
	assert.Equal(t, "alice", backend.rows[2][1])
	assert.Equal(t, "", backend.rows[2][2])

	assert.Equal(t, []string{"Jane Doe"}, notifier.prospects)
	require.Len(t, notifier.summaries, 1)
	assert.Equal(t, stats.New, notifier.summaries[0].New)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "sourcer_scoring_fallbacks_total 1")
	assert.Contains(t, body, `sourcer_candidates_processed_total{outcome="duplicate"} 1`)
	assert.Contains(t, body, `sourcer_source_failures_total{source="Twitter"} 1`)
}

func TestRun_DefaultedScoreStillStored(t *testing.T) {
	log := zap.NewNop()
	backend := &memBackend{}
	rater := &fakeRater{fail: []string{"Bob Smith"}}
	only := []scraper.Scraper{&fakeScraper{name: "Product Hunt", cands: []models.Candidate{
		{Name: "Bob Smith", Source: models.SourceProductHunt},
	}}}

	stats, err := New(only, &fakeEnricher{}, scoring.NewScorer(rater, scoring.Thesis{}, log), store.NewTable(backend, log), log).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.New)
	require.Len(t, backend.rows, 1)
	row := backend.rows[0]
	assert.Equal(t, "50", row[13])
	assert.Equal(t, "Medium", row[18])
	assert.Contains(t, row[19], "error")
}

func TestRun_NoCandidatesExitsEarly(t *testing.T) {
	enricher := &fakeEnricher{}
	notifier := &fakeNotifier{}
	p := New([]scraper.Scraper{
		&fakeScraper{name: "GitHub"},
		&fakeScraper{name: "Hacker News", err: errors.New("timeout")},
	}, enricher, fixedScorer{models.PriorityLow}, errStore{}, zap.NewNop(), WithNotifier(notifier))

	stats, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 1, stats.SourceFailures)
	assert.Empty(t, enricher.calls)
	assert.Len(t, notifier.summaries, 1)
}

func TestRun_ScraperPanicIsIsolated(t *testing.T) {
	backend := &memBackend{}
	p := New([]scraper.Scraper{
		&fakeScraper{name: "Twitter", panic: true},
		&fakeScraper{name: "GitHub", cands: []models.Candidate{{Name: "Jane", Source: models.SourceGitHub}}},
	}, &fakeEnricher{}, fixedScorer{models.PriorityMedium}, store.NewTable(backend, zap.NewNop()), zap.NewNop())

	stats, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SourceFailures)
	assert.Equal(t, 1, stats.New)
	assert.Equal(t, 0, stats.PerSource["Twitter"])
}

func TestRun_CandidatePanicDoesNotAbortBatch(t *testing.T) {
	backend := &memBackend{}
	enricher := &fakeEnricher{panic: "Broken"}
	p := New([]scraper.Scraper{&fakeScraper{name: "GitHub", cands: []models.Candidate{
		{Name: "Broken", Source: models.SourceGitHub},
		{Name: "Fine", Source: models.SourceGitHub},
	}}}, enricher, fixedScorer{models.PriorityMedium}, store.NewTable(backend, zap.NewNop()), zap.NewNop())

	stats, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Enriched)
	assert.Equal(t, 1, stats.Scored)
	assert.Equal(t, 1, stats.New)
	require.Len(t, backend.rows, 1)
	assert.Equal(t, "Fine", backend.rows[0][1])
}

func TestRun_StoreFailuresCountedSeparately(t *testing.T) {
	notifier := &fakeNotifier{}
	p := New([]scraper.Scraper{&fakeScraper{name: "GitHub", cands: []models.Candidate{
		{Name: "A", Source: models.SourceGitHub},
		{Name: "B", Source: models.SourceGitHub},
	}}}, &fakeEnricher{}, fixedScorer{models.PriorityHigh}, errStore{}, zap.NewNop(), WithNotifier(notifier))

	stats, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.StoreFailures)
	assert.Equal(t, 0, stats.New)
	assert.Equal(t, 0, stats.Duplicates)
	assert.Equal(t, 0, stats.HighPriority)
	assert.Empty(t, notifier.prospects)
}

func TestRun_DuplicateHighPriorityNotCounted(t *testing.T) {
	backend := &memBackend{rows: [][]string{{"", "Jane", "jane@acme.io"}}}
	notifier := &fakeNotifier{}
	p := New([]scraper.Scraper{&fakeScraper{name: "GitHub", cands: []models.Candidate{
		{Name: "Someone Else", Email: "JANE@acme.io", Source: models.SourceGitHub},
	}}}, &fakeEnricher{}, fixedScorer{models.PriorityHigh}, store.NewTable(backend, zap.NewNop()), zap.NewNop(), WithNotifier(notifier))

	stats, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 0, stats.HighPriority)
	assert.Empty(t, notifier.prospects)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	enricher := &fakeEnricher{}
	p := New(sources(), enricher, fixedScorer{models.PriorityLow}, errStore{}, zap.NewNop())
	_, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, enricher.calls)
}
