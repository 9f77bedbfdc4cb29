package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"go-founder-sourcing/internal/cache"
	"go-founder-sourcing/internal/fetch"
	"go-founder-sourcing/internal/models"
)

type fakeGitHub struct {
	profiles     map[string]*models.GitHubProfile
	commitEmails map[string][]string
	profileCalls int
	commitCalls  int
}

func (f *fakeGitHub) Profile(_ context.Context, login string) (*models.GitHubProfile, error) {
	f.profileCalls++
	if p, ok := f.profiles[login]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, errors.New("404")
}

func (f *fakeGitHub) CommitEmails(_ context.Context, login string) ([]string, error) {
	f.commitCalls++
	if e, ok := f.commitEmails[login]; ok {
		return e, nil
	}
	return nil, errors.New("timeout")
}

type fakeFetcher struct {
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	if body, ok := f.pages[url]; ok {
		return body, nil
	}
	return "", errors.New("unexpected status 404")
}

func newEnricher(t *testing.T, gh GitHubAPI, f *fakeFetcher) *Enricher {
	var fetcher fetch.Fetcher
	if f != nil {
		fetcher = f
	}
	return NewEnricher(gh, fetcher, Options{FetchPages: f != nil}, zaptest.NewLogger(t))
}

func TestEnrich_KeepsExistingEmail(t *testing.T) {
	gh := &fakeGitHub{
		profiles:     map[string]*models.GitHubProfile{"jdoe": {Login: "jdoe", Email: "other@acme.io"}},
		commitEmails: map[string][]string{"jdoe": {"commit@acme.io"}},
	}
	cands := []models.Candidate{
		{Name: "A", Email: "keep@me.dev", GitHubUsername: "jdoe"},
		{Name: "B", Email: "keep@me.dev", Signals: []string{"mail new@acme.io"}},
		{Name: "C", Email: "not-even-valid"},
	}
	e := newEnricher(t, gh, nil)
	for i := range cands {
		before := cands[i].Email
		e.Enrich(context.Background(), &cands[i])
		assert.Equal(t, before, cands[i].Email)
	}
	assert.Zero(t, gh.commitCalls)
}

func TestEnrich_EmailFallbackChain(t *testing.T) {
	t.Run("profile email", func(t *testing.T) {
		gh := &fakeGitHub{profiles: map[string]*models.GitHubProfile{"jdoe": {Login: "jdoe", Email: "jane@acme.io"}}}
		c := models.Candidate{Name: "Jane", GitHubUsername: "jdoe"}
		newEnricher(t, gh, nil).Enrich(context.Background(), &c)
		assert.Equal(t, "jane@acme.io", c.Email)
	})

	t.Run("placeholder profile email falls through to signals", func(t *testing.T) {
		gh := &fakeGitHub{profiles: map[string]*models.GitHubProfile{"jdoe": {Login: "jdoe", Email: "me@example.com"}}}
		c := models.Candidate{Name: "Jane", GitHubUsername: "jdoe", Signals: []string{"ping me: jane@acme.io"}}
		newEnricher(t, gh, nil).Enrich(context.Background(), &c)
		assert.Equal(t, "jane@acme.io", c.Email)
	})

	t.Run("commit emails skip noreply", func(t *testing.T) {
		gh := &fakeGitHub{
			profiles:     map[string]*models.GitHubProfile{"jdoe": {Login: "jdoe"}},
			commitEmails: map[string][]string{"jdoe": {"1+jdoe@users.noreply.github.com", "jane@acme.io"}},
		}
		c := models.Candidate{Name: "Jane", GitHubUsername: "jdoe"}
		newEnricher(t, gh, nil).Enrich(context.Background(), &c)
		assert.Equal(t, "jane@acme.io", c.Email)
	})

	t.Run("everything fails", func(t *testing.T) {
		gh := &fakeGitHub{}
		c := models.Candidate{Name: "Jane", GitHubUsername: "ghost"}
		newEnricher(t, gh, nil).Enrich(context.Background(), &c)
		assert.Empty(t, c.Email)
		assert.Nil(t, c.GitHubProfile)
	})
}

func TestEnrich_ProfileFetchedOnce(t *testing.T) {
	gh := &fakeGitHub{profiles: map[string]*models.GitHubProfile{
		"jdoe": {Login: "jdoe", Bio: "see linkedin.com/in/janedoe", Company: "@acme", Followers: 12},
	}}
	c := models.Candidate{Name: "Jane", GitHubUsername: "jdoe"}
	newEnricher(t, gh, nil).Enrich(context.Background(), &c)

	assert.Equal(t, 1, gh.profileCalls)
	assert.Equal(t, "https://www.linkedin.com/in/janedoe", c.LinkedInURL)
	assert.Equal(t, "acme", c.Company)
	require.NotNil(t, c.GitHubProfile)
	assert.Equal(t, 12, c.GitHubProfile.Followers)
}

func TestEnrich_UsesProfileAttachedByScraper(t *testing.T) {
	gh := &fakeGitHub{}
	c := models.Candidate{
		Name:           "Jane",
		GitHubUsername: "jdoe",
		GitHubProfile:  &models.GitHubProfile{Login: "jdoe", Email: "jane@acme.io"},
	}
	newEnricher(t, gh, nil).Enrich(context.Background(), &c)
	assert.Zero(t, gh.profileCalls)
	assert.Equal(t, "jane@acme.io", c.Email)
}

func TestEnrich_NeverOverwritesTopLevelFields(t *testing.T) {
	gh := &fakeGitHub{profiles: map[string]*models.GitHubProfile{
		"jdoe": {Login: "jdoe", Company: "@other", Location: "Berlin", Bio: "other bio"},
	}}
	c := models.Candidate{Name: "Jane", GitHubUsername: "jdoe", Company: "Acme", Location: "Chicago, IL", Bio: "mine"}
	newEnricher(t, gh, nil).Enrich(context.Background(), &c)

	assert.Equal(t, "Acme", c.Company)
	assert.Equal(t, "Chicago, IL", c.Location)
	assert.Equal(t, "mine", c.Bio)
	assert.Equal(t, "Berlin", c.GitHubProfile.Location)
}

func TestEnrich_LinkedInFromSignalsAndWebsite(t *testing.T) {
	t.Run("signals", func(t *testing.T) {
		c := models.Candidate{Name: "Jane", Signals: []string{"HN Post: x", "https://linkedin.com/in/jdoe"}}
		newEnricher(t, nil, nil).Enrich(context.Background(), &c)
		assert.Equal(t, "https://www.linkedin.com/in/jdoe", c.LinkedInURL)
	})

	t.Run("website page", func(t *testing.T) {
		f := &fakeFetcher{pages: map[string]string{
			"https://jane.dev": `<a href="https://www.linkedin.com/in/jane-d">me</a>`,
		}}
		c := models.Candidate{Name: "Jane", Blog: "jane.dev"}
		newEnricher(t, nil, f).Enrich(context.Background(), &c)
		assert.Equal(t, "https://www.linkedin.com/in/jane-d", c.LinkedInURL)
	})

	t.Run("website down is a silent no-op", func(t *testing.T) {
		f := &fakeFetcher{}
		c := models.Candidate{Name: "Jane", Website: "https://down.dev", Signals: []string{"Founder at Acme"}}
		newEnricher(t, nil, f).Enrich(context.Background(), &c)
		assert.Empty(t, c.LinkedInURL)
		assert.Equal(t, []string{"https://down.dev"}, f.calls)
		assert.Equal(t, "Acme", c.Company)
		assert.Equal(t, "Founder", c.Title)
	})

	t.Run("existing url untouched", func(t *testing.T) {
		f := &fakeFetcher{}
		c := models.Candidate{Name: "Jane", LinkedInURL: "https://www.linkedin.com/in/keep", Blog: "jane.dev"}
		newEnricher(t, nil, f).Enrich(context.Background(), &c)
		assert.Equal(t, "https://www.linkedin.com/in/keep", c.LinkedInURL)
		assert.Empty(t, f.calls)
	})
}

func TestEnrich_TwitterURL(t *testing.T) {
	c := models.Candidate{Name: "Jane", TwitterHandle: "@janedoe"}
	newEnricher(t, nil, nil).Enrich(context.Background(), &c)
	assert.Equal(t, "https://twitter.com/janedoe", c.TwitterURL)

	c = models.Candidate{Name: "Jane", TwitterHandle: "janedoe", TwitterURL: "https://x.com/janedoe"}
	newEnricher(t, nil, nil).Enrich(context.Background(), &c)
	assert.Equal(t, "https://x.com/janedoe", c.TwitterURL)
}

func TestCachedGitHub(t *testing.T) {
	ctx := context.Background()
	gh := &fakeGitHub{profiles: map[string]*models.GitHubProfile{"jdoe": {Login: "jdoe", Name: "Jane"}}}
	fc, err := cache.NewFileCache(t.TempDir(), 0, zap.NewNop())
	require.NoError(t, err)
	cached := NewCachedGitHub(gh, fc, zaptest.NewLogger(t))

	p, err := cached.Profile(ctx, "jdoe")
	require.NoError(t, err)
	assert.Equal(t, "Jane", p.Name)

	p, err = cached.Profile(ctx, "JDoe")
	require.NoError(t, err)
	assert.Equal(t, "Jane", p.Name)
	assert.Equal(t, 1, gh.profileCalls)

	_, err = cached.Profile(ctx, "ghost")
	assert.Error(t, err)
}
