package github

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"go-founder-sourcing/internal/models"
)

type fakeAPI struct {
	search    map[string][]string
	searchErr map[string]error
	profiles  map[string]*models.GitHubProfile
	calls     []string
}

func (f *fakeAPI) SearchUsers(_ context.Context, query string, _ int) ([]string, error) {
	if err := f.searchErr[query]; err != nil {
		return nil, err
	}
	return f.search[query], nil
}

func (f *fakeAPI) Profile(_ context.Context, login string) (*models.GitHubProfile, error) {
	f.calls = append(f.calls, login)
	p, ok := f.profiles[login]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func TestGitHubScraper_Scrape(t *testing.T) {
	api := &fakeAPI{
		search: map[string][]string{
			"q1": {"jdoe", "ghost"},
			"q2": {"jdoe", "bsmith"},
		},
		profiles: map[string]*models.GitHubProfile{
			"jdoe":   {Login: "jdoe", Name: "Jane Doe", Bio: "Founder building devtools", Company: "@acme", Blog: "jane.dev", HTMLURL: "https://github.com/jdoe"},
			"bsmith": {Login: "bsmith", Location: "Evanston, IL"},
		},
	}
	s := NewGitHubScraper(api, Options{Queries: []string{"q1", "q2"}, MaxResults: 5, Region: "Chicago, IL"}, zaptest.NewLogger(t))

	cands, err := s.Scrape(context.Background())
	require.NoError(t, err)
	require.Len(t, cands, 2)

	jane := cands[0]
	assert.Equal(t, "Jane Doe", jane.Name)
	assert.Equal(t, models.SourceGitHub, jane.Source)
	assert.Equal(t, "Chicago, IL", jane.Location)
	assert.Equal(t, "jane.dev", jane.Blog)
	assert.Equal(t, "acme", jane.Company)
	assert.Equal(t, []string{"GitHub bio: Founder building devtools", "Company: @acme", "Startup keywords in bio"}, jane.Signals)
	assert.NotNil(t, jane.GitHubProfile)

	bob := cands[1]
	assert.Equal(t, "bsmith", bob.Name)
	assert.Equal(t, "https://github.com/bsmith", bob.GitHubURL)
	assert.Equal(t, "Evanston, IL", bob.Location)
	assert.Empty(t, bob.Signals)
}

func TestGitHubScraper_AllSearchesFail(t *testing.T) {
	api := &fakeAPI{searchErr: map[string]error{"q1": errors.New("rate limited")}}
	s := NewGitHubScraper(api, Options{Queries: []string{"q1"}}, zaptest.NewLogger(t))

	_, err := s.Scrape(context.Background())
	assert.Error(t, err)
}

func TestGitHubScraper_PartialFailure(t *testing.T) {
	api := &fakeAPI{
		search:    map[string][]string{"ok": {"jdoe"}},
		searchErr: map[string]error{"bad": errors.New("boom")},
		profiles:  map[string]*models.GitHubProfile{"jdoe": {Login: "jdoe"}},
	}
	s := NewGitHubScraper(api, Options{Queries: []string{"bad", "ok"}}, zaptest.NewLogger(t))

	cands, err := s.Scrape(context.Background())
	require.NoError(t, err)
	assert.Len(t, cands, 1)
}

func TestGitHubScraper_ProfileEmailValidated(t *testing.T) {
	api := &fakeAPI{
		search: map[string][]string{"q1": {"jdoe", "bsmith"}},
		profiles: map[string]*models.GitHubProfile{
			"jdoe":   {Login: "jdoe", Email: "jdoe@example.com"},
			"bsmith": {Login: "bsmith", Email: " bob@smith.dev "},
		},
	}
	s := NewGitHubScraper(api, Options{Queries: []string{"q1"}}, zaptest.NewLogger(t))

	cands, err := s.Scrape(context.Background())
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.Empty(t, cands[0].Email)
	assert.Equal(t, "bob@smith.dev", cands[1].Email)
}
