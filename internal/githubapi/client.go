package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"

	"go-founder-sourcing/internal/models"
)

var ErrNotFound = errors.New("github user not found")

// Client wraps the subset of the GitHub REST API used for sourcing.
type Client struct {
	gh *github.Client
}

// NewClient builds an API client. An empty token makes unauthenticated
// calls (60 requests/hour). baseURL overrides the API root, mainly for tests.
func NewClient(token, baseURL string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	gh := github.NewClient(&http.Client{Timeout: timeout})
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse github base url: %w", err)
		}
		gh.BaseURL = u
	}
	return &Client{gh: gh}, nil
}

// SearchUsers returns up to limit logins matching a user search query.
func (c *Client) SearchUsers(ctx context.Context, query string, limit int) ([]string, error) {
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: limit}}
	res, _, err := c.gh.Search.Users(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("search users %q: %w", query, err)
	}

	logins := make([]string, 0, len(res.Users))
	for _, u := range res.Users {
		if login := u.GetLogin(); login != "" {
			logins = append(logins, login)
		}
		if len(logins) == limit {
			break
		}
	}
	return logins, nil
}

// Profile fetches a user's public profile.
func (c *Client) Profile(ctx context.Context, login string) (*models.GitHubProfile, error) {
	u, _, err := c.gh.Users.Get(ctx, login)
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, login)
		}
		return nil, fmt.Errorf("get user %s: %w", login, err)
	}

	return &models.GitHubProfile{
		Login:           u.GetLogin(),
		Name:            u.GetName(),
		Email:           u.GetEmail(),
		Bio:             u.GetBio(),
		Company:         u.GetCompany(),
		Location:        u.GetLocation(),
		Blog:            u.GetBlog(),
		TwitterUsername: u.GetTwitterUsername(),
		HTMLURL:         u.GetHTMLURL(),
		PublicRepos:     u.GetPublicRepos(),
		Followers:       u.GetFollowers(),
		CreatedAt:       u.GetCreatedAt().Time,
	}, nil
}

// CommitEmails collects author emails from the user's recent public push
// events, in event order, without duplicates.
func (c *Client) CommitEmails(ctx context.Context, login string) ([]string, error) {
	events, _, err := c.gh.Activity.ListEventsPerformedByUser(ctx, login, true, &github.ListOptions{PerPage: 30})
	if err != nil {
		return nil, fmt.Errorf("list events %s: %w", login, err)
	}

	seen := make(map[string]bool)
	var emails []string
	for _, ev := range events {
		if ev.GetType() != "PushEvent" {
			continue
		}
		payload, err := ev.ParsePayload()
		if err != nil {
			continue
		}
		push, ok := payload.(*github.PushEvent)
		if !ok {
			continue
		}
		for _, commit := range push.Commits {
			email := strings.TrimSpace(commit.GetAuthor().GetEmail())
			if email == "" || seen[email] {
				continue
			}
			seen[email] = true
			emails = append(emails, email)
		}
	}
	return emails, nil
}
