package models

import (
	"time"
)

// Source identifies which public platform a candidate was discovered on.
type Source string

const (
	SourceGitHub      Source = "GitHub"
	SourceHackerNews  Source = "Hacker News"
	SourceProductHunt Source = "Product Hunt"
	SourceTwitter     Source = "Twitter"
)

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// GitHubProfile is the public code-host profile attached during enrichment.
type GitHubProfile struct {
	Login           string    `json:"login"`
	Name            string    `json:"name,omitempty"`
	Email           string    `json:"email,omitempty"`
	Bio             string    `json:"bio,omitempty"`
	Company         string    `json:"company,omitempty"`
	Location        string    `json:"location,omitempty"`
	Blog            string    `json:"blog,omitempty"`
	TwitterUsername string    `json:"twitter_username,omitempty"`
	HTMLURL         string    `json:"html_url,omitempty"`
	PublicRepos     int       `json:"public_repos"`
	Followers       int       `json:"followers"`
	CreatedAt       time.Time `json:"created_at"`
}

// ScoreResult is the rating of one candidate against the investment thesis.
type ScoreResult struct {
	FounderScore        int      `json:"founder_score"`
	ThesisFitScore      int      `json:"thesis_fit_score"`
	TimingScore         int      `json:"timing_score"`
	SignalStrengthScore int      `json:"signal_strength_score"`
	OverallScore        int      `json:"overall_score"`
	Priority            Priority `json:"priority"`
	Reasoning           string   `json:"reasoning"`

	// Defaulted is set when the rating call failed and every field holds the neutral default.
	Defaulted bool `json:"-"`
}

// Candidate is a prospective founder flowing through the pipeline.
// Empty strings mean "absent"; Name and Source are always set by a scraper.
type Candidate struct {
	Name   string `json:"name"`
	Source Source `json:"source"`

	Email       string `json:"email,omitempty"`
	Location    string `json:"location,omitempty"`
	Company     string `json:"company,omitempty"`
	Title       string `json:"title,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`

	TwitterHandle  string `json:"twitter_handle,omitempty"`
	TwitterURL     string `json:"twitter_url,omitempty"`
	GitHubUsername string `json:"github_username,omitempty"`
	GitHubURL      string `json:"github_url,omitempty"`
	HNUsername     string `json:"hn_username,omitempty"`
	HNURL          string `json:"hn_url,omitempty"`
	Blog           string `json:"blog,omitempty"`
	Website        string `json:"website,omitempty"`

	ProductName string `json:"product_name,omitempty"`
	ProductURL  string `json:"product_url,omitempty"`

	Bio     string   `json:"bio,omitempty"`
	Signals []string `json:"signals"`

	GitHubProfile *GitHubProfile `json:"github_profile,omitempty"`
	Score         *ScoreResult   `json:"score,omitempty"`
}

// AddSignal appends a non-empty evidence snippet, keeping discovery order.
func (c *Candidate) AddSignal(s string) {
	if s == "" {
		return
	}
	c.Signals = append(c.Signals, s)
}

// WebsiteURL prefers the declared blog over a product/story website.
func (c *Candidate) WebsiteURL() string {
	if c.Blog != "" {
		return c.Blog
	}
	return c.Website
}

// TwitterRef prefers the profile URL over the bare handle.
func (c *Candidate) TwitterRef() string {
	if c.TwitterURL != "" {
		return c.TwitterURL
	}
	return c.TwitterHandle
}

func (c *Candidate) IsHighPriority() bool {
	return c.Score != nil && c.Score.Priority == PriorityHigh
}
