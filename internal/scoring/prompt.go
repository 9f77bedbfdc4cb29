package scoring

import (
	"fmt"
	"strings"

	"go-founder-sourcing/internal/models"
)

// Thesis describes what the fund invests in. It is embedded in every prompt.
type Thesis struct {
	FundDescription  string
	Stage            string
	Focus            string
	FounderQualities string
}

func DefaultThesis() Thesis {
	return Thesis{
		FundDescription:  "a pre-seed/seed stage VC fund focused on Chicago-area B2B SaaS and developer tools",
		Stage:            "Pre-seed to Seed ($250K-$1M checks)",
		Focus:            "B2B SaaS, developer tools, AI/ML applications, infrastructure, productivity",
		FounderQualities: "Technical founder, domain expertise, clear problem articulation, scrappy/resourceful, Chicago/Midwest connection",
	}
}

// WithDefaults fills empty fields from DefaultThesis.
func (t Thesis) WithDefaults() Thesis {
	d := DefaultThesis()
	if t.FundDescription == "" {
		t.FundDescription = d.FundDescription
	}
	if t.Stage == "" {
		t.Stage = d.Stage
	}
	if t.Focus == "" {
		t.Focus = d.Focus
	}
	if t.FounderQualities == "" {
		t.FounderQualities = d.FounderQualities
	}
	return t
}

func or(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// BuildPrompt renders the rating request for one candidate.
func BuildPrompt(c *models.Candidate, t Thesis) string {
	signals := "None"
	if len(c.Signals) > 0 {
		signals = strings.Join(c.Signals, " | ")
	}

	return fmt.Sprintf(`You are evaluating a potential investment prospect for %s.

PROSPECT DATA:
Name: %s
Location: %s
Source: %s
Bio: %s
Company: %s
GitHub: %s
Twitter: %s
LinkedIn: %s
Website: %s
Signals: %s

INVESTMENT THESIS:
- Stage: %s
- Focus: %s
- Founder qualities: %s

Please score this prospect on four dimensions (0-100 each):

1. FOUNDER QUALITY (0-100): Technical ability, building experience, domain expertise
2. THESIS FIT (0-100): How well does their company/idea fit our investment focus?
3. TIMING (0-100): Are they at the right stage? Building something now vs just tweeting?
4. SIGNAL STRENGTH (0-100): Quality of their activity/launches/community engagement

Respond in EXACTLY this format:
FOUNDER_SCORE: [0-100]
THESIS_FIT_SCORE: [0-100]
TIMING_SCORE: [0-100]
SIGNAL_STRENGTH_SCORE: [0-100]
OVERALL_SCORE: [0-100]
PRIORITY: [High/Medium/Low]
REASONING: [2-3 sentence explanation]`,
		t.FundDescription,
		or(c.Name, "Unknown"),
		or(c.Location, "Unknown"),
		or(string(c.Source), "Unknown"),
		or(c.Bio, "N/A"),
		or(c.Company, "Unknown"),
		or(c.GitHubURL, "N/A"),
		or(c.TwitterURL, "N/A"),
		or(c.LinkedInURL, "N/A"),
		or(c.WebsiteURL(), "N/A"),
		signals,
		t.Stage,
		t.Focus,
		t.FounderQualities,
	)
}
