package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-founder-sourcing/internal/filter"
	"go-founder-sourcing/internal/models"
)

const (
	DateLayout = "2006-01-02 15:04:05"
	maxBioLen  = 500
	signalSep  = " | "
)

// Header is the fixed column order of every backend.
var Header = []string{
	"Date Added", "Name", "Email", "Location", "Company", "Title",
	"LinkedIn", "Twitter", "GitHub", "Website", "Source", "Bio", "Signals",
	"Overall Score", "Founder Score", "Thesis Fit", "Timing Score", "Signal Score",
	"Priority", "Reasoning",
}

var ErrInvalidCandidate = errors.New("candidate has no name")

// Identity is the part of a stored row used for duplicate checks.
type Identity struct {
	Name  string
	Email string
}

// Backend is an append-only row sink.
type Backend interface {
	Identities(ctx context.Context) ([]Identity, error)
	Append(ctx context.Context, row []string) error
}

// Table adds candidates to a backend, skipping ones already present.
type Table struct {
	mu      sync.Mutex
	backend Backend
	log     *zap.Logger
	now     func() time.Time
}

func NewTable(backend Backend, log *zap.Logger) *Table {
	return &Table{
		backend: backend,
		log:     log.With(zap.String("component", "store")),
		now:     time.Now,
	}
}

// Add appends c unless a stored row has the same name or email.
// It reports whether a row was written. The check and the append run
// under one lock so concurrent callers cannot both insert the same person.
func (t *Table) Add(ctx context.Context, c *models.Candidate) (bool, error) {
	if strings.TrimSpace(c.Name) == "" {
		return false, ErrInvalidCandidate
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	ids, err := t.backend.Identities(ctx)
	if err != nil {
		return false, fmt.Errorf("load stored identities: %w", err)
	}
	if IsDuplicate(c, ids) {
		t.log.Info("duplicate prospect", zap.String("name", c.Name))
		return false, nil
	}

	if err := t.backend.Append(ctx, Row(c, t.now())); err != nil {
		return false, fmt.Errorf("append row: %w", err)
	}
	t.log.Info("added prospect", zap.String("name", c.Name), zap.String("source", string(c.Source)))
	return true, nil
}

// IsDuplicate matches name against names and email against emails,
// case-insensitively after trimming. Empty values never match.
func IsDuplicate(c *models.Candidate, ids []Identity) bool {
	for _, id := range ids {
		if filter.SameIdentity(c.Name, id.Name) || filter.SameIdentity(c.Email, id.Email) {
			return true
		}
	}
	return false
}

// Row serialises c in Header order.
func Row(c *models.Candidate, added time.Time) []string {
	row := []string{
		added.Format(DateLayout),
		c.Name,
		c.Email,
		c.Location,
		c.Company,
		c.Title,
		c.LinkedInURL,
		c.TwitterRef(),
		c.GitHubURL,
		c.WebsiteURL(),
		string(c.Source),
		truncateRunes(c.Bio, maxBioLen),
		joinSignals(c.Signals),
	}

	if s := c.Score; s != nil {
		row = append(row,
			strconv.Itoa(s.OverallScore),
			strconv.Itoa(s.FounderScore),
			strconv.Itoa(s.ThesisFitScore),
			strconv.Itoa(s.TimingScore),
			strconv.Itoa(s.SignalStrengthScore),
			string(s.Priority),
			s.Reasoning,
		)
	} else {
		row = append(row, "", "", "", "", "", "", "")
	}
	return row
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func joinSignals(signals []string) string {
	kept := make([]string, 0, len(signals))
	for _, s := range signals {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, signalSep)
}
