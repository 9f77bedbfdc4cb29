// Define an interface for all collectors
// Ensure consistency

package scraper

import (
	"context"
	"strings"
	"time"

	"go-founder-sourcing/internal/models"
)

// Scraper defines the interface that every source collector implements.
type Scraper interface {
	// Scrape returns normalized candidates. Per-query failures are logged
	// and skipped; an error means the whole source failed.
	Scrape(ctx context.Context) ([]models.Candidate, error)

	// Name is the source label (GitHub, Hacker News, ...)
	Name() string
}

// Dedupe keeps the first candidate for each non-empty key, preserving order.
// Candidates with an empty key are kept as-is.
func Dedupe(cands []models.Candidate, key func(models.Candidate) string) []models.Candidate {
	seen := make(map[string]bool, len(cands))
	out := make([]models.Candidate, 0, len(cands))
	for _, c := range cands {
		k := strings.ToLower(strings.TrimSpace(key(c)))
		if k != "" {
			if seen[k] {
				continue
			}
			seen[k] = true
		}
		out = append(out, c)
	}
	return out
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
