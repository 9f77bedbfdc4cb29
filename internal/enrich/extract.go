package enrich

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	emailRegex      = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	emailShapeRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	linkedInRegex   = regexp.MustCompile(`(?i)linkedin\.com/in/([a-zA-Z0-9_-]+)`)

	roleRegex = regexp.MustCompile(`(?i)\b((?:(?:co-?|senior|staff|principal|lead|chief|founding|technical|technology|operating|executive|software|product|engineering|managing|general|vp|head\s+of)\s*)*` +
		`(?:founder|cofounder|ceo|cto|coo|cpo|cfo|president|officer|engineer|developer|director|manager|partner|owner|designer|scientist|architect))` +
		`\s+(?:at|@)\s*([\w&.'-]+(?:\s+[\w&.'-]+){0,3})`)
)

var placeholderDomains = map[string]bool{
	"example.com":     true,
	"test.com":        true,
	"domain.com":      true,
	"email.com":       true,
	"mail.com":        true,
	"placeholder.com": true,
}

// companyStopwords end a company name captured from free text.
var companyStopwords = map[string]bool{
	"and": true, "in": true, "the": true, "for": true, "with": true, "to": true,
	"of": true, "on": true, "from": true, "where": true, "who": true, "since": true,
	"but": true, "while": true, "building": true, "|": true, "-": true,
}

// ValidEmail rejects placeholder domains and anything not shaped like local@domain.tld.
func ValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	if placeholderDomains[strings.ToLower(email[at+1:])] {
		return false
	}
	return emailShapeRegex.MatchString(email)
}

// FindEmail returns the first valid address found in texts, in order.
func FindEmail(texts ...string) string {
	for _, t := range texts {
		for _, m := range emailRegex.FindAllString(t, -1) {
			if ValidEmail(m) {
				return m
			}
		}
	}
	return ""
}

// FindLinkedIn returns the canonical profile URL for the first
// linkedin.com/in/<slug> reference found in texts.
func FindLinkedIn(texts ...string) string {
	for _, t := range texts {
		if m := linkedInRegex.FindStringSubmatch(t); m != nil {
			return "https://www.linkedin.com/in/" + m[1]
		}
	}
	return ""
}

// FindRole scans texts for "<title> at <Company>" and returns the first hit.
func FindRole(texts ...string) (title, company string) {
	for _, t := range texts {
		m := roleRegex.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		company = trimCompany(m[2])
		if company == "" {
			continue
		}
		return strings.TrimSpace(m[1]), company
	}
	return "", ""
}

// CleanCompany strips the leading @ GitHub uses for organisation mentions.
func CleanCompany(company string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(company), "@"))
}

func trimCompany(raw string) string {
	var kept []string
	for _, w := range strings.Fields(raw) {
		if companyStopwords[strings.ToLower(w)] {
			break
		}
		trimmed := strings.TrimRight(w, ".,;:!?)")
		if trimmed != "" {
			kept = append(kept, trimmed)
		}
		if trimmed != w {
			break
		}
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

// pageURL turns a declared link into something fetchable, or "".
func pageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return u.String()
}
