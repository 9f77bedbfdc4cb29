package scoring

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"go-founder-sourcing/internal/models"
)

const (
	neutralScore        = 50
	incompleteReasoning = "Incomplete scoring response"
)

var (
	leadingInt = regexp.MustCompile(`^[\[\(\s]*(-?\d+)`)
	// labelRe finds the first known label in a line, tolerating markdown and list markers around it.
	labelRe = regexp.MustCompile(`(?i)\b(FOUNDER_SCORE|THESIS_FIT_SCORE|TIMING_SCORE|SIGNAL_STRENGTH_SCORE|OVERALL_SCORE|PRIORITY|REASONING)\**\s*:`)
)

// NeutralResult is what a candidate gets when the rating call fails.
func NeutralResult(reason string) models.ScoreResult {
	return models.ScoreResult{
		FounderScore:        neutralScore,
		ThesisFitScore:      neutralScore,
		TimingScore:         neutralScore,
		SignalStrengthScore: neutralScore,
		OverallScore:        neutralScore,
		Priority:            models.PriorityMedium,
		Reasoning:           reason,
		Defaulted:           true,
	}
}

// ParseResponse reads the labelled lines of a rating response. Missing or
// unparseable fields get neutral values; the second return lists them.
func ParseResponse(text string) (models.ScoreResult, []string) {
	var (
		res    models.ScoreResult
		scores = map[string]*int{
			"FOUNDER_SCORE":         &res.FounderScore,
			"THESIS_FIT_SCORE":      &res.ThesisFitScore,
			"TIMING_SCORE":          &res.TimingScore,
			"SIGNAL_STRENGTH_SCORE": &res.SignalStrengthScore,
			"OVERALL_SCORE":         &res.OverallScore,
		}
		found = map[string]bool{}
	)

	for _, line := range strings.Split(text, "\n") {
		m := labelRe.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		label := strings.ToUpper(line[m[2]:m[3]])
		value := strings.TrimSpace(strings.Trim(strings.TrimSpace(line[m[1]:]), "*"))

		if dst, isScore := scores[label]; isScore {
			if found[label] {
				continue
			}
			if n, ok := parseScore(value); ok {
				*dst = n
				found[label] = true
			}
			continue
		}

		switch label {
		case "PRIORITY":
			if !found[label] {
				if p, ok := parsePriority(value); ok {
					res.Priority = p
					found[label] = true
				}
			}
		case "REASONING":
			if !found[label] && value != "" {
				res.Reasoning = value
				found[label] = true
			}
		}
	}

	var missing []string
	for _, label := range []string{"FOUNDER_SCORE", "THESIS_FIT_SCORE", "TIMING_SCORE", "SIGNAL_STRENGTH_SCORE", "OVERALL_SCORE"} {
		if !found[label] {
			*scores[label] = neutralScore
			missing = append(missing, label)
		}
	}
	if !found["PRIORITY"] {
		res.Priority = models.PriorityMedium
		missing = append(missing, "PRIORITY")
	}
	if !found["REASONING"] {
		res.Reasoning = incompleteReasoning
		missing = append(missing, "REASONING")
	}
	return res, missing
}

// parseScore takes the leading integer ("85", "[85]", "85/100") and clamps it to 0-100.
func parseScore(v string) (int, bool) {
	m := leadingInt.FindStringSubmatch(v)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	if n < 0 {
		n = 0
	}
	if n > 100 {
		n = 100
	}
	return n, true
}

func parsePriority(v string) (models.Priority, bool) {
	v = strings.Trim(strings.TrimSpace(v), "[]().*")
	if v == "" {
		return "", false
	}
	word := strings.Fields(v)[0]
	switch p := models.Priority(cases.Title(language.English).String(strings.ToLower(word))); p {
	case models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
		return p, true
	}
	return "", false
}
