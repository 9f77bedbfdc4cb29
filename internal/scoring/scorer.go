package scoring

import (
	"context"

	"go.uber.org/zap"

	"go-founder-sourcing/internal/ai"
	"go-founder-sourcing/internal/models"
)

// Scorer rates candidates with an LLM. It always produces a complete result.
type Scorer struct {
	client ai.Client
	thesis Thesis
	log    *zap.Logger
}

func NewScorer(client ai.Client, thesis Thesis, log *zap.Logger) *Scorer {
	return &Scorer{
		client: client,
		thesis: thesis.WithDefaults(),
		log:    log.With(zap.String("component", "scorer")),
	}
}

// Score makes exactly one rating call. Any failure yields NeutralResult.
func (s *Scorer) Score(ctx context.Context, c *models.Candidate) models.ScoreResult {
	prompt := BuildPrompt(c, s.thesis)

	text, err := s.client.Rate(ctx, prompt)
	if err != nil {
		s.log.Warn("rating failed, using neutral score", zap.String("candidate", c.Name), zap.Error(err))
		return NeutralResult("error during scoring: " + err.Error())
	}

	res, missing := ParseResponse(text)
	if len(missing) > 0 {
		s.log.Warn("incomplete rating response", zap.String("candidate", c.Name), zap.Strings("missing", missing))
	}
	s.log.Info("scored",
		zap.String("candidate", c.Name),
		zap.Int("overall", res.OverallScore),
		zap.String("priority", string(res.Priority)),
	)
	return res
}
