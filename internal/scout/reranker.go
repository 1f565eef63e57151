package scout

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/theme-scout/internal/core/domain"
	"github.com/lueurxax/theme-scout/internal/core/ports"
	"github.com/lueurxax/theme-scout/internal/platform/observability"
)

const fallbackScoreCap = 0.95

// Reranker asks the language model for final relevance scores and degrades
// to a deterministic transform of the TF-IDF score on any failure. The
// fallback is the primary resilience mechanism against provider outages:
// a reranker problem never fails the job.
type Reranker struct {
	scorer  ports.ThemeScorer
	timeout time.Duration
	logger  *zerolog.Logger
}

// NewReranker creates a reranker with the given model-call timeout.
func NewReranker(scorer ports.ThemeScorer, timeout time.Duration, logger *zerolog.Logger) *Reranker {
	return &Reranker{scorer: scorer, timeout: timeout, logger: logger}
}

// Rerank scores the candidates. On model success only the candidates the
// model included come back, tagged RankedByModel. On any failure (network,
// timeout, unparseable response) every candidate comes back with
// min(tfidfScore/10, 0.95), tagged RankedByFallback.
func (r *Reranker) Rerank(ctx context.Context, assetName, assetDescription string, candidates []domain.CandidateTheme) []domain.RankedTheme {
	if len(candidates) == 0 {
		return nil
	}

	callCtx := ctx

	if r.timeout > 0 {
		var cancel context.CancelFunc

		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	scores, err := r.scorer.ScoreThemes(callCtx, assetName, assetDescription, candidates)
	if err != nil {
		r.logger.Warn().Err(err).Int("candidates", len(candidates)).Msg("reranker failed, using tfidf fallback")
		observability.RerankerRequests.WithLabelValues(domain.RankedByFallback).Inc()

		return r.fallback(candidates)
	}

	observability.RerankerRequests.WithLabelValues(domain.RankedByModel).Inc()

	return mapScores(candidates, scores)
}

// mapScores attaches model scores to candidates by 1-based index. Invalid or
// duplicate indices are dropped; candidates the model omitted stay omitted.
func mapScores(candidates []domain.CandidateTheme, scores []ports.ThemeScore) []domain.RankedTheme {
	ranked := make([]domain.RankedTheme, 0, len(scores))
	seen := make(map[int]bool, len(scores))

	for _, score := range scores {
		idx := score.Index
		if idx < 1 || idx > len(candidates) || seen[idx] {
			continue
		}

		seen[idx] = true

		ranked = append(ranked, domain.RankedTheme{
			CandidateTheme: candidates[idx-1],
			RelevanceScore: clampScore(score.Score),
			RankSource:     domain.RankedByModel,
		})
	}

	return ranked
}

func (r *Reranker) fallback(candidates []domain.CandidateTheme) []domain.RankedTheme {
	ranked := make([]domain.RankedTheme, 0, len(candidates))

	for _, cand := range candidates {
		score := cand.TFIDFScore / 10
		if score > fallbackScoreCap {
			score = fallbackScoreCap
		}

		ranked = append(ranked, domain.RankedTheme{
			CandidateTheme: cand,
			RelevanceScore: score,
			RankSource:     domain.RankedByFallback,
		})
	}

	return ranked
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}

	if score > 1 {
		return 1
	}

	return score
}
