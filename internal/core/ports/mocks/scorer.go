package mocks

import (
	"context"
	"sync"

	"github.com/lueurxax/theme-scout/internal/core/domain"
	"github.com/lueurxax/theme-scout/internal/core/ports"
)

// ThemeScorer is a thread-safe in-memory implementation of ports.ThemeScorer.
type ThemeScorer struct {
	mu     sync.Mutex
	scores []ports.ThemeScore
	err    error
	calls  int

	// ScoreFn allows overriding ScoreThemes behavior.
	ScoreFn func(ctx context.Context, assetName, assetDescription string, candidates []domain.CandidateTheme) ([]ports.ThemeScore, error)
}

// NewThemeScorer creates a new mock theme scorer.
func NewThemeScorer() *ThemeScorer {
	return &ThemeScorer{}
}

// SetScores sets the scores returned on success.
func (s *ThemeScorer) SetScores(scores []ports.ThemeScore) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scores = scores
}

// SetError makes ScoreThemes fail with err.
func (s *ThemeScorer) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = err
}

// ScoreThemes returns the configured scores or error.
func (s *ThemeScorer) ScoreThemes(ctx context.Context, assetName, assetDescription string, candidates []domain.CandidateTheme) ([]ports.ThemeScore, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.ScoreFn != nil {
		return s.ScoreFn(ctx, assetName, assetDescription, candidates)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	return s.scores, nil
}

// Calls returns how many times ScoreThemes was invoked.
func (s *ThemeScorer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}
