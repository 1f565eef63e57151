package llm

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lueurxax/theme-scout/internal/config"
	"github.com/lueurxax/theme-scout/internal/core/domain"
	"github.com/lueurxax/theme-scout/internal/core/ports"
)

// Client scores candidate themes against an asset via a chat-completion model.
type Client interface {
	ScoreThemes(ctx context.Context, assetName, assetDescription string, candidates []domain.CandidateTheme) ([]ports.ThemeScore, error)
}

// New returns the OpenAI-backed client, or a deterministic mock when no API
// key is configured.
func New(cfg *config.Config, logger *zerolog.Logger) Client {
	if cfg.LLMAPIKey == "" || cfg.LLMAPIKey == "mock" {
		return &mockClient{}
	}

	return NewOpenAI(cfg, logger)
}

type mockClient struct{}

// ScoreThemes returns a flat mid-range score for every candidate, keeping
// local runs deterministic without a provider.
func (c *mockClient) ScoreThemes(_ context.Context, _, _ string, candidates []domain.CandidateTheme) ([]ports.ThemeScore, error) {
	scores := make([]ports.ThemeScore, len(candidates))
	for i := range candidates {
		scores[i] = ports.ThemeScore{Index: i + 1, Score: mockRelevanceScore}
	}

	return scores, nil
}
