package scout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lueurxax/theme-scout/internal/core/domain"
)

func TestExtractContent(t *testing.T) {
	tests := []struct {
		name     string
		asset    *domain.Asset
		expected string
	}{
		{
			name:     "nil asset",
			asset:    nil,
			expected: "",
		},
		{
			name:     "name only",
			asset:    &domain.Asset{Name: "Tesla"},
			expected: "Tesla",
		},
		{
			name:     "name and description",
			asset:    &domain.Asset{Name: "Tesla", Description: "EV maker"},
			expected: "Tesla\n\nEV maker",
		},
		{
			name: "full tree in stored order",
			asset: &domain.Asset{
				Name:        "Tesla",
				Description: "EV maker",
				Themes: []domain.ResearchTheme{
					{
						Name: "Batteries",
						Cards: []domain.ResearchCard{
							{Chunks: []domain.ResearchChunk{{Text: "4680 cells ramping"}, {Text: "LFP for standard range"}}},
							{Chunks: []domain.ResearchChunk{{Text: "cathode supply deals"}}},
						},
					},
					{
						Name: "Autonomy",
						Cards: []domain.ResearchCard{
							{Chunks: []domain.ResearchChunk{{Text: "FSD take rates"}}},
						},
					},
				},
			},
			expected: "Tesla\n\nEV maker\n\n4680 cells ramping\n\nLFP for standard range\n\ncathode supply deals\n\nFSD take rates",
		},
		{
			name: "empty chunks skipped structurally",
			asset: &domain.Asset{
				Name: "Tesla",
				Themes: []domain.ResearchTheme{
					{Cards: []domain.ResearchCard{{Chunks: nil}}},
				},
			},
			expected: "Tesla",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractContent(tt.asset))
		})
	}
}

func TestExtractContentDeterministic(t *testing.T) {
	asset := &domain.Asset{
		Name:        "Nvidia",
		Description: "GPU vendor",
		Themes: []domain.ResearchTheme{
			{Cards: []domain.ResearchCard{{Chunks: []domain.ResearchChunk{{Text: "data center revenue"}, {Text: "CUDA moat"}}}}},
		},
	}

	first := ExtractContent(asset)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ExtractContent(asset))
	}
}
