// Package scout implements the theme scouting pipeline: content extraction,
// lexical scoring of the theme corpus, model reranking with a deterministic
// fallback, quota enforcement and suggestion persistence, driven by a
// bounded worker pool over the durable job queue.
package scout

import (
	"strings"

	"github.com/lueurxax/theme-scout/internal/core/domain"
)

const contentSeparator = "\n\n"

// ExtractContent flattens an asset's research tree into one ordered document:
// asset name, description (when present), then every chunk in theme, card,
// chunk stored order, joined with blank lines. Deterministic for a fixed tree.
func ExtractContent(asset *domain.Asset) string {
	if asset == nil {
		return ""
	}

	parts := make([]string, 0, 8)
	parts = append(parts, asset.Name)

	if asset.Description != "" {
		parts = append(parts, asset.Description)
	}

	for _, theme := range asset.Themes {
		for _, card := range theme.Cards {
			for _, chunk := range card.Chunks {
				parts = append(parts, chunk.Text)
			}
		}
	}

	return strings.Join(parts, contentSeparator)
}
