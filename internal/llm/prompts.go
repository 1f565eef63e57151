package llm

import (
	"fmt"
	"strings"

	"github.com/lueurxax/theme-scout/internal/core/domain"
)

const maxEvidenceInPrompt = 2

// buildRerankPrompt renders the scoring request for one asset and its
// candidate list. Candidates are numbered from 1; the model must echo those
// numbers back.
func buildRerankPrompt(assetName, assetDescription string, candidates []domain.CandidateTheme) string {
	var sb strings.Builder

	sb.WriteString("You are ranking candidate research themes for an investment asset.\n")
	sb.WriteString(fmt.Sprintf("Asset: %s\n", assetName))

	if assetDescription != "" {
		sb.WriteString(fmt.Sprintf("Description: %s\n", assetDescription))
	}

	sb.WriteString(fmt.Sprintf("\nScore each of the %d candidate themes below from 0.0 to 1.0 for how relevant the theme is to this asset's research.\n", len(candidates)))
	sb.WriteString("Return a JSON object with a 'results' key containing an array of {\"index\": N, \"score\": S} objects, where index is the 1-based candidate number.\n")
	sb.WriteString("Include ONLY candidates scoring 0.25 or higher; omit the rest.\n\nCandidates:\n")

	for i, cand := range candidates {
		sb.WriteString(fmt.Sprintf("[%d] %s", i+1, cand.Title))

		if len(cand.Evidence) > 0 {
			n := len(cand.Evidence)
			if n > maxEvidenceInPrompt {
				n = maxEvidenceInPrompt
			}

			sb.WriteString(fmt.Sprintf(" (evidence: %s)", strings.Join(cand.Evidence[:n], " | ")))
		}

		sb.WriteString("\n")
	}

	return sb.String()
}
