package domain

import "time"

// Asset is the root of an analyst-curated research profile. The scout
// pipeline reads the tree as a snapshot and never mutates it.
type Asset struct {
	ID          string
	Kind        string
	Name        string
	Description string
	Themes      []ResearchTheme
}

// ResearchTheme is a research strand under an asset, owning ordered cards.
type ResearchTheme struct {
	ID    string
	Name  string
	Cards []ResearchCard
}

// ResearchCard groups ordered note chunks under a theme.
type ResearchCard struct {
	ID     string
	Title  string
	Chunks []ResearchChunk
}

// ResearchChunk is a single block of analyst note text.
type ResearchChunk struct {
	ID   string
	Text string
}

// ExistingThemeNames returns the names of themes already attached to the
// asset, used to exclude corpus entries the analyst already tracks.
func (a *Asset) ExistingThemeNames() []string {
	names := make([]string, 0, len(a.Themes))
	for _, t := range a.Themes {
		names = append(names, t.Name)
	}

	return names
}

// Suggestion status constants. The pipeline only ever writes DRAFT;
// transitions are owned by the review side.
const (
	SuggestionStatusDraft    = "DRAFT"
	SuggestionStatusAccepted = "ACCEPTED"
	SuggestionStatusRejected = "REJECTED"
)

// SuggestedTheme is a persisted draft recommendation awaiting human review.
type SuggestedTheme struct {
	ID             string
	AssetID        string
	Name           string
	Evidence       []string
	RelevanceScore float64
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
