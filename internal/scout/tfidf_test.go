package scout

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/theme-scout/internal/core/domain"
)

const scoreDelta = 1e-9

func testCorpus() []domain.CorpusEntry {
	return []domain.CorpusEntry{
		{Title: "Robotics", Keywords: []string{"robot", "automation", "humanoid"}},
		{Title: "Energy Storage", Keywords: []string{"battery", "grid", "storage"}},
	}
}

func TestScorerEmptyInputs(t *testing.T) {
	scorer := NewScorer()
	corpus := testCorpus()

	assert.Nil(t, scorer.Score("", corpus, nil))
	assert.Nil(t, scorer.Score("some document", nil, nil))
	assert.Nil(t, scorer.Score("some document", []domain.CorpusEntry{}, nil))
}

func TestScorerTFIDF(t *testing.T) {
	scorer := NewScorer()
	document := "Tesla builds a humanoid robot called Optimus. The robot uses automation. Battery production scales."

	candidates := scorer.Score(document, testCorpus(), nil)
	require.Len(t, candidates, 2)

	// robot: tf=2 df=1, automation: tf=1 df=1, humanoid: tf=1 df=1, idf=ln(2/1).
	assert.Equal(t, "Robotics", candidates[0].Title)
	assert.InDelta(t, 4*math.Ln2, candidates[0].TFIDFScore, scoreDelta)

	// battery: tf=1 df=1; grid and storage do not occur.
	assert.Equal(t, "Energy Storage", candidates[1].Title)
	assert.InDelta(t, math.Ln2, candidates[1].TFIDFScore, scoreDelta)
}

func TestScorerFocusBoost(t *testing.T) {
	scorer := NewScorer()
	document := "Tesla builds a humanoid robot called Optimus. The robot uses automation. Battery production scales."

	candidates := scorer.Score(document, testCorpus(), []string{"robot"})
	require.Len(t, candidates, 2)

	// The focus keyword multiplies only the matching term's contribution.
	assert.InDelta(t, (2*1.5+1+1)*math.Ln2, candidates[0].TFIDFScore, scoreDelta)
	assert.InDelta(t, math.Ln2, candidates[1].TFIDFScore, scoreDelta)
}

func TestScorerFocusMatchesKeywordSubstring(t *testing.T) {
	scorer := NewScorer()
	corpus := []domain.CorpusEntry{
		{Title: "Automation", Keywords: []string{"automation"}},
		{Title: "Shipping", Keywords: []string{"freight"}},
	}

	boosted := scorer.Score("automation everywhere", corpus, []string{"auto"})
	plain := scorer.Score("automation everywhere", corpus, nil)

	require.Len(t, boosted, 2)
	require.Len(t, plain, 2)
	assert.Positive(t, plain[0].TFIDFScore)
	assert.InDelta(t, plain[0].TFIDFScore*1.5, boosted[0].TFIDFScore, scoreDelta)
}

func TestScorerSharedKeywordZeroIDF(t *testing.T) {
	scorer := NewScorer()
	corpus := []domain.CorpusEntry{
		{Title: "A", Keywords: []string{"market"}},
		{Title: "B", Keywords: []string{"market"}},
	}

	// The keyword occurs in every candidate, so idf = ln(2/2) = 0.
	candidates := scorer.Score("the market moves", corpus, nil)
	require.Len(t, candidates, 2)
	assert.InDelta(t, 0, candidates[0].TFIDFScore, scoreDelta)
	assert.InDelta(t, 0, candidates[1].TFIDFScore, scoreDelta)
}

func TestScorerTitleBonus(t *testing.T) {
	scorer := NewScorer()
	document := "The fund is heavily invested in robotics and adjacent plays."

	candidates := scorer.Score(document, testCorpus(), nil)
	require.Len(t, candidates, 2)

	// Tokens are exact, so "robotics" never counts toward the "robot"
	// keyword; only the literal title mention contributes.
	assert.InDelta(t, titleMatchBonus, candidates[0].TFIDFScore, scoreDelta)
	require.NotEmpty(t, candidates[0].Evidence)
	assert.Contains(t, strings.ToLower(candidates[0].Evidence[0]), "robotics")
}

func TestScorerAssetScenario(t *testing.T) {
	scorer := NewScorer()
	asset := &domain.Asset{
		Name:        "Tesla",
		Description: "robotics company",
		Themes: []domain.ResearchTheme{
			{Cards: []domain.ResearchCard{
				{Chunks: []domain.ResearchChunk{{Text: "the robot assembles another robot on the line"}}},
			}},
		},
	}
	corpus := []domain.CorpusEntry{
		{Title: "Robotics", Keywords: []string{"robot", "automation"}},
		{Title: "AI", Keywords: []string{"neural", "model"}},
	}

	candidates := scorer.Score(ExtractContent(asset), corpus, nil)
	require.Len(t, candidates, 2)

	robotics := candidates[0]
	assert.Equal(t, "Robotics", robotics.Title)
	assert.Positive(t, robotics.TFIDFScore)
	require.NotEmpty(t, robotics.Evidence)
	assert.Contains(t, strings.ToLower(robotics.Evidence[0]), "robot")

	ai := candidates[1]
	assert.Equal(t, "AI", ai.Title)
	assert.Zero(t, ai.TFIDFScore)
	assert.Empty(t, ai.Evidence)
}

func TestScorerNoMatches(t *testing.T) {
	scorer := NewScorer()

	candidates := scorer.Score("completely unrelated text about cooking", testCorpus(), nil)
	require.Len(t, candidates, 2)

	for _, cand := range candidates {
		assert.Zero(t, cand.TFIDFScore)
		assert.Equal(t, []string{}, cand.Evidence)
	}
}

func TestScorerCorpusOrderIndependence(t *testing.T) {
	scorer := NewScorer()
	document := "humanoid robot automation battery grid storage robot"
	corpus := testCorpus()

	forward := scorer.Score(document, corpus, nil)
	reversed := scorer.Score(document, []domain.CorpusEntry{corpus[1], corpus[0]}, nil)

	byTitle := make(map[string]float64)
	for _, cand := range reversed {
		byTitle[cand.Title] = cand.TFIDFScore
	}

	for _, cand := range forward {
		assert.InDelta(t, byTitle[cand.Title], cand.TFIDFScore, scoreDelta)
	}
}

func TestScorerDeterministic(t *testing.T) {
	scorer := NewScorer()
	document := "humanoid robot automation battery production with robot arms"
	corpus := testCorpus()

	first := scorer.Score(document, corpus, []string{"robot"})

	for i := 0; i < 5; i++ {
		again := scorer.Score(document, corpus, []string{"robot"})
		assert.Equal(t, first, again)
	}
}

func TestScorerEvidenceCapAndDedup(t *testing.T) {
	scorer := NewScorer()
	corpus := []domain.CorpusEntry{
		{Title: "Wide", Keywords: []string{"alpha", "beta", "gamma", "delta", "alpha"}},
	}
	document := "alpha beta gamma delta epsilon alpha beta"

	candidates := scorer.Score(document, corpus, nil)
	require.Len(t, candidates, 1)

	assert.LessOrEqual(t, len(candidates[0].Evidence), maxEvidence)

	seen := make(map[string]struct{})
	for _, snippet := range candidates[0].Evidence {
		_, dup := seen[snippet]
		assert.False(t, dup, "duplicate evidence snippet %q", snippet)
		seen[snippet] = struct{}{}
	}
}

func TestContextWindow(t *testing.T) {
	long := strings.Repeat("x ", 60) + "NEEDLE" + strings.Repeat(" y", 60)

	snippet, ok := contextWindow(long, strings.ToLower(long), "needle")
	require.True(t, ok)
	assert.Contains(t, strings.ToLower(snippet), "needle")
	assert.LessOrEqual(t, len(snippet), len("needle")+2*evidenceWindow)

	_, ok = contextWindow("nothing here", "nothing here", "needle")
	assert.False(t, ok)
}

func TestTermFrequencies(t *testing.T) {
	freq := termFrequencies("the cat, the cat! a so-called cat")

	// Punctuation is stripped before splitting, so "so-called" collapses.
	assert.Equal(t, 3, freq["cat"])
	assert.Equal(t, 2, freq["the"])
	assert.Zero(t, freq["a"])
	assert.Equal(t, 1, freq["socalled"])
}
