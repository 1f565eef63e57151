package scout

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/lueurxax/theme-scout/internal/core/domain"
)

const (
	minTokenLength  = 3
	maxEvidence     = 3
	evidenceWindow  = 50
	focusBoost      = 1.5
	titleMatchBonus = 2.0
	minDocFrequency = 1
)

var nonWordPattern = regexp.MustCompile(`[^\w\s]`)

// Scorer ranks corpus entries against a document with TF-IDF over candidate
// keywords, plus a flat bonus for literal title mentions.
type Scorer struct{}

// NewScorer creates a TF-IDF scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score evaluates every corpus entry against the document. Output order
// follows corpus order and scores are independent of it; the caller sorts
// and truncates. Candidates with no matches come back with score zero.
// An empty document or empty corpus yields an empty result.
func (s *Scorer) Score(document string, corpus []domain.CorpusEntry, focusKeywords []string) []domain.CandidateTheme {
	if document == "" || len(corpus) == 0 {
		return nil
	}

	docLower := strings.ToLower(document)
	termFreq := termFrequencies(docLower)
	docFreq := keywordDocumentFrequencies(corpus)

	focus := lowerAll(focusKeywords)

	candidates := make([]domain.CandidateTheme, 0, len(corpus))

	for _, entry := range corpus {
		candidates = append(candidates, s.scoreEntry(entry, document, docLower, termFreq, docFreq, focus, len(corpus)))
	}

	return candidates
}

func (s *Scorer) scoreEntry(
	entry domain.CorpusEntry,
	document, docLower string,
	termFreq map[string]int,
	docFreq map[string]int,
	focus []string,
	candidateCount int,
) domain.CandidateTheme {
	var (
		score    float64
		evidence []string
	)

	for _, keyword := range entry.Keywords {
		kw := strings.ToLower(keyword)

		tf := termFreq[kw]
		if tf == 0 {
			continue
		}

		df := docFreq[kw]
		if df < minDocFrequency {
			df = minDocFrequency
		}

		idf := math.Log(float64(candidateCount) / float64(df))
		increment := float64(tf) * idf

		if matchesFocus(kw, focus) {
			increment *= focusBoost
		}

		score += increment

		if snippet, ok := contextWindow(document, docLower, kw); ok {
			evidence = append(evidence, snippet)
		}
	}

	titleLower := strings.ToLower(entry.Title)
	if titleLower != "" && strings.Contains(docLower, titleLower) {
		score += titleMatchBonus

		if snippet, ok := contextWindow(document, docLower, titleLower); ok {
			evidence = append(evidence, snippet)
		}
	}

	return domain.CandidateTheme{
		Title:      entry.Title,
		Evidence:   dedupeEvidence(evidence),
		TFIDFScore: score,
	}
}

// termFrequencies tokenizes the lowercased document: non-word characters are
// stripped, whitespace splits, and tokens shorter than three runes are
// discarded.
func termFrequencies(docLower string) map[string]int {
	stripped := nonWordPattern.ReplaceAllString(docLower, "")

	freq := make(map[string]int)

	for _, token := range strings.Fields(stripped) {
		if utf8.RuneCountInString(token) < minTokenLength {
			continue
		}

		freq[token]++
	}

	return freq
}

// keywordDocumentFrequencies counts, for every keyword in the corpus, how
// many candidates carry a keyword containing it as a substring. The substring
// semantics let "robot" match a candidate listing "robotics".
func keywordDocumentFrequencies(corpus []domain.CorpusEntry) map[string]int {
	df := make(map[string]int)

	seen := make(map[string]struct{})

	for _, entry := range corpus {
		for _, keyword := range entry.Keywords {
			kw := strings.ToLower(keyword)
			if _, ok := seen[kw]; ok {
				continue
			}

			seen[kw] = struct{}{}

			for _, other := range corpus {
				if keywordListContains(other.Keywords, kw) {
					df[kw]++
				}
			}
		}
	}

	return df
}

func keywordListContains(keywords []string, needle string) bool {
	for _, keyword := range keywords {
		if strings.Contains(strings.ToLower(keyword), needle) {
			return true
		}
	}

	return false
}

func matchesFocus(keyword string, focus []string) bool {
	for _, f := range focus {
		if f != "" && strings.Contains(keyword, f) {
			return true
		}
	}

	return false
}

func lowerAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}

	return out
}

// contextWindow returns up to evidenceWindow characters either side of the
// first occurrence of needle in the document.
func contextWindow(document, docLower, needle string) (string, bool) {
	idx := strings.Index(docLower, needle)
	if idx < 0 {
		return "", false
	}

	// Lowercasing can shift byte offsets for some scripts; fall back to the
	// lowered text when lengths diverge so the slice stays in bounds.
	source := document
	if len(document) != len(docLower) {
		source = docLower
	}

	start := idx - evidenceWindow
	if start < 0 {
		start = 0
	}

	end := idx + len(needle) + evidenceWindow
	if end > len(source) {
		end = len(source)
	}

	for start > 0 && !utf8.RuneStart(source[start]) {
		start--
	}

	for end < len(source) && !utf8.RuneStart(source[end]) {
		end++
	}

	return strings.TrimSpace(source[start:end]), true
}

// dedupeEvidence removes duplicate snippets preserving order and caps the
// list at maxEvidence entries.
func dedupeEvidence(evidence []string) []string {
	if len(evidence) == 0 {
		return []string{}
	}

	seen := make(map[string]struct{}, len(evidence))
	out := make([]string, 0, maxEvidence)

	for _, snippet := range evidence {
		if _, ok := seen[snippet]; ok {
			continue
		}

		seen[snippet] = struct{}{}
		out = append(out, snippet)

		if len(out) == maxEvidence {
			break
		}
	}

	return out
}
