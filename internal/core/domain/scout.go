package domain

import (
	"fmt"
	"time"
)

// ScoutJob is a unit of theme-scouting work pulled from the durable queue.
// Jobs are immutable once enqueued; the queue tracks attempt state separately.
type ScoutJob struct {
	ID            string
	Name          string // "scout-themes:{assetID}"
	AssetID       string
	UserID        string
	FocusKeywords []string
	AttemptCount  int
	CreatedAt     time.Time
}

// Scout job status constants.
const (
	ScoutJobStatusPending    = "pending"
	ScoutJobStatusProcessing = "processing"
	ScoutJobStatusDone       = "done"
	ScoutJobStatusFailed     = "failed"
)

// ScoutJobName builds the queue name for a job targeting the given asset.
func ScoutJobName(assetID string) string {
	return fmt.Sprintf("scout-themes:%s", assetID)
}

// Scout result status constants.
const (
	ScoutStatusSuccess      = "success"
	ScoutStatusNoCandidates = "no_candidates"
)

// ScoutResult is the terminal outcome of a successfully processed job.
type ScoutResult struct {
	Status        string   `json:"status"`
	SuggestionIDs []string `json:"suggestionIds"`
}

// CorpusEntry is a theme template eligible for suggestion, scoped by asset kind.
type CorpusEntry struct {
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
}

// CandidateTheme is a corpus entry scored lexically against one asset's content.
type CandidateTheme struct {
	Title      string   `json:"title"`
	Evidence   []string `json:"evidence"`
	TFIDFScore float64  `json:"tfidf_score"`
}

// Rank source constants distinguish degraded fallback runs from normal ones.
const (
	RankedByModel    = "model"
	RankedByFallback = "fallback"
)

// RankedTheme is a candidate with a final 0-1 relevance score attached,
// either by the language model or by the deterministic fallback.
type RankedTheme struct {
	CandidateTheme
	RelevanceScore float64 `json:"relevance_score"`
	RankSource     string  `json:"-"`
}
