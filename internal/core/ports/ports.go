// Package ports provides domain-centric interfaces for external dependencies.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern,
// allowing business logic to remain independent of infrastructure concerns.
package ports

import (
	"context"
	"time"

	"github.com/lueurxax/theme-scout/internal/core/domain"
)

// AssetRepository loads asset content trees for scoring.
type AssetRepository interface {
	// GetAssetWithContentTree returns the full asset snapshot including
	// themes, cards and chunks in stored order, or nil when absent.
	GetAssetWithContentTree(ctx context.Context, assetID string) (*domain.Asset, error)
}

// TemplateCatalog reads the persistent theme-template catalog.
type TemplateCatalog interface {
	ListTemplates(ctx context.Context, assetKind string) ([]domain.CorpusEntry, error)
}

// SuggestionRepository persists ranked suggestions as draft rows.
type SuggestionRepository interface {
	CreateSuggestion(ctx context.Context, s *domain.SuggestedTheme) (string, error)
}

// QuotaService gatekeeps per-user token budgets. CheckAndReserve must be
// atomic: two concurrent jobs for the same user must never both pass a check
// that only one should pass.
type QuotaService interface {
	// CheckAndReserve debits estimatedTokens if the balance covers them.
	// Returns exceeded=true (and no debit) when it does not.
	CheckAndReserve(ctx context.Context, userID string, estimatedTokens int) (exceeded bool, err error)

	// ChargeAdditional debits deltaTokens beyond the original reservation.
	ChargeAdditional(ctx context.Context, userID string, deltaTokens int) error
}

// CacheStore is a generic TTL cache used by the corpus cache. Implementations
// must be safe for concurrent use.
type CacheStore interface {
	// Get returns the cached value or errors.ErrCacheNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ScoutQueue is the durable job queue consumed by the worker pool.
type ScoutQueue interface {
	// ClaimNext atomically claims the oldest due pending job, incrementing
	// its attempt count. Returns nil when no job is due.
	ClaimNext(ctx context.Context) (*domain.ScoutJob, error)

	// Complete marks the job done and records its result.
	Complete(ctx context.Context, jobID string, result *domain.ScoutResult) error

	// Fail marks the job terminally failed with the error message.
	Fail(ctx context.Context, jobID, errMsg string) error

	// Reschedule returns the job to pending for another attempt at retryAt.
	Reschedule(ctx context.Context, jobID, errMsg string, retryAt time.Time) error

	// Release returns the job to pending without consuming the attempt,
	// used when a per-asset lock is held elsewhere.
	Release(ctx context.Context, jobID string, retryAt time.Time) error
}

// AssetLocker serializes concurrent scouting of the same asset.
type AssetLocker interface {
	TryLockAsset(ctx context.Context, assetID string) (bool, error)
	UnlockAsset(ctx context.Context, assetID string) error
}

// ThemeScorer asks the language model to score candidates 0-1 against the
// asset. Implementations return only the candidates the model included.
type ThemeScorer interface {
	ScoreThemes(ctx context.Context, assetName, assetDescription string, candidates []domain.CandidateTheme) ([]ThemeScore, error)
}

// ThemeScore is one model verdict, referencing a 1-based candidate position.
type ThemeScore struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}
