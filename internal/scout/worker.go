package scout

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/theme-scout/internal/config"
	"github.com/lueurxax/theme-scout/internal/core/domain"
	apperrors "github.com/lueurxax/theme-scout/internal/core/errors"
	"github.com/lueurxax/theme-scout/internal/core/ports"
	"github.com/lueurxax/theme-scout/internal/platform/observability"
	"github.com/lueurxax/theme-scout/internal/platform/worker"
)

const (
	// lockRetryDelay spaces out re-delivery when another job holds the
	// per-asset lock. Released jobs do not consume an attempt.
	lockRetryDelay = 10 * time.Second

	logKeyJobID   = "job_id"
	logKeyAssetID = "asset_id"
	logKeyUserID  = "user_id"
)

// Worker consumes scout jobs from the durable queue with a bounded pool of
// slots and runs the pipeline end to end for each claimed job.
type Worker struct {
	cfg         *config.Config
	queue       ports.ScoutQueue
	assets      ports.AssetRepository
	corpus      *CorpusCache
	scorer      *Scorer
	reranker    *Reranker
	quota       *QuotaEnforcer
	suggestions ports.SuggestionRepository
	locker      ports.AssetLocker
	policy      domain.RetryPolicy
	logger      *zerolog.Logger
}

// NewWorker wires the pipeline components.
func NewWorker(
	cfg *config.Config,
	queue ports.ScoutQueue,
	assets ports.AssetRepository,
	corpus *CorpusCache,
	reranker *Reranker,
	quota *QuotaEnforcer,
	suggestions ports.SuggestionRepository,
	locker ports.AssetLocker,
	logger *zerolog.Logger,
) *Worker {
	return &Worker{
		cfg:         cfg,
		queue:       queue,
		assets:      assets,
		corpus:      corpus,
		scorer:      NewScorer(),
		reranker:    reranker,
		quota:       quota,
		suggestions: suggestions,
		locker:      locker,
		policy: domain.RetryPolicy{
			MaxAttempts: cfg.JobMaxAttempts,
			Backoff:     domain.BackoffExponential,
			BaseDelay:   cfg.JobBackoffBase,
		},
		logger: logger,
	}
}

// Run starts the worker slots and blocks until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	concurrency := w.cfg.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	w.logger.Info().Int("slots", concurrency).Msg("scout worker starting")

	var wg sync.WaitGroup

	for slot := 0; slot < concurrency; slot++ {
		wg.Add(1)

		name := fmt.Sprintf("scout-slot-%d", slot)

		go func() {
			defer wg.Done()
			defer worker.RecoverPanic(w.logger, name)

			_ = worker.Loop(ctx, worker.Config{
				Name:         name,
				PollInterval: w.cfg.WorkerPollInterval,
				Process:      w.processNext,
				Logger:       w.logger,
			})
		}()
	}

	wg.Wait()

	return ctx.Err()
}

// processNext claims and handles at most one job.
func (w *Worker) processNext(ctx context.Context) error {
	job, err := w.queue.ClaimNext(ctx)
	if err != nil {
		return fmt.Errorf("claim scout job: %w", err)
	}

	if job == nil {
		return nil
	}

	w.handleJob(ctx, job)

	return nil
}

func (w *Worker) handleJob(ctx context.Context, job *domain.ScoutJob) {
	logger := w.logger.With().
		Str(logKeyJobID, job.ID).
		Str(logKeyAssetID, job.AssetID).
		Str(logKeyUserID, job.UserID).
		Int("attempt", job.AttemptCount).
		Logger()

	acquired, err := w.locker.TryLockAsset(ctx, job.AssetID)
	if err != nil {
		w.failOrRetry(ctx, job, &logger, fmt.Errorf("asset lock: %w", err))
		return
	}

	if !acquired {
		logger.Debug().Msg("asset locked by another job, releasing")

		if err := w.queue.Release(ctx, job.ID, time.Now().Add(lockRetryDelay)); err != nil {
			logger.Error().Err(err).Msg("failed to release contended job")
		}

		return
	}

	defer func() {
		if err := w.locker.UnlockAsset(ctx, job.AssetID); err != nil {
			logger.Error().Err(err).Msg("failed to unlock asset")
		}
	}()

	start := time.Now()

	result, err := w.processJob(ctx, job, &logger)

	observability.ScoutJobDurationSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		w.failOrRetry(ctx, job, &logger, err)
		return
	}

	if err := w.queue.Complete(ctx, job.ID, result); err != nil {
		logger.Error().Err(err).Msg("failed to complete job")
		return
	}

	observability.ScoutJobsProcessed.WithLabelValues(result.Status).Inc()
	logger.Info().
		Str("status", result.Status).
		Int("suggestions", len(result.SuggestionIDs)).
		Dur("took", time.Since(start)).
		Msg("scout job done")
}

// processJob runs the pipeline: quota pre-check, content extraction, corpus
// scoring, reranking, filtering and persistence, then quota reconciliation.
func (w *Worker) processJob(ctx context.Context, job *domain.ScoutJob, logger *zerolog.Logger) (*domain.ScoutResult, error) {
	if err := w.quota.PreCheck(ctx, job.UserID); err != nil {
		if apperrors.Is(err, apperrors.ErrQuotaExceeded) {
			observability.QuotaDenied.Inc()
		}

		return nil, err
	}

	asset, err := w.assets.GetAssetWithContentTree(ctx, job.AssetID)
	if err != nil {
		return nil, fmt.Errorf("load asset: %w", err)
	}

	if asset == nil {
		return nil, fmt.Errorf("asset %s: %w", job.AssetID, apperrors.ErrAssetNotFound)
	}

	document := ExtractContent(asset)

	entries, err := w.corpus.Corpus(ctx, asset.Kind)
	if err != nil {
		return nil, err
	}

	entries = excludeExisting(entries, asset.ExistingThemeNames())

	candidates := w.scorer.Score(document, entries, job.FocusKeywords)
	observability.CandidatesScored.Observe(float64(len(candidates)))

	topCandidates := topByTFIDF(candidates, w.cfg.TopCandidates)

	if len(topCandidates) == 0 {
		logger.Info().Msg("no candidates for asset")

		if _, err := w.quota.Reconcile(ctx, job.UserID, nil, nil); err != nil {
			return nil, err
		}

		return &domain.ScoutResult{Status: domain.ScoutStatusNoCandidates, SuggestionIDs: []string{}}, nil
	}

	ranked := w.reranker.Rerank(ctx, asset.Name, asset.Description, topCandidates)

	selected := selectTop(ranked, w.cfg.RelevanceThreshold, w.cfg.MaxSuggestions)

	ids, err := w.persistSuggestions(ctx, job.AssetID, selected)
	if err != nil {
		return nil, err
	}

	if _, err := w.quota.Reconcile(ctx, job.UserID, topCandidates, ranked); err != nil {
		return nil, err
	}

	return &domain.ScoutResult{Status: domain.ScoutStatusSuccess, SuggestionIDs: ids}, nil
}

func (w *Worker) persistSuggestions(ctx context.Context, assetID string, selected []domain.RankedTheme) ([]string, error) {
	ids := make([]string, 0, len(selected))

	for _, theme := range selected {
		id, err := w.suggestions.CreateSuggestion(ctx, &domain.SuggestedTheme{
			AssetID:        assetID,
			Name:           theme.Title,
			Evidence:       theme.Evidence,
			RelevanceScore: theme.RelevanceScore,
			Status:         domain.SuggestionStatusDraft,
		})
		if err != nil {
			return nil, fmt.Errorf("persist suggestion %q: %w", theme.Title, err)
		}

		ids = append(ids, id)
		observability.SuggestionsCreated.Inc()
	}

	return ids, nil
}

// failOrRetry applies the retry policy: non-retryable errors and exhausted
// attempts fail terminally, everything else reschedules with backoff.
func (w *Worker) failOrRetry(ctx context.Context, job *domain.ScoutJob, logger *zerolog.Logger, jobErr error) {
	if apperrors.IsNonRetryable(jobErr) || w.policy.Exhausted(job.AttemptCount) {
		logger.Warn().Err(jobErr).Msg("scout job failed terminally")

		if err := w.queue.Fail(ctx, job.ID, jobErr.Error()); err != nil {
			logger.Error().Err(err).Msg("failed to mark job failed")
		}

		observability.ScoutJobsProcessed.WithLabelValues(domain.ScoutJobStatusFailed).Inc()

		return
	}

	retryAt := time.Now().Add(w.policy.Delay(job.AttemptCount))

	logger.Warn().Err(jobErr).Time("retry_at", retryAt).Msg("scout job rescheduled")

	if err := w.queue.Reschedule(ctx, job.ID, jobErr.Error(), retryAt); err != nil {
		logger.Error().Err(err).Msg("failed to reschedule job")
	}
}

// excludeExisting drops corpus entries whose title matches one of the
// asset's current theme names, case-insensitively.
func excludeExisting(entries []domain.CorpusEntry, existing []string) []domain.CorpusEntry {
	if len(existing) == 0 {
		return entries
	}

	taken := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		taken[strings.ToLower(name)] = struct{}{}
	}

	out := make([]domain.CorpusEntry, 0, len(entries))

	for _, entry := range entries {
		if _, ok := taken[strings.ToLower(entry.Title)]; ok {
			continue
		}

		out = append(out, entry)
	}

	return out
}

// topByTFIDF sorts candidates by score descending (title as tiebreak for
// determinism) and keeps the first limit entries.
func topByTFIDF(candidates []domain.CandidateTheme, limit int) []domain.CandidateTheme {
	sorted := make([]domain.CandidateTheme, len(candidates))
	copy(sorted, candidates)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].TFIDFScore != sorted[j].TFIDFScore {
			return sorted[i].TFIDFScore > sorted[j].TFIDFScore
		}

		return sorted[i].Title < sorted[j].Title
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	return sorted
}

// selectTop filters to the relevance threshold, re-sorts descending by
// relevance and caps the list.
func selectTop(ranked []domain.RankedTheme, threshold float64, limit int) []domain.RankedTheme {
	selected := make([]domain.RankedTheme, 0, len(ranked))

	for _, theme := range ranked {
		if theme.RelevanceScore >= threshold {
			selected = append(selected, theme)
		}
	}

	sort.Slice(selected, func(i, j int) bool {
		if selected[i].RelevanceScore != selected[j].RelevanceScore {
			return selected[i].RelevanceScore > selected[j].RelevanceScore
		}

		if selected[i].TFIDFScore != selected[j].TFIDFScore {
			return selected[i].TFIDFScore > selected[j].TFIDFScore
		}

		return selected[i].Title < selected[j].Title
	})

	if limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}

	return selected
}
