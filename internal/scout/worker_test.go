package scout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/theme-scout/internal/config"
	"github.com/lueurxax/theme-scout/internal/core/domain"
	"github.com/lueurxax/theme-scout/internal/core/ports"
	"github.com/lueurxax/theme-scout/internal/core/ports/mocks"
)

type workerFixture struct {
	worker      *Worker
	queue       *mocks.ScoutQueue
	assets      *mocks.AssetRepository
	catalog     *mocks.TemplateCatalog
	cache       *mocks.CacheStore
	scorer      *mocks.ThemeScorer
	quota       *mocks.QuotaService
	suggestions *mocks.SuggestionRepository
	locker      *mocks.AssetLocker
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()

	logger := zerolog.Nop()

	cfg := &config.Config{
		WorkerConcurrency:  1,
		WorkerPollInterval: time.Millisecond,
		JobMaxAttempts:     3,
		JobBackoffBase:     5 * time.Second,
		TokenEstimate:      100,
		RelevanceThreshold: 0.25,
		TopCandidates:      20,
		MaxSuggestions:     5,
	}

	f := &workerFixture{
		queue:       mocks.NewScoutQueue(),
		assets:      mocks.NewAssetRepository(),
		catalog:     mocks.NewTemplateCatalog(),
		cache:       mocks.NewCacheStore(),
		scorer:      mocks.NewThemeScorer(),
		quota:       mocks.NewQuotaService(),
		suggestions: mocks.NewSuggestionRepository(),
		locker:      mocks.NewAssetLocker(),
	}

	f.worker = NewWorker(
		cfg,
		f.queue,
		f.assets,
		NewCorpusCache(f.cache, f.catalog, time.Hour, &logger),
		NewReranker(f.scorer, 0, &logger),
		NewQuotaEnforcer(f.quota, cfg.TokenEstimate),
		f.suggestions,
		f.locker,
		&logger,
	)

	return f
}

func (f *workerFixture) pushJob() *domain.ScoutJob {
	job := &domain.ScoutJob{
		ID:      "job-1",
		Name:    domain.ScoutJobName("asset-1"),
		AssetID: "asset-1",
		UserID:  "user-1",
	}
	f.queue.Push(job)

	return job
}

func (f *workerFixture) putAsset(existingThemes ...string) {
	themes := make([]domain.ResearchTheme, 0, len(existingThemes)+1)
	for _, name := range existingThemes {
		themes = append(themes, domain.ResearchTheme{Name: name})
	}

	themes = append(themes, domain.ResearchTheme{
		Name: "Notes",
		Cards: []domain.ResearchCard{
			{Chunks: []domain.ResearchChunk{{Text: "humanoid robot automation battery grid"}}},
		},
	})

	f.assets.Put(&domain.Asset{
		ID:          "asset-1",
		Kind:        "EQUITY",
		Name:        "Tesla",
		Description: "EV maker",
		Themes:      themes,
	})
}

func TestWorkerProcessesJobEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newWorkerFixture(t)

	f.putAsset()
	f.catalog.SetTemplates("EQUITY", testCorpus())
	f.quota.SetBalance("user-1", 100000)
	f.scorer.ScoreFn = func(_ context.Context, _, _ string, candidates []domain.CandidateTheme) ([]ports.ThemeScore, error) {
		scores := make([]ports.ThemeScore, len(candidates))
		for i := range candidates {
			scores[i] = ports.ThemeScore{Index: i + 1, Score: 0.9 - 0.1*float64(i)}
		}

		return scores, nil
	}

	f.pushJob()
	require.NoError(t, f.worker.processNext(ctx))

	events := f.queue.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "complete", events[0].Kind)
	assert.Equal(t, "job-1", events[0].JobID)

	require.NotNil(t, events[0].Result)
	assert.Equal(t, domain.ScoutStatusSuccess, events[0].Result.Status)

	created := f.suggestions.Created()
	require.NotEmpty(t, created)
	assert.Len(t, events[0].Result.SuggestionIDs, len(created))

	for _, s := range created {
		assert.Equal(t, "asset-1", s.AssetID)
		assert.Equal(t, domain.SuggestionStatusDraft, s.Status)
		assert.GreaterOrEqual(t, s.RelevanceScore, 0.25)
	}

	// Highest relevance first.
	for i := 1; i < len(created); i++ {
		assert.GreaterOrEqual(t, created[i-1].RelevanceScore, created[i].RelevanceScore)
	}

	assert.Equal(t, 1, f.quota.CheckCalls())
}

func TestWorkerQuotaExceededTouchesNothing(t *testing.T) {
	ctx := context.Background()
	f := newWorkerFixture(t)

	f.putAsset()
	f.catalog.SetTemplates("EQUITY", testCorpus())
	f.quota.SetBalance("user-1", 10)

	f.pushJob()
	require.NoError(t, f.worker.processNext(ctx))

	events := f.queue.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "fail", events[0].Kind)

	// The denial short-circuits before any expensive work.
	assert.Zero(t, f.assets.Calls())
	assert.Zero(t, f.catalog.Calls())
	assert.Zero(t, f.scorer.Calls())
	assert.Empty(t, f.suggestions.Created())
	assert.Equal(t, 10, f.quota.Balance("user-1"))
}

func TestWorkerLockContentionReleasesWithoutAttempt(t *testing.T) {
	ctx := context.Background()
	f := newWorkerFixture(t)

	f.putAsset()
	f.quota.SetBalance("user-1", 100000)
	f.locker.Lock("asset-1")

	f.pushJob()
	require.NoError(t, f.worker.processNext(ctx))

	events := f.queue.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "release", events[0].Kind)
	assert.WithinDuration(t, time.Now().Add(lockRetryDelay), events[0].RetryAt, time.Second)

	// A contended job must not debit quota or load the asset.
	assert.Zero(t, f.quota.CheckCalls())
	assert.Zero(t, f.assets.Calls())
}

func TestWorkerMissingAssetReschedules(t *testing.T) {
	ctx := context.Background()
	f := newWorkerFixture(t)

	f.quota.SetBalance("user-1", 100000)

	f.pushJob()
	require.NoError(t, f.worker.processNext(ctx))

	events := f.queue.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "reschedule", events[0].Kind)
	assert.WithinDuration(t, time.Now().Add(5*time.Second), events[0].RetryAt, time.Second)
}

func TestWorkerExhaustedAttemptsFailTerminally(t *testing.T) {
	ctx := context.Background()
	f := newWorkerFixture(t)

	f.quota.SetBalance("user-1", 100000)

	job := f.pushJob()
	job.AttemptCount = 2 // claim bumps it to the final attempt

	require.NoError(t, f.worker.processNext(ctx))

	events := f.queue.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "fail", events[0].Kind)
}

func TestWorkerNoCandidatesCompletesEmpty(t *testing.T) {
	ctx := context.Background()
	f := newWorkerFixture(t)

	f.putAsset()
	f.catalog.SetTemplates("EQUITY", nil)
	f.quota.SetBalance("user-1", 100000)

	f.pushJob()
	require.NoError(t, f.worker.processNext(ctx))

	events := f.queue.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "complete", events[0].Kind)

	require.NotNil(t, events[0].Result)
	assert.Equal(t, domain.ScoutStatusNoCandidates, events[0].Result.Status)
	assert.Empty(t, events[0].Result.SuggestionIDs)

	assert.Zero(t, f.scorer.Calls())
	assert.Empty(t, f.suggestions.Created())
}

func TestWorkerExcludesExistingThemes(t *testing.T) {
	ctx := context.Background()
	f := newWorkerFixture(t)

	// The asset already tracks Robotics (case differs from the template).
	f.putAsset("ROBOTICS")
	f.catalog.SetTemplates("EQUITY", testCorpus())
	f.quota.SetBalance("user-1", 100000)
	f.scorer.ScoreFn = func(_ context.Context, _, _ string, candidates []domain.CandidateTheme) ([]ports.ThemeScore, error) {
		scores := make([]ports.ThemeScore, len(candidates))
		for i := range candidates {
			scores[i] = ports.ThemeScore{Index: i + 1, Score: 0.9}
		}

		return scores, nil
	}

	f.pushJob()
	require.NoError(t, f.worker.processNext(ctx))

	for _, s := range f.suggestions.Created() {
		assert.NotEqual(t, "robotics", s.Name)
		assert.NotEqual(t, "Robotics", s.Name)
	}
}

func TestWorkerFallbackOnScorerError(t *testing.T) {
	ctx := context.Background()
	f := newWorkerFixture(t)

	f.putAsset()
	f.catalog.SetTemplates("EQUITY", testCorpus())
	f.quota.SetBalance("user-1", 100000)
	f.scorer.SetError(errors.New("provider down"))

	f.pushJob()
	require.NoError(t, f.worker.processNext(ctx))

	events := f.queue.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "complete", events[0].Kind)
	assert.Equal(t, domain.ScoutStatusSuccess, events[0].Result.Status)
}

func TestWorkerEmptyQueueIsQuiet(t *testing.T) {
	ctx := context.Background()
	f := newWorkerFixture(t)

	require.NoError(t, f.worker.processNext(ctx))
	assert.Empty(t, f.queue.Events())
}

func TestExcludeExisting(t *testing.T) {
	entries := testCorpus()

	assert.Equal(t, entries, excludeExisting(entries, nil))

	filtered := excludeExisting(entries, []string{"robotics"})
	require.Len(t, filtered, 1)
	assert.Equal(t, "Energy Storage", filtered[0].Title)

	assert.Empty(t, excludeExisting(entries, []string{"ROBOTICS", "energy storage"}))
}

func TestTopByTFIDF(t *testing.T) {
	candidates := []domain.CandidateTheme{
		{Title: "B", TFIDFScore: 1},
		{Title: "A", TFIDFScore: 3},
		{Title: "C", TFIDFScore: 3},
		{Title: "D", TFIDFScore: 2},
	}

	top := topByTFIDF(candidates, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "A", top[0].Title)
	assert.Equal(t, "C", top[1].Title)
	assert.Equal(t, "D", top[2].Title)

	// Input order is untouched.
	assert.Equal(t, "B", candidates[0].Title)

	assert.Len(t, topByTFIDF(candidates, 0), 4)
}

func TestSelectTop(t *testing.T) {
	ranked := []domain.RankedTheme{
		{CandidateTheme: domain.CandidateTheme{Title: "Low"}, RelevanceScore: 0.1},
		{CandidateTheme: domain.CandidateTheme{Title: "Mid"}, RelevanceScore: 0.5},
		{CandidateTheme: domain.CandidateTheme{Title: "High"}, RelevanceScore: 0.9},
		{CandidateTheme: domain.CandidateTheme{Title: "Edge"}, RelevanceScore: 0.25},
	}

	selected := selectTop(ranked, 0.25, 5)
	require.Len(t, selected, 3)
	assert.Equal(t, "High", selected[0].Title)
	assert.Equal(t, "Mid", selected[1].Title)
	assert.Equal(t, "Edge", selected[2].Title)

	capped := selectTop(ranked, 0, 2)
	require.Len(t, capped, 2)
	assert.Equal(t, "High", capped[0].Title)
	assert.Equal(t, "Mid", capped[1].Title)
}
