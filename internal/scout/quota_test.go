package scout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/theme-scout/internal/core/domain"
	apperrors "github.com/lueurxax/theme-scout/internal/core/errors"
	"github.com/lueurxax/theme-scout/internal/core/ports/mocks"
)

const testEstimate = 1500

func TestQuotaPreCheckReservesEstimate(t *testing.T) {
	ctx := context.Background()
	quota := mocks.NewQuotaService()
	quota.SetBalance("user-1", 2000)

	enforcer := NewQuotaEnforcer(quota, testEstimate)

	require.NoError(t, enforcer.PreCheck(ctx, "user-1"))
	assert.Equal(t, 500, quota.Balance("user-1"))
}

func TestQuotaPreCheckExceededIsNonRetryable(t *testing.T) {
	ctx := context.Background()
	quota := mocks.NewQuotaService()
	quota.SetBalance("user-1", 100)

	enforcer := NewQuotaEnforcer(quota, testEstimate)

	err := enforcer.PreCheck(ctx, "user-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrQuotaExceeded)
	assert.True(t, apperrors.IsNonRetryable(err))

	// The failed reservation must not touch the balance.
	assert.Equal(t, 100, quota.Balance("user-1"))
}

func TestQuotaPreCheckServiceError(t *testing.T) {
	ctx := context.Background()
	quota := mocks.NewQuotaService()
	quota.CheckFn = func(context.Context, string, int) (bool, error) {
		return false, errors.New("db down")
	}

	enforcer := NewQuotaEnforcer(quota, testEstimate)

	err := enforcer.PreCheck(ctx, "user-1")
	require.Error(t, err)
	assert.False(t, apperrors.IsNonRetryable(err))
}

func TestQuotaReconcileChargesOnlyOverrun(t *testing.T) {
	ctx := context.Background()
	quota := mocks.NewQuotaService()
	quota.SetBalance("user-1", 10000)

	// A tiny estimate so the serialized payloads overrun it.
	enforcer := NewQuotaEnforcer(quota, 1)

	candidates := []domain.CandidateTheme{
		{Title: "Robotics", Evidence: []string{"humanoid robot called Optimus"}, TFIDFScore: 2.5},
	}
	ranked := []domain.RankedTheme{
		{CandidateTheme: candidates[0], RelevanceScore: 0.8, RankSource: domain.RankedByModel},
	}

	actual, err := enforcer.Reconcile(ctx, "user-1", candidates, ranked)
	require.NoError(t, err)

	candPayload, err := json.Marshal(candidates)
	require.NoError(t, err)
	rankedPayload, err := json.Marshal(ranked)
	require.NoError(t, err)

	expected := (len(candPayload) + len(rankedPayload)) / 4
	assert.Equal(t, expected, actual)
	assert.Equal(t, expected-1, quota.Charged("user-1"))
	assert.Equal(t, 1, quota.ChargeCalls())
}

func TestQuotaReconcileNoChargeWithinEstimate(t *testing.T) {
	ctx := context.Background()
	quota := mocks.NewQuotaService()
	quota.SetBalance("user-1", 10000)

	enforcer := NewQuotaEnforcer(quota, testEstimate)

	actual, err := enforcer.Reconcile(ctx, "user-1", nil, nil)
	require.NoError(t, err)
	assert.Less(t, actual, testEstimate)
	assert.Zero(t, quota.ChargeCalls())
}

func TestQuotaReconcileChargeError(t *testing.T) {
	ctx := context.Background()
	quota := mocks.NewQuotaService()
	quota.ChargeFn = func(context.Context, string, int) error {
		return errors.New("db down")
	}

	enforcer := NewQuotaEnforcer(quota, 1)

	candidates := []domain.CandidateTheme{
		{Title: "Robotics", Evidence: []string{"long enough evidence to overrun the tiny estimate"}},
	}

	_, err := enforcer.Reconcile(ctx, "user-1", candidates, nil)
	require.Error(t, err)
}
