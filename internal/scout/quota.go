package scout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lueurxax/theme-scout/internal/core/domain"
	apperrors "github.com/lueurxax/theme-scout/internal/core/errors"
	"github.com/lueurxax/theme-scout/internal/core/ports"
)

// tokensPerChar approximates tokens from serialized payload length.
const tokensPerChar = 4

// QuotaEnforcer gatekeeps the token ledger around one pipeline run: a fixed
// conservative reservation up front, then a one-directional reconciliation
// charging only overruns. Under-use is intentionally not refunded.
type QuotaEnforcer struct {
	quota    ports.QuotaService
	estimate int
}

// NewQuotaEnforcer creates an enforcer with the fixed per-job estimate.
func NewQuotaEnforcer(quota ports.QuotaService, estimate int) *QuotaEnforcer {
	return &QuotaEnforcer{quota: quota, estimate: estimate}
}

// Estimate returns the fixed pre-charge.
func (q *QuotaEnforcer) Estimate() int {
	return q.estimate
}

// PreCheck atomically reserves the estimate. An exceeded budget comes back
// as a non-retryable ErrQuotaExceeded: retrying cannot change the outcome
// within the same quota window.
func (q *QuotaEnforcer) PreCheck(ctx context.Context, userID string) error {
	exceeded, err := q.quota.CheckAndReserve(ctx, userID, q.estimate)
	if err != nil {
		return fmt.Errorf("quota pre-check: %w", err)
	}

	if exceeded {
		return apperrors.MarkNonRetryable(fmt.Errorf("%w: estimate %d tokens", apperrors.ErrQuotaExceeded, q.estimate))
	}

	return nil
}

// Reconcile computes actual usage from the serialized candidate and ranked
// payloads and charges only the positive difference over the reservation.
// Returns the actual token count for observability.
func (q *QuotaEnforcer) Reconcile(ctx context.Context, userID string, candidates []domain.CandidateTheme, ranked []domain.RankedTheme) (int, error) {
	actual := actualTokens(candidates, ranked)

	if actual <= q.estimate {
		return actual, nil
	}

	if err := q.quota.ChargeAdditional(ctx, userID, actual-q.estimate); err != nil {
		return actual, fmt.Errorf("quota reconcile: %w", err)
	}

	return actual, nil
}

func actualTokens(candidates []domain.CandidateTheme, ranked []domain.RankedTheme) int {
	var length int

	if payload, err := json.Marshal(candidates); err == nil {
		length += len(payload)
	}

	if payload, err := json.Marshal(ranked); err == nil {
		length += len(payload)
	}

	return length / tokensPerChar
}
