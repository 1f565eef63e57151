package db

import (
	"context"
	"fmt"

	apperrors "github.com/lueurxax/theme-scout/internal/core/errors"
)

// Quota usage kinds recorded in the audit trail.
const (
	QuotaUsageReserve = "reserve"
	QuotaUsageOverrun = "overrun"
)

// CheckAndReserve debits estimatedTokens from the user's balance in a single
// conditional update. The WHERE clause makes the check-then-debit atomic:
// two concurrent reservations can never both succeed against one balance.
func (db *DB) CheckAndReserve(ctx context.Context, userID string, estimatedTokens int) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE quota_ledger
		SET balance_tokens = balance_tokens - $2,
			updated_at = now()
		WHERE user_id = $1
		  AND balance_tokens >= $2
	`, toUUID(userID), estimatedTokens)
	if err != nil {
		return false, fmt.Errorf("reserve quota: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return true, nil
	}

	if err := db.recordQuotaUsage(ctx, userID, "", estimatedTokens, QuotaUsageReserve); err != nil {
		return false, err
	}

	return false, nil
}

// ChargeAdditional debits deltaTokens beyond an earlier reservation. The
// balance may go negative here: the work is already done.
func (db *DB) ChargeAdditional(ctx context.Context, userID string, deltaTokens int) error {
	if deltaTokens <= 0 {
		return nil
	}

	_, err := db.Pool.Exec(ctx, `
		UPDATE quota_ledger
		SET balance_tokens = balance_tokens - $2,
			updated_at = now()
		WHERE user_id = $1
	`, toUUID(userID), deltaTokens)
	if err != nil {
		return fmt.Errorf("charge additional quota: %w", err)
	}

	return db.recordQuotaUsage(ctx, userID, "", deltaTokens, QuotaUsageOverrun)
}

// GetQuotaBalance returns the user's remaining token balance.
func (db *DB) GetQuotaBalance(ctx context.Context, userID string) (int64, error) {
	var balance int64

	err := db.Pool.QueryRow(ctx, `
		SELECT balance_tokens
		FROM quota_ledger
		WHERE user_id = $1
	`, toUUID(userID)).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("get quota balance: %w", err)
	}

	return balance, nil
}

// GrantQuota adds tokens to a user's balance, creating the ledger row if
// needed. Used by operator tooling.
func (db *DB) GrantQuota(ctx context.Context, userID string, tokens int64) error {
	if tokens <= 0 {
		return fmt.Errorf("grant quota: %w", apperrors.ErrInvalidInput)
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO quota_ledger (user_id, balance_tokens)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			balance_tokens = quota_ledger.balance_tokens + EXCLUDED.balance_tokens,
			updated_at = now()
	`, toUUID(userID), tokens)
	if err != nil {
		return fmt.Errorf("grant quota: %w", err)
	}

	return nil
}

func (db *DB) recordQuotaUsage(ctx context.Context, userID, jobID string, tokens int, kind string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO quota_usage (user_id, job_id, tokens, kind)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4)
	`, toUUID(userID), jobID, tokens, kind)
	if err != nil {
		return fmt.Errorf("record quota usage: %w", err)
	}

	return nil
}
