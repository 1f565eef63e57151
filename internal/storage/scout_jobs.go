package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lueurxax/theme-scout/internal/core/domain"
)

// EnqueueScoutJob creates a pending scout job named scout-themes:{assetID}.
func (db *DB) EnqueueScoutJob(ctx context.Context, assetID, userID string, focusKeywords []string) (string, error) {
	if focusKeywords == nil {
		focusKeywords = []string{}
	}

	var id pgtype.UUID

	err := db.Pool.QueryRow(ctx, `
		INSERT INTO scout_jobs (name, asset_id, user_id, focus_keywords)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, domain.ScoutJobName(assetID), toUUID(assetID), toUUID(userID), focusKeywords).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("enqueue scout job: %w", err)
	}

	return fromUUID(id), nil
}

// ClaimNext atomically claims the oldest due pending job and increments its
// attempt count. Returns nil when nothing is due.
func (db *DB) ClaimNext(ctx context.Context) (*domain.ScoutJob, error) {
	var (
		job       domain.ScoutJob
		id        pgtype.UUID
		assetID   pgtype.UUID
		userID    pgtype.UUID
		createdAt pgtype.Timestamptz
	)

	err := db.Pool.QueryRow(ctx, `
		WITH picked AS (
			SELECT id
			FROM scout_jobs
			WHERE status = $1
			  AND (next_retry_at IS NULL OR next_retry_at <= now())
			ORDER BY created_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		UPDATE scout_jobs sj
		SET status = $2,
			attempt_count = sj.attempt_count + 1,
			updated_at = now()
		FROM picked
		WHERE sj.id = picked.id
		RETURNING sj.id, sj.name, sj.asset_id, sj.user_id, sj.focus_keywords, sj.attempt_count, sj.created_at
	`, domain.ScoutJobStatusPending, domain.ScoutJobStatusProcessing).Scan(
		&id,
		&job.Name,
		&assetID,
		&userID,
		&job.FocusKeywords,
		&job.AttemptCount,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil //nolint:nilnil // nil,nil indicates no pending job available
		}

		return nil, fmt.Errorf("claim next scout job: %w", err)
	}

	job.ID = fromUUID(id)
	job.AssetID = fromUUID(assetID)
	job.UserID = fromUUID(userID)
	job.CreatedAt = fromTimestamptz(createdAt)

	return &job, nil
}

// Complete marks a job done and stores its result.
func (db *DB) Complete(ctx context.Context, jobID string, result *domain.ScoutResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal scout result: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		UPDATE scout_jobs
		SET status = $2,
			result = $3,
			error_message = NULL,
			updated_at = now()
		WHERE id = $1
	`, toUUID(jobID), domain.ScoutJobStatusDone, payload)
	if err != nil {
		return fmt.Errorf("complete scout job: %w", err)
	}

	return nil
}

// Fail marks a job terminally failed.
func (db *DB) Fail(ctx context.Context, jobID, errMsg string) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE scout_jobs
		SET status = $2,
			error_message = $3,
			updated_at = now()
		WHERE id = $1
	`, toUUID(jobID), domain.ScoutJobStatusFailed, errMsg)
	if err != nil {
		return fmt.Errorf("fail scout job: %w", err)
	}

	return nil
}

// Reschedule returns a job to pending for another attempt at retryAt.
func (db *DB) Reschedule(ctx context.Context, jobID, errMsg string, retryAt time.Time) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE scout_jobs
		SET status = $2,
			error_message = $3,
			next_retry_at = $4,
			updated_at = now()
		WHERE id = $1
	`, toUUID(jobID), domain.ScoutJobStatusPending, errMsg, retryAt)
	if err != nil {
		return fmt.Errorf("reschedule scout job: %w", err)
	}

	return nil
}

// Release returns a job to pending without counting the attempt. Used when
// another job holds the per-asset lock.
func (db *DB) Release(ctx context.Context, jobID string, retryAt time.Time) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE scout_jobs
		SET status = $2,
			attempt_count = GREATEST(attempt_count - 1, 0),
			next_retry_at = $3,
			updated_at = now()
		WHERE id = $1
	`, toUUID(jobID), domain.ScoutJobStatusPending, retryAt)
	if err != nil {
		return fmt.Errorf("release scout job: %w", err)
	}

	return nil
}

// RecoverStuckScoutJobs returns jobs stuck in processing longer than the
// threshold to pending. Covers worker crashes mid-job.
func (db *DB) RecoverStuckScoutJobs(ctx context.Context, stuckThreshold time.Duration) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE scout_jobs
		SET status = $1,
			updated_at = now()
		WHERE status = $2
		  AND updated_at < now() - $3::interval
	`, domain.ScoutJobStatusPending, domain.ScoutJobStatusProcessing, stuckThreshold.String())
	if err != nil {
		return 0, fmt.Errorf("recover stuck scout jobs: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ScoutQueueStat is the job count in one queue state.
type ScoutQueueStat struct {
	Status string
	Count  int64
}

// GetScoutQueueStats returns job counts grouped by status.
func (db *DB) GetScoutQueueStats(ctx context.Context) ([]ScoutQueueStat, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT status, COUNT(*)::bigint
		FROM scout_jobs
		GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("get scout queue stats: %w", err)
	}
	defer rows.Close()

	stats := []ScoutQueueStat{}

	for rows.Next() {
		var stat ScoutQueueStat

		if err := rows.Scan(&stat.Status, &stat.Count); err != nil {
			return nil, fmt.Errorf("scan scout queue stat: %w", err)
		}

		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scout queue stats: %w", err)
	}

	return stats, nil
}
