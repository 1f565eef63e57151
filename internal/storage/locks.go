package db

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// assetLockID maps an asset ID onto the pg advisory lock keyspace.
func assetLockID(assetID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("scout-asset:" + assetID))

	return int64(h.Sum64()) //nolint:gosec // intentional wraparound into the signed lock keyspace
}

// TryLockAsset attempts a session-scoped advisory lock for the asset.
// Serializes concurrent scouting jobs targeting the same asset.
func (db *DB) TryLockAsset(ctx context.Context, assetID string) (bool, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("try lock asset: %w", err)
	}

	lockID := assetLockID(assetID)

	var acquired bool

	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", lockID).Scan(&acquired); err != nil {
		conn.Release()

		return false, fmt.Errorf("try lock asset: %w", err)
	}

	if !acquired {
		conn.Release()

		return false, nil
	}

	db.assetLocks.Store(lockID, conn)

	return true, nil
}

// UnlockAsset releases the asset's advisory lock and its pinned connection.
func (db *DB) UnlockAsset(ctx context.Context, assetID string) error {
	lockID := assetLockID(assetID)

	v, ok := db.assetLocks.LoadAndDelete(lockID)
	if !ok {
		return nil
	}

	conn := v.(*pgxpool.Conn)
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", lockID); err != nil {
		return fmt.Errorf("unlock asset: %w", err)
	}

	return nil
}
