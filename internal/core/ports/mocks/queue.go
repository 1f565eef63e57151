package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/lueurxax/theme-scout/internal/core/domain"
)

// QueueEvent records one state transition applied to a job.
type QueueEvent struct {
	Kind    string // "complete", "fail", "reschedule", "release"
	JobID   string
	ErrMsg  string
	RetryAt time.Time
	Result  *domain.ScoutResult
}

// ScoutQueue is a thread-safe in-memory implementation of ports.ScoutQueue.
type ScoutQueue struct {
	mu      sync.Mutex
	pending []*domain.ScoutJob
	events  []QueueEvent
}

// NewScoutQueue creates a new mock scout queue.
func NewScoutQueue() *ScoutQueue {
	return &ScoutQueue{}
}

// Push adds a job to the pending list.
func (q *ScoutQueue) Push(job *domain.ScoutJob) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = append(q.pending, job)
}

// ClaimNext pops the oldest pending job, incrementing its attempt count.
func (q *ScoutQueue) ClaimNext(_ context.Context) (*domain.ScoutJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil, nil //nolint:nilnil // nil,nil indicates no pending job available
	}

	job := q.pending[0]
	q.pending = q.pending[1:]
	job.AttemptCount++

	return job, nil
}

// Complete records a completion event.
func (q *ScoutQueue) Complete(_ context.Context, jobID string, result *domain.ScoutResult) error {
	q.record(QueueEvent{Kind: "complete", JobID: jobID, Result: result})
	return nil
}

// Fail records a terminal failure event.
func (q *ScoutQueue) Fail(_ context.Context, jobID, errMsg string) error {
	q.record(QueueEvent{Kind: "fail", JobID: jobID, ErrMsg: errMsg})
	return nil
}

// Reschedule records a retry event.
func (q *ScoutQueue) Reschedule(_ context.Context, jobID, errMsg string, retryAt time.Time) error {
	q.record(QueueEvent{Kind: "reschedule", JobID: jobID, ErrMsg: errMsg, RetryAt: retryAt})
	return nil
}

// Release records a no-attempt release event.
func (q *ScoutQueue) Release(_ context.Context, jobID string, retryAt time.Time) error {
	q.record(QueueEvent{Kind: "release", JobID: jobID, RetryAt: retryAt})
	return nil
}

func (q *ScoutQueue) record(ev QueueEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.events = append(q.events, ev)
}

// Events returns all recorded transitions in order.
func (q *ScoutQueue) Events() []QueueEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]QueueEvent, len(q.events))
	copy(out, q.events)

	return out
}

// AssetLocker is a thread-safe in-memory implementation of ports.AssetLocker.
type AssetLocker struct {
	mu     sync.Mutex
	locked map[string]bool

	// TryLockFn allows overriding TryLockAsset behavior.
	TryLockFn func(ctx context.Context, assetID string) (bool, error)
}

// NewAssetLocker creates a new mock asset locker.
func NewAssetLocker() *AssetLocker {
	return &AssetLocker{locked: make(map[string]bool)}
}

// TryLockAsset acquires the lock unless already held.
func (l *AssetLocker) TryLockAsset(ctx context.Context, assetID string) (bool, error) {
	if l.TryLockFn != nil {
		return l.TryLockFn(ctx, assetID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locked[assetID] {
		return false, nil
	}

	l.locked[assetID] = true

	return true, nil
}

// UnlockAsset releases the lock.
func (l *AssetLocker) UnlockAsset(_ context.Context, assetID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.locked, assetID)

	return nil
}

// Lock marks an asset as externally locked, for contention tests.
func (l *AssetLocker) Lock(assetID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.locked[assetID] = true
}
