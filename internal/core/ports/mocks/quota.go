package mocks

import (
	"context"
	"sync"
)

// QuotaService is a thread-safe in-memory implementation of ports.QuotaService.
// CheckAndReserve performs the debit under a single lock, matching the atomic
// check-then-debit contract.
type QuotaService struct {
	mu            sync.Mutex
	balances      map[string]int
	checkCalls    int
	chargeCalls   int
	chargedTotals map[string]int

	// CheckFn allows overriding CheckAndReserve behavior.
	CheckFn func(ctx context.Context, userID string, estimatedTokens int) (bool, error)

	// ChargeFn allows overriding ChargeAdditional behavior.
	ChargeFn func(ctx context.Context, userID string, deltaTokens int) error
}

// NewQuotaService creates a new mock quota service.
func NewQuotaService() *QuotaService {
	return &QuotaService{
		balances:      make(map[string]int),
		chargedTotals: make(map[string]int),
	}
}

// SetBalance sets a user's token balance directly.
func (q *QuotaService) SetBalance(userID string, tokens int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.balances[userID] = tokens
}

// Balance returns the user's remaining balance.
func (q *QuotaService) Balance(userID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.balances[userID]
}

// CheckAndReserve debits the estimate when the balance covers it.
func (q *QuotaService) CheckAndReserve(ctx context.Context, userID string, estimatedTokens int) (bool, error) {
	if q.CheckFn != nil {
		return q.CheckFn(ctx, userID, estimatedTokens)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.checkCalls++

	if q.balances[userID] < estimatedTokens {
		return true, nil
	}

	q.balances[userID] -= estimatedTokens

	return false, nil
}

// ChargeAdditional debits deltaTokens beyond the reservation.
func (q *QuotaService) ChargeAdditional(ctx context.Context, userID string, deltaTokens int) error {
	if q.ChargeFn != nil {
		return q.ChargeFn(ctx, userID, deltaTokens)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.chargeCalls++
	q.balances[userID] -= deltaTokens
	q.chargedTotals[userID] += deltaTokens

	return nil
}

// CheckCalls returns how many times CheckAndReserve was invoked.
func (q *QuotaService) CheckCalls() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.checkCalls
}

// ChargeCalls returns how many times ChargeAdditional was invoked.
func (q *QuotaService) ChargeCalls() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.chargeCalls
}

// Charged returns the total delta tokens charged to a user.
func (q *QuotaService) Charged(userID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.chargedTotals[userID]
}
