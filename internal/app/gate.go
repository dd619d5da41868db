package app

import "golang.org/x/sync/semaphore"

// WithdrawalGate bounds the number of withdrawal requests processed
// simultaneously across all clients. Admission never blocks: a request
// arriving while the gate is full is rejected immediately so the caller can
// be told the server is busy.
type WithdrawalGate struct {
	sem *semaphore.Weighted
}

// NewWithdrawalGate creates a gate admitting at most limit concurrent
// withdrawals. A non-positive limit is coerced to 1.
func NewWithdrawalGate(limit int64) *WithdrawalGate {
	if limit <= 0 {
		limit = 1
	}
	return &WithdrawalGate{sem: semaphore.NewWeighted(limit)}
}

// TryAcquire admits one withdrawal if capacity remains. Every successful
// acquire must be paired with exactly one Release, deferred so an error
// mid-request cannot leak a permit.
func (g *WithdrawalGate) TryAcquire() bool {
	return g.sem.TryAcquire(1)
}

// Release returns one permit to the gate.
func (g *WithdrawalGate) Release() {
	g.sem.Release(1)
}
