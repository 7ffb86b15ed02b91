package testutil

import (
	"context"
	"sync"
)

// InlineTxRunner stands in for the database transaction runner. fn runs
// directly against the in-memory stores; calls are counted so tests can
// assert that a group of writes was wrapped in one transaction.
type InlineTxRunner struct {
	mu    sync.Mutex
	calls int
}

func NewInlineTxRunner() *InlineTxRunner {
	return &InlineTxRunner{}
}

func (r *InlineTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return fn(ctx)
}

// Calls returns how many transactions were started.
func (r *InlineTxRunner) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *InlineTxRunner) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = 0
}
