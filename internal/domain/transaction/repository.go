package transaction

import (
	"context"

	"github.com/suicidekings/carclub/internal/types"
)

// Repository defines the interface for transaction ledger persistence
type Repository interface {
	// Create inserts a ledger entry. Returns ErrAlreadyExists when an
	// entry for the same (tenant, provider event) pair is already
	// recorded; callers treat that as an idempotent success.
	Create(ctx context.Context, txn *Transaction) error
	Get(ctx context.Context, id string) (*Transaction, error)
	List(ctx context.Context, filter *types.TransactionFilter) ([]*Transaction, error)
	Count(ctx context.Context, filter *types.TransactionFilter) (int, error)
}
