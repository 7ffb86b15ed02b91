package testutil

import (
	"context"
	"sync"

	"github.com/suicidekings/carclub/internal/domain/transaction"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/types"
)

type InMemoryTransactionStore struct {
	mu           sync.RWMutex
	transactions map[string]*transaction.Transaction
}

func NewInMemoryTransactionStore() *InMemoryTransactionStore {
	return &InMemoryTransactionStore{
		transactions: make(map[string]*transaction.Transaction),
	}
}

func (s *InMemoryTransactionStore) Create(ctx context.Context, txn *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Mirrors the unique index on (tenant_id, provider_event_id).
	for _, existing := range s.transactions {
		if existing.TenantID == txn.TenantID && existing.ProviderEventID == txn.ProviderEventID {
			return ierr.NewError("transaction already exists").Mark(ierr.ErrAlreadyExists)
		}
	}
	s.transactions[txn.ID] = txn
	return nil
}

func (s *InMemoryTransactionStore) Get(ctx context.Context, id string) (*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if txn, exists := s.transactions[id]; exists {
		return txn, nil
	}
	return nil, ierr.NewError("transaction not found").Mark(ierr.ErrNotFound)
}

func (s *InMemoryTransactionStore) List(ctx context.Context, filter *types.TransactionFilter) ([]*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txns := make([]*transaction.Transaction, 0)
	for _, txn := range s.transactions {
		if !matchesTransactionFilter(txn, filter) {
			continue
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func (s *InMemoryTransactionStore) Count(ctx context.Context, filter *types.TransactionFilter) (int, error) {
	txns, err := s.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(txns), nil
}

func matchesTransactionFilter(txn *transaction.Transaction, filter *types.TransactionFilter) bool {
	if filter == nil {
		return true
	}
	if filter.TenantID != "" && txn.TenantID != filter.TenantID {
		return false
	}
	if filter.MemberID != nil && txn.MemberID != *filter.MemberID {
		return false
	}
	if filter.TransactionType != nil && txn.Type != *filter.TransactionType {
		return false
	}
	if filter.Status != nil && txn.Status != *filter.Status {
		return false
	}
	if filter.TimeRangeFilter != nil && !filter.TimeRangeFilter.Contains(txn.CreatedAt) {
		return false
	}
	return true
}

func (s *InMemoryTransactionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = make(map[string]*transaction.Transaction)
}
