package service

import (
	"context"

	"github.com/suicidekings/carclub/internal/api/dto"
	"github.com/suicidekings/carclub/internal/types"
)

type TransactionService interface {
	GetTransaction(ctx context.Context, id string) (*dto.TransactionResponse, error)
	ListTransactions(ctx context.Context, filter *types.TransactionFilter) (*dto.ListTransactionsResponse, error)
}

type transactionService struct {
	ServiceParams
}

func NewTransactionService(params ServiceParams) TransactionService {
	return &transactionService{ServiceParams: params}
}

func (s *transactionService) GetTransaction(ctx context.Context, id string) (*dto.TransactionResponse, error) {
	txn, err := s.TransactionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewTransactionResponse(txn), nil
}

func (s *transactionService) ListTransactions(ctx context.Context, filter *types.TransactionFilter) (*dto.ListTransactionsResponse, error) {
	if filter == nil {
		filter = &types.TransactionFilter{}
	}

	txns, err := s.TransactionRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.TransactionRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.TransactionResponse, len(txns))
	for i, txn := range txns {
		items[i] = dto.NewTransactionResponse(txn)
	}
	return &dto.ListTransactionsResponse{
		Items:      items,
		Pagination: types.NewPaginationResponse(total, len(items), 0),
	}, nil
}
