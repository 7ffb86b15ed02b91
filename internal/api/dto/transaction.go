package dto

import (
	"github.com/suicidekings/carclub/internal/domain/transaction"
	"github.com/suicidekings/carclub/internal/types"
)

type TransactionResponse struct {
	*transaction.Transaction
}

// ListTransactionsResponse represents the response for listing transactions
type ListTransactionsResponse = types.ListResponse[*TransactionResponse]

func NewTransactionResponse(t *transaction.Transaction) *TransactionResponse {
	return &TransactionResponse{Transaction: t}
}
