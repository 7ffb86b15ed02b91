package types

import (
	"fmt"

	"github.com/samber/lo"
)

// TransactionType represents the financial fact a transaction row records.
type TransactionType string

const (
	TransactionTypeSubscriptionActivated TransactionType = "subscription_activated"
	TransactionTypeSubscriptionCancelled TransactionType = "subscription_cancelled"
	TransactionTypeSubscriptionExpired   TransactionType = "subscription_expired"
	TransactionTypeSubscriptionSuspended TransactionType = "subscription_suspended"
	TransactionTypePayment               TransactionType = "payment"
	TransactionTypePaymentFailed         TransactionType = "payment_failed"
	TransactionTypeCaptureCompleted      TransactionType = "capture_completed"
	TransactionTypeRefund                TransactionType = "refund"
)

func (t TransactionType) String() string {
	return string(t)
}

func (t TransactionType) Validate() error {
	allowed := []TransactionType{
		TransactionTypeSubscriptionActivated,
		TransactionTypeSubscriptionCancelled,
		TransactionTypeSubscriptionExpired,
		TransactionTypeSubscriptionSuspended,
		TransactionTypePayment,
		TransactionTypePaymentFailed,
		TransactionTypeCaptureCompleted,
		TransactionTypeRefund,
	}
	if !lo.Contains(allowed, t) {
		return fmt.Errorf("invalid transaction type: %s", t)
	}
	return nil
}

// TransactionStatus represents the settlement state of a transaction.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusFailed    TransactionStatus = "failed"
)

func (s TransactionStatus) String() string {
	return string(s)
}

func (s TransactionStatus) Validate() error {
	allowed := []TransactionStatus{
		TransactionStatusCompleted,
		TransactionStatusPending,
		TransactionStatusFailed,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid transaction status: %s", s)
	}
	return nil
}

// TransactionFilter represents the filter for listing transactions
type TransactionFilter struct {
	*TimeRangeFilter

	TenantID        string             `form:"tenant_id"`
	MemberID        *string            `form:"member_id"`
	TransactionType *TransactionType   `form:"transaction_type"`
	Status          *TransactionStatus `form:"status"`
}
