package transaction

import (
	"time"

	"github.com/shopspring/decimal"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/types"
)

// Transaction is an immutable ledger entry derived from a processed webhook
// event. Rows are only ever inserted; corrections arrive as new entries
// (e.g. a refund row following a payment row).
type Transaction struct {
	ID       string `db:"id" json:"id"`
	TenantID string `db:"tenant_id" json:"tenant_id"`
	MemberID string `db:"member_id" json:"member_id,omitempty"`

	// ProviderEventID is the provider's event id for the notification that
	// produced this entry. Unique per tenant; the second insert of the
	// same event is rejected, which makes replayed deliveries no-ops.
	ProviderEventID string `db:"provider_event_id" json:"provider_event_id"`

	ProviderSubscriptionID string `db:"provider_subscription_id" json:"provider_subscription_id,omitempty"`
	ProviderPaymentID      string `db:"provider_payment_id" json:"provider_payment_id,omitempty"`

	Type   types.TransactionType   `db:"type" json:"type"`
	Status types.TransactionStatus `db:"status" json:"status"`

	Amount   decimal.Decimal `db:"amount" json:"amount"`
	Currency string          `db:"currency" json:"currency"`

	PayerEmail string         `db:"payer_email" json:"payer_email,omitempty"`
	Metadata   types.Metadata `db:"metadata" json:"metadata,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Validate validates the transaction
func (t *Transaction) Validate() error {
	if t.TenantID == "" {
		return ierr.NewError("missing tenant id").
			WithHint("Transaction must belong to a chapter").
			Mark(ierr.ErrValidation)
	}
	if t.ProviderEventID == "" {
		return ierr.NewError("missing provider event id").
			WithHint("Transaction must reference the provider event that produced it").
			Mark(ierr.ErrValidation)
	}
	if err := t.Type.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Transaction type is invalid").
			Mark(ierr.ErrValidation)
	}
	if t.Amount.IsNegative() {
		return ierr.NewError("negative amount").
			WithHint("Transaction amounts are non-negative; refunds use their own type").
			Mark(ierr.ErrValidation)
	}
	return nil
}
