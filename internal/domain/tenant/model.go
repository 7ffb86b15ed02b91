package tenant

import (
	"time"

	"github.com/shopspring/decimal"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/types"
)

// Tenant represents an independently operated chapter with its own payment
// credentials, pricing and member set.
type Tenant struct {
	ID     string       `db:"id" json:"id"`
	Name   string       `db:"name" json:"name"`
	City   string       `db:"city" json:"city"`
	Status types.Status `db:"status" json:"status"`

	// PaymentSettings holds the chapter's provider credentials. Nil until
	// the credentials setup step runs. Secret fields are stored encrypted
	// and never echoed in full to callers.
	PaymentSettings *PaymentSettings `json:"payment_settings,omitempty"`

	// Provider identifiers written by the products setup step.
	ProductID     string `db:"product_id" json:"product_id,omitempty"`
	MonthlyPlanID string `db:"monthly_plan_id" json:"monthly_plan_id,omitempty"`
	YearlyPlanID  string `db:"yearly_plan_id" json:"yearly_plan_id,omitempty"`

	// Membership pricing written by the pricing setup step.
	MonthlyAmount decimal.Decimal `db:"monthly_amount" json:"monthly_amount"`
	YearlyAmount  decimal.Decimal `db:"yearly_amount" json:"yearly_amount"`
	Currency      string          `db:"currency" json:"currency"`

	// LastCompletedStep is the explicit cursor for the provisioning flow.
	LastCompletedStep types.SetupStep `db:"last_completed_step" json:"last_completed_step"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PaymentSettings is the provider credential blob persisted as JSON on the
// tenant row. ClientSecret is encrypted at rest.
type PaymentSettings struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	WebhookID    string `json:"webhook_id"`
	IsProduction bool   `json:"is_production"`
}

// HasCredentials reports whether the tenant has a usable credential pair of
// its own. Callers fall back to the process-wide default pair otherwise.
func (t *Tenant) HasCredentials() bool {
	return t.PaymentSettings != nil &&
		t.PaymentSettings.ClientID != "" &&
		t.PaymentSettings.ClientSecret != ""
}

// HasProducts reports whether the products setup step has provisioned the
// provider-side product and both billing plans.
func (t *Tenant) HasProducts() bool {
	return t.ProductID != "" && t.MonthlyPlanID != "" && t.YearlyPlanID != ""
}

// HasPricing reports whether membership pricing has been configured.
func (t *Tenant) HasPricing() bool {
	return t.Currency != "" && t.MonthlyAmount.IsPositive() && t.YearlyAmount.IsPositive()
}

// WebhookID returns the configured provider webhook identifier, if any.
func (t *Tenant) WebhookID() string {
	if t.PaymentSettings == nil {
		return ""
	}
	return t.PaymentSettings.WebhookID
}

// Validate validates the tenant
func (t *Tenant) Validate() error {
	if t.Name == "" {
		return ierr.NewError("invalid tenant name").
			WithHint("Chapter name is required").
			Mark(ierr.ErrValidation)
	}
	if t.LastCompletedStep != types.SetupStepNone {
		if err := t.LastCompletedStep.Validate(); err != nil {
			return ierr.WithError(err).
				WithHint("Setup step is invalid").
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}
