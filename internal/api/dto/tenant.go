package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/suicidekings/carclub/internal/domain/tenant"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/types"
	"github.com/suicidekings/carclub/internal/validator"
)

type CreateTenantRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	City string `json:"city" validate:"omitempty,max=100"`
}

type UpdateTenantRequest struct {
	Name *string `json:"name" validate:"omitempty,max=255"`
	City *string `json:"city" validate:"omitempty,max=100"`
}

// UpdatePaymentSettingsRequest carries a chapter's provider credential pair.
// The secret is write-only; responses echo only a masked client id.
type UpdatePaymentSettingsRequest struct {
	ClientID     string `json:"client_id" validate:"required"`
	ClientSecret string `json:"client_secret" validate:"required"`
	WebhookID    string `json:"webhook_id"`
	IsProduction bool   `json:"is_production"`
}

type UpdatePricingRequest struct {
	MonthlyAmount decimal.Decimal `json:"monthly_amount"`
	YearlyAmount  decimal.Decimal `json:"yearly_amount"`
	Currency      string          `json:"currency" validate:"required,len=3"`
}

type TenantResponse struct {
	ID                string                   `json:"id"`
	Name              string                   `json:"name"`
	City              string                   `json:"city,omitempty"`
	Status            types.Status             `json:"status"`
	PaymentSettings   *PaymentSettingsResponse `json:"payment_settings,omitempty"`
	ProductID         string                   `json:"product_id,omitempty"`
	MonthlyPlanID     string                   `json:"monthly_plan_id,omitempty"`
	YearlyPlanID      string                   `json:"yearly_plan_id,omitempty"`
	MonthlyAmount     decimal.Decimal          `json:"monthly_amount"`
	YearlyAmount      decimal.Decimal          `json:"yearly_amount"`
	Currency          string                   `json:"currency,omitempty"`
	LastCompletedStep types.SetupStep          `json:"last_completed_step"`
	CreatedAt         string                   `json:"created_at"`
	UpdatedAt         string                   `json:"updated_at"`
}

// PaymentSettingsResponse is the read view of a chapter's credentials.
// The secret never appears; the client id is masked to its last four
// characters.
type PaymentSettingsResponse struct {
	ClientID     string `json:"client_id"`
	WebhookID    string `json:"webhook_id,omitempty"`
	IsProduction bool   `json:"is_production"`
}

func (r *CreateTenantRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *UpdateTenantRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *UpdatePaymentSettingsRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *UpdatePricingRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if !r.MonthlyAmount.IsPositive() || !r.YearlyAmount.IsPositive() {
		return ierr.NewError("invalid pricing").
			WithHint("Monthly and yearly amounts must be positive").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreateTenantRequest) ToTenant() *tenant.Tenant {
	now := time.Now().UTC()
	return &tenant.Tenant{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TENANT),
		Name:      r.Name,
		City:      r.City,
		Status:    types.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTenantResponse converts a Tenant domain object into a TenantResponse DTO.
func NewTenantResponse(t *tenant.Tenant) *TenantResponse {
	resp := &TenantResponse{
		ID:                t.ID,
		Name:              t.Name,
		City:              t.City,
		Status:            t.Status,
		ProductID:         t.ProductID,
		MonthlyPlanID:     t.MonthlyPlanID,
		YearlyPlanID:      t.YearlyPlanID,
		MonthlyAmount:     t.MonthlyAmount,
		YearlyAmount:      t.YearlyAmount,
		Currency:          t.Currency,
		LastCompletedStep: t.LastCompletedStep,
		CreatedAt:         t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         t.UpdatedAt.Format(time.RFC3339),
	}
	if t.PaymentSettings != nil {
		resp.PaymentSettings = &PaymentSettingsResponse{
			ClientID:     MaskCredential(t.PaymentSettings.ClientID),
			WebhookID:    t.PaymentSettings.WebhookID,
			IsProduction: t.PaymentSettings.IsProduction,
		}
	}
	return resp
}

// MaskCredential hides all but the last four characters of a credential.
func MaskCredential(value string) string {
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
