package member

import (
	"strings"
	"time"

	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/types"
)

// Member represents a tenant-scoped person. Subscription lifecycle fields
// are mutated only by the webhook processor; profile fields only by
// administrative edits. The two write paths never touch the same columns.
type Member struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// SubscriptionID is the provider-assigned recurring agreement id.
	SubscriptionID string `json:"subscription_id,omitempty"`
	// SubscriptionStatus tracks the payment lifecycle (active, past_due, ...).
	SubscriptionStatus types.SubscriptionStatus `json:"subscription_status"`
	// MembershipStatus tracks the member's standing in the chapter.
	MembershipStatus types.MembershipStatus `json:"membership_status"`
	// MembershipTier is the billing cadence (monthly/yearly).
	MembershipTier types.MembershipTier `json:"membership_tier,omitempty"`

	SubscriptionStart *time.Time `json:"subscription_start,omitempty"`
	NextBillingDate   *time.Time `json:"next_billing_date,omitempty"`

	types.BaseModel
}

// NormalizeEmail lowercases and trims an email for payer matching; webhook
// payloads identify payers by email rather than internal member id.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate validates the member
func (m *Member) Validate() error {
	if m.Email == "" {
		return ierr.NewError("invalid member email").
			WithHint("Email is required").
			Mark(ierr.ErrValidation)
	}
	if m.TenantID == "" {
		return ierr.NewError("missing tenant id").
			WithHint("Member must belong to a chapter").
			Mark(ierr.ErrValidation)
	}
	if m.SubscriptionStatus != "" {
		if err := m.SubscriptionStatus.Validate(); err != nil {
			return ierr.WithError(err).
				WithHint("Subscription status is invalid").
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}
