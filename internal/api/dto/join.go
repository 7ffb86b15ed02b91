package dto

import (
	"github.com/suicidekings/carclub/internal/types"
	"github.com/suicidekings/carclub/internal/validator"
)

// JoinRequest starts a membership subscription for a prospective member.
type JoinRequest struct {
	Email     string               `json:"email" validate:"required,email"`
	FirstName string               `json:"first_name" validate:"omitempty,max=100"`
	LastName  string               `json:"last_name" validate:"omitempty,max=100"`
	Tier      types.MembershipTier `json:"tier" validate:"required"`
	ReturnURL string               `json:"return_url" validate:"omitempty,url"`
	CancelURL string               `json:"cancel_url" validate:"omitempty,url"`
}

func (r *JoinRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Tier.Validate()
}

// JoinResponse carries the provider approval link the member must visit to
// confirm payment. The membership only becomes active once the activation
// webhook arrives.
type JoinResponse struct {
	SubscriptionID string `json:"subscription_id"`
	ApprovalURL    string `json:"approval_url"`
	Status         string `json:"status"`
}
