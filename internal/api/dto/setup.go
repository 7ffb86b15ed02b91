package dto

import (
	"github.com/suicidekings/carclub/internal/types"
	"github.com/suicidekings/carclub/internal/validator"
)

// SetupStepStatus is one row of the provisioning checklist.
type SetupStepStatus struct {
	Step      types.SetupStep `json:"step"`
	Completed bool            `json:"completed"`
	Current   bool            `json:"current"`
}

type SetupStatusResponse struct {
	TenantID          string            `json:"tenant_id"`
	LastCompletedStep types.SetupStep   `json:"last_completed_step"`
	NextStep          types.SetupStep   `json:"next_step"`
	Complete          bool              `json:"complete"`
	Steps             []SetupStepStatus `json:"steps"`
}

// ConfigureWebhooksRequest records the provider webhook id a chapter admin
// registered in the provider dashboard.
type ConfigureWebhooksRequest struct {
	WebhookID string `json:"webhook_id" validate:"required"`
}

func (r *ConfigureWebhooksRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// SetupStepResponse reports the outcome of running one provisioning step.
type SetupStepResponse struct {
	Step              types.SetupStep `json:"step"`
	LastCompletedStep types.SetupStep `json:"last_completed_step"`
	NextStep          types.SetupStep `json:"next_step"`
	Complete          bool            `json:"complete"`
}
