package dto

import (
	"github.com/shopspring/decimal"
	"github.com/suicidekings/carclub/internal/domain/webhookevent"
	"github.com/suicidekings/carclub/internal/types"
)

// TenantHealthResponse summarizes a chapter's payment integration health.
type TenantHealthResponse struct {
	TenantID string                 `json:"tenant_id"`
	Name     string                 `json:"name"`
	Status   types.ConnectionStatus `json:"status"`
	Issues   []string               `json:"issues,omitempty"`
	Stats    TenantHealthStats      `json:"stats"`
}

// TransactionStats groups the ledger by settlement status.
type TransactionStats struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Pending    int `json:"pending"`
}

type TenantHealthStats struct {
	ActiveMembers  int `json:"active_members"`
	PastDueMembers int `json:"past_due_members"`

	// WebhookFailures is the count inside the configured health window;
	// Webhooks is the all-time log grouped by outcome.
	WebhookFailures int                `json:"webhook_failures"`
	Webhooks        webhookevent.Stats `json:"webhooks"`

	Transactions      TransactionStats `json:"transactions"`
	Revenue           decimal.Decimal  `json:"revenue"`
	Currency          string           `json:"currency,omitempty"`
	SetupComplete     bool             `json:"setup_complete"`
	CredentialsSource string           `json:"credentials_source,omitempty"`
}

// SystemHealthResponse aggregates health across every active chapter.
type SystemHealthResponse struct {
	Status  types.ConnectionStatus  `json:"status"`
	Tenants []*TenantHealthResponse `json:"tenants"`
}
