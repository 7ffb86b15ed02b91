package webhookevent

import (
	"time"

	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/types"
)

// WebhookEvent is one row of the append-only delivery log. Every inbound
// notification is recorded before any business handling runs, so the log is
// the source of truth for what the provider sent, independent of whether
// processing succeeded.
type WebhookEvent struct {
	ID       string `db:"id" json:"id"`
	TenantID string `db:"tenant_id" json:"tenant_id"`

	// TransmissionID is the provider-assigned delivery id, unique per
	// delivery attempt. Used to correlate with provider dashboards.
	TransmissionID string `db:"transmission_id" json:"transmission_id"`

	// EventType is the raw type string from the payload. Unknown types are
	// logged as-is and marked processed without any business handling.
	EventType string `db:"event_type" json:"event_type"`

	// Payload is the verbatim request body.
	Payload string `db:"payload" json:"payload"`

	Processed    bool       `db:"processed" json:"processed"`
	ErrorMessage *string    `db:"error_message" json:"error_message,omitempty"`
	ReceivedAt   time.Time  `db:"received_at" json:"received_at"`
	ProcessedAt  *time.Time `db:"processed_at" json:"processed_at,omitempty"`
}

// IsFailed reports whether handling was attempted and failed. Unknown event
// types carry no error and do not count as failures.
func (e *WebhookEvent) IsFailed() bool {
	return !e.Processed && e.ErrorMessage != nil
}

// Validate validates the webhook event
func (e *WebhookEvent) Validate() error {
	if e.TenantID == "" {
		return ierr.NewError("missing tenant id").
			WithHint("Webhook event must belong to a chapter").
			Mark(ierr.ErrValidation)
	}
	if e.Payload == "" {
		return ierr.NewError("empty payload").
			WithHint("Webhook event payload is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Stats groups the delivery log by outcome for the health surfaces.
// Pending rows were received but their outcome write never landed.
type Stats struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Pending   int `json:"pending"`
}

// Filter narrows webhook event listings.
type Filter struct {
	*types.QueryFilter

	TenantID   string
	EventType  string
	Processed  *bool
	FailedOnly bool
	Since      *time.Time
}
