package dto

import (
	"time"

	"github.com/suicidekings/carclub/internal/domain/webhookevent"
	"github.com/suicidekings/carclub/internal/types"
)

// WebhookAckResponse is the body returned for every webhook delivery.
// The HTTP status is 200 for every logged delivery except signature
// rejections (401) so the provider does not pile up redeliveries;
// Processed tells operators what happened.
type WebhookAckResponse struct {
	Received  bool   `json:"received"`
	Processed bool   `json:"processed"`
	EventID   string `json:"event_id,omitempty"`
	Message   string `json:"message,omitempty"`
}

type WebhookEventResponse struct {
	ID             string     `json:"id"`
	TenantID       string     `json:"tenant_id"`
	TransmissionID string     `json:"transmission_id"`
	EventType      string     `json:"event_type"`
	Processed      bool       `json:"processed"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	ReceivedAt     time.Time  `json:"received_at"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
}

// ListWebhookEventsResponse represents the response for listing webhook events
type ListWebhookEventsResponse = types.ListResponse[*WebhookEventResponse]

func NewWebhookEventResponse(e *webhookevent.WebhookEvent) *WebhookEventResponse {
	return &WebhookEventResponse{
		ID:             e.ID,
		TenantID:       e.TenantID,
		TransmissionID: e.TransmissionID,
		EventType:      e.EventType,
		Processed:      e.Processed,
		ErrorMessage:   e.ErrorMessage,
		ReceivedAt:     e.ReceivedAt,
		ProcessedAt:    e.ProcessedAt,
	}
}
