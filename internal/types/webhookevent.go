package types

import "github.com/samber/lo"

// WebhookEventType is the closed set of provider event types the processor
// dispatches on. Event types outside this set are acknowledged but ignored,
// so a new provider event is a compile-time-visible addition here rather
// than a silently dropped string.
type WebhookEventType string

const (
	WebhookEventSubscriptionActivated WebhookEventType = "BILLING.SUBSCRIPTION.ACTIVATED"
	WebhookEventSubscriptionCancelled WebhookEventType = "BILLING.SUBSCRIPTION.CANCELLED"
	WebhookEventSubscriptionExpired   WebhookEventType = "BILLING.SUBSCRIPTION.EXPIRED"
	WebhookEventSubscriptionSuspended WebhookEventType = "BILLING.SUBSCRIPTION.SUSPENDED"
	WebhookEventPaymentFailed         WebhookEventType = "BILLING.SUBSCRIPTION.PAYMENT.FAILED"
	WebhookEventSaleCompleted         WebhookEventType = "PAYMENT.SALE.COMPLETED"
	WebhookEventCaptureCompleted      WebhookEventType = "PAYMENT.CAPTURE.COMPLETED"
	WebhookEventCaptureRefunded       WebhookEventType = "PAYMENT.CAPTURE.REFUNDED"
)

func (t WebhookEventType) String() string {
	return string(t)
}

// IsKnown reports whether the event type is part of the dispatch table.
func (t WebhookEventType) IsKnown() bool {
	return lo.Contains(knownWebhookEventTypes, t)
}

var knownWebhookEventTypes = []WebhookEventType{
	WebhookEventSubscriptionActivated,
	WebhookEventSubscriptionCancelled,
	WebhookEventSubscriptionExpired,
	WebhookEventSubscriptionSuspended,
	WebhookEventPaymentFailed,
	WebhookEventSaleCompleted,
	WebhookEventCaptureCompleted,
	WebhookEventCaptureRefunded,
}
