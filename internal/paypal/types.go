package paypal

import (
	"encoding/json"
	"time"

	ierr "github.com/suicidekings/carclub/internal/errors"
)

// CredentialSource records which credential pair a request was made with.
type CredentialSource string

const (
	CredentialSourceTenant CredentialSource = "tenant"
	CredentialSourceGlobal CredentialSource = "global"
)

// Credentials is a resolved, decrypted credential set ready for use against
// the provider API. Never persisted; the encrypted form lives on the tenant.
type Credentials struct {
	ClientID     string
	ClientSecret string
	WebhookID    string
	IsProduction bool
	Source       CredentialSource
}

// tokenResponse is the provider's OAuth token exchange response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// SignatureHeaders carries the five provider signature headers that must
// accompany every webhook delivery.
type SignatureHeaders struct {
	AuthAlgo         string `json:"auth_algo"`
	CertURL          string `json:"cert_url"`
	TransmissionID   string `json:"transmission_id"`
	TransmissionSig  string `json:"transmission_sig"`
	TransmissionTime string `json:"transmission_time"`
}

// Validate rejects deliveries missing any signature header before any
// verification API call is spent on them.
func (h SignatureHeaders) Validate() error {
	missing := []string{}
	if h.AuthAlgo == "" {
		missing = append(missing, "paypal-auth-algo")
	}
	if h.CertURL == "" {
		missing = append(missing, "paypal-cert-url")
	}
	if h.TransmissionID == "" {
		missing = append(missing, "paypal-transmission-id")
	}
	if h.TransmissionSig == "" {
		missing = append(missing, "paypal-transmission-sig")
	}
	if h.TransmissionTime == "" {
		missing = append(missing, "paypal-transmission-time")
	}
	if len(missing) > 0 {
		return ierr.NewError("missing webhook signature headers").
			WithHint("Webhook delivery is missing required signature headers").
			WithReportableDetails(map[string]any{"missing_headers": missing}).
			Mark(ierr.ErrSignatureInvalid)
	}
	return nil
}

// verifySignatureRequest is the payload for the provider's
// verify-webhook-signature endpoint.
type verifySignatureRequest struct {
	AuthAlgo         string          `json:"auth_algo"`
	CertURL          string          `json:"cert_url"`
	TransmissionID   string          `json:"transmission_id"`
	TransmissionSig  string          `json:"transmission_sig"`
	TransmissionTime string          `json:"transmission_time"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

type verifySignatureResponse struct {
	VerificationStatus string `json:"verification_status"`
}

// Product is a provider-side catalog product a chapter's billing plans
// hang off.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Category    string `json:"category,omitempty"`
}

// CreateProductRequest creates a catalog product.
type CreateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Category    string `json:"category,omitempty"`
}

// BillingPlan is a provider-side recurring plan.
type BillingPlan struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
}

// CreatePlanRequest creates a billing plan under a product. IntervalUnit is
// MONTH or YEAR per the provider API.
type CreatePlanRequest struct {
	ProductID    string
	Name         string
	IntervalUnit string
	Amount       string
	Currency     string
}

// Subscription is the provider's view of a recurring agreement.
type Subscription struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	PlanID      string     `json:"plan_id"`
	Subscriber  Subscriber `json:"subscriber"`
	BillingInfo *struct {
		NextBillingTime *time.Time `json:"next_billing_time"`
	} `json:"billing_info,omitempty"`
	Links []Link `json:"links,omitempty"`
}

// ApprovalLink returns the payer-facing approval URL, if present.
func (s *Subscription) ApprovalLink() string {
	for _, link := range s.Links {
		if link.Rel == "approve" {
			return link.Href
		}
	}
	return ""
}

// Subscriber is the payer attached to a subscription.
type Subscriber struct {
	EmailAddress string `json:"email_address"`
	Name         struct {
		GivenName string `json:"given_name"`
		Surname   string `json:"surname"`
	} `json:"name"`
}

// CreateSubscriptionRequest starts a subscription on a plan; the returned
// approval link is where the member confirms payment.
type CreateSubscriptionRequest struct {
	PlanID     string
	PayerEmail string
	ReturnURL  string
	CancelURL  string
	CustomID   string
}

// Order is a one-time payment order.
type Order struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []Link `json:"links,omitempty"`
}

// Link is a provider HATEOAS link.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

// CreateOrderRequest creates a one-time payment order.
type CreateOrderRequest struct {
	Amount      string
	Currency    string
	Description string
}
