package paypal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/httpclient"
	"github.com/suicidekings/carclub/internal/logger"
)

// Client is the tenant-aware provider API surface. Every call resolves the
// tenant's credentials first, so two tenants can use entirely different
// provider accounts through the same client.
type Client interface {
	// TestConnection performs a minimal authenticated call to prove the
	// tenant's credentials work.
	TestConnection(ctx context.Context, tenantID string) error
	CreateProduct(ctx context.Context, tenantID string, req CreateProductRequest) (*Product, error)
	CreateBillingPlan(ctx context.Context, tenantID string, req CreatePlanRequest) (*BillingPlan, error)
	CreateSubscription(ctx context.Context, tenantID string, req CreateSubscriptionRequest) (*Subscription, error)
	GetSubscription(ctx context.Context, tenantID, subscriptionID string) (*Subscription, error)
	CreateOrder(ctx context.Context, tenantID string, req CreateOrderRequest) (*Order, error)
	// VerifyWebhookSignature validates a webhook delivery against the
	// provider's verification endpoint using the tenant's webhook id.
	VerifyWebhookSignature(ctx context.Context, tenantID string, headers SignatureHeaders, body []byte) error
}

type client struct {
	resolver *CredentialResolver
	http     httpclient.Client
	logger   *logger.Logger
}

// NewClient creates a new provider API client
func NewClient(resolver *CredentialResolver, http httpclient.Client, logger *logger.Logger) Client {
	return &client{
		resolver: resolver,
		http:     http,
		logger:   logger,
	}
}

func (c *client) TestConnection(ctx context.Context, tenantID string) error {
	// Listing one product is the cheapest authenticated call the catalog
	// API offers.
	return c.do(ctx, tenantID, http.MethodGet, "/v1/catalogs/products?page_size=1", nil, nil)
}

func (c *client) CreateProduct(ctx context.Context, tenantID string, req CreateProductRequest) (*Product, error) {
	if req.Type == "" {
		req.Type = "SERVICE"
	}
	var product Product
	if err := c.do(ctx, tenantID, http.MethodPost, "/v1/catalogs/products", req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *client) CreateBillingPlan(ctx context.Context, tenantID string, req CreatePlanRequest) (*BillingPlan, error) {
	payload := map[string]interface{}{
		"product_id": req.ProductID,
		"name":       req.Name,
		"status":     "ACTIVE",
		"billing_cycles": []map[string]interface{}{
			{
				"frequency": map[string]interface{}{
					"interval_unit":  req.IntervalUnit,
					"interval_count": 1,
				},
				"tenure_type": "REGULAR",
				"sequence":    1,
				// 0 means the cycle repeats until cancelled.
				"total_cycles": 0,
				"pricing_scheme": map[string]interface{}{
					"fixed_price": map[string]string{
						"value":         req.Amount,
						"currency_code": req.Currency,
					},
				},
			},
		},
		"payment_preferences": map[string]interface{}{
			"auto_bill_outstanding":     true,
			"payment_failure_threshold": 3,
		},
	}

	var plan BillingPlan
	if err := c.do(ctx, tenantID, http.MethodPost, "/v1/billing/plans", payload, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *client) CreateSubscription(ctx context.Context, tenantID string, req CreateSubscriptionRequest) (*Subscription, error) {
	payload := map[string]interface{}{
		"plan_id": req.PlanID,
	}
	if req.PayerEmail != "" {
		payload["subscriber"] = map[string]interface{}{
			"email_address": req.PayerEmail,
		}
	}
	if req.CustomID != "" {
		payload["custom_id"] = req.CustomID
	}
	if req.ReturnURL != "" || req.CancelURL != "" {
		payload["application_context"] = map[string]string{
			"return_url": req.ReturnURL,
			"cancel_url": req.CancelURL,
		}
	}

	var sub Subscription
	if err := c.do(ctx, tenantID, http.MethodPost, "/v1/billing/subscriptions", payload, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *client) GetSubscription(ctx context.Context, tenantID, subscriptionID string) (*Subscription, error) {
	var sub Subscription
	path := "/v1/billing/subscriptions/" + subscriptionID
	if err := c.do(ctx, tenantID, http.MethodGet, path, nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *client) CreateOrder(ctx context.Context, tenantID string, req CreateOrderRequest) (*Order, error) {
	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"amount": map[string]string{
					"value":         req.Amount,
					"currency_code": req.Currency,
				},
				"description": req.Description,
			},
		},
	}

	var order Order
	if err := c.do(ctx, tenantID, http.MethodPost, "/v2/checkout/orders", payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *client) VerifyWebhookSignature(ctx context.Context, tenantID string, headers SignatureHeaders, body []byte) error {
	if err := headers.Validate(); err != nil {
		return err
	}

	token, creds, err := c.resolver.Token(ctx, tenantID)
	if err != nil {
		return err
	}
	if creds.WebhookID == "" {
		return ierr.NewError("no webhook id configured").
			WithHint("Webhook signature cannot be verified without a configured webhook id").
			Mark(ierr.ErrSignatureInvalid)
	}

	payload := verifySignatureRequest{
		AuthAlgo:         headers.AuthAlgo,
		CertURL:          headers.CertURL,
		TransmissionID:   headers.TransmissionID,
		TransmissionSig:  headers.TransmissionSig,
		TransmissionTime: headers.TransmissionTime,
		WebhookID:        creds.WebhookID,
		WebhookEvent:     json.RawMessage(body),
	}
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return ierr.WithError(err).
			WithMessage("marshal signature verification request").
			Mark(ierr.ErrSystem)
	}

	resp, err := c.send(ctx, tenantID, token, creds, http.MethodPost,
		"/v1/notifications/verify-webhook-signature", reqBody)
	if err != nil {
		return err
	}

	var result verifySignatureResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return ierr.WithError(err).
			WithHint("PayPal returned an unexpected verification response").
			Mark(ierr.ErrProviderRequest)
	}
	if result.VerificationStatus != "SUCCESS" {
		return ierr.NewError("signature verification failed").
			WithHintf("PayPal reported verification status %s", result.VerificationStatus).
			Mark(ierr.ErrSignatureInvalid)
	}
	return nil
}

// do resolves a token, performs the request and decodes the response into
// out. A 401 invalidates the cached token and retries once with a fresh one.
func (c *client) do(ctx context.Context, tenantID, method, path string, payload, out interface{}) error {
	token, creds, err := c.resolver.Token(ctx, tenantID)
	if err != nil {
		return err
	}

	var body []byte
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			return ierr.WithError(err).
				WithMessage("marshal provider request").
				Mark(ierr.ErrSystem)
		}
	}

	resp, err := c.send(ctx, tenantID, token, creds, method, path, body)
	if httpErr, ok := httpclient.IsHTTPError(err); ok && httpErr.StatusCode == http.StatusUnauthorized {
		c.resolver.InvalidateToken(ctx, tenantID, creds)
		token, creds, err = c.resolver.Token(ctx, tenantID)
		if err != nil {
			return err
		}
		resp, err = c.send(ctx, tenantID, token, creds, method, path, body)
	}
	if err != nil {
		return err
	}

	if out != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return ierr.WithError(err).
				WithHint("PayPal returned an unexpected response").
				Mark(ierr.ErrProviderRequest)
		}
	}
	return nil
}

func (c *client) send(ctx context.Context, tenantID, token string, creds *Credentials, method, path string, body []byte) (*httpclient.Response, error) {
	resp, err := c.http.Send(ctx, &httpclient.Request{
		Method: method,
		URL:    c.resolver.APIBase(creds) + path,
		Headers: map[string]string{
			"Authorization": "Bearer " + token,
			"Content-Type":  "application/json",
		},
		Body: body,
	})
	if err != nil {
		if httpErr, ok := httpclient.IsHTTPError(err); ok {
			c.logger.Errorw("provider request failed",
				"tenant_id", tenantID,
				"method", method,
				"path", path,
				"status", httpErr.StatusCode,
				"response", string(httpErr.Response),
			)
			if httpErr.StatusCode == http.StatusUnauthorized {
				return nil, err
			}
			return nil, ierr.WithError(err).
				WithHintf("PayPal request to %s failed with status %d", path, httpErr.StatusCode).
				Mark(ierr.ErrProviderRequest)
		}
		return nil, ierr.WithError(err).
			WithHint(fmt.Sprintf("PayPal request to %s failed", path)).
			Mark(ierr.ErrProviderRequest)
	}
	return resp, nil
}
