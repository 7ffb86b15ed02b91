package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/suicidekings/carclub/internal/paypal"
)

// FakePayPalClient implements paypal.Client without touching the network.
// Calls are recorded per method, and each method's error can be forced for
// failure-path tests.
type FakePayPalClient struct {
	mu    sync.Mutex
	calls map[string]int

	TestConnectionErr  error
	CreateProductErr   error
	CreatePlanErr      error
	CreateSubErr       error
	VerifySignatureErr error

	seq int
}

// NewFakePayPalClient creates a fake provider client
func NewFakePayPalClient() *FakePayPalClient {
	return &FakePayPalClient{
		calls: make(map[string]int),
	}
}

// Calls returns how many times the named method was invoked
func (f *FakePayPalClient) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *FakePayPalClient) record(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	f.seq++
	return f.seq
}

func (f *FakePayPalClient) TestConnection(ctx context.Context, tenantID string) error {
	f.record("TestConnection")
	return f.TestConnectionErr
}

func (f *FakePayPalClient) CreateProduct(ctx context.Context, tenantID string, req paypal.CreateProductRequest) (*paypal.Product, error) {
	n := f.record("CreateProduct")
	if f.CreateProductErr != nil {
		return nil, f.CreateProductErr
	}
	return &paypal.Product{
		ID:       fmt.Sprintf("PROD-%d", n),
		Name:     req.Name,
		Type:     req.Type,
		Category: req.Category,
	}, nil
}

func (f *FakePayPalClient) CreateBillingPlan(ctx context.Context, tenantID string, req paypal.CreatePlanRequest) (*paypal.BillingPlan, error) {
	n := f.record("CreateBillingPlan")
	if f.CreatePlanErr != nil {
		return nil, f.CreatePlanErr
	}
	return &paypal.BillingPlan{
		ID:        fmt.Sprintf("P-%s-%d", req.IntervalUnit, n),
		ProductID: req.ProductID,
		Name:      req.Name,
		Status:    "ACTIVE",
	}, nil
}

func (f *FakePayPalClient) CreateSubscription(ctx context.Context, tenantID string, req paypal.CreateSubscriptionRequest) (*paypal.Subscription, error) {
	n := f.record("CreateSubscription")
	if f.CreateSubErr != nil {
		return nil, f.CreateSubErr
	}
	sub := &paypal.Subscription{
		ID:     fmt.Sprintf("I-%d", n),
		Status: "APPROVAL_PENDING",
		PlanID: req.PlanID,
		Links: []paypal.Link{
			{Href: fmt.Sprintf("https://paypal.test/approve/I-%d", n), Rel: "approve", Method: "GET"},
		},
	}
	sub.Subscriber.EmailAddress = req.PayerEmail
	return sub, nil
}

func (f *FakePayPalClient) GetSubscription(ctx context.Context, tenantID, subscriptionID string) (*paypal.Subscription, error) {
	f.record("GetSubscription")
	return &paypal.Subscription{ID: subscriptionID, Status: "ACTIVE"}, nil
}

func (f *FakePayPalClient) CreateOrder(ctx context.Context, tenantID string, req paypal.CreateOrderRequest) (*paypal.Order, error) {
	n := f.record("CreateOrder")
	return &paypal.Order{ID: fmt.Sprintf("O-%d", n), Status: "CREATED"}, nil
}

func (f *FakePayPalClient) VerifyWebhookSignature(ctx context.Context, tenantID string, headers paypal.SignatureHeaders, body []byte) error {
	f.record("VerifyWebhookSignature")
	if err := headers.Validate(); err != nil {
		return err
	}
	return f.VerifySignatureErr
}

// Clear resets recorded calls and forced errors
func (f *FakePayPalClient) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = make(map[string]int)
	f.seq = 0
	f.TestConnectionErr = nil
	f.CreateProductErr = nil
	f.CreatePlanErr = nil
	f.CreateSubErr = nil
	f.VerifySignatureErr = nil
}
