package paypal_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/suicidekings/carclub/internal/cache"
	"github.com/suicidekings/carclub/internal/config"
	"github.com/suicidekings/carclub/internal/domain/tenant"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/logger"
	"github.com/suicidekings/carclub/internal/paypal"
	"github.com/suicidekings/carclub/internal/security"
	"github.com/suicidekings/carclub/internal/testutil"
	"github.com/suicidekings/carclub/internal/types"
)

type ClientSuite struct {
	suite.Suite
	ctx        context.Context
	logger     *logger.Logger
	encryption security.EncryptionService
	tenantRepo *testutil.InMemoryTenantStore
	httpClient *testutil.MockHTTPClient
	client     paypal.Client
}

func TestClient(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupSuite() {
	cfg := config.GetDefaultConfig()
	cfg.Secrets.EncryptionKey = "test-encryption-key-for-unit-tests-only"

	var err error
	s.logger, err = logger.NewLogger(cfg)
	s.Require().NoError(err)
	s.encryption, err = security.NewEncryptionService(cfg, s.logger)
	s.Require().NoError(err)
}

func (s *ClientSuite) SetupTest() {
	s.ctx = testutil.SetupContext()
	cfg := config.GetDefaultConfig()
	cfg.Secrets.EncryptionKey = "test-encryption-key-for-unit-tests-only"
	s.tenantRepo = testutil.NewInMemoryTenantStore()
	s.httpClient = testutil.NewMockHTTPClient()
	resolver := paypal.NewCredentialResolver(
		s.tenantRepo, s.encryption, s.httpClient, cache.NewInMemoryCache(), cfg, s.logger)
	s.client = paypal.NewClient(resolver, s.httpClient, s.logger)
}

func (s *ClientSuite) createTenant(webhookID string) {
	encrypted, err := s.encryption.Encrypt("tenant-secret")
	s.Require().NoError(err)
	t := &tenant.Tenant{
		ID:     "tenant-1",
		Name:   "SF Chapter",
		Status: types.StatusActive,
		PaymentSettings: &tenant.PaymentSettings{
			ClientID:     "client-id",
			ClientSecret: encrypted,
			WebhookID:    webhookID,
		},
	}
	s.Require().NoError(s.tenantRepo.Create(s.ctx, t))
}

func (s *ClientSuite) registerToken(token string) {
	s.httpClient.RegisterResponse(tokenPath, testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"access_token": "` + token + `", "token_type": "Bearer", "expires_in": 3600}`),
	})
}

func (s *ClientSuite) signatureHeaders() paypal.SignatureHeaders {
	return paypal.SignatureHeaders{
		AuthAlgo:         "SHA256withRSA",
		CertURL:          "https://api.paypal.com/cert.pem",
		TransmissionID:   "tx-1",
		TransmissionSig:  "sig",
		TransmissionTime: "2026-08-30T12:00:00Z",
	}
}

func (s *ClientSuite) TestTestConnection() {
	s.createTenant("WH-1")
	s.registerToken("tok-1")
	s.httpClient.RegisterResponse("/v1/catalogs/products", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"products": []}`),
	})

	s.NoError(s.client.TestConnection(s.ctx, "tenant-1"))
}

func (s *ClientSuite) TestRetriesOnceOnRejectedToken() {
	s.createTenant("WH-1")
	s.registerToken("tok-stale")
	s.registerToken("tok-fresh")
	s.httpClient.RegisterResponse("/v1/catalogs/products", testutil.MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       []byte(`{"error": "invalid_token"}`),
	})
	s.httpClient.RegisterResponse("/v1/catalogs/products", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"products": []}`),
	})

	s.NoError(s.client.TestConnection(s.ctx, "tenant-1"))
	s.Equal(2, s.httpClient.Calls("/v1/catalogs/products"))
	// The stale token was invalidated and re-exchanged exactly once.
	s.Equal(2, s.httpClient.Calls(tokenPath))
}

func (s *ClientSuite) TestNonAuthErrorsAreNotRetried() {
	s.createTenant("WH-1")
	s.registerToken("tok-1")
	s.httpClient.RegisterResponse("/v1/catalogs/products", testutil.MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       []byte(`{"error": "server_error"}`),
	})

	err := s.client.TestConnection(s.ctx, "tenant-1")
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrProviderRequest))
	s.Equal(1, s.httpClient.Calls("/v1/catalogs/products"))
}

func (s *ClientSuite) TestCreateSubscriptionReturnsApprovalLink() {
	s.createTenant("WH-1")
	s.registerToken("tok-1")
	s.httpClient.RegisterResponse("/v1/billing/subscriptions", testutil.MockResponse{
		StatusCode: http.StatusCreated,
		Body: []byte(`{
			"id": "I-123",
			"status": "APPROVAL_PENDING",
			"plan_id": "P-MONTH",
			"links": [
				{"href": "https://www.sandbox.paypal.com/webapps/billing/subscriptions?ba_token=BA-1", "rel": "approve", "method": "GET"},
				{"href": "https://api-m.sandbox.paypal.com/v1/billing/subscriptions/I-123", "rel": "self", "method": "GET"}
			]
		}`),
	})

	sub, err := s.client.CreateSubscription(s.ctx, "tenant-1", paypal.CreateSubscriptionRequest{
		PlanID:     "P-MONTH",
		PayerEmail: "jane@example.com",
	})
	s.NoError(err)
	s.Equal("I-123", sub.ID)
	s.Equal("https://www.sandbox.paypal.com/webapps/billing/subscriptions?ba_token=BA-1", sub.ApprovalLink())
}

func (s *ClientSuite) TestVerifyWebhookSignature() {
	s.createTenant("WH-1")
	s.registerToken("tok-1")
	s.httpClient.RegisterResponse("/v1/notifications/verify-webhook-signature", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"verification_status": "SUCCESS"}`),
	})

	err := s.client.VerifyWebhookSignature(s.ctx, "tenant-1", s.signatureHeaders(), []byte(`{"id": "WH-EVT-1"}`))
	s.NoError(err)
}

func (s *ClientSuite) TestVerifyWebhookSignatureFailure() {
	s.createTenant("WH-1")
	s.registerToken("tok-1")
	s.httpClient.RegisterResponse("/v1/notifications/verify-webhook-signature", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"verification_status": "FAILURE"}`),
	})

	err := s.client.VerifyWebhookSignature(s.ctx, "tenant-1", s.signatureHeaders(), []byte(`{"id": "WH-EVT-1"}`))
	s.Error(err)
	s.True(ierr.IsSignatureInvalid(err))
}

func (s *ClientSuite) TestVerifyWebhookSignatureMissingHeaders() {
	s.createTenant("WH-1")

	headers := s.signatureHeaders()
	headers.TransmissionSig = ""

	err := s.client.VerifyWebhookSignature(s.ctx, "tenant-1", headers, []byte(`{}`))
	s.Error(err)
	s.True(ierr.IsSignatureInvalid(err))
	// Header checks happen before any provider call is spent.
	s.Zero(s.httpClient.Calls(tokenPath))
}

func (s *ClientSuite) TestVerifyWebhookSignatureWithoutWebhookID() {
	s.createTenant("")
	s.registerToken("tok-1")

	err := s.client.VerifyWebhookSignature(s.ctx, "tenant-1", s.signatureHeaders(), []byte(`{}`))
	s.Error(err)
	s.True(ierr.IsSignatureInvalid(err))
}
