package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/suicidekings/carclub/internal/domain/member"
	"github.com/suicidekings/carclub/internal/domain/tenant"
	"github.com/suicidekings/carclub/internal/domain/transaction"
	"github.com/suicidekings/carclub/internal/domain/webhookevent"
	"github.com/suicidekings/carclub/internal/testutil"
	"github.com/suicidekings/carclub/internal/types"
)

type HealthServiceSuite struct {
	testutil.BaseServiceTestSuite
	service HealthService
}

func TestHealthService(t *testing.T) {
	suite.Run(t, new(HealthServiceSuite))
}

func (s *HealthServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewHealthService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *HealthServiceSuite) createTenant(id string, complete bool, withCredentials bool) *tenant.Tenant {
	t := &tenant.Tenant{
		ID:       id,
		Name:     "Chapter " + id,
		Status:   types.StatusActive,
		Currency: "USD",
	}
	if withCredentials {
		encrypted, err := s.GetEncryption().Encrypt("secret-" + id)
		s.Require().NoError(err)
		t.PaymentSettings = &tenant.PaymentSettings{
			ClientID:     "client-" + id,
			ClientSecret: encrypted,
			WebhookID:    "WH-" + id,
		}
	}
	if complete {
		t.LastCompletedStep = types.SetupStepComplete
	}
	s.Require().NoError(s.GetStores().TenantRepo.Create(s.GetContext(), t))
	return t
}

func (s *HealthServiceSuite) seedFailures(tenantID string, count int) {
	for i := 0; i < count; i++ {
		msg := "handler blew up"
		event := &webhookevent.WebhookEvent{
			ID:           fmt.Sprintf("wh-%s-%d", tenantID, i),
			TenantID:     tenantID,
			EventType:    "BILLING.SUBSCRIPTION.ACTIVATED",
			Payload:      "{}",
			ErrorMessage: &msg,
			ReceivedAt:   time.Now().UTC(),
		}
		s.Require().NoError(s.GetStores().WebhookEventRepo.Create(s.GetContext(), event))
	}
}

func (s *HealthServiceSuite) TestHealthyTenant() {
	s.createTenant("tenant-1", true, true)

	resp, err := s.service.TenantHealth(s.GetContext(), "tenant-1")
	s.NoError(err)
	s.Equal(types.ConnectionStatusOK, resp.Status)
	s.Empty(resp.Issues)
	s.True(resp.Stats.SetupComplete)
	s.Equal("tenant", resp.Stats.CredentialsSource)
}

func (s *HealthServiceSuite) TestMissingCredentialsIsError() {
	s.createTenant("tenant-1", true, false)

	resp, err := s.service.TenantHealth(s.GetContext(), "tenant-1")
	s.NoError(err)
	s.Equal(types.ConnectionStatusError, resp.Status)
	s.Contains(resp.Issues, "No PayPal credentials configured")
}

func (s *HealthServiceSuite) TestIncompleteSetupIsWarning() {
	s.createTenant("tenant-1", false, true)

	resp, err := s.service.TenantHealth(s.GetContext(), "tenant-1")
	s.NoError(err)
	s.Equal(types.ConnectionStatusWarning, resp.Status)
	s.False(resp.Stats.SetupComplete)
	s.Len(resp.Issues, 1)
}

func (s *HealthServiceSuite) TestWebhookFailureThresholds() {
	testCases := []struct {
		name     string
		failures int
		expected types.ConnectionStatus
	}{
		{name: "at_warning_threshold", failures: 2, expected: types.ConnectionStatusOK},
		{name: "above_warning_threshold", failures: 3, expected: types.ConnectionStatusWarning},
		{name: "at_error_threshold", failures: 5, expected: types.ConnectionStatusWarning},
		{name: "above_error_threshold", failures: 6, expected: types.ConnectionStatusError},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.ClearStores()
			s.createTenant("tenant-1", true, true)
			s.seedFailures("tenant-1", tc.failures)

			resp, err := s.service.TenantHealth(s.GetContext(), "tenant-1")
			s.NoError(err)
			s.Equal(tc.expected, resp.Status)
			s.Equal(tc.failures, resp.Stats.WebhookFailures)
			s.Equal(tc.failures, resp.Stats.Webhooks.Failed)
			s.Equal(tc.failures, resp.Stats.Webhooks.Total)
		})
	}
}

func (s *HealthServiceSuite) TestMemberAndRevenueStats() {
	t := s.createTenant("tenant-1", true, true)

	active := &member.Member{ID: "m1", Email: "a@example.com", SubscriptionStatus: types.SubscriptionStatusActive}
	active.TenantID = t.ID
	pastDue := &member.Member{ID: "m2", Email: "b@example.com", SubscriptionStatus: types.SubscriptionStatusPastDue}
	pastDue.TenantID = t.ID
	s.NoError(s.GetStores().MemberRepo.Create(s.GetContext(), active))
	s.NoError(s.GetStores().MemberRepo.Create(s.GetContext(), pastDue))

	txns := []*transaction.Transaction{
		{ID: "t1", TenantID: t.ID, ProviderEventID: "e1", Type: types.TransactionTypePayment, Status: types.TransactionStatusCompleted, Amount: decimal.NewFromInt(25), Currency: "USD", CreatedAt: time.Now().UTC()},
		{ID: "t2", TenantID: t.ID, ProviderEventID: "e2", Type: types.TransactionTypeCaptureCompleted, Status: types.TransactionStatusCompleted, Amount: decimal.NewFromInt(10), Currency: "USD", CreatedAt: time.Now().UTC()},
		{ID: "t3", TenantID: t.ID, ProviderEventID: "e3", Type: types.TransactionTypeRefund, Status: types.TransactionStatusCompleted, Amount: decimal.NewFromInt(5), Currency: "USD", CreatedAt: time.Now().UTC()},
		{ID: "t4", TenantID: t.ID, ProviderEventID: "e4", Type: types.TransactionTypePaymentFailed, Status: types.TransactionStatusFailed, Amount: decimal.NewFromInt(25), Currency: "USD", CreatedAt: time.Now().UTC()},
	}
	for _, txn := range txns {
		s.NoError(s.GetStores().TransactionRepo.Create(s.GetContext(), txn))
	}

	resp, err := s.service.TenantHealth(s.GetContext(), t.ID)
	s.NoError(err)
	s.Equal(1, resp.Stats.ActiveMembers)
	s.Equal(1, resp.Stats.PastDueMembers)
	s.Equal(4, resp.Stats.Transactions.Total)
	s.Equal(3, resp.Stats.Transactions.Successful)
	s.Equal(1, resp.Stats.Transactions.Failed)
	s.Equal(0, resp.Stats.Transactions.Pending)
	// payments + captures - refunds; failed payments contribute nothing
	s.True(resp.Stats.Revenue.Equal(decimal.NewFromInt(30)))
}

func (s *HealthServiceSuite) TestSystemHealthRollsUpWorstStatus() {
	s.createTenant("tenant-ok", true, true)
	s.createTenant("tenant-bad", true, false)

	inactive := &tenant.Tenant{ID: "tenant-off", Name: "Dormant", Status: types.StatusDeleted}
	s.NoError(s.GetStores().TenantRepo.Create(s.GetContext(), inactive))

	resp, err := s.service.SystemHealth(s.GetContext())
	s.NoError(err)
	s.Equal(types.ConnectionStatusError, resp.Status)
	s.Len(resp.Tenants, 2)

	byID := map[string]types.ConnectionStatus{}
	for _, t := range resp.Tenants {
		byID[t.TenantID] = t.Status
	}
	s.Equal(types.ConnectionStatusOK, byID["tenant-ok"])
	s.Equal(types.ConnectionStatusError, byID["tenant-bad"])
}

func (s *HealthServiceSuite) TestSystemHealthEmpty() {
	resp, err := s.service.SystemHealth(s.GetContext())
	s.NoError(err)
	s.Equal(types.ConnectionStatusOK, resp.Status)
	s.Empty(resp.Tenants)
}
