package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/suicidekings/carclub/internal/api/dto"
	"github.com/suicidekings/carclub/internal/domain/tenant"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/testutil"
	"github.com/suicidekings/carclub/internal/types"
)

type SetupServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SetupService
	tenant  *tenant.Tenant
}

func TestSetupService(t *testing.T) {
	suite.Run(t, new(SetupServiceSuite))
}

func (s *SetupServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewSetupService(newTestServiceParams(&s.BaseServiceTestSuite))

	s.tenant = &tenant.Tenant{
		ID:     "tenant-sf",
		Name:   "SF Chapter",
		Status: types.StatusActive,
	}
	s.NoError(s.GetStores().TenantRepo.Create(s.GetContext(), s.tenant))
}

func (s *SetupServiceSuite) credentialsRequest() dto.UpdatePaymentSettingsRequest {
	return dto.UpdatePaymentSettingsRequest{
		ClientID:     "client-id-1234",
		ClientSecret: "super-secret",
	}
}

func (s *SetupServiceSuite) pricingRequest() dto.UpdatePricingRequest {
	return dto.UpdatePricingRequest{
		MonthlyAmount: decimal.NewFromInt(25),
		YearlyAmount:  decimal.NewFromInt(250),
		Currency:      "USD",
	}
}

// runThrough advances the flow up to and including the given step.
func (s *SetupServiceSuite) runThrough(step types.SetupStep) {
	ctx := s.GetContext()

	_, err := s.service.ConfigureCredentials(ctx, s.tenant.ID, s.credentialsRequest())
	s.Require().NoError(err)
	if step == types.SetupStepCredentials {
		return
	}

	_, err = s.service.TestConnection(ctx, s.tenant.ID)
	s.Require().NoError(err)
	if step == types.SetupStepTest {
		return
	}

	_, err = s.service.ConfigurePricing(ctx, s.tenant.ID, s.pricingRequest())
	s.Require().NoError(err)
	if step == types.SetupStepPricing {
		return
	}

	_, err = s.service.ProvisionProducts(ctx, s.tenant.ID)
	s.Require().NoError(err)
	if step == types.SetupStepProducts {
		return
	}

	_, err = s.service.ConfigureWebhooks(ctx, s.tenant.ID, dto.ConfigureWebhooksRequest{WebhookID: "WH-1"})
	s.Require().NoError(err)
}

func (s *SetupServiceSuite) TestStatusFreshTenant() {
	status, err := s.service.Status(s.GetContext(), s.tenant.ID)
	s.NoError(err)
	s.Equal(types.SetupStepNone, status.LastCompletedStep)
	s.Equal(types.SetupStepCredentials, status.NextStep)
	s.False(status.Complete)
	s.Len(status.Steps, len(types.SetupSteps()))
	for _, step := range status.Steps {
		s.False(step.Completed)
	}
}

func (s *SetupServiceSuite) TestStepsMustRunInOrder() {
	testCases := []struct {
		name string
		run  func() error
	}{
		{
			name: "test_before_credentials",
			run: func() error {
				_, err := s.service.TestConnection(s.GetContext(), s.tenant.ID)
				return err
			},
		},
		{
			name: "pricing_before_credentials",
			run: func() error {
				_, err := s.service.ConfigurePricing(s.GetContext(), s.tenant.ID, s.pricingRequest())
				return err
			},
		},
		{
			name: "products_before_credentials",
			run: func() error {
				_, err := s.service.ProvisionProducts(s.GetContext(), s.tenant.ID)
				return err
			},
		},
		{
			name: "webhooks_before_credentials",
			run: func() error {
				_, err := s.service.ConfigureWebhooks(s.GetContext(), s.tenant.ID, dto.ConfigureWebhooksRequest{WebhookID: "WH-1"})
				return err
			},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := tc.run()
			s.Error(err)
			s.True(ierr.IsInvalidOperation(err))
		})
	}
}

func (s *SetupServiceSuite) TestConfigureCredentialsAdvancesCursor() {
	resp, err := s.service.ConfigureCredentials(s.GetContext(), s.tenant.ID, s.credentialsRequest())
	s.NoError(err)
	s.Equal(types.SetupStepCredentials, resp.LastCompletedStep)
	s.Equal(types.SetupStepTest, resp.NextStep)
	s.False(resp.Complete)

	t, err := s.GetStores().TenantRepo.Get(s.GetContext(), s.tenant.ID)
	s.NoError(err)
	s.Require().NotNil(t.PaymentSettings)
	// Secret is stored encrypted, never in the clear.
	s.NotEqual("super-secret", t.PaymentSettings.ClientSecret)

	creds, err := s.GetResolver().Resolve(s.GetContext(), s.tenant.ID)
	s.NoError(err)
	s.Equal("super-secret", creds.ClientSecret)
}

func (s *SetupServiceSuite) TestConnectionStep() {
	s.runThrough(types.SetupStepCredentials)

	resp, err := s.service.TestConnection(s.GetContext(), s.tenant.ID)
	s.NoError(err)
	s.Equal(types.SetupStepTest, resp.LastCompletedStep)
	s.Equal(1, s.GetPayPalClient().Calls("TestConnection"))
}

func (s *SetupServiceSuite) TestConnectionFailsFastOnBadCredentials() {
	s.runThrough(types.SetupStepCredentials)

	s.GetPayPalClient().TestConnectionErr = ierr.NewError("provider rejected credentials").
		Mark(ierr.ErrProviderAuth)

	_, err := s.service.TestConnection(s.GetContext(), s.tenant.ID)
	s.Error(err)
	// Auth failures are permanent; no retries happen.
	s.Equal(1, s.GetPayPalClient().Calls("TestConnection"))

	t, _ := s.GetStores().TenantRepo.Get(s.GetContext(), s.tenant.ID)
	s.Equal(types.SetupStepCredentials, t.LastCompletedStep)
}

func (s *SetupServiceSuite) TestConfigurePricing() {
	s.runThrough(types.SetupStepTest)

	resp, err := s.service.ConfigurePricing(s.GetContext(), s.tenant.ID, s.pricingRequest())
	s.NoError(err)
	s.Equal(types.SetupStepPricing, resp.LastCompletedStep)

	t, _ := s.GetStores().TenantRepo.Get(s.GetContext(), s.tenant.ID)
	s.True(t.HasPricing())
	s.Equal("USD", t.Currency)
}

func (s *SetupServiceSuite) TestConfigurePricingRejectsNonPositiveAmounts() {
	s.runThrough(types.SetupStepTest)

	_, err := s.service.ConfigurePricing(s.GetContext(), s.tenant.ID, dto.UpdatePricingRequest{
		MonthlyAmount: decimal.Zero,
		YearlyAmount:  decimal.NewFromInt(250),
		Currency:      "USD",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SetupServiceSuite) TestProvisionProducts() {
	s.runThrough(types.SetupStepPricing)

	resp, err := s.service.ProvisionProducts(s.GetContext(), s.tenant.ID)
	s.NoError(err)
	s.Equal(types.SetupStepProducts, resp.LastCompletedStep)

	t, _ := s.GetStores().TenantRepo.Get(s.GetContext(), s.tenant.ID)
	s.True(t.HasProducts())
	s.NotEmpty(t.ProductID)
	s.NotEqual(t.MonthlyPlanID, t.YearlyPlanID)
	s.Equal(1, s.GetPayPalClient().Calls("CreateProduct"))
	s.Equal(2, s.GetPayPalClient().Calls("CreateBillingPlan"))
}

func (s *SetupServiceSuite) TestProvisionProductsIsIdempotent() {
	s.runThrough(types.SetupStepProducts)

	t, _ := s.GetStores().TenantRepo.Get(s.GetContext(), s.tenant.ID)
	productID := t.ProductID

	// Re-running a completed step creates nothing new.
	resp, err := s.service.ProvisionProducts(s.GetContext(), s.tenant.ID)
	s.NoError(err)
	s.Equal(types.SetupStepProducts, resp.LastCompletedStep)
	s.Equal(1, s.GetPayPalClient().Calls("CreateProduct"))
	s.Equal(2, s.GetPayPalClient().Calls("CreateBillingPlan"))

	t, _ = s.GetStores().TenantRepo.Get(s.GetContext(), s.tenant.ID)
	s.Equal(productID, t.ProductID)
}

func (s *SetupServiceSuite) TestProvisionProductsRequiresPricing() {
	s.runThrough(types.SetupStepTest)

	// Force the cursor past pricing without actually configuring amounts.
	t, _ := s.GetStores().TenantRepo.Get(s.GetContext(), s.tenant.ID)
	t.LastCompletedStep = types.SetupStepPricing
	s.NoError(s.GetStores().TenantRepo.Update(s.GetContext(), t))

	_, err := s.service.ProvisionProducts(s.GetContext(), s.tenant.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SetupServiceSuite) TestConfigureWebhooksCompletesFlow() {
	s.runThrough(types.SetupStepProducts)

	resp, err := s.service.ConfigureWebhooks(s.GetContext(), s.tenant.ID, dto.ConfigureWebhooksRequest{WebhookID: "WH-42"})
	s.NoError(err)
	s.Equal(types.SetupStepComplete, resp.LastCompletedStep)
	s.True(resp.Complete)

	t, _ := s.GetStores().TenantRepo.Get(s.GetContext(), s.tenant.ID)
	s.Equal("WH-42", t.WebhookID())

	status, err := s.service.Status(s.GetContext(), s.tenant.ID)
	s.NoError(err)
	s.True(status.Complete)
}

func (s *SetupServiceSuite) TestRerunDoesNotRegressCursor() {
	s.runThrough(types.SetupStepWebhooks)

	resp, err := s.service.ConfigureCredentials(s.GetContext(), s.tenant.ID, s.credentialsRequest())
	s.NoError(err)
	s.Equal(types.SetupStepComplete, resp.LastCompletedStep)
	s.True(resp.Complete)
}

func (s *SetupServiceSuite) TestUnknownTenant() {
	_, err := s.service.Status(s.GetContext(), "tenant-nope")
	s.True(ierr.IsNotFound(err))
}
