package service

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/suicidekings/carclub/internal/api/dto"
	"github.com/suicidekings/carclub/internal/cache"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/testutil"
)

type TenantServiceSuite struct {
	testutil.BaseServiceTestSuite
	service TenantService
}

func TestTenantService(t *testing.T) {
	suite.Run(t, new(TenantServiceSuite))
}

func (s *TenantServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewTenantService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *TenantServiceSuite) TestCreateTenant() {
	testCases := []struct {
		name          string
		request       dto.CreateTenantRequest
		expectedError bool
	}{
		{
			name:    "valid_tenant",
			request: dto.CreateTenantRequest{Name: "SF Chapter", City: "San Francisco"},
		},
		{
			name:          "missing_name",
			request:       dto.CreateTenantRequest{City: "San Francisco"},
			expectedError: true,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			resp, err := s.service.CreateTenant(s.GetContext(), tc.request)
			if tc.expectedError {
				s.Error(err)
				s.Nil(resp)
			} else {
				s.NoError(err)
				s.NotNil(resp)
				s.Equal(tc.request.Name, resp.Name)
				s.NotEmpty(resp.ID)
			}
		})
	}
}

func (s *TenantServiceSuite) TestGetTenant() {
	created, err := s.service.CreateTenant(s.GetContext(), dto.CreateTenantRequest{Name: "SF Chapter"})
	s.Require().NoError(err)

	resp, err := s.service.GetTenant(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal("SF Chapter", resp.Name)

	_, err = s.service.GetTenant(s.GetContext(), "tenant-nope")
	s.True(ierr.IsNotFound(err))
}

func (s *TenantServiceSuite) TestUpdateTenant() {
	created, err := s.service.CreateTenant(s.GetContext(), dto.CreateTenantRequest{Name: "SF Chapter"})
	s.Require().NoError(err)

	name := "Bay Area Chapter"
	resp, err := s.service.UpdateTenant(s.GetContext(), created.ID, dto.UpdateTenantRequest{Name: &name})
	s.NoError(err)
	s.Equal(name, resp.Name)
}

func (s *TenantServiceSuite) TestUpdatePaymentSettings() {
	created, err := s.service.CreateTenant(s.GetContext(), dto.CreateTenantRequest{Name: "SF Chapter"})
	s.Require().NoError(err)

	resp, err := s.service.UpdatePaymentSettings(s.GetContext(), created.ID, dto.UpdatePaymentSettingsRequest{
		ClientID:     "client-id-9876",
		ClientSecret: "super-secret",
		WebhookID:    "WH-1",
		IsProduction: true,
	})
	s.NoError(err)
	s.Require().NotNil(resp.PaymentSettings)
	// Responses only ever carry a masked client id.
	s.Equal("****9876", resp.PaymentSettings.ClientID)
	s.True(resp.PaymentSettings.IsProduction)

	stored, err := s.GetStores().TenantRepo.Get(s.GetContext(), created.ID)
	s.NoError(err)
	s.NotEqual("super-secret", stored.PaymentSettings.ClientSecret)

	creds, err := s.GetResolver().Resolve(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal("super-secret", creds.ClientSecret)
	s.True(creds.IsProduction)
}

func (s *TenantServiceSuite) TestUpdatePaymentSettingsInvalidatesCachedToken() {
	created, err := s.service.CreateTenant(s.GetContext(), dto.CreateTenantRequest{Name: "SF Chapter"})
	s.Require().NoError(err)

	key := cache.GenerateKey(cache.PrefixProviderToken, "tenant", created.ID)
	s.GetCache().Set(s.GetContext(), key, "stale-token", 0)

	_, err = s.service.UpdatePaymentSettings(s.GetContext(), created.ID, dto.UpdatePaymentSettingsRequest{
		ClientID:     "client-id",
		ClientSecret: "rotated-secret",
	})
	s.NoError(err)

	_, found := s.GetCache().Get(s.GetContext(), key)
	s.False(found)
}

func (s *TenantServiceSuite) TestUpdatePaymentSettingsRequiresSecret() {
	created, err := s.service.CreateTenant(s.GetContext(), dto.CreateTenantRequest{Name: "SF Chapter"})
	s.Require().NoError(err)

	_, err = s.service.UpdatePaymentSettings(s.GetContext(), created.ID, dto.UpdatePaymentSettingsRequest{
		ClientID: "client-id",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *TenantServiceSuite) TestListTenants() {
	for _, name := range []string{"SF Chapter", "LA Chapter"} {
		_, err := s.service.CreateTenant(s.GetContext(), dto.CreateTenantRequest{Name: name})
		s.Require().NoError(err)
	}

	tenants, err := s.service.ListTenants(s.GetContext())
	s.NoError(err)
	s.Len(tenants, 2)
}
