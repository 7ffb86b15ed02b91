package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/suicidekings/carclub/internal/api/dto"
	"github.com/suicidekings/carclub/internal/domain/member"
	"github.com/suicidekings/carclub/internal/domain/tenant"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/testutil"
	"github.com/suicidekings/carclub/internal/types"
)

type MemberServiceSuite struct {
	testutil.BaseServiceTestSuite
	service MemberService
	tenant  *tenant.Tenant
}

func TestMemberService(t *testing.T) {
	suite.Run(t, new(MemberServiceSuite))
}

func (s *MemberServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewMemberService(newTestServiceParams(&s.BaseServiceTestSuite))

	s.tenant = &tenant.Tenant{
		ID:                "tenant-sf",
		Name:              "SF Chapter",
		Status:            types.StatusActive,
		ProductID:         "PROD-1",
		MonthlyPlanID:     "P-MONTH",
		YearlyPlanID:      "P-YEAR",
		MonthlyAmount:     decimal.NewFromInt(25),
		YearlyAmount:      decimal.NewFromInt(250),
		Currency:          "USD",
		LastCompletedStep: types.SetupStepComplete,
	}
	s.NoError(s.GetStores().TenantRepo.Create(s.GetContext(), s.tenant))
}

func (s *MemberServiceSuite) TestJoinYearly() {
	resp, err := s.service.Join(s.GetContext(), s.tenant.ID, dto.JoinRequest{
		Email: "jane.doe@example.com",
		Tier:  types.MembershipTierYearly,
	})
	s.NoError(err)
	s.NotEmpty(resp.SubscriptionID)
	s.NotEmpty(resp.ApprovalURL)
	s.Equal("APPROVAL_PENDING", resp.Status)
	s.Equal(1, s.GetPayPalClient().Calls("CreateSubscription"))
}

func (s *MemberServiceSuite) TestJoinRequiresValidRequest() {
	testCases := []struct {
		name    string
		request dto.JoinRequest
	}{
		{
			name:    "missing_email",
			request: dto.JoinRequest{Tier: types.MembershipTierMonthly},
		},
		{
			name:    "bad_tier",
			request: dto.JoinRequest{Email: "jane@example.com", Tier: "weekly"},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.service.Join(s.GetContext(), s.tenant.ID, tc.request)
			s.Error(err)
			s.Zero(s.GetPayPalClient().Calls("CreateSubscription"))
		})
	}
}

func (s *MemberServiceSuite) TestJoinRequiresProvisionedProducts() {
	bare := &tenant.Tenant{ID: "tenant-new", Name: "New Chapter", Status: types.StatusActive}
	s.NoError(s.GetStores().TenantRepo.Create(s.GetContext(), bare))

	_, err := s.service.Join(s.GetContext(), bare.ID, dto.JoinRequest{
		Email: "jane@example.com",
		Tier:  types.MembershipTierMonthly,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *MemberServiceSuite) TestGetMember() {
	m := &member.Member{
		ID:                 "member-1",
		Email:              "jane@example.com",
		SubscriptionStatus: types.SubscriptionStatusActive,
	}
	m.TenantID = s.tenant.ID
	s.NoError(s.GetStores().MemberRepo.Create(s.GetContext(), m))

	resp, err := s.service.GetMember(s.GetContext(), "member-1")
	s.NoError(err)
	s.Equal("jane@example.com", resp.Email)

	_, err = s.service.GetMember(s.GetContext(), "member-nope")
	s.True(ierr.IsNotFound(err))
}

func (s *MemberServiceSuite) TestListMembers() {
	for _, email := range []string{"a@example.com", "b@example.com"} {
		m := &member.Member{
			ID:    types.GenerateUUIDWithPrefix(types.UUID_PREFIX_MEMBER),
			Email: email,
		}
		m.TenantID = s.tenant.ID
		s.NoError(s.GetStores().MemberRepo.Create(s.GetContext(), m))
	}

	resp, err := s.service.ListMembers(s.GetContext(), s.tenant.ID)
	s.NoError(err)
	s.Len(resp.Items, 2)
	s.Equal(2, resp.Pagination.Total)
}
