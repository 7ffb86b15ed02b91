package service

import (
	"context"

	"github.com/suicidekings/carclub/internal/api/dto"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/paypal"
	"github.com/suicidekings/carclub/internal/types"
)

type MemberService interface {
	GetMember(ctx context.Context, id string) (*dto.MemberResponse, error)
	ListMembers(ctx context.Context, tenantID string) (*dto.ListMembersResponse, error)
	// Join starts a provider subscription on the chapter's plan for the
	// requested cadence. The member record itself is created later by the
	// activation webhook, which is the source of truth for lifecycle state.
	Join(ctx context.Context, tenantID string, req dto.JoinRequest) (*dto.JoinResponse, error)
}

type memberService struct {
	ServiceParams
}

func NewMemberService(params ServiceParams) MemberService {
	return &memberService{ServiceParams: params}
}

func (s *memberService) GetMember(ctx context.Context, id string) (*dto.MemberResponse, error) {
	m, err := s.MemberRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewMemberResponse(m), nil
}

func (s *memberService) ListMembers(ctx context.Context, tenantID string) (*dto.ListMembersResponse, error) {
	members, err := s.MemberRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.MemberResponse, len(members))
	for i, m := range members {
		items[i] = dto.NewMemberResponse(m)
	}
	return &dto.ListMembersResponse{
		Items:      items,
		Pagination: types.NewPaginationResponse(len(items), len(items), 0),
	}, nil
}

func (s *memberService) Join(ctx context.Context, tenantID string, req dto.JoinRequest) (*dto.JoinResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	t, err := s.TenantRepo.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !t.HasProducts() {
		return nil, ierr.NewError("chapter not ready for signups").
			WithHint("The chapter has not finished payment setup").
			Mark(ierr.ErrInvalidOperation)
	}

	planID := t.MonthlyPlanID
	if req.Tier == types.MembershipTierYearly {
		planID = t.YearlyPlanID
	}

	sub, err := s.PayPalClient.CreateSubscription(ctx, tenantID, paypal.CreateSubscriptionRequest{
		PlanID:     planID,
		PayerEmail: req.Email,
		ReturnURL:  req.ReturnURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("started membership subscription",
		"tenant_id", tenantID,
		"subscription_id", sub.ID,
		"tier", req.Tier,
	)
	return &dto.JoinResponse{
		SubscriptionID: sub.ID,
		ApprovalURL:    sub.ApprovalLink(),
		Status:         sub.Status,
	}, nil
}
