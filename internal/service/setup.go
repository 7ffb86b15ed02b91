package service

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/suicidekings/carclub/internal/api/dto"
	"github.com/suicidekings/carclub/internal/domain/tenant"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/paypal"
	"github.com/suicidekings/carclub/internal/types"
)

// SetupService walks a chapter through payment provisioning. The flow is
// strictly ordered; each step checks that everything before it has run, and
// completed steps may be re-run without regressing the cursor.
type SetupService interface {
	Status(ctx context.Context, tenantID string) (*dto.SetupStatusResponse, error)
	ConfigureCredentials(ctx context.Context, tenantID string, req dto.UpdatePaymentSettingsRequest) (*dto.SetupStepResponse, error)
	TestConnection(ctx context.Context, tenantID string) (*dto.SetupStepResponse, error)
	ConfigurePricing(ctx context.Context, tenantID string, req dto.UpdatePricingRequest) (*dto.SetupStepResponse, error)
	ProvisionProducts(ctx context.Context, tenantID string) (*dto.SetupStepResponse, error)
	ConfigureWebhooks(ctx context.Context, tenantID string, req dto.ConfigureWebhooksRequest) (*dto.SetupStepResponse, error)
}

type setupService struct {
	ServiceParams
}

func NewSetupService(params ServiceParams) SetupService {
	return &setupService{ServiceParams: params}
}

func (s *setupService) Status(ctx context.Context, tenantID string) (*dto.SetupStatusResponse, error) {
	t, err := s.TenantRepo.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	cursor := t.LastCompletedStep
	next := cursor.Next()
	steps := make([]dto.SetupStepStatus, 0, len(types.SetupSteps()))
	for _, step := range types.SetupSteps() {
		steps = append(steps, dto.SetupStepStatus{
			Step:      step,
			Completed: step.Index() <= cursor.Index(),
			Current:   step == next && cursor != types.SetupStepComplete,
		})
	}

	return &dto.SetupStatusResponse{
		TenantID:          t.ID,
		LastCompletedStep: cursor,
		NextStep:          next,
		Complete:          cursor == types.SetupStepComplete,
		Steps:             steps,
	}, nil
}

// requireStep loads the tenant and checks the step is either the next one
// in the flow or a re-run of an already completed step.
func (s *setupService) requireStep(ctx context.Context, tenantID string, step types.SetupStep) (*tenant.Tenant, error) {
	t, err := s.TenantRepo.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if step.Index() > t.LastCompletedStep.Index()+1 {
		return nil, ierr.NewError("setup step out of order").
			WithHintf("Step %s requires completing %s first", step, t.LastCompletedStep.Next()).
			Mark(ierr.ErrInvalidOperation)
	}
	return t, nil
}

// advance moves the cursor forward, never backward, and persists it.
func (s *setupService) advance(ctx context.Context, t *tenant.Tenant, step types.SetupStep) (*dto.SetupStepResponse, error) {
	if step.Index() > t.LastCompletedStep.Index() {
		t.LastCompletedStep = step
		if err := s.TenantRepo.Update(ctx, t); err != nil {
			return nil, err
		}
	}

	s.Logger.Infow("setup step completed",
		"tenant_id", t.ID,
		"step", step,
		"cursor", t.LastCompletedStep,
	)
	return &dto.SetupStepResponse{
		Step:              step,
		LastCompletedStep: t.LastCompletedStep,
		NextStep:          t.LastCompletedStep.Next(),
		Complete:          t.LastCompletedStep == types.SetupStepComplete,
	}, nil
}

func (s *setupService) ConfigureCredentials(ctx context.Context, tenantID string, req dto.UpdatePaymentSettingsRequest) (*dto.SetupStepResponse, error) {
	t, err := s.requireStep(ctx, tenantID, types.SetupStepCredentials)
	if err != nil {
		return nil, err
	}

	tenantSvc := NewTenantService(s.ServiceParams)
	if _, err := tenantSvc.UpdatePaymentSettings(ctx, tenantID, req); err != nil {
		return nil, err
	}

	// Reload so the cursor update does not clobber the settings write.
	t, err = s.TenantRepo.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.advance(ctx, t, types.SetupStepCredentials)
}

// TestConnection proves the stored credentials against the live provider.
// Transient provider hiccups are retried briefly before the step fails.
func (s *setupService) TestConnection(ctx context.Context, tenantID string) (*dto.SetupStepResponse, error) {
	t, err := s.requireStep(ctx, tenantID, types.SetupStepTest)
	if err != nil {
		return nil, err
	}

	operation := func() error {
		err := s.PayPalClient.TestConnection(ctx, tenantID)
		if err != nil && (ierr.IsCredentialsMissing(err) || ierr.Is(err, ierr.ErrProviderAuth)) {
			// Bad credentials will not fix themselves; fail fast.
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(
		backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	return s.advance(ctx, t, types.SetupStepTest)
}

func (s *setupService) ConfigurePricing(ctx context.Context, tenantID string, req dto.UpdatePricingRequest) (*dto.SetupStepResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	t, err := s.requireStep(ctx, tenantID, types.SetupStepPricing)
	if err != nil {
		return nil, err
	}

	t.MonthlyAmount = req.MonthlyAmount
	t.YearlyAmount = req.YearlyAmount
	t.Currency = req.Currency
	if err := s.TenantRepo.Update(ctx, t); err != nil {
		return nil, err
	}

	return s.advance(ctx, t, types.SetupStepPricing)
}

// ProvisionProducts creates the provider-side catalog product and one
// billing plan per cadence, then records their ids on the tenant.
func (s *setupService) ProvisionProducts(ctx context.Context, tenantID string) (*dto.SetupStepResponse, error) {
	t, err := s.requireStep(ctx, tenantID, types.SetupStepProducts)
	if err != nil {
		return nil, err
	}
	if !t.HasPricing() {
		return nil, ierr.NewError("pricing not configured").
			WithHint("Configure membership pricing before provisioning products").
			Mark(ierr.ErrInvalidOperation)
	}

	if t.ProductID == "" {
		product, err := s.PayPalClient.CreateProduct(ctx, tenantID, paypal.CreateProductRequest{
			Name:        fmt.Sprintf("%s Membership", t.Name),
			Description: fmt.Sprintf("Club membership for %s", t.Name),
			Type:        "SERVICE",
			Category:    "SOCIAL_CLUBS",
		})
		if err != nil {
			return nil, err
		}
		t.ProductID = product.ID
		if err := s.TenantRepo.Update(ctx, t); err != nil {
			return nil, err
		}
	}

	if t.MonthlyPlanID == "" {
		plan, err := s.PayPalClient.CreateBillingPlan(ctx, tenantID, paypal.CreatePlanRequest{
			ProductID:    t.ProductID,
			Name:         fmt.Sprintf("%s Monthly Membership", t.Name),
			IntervalUnit: "MONTH",
			Amount:       t.MonthlyAmount.StringFixed(2),
			Currency:     t.Currency,
		})
		if err != nil {
			return nil, err
		}
		t.MonthlyPlanID = plan.ID
		if err := s.TenantRepo.Update(ctx, t); err != nil {
			return nil, err
		}
	}

	if t.YearlyPlanID == "" {
		plan, err := s.PayPalClient.CreateBillingPlan(ctx, tenantID, paypal.CreatePlanRequest{
			ProductID:    t.ProductID,
			Name:         fmt.Sprintf("%s Yearly Membership", t.Name),
			IntervalUnit: "YEAR",
			Amount:       t.YearlyAmount.StringFixed(2),
			Currency:     t.Currency,
		})
		if err != nil {
			return nil, err
		}
		t.YearlyPlanID = plan.ID
		if err := s.TenantRepo.Update(ctx, t); err != nil {
			return nil, err
		}
	}

	return s.advance(ctx, t, types.SetupStepProducts)
}

// ConfigureWebhooks records the provider webhook id and closes the flow;
// the webhooks step is the last one that does any work.
func (s *setupService) ConfigureWebhooks(ctx context.Context, tenantID string, req dto.ConfigureWebhooksRequest) (*dto.SetupStepResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	t, err := s.requireStep(ctx, tenantID, types.SetupStepWebhooks)
	if err != nil {
		return nil, err
	}
	if t.PaymentSettings == nil {
		return nil, ierr.NewError("credentials not configured").
			WithHint("Configure credentials before webhooks").
			Mark(ierr.ErrInvalidOperation)
	}

	t.PaymentSettings.WebhookID = req.WebhookID
	if err := s.TenantRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.Resolver.InvalidateTenant(ctx, tenantID)

	return s.advance(ctx, t, types.SetupStepComplete)
}
