package service

import (
	"context"

	"github.com/suicidekings/carclub/internal/api/dto"
	"github.com/suicidekings/carclub/internal/cache"
	"github.com/suicidekings/carclub/internal/domain/tenant"
	ierr "github.com/suicidekings/carclub/internal/errors"
)

type TenantService interface {
	CreateTenant(ctx context.Context, req dto.CreateTenantRequest) (*dto.TenantResponse, error)
	GetTenant(ctx context.Context, id string) (*dto.TenantResponse, error)
	ListTenants(ctx context.Context) ([]*dto.TenantResponse, error)
	UpdateTenant(ctx context.Context, id string, req dto.UpdateTenantRequest) (*dto.TenantResponse, error)
	UpdatePaymentSettings(ctx context.Context, id string, req dto.UpdatePaymentSettingsRequest) (*dto.TenantResponse, error)
}

type tenantService struct {
	ServiceParams
}

func NewTenantService(params ServiceParams) TenantService {
	return &tenantService{ServiceParams: params}
}

func (s *tenantService) CreateTenant(ctx context.Context, req dto.CreateTenantRequest) (*dto.TenantResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	newTenant := req.ToTenant()
	if err := newTenant.Validate(); err != nil {
		return nil, err
	}

	if err := s.TenantRepo.Create(ctx, newTenant); err != nil {
		return nil, err
	}

	s.Logger.Infow("created chapter", "tenant_id", newTenant.ID, "name", newTenant.Name)
	return dto.NewTenantResponse(newTenant), nil
}

func (s *tenantService) GetTenant(ctx context.Context, id string) (*dto.TenantResponse, error) {
	t, err := s.TenantRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewTenantResponse(t), nil
}

func (s *tenantService) ListTenants(ctx context.Context) ([]*dto.TenantResponse, error) {
	tenants, err := s.TenantRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.TenantResponse, len(tenants))
	for i, t := range tenants {
		responses[i] = dto.NewTenantResponse(t)
	}
	return responses, nil
}

func (s *tenantService) UpdateTenant(ctx context.Context, id string, req dto.UpdateTenantRequest) (*dto.TenantResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	t, err := s.TenantRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.City != nil {
		t.City = *req.City
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.TenantRepo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, id)
	return dto.NewTenantResponse(t), nil
}

// UpdatePaymentSettings stores a chapter's credential pair, encrypting the
// secret at rest. Cached tokens for the tenant are dropped so the next
// provider call exchanges against the new pair.
func (s *tenantService) UpdatePaymentSettings(ctx context.Context, id string, req dto.UpdatePaymentSettingsRequest) (*dto.TenantResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	t, err := s.TenantRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	encryptedSecret, err := s.Encryption.Encrypt(req.ClientSecret)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to encrypt payment credentials").
			Mark(ierr.ErrSystem)
	}

	t.PaymentSettings = &tenant.PaymentSettings{
		ClientID:     req.ClientID,
		ClientSecret: encryptedSecret,
		WebhookID:    req.WebhookID,
		IsProduction: req.IsProduction,
	}

	if err := s.TenantRepo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.Resolver.InvalidateTenant(ctx, id)
	s.invalidateCache(ctx, id)
	s.Logger.Infow("updated payment settings",
		"tenant_id", id,
		"client_id", dto.MaskCredential(req.ClientID),
		"is_production", req.IsProduction,
	)
	return dto.NewTenantResponse(t), nil
}

func (s *tenantService) invalidateCache(ctx context.Context, tenantID string) {
	s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixTenant, tenantID))
}
