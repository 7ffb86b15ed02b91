package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
	"github.com/suicidekings/carclub/internal/api/dto"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/types"
)

// HealthService grades each chapter's payment integration. A chapter is
// unhealthy when it cannot take payments (no credentials) or when webhook
// processing is failing faster than the configured thresholds allow.
type HealthService interface {
	TenantHealth(ctx context.Context, tenantID string) (*dto.TenantHealthResponse, error)
	SystemHealth(ctx context.Context) (*dto.SystemHealthResponse, error)
}

type healthService struct {
	ServiceParams
}

func NewHealthService(params ServiceParams) HealthService {
	return &healthService{ServiceParams: params}
}

func (s *healthService) TenantHealth(ctx context.Context, tenantID string) (*dto.TenantHealthResponse, error) {
	t, err := s.TenantRepo.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	status := types.ConnectionStatusOK
	issues := []string{}
	stats := dto.TenantHealthStats{
		Currency:      t.Currency,
		SetupComplete: t.LastCompletedStep == types.SetupStepComplete,
	}

	creds, err := s.Resolver.Resolve(ctx, tenantID)
	switch {
	case err == nil:
		stats.CredentialsSource = string(creds.Source)
	case ierr.IsCredentialsMissing(err):
		status = status.Worst(types.ConnectionStatusError)
		issues = append(issues, "No PayPal credentials configured")
	default:
		return nil, err
	}

	if !stats.SetupComplete {
		status = status.Worst(types.ConnectionStatusWarning)
		issues = append(issues, fmt.Sprintf("Setup incomplete, next step: %s", t.LastCompletedStep.Next()))
	}

	since := time.Now().UTC().Add(-s.Config.Webhook.FailureWindow)
	failures, err := s.WebhookEventRepo.CountFailuresSince(ctx, tenantID, since)
	if err != nil {
		return nil, err
	}
	stats.WebhookFailures = failures
	whStats, err := s.WebhookEventRepo.Stats(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	stats.Webhooks = *whStats
	switch {
	case failures > s.Config.Webhook.FailureErrorThreshold:
		status = status.Worst(types.ConnectionStatusError)
		issues = append(issues, fmt.Sprintf("%d webhook failures in the last %s", failures, s.Config.Webhook.FailureWindow))
	case failures > s.Config.Webhook.FailureWarningThreshold:
		status = status.Worst(types.ConnectionStatusWarning)
		issues = append(issues, fmt.Sprintf("%d webhook failures in the last %s", failures, s.Config.Webhook.FailureWindow))
	}

	members, err := s.MemberRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		switch m.SubscriptionStatus {
		case types.SubscriptionStatusActive:
			stats.ActiveMembers++
		case types.SubscriptionStatusPastDue:
			stats.PastDueMembers++
		}
	}

	txns, err := s.TransactionRepo.List(ctx, &types.TransactionFilter{TenantID: tenantID})
	if err != nil {
		return nil, err
	}
	stats.Transactions.Total = len(txns)
	revenue := decimal.Zero
	for _, txn := range txns {
		switch txn.Status {
		case types.TransactionStatusCompleted:
			stats.Transactions.Successful++
		case types.TransactionStatusFailed:
			stats.Transactions.Failed++
		case types.TransactionStatusPending:
			stats.Transactions.Pending++
		}
		switch txn.Type {
		case types.TransactionTypePayment, types.TransactionTypeCaptureCompleted:
			revenue = revenue.Add(txn.Amount)
		case types.TransactionTypeRefund:
			revenue = revenue.Sub(txn.Amount)
		}
	}
	stats.Revenue = revenue

	return &dto.TenantHealthResponse{
		TenantID: t.ID,
		Name:     t.Name,
		Status:   status,
		Issues:   issues,
		Stats:    stats,
	}, nil
}

// SystemHealth fans out across every active chapter concurrently and rolls
// the per-chapter statuses up to the worst one seen.
func (s *healthService) SystemHealth(ctx context.Context) (*dto.SystemHealthResponse, error) {
	tenants, err := s.TenantRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	p := pool.NewWithResults[*dto.TenantHealthResponse]().
		WithContext(ctx).
		WithMaxGoroutines(8)

	for _, t := range tenants {
		tenantID := t.ID
		p.Go(func(ctx context.Context) (*dto.TenantHealthResponse, error) {
			return s.TenantHealth(ctx, tenantID)
		})
	}

	results, err := p.Wait()
	if err != nil {
		return nil, err
	}

	overall := types.ConnectionStatusOK
	for _, r := range results {
		overall = overall.Worst(r.Status)
	}

	return &dto.SystemHealthResponse{
		Status:  overall,
		Tenants: results,
	}, nil
}
