package service

import (
	"context"

	"github.com/suicidekings/carclub/internal/cache"
	"github.com/suicidekings/carclub/internal/config"
	"github.com/suicidekings/carclub/internal/domain/member"
	"github.com/suicidekings/carclub/internal/domain/tenant"
	"github.com/suicidekings/carclub/internal/domain/transaction"
	"github.com/suicidekings/carclub/internal/domain/webhookevent"
	"github.com/suicidekings/carclub/internal/email"
	"github.com/suicidekings/carclub/internal/logger"
	"github.com/suicidekings/carclub/internal/paypal"
	"github.com/suicidekings/carclub/internal/postgres"
	"github.com/suicidekings/carclub/internal/security"
)

// TxRunner runs fn inside one database transaction so a group of writes
// commits or rolls back together.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger     *logger.Logger
	Config     *config.Configuration
	Cache      cache.Cache
	Encryption security.EncryptionService
	DB         TxRunner

	// Provider
	PayPalClient paypal.Client
	Resolver     *paypal.CredentialResolver

	// Repositories
	TenantRepo       tenant.Repository
	MemberRepo       member.Repository
	WebhookEventRepo webhookevent.Repository
	TransactionRepo  transaction.Repository

	// Notifications
	Email *email.Service
}

// NewServiceParams assembles the shared dependency bundle for services
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	cache cache.Cache,
	encryption security.EncryptionService,
	db *postgres.DB,
	paypalClient paypal.Client,
	resolver *paypal.CredentialResolver,
	tenantRepo tenant.Repository,
	memberRepo member.Repository,
	webhookEventRepo webhookevent.Repository,
	transactionRepo transaction.Repository,
	emailService *email.Service,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		Cache:            cache,
		Encryption:       encryption,
		DB:               db,
		PayPalClient:     paypalClient,
		Resolver:         resolver,
		TenantRepo:       tenantRepo,
		MemberRepo:       memberRepo,
		WebhookEventRepo: webhookEventRepo,
		TransactionRepo:  transactionRepo,
		Email:            emailService,
	}
}
