package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suicidekings/carclub/internal/api"
	v1 "github.com/suicidekings/carclub/internal/api/v1"
	"github.com/suicidekings/carclub/internal/cache"
	"github.com/suicidekings/carclub/internal/config"
	"github.com/suicidekings/carclub/internal/email"
	"github.com/suicidekings/carclub/internal/httpclient"
	"github.com/suicidekings/carclub/internal/logger"
	"github.com/suicidekings/carclub/internal/paypal"
	"github.com/suicidekings/carclub/internal/postgres"
	"github.com/suicidekings/carclub/internal/repository"
	"github.com/suicidekings/carclub/internal/security"
	"github.com/suicidekings/carclub/internal/sentry"
	"github.com/suicidekings/carclub/internal/service"
	"github.com/suicidekings/carclub/internal/validator"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Monitoring
			sentry.NewSentryService,

			// Cache
			cache.NewInMemoryCache,

			// Postgres
			postgres.NewDB,

			// Secrets
			security.NewEncryptionService,

			// HTTP client
			httpclient.NewDefaultClient,

			// Email
			email.NewClient,
			email.NewService,

			// Provider
			paypal.NewCredentialResolver,
			paypal.NewClient,

			// Repositories
			repository.NewTenantRepository,
			repository.NewMemberRepository,
			repository.NewWebhookEventRepository,
			repository.NewTransactionRepository,

			// Services
			service.NewServiceParams,
			service.NewTenantService,
			service.NewMemberService,
			service.NewWebhookService,
			service.NewSetupService,
			service.NewHealthService,
			service.NewTransactionService,

			// API
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			sentry.RegisterHooks,
			startServer,
		),
	)

	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	tenantService service.TenantService,
	memberService service.MemberService,
	webhookService service.WebhookService,
	setupService service.SetupService,
	healthService service.HealthService,
	transactionService service.TransactionService,
) api.Handlers {
	return api.Handlers{
		Tenant:      v1.NewTenantHandler(tenantService, logger),
		Member:      v1.NewMemberHandler(memberService, logger),
		Webhook:     v1.NewWebhookHandler(webhookService, logger),
		Setup:       v1.NewSetupHandler(setupService, logger),
		Health:      v1.NewHealthHandler(healthService, logger),
		Transaction: v1.NewTransactionHandler(transactionService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	db *postgres.DB,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			db.Close()
			return nil
		},
	})
}
