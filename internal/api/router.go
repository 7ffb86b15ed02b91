package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/suicidekings/carclub/internal/api/v1"
	"github.com/suicidekings/carclub/internal/config"
	"github.com/suicidekings/carclub/internal/logger"
	"github.com/suicidekings/carclub/internal/rest/middleware"
)

type Handlers struct {
	Tenant      *v1.TenantHandler
	Member      *v1.MemberHandler
	Webhook     *v1.WebhookHandler
	Setup       *v1.SetupHandler
	Health      *v1.HealthHandler
	Transaction *v1.TransactionHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.SentryMiddleware(cfg))
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.Health.Liveness)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// System-wide health rollup
	router.GET("/health", handlers.Health.SystemHealth)

	tenants := router.Group("/tenants")
	{
		tenants.POST("", handlers.Tenant.CreateTenant)
		tenants.GET("", handlers.Tenant.ListTenants)
		tenants.GET("/:id", handlers.Tenant.GetTenant)
		tenants.PUT("/:id", handlers.Tenant.UpdateTenant)
		tenants.PUT("/:id/payments/settings", handlers.Tenant.UpdatePaymentSettings)

		// Inbound provider notifications
		tenants.POST("/:id/payments/webhooks", handlers.Webhook.HandleWebhook)
		tenants.GET("/:id/payments/webhooks", handlers.Webhook.ListWebhookEvents)

		// Provisioning flow
		tenants.GET("/:id/setup", handlers.Setup.GetStatus)
		tenants.POST("/:id/setup/credentials", handlers.Setup.ConfigureCredentials)
		tenants.POST("/:id/setup/test", handlers.Setup.TestConnection)
		tenants.POST("/:id/setup/pricing", handlers.Setup.ConfigurePricing)
		tenants.POST("/:id/setup/products", handlers.Setup.ProvisionProducts)
		tenants.POST("/:id/setup/webhooks", handlers.Setup.ConfigureWebhooks)

		// Membership
		tenants.GET("/:id/members", handlers.Member.ListMembers)
		tenants.GET("/:id/members/:memberId", handlers.Member.GetMember)
		tenants.POST("/:id/join", handlers.Member.Join)

		// Ledger
		tenants.GET("/:id/transactions", handlers.Transaction.ListTransactions)
		tenants.GET("/:id/transactions/:txnId", handlers.Transaction.GetTransaction)

		// Health
		tenants.GET("/:id/health", handlers.Health.TenantHealth)
	}
}
