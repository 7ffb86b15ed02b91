package service

import (
	"github.com/suicidekings/carclub/internal/testutil"
)

// newTestServiceParams wires ServiceParams from a base suite's in-memory
// stores and fakes.
func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		Cache:            s.GetCache(),
		Encryption:       s.GetEncryption(),
		DB:               s.GetTxRunner(),
		PayPalClient:     s.GetPayPalClient(),
		Resolver:         s.GetResolver(),
		TenantRepo:       stores.TenantRepo,
		MemberRepo:       stores.MemberRepo,
		WebhookEventRepo: stores.WebhookEventRepo,
		TransactionRepo:  stores.TransactionRepo,
		Email:            s.GetEmailService(),
	}
}
