package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/suicidekings/carclub/internal/cache"
	"github.com/suicidekings/carclub/internal/config"
	"github.com/suicidekings/carclub/internal/domain/member"
	"github.com/suicidekings/carclub/internal/domain/tenant"
	"github.com/suicidekings/carclub/internal/domain/transaction"
	"github.com/suicidekings/carclub/internal/domain/webhookevent"
	"github.com/suicidekings/carclub/internal/email"
	"github.com/suicidekings/carclub/internal/logger"
	"github.com/suicidekings/carclub/internal/paypal"
	"github.com/suicidekings/carclub/internal/security"
	"github.com/suicidekings/carclub/internal/types"
	"github.com/suicidekings/carclub/internal/validator"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	TenantRepo       tenant.Repository
	MemberRepo       member.Repository
	WebhookEventRepo webhookevent.Repository
	TransactionRepo  transaction.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx          context.Context
	stores       Stores
	cache        cache.Cache
	config       *config.Configuration
	logger       *logger.Logger
	encryption   security.EncryptionService
	paypalClient *FakePayPalClient
	httpClient   *MockHTTPClient
	resolver     *paypal.CredentialResolver
	emailService *email.Service
	txRunner     *InlineTxRunner
	now          time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Secrets.EncryptionKey = "test-encryption-key-for-unit-tests-only"
	s.config = cfg

	var err error
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}

	s.encryption, err = security.NewEncryptionService(cfg, s.logger)
	if err != nil {
		s.T().Fatalf("failed to create encryption service: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		TenantRepo:       NewInMemoryTenantStore(),
		MemberRepo:       NewInMemoryMemberStore(),
		WebhookEventRepo: NewInMemoryWebhookEventStore(),
		TransactionRepo:  NewInMemoryTransactionStore(),
	}

	s.cache = cache.NewInMemoryCache()
	s.paypalClient = NewFakePayPalClient()
	s.httpClient = NewMockHTTPClient()
	s.resolver = paypal.NewCredentialResolver(
		s.stores.TenantRepo,
		s.encryption,
		s.httpClient,
		s.cache,
		s.config,
		s.logger,
	)
	s.emailService = email.NewService(email.NewClient(s.config), s.logger)
	s.txRunner = NewInlineTxRunner()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.TenantRepo.(*InMemoryTenantStore).Clear()
	s.stores.MemberRepo.(*InMemoryMemberStore).Clear()
	s.stores.WebhookEventRepo.(*InMemoryWebhookEventStore).Clear()
	s.stores.TransactionRepo.(*InMemoryTransactionStore).Clear()
	s.paypalClient.Clear()
	s.httpClient.Clear()
	s.txRunner.Clear()
	s.cache.Flush(s.ctx)
}

// ClearStores clears all test data
func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetCache returns the test cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetEncryption returns the test encryption service
func (s *BaseServiceTestSuite) GetEncryption() security.EncryptionService {
	return s.encryption
}

// GetPayPalClient returns the fake provider client
func (s *BaseServiceTestSuite) GetPayPalClient() *FakePayPalClient {
	return s.paypalClient
}

// GetHTTPClient returns the mock HTTP client backing the resolver
func (s *BaseServiceTestSuite) GetHTTPClient() *MockHTTPClient {
	return s.httpClient
}

// GetResolver returns the credential resolver wired to the test stores
func (s *BaseServiceTestSuite) GetResolver() *paypal.CredentialResolver {
	return s.resolver
}

// GetEmailService returns the test email service (no-op sender)
func (s *BaseServiceTestSuite) GetEmailService() *email.Service {
	return s.emailService
}

// GetTxRunner returns the counting transaction runner
func (s *BaseServiceTestSuite) GetTxRunner() *InlineTxRunner {
	return s.txRunner
}

// GetNow returns the suite's reference time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}

// GetUUID returns a new unique identifier for test fixtures
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
