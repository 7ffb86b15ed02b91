package paypal

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/suicidekings/carclub/internal/cache"
	"github.com/suicidekings/carclub/internal/config"
	"github.com/suicidekings/carclub/internal/domain/tenant"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/httpclient"
	"github.com/suicidekings/carclub/internal/logger"
	"github.com/suicidekings/carclub/internal/security"
)

const (
	sandboxAPIBase    = "https://api-m.sandbox.paypal.com"
	productionAPIBase = "https://api-m.paypal.com"

	// tokenExpirySafetyMargin is shaved off the provider-reported token
	// lifetime so a cached token is never used within a minute of expiry.
	tokenExpirySafetyMargin = 60 * time.Second
)

// CredentialResolver resolves the credential pair and access token to use
// for a given tenant. Tenants with their own configured pair get it;
// everyone else shares the process-wide default pair, tracked under a
// separate cache key so tenant tokens are never mixed with the shared one.
type CredentialResolver struct {
	tenantRepo tenant.Repository
	encryption security.EncryptionService
	client     httpclient.Client
	cache      cache.Cache
	cfg        *config.Configuration
	logger     *logger.Logger
}

// NewCredentialResolver creates a new credential resolver
func NewCredentialResolver(
	tenantRepo tenant.Repository,
	encryption security.EncryptionService,
	client httpclient.Client,
	cache cache.Cache,
	cfg *config.Configuration,
	logger *logger.Logger,
) *CredentialResolver {
	return &CredentialResolver{
		tenantRepo: tenantRepo,
		encryption: encryption,
		client:     client,
		cache:      cache,
		cfg:        cfg,
		logger:     logger,
	}
}

// Resolve returns the decrypted credential set for the tenant, falling back
// to the configured default pair when the tenant has none of its own.
func (r *CredentialResolver) Resolve(ctx context.Context, tenantID string) (*Credentials, error) {
	t, err := r.tenantRepo.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if t.HasCredentials() {
		secret, err := r.encryption.Decrypt(t.PaymentSettings.ClientSecret)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Stored payment credentials could not be decrypted").
				Mark(ierr.ErrSystem)
		}
		return &Credentials{
			ClientID:     t.PaymentSettings.ClientID,
			ClientSecret: secret,
			WebhookID:    t.PaymentSettings.WebhookID,
			IsProduction: t.PaymentSettings.IsProduction,
			Source:       CredentialSourceTenant,
		}, nil
	}

	if r.cfg.PayPal.HasDefaultCredentials() {
		r.logger.Debugw("using default provider credentials", "tenant_id", tenantID)
		return &Credentials{
			ClientID:     r.cfg.PayPal.DefaultClientID,
			ClientSecret: r.cfg.PayPal.DefaultClientSecret,
			WebhookID:    r.cfg.PayPal.DefaultWebhookID,
			IsProduction: !r.cfg.PayPal.Sandbox,
			Source:       CredentialSourceGlobal,
		}, nil
	}

	return nil, ierr.NewError("no payment credentials configured").
		WithHintf("Chapter %s has no PayPal credentials and no default pair is configured", tenantID).
		Mark(ierr.ErrCredentialsMissing)
}

// APIBase returns the provider endpoint for the credential set.
func (r *CredentialResolver) APIBase(creds *Credentials) string {
	if creds.Source == CredentialSourceGlobal && r.cfg.PayPal.APIBase != "" {
		return r.cfg.PayPal.GetAPIBase()
	}
	if creds.IsProduction {
		return productionAPIBase
	}
	return sandboxAPIBase
}

// Token returns a valid access token for the tenant, exchanging credentials
// with the provider only on cache miss.
func (r *CredentialResolver) Token(ctx context.Context, tenantID string) (string, *Credentials, error) {
	creds, err := r.Resolve(ctx, tenantID)
	if err != nil {
		return "", nil, err
	}

	key := r.tokenCacheKey(tenantID, creds)
	if cached, found := r.cache.Get(ctx, key); found {
		if token, ok := cached.(string); ok {
			return token, creds, nil
		}
	}

	token, ttl, err := r.exchangeToken(ctx, creds)
	if err != nil {
		return "", nil, err
	}

	r.cache.Set(ctx, key, token, ttl)
	r.logger.Debugw("exchanged provider access token",
		"tenant_id", tenantID,
		"credential_source", creds.Source,
		"ttl", ttl,
	)
	return token, creds, nil
}

// InvalidateToken drops the cached token for the tenant so the next call
// performs a fresh exchange. Used when the provider rejects a token early.
func (r *CredentialResolver) InvalidateToken(ctx context.Context, tenantID string, creds *Credentials) {
	r.cache.Delete(ctx, r.tokenCacheKey(tenantID, creds))
}

// InvalidateTenant drops all cached state for a tenant after its
// credentials change.
func (r *CredentialResolver) InvalidateTenant(ctx context.Context, tenantID string) {
	r.cache.Delete(ctx, cache.GenerateKey(cache.PrefixProviderToken, "tenant", tenantID))
}

func (r *CredentialResolver) tokenCacheKey(tenantID string, creds *Credentials) string {
	// Tokens for the shared default pair live under one key; a per-tenant
	// key there would trigger one exchange per tenant for the same pair.
	if creds.Source == CredentialSourceGlobal {
		return cache.GenerateKey(cache.PrefixProviderToken, "global")
	}
	return cache.GenerateKey(cache.PrefixProviderToken, "tenant", tenantID)
}

func (r *CredentialResolver) exchangeToken(ctx context.Context, creds *Credentials) (string, time.Duration, error) {
	basic := base64.StdEncoding.EncodeToString([]byte(creds.ClientID + ":" + creds.ClientSecret))

	resp, err := r.client.Send(ctx, &httpclient.Request{
		Method: "POST",
		URL:    r.APIBase(creds) + "/v1/oauth2/token",
		Headers: map[string]string{
			"Authorization": "Basic " + basic,
			"Content-Type":  "application/x-www-form-urlencoded",
		},
		Body: []byte("grant_type=client_credentials"),
	})
	if err != nil {
		if httpErr, ok := httpclient.IsHTTPError(err); ok && httpErr.StatusCode == 401 {
			return "", 0, ierr.WithError(err).
				WithHint("PayPal rejected the configured credentials").
				Mark(ierr.ErrProviderAuth)
		}
		return "", 0, ierr.WithError(err).
			WithHint("Token exchange with PayPal failed").
			Mark(ierr.ErrProviderAuth)
	}

	var token tokenResponse
	if err := json.Unmarshal(resp.Body, &token); err != nil {
		return "", 0, ierr.WithError(err).
			WithHint("PayPal returned an unexpected token response").
			Mark(ierr.ErrProviderAuth)
	}
	if token.AccessToken == "" {
		return "", 0, ierr.NewError("empty access token").
			WithHint("PayPal returned an empty access token").
			Mark(ierr.ErrProviderAuth)
	}

	ttl := time.Duration(token.ExpiresIn)*time.Second - tokenExpirySafetyMargin
	if ttl <= 0 {
		ttl = time.Minute
	}
	return token.AccessToken, ttl, nil
}
