package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/suicidekings/carclub/internal/api/dto"
	"github.com/suicidekings/carclub/internal/domain/member"
	"github.com/suicidekings/carclub/internal/domain/tenant"
	"github.com/suicidekings/carclub/internal/domain/transaction"
	"github.com/suicidekings/carclub/internal/domain/webhookevent"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/paypal"
	"github.com/suicidekings/carclub/internal/types"
)

type WebhookService interface {
	// ProcessWebhook handles one inbound provider notification. The
	// delivery is logged before any handling runs. An ack is always
	// returned; the error is non-nil only for signature rejections, which
	// the transport must answer with 401 so the provider redelivers.
	// Every other failure is recorded on the log entry and acknowledged
	// so the provider does not pile up redeliveries for events we could
	// not handle.
	ProcessWebhook(ctx context.Context, tenantID string, headers paypal.SignatureHeaders, body []byte) (*dto.WebhookAckResponse, error)
	ListWebhookEvents(ctx context.Context, filter *webhookevent.Filter) (*dto.ListWebhookEventsResponse, error)
}

type webhookService struct {
	ServiceParams
}

func NewWebhookService(params ServiceParams) WebhookService {
	return &webhookService{ServiceParams: params}
}

// providerEvent is the minimal payload shape the processor needs; the full
// raw body is preserved in the event log.
type providerEvent struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID         string `json:"id"`
		State      string `json:"state"`
		PlanID     string `json:"plan_id"`
		CustomID   string `json:"custom_id"`
		Subscriber struct {
			EmailAddress string `json:"email_address"`
			Name         struct {
				GivenName string `json:"given_name"`
				Surname   string `json:"surname"`
			} `json:"name"`
		} `json:"subscriber"`
		BillingInfo struct {
			NextBillingTime *time.Time `json:"next_billing_time"`
		} `json:"billing_info"`
		// Subscription-linked payments reference the agreement they
		// bill against.
		BillingAgreementID string `json:"billing_agreement_id"`
		// PAYMENT.SALE.* carries amount.total, PAYMENT.CAPTURE.*
		// carries amount.value.
		Amount struct {
			Total        string `json:"total"`
			Value        string `json:"value"`
			Currency     string `json:"currency"`
			CurrencyCode string `json:"currency_code"`
		} `json:"amount"`
		Payer struct {
			PayerInfo struct {
				Email string `json:"email"`
			} `json:"payer_info"`
		} `json:"payer"`
	} `json:"resource"`
}

func (e *providerEvent) amount() (decimal.Decimal, string) {
	raw := e.Resource.Amount.Total
	if raw == "" {
		raw = e.Resource.Amount.Value
	}
	currency := e.Resource.Amount.Currency
	if currency == "" {
		currency = e.Resource.Amount.CurrencyCode
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, currency
	}
	return amount, currency
}

func (e *providerEvent) payerEmail() string {
	if e.Resource.Subscriber.EmailAddress != "" {
		return e.Resource.Subscriber.EmailAddress
	}
	return e.Resource.Payer.PayerInfo.Email
}

func (s *webhookService) ProcessWebhook(ctx context.Context, tenantID string, headers paypal.SignatureHeaders, body []byte) (*dto.WebhookAckResponse, error) {
	var event providerEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.Logger.Warnw("unparseable webhook payload", "tenant_id", tenantID, "error", err)
		// The delivery is still ledgered; only the event type is unknown
		// because the envelope could not be decoded.
		now := time.Now().UTC()
		msg := "unparseable payload: " + err.Error()
		logEntry := &webhookevent.WebhookEvent{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WEBHOOK_EVENT),
			TenantID:       tenantID,
			TransmissionID: headers.TransmissionID,
			Payload:        string(body),
			ErrorMessage:   &msg,
			ReceivedAt:     now,
			ProcessedAt:    &now,
		}
		if err := s.WebhookEventRepo.Create(ctx, logEntry); err != nil {
			s.Logger.Errorw("failed to log webhook event", "tenant_id", tenantID, "error", err)
			return &dto.WebhookAckResponse{Received: true, Message: "event log unavailable"}, nil
		}
		return &dto.WebhookAckResponse{Received: true, EventID: logEntry.ID, Message: "unparseable payload"}, nil
	}

	logEntry := &webhookevent.WebhookEvent{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WEBHOOK_EVENT),
		TenantID:       tenantID,
		TransmissionID: headers.TransmissionID,
		EventType:      event.EventType,
		Payload:        string(body),
		ReceivedAt:     time.Now().UTC(),
	}
	if err := s.WebhookEventRepo.Create(ctx, logEntry); err != nil {
		// Without a log entry there is no audit trail; this is the one
		// case where processing stops before any handling.
		s.Logger.Errorw("failed to log webhook event",
			"tenant_id", tenantID,
			"event_type", event.EventType,
			"error", err,
		)
		return &dto.WebhookAckResponse{Received: true, Message: "event log unavailable"}, nil
	}

	ack := &dto.WebhookAckResponse{Received: true, EventID: logEntry.ID}

	processErr := s.process(ctx, tenantID, &event, body, headers)

	now := time.Now().UTC()
	logEntry.ProcessedAt = &now
	if processErr != nil {
		msg := processErr.Error()
		logEntry.ErrorMessage = &msg
		ack.Message = "processing failed"
		s.Logger.Errorw("webhook processing failed",
			"tenant_id", tenantID,
			"event_id", logEntry.ID,
			"event_type", event.EventType,
			"error", processErr,
		)
	} else {
		// Unknown types are marked processed with no transaction; they
		// carry no error so they never count against failure thresholds.
		logEntry.Processed = true
		ack.Processed = true
		if !types.WebhookEventType(event.EventType).IsKnown() {
			ack.Message = "event type not handled"
			s.Logger.Infow("ignoring unhandled webhook event type",
				"tenant_id", tenantID,
				"event_type", event.EventType,
			)
		}
	}

	if err := s.WebhookEventRepo.Update(ctx, logEntry); err != nil {
		s.Logger.Errorw("failed to record webhook outcome",
			"event_id", logEntry.ID,
			"error", err,
		)
	}

	// Signature rejections are surfaced so the transport answers 401 and
	// the provider redelivers once the configuration is fixed.
	if processErr != nil && ierr.IsSignatureInvalid(processErr) {
		return ack, processErr
	}
	return ack, nil
}

func (s *webhookService) process(ctx context.Context, tenantID string, event *providerEvent, body []byte, headers paypal.SignatureHeaders) error {
	t, err := s.TenantRepo.Get(ctx, tenantID)
	if err != nil {
		return err
	}

	if err := s.PayPalClient.VerifyWebhookSignature(ctx, tenantID, headers, body); err != nil {
		return err
	}

	eventType := types.WebhookEventType(event.EventType)
	switch eventType {
	case types.WebhookEventSubscriptionActivated:
		return s.handleSubscriptionActivated(ctx, t, event)
	case types.WebhookEventSubscriptionCancelled:
		return s.handleSubscriptionEnded(ctx, t, event, types.SubscriptionStatusCancelled, types.TransactionTypeSubscriptionCancelled)
	case types.WebhookEventSubscriptionExpired:
		return s.handleSubscriptionEnded(ctx, t, event, types.SubscriptionStatusExpired, types.TransactionTypeSubscriptionExpired)
	case types.WebhookEventSubscriptionSuspended:
		return s.handleSubscriptionEnded(ctx, t, event, types.SubscriptionStatusSuspended, types.TransactionTypeSubscriptionSuspended)
	case types.WebhookEventPaymentFailed:
		return s.handlePaymentFailed(ctx, t, event)
	case types.WebhookEventSaleCompleted:
		return s.handleSaleCompleted(ctx, t, event)
	case types.WebhookEventCaptureCompleted:
		return s.handleCaptureCompleted(ctx, t, event)
	case types.WebhookEventCaptureRefunded:
		return s.handleCaptureRefunded(ctx, t, event)
	default:
		return nil
	}
}

// recordTransaction appends a ledger entry for the event. A duplicate
// provider event id means this delivery was already fully processed; the
// caller is told to skip any further state changes.
func (s *webhookService) recordTransaction(ctx context.Context, txn *transaction.Transaction) (duplicate bool, err error) {
	if err := txn.Validate(); err != nil {
		return false, err
	}
	if err := s.TransactionRepo.Create(ctx, txn); err != nil {
		if ierr.IsAlreadyExists(err) {
			s.Logger.Infow("replayed provider event, skipping",
				"tenant_id", txn.TenantID,
				"provider_event_id", txn.ProviderEventID,
			)
			return true, nil
		}
		return false, err
	}
	return false, nil
}

func (s *webhookService) handleSubscriptionActivated(ctx context.Context, t *tenant.Tenant, event *providerEvent) error {
	email := member.NormalizeEmail(event.payerEmail())
	if email == "" {
		return ierr.NewError("activation event without payer email").
			WithHint("Cannot match a member without a payer email").
			Mark(ierr.ErrHandlerFailed)
	}

	m, err := s.MemberRepo.GetByEmail(ctx, t.ID, email)
	if err != nil && !ierr.IsNotFound(err) {
		return err
	}
	created := false
	if m == nil || ierr.IsNotFound(err) {
		m = &member.Member{
			ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_MEMBER),
			Email:     email,
			FirstName: event.Resource.Subscriber.Name.GivenName,
			LastName:  event.Resource.Subscriber.Name.Surname,
			BaseModel: types.GetDefaultBaseModel(ctx),
		}
		m.TenantID = t.ID
		created = true
	}

	txn := &transaction.Transaction{
		ID:                     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TRANSACTION),
		TenantID:               t.ID,
		MemberID:               m.ID,
		ProviderEventID:        event.ID,
		ProviderSubscriptionID: event.Resource.ID,
		Type:                   types.TransactionTypeSubscriptionActivated,
		Status:                 types.TransactionStatusCompleted,
		Amount:                 decimal.Zero,
		Currency:               t.Currency,
		PayerEmail:             email,
		CreatedAt:              time.Now().UTC(),
	}

	// Ledger insert and member mutation commit together, so a failed
	// member write rolls the ledger row back and the redelivery can run
	// the whole unit again.
	applied := false
	if err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if duplicate, err := s.recordTransaction(ctx, txn); err != nil || duplicate {
			return err
		}

		now := time.Now().UTC()
		m.SubscriptionID = event.Resource.ID
		m.SubscriptionStatus = types.SubscriptionStatusActive
		m.MembershipStatus = types.MembershipStatusActive
		m.MembershipTier = s.tierForPlan(t, event.Resource.PlanID)
		m.SubscriptionStart = &now
		m.NextBillingDate = event.Resource.BillingInfo.NextBillingTime

		if created {
			if err := s.MemberRepo.Create(ctx, m); err != nil {
				return err
			}
		} else {
			if err := s.MemberRepo.Update(ctx, m); err != nil {
				return err
			}
		}
		applied = true
		return nil
	}); err != nil {
		return err
	}

	if applied {
		s.Email.SendMembershipActivated(ctx, m.Email, t.Name)
	}
	return nil
}

func (s *webhookService) handleSubscriptionEnded(ctx context.Context, t *tenant.Tenant, event *providerEvent, status types.SubscriptionStatus, txnType types.TransactionType) error {
	m, err := s.MemberRepo.GetBySubscriptionID(ctx, t.ID, event.Resource.ID)
	if err != nil {
		return err
	}

	txn := &transaction.Transaction{
		ID:                     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TRANSACTION),
		TenantID:               t.ID,
		MemberID:               m.ID,
		ProviderEventID:        event.ID,
		ProviderSubscriptionID: event.Resource.ID,
		Type:                   txnType,
		Status:                 types.TransactionStatusCompleted,
		Amount:                 decimal.Zero,
		Currency:               t.Currency,
		PayerEmail:             m.Email,
		CreatedAt:              time.Now().UTC(),
	}

	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		if duplicate, err := s.recordTransaction(ctx, txn); err != nil || duplicate {
			return err
		}

		m.SubscriptionStatus = status
		switch status {
		case types.SubscriptionStatusSuspended:
			m.MembershipStatus = types.MembershipStatusSuspended
		default:
			m.MembershipStatus = types.MembershipStatusInactive
		}
		return s.MemberRepo.Update(ctx, m)
	})
}

func (s *webhookService) handlePaymentFailed(ctx context.Context, t *tenant.Tenant, event *providerEvent) error {
	m, err := s.MemberRepo.GetBySubscriptionID(ctx, t.ID, event.Resource.ID)
	if err != nil {
		return err
	}

	amount, currency := event.amount()
	txn := &transaction.Transaction{
		ID:                     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TRANSACTION),
		TenantID:               t.ID,
		MemberID:               m.ID,
		ProviderEventID:        event.ID,
		ProviderSubscriptionID: event.Resource.ID,
		Type:                   types.TransactionTypePaymentFailed,
		Status:                 types.TransactionStatusFailed,
		Amount:                 amount,
		Currency:               currency,
		PayerEmail:             m.Email,
		CreatedAt:              time.Now().UTC(),
	}

	flagged := false
	if err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if duplicate, err := s.recordTransaction(ctx, txn); err != nil || duplicate {
			return err
		}

		// Only an active or already past_due subscription goes past_due;
		// a late failure event for a cancelled or suspended member is
		// ledgered without reviving the subscription.
		switch m.SubscriptionStatus {
		case types.SubscriptionStatusActive, types.SubscriptionStatusPastDue:
			m.SubscriptionStatus = types.SubscriptionStatusPastDue
			flagged = true
			return s.MemberRepo.Update(ctx, m)
		}
		return nil
	}); err != nil {
		return err
	}

	if flagged {
		s.Email.SendPaymentFailed(ctx, m.Email, t.Name)
	}
	return nil
}

func (s *webhookService) handleSaleCompleted(ctx context.Context, t *tenant.Tenant, event *providerEvent) error {
	amount, currency := event.amount()
	txn := &transaction.Transaction{
		ID:                     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TRANSACTION),
		TenantID:               t.ID,
		ProviderEventID:        event.ID,
		ProviderSubscriptionID: event.Resource.BillingAgreementID,
		ProviderPaymentID:      event.Resource.ID,
		Type:                   types.TransactionTypePayment,
		Status:                 types.TransactionStatusCompleted,
		Amount:                 amount,
		Currency:               currency,
		PayerEmail:             member.NormalizeEmail(event.payerEmail()),
		CreatedAt:              time.Now().UTC(),
	}

	// Sale events reference the subscription they bill; a missing member
	// is not fatal because the ledger entry still records the revenue.
	var m *member.Member
	if event.Resource.BillingAgreementID != "" {
		found, err := s.MemberRepo.GetBySubscriptionID(ctx, t.ID, event.Resource.BillingAgreementID)
		if err != nil && !ierr.IsNotFound(err) {
			return err
		}
		m = found
	}
	if m != nil {
		txn.MemberID = m.ID
		if txn.PayerEmail == "" {
			txn.PayerEmail = m.Email
		}
	}

	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		if duplicate, err := s.recordTransaction(ctx, txn); err != nil || duplicate {
			return err
		}

		// A successful renewal clears a past_due flag.
		if m != nil && m.SubscriptionStatus == types.SubscriptionStatusPastDue {
			m.SubscriptionStatus = types.SubscriptionStatusActive
			m.MembershipStatus = types.MembershipStatusActive
			return s.MemberRepo.Update(ctx, m)
		}
		return nil
	})
}

func (s *webhookService) handleCaptureCompleted(ctx context.Context, t *tenant.Tenant, event *providerEvent) error {
	amount, currency := event.amount()
	txn := &transaction.Transaction{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TRANSACTION),
		TenantID:          t.ID,
		ProviderEventID:   event.ID,
		ProviderPaymentID: event.Resource.ID,
		Type:              types.TransactionTypeCaptureCompleted,
		Status:            types.TransactionStatusCompleted,
		Amount:            amount,
		Currency:          currency,
		PayerEmail:        member.NormalizeEmail(event.payerEmail()),
		CreatedAt:         time.Now().UTC(),
	}
	_, err := s.recordTransaction(ctx, txn)
	return err
}

func (s *webhookService) handleCaptureRefunded(ctx context.Context, t *tenant.Tenant, event *providerEvent) error {
	amount, currency := event.amount()
	payerEmail := member.NormalizeEmail(event.payerEmail())
	txn := &transaction.Transaction{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TRANSACTION),
		TenantID:          t.ID,
		ProviderEventID:   event.ID,
		ProviderPaymentID: event.Resource.ID,
		Type:              types.TransactionTypeRefund,
		Status:            types.TransactionStatusCompleted,
		Amount:            amount,
		Currency:          currency,
		PayerEmail:        payerEmail,
		CreatedAt:         time.Now().UTC(),
	}

	var m *member.Member
	if payerEmail != "" {
		found, err := s.MemberRepo.GetByEmail(ctx, t.ID, payerEmail)
		if err != nil && !ierr.IsNotFound(err) {
			return err
		}
		m = found
	}
	if m != nil {
		txn.MemberID = m.ID
	}

	applied := false
	if err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if duplicate, err := s.recordTransaction(ctx, txn); err != nil || duplicate {
			return err
		}

		if m != nil {
			// Refunds park the membership rather than ending it; the
			// chapter decides whether it comes back or gets cancelled.
			m.SubscriptionStatus = types.SubscriptionStatusRefunded
			m.MembershipStatus = types.MembershipStatusSuspended
			if err := s.MemberRepo.Update(ctx, m); err != nil {
				return err
			}
			applied = true
		}
		return nil
	}); err != nil {
		return err
	}

	if applied {
		s.Email.SendRefundProcessed(ctx, m.Email, t.Name, amount, currency)
	}
	return nil
}

// tierForPlan maps a provider plan id back to the billing cadence. The
// tenant's provisioned plan ids win; for plans provisioned outside the
// setup flow the plan id naming decides.
func (s *webhookService) tierForPlan(t *tenant.Tenant, planID string) types.MembershipTier {
	switch planID {
	case t.YearlyPlanID:
		return types.MembershipTierYearly
	case t.MonthlyPlanID:
		return types.MembershipTierMonthly
	}
	if strings.Contains(strings.ToLower(planID), "yearly") {
		return types.MembershipTierYearly
	}
	return types.MembershipTierMonthly
}

func (s *webhookService) ListWebhookEvents(ctx context.Context, filter *webhookevent.Filter) (*dto.ListWebhookEventsResponse, error) {
	if filter == nil {
		filter = &webhookevent.Filter{}
	}
	events, err := s.WebhookEventRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.WebhookEventResponse, len(events))
	for i, e := range events {
		items[i] = dto.NewWebhookEventResponse(e)
	}

	return &dto.ListWebhookEventsResponse{
		Items:      items,
		Pagination: types.NewPaginationResponse(len(items), filter.GetLimit(), filter.GetOffset()),
	}, nil
}
