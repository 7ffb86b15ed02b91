package service

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/suicidekings/carclub/internal/domain/member"
	"github.com/suicidekings/carclub/internal/domain/tenant"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/paypal"
	"github.com/suicidekings/carclub/internal/testutil"
	"github.com/suicidekings/carclub/internal/types"
)

type WebhookServiceSuite struct {
	testutil.BaseServiceTestSuite
	service WebhookService
	tenant  *tenant.Tenant
}

func TestWebhookService(t *testing.T) {
	suite.Run(t, new(WebhookServiceSuite))
}

func (s *WebhookServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewWebhookService(newTestServiceParams(&s.BaseServiceTestSuite))

	s.tenant = &tenant.Tenant{
		ID:     "tenant-sf",
		Name:   "SF Chapter",
		City:   "San Francisco",
		Status: types.StatusActive,
		PaymentSettings: &tenant.PaymentSettings{
			ClientID:     "client-id",
			ClientSecret: "encrypted-secret",
			WebhookID:    "WH-CONFIG",
		},
		ProductID:         "PROD-1",
		MonthlyPlanID:     "P-MONTH",
		YearlyPlanID:      "P-YEAR",
		MonthlyAmount:     decimal.NewFromInt(25),
		YearlyAmount:      decimal.NewFromInt(250),
		Currency:          "USD",
		LastCompletedStep: types.SetupStepComplete,
	}
	s.NoError(s.GetStores().TenantRepo.Create(s.GetContext(), s.tenant))
}

func (s *WebhookServiceSuite) signatureHeaders() paypal.SignatureHeaders {
	return paypal.SignatureHeaders{
		AuthAlgo:         "SHA256withRSA",
		CertURL:          "https://api.paypal.com/cert.pem",
		TransmissionID:   "tx-1",
		TransmissionSig:  "sig",
		TransmissionTime: "2026-08-30T12:00:00Z",
	}
}

func (s *WebhookServiceSuite) activationBody(eventID, subID, planID, email string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"event_type": "BILLING.SUBSCRIPTION.ACTIVATED",
		"resource": {
			"id": %q,
			"plan_id": %q,
			"subscriber": {
				"email_address": %q,
				"name": {"given_name": "Jane", "surname": "Doe"}
			}
		}
	}`, eventID, subID, planID, email))
}

func (s *WebhookServiceSuite) seedMember(subID string, status types.SubscriptionStatus) *member.Member {
	m := &member.Member{
		ID:                 "member-1",
		Email:              "jane.doe@example.com",
		FirstName:          "Jane",
		LastName:           "Doe",
		SubscriptionID:     subID,
		SubscriptionStatus: status,
		MembershipStatus:   types.MembershipStatusActive,
		MembershipTier:     types.MembershipTierMonthly,
	}
	m.TenantID = s.tenant.ID
	s.NoError(s.GetStores().MemberRepo.Create(s.GetContext(), m))
	return m
}

func (s *WebhookServiceSuite) TestActivationCreatesMember() {
	body := s.activationBody("WH-EVT-1", "I-100", "P-YEAR", "Jane.Doe@Example.com")

	ack, err := s.service.ProcessWebhook(s.GetContext(), s.tenant.ID, s.signatureHeaders(), body)
	s.NoError(err)

	s.True(ack.Received)
	s.True(ack.Processed)
	s.NotEmpty(ack.EventID)

	m, err := s.GetStores().MemberRepo.GetByEmail(s.GetContext(), s.tenant.ID, "jane.doe@example.com")
	s.NoError(err)
	s.Equal("I-100", m.SubscriptionID)
	s.Equal(types.SubscriptionStatusActive, m.SubscriptionStatus)
	s.Equal(types.MembershipStatusActive, m.MembershipStatus)
	s.Equal(types.MembershipTierYearly, m.MembershipTier)
	s.Equal("Jane", m.FirstName)

	txns, err := s.GetStores().TransactionRepo.List(s.GetContext(), &types.TransactionFilter{TenantID: s.tenant.ID})
	s.NoError(err)
	s.Len(txns, 1)
	s.Equal("WH-EVT-1", txns[0].ProviderEventID)
	s.Equal(types.TransactionTypeSubscriptionActivated, txns[0].Type)

	event, err := s.GetStores().WebhookEventRepo.Get(s.GetContext(), ack.EventID)
	s.NoError(err)
	s.True(event.Processed)
	s.Nil(event.ErrorMessage)
	s.NotNil(event.ProcessedAt)
}

func (s *WebhookServiceSuite) TestDuplicateDeliveryIsIdempotent() {
	body := s.activationBody("WH-EVT-1", "I-100", "P-MONTH", "jane.doe@example.com")

	first, err := s.service.ProcessWebhook(s.GetContext(), s.tenant.ID, s.signatureHeaders(), body)
	s.NoError(err)
	s.True(first.Processed)

	m, err := s.GetStores().MemberRepo.GetByEmail(s.GetContext(), s.tenant.ID, "jane.doe@example.com")
	s.NoError(err)
	m.MembershipTier = types.MembershipTierYearly
	s.NoError(s.GetStores().MemberRepo.Update(s.GetContext(), m))

	// Redelivery of the same provider event acknowledges cleanly and does
	// not touch member state again.
	second, err := s.service.ProcessWebhook(s.GetContext(), s.tenant.ID, s.signatureHeaders(), body)
	s.NoError(err)
	s.True(second.Processed)

	m, err = s.GetStores().MemberRepo.GetByEmail(s.GetContext(), s.tenant.ID, "jane.doe@example.com")
	s.NoError(err)
	s.Equal(types.MembershipTierYearly, m.MembershipTier)

	txns, err := s.GetStores().TransactionRepo.List(s.GetContext(), &types.TransactionFilter{TenantID: s.tenant.ID})
	s.NoError(err)
	s.Len(txns, 1)
}

func (s *WebhookServiceSuite) TestUnknownEventTypeAcknowledged() {
	body := []byte(`{"id": "WH-EVT-9", "event_type": "CUSTOMER.DISPUTE.CREATED", "resource": {}}`)

	ack, err := s.service.ProcessWebhook(s.GetContext(), s.tenant.ID, s.signatureHeaders(), body)
	s.NoError(err)

	s.True(ack.Received)
	s.True(ack.Processed)
	s.Equal("event type not handled", ack.Message)

	// The delivery is logged as processed with no error and produces no
	// ledger row, so it never counts against the failure thresholds.
	event, err := s.GetStores().WebhookEventRepo.Get(s.GetContext(), ack.EventID)
	s.NoError(err)
	s.True(event.Processed)
	s.Nil(event.ErrorMessage)

	txns, err := s.GetStores().TransactionRepo.List(s.GetContext(), &types.TransactionFilter{TenantID: s.tenant.ID})
	s.NoError(err)
	s.Empty(txns)

	failures, err := s.GetStores().WebhookEventRepo.CountFailuresSince(s.GetContext(), s.tenant.ID, s.GetNow())
	s.NoError(err)
	s.Zero(failures)
}

func (s *WebhookServiceSuite) TestSignatureFailureIsLogged() {
	s.GetPayPalClient().VerifySignatureErr = ierr.NewError("signature verification failed").
		Mark(ierr.ErrSignatureInvalid)

	body := s.activationBody("WH-EVT-2", "I-100", "P-MONTH", "jane.doe@example.com")
	ack, err := s.service.ProcessWebhook(s.GetContext(), s.tenant.ID, s.signatureHeaders(), body)

	// The rejection is surfaced so the transport answers 401, but the
	// delivery is still on the ledger.
	s.True(ierr.IsSignatureInvalid(err))
	s.True(ack.Received)
	s.False(ack.Processed)
	s.Equal("processing failed", ack.Message)

	event, err := s.GetStores().WebhookEventRepo.Get(s.GetContext(), ack.EventID)
	s.NoError(err)
	s.True(event.IsFailed())
	s.NotNil(event.ErrorMessage)

	failures, err := s.GetStores().WebhookEventRepo.CountFailuresSince(s.GetContext(), s.tenant.ID, s.GetNow())
	s.NoError(err)
	s.Equal(1, failures)

	// No member was created from an unverified delivery.
	_, err = s.GetStores().MemberRepo.GetByEmail(s.GetContext(), s.tenant.ID, "jane.doe@example.com")
	s.True(ierr.IsNotFound(err))
}

func (s *WebhookServiceSuite) TestMissingSignatureHeadersRejected() {
	body := s.activationBody("WH-EVT-3", "I-100", "P-MONTH", "jane.doe@example.com")

	ack, err := s.service.ProcessWebhook(s.GetContext(), s.tenant.ID, paypal.SignatureHeaders{}, body)

	s.True(ierr.IsSignatureInvalid(err))
	s.True(ack.Received)
	s.False(ack.Processed)
	s.Equal("processing failed", ack.Message)
}

func (s *WebhookServiceSuite) TestSubscriptionCancelled() {
	s.seedMember("I-100", types.SubscriptionStatusActive)

	body := []byte(`{
		"id": "WH-EVT-4",
		"event_type": "BILLING.SUBSCRIPTION.CANCELLED",
		"resource": {"id": "I-100"}
	}`)
	ack, err := s.service.ProcessWebhook(s.GetContext(), s.tenant.ID, s.signatureHeaders(), body)
	s.NoError(err)
	s.True(ack.Processed)

	m, err := s.GetStores().MemberRepo.Get(s.GetContext(), "member-1")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, m.SubscriptionStatus)
	s.Equal(types.MembershipStatusInactive, m.MembershipStatus)
}

func (s *WebhookServiceSuite) TestSubscriptionSuspended() {
	s.seedMember("I-100", types.SubscriptionStatusActive)

	body := []byte(`{
		"id": "WH-EVT-5",
		"event_type": "BILLING.SUBSCRIPTION.SUSPENDED",
		"resource": {"id": "I-100"}
	}`)
	ack, err := s.service.ProcessWebhook(s.GetContext(), s.tenant.ID, s.signatureHeaders(), body)
	s.NoError(err)
	s.True(ack.Processed)

	m, err := s.GetStores().MemberRepo.Get(s.GetContext(), "member-1")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusSuspended, m.SubscriptionStatus)
	s.Equal(types.MembershipStatusSuspended, m.MembershipStatus)
}

func (s *WebhookServiceSuite) TestPaymentFailedMarksPastDue() {
	s.seedMember("I-100", types.SubscriptionStatusActive)

	body := []byte(`{
		"id": "WH-EVT-6",
		"event_type": "BILLING.SUBSCRIPTION.PAYMENT.FAILED",
		"resource": {"id": "I-100", "amount": {"total": "25.00", "currency": "USD"}}
	}`)
	ack, err := s.service.ProcessWebhook(s.GetContext(), s.tenant.ID, s.signatureHeaders(), body)
	s.NoError(err)
	s.True(ack.Processed)

	m, err := s.GetStores().MemberRepo.Get(s.GetContext(), "member-1")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusPastDue, m.SubscriptionStatus)

	txns, err := s.GetStores().TransactionRepo.List(s.GetContext(), &types.TransactionFilter{TenantID: s.tenant.ID})
	s.NoError(err)
	s.Len(txns, 1)
	s.Equal(types.TransactionTypePaymentFailed, txns[0].Type)
	s.Equal(types.TransactionStatusFailed, txns[0].Status)
	s.True(txns[0].Amount.Equal(decimal.RequireFromString("25.00")))
}

func (s *WebhookServiceSuite) TestSaleCompletedRecoversPastDue() {
	s.seedMember("I-100", types.SubscriptionStatusPastDue)

	body := []byte(`{
		"id": "WH-EVT-7",
		"event_type": "PAYMENT.SALE.COMPLETED",
		"resource": {
			"id": "PAY-1",
			"billing_agreement_id": "I-100",
			"amount": {"total": "25.00", "currency": "USD"}
		}
	}`)
	ack, err := s.service.ProcessWebhook(s.GetContext(), s.tenant.ID, s.signatureHeaders(), body)
	s.NoError(err)
	s.True(ack.Processed)

	m, err := s.GetStores().MemberRepo.Get(s.GetContext(), "member-1")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, m.SubscriptionStatus)
	s.Equal(types.MembershipStatusActive, m.MembershipStatus)

	txns, err := s.GetStores().TransactionRepo.List(s.GetContext(), &types.TransactionFilter{TenantID: s.tenant.ID})
	s.NoError(err)
	s.Len(txns, 1)
	s.Equal(types.TransactionTypePayment, txns[0].Type)
	s.Equal("member-1", txns[0].MemberID)
	s.Equal("PAY-1", txns[0].ProviderPaymentID)
}

func (s *WebhookServiceSuite) TestSaleCompletedWithoutMemberStillLedgered() {
	body := []byte(`{
		"id": "WH-EVT-8",
		"event_type": "PAYMENT.SALE.COMPLETED",
		"resource": {
			"id": "PAY-2",
			"billing_agreement_id": "I-UNKNOWN",
			"amount": {"total": "25.00", "currency": "USD"}
		}
	}`)
	ack, err := s.service.ProcessWebhook(s.GetContext(), s.tenant.ID, s.signatureHeaders(), body)
	s.NoError(err)
	s.True(ack.Processed)

	txns, err := s.GetStores().TransactionRepo.List(s.GetContext(), &types.TransactionFilter{TenantID: s.tenant.ID})
	s.NoError(err)
	s.Len(txns, 1)
	s.Empty(txns[0].MemberID)
}

func (s *WebhookServiceSuite) TestCaptureRefunded() {
	s.seedMember("I-100", types.SubscriptionStatusActive)

	body := []byte(`{
		"id": "WH-EVT-10",
		"event_type": "PAYMENT.CAPTURE.REFUNDED",
		"resource": {
			"id": "CAP-1",
			"amount": {"value": "250.00", "currency_code": "USD"},
			"payer": {"payer_info": {"email": "jane.doe@example.com"}}
		}
	}`)
	ack, err := s.service.ProcessWebhook(s.GetContext(), s.tenant.ID, s.signatureHeaders(), body)
	s.NoError(err)
	s.True(ack.Processed)

	m, err := s.GetStores().MemberRepo.Get(s.GetContext(), "member-1")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusRefunded, m.SubscriptionStatus)
	s.Equal(types.MembershipStatusSuspended, m.MembershipStatus)

	txns, err := s.GetStores().TransactionRepo.List(s.GetContext(), &types.TransactionFilter{TenantID: s.tenant.ID})
	s.NoError(err)
	s.Len(txns, 1)
	s.Equal(types.TransactionTypeRefund, txns[0].Type)
	s.True(txns[0].Amount.Equal(decimal.RequireFromString("250.00")))
}

func (s *WebhookServiceSuite) TestUnparseablePayloadAcknowledged() {
	ack, err := s.service.ProcessWebhook(s.GetContext(), s.tenant.ID, s.signatureHeaders(), []byte("{not json"))
	s.NoError(err)

	s.True(ack.Received)
	s.False(ack.Processed)

	// Even garbage gets a log row so the delivery shows up in the audit
	// trail and the failure counts.
	s.NotEmpty(ack.EventID)
	event, err := s.GetStores().WebhookEventRepo.Get(s.GetContext(), ack.EventID)
	s.NoError(err)
	s.True(event.IsFailed())
	s.NotNil(event.ErrorMessage)
	s.Empty(event.EventType)
}

func (s *WebhookServiceSuite) TestUnknownTenantLoggedAsFailure() {
	body := s.activationBody("WH-EVT-11", "I-100", "P-MONTH", "jane.doe@example.com")

	ack, err := s.service.ProcessWebhook(s.GetContext(), "tenant-nope", s.signatureHeaders(), body)
	s.NoError(err)

	s.True(ack.Received)
	s.False(ack.Processed)
	s.Equal("processing failed", ack.Message)

	event, err := s.GetStores().WebhookEventRepo.Get(s.GetContext(), ack.EventID)
	s.NoError(err)
	s.Equal("tenant-nope", event.TenantID)
	s.True(event.IsFailed())
}

func (s *WebhookServiceSuite) TestUnprovisionedYearlyPlanFallsBackOnPlanID() {
	body := s.activationBody("WH-EVT-12", "I-200", "P-custom-yearly-99", "jane.doe@example.com")

	ack, err := s.service.ProcessWebhook(s.GetContext(), s.tenant.ID, s.signatureHeaders(), body)
	s.NoError(err)
	s.True(ack.Processed)

	m, err := s.GetStores().MemberRepo.GetByEmail(s.GetContext(), s.tenant.ID, "jane.doe@example.com")
	s.NoError(err)
	s.Equal(types.MembershipTierYearly, m.MembershipTier)
}

func (s *WebhookServiceSuite) TestPaymentFailedLeavesCancelledMemberAlone() {
	m := s.seedMember("I-100", types.SubscriptionStatusCancelled)
	m.MembershipStatus = types.MembershipStatusInactive
	s.NoError(s.GetStores().MemberRepo.Update(s.GetContext(), m))

	body := []byte(`{
		"id": "WH-EVT-13",
		"event_type": "BILLING.SUBSCRIPTION.PAYMENT.FAILED",
		"resource": {"id": "I-100", "amount": {"total": "25.00", "currency": "USD"}}
	}`)
	ack, err := s.service.ProcessWebhook(s.GetContext(), s.tenant.ID, s.signatureHeaders(), body)
	s.NoError(err)
	s.True(ack.Processed)

	// A late failure event for a dead subscription is ledgered without
	// dragging the member back to past_due.
	m, err = s.GetStores().MemberRepo.Get(s.GetContext(), "member-1")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, m.SubscriptionStatus)
	s.Equal(types.MembershipStatusInactive, m.MembershipStatus)

	txns, err := s.GetStores().TransactionRepo.List(s.GetContext(), &types.TransactionFilter{TenantID: s.tenant.ID})
	s.NoError(err)
	s.Len(txns, 1)
	s.Equal(types.TransactionTypePaymentFailed, txns[0].Type)
}

func (s *WebhookServiceSuite) TestActivationWritesLedgerAndMemberInOneTransaction() {
	body := s.activationBody("WH-EVT-14", "I-100", "P-MONTH", "jane.doe@example.com")

	ack, err := s.service.ProcessWebhook(s.GetContext(), s.tenant.ID, s.signatureHeaders(), body)
	s.NoError(err)
	s.True(ack.Processed)

	s.Equal(1, s.GetTxRunner().Calls())
}
