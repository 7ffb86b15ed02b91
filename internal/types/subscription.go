package types

import (
	"fmt"

	"github.com/samber/lo"
)

// SubscriptionStatus represents the lifecycle status of a member's
// recurring membership payment.
type SubscriptionStatus string

const (
	SubscriptionStatusNone      SubscriptionStatus = "none"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPastDue   SubscriptionStatus = "past_due"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusSuspended SubscriptionStatus = "suspended"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusRefunded  SubscriptionStatus = "refunded"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) Validate() error {
	allowed := []SubscriptionStatus{
		SubscriptionStatusNone,
		SubscriptionStatusActive,
		SubscriptionStatusPastDue,
		SubscriptionStatusCancelled,
		SubscriptionStatusSuspended,
		SubscriptionStatusExpired,
		SubscriptionStatusRefunded,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid subscription status: %s", s)
	}
	return nil
}

// MembershipStatus represents a member's standing in their chapter,
// independent of the payment subscription status.
type MembershipStatus string

const (
	MembershipStatusActive    MembershipStatus = "active"
	MembershipStatusSuspended MembershipStatus = "suspended"
	MembershipStatusInactive  MembershipStatus = "inactive"
)

func (s MembershipStatus) String() string {
	return string(s)
}

// MembershipTier represents the billing cadence a member signed up for.
type MembershipTier string

const (
	MembershipTierMonthly MembershipTier = "monthly"
	MembershipTierYearly  MembershipTier = "yearly"
)

func (t MembershipTier) String() string {
	return string(t)
}

func (t MembershipTier) Validate() error {
	allowed := []MembershipTier{MembershipTierMonthly, MembershipTierYearly}
	if !lo.Contains(allowed, t) {
		return fmt.Errorf("invalid membership tier: %s", t)
	}
	return nil
}
