package types

import (
	"fmt"

	"github.com/samber/lo"
)

// SetupStep is the explicit cursor for the tenant provisioning flow.
// Steps are strictly ordered; a step may only run when every prior step
// has completed.
type SetupStep string

const (
	SetupStepNone        SetupStep = ""
	SetupStepCredentials SetupStep = "credentials"
	SetupStepTest        SetupStep = "test"
	SetupStepPricing     SetupStep = "pricing"
	SetupStepProducts    SetupStep = "products"
	SetupStepWebhooks    SetupStep = "webhooks"
	SetupStepComplete    SetupStep = "complete"
)

// setupStepOrder defines the canonical ordering of the provisioning flow.
var setupStepOrder = []SetupStep{
	SetupStepCredentials,
	SetupStepTest,
	SetupStepPricing,
	SetupStepProducts,
	SetupStepWebhooks,
	SetupStepComplete,
}

func (s SetupStep) String() string {
	return string(s)
}

func (s SetupStep) Validate() error {
	if !lo.Contains(setupStepOrder, s) {
		return fmt.Errorf("invalid setup step: %s", s)
	}
	return nil
}

// Index returns the position of the step in the flow, or -1 for the
// zero value (no step completed yet).
func (s SetupStep) Index() int {
	return lo.IndexOf(setupStepOrder, s)
}

// Next returns the step that follows s, or SetupStepComplete when the
// flow is finished.
func (s SetupStep) Next() SetupStep {
	idx := s.Index()
	if idx < 0 {
		return SetupStepCredentials
	}
	if idx+1 >= len(setupStepOrder) {
		return SetupStepComplete
	}
	return setupStepOrder[idx+1]
}

// SetupSteps returns the ordered provisioning steps.
func SetupSteps() []SetupStep {
	return setupStepOrder
}
