package models

import "regexp"

// OnboardingRequest carries the identifiers and credentials issued by Meta's
// Embedded Signup flow for a new client.
type OnboardingRequest struct {
	WABAID        string `json:"wabaId" binding:"required"`
	PhoneNumberID string `json:"phoneNumberId" binding:"required"`
	BusinessID    string `json:"businessId"`
	BusinessToken string `json:"businessToken" binding:"required"`
	PIN           string `json:"pin" binding:"required"`
	BotID         string `json:"botId"`
	ClientName    string `json:"clientName,omitempty"`
}

var pinPattern = regexp.MustCompile(`^\d{6}$`)

// ValidPIN reports whether the two-step verification PIN is exactly six ASCII digits.
func (r OnboardingRequest) ValidPIN() bool {
	return pinPattern.MatchString(r.PIN)
}

// Onboarding step names, in execution order.
const (
	StepWebhookSubscription   = "webhook_subscription"
	StepCreditLineSharing     = "credit_line_sharing"
	StepPhoneRegistration     = "phone_registration"
	StepPhoneDetails          = "phone_details"
	StepCredentialPersistence = "credential_persistence"
)

// StepResult records the outcome of a single onboarding step.
type StepResult struct {
	Success bool   `json:"success"`
	Step    string `json:"step"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OnboardingOutcome aggregates per-step results with the overall verdict.
// Success is true only when every critical step was reached and succeeded.
type OnboardingOutcome struct {
	Success bool
	Results []StepResult
}

// OnboardingResponse is the JSON body returned by the onboarding endpoint.
type OnboardingResponse struct {
	Success       bool         `json:"success"`
	Message       string       `json:"message"`
	BotID         string       `json:"botId,omitempty"`
	WABAID        string       `json:"wabaId"`
	PhoneNumberID string       `json:"phoneNumberId"`
	BusinessID    string       `json:"businessId,omitempty"`
	Results       []StepResult `json:"results"`
	NextSteps     []string     `json:"nextSteps"`
}
