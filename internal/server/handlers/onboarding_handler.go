package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chatforge/wagateway/internal/domain/models"
	"github.com/chatforge/wagateway/internal/service/onboarding"
)

// OnboardingHandler exposes the client onboarding endpoint.
type OnboardingHandler struct {
	svc    *onboarding.Service
	logger *zap.Logger
}

// NewOnboardingHandler constructs the HTTP handler adapter.
func NewOnboardingHandler(svc *onboarding.Service, logger *zap.Logger) *OnboardingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OnboardingHandler{svc: svc, logger: logger}
}

// Onboard runs the five-step client activation sequence. Preconditions are
// rejected with 400 before any Graph API call is made.
func (h *OnboardingHandler) Onboard(c *gin.Context) {
	var req models.OnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid onboarding request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "wabaId, phoneNumberId, businessToken and pin are required"})
		return
	}

	if !req.ValidPIN() {
		h.logger.Warn("rejected onboarding request with malformed pin", zap.String("waba_id", req.WABAID))
		c.JSON(http.StatusBadRequest, gin.H{"error": "pin must be exactly 6 digits"})
		return
	}

	outcome := h.svc.Onboard(c.Request.Context(), req)

	resp := models.OnboardingResponse{
		Success:       outcome.Success,
		BotID:         req.BotID,
		WABAID:        req.WABAID,
		PhoneNumberID: req.PhoneNumberID,
		BusinessID:    req.BusinessID,
		Results:       outcome.Results,
	}

	if outcome.Success {
		resp.Message = "Client onboarded successfully"
		resp.NextSteps = []string{
			"Send a test message to verify the phone number is live",
			"Create and submit message templates for review",
			"Point your bot configuration at the new phone number ID",
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	resp.Message = "Client onboarding did not complete"
	resp.NextSteps = []string{
		"Review the failed steps in the results list",
		"Verify the business token and two-step verification PIN",
		"Retry onboarding once the underlying issue is resolved",
	}

	status := http.StatusOK
	if registrationFailed(outcome.Results) {
		status = http.StatusInternalServerError
	}
	c.JSON(status, resp)
}

func registrationFailed(results []models.StepResult) bool {
	for _, r := range results {
		if r.Step == models.StepPhoneRegistration {
			return !r.Success
		}
	}
	return false
}
