package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chatforge/wagateway/internal/domain/models"
	"github.com/chatforge/wagateway/internal/service/webhook"
	"github.com/chatforge/wagateway/internal/signature"
)

// WebhookHandler handles inbound WhatsApp HTTP events.
type WebhookHandler struct {
	svc      webhook.Service
	verifier *signature.Verifier
	logger   *zap.Logger
}

// NewWebhookHandler constructs the HTTP handler adapter.
func NewWebhookHandler(svc webhook.Service, verifier *signature.Verifier, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, verifier: verifier, logger: logger}
}

// Verify responds to Meta's webhook verification challenge. The expected
// token never appears in the response body, only in server logs.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	resp, err := h.svc.VerifyWebhookToken(mode, token, challenge)
	if err != nil {
		h.logger.Warn("webhook verification failed",
			zap.Error(err),
			zap.String("hub_mode", mode),
			zap.String("hub_verify_token", token))
		c.JSON(http.StatusForbidden, gin.H{"error": "verification failed"})
		return
	}

	c.String(http.StatusOK, resp)
}

// Receive ingests webhook POST callbacks from Meta. After the signature gate,
// every outcome is acknowledged with 200: Meta retries aggressively on
// non-2xx, so processing failures are logged and masked rather than surfaced.
func (h *WebhookHandler) Receive(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Warn("failed reading webhook body", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	// Verification runs only when both the header and the app secret are
	// present. The silent bypass otherwise is a known, tested gap.
	headerSig := c.GetHeader(signature.Header)
	if headerSig != "" && h.verifier.Required() {
		if !h.verifier.Verify(rawBody, headerSig) {
			h.logger.Warn("webhook signature mismatch")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
	}

	var payload models.WebhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		h.logger.Warn("invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	if err := h.svc.ProcessWebhook(c.Request.Context(), payload); err != nil {
		h.logger.Error("failed processing webhook", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SendMessage allows sending outbound automation or manual responses.
func (h *WebhookHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid outbound payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.SendOutbound(c.Request.Context(), req); err != nil {
		h.logger.Error("failed sending outbound", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
		return
	}

	c.Status(http.StatusAccepted)
}
